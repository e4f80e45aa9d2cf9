package model

import "time"

// BookingLock is an advisory lock held on one (date, resource) pair while a
// booking is checked and inserted.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Token     string    `bson:"token" json:"token"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

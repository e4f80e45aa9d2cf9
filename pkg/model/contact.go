package model

import "time"

type Contact struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	Name       string    `json:"name" gorm:"size:200;not null;index"`
	Email      string    `json:"email" gorm:"size:320;not null;uniqueIndex"`
	Department string    `json:"department,omitempty" gorm:"size:200"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

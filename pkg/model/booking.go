package model

import (
	"fmt"
	"time"

	"roomdesk/internal/scheduling/grid"
)

type Method string

const (
	MethodOffice Method = "office"
	MethodRemote Method = "remote"
)

// Resource is a bookable room scoped to a branch.
type Resource struct {
	Branch string `json:"branch" bson:"branch"`
	Room   string `json:"room" bson:"room"`
}

func (r Resource) IsZero() bool {
	return r.Branch == "" && r.Room == ""
}

func (r Resource) String() string {
	return fmt.Sprintf("%s/%s", r.Branch, r.Room)
}

type Booking struct {
	ID        string         `json:"id" bson:"_id" validate:"required,uuid"`
	Organizer string         `json:"organizer" bson:"organizer" validate:"required,max=200"`
	Title     string         `json:"title" bson:"title" validate:"max=200"`
	Date      string         `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Start     grid.TimeOfDay `json:"start" bson:"start" validate:"min=0,max=1439"`
	End       grid.TimeOfDay `json:"end" bson:"end" validate:"min=1,max=1439,gtfield=Start"`
	Invitees  []string       `json:"invitees" bson:"invitees" validate:"omitempty,max=200,dive,required,max=320"`
	Method    Method         `json:"method" bson:"method" validate:"required,oneof=office remote"`
	Branch    string         `json:"branch,omitempty" bson:"branch,omitempty" validate:"required_if=Method office,max=100"`
	Room      string         `json:"room,omitempty" bson:"room,omitempty" validate:"required_if=Method office,max=100"`
	Link      string         `json:"link,omitempty" bson:"link,omitempty" validate:"required_if=Method remote,max=500"`
	CreatedAt time.Time      `json:"created_at" bson:"created_at"`
}

func (b *Booking) IsOffice() bool {
	return b.Method == MethodOffice
}

func (b *Booking) Resource() Resource {
	return Resource{Branch: b.Branch, Room: b.Room}
}

// Occupies reports whether slot falls in the half-open interval [Start, End).
func (b *Booking) Occupies(slot grid.TimeOfDay) bool {
	return slot >= b.Start && slot < b.End
}

// BookingForm carries the user-entered fields submitted with a selected range.
type BookingForm struct {
	Organizer string   `json:"organizer" validate:"required,max=200"`
	Title     string   `json:"title" validate:"max=200"`
	Method    Method   `json:"method" validate:"required,oneof=office remote"`
	Branch    string   `json:"branch,omitempty" validate:"required_if=Method office,max=100"`
	Room      string   `json:"room,omitempty" validate:"required_if=Method office,max=100"`
	Link      string   `json:"link,omitempty" validate:"required_if=Method remote,max=500"`
	Invitees  []string `json:"invitees,omitempty" validate:"omitempty,max=200,dive,required,max=320"`
}

func (f *BookingForm) Resource() Resource {
	return Resource{Branch: f.Branch, Room: f.Room}
}

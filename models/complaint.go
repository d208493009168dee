package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintCategory enum
type ComplaintCategory string

const (
	Water       ComplaintCategory = "Water"
	Road        ComplaintCategory = "Road"
	Electricity ComplaintCategory = "Electricity"
	Sanitation  ComplaintCategory = "Sanitation"
	Other       ComplaintCategory = "Other"
)

// Valid reports whether c is one of the known categories.
func (c ComplaintCategory) Valid() bool {
	switch c {
	case Water, Road, Electricity, Sanitation, Other:
		return true
	}
	return false
}

// ComplaintStatus enum
type ComplaintStatus string

const (
	Pending    ComplaintStatus = "Pending"
	InProgress ComplaintStatus = "In Progress"
	Resolved   ComplaintStatus = "Resolved"
	Rejected   ComplaintStatus = "Rejected"
)

func (s ComplaintStatus) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved, Rejected:
		return true
	}
	return false
}

// StatusHistoryEntry is one append-only record of an administrative action on a complaint.
type StatusHistoryEntry struct {
	Status    ComplaintStatus `bson:"status" json:"status"`
	Date      time.Time       `bson:"date" json:"date"`
	ChangedBy string          `bson:"changedBy" json:"changedBy"`
	Comment   string          `bson:"comment" json:"comment"`
}

// Complaint represents a municipal complaint submitted by a citizen.
// OwnerID holds either a user ObjectID hex or the configured bootstrap admin id.
type Complaint struct {
	ID            primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Title         string               `bson:"title" json:"title"`
	Description   string               `bson:"description" json:"description"`
	Location      string               `bson:"location" json:"location"`
	Category      ComplaintCategory    `bson:"category" json:"category"`
	Image         string               `bson:"image" json:"image"`
	Status        ComplaintStatus      `bson:"status" json:"status"`
	StatusHistory []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	OwnerID       string               `bson:"user,omitempty" json:"user"`
	CreatedAt     time.Time            `bson:"createdAt" json:"createdAt"`
}

// OwnerRef is the populated owner identity returned with complaint listings.
type OwnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// ComplaintWithOwner shadows the raw owner id with its resolved identity.
type ComplaintWithOwner struct {
	Complaint
	User *OwnerRef `json:"user"`
}

// DayCount is the number of complaints created on one calendar day (YYYY-MM-DD).
type DayCount struct {
	Date  string `bson:"_id" json:"date"`
	Count int64  `bson:"count" json:"count"`
}

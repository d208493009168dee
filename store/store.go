// Package store is the document store behind the complaint workflow. The
// MongoDB implementation is used in deployments; the in-memory one backs local
// development and tests.
package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

// ComplaintFilter selects complaints. Zero fields match everything.
type ComplaintFilter struct {
	OwnerID string
	Status  models.ComplaintStatus
}

// ComplaintUpdate is a partial update applied in a single write. Push is
// appended to statusHistory; empty fields are left untouched.
type ComplaintUpdate struct {
	Status  models.ComplaintStatus
	OwnerID string
	Push    *models.StatusHistoryEntry
}

// ComplaintStore persists complaints. Lookups return (nil, nil) when the
// document does not exist.
type ComplaintStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error)
	FindByFilter(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)
	Create(ctx context.Context, complaint *models.Complaint) (*models.Complaint, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, update ComplaintUpdate) (*models.Complaint, error)
	DeleteByID(ctx context.Context, id primitive.ObjectID) (bool, error)
	AggregateCountsByDay(ctx context.Context, since time.Time, loc *time.Location) ([]models.DayCount, error)
	Count(ctx context.Context, filter ComplaintFilter) (int64, error)
}

// UserStore reads the users managed by the external credential store.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}

func cloneComplaint(c *models.Complaint) *models.Complaint {
	out := *c
	if c.StatusHistory != nil {
		out.StatusHistory = make([]models.StatusHistoryEntry, len(c.StatusHistory))
		copy(out.StatusHistory, c.StatusHistory)
	}
	return &out
}

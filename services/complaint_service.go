// Package services holds the complaint workflow: authorization checks, status
// transitions with an append-only history, and owner notification.
package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/apperrors"
	"civicfix-be/models"
	"civicfix-be/notifier"
	"civicfix-be/store"
)

const (
	// StatusUpdatedMessage is returned after every committed status update.
	StatusUpdatedMessage = "Status updated and comment added."
	// DefaultTrendDays is the trailing window used when none is given.
	DefaultTrendDays = 7

	statusChangedSubject = "Your Complaint Status Has Changed"
)

// Sender delivers a notification and reports whether it went out.
type Sender interface {
	Send(ctx context.Context, msg notifier.Message) bool
}

// ComplaintService is the complaint workflow engine.
type ComplaintService struct {
	complaints store.ComplaintStore
	users      store.UserStore
	sender     Sender
	loc        *time.Location
	now        func() time.Time
}

type Option func(*ComplaintService)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *ComplaintService) { s.now = now }
}

// WithLocation sets the timezone that defines trend calendar days.
func WithLocation(loc *time.Location) Option {
	return func(s *ComplaintService) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func NewComplaintService(complaints store.ComplaintStore, users store.UserStore, sender Sender, opts ...Option) *ComplaintService {
	s := &ComplaintService{
		complaints: complaints,
		users:      users,
		sender:     sender,
		loc:        time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateComplaintInput holds the citizen-supplied fields of a new complaint.
type CreateComplaintInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
	Image       string `json:"image"`
}

// UpdateStatusInput is the admin's requested transition. An empty Status keeps the current one.
type UpdateStatusInput struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
}

// UpdateStatusResult reports the committed update and whether the owner was emailed.
type UpdateStatusResult struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

// Stats are the admin dashboard counters.
type Stats struct {
	Users      int64 `json:"users"`
	Complaints int64 `json:"complaints"`
	Resolved   int64 `json:"resolved"`
}

// Create stores a new Pending complaint owned by principal.
func (s *ComplaintService) Create(ctx context.Context, input CreateComplaintInput, principal *models.Principal) (*models.Complaint, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthorized
	}

	complaint, err := newComplaint(input, principal.ID, s.now())
	if err != nil {
		return nil, err
	}

	created, err := s.complaints.Create(ctx, complaint)
	if err != nil {
		return nil, fmt.Errorf("%w: create complaint: %v", apperrors.ErrInternal, err)
	}
	return created, nil
}

func newComplaint(input CreateComplaintInput, ownerID string, now time.Time) (*models.Complaint, error) {
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	location := strings.TrimSpace(input.Location)

	switch {
	case title == "":
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	case len(title) > 200:
		return nil, fmt.Errorf("%w: title must be at most 200 characters", apperrors.ErrValidation)
	case description == "":
		return nil, fmt.Errorf("%w: description is required", apperrors.ErrValidation)
	case len(description) > 1000:
		return nil, fmt.Errorf("%w: description must be at most 1000 characters", apperrors.ErrValidation)
	case len(location) > 200:
		return nil, fmt.Errorf("%w: location must be at most 200 characters", apperrors.ErrValidation)
	}

	category := models.Other
	if input.Category != "" {
		category = models.ComplaintCategory(input.Category)
		if !category.Valid() {
			return nil, fmt.Errorf("%w: invalid category", apperrors.ErrValidation)
		}
	}

	return &models.Complaint{
		Title:         title,
		Description:   description,
		Location:      location,
		Category:      category,
		Image:         input.Image,
		Status:        models.Pending,
		StatusHistory: []models.StatusHistoryEntry{},
		OwnerID:       ownerID,
		CreatedAt:     now,
	}, nil
}

// UpdateStatus performs an admin status transition. The history entry is
// appended even when the status is unchanged so that comments are recorded.
// Notification happens after the write commits and never fails the call.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id primitive.ObjectID, input UpdateStatusInput, principal *models.Principal) (*UpdateStatusResult, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}

	requested := models.ComplaintStatus(strings.TrimSpace(input.Status))
	if requested != "" && !requested.Valid() {
		return nil, fmt.Errorf("%w: invalid status %q", apperrors.ErrValidation, input.Status)
	}

	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: load complaint: %v", apperrors.ErrInternal, err)
	}
	if complaint == nil {
		return nil, apperrors.ErrComplaintNotFound
	}

	status := requested
	if status == "" {
		status = complaint.Status
	}

	update := store.ComplaintUpdate{Status: status}
	// The owner is only written when repairing, so existing references keep their stored type.
	if complaint.OwnerID == "" {
		log.Printf("Complaint %s has no user assigned, assigning to admin %s", id.Hex(), principal.ID)
		update.OwnerID = principal.ID
	}

	entry := models.StatusHistoryEntry{
		Status:    status,
		Date:      s.now(),
		ChangedBy: principal.DisplayName(),
		Comment:   input.Comment,
	}

	update.Push = &entry

	updated, err := s.complaints.UpdateFields(ctx, id, update)
	if err != nil {
		return nil, fmt.Errorf("%w: update complaint: %v", apperrors.ErrInternal, err)
	}
	if updated == nil {
		return nil, apperrors.ErrComplaintNotFound
	}

	return &UpdateStatusResult{
		Message:   StatusUpdatedMessage,
		EmailSent: s.notifyOwner(ctx, updated, input.Comment, principal),
	}, nil
}

func (s *ComplaintService) notifyOwner(ctx context.Context, complaint *models.Complaint, comment string, principal *models.Principal) bool {
	name, email := s.ownerContact(ctx, complaint.OwnerID, principal)
	if email == "" {
		log.Printf("No user email found for complaint %s", complaint.ID.Hex())
		return false
	}

	if comment == "" {
		comment = "No comment."
	}

	log.Printf("Attempting to send email to %s", email)
	sent := s.sender.Send(ctx, notifier.Message{
		To:      email,
		Subject: statusChangedSubject,
		Text: fmt.Sprintf("Hello %s,\n\nThe status of your complaint \"%s\" is now \"%s\".\n\nAdmin Comment: %s",
			name, complaint.Title, complaint.Status, comment),
		HTML: statusChangedHTML(name, complaint.Title, string(complaint.Status), comment),
	})
	if sent {
		log.Printf("Email sent successfully to %s", email)
	} else {
		log.Printf("Email failed to send to %s, but status was updated", email)
	}
	return sent
}

// ownerContact resolves the owner's name and email. An owner lookup failure
// only suppresses the notification.
func (s *ComplaintService) ownerContact(ctx context.Context, ownerID string, principal *models.Principal) (string, string) {
	user, err := s.users.FindByID(ctx, ownerID)
	if err != nil {
		log.Printf("Error loading complaint owner %s: %v", ownerID, err)
		return "", ""
	}
	if user != nil {
		return user.Name, strings.TrimSpace(user.Email)
	}
	if principal != nil && ownerID == principal.ID {
		return principal.Name, strings.TrimSpace(principal.Email)
	}
	return "", ""
}

// Delete removes a complaint for its owner or any admin.
func (s *ComplaintService) Delete(ctx context.Context, id primitive.ObjectID, principal *models.Principal) error {
	if principal == nil {
		return apperrors.ErrUnauthorized
	}

	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: load complaint: %v", apperrors.ErrInternal, err)
	}
	if complaint == nil {
		return apperrors.ErrComplaintNotFound
	}

	isOwner := complaint.OwnerID != "" && complaint.OwnerID == principal.ID
	if !isOwner && !principal.IsAdmin() {
		return apperrors.ErrForbidden
	}

	deleted, err := s.complaints.DeleteByID(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete complaint: %v", apperrors.ErrInternal, err)
	}
	if !deleted {
		return apperrors.ErrComplaintNotFound
	}
	return nil
}

// ListMine returns the caller's complaints, newest first.
func (s *ComplaintService) ListMine(ctx context.Context, principal *models.Principal) ([]models.ComplaintWithOwner, error) {
	if principal == nil {
		return nil, apperrors.ErrUnauthorized
	}
	return s.list(ctx, store.ComplaintFilter{OwnerID: principal.ID}, principal)
}

// ListAll returns every complaint; admins only.
func (s *ComplaintService) ListAll(ctx context.Context, principal *models.Principal) ([]models.ComplaintWithOwner, error) {
	if !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return s.list(ctx, store.ComplaintFilter{}, principal)
}

func (s *ComplaintService) list(ctx context.Context, filter store.ComplaintFilter, principal *models.Principal) ([]models.ComplaintWithOwner, error) {
	complaints, err := s.complaints.FindByFilter(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: list complaints: %v", apperrors.ErrInternal, err)
	}

	owners := make(map[string]*models.OwnerRef)
	result := make([]models.ComplaintWithOwner, 0, len(complaints))
	for _, complaint := range complaints {
		result = append(result, models.ComplaintWithOwner{
			Complaint: complaint,
			User:      s.resolveOwner(ctx, complaint.OwnerID, principal, owners),
		})
	}
	return result, nil
}

// resolveOwner populates an owner reference, caching lookups per listing.
// Unknown owners keep their id only.
func (s *ComplaintService) resolveOwner(ctx context.Context, ownerID string, principal *models.Principal, cache map[string]*models.OwnerRef) *models.OwnerRef {
	if ownerID == "" {
		return nil
	}
	if ref, ok := cache[ownerID]; ok {
		return ref
	}

	ref := &models.OwnerRef{ID: ownerID}
	user, err := s.users.FindByID(ctx, ownerID)
	switch {
	case err != nil:
		log.Printf("Error resolving complaint owner %s: %v", ownerID, err)
	case user != nil:
		ref.Name, ref.Email = user.Name, user.Email
	case principal != nil && principal.ID == ownerID:
		ref.Name, ref.Email = principal.Name, principal.Email
	}
	cache[ownerID] = ref
	return ref
}

// Trends counts complaints per calendar day over the trailing window ending
// today, oldest first, with zero for days that have none.
func (s *ComplaintService) Trends(ctx context.Context, windowDays int) ([]models.DayCount, error) {
	if windowDays <= 0 {
		windowDays = DefaultTrendDays
	}

	now := s.now().In(s.loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
	since := today.AddDate(0, 0, -(windowDays - 1))

	counts, err := s.complaints.AggregateCountsByDay(ctx, since, s.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: complaint trends: %v", apperrors.ErrInternal, err)
	}

	byDay := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDay[c.Date] += c.Count
	}

	trends := make([]models.DayCount, 0, windowDays)
	for i := 0; i < windowDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		trends = append(trends, models.DayCount{Date: day, Count: byDay[day]})
	}
	return trends, nil
}

// Stats returns user and complaint totals for the admin dashboard.
func (s *ComplaintService) Stats(ctx context.Context) (*Stats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %v", apperrors.ErrInternal, err)
	}
	complaints, err := s.complaints.Count(ctx, store.ComplaintFilter{})
	if err != nil {
		return nil, fmt.Errorf("%w: count complaints: %v", apperrors.ErrInternal, err)
	}
	resolved, err := s.complaints.Count(ctx, store.ComplaintFilter{Status: models.Resolved})
	if err != nil {
		return nil, fmt.Errorf("%w: count resolved complaints: %v", apperrors.ErrInternal, err)
	}
	return &Stats{Users: users, Complaints: complaints, Resolved: resolved}, nil
}

package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/models"
)

// MemoryComplaintStore is a thread-safe in-process ComplaintStore. Every read
// and write copies the document so callers never share history slices.
type MemoryComplaintStore struct {
	mu    sync.RWMutex
	data  map[primitive.ObjectID]*models.Complaint
	order []primitive.ObjectID
}

var _ ComplaintStore = (*MemoryComplaintStore)(nil)

func NewMemoryComplaintStore() *MemoryComplaintStore {
	return &MemoryComplaintStore{data: make(map[primitive.ObjectID]*models.Complaint)}
}

func (m *MemoryComplaintStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	complaint, ok := m.data[id]
	if !ok {
		return nil, nil
	}
	return cloneComplaint(complaint), nil
}

// FindByFilter returns matches newest first; equal timestamps keep insertion order.
func (m *MemoryComplaintStore) FindByFilter(_ context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	complaints := []models.Complaint{}
	for _, id := range m.order {
		complaint := m.data[id]
		if matches(complaint, filter) {
			complaints = append(complaints, *cloneComplaint(complaint))
		}
	}
	sort.SliceStable(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})
	return complaints, nil
}

func (m *MemoryComplaintStore) Create(_ context.Context, complaint *models.Complaint) (*models.Complaint, error) {
	created := cloneComplaint(complaint)
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}
	if created.StatusHistory == nil {
		created.StatusHistory = []models.StatusHistoryEntry{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.data[created.ID]; !exists {
		m.order = append(m.order, created.ID)
	}
	m.data[created.ID] = created
	return cloneComplaint(created), nil
}

func (m *MemoryComplaintStore) UpdateFields(_ context.Context, id primitive.ObjectID, update ComplaintUpdate) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.data[id]
	if !ok {
		return nil, nil
	}

	next := cloneComplaint(current)
	if update.Status != "" {
		next.Status = update.Status
	}
	if update.OwnerID != "" {
		next.OwnerID = update.OwnerID
	}
	if update.Push != nil {
		next.StatusHistory = append(next.StatusHistory, *update.Push)
	}
	m.data[id] = next
	return cloneComplaint(next), nil
}

func (m *MemoryComplaintStore) DeleteByID(_ context.Context, id primitive.ObjectID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.data[id]; !ok {
		return false, nil
	}
	delete(m.data, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true, nil
}

func (m *MemoryComplaintStore) AggregateCountsByDay(_ context.Context, since time.Time, loc *time.Location) ([]models.DayCount, error) {
	if loc == nil {
		loc = time.UTC
	}

	m.mu.RLock()
	buckets := make(map[string]int64)
	for _, complaint := range m.data {
		if complaint.CreatedAt.Before(since) {
			continue
		}
		buckets[complaint.CreatedAt.In(loc).Format("2006-01-02")]++
	}
	m.mu.RUnlock()

	counts := make([]models.DayCount, 0, len(buckets))
	for day, count := range buckets {
		counts = append(counts, models.DayCount{Date: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool { return counts[i].Date < counts[j].Date })
	return counts, nil
}

func (m *MemoryComplaintStore) Count(_ context.Context, filter ComplaintFilter) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var count int64
	for _, complaint := range m.data {
		if matches(complaint, filter) {
			count++
		}
	}
	return count, nil
}

func matches(complaint *models.Complaint, filter ComplaintFilter) bool {
	if filter.OwnerID != "" && complaint.OwnerID != filter.OwnerID {
		return false
	}
	if filter.Status != "" && complaint.Status != filter.Status {
		return false
	}
	return true
}

// MemoryUserStore is the in-process UserStore.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[primitive.ObjectID]models.User
}

var _ UserStore = (*MemoryUserStore)(nil)

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{users: make(map[primitive.ObjectID]models.User)}
}

func (m *MemoryUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[objectID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (m *MemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if strings.EqualFold(user.Email, email) {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (m *MemoryUserStore) Create(_ context.Context, user *models.User) (*models.User, error) {
	created := *user
	if created.ID.IsZero() {
		created.ID = primitive.NewObjectID()
	}

	m.mu.Lock()
	m.users[created.ID] = created
	m.mu.Unlock()

	return &created, nil
}

func (m *MemoryUserStore) Count(_ context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.users)), nil
}

package controllers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"civicfix-be/controllers"
	"civicfix-be/middlewares"
	"civicfix-be/models"
	"civicfix-be/notifier"
	"civicfix-be/routes"
	"civicfix-be/services"
	"civicfix-be/store"
	authUtils "civicfix-be/utils"
)

const testSecret = "controller-secret"

type recordingSender struct {
	mu   sync.Mutex
	sent []notifier.Message
}

func (s *recordingSender) Send(_ context.Context, msg notifier.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return true
}

type testServer struct {
	router     *gin.Engine
	complaints *store.MemoryComplaintStore
	users      *store.MemoryUserStore
	sender     *recordingSender
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ts := &testServer{
		complaints: store.NewMemoryComplaintStore(),
		users:      store.NewMemoryUserStore(),
		sender:     &recordingSender{},
	}
	admin := models.Principal{ID: "admin-id", Name: "Admin", Email: "admin@civicfix.com", Role: models.RoleAdmin}
	gate := middlewares.NewAuthGate(testSecret, admin, ts.users)
	service := services.NewComplaintService(ts.complaints, ts.users, ts.sender)

	r := gin.New()
	r.Use(middlewares.Recovery(gin.DefaultErrorWriter))
	routes.HealthRoutes(r)
	routes.AuthRoutes(r, gate)
	routes.ComplaintRoutes(r, gate, middlewares.ComplaintRateLimiter(nil, "", 0), controllers.NewComplaintController(service))
	routes.AdminRoutes(r, gate, controllers.NewAdminController(service))
	r.NoRoute(middlewares.NotFound)
	ts.router = r
	return ts
}

func (ts *testServer) addUser(t *testing.T, name, email string) string {
	t.Helper()
	user, err := ts.users.Create(context.Background(), &models.User{Name: name, Email: email, Role: models.RoleUser})
	require.NoError(t, err)
	return user.ID.Hex()
}

func (ts *testServer) addComplaint(t *testing.T, ownerID string) primitive.ObjectID {
	t.Helper()
	c, err := ts.complaints.Create(context.Background(), &models.Complaint{
		Title: "Pothole", Description: "Deep pothole", Category: models.Road,
		Status: models.Pending, OwnerID: ownerID, CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return c.ID
}

func (ts *testServer) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		token, err := authUtils.GenerateToken(testSecret, userID, models.RoleUser, time.Hour)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestCreateComplaint(t *testing.T) {
	ts := setupTestServer(t)
	citizen := ts.addUser(t, "Priya", "priya@example.com")

	w := ts.do(t, http.MethodPost, "/api/complaints", citizen, gin.H{
		"title": "Leaking pipe", "description": "Water everywhere", "category": "Water",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.Complaint](t, w)
	assert.Equal(t, "Leaking pipe", created.Title)
	assert.Equal(t, models.Pending, created.Status)
	assert.Equal(t, citizen, created.OwnerID)
	assert.NotNil(t, created.StatusHistory)
	assert.Empty(t, created.StatusHistory)
}

func TestCreateComplaint_Validation(t *testing.T) {
	ts := setupTestServer(t)
	citizen := ts.addUser(t, "Priya", "priya@example.com")

	w := ts.do(t, http.MethodPost, "/api/complaints", citizen, gin.H{"description": "no title"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodPost, "/api/complaints", "", gin.H{"title": "t", "description": "d"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateComplaintStatus(t *testing.T) {
	ts := setupTestServer(t)
	citizen := ts.addUser(t, "Priya", "priya@example.com")
	id := ts.addComplaint(t, citizen)

	w := ts.do(t, http.MethodPatch, "/api/complaints/"+id.Hex(), "admin-id", gin.H{"status": "Resolved", "comment": "fixed"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Status updated and comment added.","emailSent":true}`, w.Body.String())
	require.Len(t, ts.sender.sent, 1)
	assert.Equal(t, "priya@example.com", ts.sender.sent[0].To)

	stored, _ := ts.complaints.FindByID(context.Background(), id)
	assert.Equal(t, models.Resolved, stored.Status)
	require.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, "Admin", stored.StatusHistory[0].ChangedBy)
}

func TestUpdateComplaintStatus_Errors(t *testing.T) {
	ts := setupTestServer(t)
	citizen := ts.addUser(t, "Priya", "priya@example.com")
	id := ts.addComplaint(t, citizen)

	tests := []struct {
		name    string
		path    string
		userID  string
		body    any
		code    int
		message string
	}{
		{"citizen forbidden", "/api/complaints/" + id.Hex(), citizen, gin.H{"status": "Resolved"}, http.StatusForbidden, "Access denied"},
		{"malformed id", "/api/complaints/not-an-id", "admin-id", gin.H{"status": "Resolved"}, http.StatusBadRequest, "Invalid complaint ID"},
		{"unknown id", "/api/complaints/" + primitive.NewObjectID().Hex(), "admin-id", gin.H{"status": "Resolved"}, http.StatusNotFound, "Complaint not found"},
		{"invalid status", "/api/complaints/" + id.Hex(), "admin-id", gin.H{"status": "Closed"}, http.StatusBadRequest, ""},
		{"no token", "/api/complaints/" + id.Hex(), "", gin.H{"status": "Resolved"}, http.StatusUnauthorized, "Not authorized"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPatch, tt.path, tt.userID, tt.body)
			assert.Equal(t, tt.code, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, decode[map[string]string](t, w)["message"])
			}
		})
	}

	assert.Empty(t, ts.sender.sent)
	stored, _ := ts.complaints.FindByID(context.Background(), id)
	assert.Equal(t, models.Pending, stored.Status)
	assert.Empty(t, stored.StatusHistory)
}

func TestDeleteComplaint(t *testing.T) {
	ts := setupTestServer(t)
	owner := ts.addUser(t, "Owner", "owner@example.com")
	other := ts.addUser(t, "Other", "other@example.com")
	id := ts.addComplaint(t, owner)

	w := ts.do(t, http.MethodDelete, "/api/complaints/"+id.Hex(), other, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodDelete, "/api/complaints/"+id.Hex(), owner, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Complaint deleted"}`, w.Body.String())

	w = ts.do(t, http.MethodDelete, "/api/complaints/"+id.Hex(), owner, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListComplaints(t *testing.T) {
	ts := setupTestServer(t)
	priya := ts.addUser(t, "Priya", "priya@example.com")
	other := ts.addUser(t, "Other", "other@example.com")
	ts.addComplaint(t, priya)
	ts.addComplaint(t, other)

	w := ts.do(t, http.MethodGet, "/api/complaints", priya, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/complaints", "admin-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	all := decode[[]map[string]any](t, w)
	require.Len(t, all, 2)
	for _, c := range all {
		user := c["user"].(map[string]any)
		assert.NotEmpty(t, user["email"])
	}

	w = ts.do(t, http.MethodGet, "/api/complaints/my", priya, nil)
	require.Equal(t, http.StatusOK, w.Code)
	mine := decode[[]map[string]any](t, w)
	require.Len(t, mine, 1)
	assert.Equal(t, priya, mine[0]["user"].(map[string]any)["id"])
}

func TestComplaintTrends(t *testing.T) {
	ts := setupTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/complaints/trends", "admin-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	trends := decode[[]models.DayCount](t, w)
	require.Len(t, trends, 7)
	for _, day := range trends {
		assert.Zero(t, day.Count)
	}

	w = ts.do(t, http.MethodGet, "/api/complaints/trends?days=30", "admin-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]models.DayCount](t, w), 30)

	w = ts.do(t, http.MethodGet, "/api/complaints/trends?days=abc", "admin-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminStatsAndMe(t *testing.T) {
	ts := setupTestServer(t)
	priya := ts.addUser(t, "Priya", "priya@example.com")
	ts.addComplaint(t, priya)

	w := ts.do(t, http.MethodGet, "/api/admin/stats", "admin-id", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"users":1,"complaints":1,"resolved":0}`, w.Body.String())

	w = ts.do(t, http.MethodGet, "/api/admin/stats", priya, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ts.do(t, http.MethodGet, "/api/auth/me", priya, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[models.Principal](t, w)
	assert.Equal(t, "Priya", me.Name)
	assert.Equal(t, models.RoleUser, me.Role)
}

func TestHealthAndNotFound(t *testing.T) {
	ts := setupTestServer(t)

	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/ping", "", nil).Code)
	assert.Equal(t, http.StatusOK, ts.do(t, http.MethodGet, "/", "", nil).Code)

	w := ts.do(t, http.MethodGet, "/api/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Route not found"}`, w.Body.String())
}

package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/campus-hub/eventhub/internal/container"
	"github.com/gin-gonic/gin"
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := container.NewContainer(logger, nil, nil, nil, container.Options{
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		AdminUsername: "admin",
		AdminPassword: "AdminPass1",
		Location:      time.UTC,
		AllowOrigins:  []string{"http://localhost:3000"},
	})
	if err != nil {
		t.Fatal(err)
	}
	return SetupRoutes(c)
}

func do(t *testing.T, r http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var res apiResponse
	_ = json.Unmarshal(w.Body.Bytes(), &res)
	return w, res
}

func signup(t *testing.T, r http.Handler, reg, role string) {
	t.Helper()
	w, res := do(t, r, http.MethodPost, "/api/v1/signup", "", map[string]any{
		"name":      "Test",
		"surname":   "User",
		"age":       21,
		"gender":    "F",
		"email":     reg + "@campus.edu",
		"phone":     fmt.Sprintf("%010d", len(reg)*1000+int(reg[len(reg)-1])),
		"regNumber": reg,
		"password":  "Secret1",
		"role":      role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: %d %s", reg, w.Code, res.Error)
	}
}

func login(t *testing.T, r http.Handler, path string, body map[string]string) string {
	t.Helper()
	w, res := do(t, r, http.MethodPost, path, "", body)
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: %d %s", path, w.Code, res.Error)
	}
	var data struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(res.Data, &data); err != nil || data.Token == "" {
		t.Fatalf("login %s returned no token: %v", path, err)
	}
	return data.Token
}

func TestHealth(t *testing.T) {
	w, _ := do(t, newTestRouter(t), http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("health = %d", w.Code)
	}
}

func TestAuthGuards(t *testing.T) {
	r := newTestRouter(t)

	if w, _ := do(t, r, http.MethodGet, "/api/v1/me", "", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/api/v1/me", "garbage", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d", w.Code)
	}

	signup(t, r, "S1", "STUDENT")
	student := login(t, r, "/api/v1/login", map[string]string{"regNumber": "S1", "password": "Secret1"})
	if w, _ := do(t, r, http.MethodGet, "/api/v1/admin/stats", student, nil); w.Code != http.StatusForbidden {
		t.Errorf("student on admin route: got %d", w.Code)
	}

	admin := login(t, r, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "AdminPass1"})
	if w, _ := do(t, r, http.MethodGet, "/api/v1/me", admin, nil); w.Code != http.StatusForbidden {
		t.Errorf("admin on user route: got %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/api/v1/admin/stats", admin, nil); w.Code != http.StatusOK {
		t.Errorf("admin stats: got %d", w.Code)
	}

	if w, _ := do(t, r, http.MethodPost, "/api/v1/login", "", map[string]string{"regNumber": "S1", "password": "Wrong1"}); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password: got %d", w.Code)
	}
}

func TestOrganizerEventAndBookingFlow(t *testing.T) {
	r := newTestRouter(t)

	signup(t, r, "ORG1", "ORGANIZER")
	signup(t, r, "S1", "STUDENT")
	signup(t, r, "S2", "STUDENT")

	event := map[string]any{
		"title":    "Go Meetup",
		"date":     "2099-05-01",
		"time":     "18:00",
		"venue":    "Hall A",
		"category": "Tech",
		"capacity": 1,
		"duration": 90,
	}

	org := login(t, r, "/api/v1/login", map[string]string{"regNumber": "ORG1", "password": "Secret1"})
	if w, _ := do(t, r, http.MethodPost, "/api/v1/events", org, event); w.Code != http.StatusForbidden {
		t.Fatalf("pending organizer create: got %d", w.Code)
	}

	admin := login(t, r, "/api/v1/admin/login", map[string]string{"username": "admin", "password": "AdminPass1"})
	if w, res := do(t, r, http.MethodPost, "/api/v1/admin/organizers/ORG1/verify", admin, map[string]string{"decision": "approve"}); w.Code != http.StatusOK {
		t.Fatalf("verify: %d %s", w.Code, res.Error)
	}

	w, res := do(t, r, http.MethodPost, "/api/v1/events", org, event)
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: %d %s", w.Code, res.Error)
	}
	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(res.Data, &created); err != nil || created.ID == 0 {
		t.Fatalf("create event returned no id: %v", err)
	}
	base := fmt.Sprintf("/api/v1/events/%d", created.ID)

	if w, _ := do(t, r, http.MethodPost, "/api/v1/events", org, event); w.Code != http.StatusConflict {
		t.Errorf("same venue and time: got %d", w.Code)
	}

	s1 := login(t, r, "/api/v1/login", map[string]string{"regNumber": "S1", "password": "Secret1"})
	s2 := login(t, r, "/api/v1/login", map[string]string{"regNumber": "S2", "password": "Secret1"})

	if w, res := do(t, r, http.MethodPost, base+"/book", s1, nil); w.Code != http.StatusCreated {
		t.Fatalf("book: %d %s", w.Code, res.Error)
	}
	if w, _ := do(t, r, http.MethodPost, base+"/book", s2, nil); w.Code != http.StatusConflict {
		t.Fatalf("full event: got %d", w.Code)
	}
	if w, res := do(t, r, http.MethodPost, base+"/waitlist", s2, nil); w.Code != http.StatusCreated {
		t.Fatalf("join waitlist: %d %s", w.Code, res.Error)
	}
	if w, res := do(t, r, http.MethodDelete, base+"/book", s1, nil); w.Code != http.StatusOK {
		t.Fatalf("cancel: %d %s", w.Code, res.Error)
	}

	w, res = do(t, r, http.MethodGet, "/api/v1/me/tickets", s2, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("tickets: %d", w.Code)
	}
	var tickets []struct {
		EventID int64 `json:"eventId"`
		Seat    int   `json:"seat"`
		Waiting bool  `json:"waiting"`
	}
	if err := json.Unmarshal(res.Data, &tickets); err != nil {
		t.Fatal(err)
	}
	if len(tickets) != 1 || tickets[0].Waiting || tickets[0].Seat != 1 {
		t.Fatalf("waitlisted student should hold seat 1, got %+v", tickets)
	}

	if w, _ := do(t, r, http.MethodGet, base, "", nil); w.Code != http.StatusOK {
		t.Errorf("public event view: got %d", w.Code)
	}
	if w, _ := do(t, r, http.MethodGet, "/api/v1/events/abc", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad id: got %d", w.Code)
	}
}

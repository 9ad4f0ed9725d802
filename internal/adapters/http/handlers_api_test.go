package web

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"garage/internal/adapters/http/middleware"
	"garage/internal/adapters/http/perf"
	"garage/internal/adapters/storage"
	accountStore "garage/internal/adapters/storage/account"
	auditStore "garage/internal/adapters/storage/audit"
	closedDateStore "garage/internal/adapters/storage/closeddate"
	requestStore "garage/internal/adapters/storage/request"
	serviceTypeStore "garage/internal/adapters/storage/servicetype"
	accountDomain "garage/internal/domain/account"
	serviceTypeDomain "garage/internal/domain/servicetype"
)

var testClock = time.Date(2025, 5, 10, 12, 0, 0, 0, time.UTC)

// newTestServer builds a handler over an in-memory database with one seeded
// service type. The clock is pinned to testClock.
func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}

	s := &Stores{
		AccountStore:     accountStore.NewSQLiteStore(db),
		RequestStore:     requestStore.NewSQLiteStore(db),
		ClosedDateStore:  closedDateStore.NewSQLiteStore(db),
		ServiceTypeStore: serviceTypeStore.NewSQLiteStore(db),
		AuditStore:       auditStore.NewSQLiteStore(db),
	}
	if err := s.ServiceTypeStore.Save(t.Context(), serviceTypeDomain.ServiceType{
		ID: "type-oil", Name: "Oil Change",
	}); err != nil {
		t.Fatalf("failed to seed service type: %v", err)
	}

	RateLimitPerSecond = 1000
	handler := NewMux(s, perf.NewCollector(100))

	prevNow := timeNow
	timeNow = func() time.Time { return testClock }
	t.Cleanup(func() { timeNow = prevNow })

	return handler
}

// adminToken issues a bearer token for a synthetic admin session.
func adminToken(t *testing.T) string {
	t.Helper()
	token, err := tokenIssuer.Issue(middleware.Session{
		AccountID: "admin-001",
		Email:     "admin@garage.test",
		Role:      accountDomain.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return token
}

// doJSON performs a request against the handler and returns the recorder.
func doJSON(t *testing.T, handler http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body apiError
	decodeBody(t, rec, &body)
	return body.Error.Code
}

func submitBody(date string) map[string]string {
	return map[string]string{
		"name":          "Somchai P.",
		"phone":         "0812345678",
		"carModel":      "Toyota Vios",
		"licensePlate":  "ABC-1234",
		"preferredDate": date,
		"serviceType":   "Oil Change",
	}
}

// TestAPI_RequestLifecycle walks submit -> accept -> reschedule -> remove.
func TestAPI_RequestLifecycle(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	// Public intake
	rec := doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("submit status = %d, body %s", rec.Code, rec.Body.String())
	}
	var created requestJSON
	decodeBody(t, rec, &created)
	if created.Status != "pending" || created.ID == "" {
		t.Fatalf("unexpected created entity: %+v", created)
	}

	// Shows up as pending on the dashboard
	rec = doJSON(t, handler, "GET", "/api/maintenance", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status = %d", rec.Code)
	}
	var listing map[string][]requestJSON
	decodeBody(t, rec, &listing)
	if len(listing["pending"]) != 1 || len(listing["accepted"]) != 0 {
		t.Fatalf("unexpected listing: %+v", listing)
	}

	// Accept
	rec = doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"status": "accepted"})
	if rec.Code != http.StatusOK {
		t.Fatalf("accept status = %d, body %s", rec.Code, rec.Body.String())
	}

	// The day is now booked
	rec = doJSON(t, handler, "GET", "/api/maintenance/booked-dates", "", nil)
	var booked []string
	decodeBody(t, rec, &booked)
	if len(booked) != 1 || booked[0] != "2025-05-20" {
		t.Fatalf("unexpected booked dates: %v", booked)
	}

	// Reschedule keeps accepted status
	rec = doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"preferredDate": "2025-05-25"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reschedule status = %d, body %s", rec.Code, rec.Body.String())
	}
	var updated requestJSON
	decodeBody(t, rec, &updated)
	if updated.PreferredDate != "2025-05-25" || updated.Status != "accepted" {
		t.Fatalf("unexpected updated entity: %+v", updated)
	}

	// Remove the accepted booking
	rec = doJSON(t, handler, "DELETE", "/api/maintenance/"+created.ID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d, body %s", rec.Code, rec.Body.String())
	}
	rec = doJSON(t, handler, "GET", "/api/maintenance", token, nil)
	decodeBody(t, rec, &listing)
	if len(listing["pending"])+len(listing["accepted"]) != 0 {
		t.Fatalf("expected empty listing, got %+v", listing)
	}
}

// TestAPI_DecideTwiceConflicts verifies the invalid_transition envelope.
func TestAPI_DecideTwiceConflicts(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	rec := doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	var created requestJSON
	decodeBody(t, rec, &created)

	doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"status": "rejected"})
	rec = doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"status": "accepted"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if code := errorCode(t, rec); code != "invalid_transition" {
		t.Errorf("error code = %s, want invalid_transition", code)
	}
}

// TestAPI_RemovePendingRejected verifies only accepted requests are removable.
func TestAPI_RemovePendingRejected(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	rec := doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	var created requestJSON
	decodeBody(t, rec, &created)

	rec = doJSON(t, handler, "DELETE", "/api/maintenance/"+created.ID, token, nil)
	if rec.Code != http.StatusConflict {
		t.Errorf("delete pending status = %d, want 409", rec.Code)
	}
}

// TestAPI_SubmitValidation verifies the validation_error envelope.
func TestAPI_SubmitValidation(t *testing.T) {
	handler := newTestServer(t)

	body := submitBody("2025-05-20")
	body["name"] = ""
	rec := doJSON(t, handler, "POST", "/api/maintenance", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if code := errorCode(t, rec); code != "validation_error" {
		t.Errorf("error code = %s, want validation_error", code)
	}

	// Past date
	rec = doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-01"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("past date status = %d, want 400", rec.Code)
	}

	// Unknown service type
	body = submitBody("2025-05-20")
	body["serviceType"] = "Hovercraft Alignment"
	rec = doJSON(t, handler, "POST", "/api/maintenance", "", body)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown type status = %d, want 400", rec.Code)
	}
}

// TestAPI_SearchFilter verifies server-side filtering.
func TestAPI_SearchFilter(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	other := submitBody("2025-05-21")
	other["name"] = "Rangi W."
	other["licensePlate"] = "ZZZ-9999"
	doJSON(t, handler, "POST", "/api/maintenance", "", other)

	rec := doJSON(t, handler, "GET", "/api/maintenance?search=zzz-99", token, nil)
	var listing map[string][]requestJSON
	decodeBody(t, rec, &listing)
	if len(listing["pending"]) != 1 || listing["pending"][0].Name != "Rangi W." {
		t.Errorf("plate search mismatch: %+v", listing)
	}

	rec = doJSON(t, handler, "GET", "/api/maintenance?date=2025-05-20", token, nil)
	decodeBody(t, rec, &listing)
	if len(listing["pending"]) != 1 || listing["pending"][0].Name != "Somchai P." {
		t.Errorf("date filter mismatch: %+v", listing)
	}
}

// TestAPI_Summary verifies the dashboard counters endpoint.
func TestAPI_Summary(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	rec := doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	var created requestJSON
	decodeBody(t, rec, &created)
	doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-21"))
	doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"status": "accepted"})

	rec = doJSON(t, handler, "GET", "/api/maintenance/summary", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary status = %d", rec.Code)
	}
	var summary struct {
		TodayRequests   int            `json:"todayRequests"`
		PendingRequests int            `json:"pendingRequests"`
		StatusBreakdown map[string]int `json:"statusBreakdown"`
	}
	decodeBody(t, rec, &summary)
	if summary.TodayRequests != 2 {
		t.Errorf("todayRequests = %d, want 2", summary.TodayRequests)
	}
	if summary.PendingRequests != 1 {
		t.Errorf("pendingRequests = %d, want 1", summary.PendingRequests)
	}
	if summary.StatusBreakdown["accepted"] != 1 || summary.StatusBreakdown["pending"] != 1 {
		t.Errorf("unexpected breakdown: %v", summary.StatusBreakdown)
	}
}

// TestAPI_ClosedDatesAndAvailability verifies the calendar endpoints.
func TestAPI_ClosedDatesAndAvailability(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	// Close a day
	rec := doJSON(t, handler, "POST", "/api/closed-dates", token, map[string]string{"date": "2025-05-22"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("close status = %d, body %s", rec.Code, rec.Body.String())
	}

	// Submitting on the closed day is refused
	rec = doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-22"))
	if rec.Code != http.StatusConflict {
		t.Errorf("submit on closed day status = %d, want 409", rec.Code)
	}

	// The availability range reports the closed day
	rec = doJSON(t, handler, "GET", "/api/availability?start=2025-05-20&end=2025-05-25", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("availability status = %d", rec.Code)
	}
	var avail map[string][]string
	decodeBody(t, rec, &avail)
	if len(avail["unavailable"]) != 1 || avail["unavailable"][0] != "2025-05-22" {
		t.Errorf("unexpected unavailable dates: %v", avail["unavailable"])
	}

	// Toggling again reopens the day
	rec = doJSON(t, handler, "POST", "/api/closed-dates", token, map[string]string{"date": "2025-05-22"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reopen status = %d", rec.Code)
	}
	var toggled map[string]any
	decodeBody(t, rec, &toggled)
	if toggled["closed"] != false {
		t.Errorf("expected closed=false, got %v", toggled)
	}

	rec = doJSON(t, handler, "GET", "/api/closed-dates", "", nil)
	var closed []closedDateJSON
	decodeBody(t, rec, &closed)
	if len(closed) != 0 {
		t.Errorf("expected no closed dates, got %v", closed)
	}
}

// TestAPI_Login verifies credential login and token use.
func TestAPI_Login(t *testing.T) {
	handler := newTestServer(t)

	acct := accountDomain.Account{
		ID: "acct-001", Email: "admin@garage.test",
		Role: accountDomain.RoleAdmin, CreatedAt: testClock,
	}
	if err := acct.SetPassword("garage-admin-password"); err != nil {
		t.Fatalf("SetPassword failed: %v", err)
	}
	if err := stores.AccountStore.Save(t.Context(), acct); err != nil {
		t.Fatalf("failed to save account: %v", err)
	}

	rec := doJSON(t, handler, "POST", "/api/login", "", map[string]string{
		"email":    "admin@garage.test",
		"password": "garage-admin-password",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["token"] == "" {
		t.Fatal("expected a token")
	}

	// The issued token opens admin routes
	rec = doJSON(t, handler, "GET", "/api/maintenance", body["token"], nil)
	if rec.Code != http.StatusOK {
		t.Errorf("admin route with login token status = %d", rec.Code)
	}

	// Wrong password is a 401
	rec = doJSON(t, handler, "POST", "/api/login", "", map[string]string{
		"email":    "admin@garage.test",
		"password": "wrong-password-here",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", rec.Code)
	}
}

// TestAPI_AdminRoutesRequireAuth verifies the auth gate on admin routes.
func TestAPI_AdminRoutesRequireAuth(t *testing.T) {
	handler := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{"GET", "/api/maintenance"},
		{"GET", "/api/maintenance/summary"},
		{"PATCH", "/api/maintenance/some-id"},
		{"DELETE", "/api/maintenance/some-id"},
		{"POST", "/api/closed-dates"},
		{"POST", "/api/service-types"},
		{"GET", "/api/audit"},
	} {
		rec := doJSON(t, handler, route.method, route.path, "", map[string]string{})
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", route.method, route.path, rec.Code)
		}
	}
}

// TestAPI_ServiceTypes verifies taxonomy CRUD and the duplicate guard.
func TestAPI_ServiceTypes(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	rec := doJSON(t, handler, "POST", "/api/service-types", token, map[string]string{
		"name": "Brake Service", "description": "Pads and discs",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, handler, "POST", "/api/service-types", token, map[string]string{"name": "Brake Service"})
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate status = %d, want 409", rec.Code)
	}

	rec = doJSON(t, handler, "GET", "/api/service-types", "", nil)
	var types []serviceTypeJSON
	decodeBody(t, rec, &types)
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %v", types)
	}

	var brakeID string
	for _, st := range types {
		if st.Name == "Brake Service" {
			brakeID = st.ID
		}
	}
	rec = doJSON(t, handler, "DELETE", "/api/service-types/"+brakeID, token, nil)
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d", rec.Code)
	}
}

// TestAPI_AuditTrail verifies that admin mutations leave audit entries.
func TestAPI_AuditTrail(t *testing.T) {
	handler := newTestServer(t)
	token := adminToken(t)

	rec := doJSON(t, handler, "POST", "/api/maintenance", "", submitBody("2025-05-20"))
	var created requestJSON
	decodeBody(t, rec, &created)
	doJSON(t, handler, "PATCH", "/api/maintenance/"+created.ID, token, map[string]string{"status": "accepted"})
	doJSON(t, handler, "POST", "/api/closed-dates", token, map[string]string{"date": "2025-05-30"})

	rec = doJSON(t, handler, "GET", "/api/audit", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("audit status = %d", rec.Code)
	}
	var events []map[string]any
	decodeBody(t, rec, &events)
	if len(events) != 2 {
		t.Fatalf("expected 2 audit events, got %d", len(events))
	}
}

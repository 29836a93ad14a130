package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bomberos-dev/guardias/backend/internal/config"
	"github.com/bomberos-dev/guardias/backend/internal/domain"
	"github.com/bomberos-dev/guardias/backend/internal/service"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Path    string          `json:"path"`
	Method  string          `json:"method"`
}

func newTestHandler(t *testing.T) (*Handler, *stubStore) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Auth.JWT.Secret = "secreto-de-prueba"
	cfg.Auth.JWT.Expiration = 1
	cfg.Auth.Admin.Username = "admin"
	cfg.Auth.Admin.Password = "contraseña"

	store := &stubStore{}
	directory := &stubDirectory{
		groups:       map[int64]bool{5: true, 9: true},
		firefighters: map[int64]bool{111: true, 222: true},
	}

	svc := service.NewService(cfg, store, directory, &stubLocker{}, &stubPublisher{})

	h, err := NewHandler(cfg, svc)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	h.RegisterRoutes()

	return h, store
}

func login(t *testing.T, h *Handler) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"admin","password":"contraseña"}`))
	w := httptest.NewRecorder()
	h.Mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == tokenCookieName {
			return c
		}
	}
	t.Fatal("login did not set the session cookie")
	return nil
}

func do(t *testing.T, h *Handler, cookie *http.Cookie, method, target, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	h.Mux.ServeHTTP(w, req)

	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not the JSON envelope: %v (%s)", err, w.Body.String())
	}
	return w, env
}

func TestAuthRequired(t *testing.T) {
	h, _ := newTestHandler(t)

	w, env := do(t, h, nil, "GET", "/groups/5/guardias?start=2024-03-01&end=2024-03-08", "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if env.Success {
		t.Fatal("expected success=false")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("POST", "/auth/login", strings.NewReader(`{"username":"admin","password":"incorrecta"}`))
	w := httptest.NewRecorder()
	h.Mux.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestCreateAssignments_SingleObjectWrapped(t *testing.T) {
	h, store := newTestHandler(t)
	cookie := login(t, h)

	w, env := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignacion":{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !env.Success {
		t.Fatalf("expected success, got error %q", env.Error)
	}
	if string(env.Data) != "1" {
		t.Fatalf("expected data=1, got %s", env.Data)
	}
	if env.Path != "/groups/5/guardias" || env.Method != "POST" {
		t.Fatalf("envelope must echo path and method, got %s %s", env.Method, env.Path)
	}
	if len(store.rows) != 1 {
		t.Fatalf("expected 1 persisted row, got %d", len(store.rows))
	}
}

func TestCreateAssignments_InvalidGroupParam(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	for _, target := range []string{"/groups/abc/guardias", "/groups/-2/guardias", "/groups/0/guardias"} {
		w, env := do(t, h, cookie, "POST", target,
			`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}]}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
		if env.Success {
			t.Errorf("%s: expected success=false", target)
		}
	}
}

func TestCreateAssignments_EmptyBatch(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	for _, body := range []string{`{}`, `{"asignaciones":[]}`} {
		w, _ := do(t, h, cookie, "POST", "/groups/5/guardias", body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: expected 400, got %d", body, w.Code)
		}
	}
}

func TestCreateAssignments_ConflictStatus(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	w, env := do(t, h, cookie, "POST", "/groups/9/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"15:00","hasta":"23:00"}]}`)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", w.Code)
	}
	if env.Error == "" {
		t.Fatal("expected an error message in the envelope")
	}
}

func TestCreateAssignments_UnknownGroup(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	w, _ := do(t, h, cookie, "POST", "/groups/42/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}]}`)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetAssignments_QueryAliases(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","hora_desde":"08:00","hora_hasta":"16:00"}]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	for _, target := range []string{
		"/groups/5/guardias?start=2024-03-01&end=2024-03-02",
		"/groups/5/guardias?desde=2024-03-01&hasta=2024-03-02",
	} {
		w, env := do(t, h, cookie, "GET", target, "")
		if w.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", target, w.Code)
		}

		var assignments []domain.GuardAssignment
		if err := json.Unmarshal(env.Data, &assignments); err != nil {
			t.Fatalf("%s: cannot decode data: %v", target, err)
		}
		if len(assignments) != 1 {
			t.Fatalf("%s: expected 1 assignment, got %d", target, len(assignments))
		}
		if assignments[0].HoraDesde != "08:00:00" {
			t.Fatalf("expected canonical time, got %s", assignments[0].HoraDesde)
		}
	}
}

func TestGetAssignments_RangeValidation(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	for _, target := range []string{
		"/groups/5/guardias",
		"/groups/5/guardias?start=2024-03-01",
		"/groups/5/guardias?start=2024-3-1&end=2024-03-08",
		"/groups/5/guardias?start=2024-03-01&end=08-03-2024",
	} {
		w, _ := do(t, h, cookie, "GET", target, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", target, w.Code)
		}
	}
}

func TestReplaceDay_Endpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	w, env := do(t, h, cookie, "PUT", "/groups/5/guardias/dia",
		`{"fecha":"2024-03-01","asignaciones":[]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if string(env.Data) != "true" {
		t.Fatalf("expected data=true, got %s", env.Data)
	}

	_, env = do(t, h, cookie, "GET", "/groups/5/guardias?start=2024-03-01&end=2024-03-02", "")
	var assignments []domain.GuardAssignment
	if err := json.Unmarshal(env.Data, &assignments); err != nil {
		t.Fatalf("cannot decode data: %v", err)
	}
	if len(assignments) != 0 {
		t.Fatalf("expected the day cleared, got %d assignments", len(assignments))
	}
}

func TestDeleteByRange_Endpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[
			{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"},
			{"dni":222,"fecha":"2024-03-02","desde":"08:00","hasta":"16:00"}
		]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	w, env := do(t, h, cookie, "DELETE", "/groups/5/guardias?start=2024-03-01&end=2024-03-08", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if string(env.Data) != "2" {
		t.Fatalf("expected 2 deletions, got %s", env.Data)
	}
}

func TestGetAssignmentsByFirefighter_Endpoint(t *testing.T) {
	h, _ := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"16:00"}]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}
	if w, _ := do(t, h, cookie, "POST", "/groups/9/guardias",
		`{"asignaciones":[{"dni":111,"fecha":"2024-03-01","desde":"16:00","hasta":"20:00"}]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	_, env := do(t, h, cookie, "GET", "/guardias/por-dni?dni=111&start=2024-03-01&end=2024-03-02", "")
	var assignments []domain.GuardAssignment
	if err := json.Unmarshal(env.Data, &assignments); err != nil {
		t.Fatalf("cannot decode data: %v", err)
	}
	if len(assignments) != 2 {
		t.Fatalf("expected 2 assignments across groups, got %d", len(assignments))
	}

	_, env = do(t, h, cookie, "GET", "/guardias/por-dni?dni=111&start=2024-03-01&end=2024-03-02&idGrupo=9", "")
	if err := json.Unmarshal(env.Data, &assignments); err != nil {
		t.Fatalf("cannot decode data: %v", err)
	}
	if len(assignments) != 1 || assignments[0].GroupID != 9 {
		t.Fatalf("expected only the group 9 assignment, got %d", len(assignments))
	}

	w, _ := do(t, h, cookie, "GET", "/guardias/por-dni?dni=abc&start=2024-03-01&end=2024-03-02", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed dni, got %d", w.Code)
	}
}

func TestDeleteByIDs_Endpoint(t *testing.T) {
	h, store := newTestHandler(t)
	cookie := login(t, h)

	if w, _ := do(t, h, cookie, "POST", "/groups/5/guardias",
		`{"asignaciones":[
			{"dni":111,"fecha":"2024-03-01","desde":"08:00","hasta":"12:00"},
			{"dni":111,"fecha":"2024-03-01","desde":"12:00","hasta":"16:00"}
		]}`); w.Code != http.StatusOK {
		t.Fatalf("setup create failed: %d", w.Code)
	}
	if len(store.rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(store.rows))
	}

	w, env := do(t, h, cookie, "DELETE", "/guardias?ids=1,2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if string(env.Data) != "2" {
		t.Fatalf("expected 2 deletions, got %s", env.Data)
	}

	// repeating the call deletes nothing and does not error
	w, env = do(t, h, cookie, "DELETE", "/guardias?ids=1,2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on repeat, got %d", w.Code)
	}
	if string(env.Data) != "0" {
		t.Fatalf("expected 0 deletions on repeat, got %s", env.Data)
	}
}

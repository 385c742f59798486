package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"infini-cli/internal/model"
)

func TestLogin_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/auth/login" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","email":"a@example.com","name":"Ana"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	s, err := c.Login(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if s.Token != "tok-1" || s.User.Name != "Ana" {
		t.Fatalf("unexpected session: %+v", s)
	}
}

func TestLogin_RejectedCredentialsIsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"invalid credentials"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Login(context.Background(), "a@example.com", "wrong")
	ae, ok := err.(AuthError)
	if !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if ae.Reason != "invalid credentials" {
		t.Fatalf("expected structured error message, got %q", ae.Reason)
	}
}

func TestAuthenticatedCalls_CarryBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"projects":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.SetSession(&model.Session{Token: "tok-42"})
	if _, err := c.ListProjects(context.Background()); err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if gotAuth != "Bearer tok-42" {
		t.Fatalf("expected bearer token, got %q", gotAuth)
	}
}

func TestExpiredToken_IsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"token expired"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "stale"
	if _, err := c.ListProjects(context.Background()); err == nil {
		t.Fatalf("expected error")
	} else if _, ok := err.(AuthError); !ok {
		t.Fatalf("expected AuthError, got %T: %v", err, err)
	}
	if _, err := c.GenerateAll(context.Background(), "p1"); err == nil {
		t.Fatalf("expected error")
	} else if _, ok := err.(AuthError); !ok {
		t.Fatalf("generate with bad token: expected AuthError, got %T", err)
	}
}

func TestGenerateAll_RemoteFailureIsGenerationError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"error":"model overloaded"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "tok"
	_, err := c.GenerateAll(context.Background(), "p1")
	ge, ok := err.(GenerationError)
	if !ok {
		t.Fatalf("expected GenerationError, got %T: %v", err, err)
	}
	if ge.Reason != "model overloaded" {
		t.Fatalf("unexpected reason: %q", ge.Reason)
	}
}

func TestRefineSection_ReturnsContentOnly(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sections/sec-2/refine" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"content":"shorter text"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "tok"
	content, err := c.RefineSection(context.Background(), "sec-2", "Shorten to 100 words")
	if err != nil {
		t.Fatalf("RefineSection: %v", err)
	}
	if content != "shorter text" {
		t.Fatalf("unexpected content: %q", content)
	}
}

func TestExportProject_BinaryPayload(t *testing.T) {
	payload := []byte{0x50, 0x4b, 0x03, 0x04, 0x00}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "tok"
	b, err := c.ExportProject(context.Background(), "p1")
	if err != nil {
		t.Fatalf("ExportProject: %v", err)
	}
	if string(b) != string(payload) {
		t.Fatalf("payload mismatch: %v", b)
	}
}

func TestExportProject_FailureIsExportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("renderer crashed"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "tok"
	if _, err := c.ExportProject(context.Background(), "p1"); err == nil {
		t.Fatalf("expected error")
	} else if _, ok := err.(ExportError); !ok {
		t.Fatalf("expected ExportError, got %T: %v", err, err)
	}
}

func TestErrorMessage_FallsBackToRawBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>Internal Server Error</html>"))
	}))
	defer srv.Close()

	c := New(srv.URL)
	c.Token = "tok"
	_, err := c.ListProjects(context.Background())
	ne, ok := err.(NetworkError)
	if !ok {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
	if ne.Reason == "" {
		t.Fatalf("expected non-empty reason")
	}
}

func TestTransportFailure_IsNetworkError(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	c.Token = "tok"
	if _, err := c.ListProjects(context.Background()); err == nil {
		t.Fatalf("expected error")
	} else if _, ok := err.(NetworkError); !ok {
		t.Fatalf("expected NetworkError, got %T: %v", err, err)
	}
}

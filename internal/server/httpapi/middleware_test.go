package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mweller/jotter/internal/server/auth"
)

func authedServer() *Server {
	return &Server{jwtSecret: []byte("test-secret")}
}

func protectedEcho(t *testing.T, gotUserID *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if !ok {
			t.Error("user id missing from context")
		}
		*gotUserID = id
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	s := authedServer()
	handlerRan := false
	h := s.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
	if handlerRan {
		t.Fatal("handler must not run without identity")
	}
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	s := authedServer()
	h := s.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	s := authedServer()
	token, err := auth.GenerateToken("u1", s.jwtSecret, -time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	h := s.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestAuthenticate_ValidToken(t *testing.T) {
	s := authedServer()
	token, err := auth.GenerateToken("u1", s.jwtSecret, time.Minute)
	if err != nil {
		t.Fatalf("token error: %v", err)
	}

	var gotUserID string
	h := s.Authenticate(protectedEcho(t, &gotUserID))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/entries", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotUserID != "u1" {
		t.Errorf("user id = %q", gotUserID)
	}
}

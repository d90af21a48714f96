package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bounce-app/apiserver/internal/auth"
)

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService("test-secret", 0)
	otherTokens := auth.NewTokenService("other-secret", 0)

	token, err := tokens.Issue(42)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	forged, err := otherTokens.Issue(42)
	if err != nil {
		t.Fatalf("issue forged token: %v", err)
	}

	var gotUserID int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = userIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	handler := RequireAuth(tokens)(next)

	tests := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"garbage token", "Bearer not-a-token", http.StatusUnauthorized},
		{"wrong secret", "Bearer " + forged, http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUserID = 0
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK && gotUserID != 42 {
				t.Fatalf("user id in context = %d, want 42", gotUserID)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{"plain", "Bearer abc", "abc", false},
		{"case insensitive scheme", "bearer abc", "abc", false},
		{"surrounding whitespace", "  Bearer abc  ", "abc", false},
		{"missing", "", "", true},
		{"no token", "Bearer", "", true},
		{"blank token", "Bearer   ", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := bearerToken(req)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

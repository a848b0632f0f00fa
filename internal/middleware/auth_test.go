package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/constitution-quest/backend/internal/auth"
)

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	var called bool
	req := httptest.NewRequest("GET", "/api/v1/progress", nil)
	rr := httptest.NewRecorder()

	AuthMiddleware(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("handler ran without authentication")
	}
}

func TestAuthMiddlewareResolvesUserID(t *testing.T) {
	token, err := auth.GenerateToken(42)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	var gotID int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotID, _ = r.Context().Value("user_id").(int64)
	})

	req := httptest.NewRequest("GET", "/api/v1/progress", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()

	AuthMiddleware(handler).ServeHTTP(rr, req)

	if gotID != 42 {
		t.Errorf("user id = %d, want 42", gotID)
	}
}

func TestAdminOnlyRejectsUnauthenticated(t *testing.T) {
	var called bool
	req := httptest.NewRequest("POST", "/api/v1/admin/modules/1/chapters/1/quiz/generate", nil)
	rr := httptest.NewRecorder()

	AdminOnly(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if called {
		t.Error("handler ran without authentication")
	}
}

func TestAdminOnlyRejectsNonAdmin(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "7, 9")

	var called bool
	req := httptest.NewRequest("POST", "/api/v1/admin/modules/1/chapters/1/quiz/generate", nil)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", int64(42)))
	rr := httptest.NewRecorder()

	AdminOnly(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler ran for a non-admin user")
	}
}

func TestAdminOnlyAllowsListedAdmin(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "7, 9")

	var called bool
	req := httptest.NewRequest("POST", "/api/v1/admin/modules/1/chapters/1/quiz/generate", nil)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", int64(9)))
	rr := httptest.NewRecorder()

	AdminOnly(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusOK)
	}
	if !called {
		t.Error("handler did not run for a listed admin")
	}
}

func TestAdminOnlyDeniesByDefault(t *testing.T) {
	t.Setenv("ADMIN_USER_IDS", "")

	var called bool
	req := httptest.NewRequest("POST", "/api/v1/admin/modules/1/chapters/1/quiz/generate", nil)
	req = req.WithContext(context.WithValue(req.Context(), "user_id", int64(1)))
	rr := httptest.NewRecorder()

	AdminOnly(okHandler(&called)).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if called {
		t.Error("handler ran with no admins configured")
	}
}

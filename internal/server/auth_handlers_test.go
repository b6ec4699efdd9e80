package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"agora/internal/cache"
	"agora/internal/middleware"
	"agora/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func postJSON(t *testing.T, path string, body map[string]string) *http.Request {
	t.Helper()
	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestRegister(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, _ := newHandlerTestServer(t, db)

	app := newTestApp()
	app.Post("/register", s.Register)

	tests := []struct {
		name           string
		body           map[string]string
		expectedStatus int
	}{
		{
			name: "success",
			body: map[string]string{
				"username": "wanderer",
				"email":    "wanderer@example.com",
				"password": "Password123!",
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "duplicate username",
			body: map[string]string{
				"username": "wanderer",
				"email":    "other@example.com",
				"password": "Password123!",
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name: "weak password",
			body: map[string]string{
				"username": "newcomer",
				"email":    "newcomer@example.com",
				"password": "short",
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "missing fields",
			body: map[string]string{
				"username": "nobody",
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(postJSON(t, "/register", tt.body))
			if err != nil {
				t.Fatalf("app.Test: %v", err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode != tt.expectedStatus {
				t.Fatalf("expected %d, got %d", tt.expectedStatus, resp.StatusCode)
			}
		})
	}

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user, got %d", count)
	}
}

func TestLogin(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, _ := newHandlerTestServer(t, db)
	createHandlerTestUser(t, db, "wanderer")

	app := newTestApp()
	app.Post("/login", s.Login)

	t.Run("success returns token", func(t *testing.T) {
		resp, err := app.Test(postJSON(t, "/login", map[string]string{
			"email":    "wanderer@example.com",
			"password": "Password123!",
		}))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}

		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("decode body: %v", err)
		}
		if body.Token == "" {
			t.Fatal("expected a token in the response")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		resp, err := app.Test(postJSON(t, "/login", map[string]string{
			"email":    "wanderer@example.com",
			"password": "WrongPassword1!",
		}))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		resp, err := app.Test(postJSON(t, "/login", map[string]string{
			"email":    "stranger@example.com",
			"password": "Password123!",
		}))
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", resp.StatusCode)
		}
	})
}

func TestLogoutRevokesToken(t *testing.T) {
	db := setupHandlerTestDB(t)
	s, _ := newHandlerTestServer(t, db)
	createHandlerTestUser(t, db, "wanderer")

	mr := miniredis.RunT(t)
	cache.SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { cache.SetClient(nil) })
	middleware.InitMiddleware(s.config, cache.IsTokenRevoked)

	app := newTestApp()
	app.Post("/login", s.Login)
	app.Post("/logout", middleware.AuthRequired, s.Logout)
	app.Get("/me", middleware.AuthRequired, s.GetMyProfile)

	// Login for a real token.
	resp, err := app.Test(postJSON(t, "/login", map[string]string{
		"email":    "wanderer@example.com",
		"password": "Password123!",
	}))
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode login body: %v", err)
	}
	_ = resp.Body.Close()

	authed := func(method, path string) *http.Request {
		req := httptest.NewRequest(method, path, nil)
		req.Header.Set("Authorization", "Bearer "+body.Token)
		return req
	}

	// Token works before logout.
	resp, err = app.Test(authed(http.MethodGet, "/me"))
	if err != nil {
		t.Fatalf("me before logout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 before logout, got %d", resp.StatusCode)
	}

	resp, err = app.Test(authed(http.MethodPost, "/logout"))
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 on logout, got %d", resp.StatusCode)
	}

	// The same token is rejected afterwards.
	resp, err = app.Test(authed(http.MethodGet, "/me"))
	if err != nil {
		t.Fatalf("me after logout: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}
}

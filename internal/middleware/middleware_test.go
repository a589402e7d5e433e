package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"shortify-be/internal/entities"
	"shortify-be/internal/jwt"
	"shortify-be/internal/logger"
	"shortify-be/internal/repository"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type mockUsers struct {
	FindByIDFunc func(ctx context.Context, id string) (*entities.User, error)
}

func (m *mockUsers) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return m.FindByIDFunc(ctx, id)
}

func newTokens() *jwt.JWTService {
	return jwt.NewJWTService(jwt.Config{
		AccessSecret:      "access",
		RefreshSecret:     "refresh",
		VerifyEmailSecret: "verify",
	})
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	access, _ := tokens.IssueAccessToken("user-1")
	refresh, _ := tokens.IssueRefreshToken("user-1")

	router := gin.New()
	router.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		id, _ := UserID(c)
		c.String(http.StatusOK, id)
	})

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{"valid", "Bearer " + access, http.StatusOK},
		{"lowercase scheme", "bearer " + access, http.StatusOK},
		{"missing", "", http.StatusUnauthorized},
		{"no scheme", access, http.StatusUnauthorized},
		{"wrong scheme", "Basic " + access, http.StatusUnauthorized},
		{"refresh token", "Bearer " + refresh, http.StatusUnauthorized},
		{"garbage", "Bearer abc.def.ghi", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusOK {
				if rec.Body.String() != "user-1" {
					t.Errorf("user id = %q, want user-1", rec.Body.String())
				}
				return
			}
			if body := decodeBody(t, rec); body["status"] != false || body["message"] == "" {
				t.Errorf("unexpected error body: %v", body)
			}
		})
	}
}

func TestRequireVerified(t *testing.T) {
	tokens := newTokens()
	access, _ := tokens.IssueAccessToken("user-1")

	tests := []struct {
		name       string
		find       func(ctx context.Context, id string) (*entities.User, error)
		wantStatus int
	}{
		{
			name: "verified",
			find: func(ctx context.Context, id string) (*entities.User, error) {
				return &entities.User{ID: id, IsVerified: true}, nil
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "unverified",
			find: func(ctx context.Context, id string) (*entities.User, error) {
				return &entities.User{ID: id}, nil
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "deleted",
			find: func(ctx context.Context, id string) (*entities.User, error) {
				return nil, repository.ErrNotFound
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "database down",
			find: func(ctx context.Context, id string) (*entities.User, error) {
				return nil, errors.New("connection refused")
			},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/private",
				AuthMiddleware(tokens),
				RequireVerified(&mockUsers{FindByIDFunc: tt.find}, logger.Discard()),
				func(c *gin.Context) { c.Status(http.StatusOK) },
			)

			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			req.Header.Set("Authorization", "Bearer "+access)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError &&
				strings.Contains(rec.Body.String(), "connection refused") {
				t.Error("internal error leaked to client")
			}
		})
	}
}

func TestRequestIDAndLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	router := gin.New()
	router.Use(RequestID(), Logger(log))
	router.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, GetRequestID(c.Request.Context()))
	})

	t.Run("generates id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

		id := rec.Header().Get(RequestIDHeader)
		if len(id) != 36 || rec.Body.String() != id {
			t.Errorf("request id header %q, context %q", id, rec.Body.String())
		}
	})

	t.Run("reuses incoming id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(RequestIDHeader, "abc-123")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Header().Get(RequestIDHeader) != "abc-123" {
			t.Errorf("request id = %q, want abc-123", rec.Header().Get(RequestIDHeader))
		}
		if !strings.Contains(buf.String(), `"request_id":"abc-123"`) || !strings.Contains(buf.String(), `"status":200`) {
			t.Errorf("log line missing fields: %s", buf.String())
		}
	})
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(logger.Discard()))
	router.GET("/boom", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if body := decodeBody(t, rec); body["status"] != false {
		t.Errorf("unexpected body: %v", body)
	}
}

func TestCORS(t *testing.T) {
	router := gin.New()
	router.Use(CORS([]string{"http://app.example.com"}))
	router.POST("/auth/signIn", func(c *gin.Context) { c.Status(http.StatusOK) })

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/auth/signIn", nil)
		req.Header.Set("Origin", "http://app.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want 204", rec.Code)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "http://app.example.com" ||
			rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
			t.Errorf("missing CORS headers: %v", rec.Header())
		}
	})

	t.Run("other origin gets no allow header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/auth/signIn", nil)
		req.Header.Set("Origin", "http://evil.example.com")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
			t.Errorf("Allow-Origin = %q, want empty", got)
		}
	})
}

package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/yungbote/calisthenics-backend/internal/domain"
	"github.com/yungbote/calisthenics-backend/internal/pkg/ctxutil"
	"github.com/yungbote/calisthenics-backend/internal/pkg/logger"
	"github.com/yungbote/calisthenics-backend/internal/services"
)

type stubAuth struct {
	userID uuid.UUID
}

func (s stubAuth) Register(context.Context, services.RegisterInput) (*types.User, error) {
	return nil, errors.New("unused")
}
func (s stubAuth) Login(context.Context, string, string) (services.TokenPair, error) {
	return services.TokenPair{}, errors.New("unused")
}
func (s stubAuth) Refresh(context.Context, string) (services.TokenPair, error) {
	return services.TokenPair{}, errors.New("unused")
}
func (s stubAuth) Logout(context.Context) error { return nil }
func (s stubAuth) GetAccessTTL() time.Duration  { return time.Hour }
func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	switch token {
	case "good":
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token, UserID: s.userID}), nil
	case "anon":
		return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{TokenString: token}), nil
	default:
		return ctx, errors.New("invalid token")
	}
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("test")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestRequireAuth(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	am := NewAuthMiddleware(testLogger(t), stubAuth{userID: userID})

	r := gin.New()
	r.GET("/me", am.RequireAuth(), func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})

	cases := []struct {
		name   string
		header string
		query  string
		status int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", "", http.StatusUnauthorized},
		{"no user", "Bearer anon", "", http.StatusForbidden},
		{"bearer", "Bearer good", "", http.StatusOK},
		{"query", "", "?token=good", http.StatusOK},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/me"+tc.query, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status: got=%d want=%d body=%s", rec.Code, tc.status, rec.Body.String())
			}
			if tc.status == http.StatusOK && rec.Body.String() != userID.String() {
				t.Fatalf("user id not attached: %s", rec.Body.String())
			}
		})
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		if td == nil || td.TraceID == "" {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, td.RequestID)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != "req-1" {
		t.Fatalf("got %d %q", rec.Code, rec.Body.String())
	}
	if rec.Header().Get("X-Request-Id") != "req-1" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("headers: %v", rec.Header())
	}
}

func TestInboundIDRejectsJunk(t *testing.T) {
	t.Parallel()
	long := make([]byte, maxInboundIDLen+1)
	for i := range long {
		long[i] = 'a'
	}
	cases := map[string]string{
		"  abc  ":      "abc",
		"":             "",
		"bad\nid":      "",
		string(long):   "",
		"trace-123_ok": "trace-123_ok",
	}
	for in, want := range cases {
		if got := inboundID(in); got != want {
			t.Fatalf("inboundID(%q)=%q want %q", in, got, want)
		}
	}
}

func TestAttachRequestContextSetsDeadline(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext(time.Second))
	handler := func(c *gin.Context) {
		if _, ok := c.Request.Context().Deadline(); ok {
			c.String(http.StatusOK, "deadline")
			return
		}
		c.String(http.StatusOK, "none")
	}
	r.GET("/api/dashboard", handler)
	r.GET("/api/events", handler)

	for path, want := range map[string]string{"/api/dashboard": "deadline", "/api/events": "none"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Body.String() != want {
			t.Fatalf("%s: got %q want %q", path, rec.Body.String(), want)
		}
	}
}

func TestRequestLoggerToleratesNilLogger(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(nil), Metrics(nil))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status: %d", rec.Code)
	}
}

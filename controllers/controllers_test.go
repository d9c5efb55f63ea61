package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/cppla/wellbeing/analytics"
	"github.com/cppla/wellbeing/middleware"
	"github.com/cppla/wellbeing/repository/repotest"
	"github.com/cppla/wellbeing/services"
	"github.com/cppla/wellbeing/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) utils.JSONResponse {
	t.Helper()
	var env utils.JSONResponse
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return env
}

func TestFail(t *testing.T) {
	validationErr := validator.New().Struct(struct {
		Email string `validate:"required,email"`
	}{Email: "nope"})

	tests := []struct {
		name    string
		err     error
		status  int
		code    int
		message string
	}{
		{name: "validation", err: validationErr, status: http.StatusBadRequest, code: 40001, message: "email failed email"},
		{name: "conflict", err: services.ErrDayConflict, status: http.StatusConflict, code: 40930, message: services.ErrDayConflict.Error()},
		{name: "wrapped range", err: fmt.Errorf("x: %w", analytics.ErrInvalidRange), status: http.StatusBadRequest, code: 40021},
		{name: "internal", err: errors.New("dial tcp: refused"), status: http.StatusInternalServerError, code: 50000, message: "internal server error"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)
			ctx.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			fail(ctx, tc.err)

			if w.Code != tc.status {
				t.Fatalf("status: got %d, want %d", w.Code, tc.status)
			}
			env := decodeEnvelope(t, w)
			if env.Code != tc.code {
				t.Fatalf("code: got %d, want %d", env.Code, tc.code)
			}
			if tc.message != "" && env.Message != tc.message {
				t.Fatalf("message: got %q, want %q", env.Message, tc.message)
			}
		})
	}
}

func newCheckInRouter(t *testing.T) (*gin.Engine, *repotest.CheckIns) {
	t.Helper()
	repo := repotest.NewCheckIns()
	svc := services.NewCheckInService(repo, utils.NewMemoryCache(), analytics.FixedClock(analytics.NewDate(2025, 1, 9)))
	c := NewCheckInController(svc)

	r := gin.New()
	r.Use(func(ctx *gin.Context) {
		if id := ctx.GetHeader("X-User"); id != "" {
			var uid uint
			fmt.Sscan(id, &uid)
			ctx.Set(middleware.ContextUserIDKey, uid)
		}
		ctx.Next()
	})
	r.GET("/checkins", c.List)
	r.POST("/checkins", c.Create)
	r.GET("/checkins/today", c.Today)
	r.GET("/checkins/:id", c.Show)
	r.PUT("/checkins/:id", c.Update)
	r.DELETE("/checkins/:id", c.Delete)
	return r, repo
}

func send(r http.Handler, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-User", user)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCheckInController(t *testing.T) {
	r, repo := newCheckInRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   string
		body   string
		status int
		code   int
	}{
		{name: "anonymous", method: http.MethodGet, path: "/checkins", status: http.StatusUnauthorized, code: 40110},
		{name: "malformed json", method: http.MethodPost, path: "/checkins", user: "1", body: "{", status: http.StatusBadRequest, code: 40001},
		{name: "create", method: http.MethodPost, path: "/checkins", user: "1", body: `{"checked_at":"2025-01-09","score":3}`, status: http.StatusCreated},
		{name: "same day", method: http.MethodPost, path: "/checkins", user: "1", body: `{"checked_at":"2025-01-09","score":5}`, status: http.StatusConflict, code: 40930},
		{name: "bad date", method: http.MethodPost, path: "/checkins", user: "1", body: `{"checked_at":"9 Jan","score":5}`, status: http.StatusBadRequest, code: 40020},
		{name: "bad per_page", method: http.MethodGet, path: "/checkins?per_page=abc", user: "1", status: http.StatusBadRequest, code: 40024},
		{name: "per_page too big", method: http.MethodGet, path: "/checkins?per_page=500", user: "1", status: http.StatusBadRequest, code: 40024},
		{name: "inverted range", method: http.MethodGet, path: "/checkins?from=2025-02-01&to=2025-01-01", user: "1", status: http.StatusBadRequest, code: 40021},
		{name: "list", method: http.MethodGet, path: "/checkins?from=2025-01-01&to=2025-01-31", user: "1", status: http.StatusOK},
		{name: "malformed id", method: http.MethodGet, path: "/checkins/abc", user: "1", status: http.StatusNotFound, code: 40420},
		{name: "foreign row", method: http.MethodGet, path: "/checkins/1", user: "2", status: http.StatusNotFound, code: 40420},
		{name: "show", method: http.MethodGet, path: "/checkins/1", user: "1", status: http.StatusOK},
		{name: "update", method: http.MethodPut, path: "/checkins/1", user: "1", body: `{"checked_at":"2025-01-08","score":2}`, status: http.StatusOK},
		{name: "today empty after move", method: http.MethodGet, path: "/checkins/today", user: "1", status: http.StatusOK},
		{name: "foreign delete", method: http.MethodDelete, path: "/checkins/1", user: "2", status: http.StatusNotFound, code: 40420},
		{name: "delete", method: http.MethodDelete, path: "/checkins/1", user: "1", status: http.StatusOK},
	}
	for _, tc := range tests {
		w := send(r, tc.method, tc.path, tc.user, tc.body)
		if w.Code != tc.status {
			t.Fatalf("%s: status %d, want %d (%s)", tc.name, w.Code, tc.status, w.Body.String())
		}
		if env := decodeEnvelope(t, w); env.Code != tc.code {
			t.Fatalf("%s: code %d, want %d", tc.name, env.Code, tc.code)
		}
	}
	if len(repo.All(1)) != 0 {
		t.Fatal("expected the check-in to be deleted")
	}
}

func TestListIncludesRangeSummary(t *testing.T) {
	r, _ := newCheckInRouter(t)
	for _, body := range []string{
		`{"checked_at":"2025-01-02","score":2}`,
		`{"checked_at":"2025-01-03","score":4}`,
	} {
		if w := send(r, http.MethodPost, "/checkins", "1", body); w.Code != http.StatusCreated {
			t.Fatalf("create: %d %s", w.Code, w.Body.String())
		}
	}

	w := send(r, http.MethodGet, "/checkins?from=2025-01-01&to=2025-01-31&per_page=1", "1", "")
	var env struct {
		Data struct {
			Items        []services.CheckInView `json:"items"`
			Pagination   utils.Pagination       `json:"pagination"`
			RangeSummary *struct {
				Count   int64    `json:"count"`
				Average *float64 `json:"average_score"`
			} `json:"range_summary"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data.Items) != 1 || env.Data.Items[0].CheckedAt.String() != "2025-01-03" {
		t.Fatalf("items: %+v", env.Data.Items)
	}
	if env.Data.Pagination.Total != 2 || env.Data.Pagination.TotalPages != 2 {
		t.Fatalf("pagination: %+v", env.Data.Pagination)
	}
	if env.Data.RangeSummary == nil || env.Data.RangeSummary.Count != 2 || *env.Data.RangeSummary.Average != 3 {
		t.Fatalf("range summary: %+v", env.Data.RangeSummary)
	}
}

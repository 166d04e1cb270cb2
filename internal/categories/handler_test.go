package categories_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/JaimeStill/clerk/internal/categories"
)

type mockSystem struct {
	activeFn  func(ctx context.Context) ([]categories.Category, error)
	replaceFn func(ctx context.Context, cats []categories.Category) ([]categories.Category, error)
	resetFn   func(ctx context.Context) ([]categories.Category, error)
}

func (m *mockSystem) Handler() *categories.Handler {
	return categories.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Active(ctx context.Context) ([]categories.Category, error) {
	if m.activeFn != nil {
		return m.activeFn(ctx)
	}
	return categories.Defaults(), nil
}

func (m *mockSystem) Choices(ctx context.Context) ([]categories.Choice, error) {
	cats, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}
	return categories.ChoicesOf(cats), nil
}

func (m *mockSystem) Replace(ctx context.Context, cats []categories.Category) ([]categories.Category, error) {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, cats)
	}
	return cats, nil
}

func (m *mockSystem) ResetDefaults(ctx context.Context) ([]categories.Category, error) {
	if m.resetFn != nil {
		return m.resetFn(ctx)
	}
	return categories.Defaults(), nil
}

func (m *mockSystem) History(context.Context) ([]categories.RetiredSet, error) {
	return []categories.RetiredSet{}, nil
}

func serve(sys categories.System, method, path, body string) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	g := sys.Handler().Routes()
	for _, r := range g.Routes {
		mux.HandleFunc(r.Method+" "+g.Prefix+r.Pattern, r.Handler)
	}

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerReplace(t *testing.T) {
	called := false
	sys := &mockSystem{
		replaceFn: func(_ context.Context, cats []categories.Category) ([]categories.Category, error) {
			called = true
			return cats, nil
		},
	}

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCall   bool
	}{
		{"malformed", `{`, http.StatusBadRequest, false},
		{"not confirmed", `{"categories":[{"number":1,"name":"a"},{"number":2,"name":"b"}]}`, http.StatusBadRequest, false},
		{"invalid set", `{"confirm":true,"categories":[{"number":1,"name":"a"}]}`, http.StatusBadRequest, false},
		{"valid", `{"confirm":true,"categories":[{"number":1,"name":"a"},{"number":2,"name":"b"}]}`, http.StatusOK, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			rec := serve(sys, "PUT", "/categories", tt.body)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d; body %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if called != tt.wantCall {
				t.Errorf("Replace called = %v, want %v", called, tt.wantCall)
			}
		})
	}
}

func TestHandlerReset(t *testing.T) {
	sys := &mockSystem{}

	if rec := serve(sys, "POST", "/categories/reset", `{}`); rec.Code != http.StatusBadRequest {
		t.Errorf("unconfirmed reset status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if rec := serve(sys, "POST", "/categories/reset", `{"confirm":true}`); rec.Code != http.StatusOK {
		t.Errorf("confirmed reset status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestHandlerActiveErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{categories.ErrNoActiveSet, http.StatusServiceUnavailable},
		{errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		sys := &mockSystem{activeFn: func(context.Context) ([]categories.Category, error) { return nil, tt.err }}
		if rec := serve(sys, "GET", "/categories/choices", ""); rec.Code != tt.want {
			t.Errorf("status for %v = %d, want %d", tt.err, rec.Code, tt.want)
		}
	}
}

func TestHandlerChoices(t *testing.T) {
	rec := serve(&mockSystem{}, "GET", "/categories/choices", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"number":7`) {
		t.Errorf("body = %s, want seven choices", rec.Body.String())
	}
}

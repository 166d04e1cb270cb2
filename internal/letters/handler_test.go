package letters_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/analysis"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/pkg/pagination"
)

type mockSystem struct {
	listFn         func(ctx context.Context, page pagination.PageRequest, filters letters.Filters) (*pagination.PageResult[letters.Letter], error)
	findFn         func(ctx context.Context, id uuid.UUID) (*letters.Letter, error)
	createFn       func(ctx context.Context, cmd letters.CreateCommand) (*letters.Letter, error)
	deleteFn       func(ctx context.Context, id uuid.UUID) error
	analyzeFn      func(ctx context.Context, id uuid.UUID) (*letters.Analysis, error)
	updateStatusFn func(ctx context.Context, id uuid.UUID, cmd letters.StatusCommand) (*letters.Letter, error)
}

func (m *mockSystem) Handler() *letters.Handler {
	return letters.NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)), pagination.Config{DefaultPageSize: 20, MaxPageSize: 100})
}

func (m *mockSystem) List(ctx context.Context, page pagination.PageRequest, filters letters.Filters) (*pagination.PageResult[letters.Letter], error) {
	if m.listFn != nil {
		return m.listFn(ctx, page, filters)
	}
	r := pagination.NewPageResult([]letters.Letter{}, 0, page.Page, page.PageSize)
	return &r, nil
}

func (m *mockSystem) Find(ctx context.Context, id uuid.UUID) (*letters.Letter, error) {
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, letters.ErrNotFound
}

func (m *mockSystem) Create(ctx context.Context, cmd letters.CreateCommand) (*letters.Letter, error) {
	if m.createFn != nil {
		return m.createFn(ctx, cmd)
	}
	return &letters.Letter{ID: uuid.New(), Sender: cmd.Sender, Status: letters.StatusNew}, nil
}

func (m *mockSystem) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockSystem) Analyze(ctx context.Context, id uuid.UUID) (*letters.Analysis, error) {
	if m.analyzeFn != nil {
		return m.analyzeFn(ctx, id)
	}
	return &letters.Analysis{LetterID: id, Source: analysis.SourceModel}, nil
}

func (m *mockSystem) AnalyzePending(context.Context) (*letters.BatchSummary, error) {
	return &letters.BatchSummary{Results: []letters.BatchResult{}}, nil
}

func (m *mockSystem) FindAnalysis(_ context.Context, id uuid.UUID) (*letters.Analysis, error) {
	return nil, letters.ErrAnalysisNotFound
}

func (m *mockSystem) UpdateStatus(ctx context.Context, id uuid.UUID, cmd letters.StatusCommand) (*letters.Letter, error) {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, cmd)
	}
	return &letters.Letter{ID: id, Status: cmd.Status}, nil
}

func (m *mockSystem) Statistics(context.Context) (*letters.Statistics, error) {
	return &letters.Statistics{}, nil
}

func serve(sys letters.System, method, path, body string) *httptest.ResponseRecorder {
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

func TestHandlerCreate(t *testing.T) {
	rec := serve(&mockSystem{}, "POST", "/letters", `{"sender":"Банк","subject":"Тема","body":"Текст"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var l letters.Letter
	if err := json.NewDecoder(rec.Body).Decode(&l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.Sender != "Банк" || l.Status != letters.StatusNew {
		t.Errorf("letter = %+v", l)
	}
}

func TestHandlerCreateInvalid(t *testing.T) {
	sys := &mockSystem{
		createFn: func(_ context.Context, cmd letters.CreateCommand) (*letters.Letter, error) {
			return nil, cmd.Validate()
		},
	}

	rec := serve(sys, "POST", "/letters", `{"sender":"","subject":"Тема","body":"Текст"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerFind(t *testing.T) {
	id := uuid.New()
	sys := &mockSystem{
		findFn: func(_ context.Context, got uuid.UUID) (*letters.Letter, error) {
			if got != id {
				return nil, letters.ErrNotFound
			}
			return &letters.Letter{ID: id}, nil
		},
	}

	if rec := serve(sys, "GET", "/letters/"+id.String(), ""); rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec := serve(sys, "GET", "/letters/"+uuid.NewString(), ""); rec.Code != http.StatusNotFound {
		t.Errorf("unknown id status = %d, want 404", rec.Code)
	}
	if rec := serve(sys, "GET", "/letters/not-a-uuid", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}
}

func TestHandlerListFilters(t *testing.T) {
	var got letters.Filters
	sys := &mockSystem{
		listFn: func(_ context.Context, page pagination.PageRequest, f letters.Filters) (*pagination.PageResult[letters.Letter], error) {
			got = f
			r := pagination.NewPageResult([]letters.Letter{}, 0, page.Page, page.PageSize)
			return &r, nil
		},
	}

	rec := serve(sys, "GET", "/letters?status=new&overdue=true", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got.Status == nil || *got.Status != "new" || got.Overdue == nil || !*got.Overdue {
		t.Errorf("filters = %+v", got)
	}
}

func TestHandlerStatisticsNotShadowedByID(t *testing.T) {
	rec := serve(&mockSystem{}, "GET", "/letters/statistics", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestHandlerUpdateStatus(t *testing.T) {
	id := uuid.New()

	rec := serve(&mockSystem{}, "PUT", "/letters/"+id.String()+"/status", `{"status":"archived"}`)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	rec = serve(&mockSystem{}, "PUT", "/letters/"+id.String()+"/status", `{"status":"closed"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown status code = %d, want 400", rec.Code)
	}

	sys := &mockSystem{
		updateStatusFn: func(context.Context, uuid.UUID, letters.StatusCommand) (*letters.Letter, error) {
			return nil, letters.ErrInvalidTransition
		},
	}
	rec = serve(sys, "PUT", "/letters/"+id.String()+"/status", `{"status":"archived"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("transition conflict code = %d, want 409", rec.Code)
	}
}

func TestHandlerAnalyze(t *testing.T) {
	id := uuid.New()
	rec := serve(&mockSystem{}, "POST", "/letters/"+id.String()+"/analyze", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var a letters.Analysis
	if err := json.NewDecoder(rec.Body).Decode(&a); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if a.LetterID != id || a.Source != analysis.SourceModel {
		t.Errorf("analysis = %+v", a)
	}
}

func TestHandlerFindAnalysisMissing(t *testing.T) {
	rec := serve(&mockSystem{}, "GET", "/letters/"+uuid.NewString()+"/analysis", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerDelete(t *testing.T) {
	rec := serve(&mockSystem{}, "DELETE", "/letters/"+uuid.NewString(), "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

package questions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/internal/prompts"
)

type fakeGateway struct {
	gateway.System
	answerFn func(ctx context.Context, original, question string) (string, error)
}

func (f *fakeGateway) Answer(ctx context.Context, original, question string) (string, error) {
	return f.answerFn(ctx, original, question)
}

func TestAnswer(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		err          error
		wantText     string
		wantFallback bool
	}{
		{"model", "Срок 10 дней", nil, "Срок 10 дней", false},
		{"unavailable", "", gateway.ErrUnavailable, prompts.UnavailableAnswer, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &fakeGateway{answerFn: func(context.Context, string, string) (string, error) {
				return tt.reply, tt.err
			}}

			text, fallback, err := answer(context.Background(), gw, "письмо", "срок?")
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if text != tt.wantText || fallback != tt.wantFallback {
				t.Errorf("answer = %q, %v", text, fallback)
			}
		})
	}
}

func TestAnswerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	gw := &fakeGateway{answerFn: func(context.Context, string, string) (string, error) {
		cancel()
		return "", context.Canceled
	}}

	if _, _, err := answer(ctx, gw, "письмо", "срок?"); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestAskCommandValidate(t *testing.T) {
	cmd := AskCommand{Question: "  Какой срок?  "}
	if err := cmd.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cmd.Question != "Какой срок?" {
		t.Errorf("question = %q", cmd.Question)
	}

	for _, q := range []string{"", "   ", strings.Repeat("в", MaxQuestionRunes+1)} {
		c := AskCommand{Question: q}
		if err := c.Validate(); !errors.Is(err, ErrInvalidQuestion) {
			t.Errorf("Validate(%d runes) = %v, want ErrInvalidQuestion", len([]rune(q)), err)
		}
	}
}

type mockSystem struct {
	askFn func(ctx context.Context, letterID uuid.UUID, cmd AskCommand) (*Question, error)
}

func (m *mockSystem) Handler() *Handler {
	return NewHandler(m, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func (m *mockSystem) Ask(ctx context.Context, letterID uuid.UUID, cmd AskCommand) (*Question, error) {
	return m.askFn(ctx, letterID, cmd)
}

func (m *mockSystem) History(context.Context, uuid.UUID) ([]Question, error) {
	return []Question{}, nil
}

func serve(sys System, method, path, body string) *httptest.ResponseRecorder {
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

func TestHandlerAsk(t *testing.T) {
	sys := &mockSystem{
		askFn: func(_ context.Context, letterID uuid.UUID, cmd AskCommand) (*Question, error) {
			if err := cmd.Validate(); err != nil {
				return nil, err
			}
			return &Question{ID: uuid.New(), LetterID: letterID, Question: cmd.Question}, nil
		},
	}

	path := "/letters/" + uuid.NewString() + "/questions"

	if rec := serve(sys, "POST", path, `{"question":"Какой срок?"}`); rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
	if rec := serve(sys, "POST", path, `{"question":" "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("blank question status = %d, want 400", rec.Code)
	}
	if rec := serve(sys, "GET", path, ""); rec.Code != http.StatusOK {
		t.Errorf("history status = %d, want 200", rec.Code)
	}
	if rec := serve(sys, "GET", "/letters/x/questions", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed id status = %d, want 400", rec.Code)
	}

	sys.askFn = func(context.Context, uuid.UUID, AskCommand) (*Question, error) {
		return nil, letters.ErrNotFound
	}
	if rec := serve(sys, "POST", path, `{"question":"?"}`); rec.Code != http.StatusNotFound {
		t.Errorf("missing letter status = %d, want 404", rec.Code)
	}
}

package categories

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/JaimeStill/clerk/pkg/cache"
)

type memStore struct {
	mu       sync.Mutex
	set      []Category
	version  int
	retired  []RetiredSet
	loads    int
	failNext error
}

func (m *memStore) active(context.Context) ([]Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	return slices.Clone(m.set), nil
}

func (m *memStore) replace(_ context.Context, cats []Category) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failNext; err != nil {
		m.failNext = nil
		return 0, err
	}
	if len(m.set) > 0 {
		m.retired = append([]RetiredSet{{Version: m.version, RetiredAt: time.Now(), Categories: m.set}}, m.retired...)
	}
	m.version++
	m.set = slices.Clone(cats)
	return m.version, nil
}

func (m *memStore) history(context.Context) ([]RetiredSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.retired), nil
}

func newTestRegistry(initial []Category) (*registry, *memStore) {
	s := &memStore{set: initial, version: 1}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return newRegistry(s, cache.NewMemory(time.Hour, time.Now), logger), s
}

func threeCategories() []Category {
	return []Category{
		{Number: 1, Name: "Справки"},
		{Number: 2, Name: "Жалобы"},
		{Number: 3, Name: "Прочее"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cats []Category
		want error
	}{
		{"defaults", Defaults(), nil},
		{"two", []Category{{Number: 2, Name: "b"}, {Number: 1, Name: "a"}}, nil},
		{"one", []Category{{Number: 1, Name: "a"}}, ErrTooFewCategories},
		{"empty", nil, ErrTooFewCategories},
		{"ten", tenCategories(), ErrTooManyCategories},
		{"blank name", []Category{{Number: 1, Name: "a"}, {Number: 2, Name: "   "}}, ErrEmptyName},
		{"duplicate number", []Category{{Number: 1, Name: "a"}, {Number: 1, Name: "b"}}, ErrDuplicateNumber},
		{"gap", []Category{{Number: 1, Name: "a"}, {Number: 3, Name: "b"}}, ErrNonContiguous},
		{"zero based", []Category{{Number: 0, Name: "a"}, {Number: 1, Name: "b"}}, ErrNonContiguous},
		{"duplicate name case-insensitive", []Category{{Number: 1, Name: "Жалоба"}, {Number: 2, Name: " жалоба "}}, ErrDuplicateName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := Validate(tt.cats); !errors.Is(err, tt.want) {
				t.Errorf("Validate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func tenCategories() []Category {
	cats := make([]Category, 10)
	for i := range cats {
		cats[i] = Category{Number: i + 1, Name: string(rune('a' + i))}
	}
	return cats
}

func TestReplaceRejectsInvalidSetWithoutChange(t *testing.T) {
	r, s := newTestRegistry(threeCategories())
	ctx := context.Background()

	if _, err := r.Active(ctx); err != nil {
		t.Fatalf("Active() error = %v", err)
	}

	_, err := r.Replace(ctx, []Category{{Number: 1, Name: "a"}, {Number: 3, Name: "b"}})
	if !errors.Is(err, ErrNonContiguous) {
		t.Fatalf("Replace() error = %v, want ErrNonContiguous", err)
	}

	got, _ := r.Active(ctx)
	if !slices.Equal(got, threeCategories()) {
		t.Errorf("Active() after rejected replace = %v, want unchanged", got)
	}
	if s.version != 1 {
		t.Errorf("set version = %d, want 1", s.version)
	}
}

func TestReplaceInvalidatesCache(t *testing.T) {
	r, s := newTestRegistry(threeCategories())
	ctx := context.Background()

	r.Active(ctx)
	r.Active(ctx)
	if s.loads != 1 {
		t.Fatalf("store loads = %d, want 1 (second read cached)", s.loads)
	}

	next := []Category{{Number: 2, Name: " Регуляторы "}, {Number: 1, Name: "Клиенты"}}
	replaced, err := r.Replace(ctx, next)
	if err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if replaced[0].Number != 1 || replaced[1].Name != "Регуляторы" {
		t.Errorf("Replace() = %v, want sorted and trimmed", replaced)
	}

	got, err := r.Active(ctx)
	if err != nil {
		t.Fatalf("Active() error = %v", err)
	}
	if !slices.Equal(got, replaced) {
		t.Errorf("Active() after replace = %v, want %v", got, replaced)
	}

	choices, _ := r.Choices(ctx)
	if len(choices) != 2 || choices[1] != (Choice{Number: 2, Name: "Регуляторы"}) {
		t.Errorf("Choices() = %v", choices)
	}
}

func TestReplaceStoreFailureKeepsCache(t *testing.T) {
	r, s := newTestRegistry(threeCategories())
	ctx := context.Background()
	r.Active(ctx)

	s.failNext = errors.New("connection reset")
	if _, err := r.Replace(ctx, Defaults()); err == nil {
		t.Fatal("Replace() error = nil, want store error")
	}

	got, _ := r.Active(ctx)
	if !slices.Equal(got, threeCategories()) {
		t.Errorf("Active() = %v, want original set", got)
	}
}

func TestActiveReturnsCopy(t *testing.T) {
	r, _ := newTestRegistry(threeCategories())
	ctx := context.Background()

	first, _ := r.Active(ctx)
	first[0].Name = "mutated"

	second, _ := r.Active(ctx)
	if second[0].Name != "Справки" {
		t.Errorf("Active()[0].Name = %q, snapshot shared with caller", second[0].Name)
	}
}

func TestActiveEmptySet(t *testing.T) {
	r, _ := newTestRegistry(nil)
	if _, err := r.Active(context.Background()); !errors.Is(err, ErrNoActiveSet) {
		t.Errorf("Active() error = %v, want ErrNoActiveSet", err)
	}
}

func TestResetDefaultsAndHistory(t *testing.T) {
	r, _ := newTestRegistry(threeCategories())
	ctx := context.Background()

	cats, err := r.ResetDefaults(ctx)
	if err != nil {
		t.Fatalf("ResetDefaults() error = %v", err)
	}
	if len(cats) != 7 || cats[6].Name != "Разное" {
		t.Errorf("ResetDefaults() = %v, want the seven base categories", cats)
	}

	history, _ := r.History(ctx)
	if len(history) != 1 || history[0].Version != 1 || len(history[0].Categories) != 3 {
		t.Errorf("History() = %+v, want the retired three-category set", history)
	}
}

func TestConcurrentReadsDuringReplace(t *testing.T) {
	r, _ := newTestRegistry(threeCategories())
	ctx := context.Background()

	var wg sync.WaitGroup
	for range 8 {
		wg.Go(func() {
			for range 50 {
				cats, err := r.Active(ctx)
				if err != nil {
					t.Error(err)
					return
				}
				if len(cats) != 3 && len(cats) != 7 {
					t.Errorf("Active() returned a partial set of %d", len(cats))
					return
				}
			}
		})
	}
	wg.Go(func() {
		if _, err := r.ResetDefaults(ctx); err != nil {
			t.Error(err)
		}
	})
	wg.Wait()
}

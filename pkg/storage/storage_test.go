package storage_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/JaimeStill/clerk/pkg/storage"
)

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key  string
		want error
	}{
		{"replies/5f1c/9a2b.txt", nil},
		{"replies/a..b.txt", nil},
		{"", storage.ErrEmptyKey},
		{"../secrets", storage.ErrInvalidKey},
		{"replies/../../etc", storage.ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if err := storage.ValidateKey(tt.key); !errors.Is(err, tt.want) {
				t.Errorf("ValidateKey(%q) = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{storage.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", storage.ErrInvalidKey), http.StatusBadRequest},
		{storage.ErrEmptyKey, http.StatusBadRequest},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := storage.MapHTTPStatus(tt.err); got != tt.want {
			t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("account url", func(t *testing.T) {
		cfg := storage.Config{AccountURL: "https://clerk.blob.core.windows.net/"}
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
		if cfg.ContainerName != "replies" {
			t.Errorf("ContainerName = %q, want replies", cfg.ContainerName)
		}
	})

	t.Run("env connection string", func(t *testing.T) {
		t.Setenv("CLERK_STORAGE_CONNECTION_STRING", "UseDevelopmentStorage=true")
		cfg := storage.Config{}
		if err := cfg.Finalize(&storage.Env{ConnectionString: "CLERK_STORAGE_CONNECTION_STRING"}); err != nil {
			t.Fatalf("Finalize() error = %v", err)
		}
	})

	t.Run("no credentials", func(t *testing.T) {
		cfg := storage.Config{}
		if err := cfg.Finalize(nil); err == nil {
			t.Error("Finalize() error = nil, want error")
		}
	})
}

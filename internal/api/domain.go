package api

import (
	"fmt"

	"github.com/JaimeStill/clerk/internal/categories"
	"github.com/JaimeStill/clerk/internal/gateway"
	"github.com/JaimeStill/clerk/internal/letters"
	"github.com/JaimeStill/clerk/internal/prompts"
	"github.com/JaimeStill/clerk/internal/questions"
	"github.com/JaimeStill/clerk/internal/replies"
	"github.com/JaimeStill/clerk/internal/retrieval"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Categories categories.System
	Letters    letters.System
	Replies    replies.System
	Questions  questions.System
	Prompts    *prompts.Handler
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) (*Domain, error) {
	db := runtime.Database.Connection()

	retriever, err := retrieval.New(runtime.Retrieval, runtime.Logger)
	if err != nil {
		return nil, fmt.Errorf("retrieval init failed: %w", err)
	}

	provider, err := gateway.NewProvider(runtime.Gateway)
	if err != nil {
		return nil, fmt.Errorf("gateway provider init failed: %w", err)
	}

	gw := gateway.New(
		provider,
		retriever,
		gateway.OptionsFromConfig(runtime.Gateway, gateway.NewMetrics(runtime.Registry)),
		runtime.Logger,
	)

	categoriesSystem := categories.New(db, runtime.Cache, runtime.Logger)

	lettersSystem := letters.New(
		db,
		categoriesSystem,
		gw,
		retriever,
		letters.NewMetrics(runtime.Registry),
		runtime.Logger,
		runtime.Pagination,
	)

	return &Domain{
		Categories: categoriesSystem,
		Letters:    lettersSystem,
		Replies: replies.New(
			db,
			lettersSystem,
			categoriesSystem,
			gw,
			runtime.Storage,
			runtime.Logger,
		),
		Questions: questions.New(db, lettersSystem, gw, runtime.Logger),
		Prompts:   prompts.NewHandler(runtime.Logger),
	}, nil
}

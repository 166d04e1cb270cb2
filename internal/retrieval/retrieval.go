// Package retrieval supplies reference context from previously analyzed
// letters stored in a Qdrant collection. When disabled every call is a no-op.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/vectorstores"
	"github.com/tmc/langchaingo/vectorstores/qdrant"

	"github.com/JaimeStill/clerk/internal/config"
	"github.com/JaimeStill/clerk/pkg/formatting"
)

// maxSnippetRunes caps each retrieved document in the assembled context.
const maxSnippetRunes = 1000

// Document is an analyzed letter offered to later analyses as context.
type Document struct {
	LetterID       string
	Subject        string
	Body           string
	Summary        string
	Classification string
}

type System interface {
	Retrieve(ctx context.Context, query string) (string, error)
	Index(ctx context.Context, doc Document) error
}

type store struct {
	vectors   vectorstores.VectorStore
	topK      int
	threshold float64
	logger    *slog.Logger
}

// New connects to Qdrant through an OpenAI-compatible embedder. A disabled
// config yields a no-op System.
func New(cfg *config.RetrievalConfig, logger *slog.Logger) (System, error) {
	if !cfg.Enabled {
		return Noop(), nil
	}

	opts := []openai.Option{
		openai.WithModel(cfg.EmbeddingModel),
		openai.WithEmbeddingModel(cfg.EmbeddingModel),
		openai.WithToken(cfg.EmbeddingToken),
	}
	if cfg.EmbeddingBaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.EmbeddingBaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("create embedder: %w", err)
	}

	qdrantURL, err := url.Parse(cfg.QdrantURL)
	if err != nil {
		return nil, fmt.Errorf("parse qdrant url: %w", err)
	}

	vectors, err := qdrant.New(
		qdrant.WithURL(*qdrantURL),
		qdrant.WithCollectionName(cfg.Collection),
		qdrant.WithEmbedder(embedder),
	)
	if err != nil {
		return nil, fmt.Errorf("create qdrant store: %w", err)
	}

	return NewWithStore(vectors, cfg.TopK, cfg.ScoreThreshold, logger), nil
}

func NewWithStore(vectors vectorstores.VectorStore, topK int, threshold float64, logger *slog.Logger) System {
	return &store{
		vectors:   vectors,
		topK:      max(topK, 1),
		threshold: threshold,
		logger:    logger.With("system", "retrieval"),
	}
}

// Retrieve returns up to topK similar documents as a numbered list, or an
// empty string when nothing matches.
func (s *store) Retrieve(ctx context.Context, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", nil
	}

	var opts []vectorstores.Option
	if s.threshold > 0 {
		opts = append(opts, vectorstores.WithScoreThreshold(float32(s.threshold)))
	}

	docs, err := s.vectors.SimilaritySearch(ctx, query, s.topK, opts...)
	if err != nil {
		return "", fmt.Errorf("similarity search: %w", err)
	}

	var b strings.Builder
	n := 0
	for _, doc := range docs {
		content := strings.TrimSpace(doc.PageContent)
		if content == "" {
			continue
		}
		n++
		fmt.Fprintf(&b, "%d. %s\n", n, formatting.TruncateRunes(content, maxSnippetRunes))
	}
	return strings.TrimSpace(b.String()), nil
}

func (s *store) Index(ctx context.Context, doc Document) error {
	content := pageContent(doc)
	if content == "" {
		return nil
	}

	_, err := s.vectors.AddDocuments(ctx, []schema.Document{{
		PageContent: content,
		Metadata: map[string]any{
			"letter_id":      doc.LetterID,
			"classification": doc.Classification,
		},
	}})
	if err != nil {
		return fmt.Errorf("index letter %s: %w", doc.LetterID, err)
	}
	s.logger.Debug("letter indexed", "letter_id", doc.LetterID)
	return nil
}

func pageContent(doc Document) string {
	var parts []string
	if v := strings.TrimSpace(doc.Subject); v != "" {
		parts = append(parts, "Тема: "+v)
	}
	if v := strings.TrimSpace(doc.Classification); v != "" {
		parts = append(parts, "Категория: "+v)
	}
	if v := strings.TrimSpace(doc.Summary); v != "" {
		parts = append(parts, "Краткое содержание: "+v)
	}
	if v := strings.TrimSpace(doc.Body); v != "" {
		parts = append(parts, formatting.TruncateRunes(v, maxSnippetRunes))
	}
	return strings.Join(parts, "\n")
}

type noop struct{}

func Noop() System {
	return noop{}
}

func (noop) Retrieve(context.Context, string) (string, error) {
	return "", nil
}

func (noop) Index(context.Context, Document) error {
	return nil
}

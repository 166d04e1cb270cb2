package config

import (
	"fmt"
	"net/url"

	"github.com/JaimeStill/clerk/pkg/envvar"
)

const (
	EnvRetrievalEnabled          = "CLERK_RETRIEVAL_ENABLED"
	EnvRetrievalQdrantURL        = "CLERK_RETRIEVAL_QDRANT_URL"
	EnvRetrievalCollection       = "CLERK_RETRIEVAL_COLLECTION"
	EnvRetrievalEmbeddingBaseURL = "CLERK_RETRIEVAL_EMBEDDING_BASE_URL"
	EnvRetrievalEmbeddingModel   = "CLERK_RETRIEVAL_EMBEDDING_MODEL"
	EnvRetrievalEmbeddingToken   = "CLERK_RETRIEVAL_EMBEDDING_TOKEN"
	EnvRetrievalTopK             = "CLERK_RETRIEVAL_TOP_K"
	EnvRetrievalScoreThreshold   = "CLERK_RETRIEVAL_SCORE_THRESHOLD"
)

// RetrievalConfig configures the optional similar-letter context source.
// When disabled no other field is validated.
type RetrievalConfig struct {
	Enabled          bool    `toml:"enabled"`
	QdrantURL        string  `toml:"qdrant_url"`
	Collection       string  `toml:"collection"`
	EmbeddingBaseURL string  `toml:"embedding_base_url"`
	EmbeddingModel   string  `toml:"embedding_model"`
	EmbeddingToken   string  `toml:"embedding_token"`
	TopK             int     `toml:"top_k"`
	ScoreThreshold   float64 `toml:"score_threshold"`
}

func (c *RetrievalConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *RetrievalConfig) Merge(overlay *RetrievalConfig) {
	c.Enabled = overlay.Enabled
	if overlay.QdrantURL != "" {
		c.QdrantURL = overlay.QdrantURL
	}
	if overlay.Collection != "" {
		c.Collection = overlay.Collection
	}
	if overlay.EmbeddingBaseURL != "" {
		c.EmbeddingBaseURL = overlay.EmbeddingBaseURL
	}
	if overlay.EmbeddingModel != "" {
		c.EmbeddingModel = overlay.EmbeddingModel
	}
	if overlay.EmbeddingToken != "" {
		c.EmbeddingToken = overlay.EmbeddingToken
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
	if overlay.ScoreThreshold != 0 {
		c.ScoreThreshold = overlay.ScoreThreshold
	}
}

func (c *RetrievalConfig) loadDefaults() {
	if c.QdrantURL == "" {
		c.QdrantURL = "http://localhost:6333"
	}
	if c.Collection == "" {
		c.Collection = "letters"
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = "text-embedding-3-small"
	}
	if c.TopK == 0 {
		c.TopK = 3
	}
}

func (c *RetrievalConfig) loadEnv() {
	envvar.Bool(&c.Enabled, EnvRetrievalEnabled)
	envvar.String(&c.QdrantURL, EnvRetrievalQdrantURL)
	envvar.String(&c.Collection, EnvRetrievalCollection)
	envvar.String(&c.EmbeddingBaseURL, EnvRetrievalEmbeddingBaseURL)
	envvar.String(&c.EmbeddingModel, EnvRetrievalEmbeddingModel)
	envvar.String(&c.EmbeddingToken, EnvRetrievalEmbeddingToken)
	envvar.Int(&c.TopK, EnvRetrievalTopK)
	envvar.Float(&c.ScoreThreshold, EnvRetrievalScoreThreshold)
}

func (c *RetrievalConfig) validate() error {
	if !c.Enabled {
		return nil
	}
	u, err := url.Parse(c.QdrantURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid qdrant_url %q", c.QdrantURL)
	}
	if c.EmbeddingToken == "" {
		return fmt.Errorf("embedding_token required")
	}
	if c.TopK < 1 {
		return fmt.Errorf("invalid top_k: %d", c.TopK)
	}
	if c.ScoreThreshold < 0 || c.ScoreThreshold > 1 {
		return fmt.Errorf("invalid score_threshold: %v", c.ScoreThreshold)
	}
	return nil
}

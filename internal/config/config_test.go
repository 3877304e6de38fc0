package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "")
	t.Setenv("VERIFY_MAX_ATTEMPTS", "")
	t.Setenv("OTEL_ENABLED", "")

	cfg := Load()

	assert.Equal(t, "memory", cfg.Database.EvidenceStore, "empty DSN falls back to the memory store")
	assert.Equal(t, 3, cfg.Loop.MaxAttempts)
	assert.Equal(t, 4, cfg.Loop.RetrievalLimit)
	assert.InDelta(t, 0.7, cfg.Loop.MatchThreshold, 1e-9)
	assert.Equal(t, 1000, cfg.Ingest.ChunkSize)
	assert.Equal(t, 200, cfg.Ingest.ChunkOverlap)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, time.Hour, cfg.Database.ConnMaxLifetime)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DB_CONNECTION_STRING", "postgres://axiom@localhost/axiom")
	t.Setenv("VERIFY_MAX_ATTEMPTS", "5")
	t.Setenv("MATCH_THRESHOLD", "0.55")
	t.Setenv("DRAFT_TIMEOUT", "2m")
	t.Setenv("VERIFY_TIMEOUT", "15")
	t.Setenv("OTEL_ENABLED", "true")
	t.Setenv("OTEL_SAMPLE_RATIO", "0.25")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.EvidenceStore)
	assert.Equal(t, 5, cfg.Loop.MaxAttempts)
	assert.InDelta(t, 0.55, cfg.Loop.MatchThreshold, 1e-9)
	assert.Equal(t, 2*time.Minute, cfg.Loop.DraftTimeout)
	assert.Equal(t, 15*time.Second, cfg.Loop.VerifyTimeout)
	assert.True(t, cfg.Tracing.Enabled)
	assert.InDelta(t, 0.25, cfg.Tracing.SampleRatio, 1e-9)
}

func TestGetEnvAsDuration_Invalid(t *testing.T) {
	t.Setenv("RETRIEVAL_TIMEOUT", "soon")
	assert.Equal(t, 7*time.Second, getEnvAsDuration("RETRIEVAL_TIMEOUT", 7*time.Second))
}

package tracer

import (
	"context"
	"testing"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/config"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
)

func TestInitTracer_DisabledIsNoop(t *testing.T) {
	shutdown := InitTracer(config.TracingConfig{Enabled: false}, logger.NewNopLogger())
	assert.NoError(t, shutdown(context.Background()))
}

func TestSampleRatio(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{-1, 0},
		{0, 0},
		{0.3, 0.3},
		{1, 1},
		{4, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, sampleRatio(tt.in), 1e-9)
	}
}

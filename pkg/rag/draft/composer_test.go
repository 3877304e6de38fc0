package draft

import (
	"context"
	"errors"
	"testing"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply   string
	err     error
	calls   int
	history []llm.Message
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	f.history = history
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

func TestCompose_EmptyEvidenceSkipsModel(t *testing.T) {
	model := &fakeLLM{reply: "The CEO earns 1M."}
	c := NewComposer(model, logger.NewNopLogger())

	got, err := c.Compose(context.Background(), "What is the CEO's salary?", nil)

	require.NoError(t, err)
	assert.Equal(t, NoEvidenceAnswer, got)
	assert.True(t, IsAbstention(got))
	assert.Equal(t, 0, model.calls)
}

func TestCompose_SendsDirectiveAndEvidence(t *testing.T) {
	model := &fakeLLM{reply: "  Either party may terminate with 30 days notice.  "}
	c := NewComposer(model, logger.NewNopLogger())

	got, err := c.Compose(context.Background(), "What is the termination clause?", []string{"Clause 9: either party may terminate with 30 days notice."})

	require.NoError(t, err)
	assert.Equal(t, "Either party may terminate with 30 days notice.", got)
	require.Len(t, model.history, 2)
	assert.Equal(t, llm.RoleSystem, model.history[0].Role)
	assert.Contains(t, model.history[0].Content, Sentinel)
	assert.Contains(t, model.history[1].Content, "Clause 9")
}

func TestCompose_ModelFailureIsGenerationError(t *testing.T) {
	cause := context.DeadlineExceeded
	c := NewComposer(&fakeLLM{err: cause}, logger.NewNopLogger())

	_, err := c.Compose(context.Background(), "q", []string{"e"})

	var genErr *GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestCompose_EmptyReplyAbstains(t *testing.T) {
	c := NewComposer(&fakeLLM{reply: "   "}, logger.NewNopLogger())

	got, err := c.Compose(context.Background(), "q", []string{"e"})

	require.NoError(t, err)
	assert.True(t, IsAbstention(got))
}

func TestIsAbstention(t *testing.T) {
	tests := []struct {
		text string
		want bool
	}{
		{"insufficient evidence: nothing found", true},
		{"  Insufficient Evidence. The vault is silent.", true},
		{"The contract has insufficient evidence of fraud", false},
		{"", false},
		{NoEvidenceAnswer, true},
		{"insufficient evidence for the bonus.\n\nThe termination clause requires 30 days notice.", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsAbstention(tt.text), tt.text)
	}
}

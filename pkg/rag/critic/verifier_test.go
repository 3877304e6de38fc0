package critic

import (
	"context"
	"errors"
	"testing"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLLM struct {
	reply string
	err   error
	calls int
	opts  llm.Options
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	f.calls++
	f.opts = llm.ApplyOptions(llm.Options{}, options...)
	return f.reply, f.err
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return f.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, options...)
}

type fakeClassifier struct {
	verdict Verdict
	err     error
	calls   int
}

func (f *fakeClassifier) Classify(ctx context.Context, prompt string) (Verdict, error) {
	f.calls++
	return f.verdict, f.err
}

func TestLLMClassifier_Classify(t *testing.T) {
	tests := []struct {
		name     string
		reply    string
		llmErr   error
		want     Verdict
		wantErr  bool
		unparsed bool
	}{
		{
			name:  "plain json",
			reply: `{"is_hallucinating": false, "explanation": "every claim is in clause 9"}`,
			want:  Verdict{IsHallucinating: false, Explanation: "every claim is in clause 9"},
		},
		{
			name:  "fenced json with prose",
			reply: "Here you go:\n```json\n{\"is_hallucinating\": true, \"explanation\": \"salary figure is invented\"}\n```",
			want:  Verdict{IsHallucinating: true, Explanation: "salary figure is invented"},
		},
		{
			name:  "braces inside strings",
			reply: `verdict: {"is_hallucinating": false, "explanation": "quotes {clause} verbatim"} done`,
			want:  Verdict{IsHallucinating: false, Explanation: "quotes {clause} verbatim"},
		},
		{name: "missing boolean", reply: `{"explanation": "looks fine"}`, wantErr: true, unparsed: true},
		{name: "missing explanation", reply: `{"is_hallucinating": false}`, wantErr: true, unparsed: true},
		{name: "not json", reply: "Looks grounded to me.", wantErr: true, unparsed: true},
		{name: "wrong type", reply: `{"is_hallucinating": "no", "explanation": "x"}`, wantErr: true, unparsed: true},
		{name: "provider error", llmErr: errors.New("503"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &fakeLLM{reply: tt.reply, err: tt.llmErr}
			got, err := NewLLMClassifier(model).Classify(context.Background(), "prompt")

			assert.True(t, model.opts.JSONMode)
			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, tt.unparsed, errors.Is(err, ErrVerificationUnparseable))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVerifier_FailsClosed(t *testing.T) {
	tests := []struct {
		name       string
		classifier *fakeClassifier
	}{
		{name: "classifier error", classifier: &fakeClassifier{err: context.DeadlineExceeded}},
		{name: "unparseable", classifier: &fakeClassifier{err: ErrVerificationUnparseable}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewVerifier(tt.classifier, logger.NewNopLogger())

			got := v.Verify(context.Background(), "The notice period is 30 days.", []string{"30 days notice"})

			assert.True(t, got.IsHallucinating)
			assert.Contains(t, got.Explanation, ErrVerificationUnparseable.Error())
			assert.Equal(t, 1, tt.classifier.calls)
		})
	}
}

func TestVerifier_PassesVerdictThrough(t *testing.T) {
	classifier := &fakeClassifier{verdict: Verdict{IsHallucinating: false, Explanation: "grounded"}}
	v := NewVerifier(classifier, logger.NewNopLogger())

	got := v.Verify(context.Background(), "answer", []string{"evidence"})

	assert.Equal(t, Verdict{IsHallucinating: false, Explanation: "grounded"}, got)
}

func TestVerifier_AbstentionWithoutEvidenceIsTrivial(t *testing.T) {
	classifier := &fakeClassifier{err: errors.New("must not be called")}
	v := NewVerifier(classifier, logger.NewNopLogger())

	got := v.Verify(context.Background(), draft.NoEvidenceAnswer, []string{})

	assert.False(t, got.IsHallucinating)
	assert.Equal(t, 0, classifier.calls)
}

func TestVerifier_SubstantiveDraftWithoutEvidenceIsGraded(t *testing.T) {
	classifier := &fakeClassifier{verdict: Verdict{IsHallucinating: true, Explanation: "no support"}}
	v := NewVerifier(classifier, logger.NewNopLogger())

	got := v.Verify(context.Background(), "The CEO earns 1M.", nil)

	assert.True(t, got.IsHallucinating)
	assert.Equal(t, 1, classifier.calls)
}

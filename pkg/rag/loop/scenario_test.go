package loop_test

import (
	"context"
	"strings"
	"testing"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/memory"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/embedding"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/llm"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/critic"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/draft"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/evidence"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/rag/loop"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordEmbedder maps text onto two axes: contracts and compensation.
type keywordEmbedder struct{}

func (keywordEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	lower := strings.ToLower(text)
	vec := []float32{0, 0}
	if strings.Contains(lower, "terminat") {
		vec[0] = 1
	}
	if strings.Contains(lower, "salary") {
		vec[1] = 1
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: vec}}, nil
}

type cannedLLM struct {
	answer string
}

func (c cannedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return c.answer, nil
}

func (c cannedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return c.answer, nil
}

type countingClassifier struct {
	verdict critic.Verdict
	calls   int
}

func (c *countingClassifier) Classify(ctx context.Context, prompt string) (critic.Verdict, error) {
	c.calls++
	return c.verdict, nil
}

func seedVault(t *testing.T) (*memory.Store, evidence.Searcher) {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	docs := memory.NewDocumentRepository(store)
	chunks := memory.NewDocumentChunkRepository(store)

	doc := &entity.Document{UserId: "tenant-a", Filename: "msa.txt", Status: entity.DocumentStatusIndexed}
	require.NoError(t, docs.Create(ctx, doc))
	require.NoError(t, chunks.CreateBulk(ctx, []*entity.DocumentChunk{{
		DocumentId:     doc.Id,
		Content:        "Clause 9. Either party may terminate this agreement with 30 days written notice.",
		EmbeddingValue: []float32{1, 0},
	}}))

	return store, chunks
}

func TestScenario_TerminationClauseIsVerified(t *testing.T) {
	_, searcher := seedVault(t)
	log := logger.NewNopLogger()
	classifier := &countingClassifier{verdict: critic.Verdict{IsHallucinating: false, Explanation: "matches clause 9"}}

	ctrl := loop.NewController(
		evidence.NewGateway(keywordEmbedder{}, searcher, log),
		draft.NewComposer(cannedLLM{answer: "Either party may terminate with 30 days written notice (Clause 9)."}, log),
		critic.NewVerifier(classifier, log),
		loop.DefaultConfig(),
		log,
	)

	res, err := ctrl.Run(context.Background(), "What is the termination clause?", "tenant-a")

	require.NoError(t, err)
	assert.Equal(t, loop.StatusVerified, res.Status)
	assert.Equal(t, 1, res.EvidenceCount)
	assert.Contains(t, res.Answer, "30 days")
	assert.Equal(t, 1, classifier.calls)
}

func TestScenario_UnknownSalaryIsInsufficientEvidence(t *testing.T) {
	_, searcher := seedVault(t)
	log := logger.NewNopLogger()
	classifier := &countingClassifier{verdict: critic.Verdict{IsHallucinating: true, Explanation: "should not be asked"}}

	ctrl := loop.NewController(
		evidence.NewGateway(keywordEmbedder{}, searcher, log),
		draft.NewComposer(cannedLLM{answer: "The CEO earns 2M per year."}, log),
		critic.NewVerifier(classifier, log),
		loop.DefaultConfig(),
		log,
	)

	res, err := ctrl.Run(context.Background(), "What is the CEO's salary?", "tenant-a")

	require.NoError(t, err)
	assert.Equal(t, loop.StatusInsufficientEvidence, res.Status)
	assert.Equal(t, 0, res.EvidenceCount)
	assert.True(t, draft.IsAbstention(res.Answer))
	assert.Equal(t, 0, classifier.calls)
}

func TestScenario_OtherTenantSeesNothing(t *testing.T) {
	_, searcher := seedVault(t)
	log := logger.NewNopLogger()

	ctrl := loop.NewController(
		evidence.NewGateway(keywordEmbedder{}, searcher, log),
		draft.NewComposer(cannedLLM{answer: "leaked"}, log),
		critic.NewVerifier(&countingClassifier{verdict: critic.Verdict{Explanation: "ok"}}, log),
		loop.DefaultConfig(),
		log,
	)

	res, err := ctrl.Run(context.Background(), "What is the termination clause?", "tenant-b")

	require.NoError(t, err)
	assert.Equal(t, loop.StatusInsufficientEvidence, res.Status)
	assert.NotContains(t, res.Answer, "leaked")
}

package prompt

import (
	"strings"
)

// Sentinel opens every draft that declines to answer. The verifier and the
// loop controller both key off this prefix.
const Sentinel = "insufficient evidence"

// SystemDirective is the fixed instruction given to the draft composer.
const SystemDirective = `You are the Axiom Verification Engine, a high-fidelity evidence auditor.

CORE DIRECTIVES:
1. Use only the material inside <context>. Never rely on outside knowledge.
2. Statements taken directly from the context are written plainly.
3. Anything that is inferred rather than stated must be prefixed with "Inference (medium confidence):".
4. If the context cannot answer the question, reply with a single line starting with "` + Sentinel + `" followed by a short reason.
5. Keep a direct, objective tone.`

// CompositionBuilder renders the user turn for the draft composer.
type CompositionBuilder struct {
	question string
	evidence []string
}

func NewCompositionBuilder(question string, evidence []string) *CompositionBuilder {
	return &CompositionBuilder{
		question: question,
		evidence: evidence,
	}
}

func (b *CompositionBuilder) Build() string {
	var prompt strings.Builder

	writeContext(&prompt, b.evidence)

	prompt.WriteString("<question>\n")
	prompt.WriteString(b.question)
	prompt.WriteString("\n</question>\n\n")
	prompt.WriteString("Answer the question from the context above:")

	return prompt.String()
}

// VerificationBuilder renders the adversarial grading prompt.
type VerificationBuilder struct {
	draft    string
	evidence []string
}

func NewVerificationBuilder(draft string, evidence []string) *VerificationBuilder {
	return &VerificationBuilder{
		draft:    draft,
		evidence: evidence,
	}
}

func (b *VerificationBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("<task>\n")
	prompt.WriteString("You are an adversarial fact checker. Decide whether the draft answer below makes any claim ")
	prompt.WriteString("that is not supported by the context. Inferences explicitly labelled as medium confidence are ")
	prompt.WriteString("acceptable only when they follow from the context.\n")
	prompt.WriteString("</task>\n\n")

	writeContext(&prompt, b.evidence)

	prompt.WriteString("<draft>\n")
	prompt.WriteString(b.draft)
	prompt.WriteString("\n</draft>\n\n")

	prompt.WriteString("<output_format>\n")
	prompt.WriteString("Respond with JSON only, no prose and no code fences:\n")
	prompt.WriteString(`{"is_hallucinating": true|false, "explanation": "<one or two sentences>"}`)
	prompt.WriteString("\n</output_format>")

	return prompt.String()
}

// JoinEvidence joins passages in retrieval order, separated by blank lines.
func JoinEvidence(evidence []string) string {
	return strings.Join(evidence, "\n\n")
}

func writeContext(prompt *strings.Builder, evidence []string) {
	prompt.WriteString("<context>\n")
	prompt.WriteString(JoinEvidence(evidence))
	prompt.WriteString("\n</context>\n\n")
}

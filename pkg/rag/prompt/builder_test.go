package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompositionBuilder_KeepsEvidenceOrder(t *testing.T) {
	out := NewCompositionBuilder("What is the notice period?", []string{"first passage", "second passage"}).Build()

	assert.Contains(t, out, "first passage\n\nsecond passage")
	assert.Less(t, strings.Index(out, "<context>"), strings.Index(out, "<question>"))
	assert.Contains(t, out, "What is the notice period?")
}

func TestVerificationBuilder_IncludesDraftAndFormat(t *testing.T) {
	out := NewVerificationBuilder("The notice period is 30 days.", []string{"Either party may terminate with 30 days notice."}).Build()

	assert.Contains(t, out, "<draft>\nThe notice period is 30 days.\n</draft>")
	assert.Contains(t, out, "Either party may terminate with 30 days notice.")
	assert.Contains(t, out, `"is_hallucinating"`)
}

func TestSystemDirective_NamesSentinel(t *testing.T) {
	assert.Contains(t, SystemDirective, `"`+Sentinel+`"`)
}

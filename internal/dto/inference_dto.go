package dto

type InferenceResponse struct {
	LLMProvider       string `json:"llm_provider"`
	LLMModel          string `json:"llm_model"`
	EmbeddingProvider string `json:"embedding_provider"`
	EvidenceStore     string `json:"evidence_store"`
	MaxAttempts       int    `json:"max_attempts"`
}

type HealthResponse struct {
	Status        string `json:"status"`
	Module        string `json:"module"`
	InferenceMode string `json:"inference_mode"`
}

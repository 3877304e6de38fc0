package dto

type VerifyRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
}

type VerifyResponse struct {
	Answer        string `json:"answer"`
	Status        string `json:"status"`
	EvidenceCount int    `json:"evidence_count"`
}

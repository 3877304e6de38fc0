package loop

type Status string

const (
	StatusThinking   Status = "thinking"
	StatusRetrieving Status = "retrieving"
	StatusDrafting   Status = "drafting"
	StatusVerifying  Status = "verifying"
	StatusVerified   Status = "verified"

	// terminal statuses reported to callers alongside verified
	StatusInsufficientEvidence Status = "insufficient_evidence"
	StatusUnverified           Status = "unverified"
)

const (
	scoreRejected = 0.0
	scoreAccepted = 1.0
)

// WorkingMemory is the per-request record the stages read and write. Question
// and TenantID never change after creation.
type WorkingMemory struct {
	Question string
	TenantID string

	// Evidence holds the latest retrieval only.
	Evidence []string
	Draft    string

	// VerificationScore is written by the verifying stage alone and is the
	// only input to routing.
	VerificationScore float64
	Status            Status

	Attempts        int
	lastExplanation string
}

func newWorkingMemory(question, tenantID string) *WorkingMemory {
	return &WorkingMemory{
		Question:          question,
		TenantID:          tenantID,
		Evidence:          []string{},
		VerificationScore: scoreRejected,
		Status:            StatusThinking,
	}
}

func (m *WorkingMemory) accepted() bool {
	return m.VerificationScore == scoreAccepted
}

// Result is what the controller hands back to the transport layer.
type Result struct {
	Answer        string
	Status        Status
	EvidenceCount int
	Attempts      int
}

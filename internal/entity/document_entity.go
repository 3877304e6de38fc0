package entity

import (
	"time"

	"github.com/google/uuid"
)

type DocumentStatus string

const (
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusIndexed    DocumentStatus = "indexed"
	DocumentStatusError      DocumentStatus = "error"
)

// Document is an uploaded file owned by a single tenant. Its chunks become
// searchable only once Status is indexed.
type Document struct {
	Id           uuid.UUID
	UserId       string
	Filename     string
	ContentType  string
	SizeBytes    int64
	Status       DocumentStatus
	ErrorMessage string
	ChunkCount   int
	CreatedAt    time.Time
	UpdatedAt    *time.Time
}

type DocumentChunk struct {
	Id             uuid.UUID
	DocumentId     uuid.UUID
	Content        string
	EmbeddingValue []float32
	ChunkIndex     int
	CreatedAt      time.Time
}

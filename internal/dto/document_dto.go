package dto

import (
	"time"

	"github.com/google/uuid"
)

type DocumentResponse struct {
	Id        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type UploadDocumentRequest struct {
	Filename    string `validate:"required,max=255"`
	ContentType string
	Content     []byte `validate:"required"`
}

type UploadDocumentResponse struct {
	Id       uuid.UUID `json:"id"`
	Status   string    `json:"status"`
	Filename string    `json:"filename"`
	Pipeline string    `json:"pipeline"`
	Message  string    `json:"message"`
}

// PublishEmbedDocumentMessage is the payload of an ingestion job.
type PublishEmbedDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	UserId     string    `json:"user_id"`
	Content    string    `json:"content"`
}

package service

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/contract"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/events"

	"github.com/google/uuid"
)

const ingestPipeline = "recursive_text_v1"

var (
	ErrUnsupportedFileType = errors.New("only .txt, .md and text .pdf files are supported")
	ErrNoExtractableText   = errors.New("file has no extractable text")
)

var allowedExtensions = map[string]bool{
	".txt": true,
	".md":  true,
	".pdf": true,
}

type IDocumentService interface {
	GetAll(ctx context.Context, userId string) ([]*dto.DocumentResponse, error)
	Upload(ctx context.Context, userId string, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error)
}

type documentService struct {
	documentRepo     contract.DocumentRepository
	publisherService IPublisherService
	logger           logger.ILogger
}

func NewDocumentService(documentRepo contract.DocumentRepository, publisherService IPublisherService, log logger.ILogger) IDocumentService {
	return &documentService{
		documentRepo:     documentRepo,
		publisherService: publisherService,
		logger:           log,
	}
}

func (s *documentService) GetAll(ctx context.Context, userId string) ([]*dto.DocumentResponse, error) {
	docs, err := s.documentRepo.FindAllByUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.DocumentResponse, 0, len(docs))
	for _, d := range docs {
		res = append(res, &dto.DocumentResponse{
			Id:        d.Id,
			Filename:  d.Filename,
			Status:    string(d.Status),
			CreatedAt: d.CreatedAt,
		})
	}
	return res, nil
}

func (s *documentService) Upload(ctx context.Context, userId string, req *dto.UploadDocumentRequest) (*dto.UploadDocumentResponse, error) {
	filename := filepath.Base(req.Filename)
	if !allowedExtensions[strings.ToLower(filepath.Ext(filename))] {
		return nil, ErrUnsupportedFileType
	}

	content, err := extractText(req.Content)
	if err != nil {
		return nil, err
	}

	doc := &entity.Document{
		Id:          uuid.New(),
		UserId:      userId,
		Filename:    filename,
		ContentType: req.ContentType,
		SizeBytes:   int64(len(req.Content)),
		Status:      entity.DocumentStatusProcessing,
	}
	if err := s.documentRepo.Create(ctx, doc); err != nil {
		return nil, err
	}

	event, err := events.New(events.TypeEmbedDocument, dto.PublishEmbedDocumentMessage{
		DocumentId: doc.Id,
		UserId:     userId,
		Content:    content,
	})
	if err == nil {
		err = s.publisherService.Publish(ctx, event)
	}
	if err != nil {
		s.logger.Error(ingestModule, "Failed to queue document", map[string]interface{}{
			"document_id": doc.Id.String(),
			"error":       err.Error(),
		})
		_ = s.documentRepo.UpdateStatus(ctx, doc.Id, entity.DocumentStatusError, 0, err.Error())
		return nil, err
	}

	s.logger.Info(ingestModule, "Document queued", map[string]interface{}{
		"document_id": doc.Id.String(),
		"user_id":     userId,
		"size_bytes":  doc.SizeBytes,
	})

	return &dto.UploadDocumentResponse{
		Id:       doc.Id,
		Status:   string(entity.DocumentStatusProcessing),
		Filename: filename,
		Pipeline: ingestPipeline,
		Message:  "Document secured. Extraction started.",
	}, nil
}

// extractText accepts UTF-8 text only; binary PDFs need a layout-aware
// extractor this service does not have.
func extractText(raw []byte) (string, error) {
	if len(raw) == 0 || bytes.IndexByte(raw, 0) != -1 || !utf8.Valid(raw) {
		return "", ErrNoExtractableText
	}
	text := strings.TrimSpace(string(raw))
	if text == "" {
		return "", ErrNoExtractableText
	}
	return text, nil
}

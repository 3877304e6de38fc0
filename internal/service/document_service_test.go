package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Eatosin/lexpertz-axiom-engine/internal/dto"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/entity"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/pkg/logger"
	"github.com/Eatosin/lexpertz-axiom-engine/internal/repository/memory"
	"github.com/Eatosin/lexpertz-axiom-engine/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func TestDocumentService_UploadValidation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		wantErr  error
	}{
		{name: "markdown ok", filename: "a.md", content: []byte("# Title\nbody")},
		{name: "text pdf ok", filename: "a.PDF", content: []byte("plain text export")},
		{name: "docx rejected", filename: "a.docx", content: []byte("text"), wantErr: ErrUnsupportedFileType},
		{name: "no extension", filename: "README", content: []byte("text"), wantErr: ErrUnsupportedFileType},
		{name: "binary rejected", filename: "scan.pdf", content: []byte{'%', 'P', 'D', 'F', 0, 0xff}, wantErr: ErrNoExtractableText},
		{name: "blank rejected", filename: "a.txt", content: []byte("  \n "), wantErr: ErrNoExtractableText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub := &recordingPublisher{}
			svc := NewDocumentService(memory.NewDocumentRepository(memory.NewStore()), pub, logger.NewNopLogger())

			res, err := svc.Upload(context.Background(), "tenant-a", &dto.UploadDocumentRequest{Filename: tt.filename, Content: tt.content})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, pub.events)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "processing", res.Status)
			require.Len(t, pub.events, 1)
			assert.Equal(t, events.TypeEmbedDocument, pub.events[0].EventType())
		})
	}
}

func TestDocumentService_PublishFailureMarksError(t *testing.T) {
	docs := memory.NewDocumentRepository(memory.NewStore())
	svc := NewDocumentService(docs, &recordingPublisher{err: errors.New("closed")}, logger.NewNopLogger())

	_, err := svc.Upload(context.Background(), "tenant-a", &dto.UploadDocumentRequest{Filename: "a.txt", Content: []byte("text")})
	require.Error(t, err)

	list, err := docs.FindAllByUser(context.Background(), "tenant-a")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, entity.DocumentStatusError, list[0].Status)
}

func TestDocumentService_GetAllIsTenantScoped(t *testing.T) {
	docs := memory.NewDocumentRepository(memory.NewStore())
	ctx := context.Background()
	now := time.Now()
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "tenant-a", Filename: "old.txt", CreatedAt: now.Add(-time.Minute)}))
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "tenant-a", Filename: "new.txt", CreatedAt: now}))
	require.NoError(t, docs.Create(ctx, &entity.Document{UserId: "tenant-b", Filename: "theirs.txt", CreatedAt: now}))

	svc := NewDocumentService(docs, &recordingPublisher{}, logger.NewNopLogger())
	res, err := svc.GetAll(ctx, "tenant-a")

	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "new.txt", res[0].Filename)
	assert.Equal(t, "processing", res[0].Status)
}

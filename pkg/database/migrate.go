package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// Extensions must exist before AutoMigrate can create vector columns.
var Extensions = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE EXTENSION IF NOT EXISTS vector`,
}

// EvidenceIndexes back the tenant-scoped similarity search. Failures are
// reported but not fatal: an older pgvector without HNSW still serves
// queries with a sequential scan.
var EvidenceIndexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_document_chunks_embedding_hnsw
	 ON document_chunks USING hnsw (embedding_value vector_cosine_ops)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_user_status
	 ON documents (user_id, status) WHERE deleted_at IS NULL`,
}

type MigrationReport struct {
	IndexWarnings []error
}

func Migrate(ctx context.Context, db *gorm.DB, models ...interface{}) (*MigrationReport, error) {
	conn := db.WithContext(ctx)

	for _, stmt := range Extensions {
		if err := conn.Exec(stmt).Error; err != nil {
			return nil, fmt.Errorf("create extension: %w", err)
		}
	}

	if err := conn.AutoMigrate(models...); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}

	report := &MigrationReport{}
	for _, stmt := range EvidenceIndexes {
		if err := conn.Exec(stmt).Error; err != nil {
			report.IndexWarnings = append(report.IndexWarnings, err)
		}
	}
	return report, nil
}

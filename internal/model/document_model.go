package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Document struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       string         `gorm:"type:text;not null;index"`
	Filename     string         `gorm:"type:text;not null"`
	ContentType  string         `gorm:"type:text"`
	SizeBytes    int64          `gorm:"default:0"`
	Status       string         `gorm:"type:text;not null;default:'processing';index"`
	ErrorMessage string         `gorm:"type:text"`
	ChunkCount   int            `gorm:"default:0"`
	CreatedAt    time.Time      `gorm:"autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"autoUpdateTime"`
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Document) TableName() string {
	return "documents"
}

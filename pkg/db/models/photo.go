package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/pkg/types"
)

// Photo captures metadata for one ingested image. The storage path is the
// canonical pointer into the object store; filename is the generated safe name.
type Photo struct {
	ID               uuid.UUID     `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	EventID          *uuid.UUID    `gorm:"column:event_id;type:uuid;index" json:"event_id"`
	UploadedBy       uuid.UUID     `gorm:"column:uploaded_by;type:uuid;not null" json:"uploaded_by"`
	Filename         string        `gorm:"column:filename;not null" json:"filename"`
	OriginalFilename string        `gorm:"column:original_filename;not null" json:"original_filename"`
	StoragePath      string        `gorm:"column:storage_path;not null;unique" json:"storage_path"`
	SizeBytes        int64         `gorm:"column:size_bytes;not null" json:"size_bytes"`
	ContentType      string        `gorm:"column:content_type;not null" json:"content_type"`
	Width            *int          `gorm:"column:width" json:"width,omitempty"`
	Height           *int          `gorm:"column:height" json:"height,omitempty"`
	Description      *string       `gorm:"column:description" json:"description,omitempty"`
	IsFeatured       bool          `gorm:"column:is_featured;not null;default:false" json:"is_featured"`
	IsApproved       bool          `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	Metadata         types.JSONMap `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt        time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time     `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

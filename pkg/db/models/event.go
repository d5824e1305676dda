package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/luminastudio/studio-backend/pkg/enums"
)

// Event is a studio shoot that photos attach to. The access code is the
// short shareable token clients use to open the gallery.
type Event struct {
	ID         uuid.UUID         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name       string            `gorm:"column:name;not null" json:"name"`
	EventDate  *time.Time        `gorm:"column:event_date" json:"event_date,omitempty"`
	Status     enums.EventStatus `gorm:"column:status;not null;default:draft" json:"status"`
	AccessCode string            `gorm:"column:access_code;not null;unique" json:"access_code"`
	CreatedBy  uuid.UUID         `gorm:"column:created_by;type:uuid;not null" json:"created_by"`
	CreatedAt  time.Time         `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

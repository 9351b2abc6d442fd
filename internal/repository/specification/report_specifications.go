package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReportOwnedByUser struct {
	UserID uuid.UUID
}

func (s ReportOwnedByUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("reports.user_id = ?", s.UserID)
}

type ByMode struct {
	Mode string
}

func (s ByMode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mode = ?", s.Mode)
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// OrderByUpdatedDesc sorts newest-touched first. Recovery relies on this
// to pick the canonical in-progress record.
type OrderByUpdatedDesc struct{}

func (s OrderByUpdatedDesc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("updated_at DESC")
}

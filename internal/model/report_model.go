package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Report struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserId       uuid.UUID `gorm:"type:uuid;not null;index"`
	Mode         string    `gorm:"type:varchar(10);not null;index"`
	Status       string    `gorm:"type:varchar(20);not null;index"`
	Category     string    `gorm:"type:varchar(50)"`
	Summary      string    `gorm:"type:text"`
	Urgency      string    `gorm:"type:varchar(10)"`
	TemplateUsed string    `gorm:"type:text"`
	Transcript   string    `gorm:"type:text"`

	Analysis     datatypes.JSON `gorm:"type:jsonb"`
	Timeline     datatypes.JSON `gorm:"type:jsonb"`
	ActionItems  datatypes.JSON `gorm:"type:jsonb"`
	ActionsTaken datatypes.JSON `gorm:"type:jsonb"`
	Hazards      datatypes.JSON `gorm:"type:jsonb"`
	Checklist    datatypes.JSON `gorm:"type:jsonb"`
	Notes        datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Report) TableName() string {
	return "reports"
}

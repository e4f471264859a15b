package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Job struct {
	ID          string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	CompanyID   string    `gorm:"type:varchar(64);index" json:"company_id"`
	Title       string    `json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Level       string    `json:"level"`
	Salary      int       `json:"salary"`
	Visible     bool      `gorm:"default:true" json:"visible"`
	PostedAt    time.Time `json:"posted_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (j *Job) TableName() string {
	return "jobs"
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	if j.PostedAt.IsZero() {
		j.PostedAt = time.Now()
	}
	return nil
}

package repository

import (
	"github.com/fadilmartias/job-portal/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationRepository struct {
	db *gorm.DB
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{db}
}

func (r *ApplicationRepository) FindByID(id string) (*model.Application, error) {
	var a model.Application
	err := r.db.First(&a, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicationRepository) FindByJob(jobID string) ([]model.Application, error) {
	var apps []model.Application
	err := r.db.Find(&apps, "job_id = ?", jobID).Error
	return apps, err
}

func (r *ApplicationRepository) Create(app *model.Application) error {
	if app.ID == "" {
		app.ID = model.NewApplicationID(app.JobID, app.UserID, app.AppliedAt).String()
	}
	return r.db.Create(app).Error
}

// UpdateResumeText backfills the lazily extracted resume text onto the
// application record.
func (r *ApplicationRepository) UpdateResumeText(id string, resumeText string) error {
	return r.db.Model(&model.Application{}).Where("id = ?", id).
		Update("resume_text", resumeText).Error
}

// UpdateRankingCache upserts the memoized ranking for an application.
func (r *ApplicationRepository) UpdateRankingCache(id string, cache model.RankingCache) error {
	return r.db.Model(&model.Application{}).Where("id = ?", id).
		Update("ranking_cache", datatypes.NewJSONType(cache)).Error
}

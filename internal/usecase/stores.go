package usecase

import (
	"context"
	"errors"

	"github.com/fadilmartias/job-portal/internal/logger"
	"github.com/fadilmartias/job-portal/internal/model"
	"github.com/fadilmartias/job-portal/internal/service"
)

// Stores are the persistence collaborators the ranking core consumes. The
// gorm repositories satisfy them; tests substitute stubs.

type JobStore interface {
	FindByID(id string) (*model.Job, error)
}

type UserStore interface {
	FindByID(id string) (*model.User, error)
}

type CompanyStore interface {
	FindByID(id string) (*model.Company, error)
}

type ApplicationStore interface {
	FindByID(id string) (*model.Application, error)
	FindByJob(jobID string) ([]model.Application, error)
	UpdateResumeText(id string, resumeText string) error
	UpdateRankingCache(id string, cache model.RankingCache) error
}

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("application not found")
)

// resolveResumeText returns the application's resume text, extracting it
// from the applicant's resume URL on first use and backfilling it onto the
// application record. Extraction and backfill failures are logged and
// swallowed; the caller proceeds with whatever text is available, possibly
// empty.
func resolveResumeText(ctx context.Context, apps ApplicationStore, extractor service.ExtractServiceInterface, app *model.Application, user *model.User) string {
	if app.ResumeText != "" {
		return app.ResumeText
	}
	if user.ResumeURL == "" {
		return ""
	}

	text, err := extractor.ExtractText(ctx, user.ResumeURL)
	if err != nil {
		logger.Warn().Err(err).
			Str("application_id", app.ID).
			Str("resume_url", user.ResumeURL).
			Msg("resume text extraction failed")
		return ""
	}

	if err := apps.UpdateResumeText(app.ID, text); err != nil {
		logger.Warn().Err(err).
			Str("application_id", app.ID).
			Msg("resume text backfill failed")
	}
	return text
}

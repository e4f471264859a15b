package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/fadilmartias/job-portal/internal/dto"
	"github.com/fadilmartias/job-portal/internal/logger"
	"github.com/fadilmartias/job-portal/internal/model"
	"github.com/fadilmartias/job-portal/internal/scoring"
	"github.com/fadilmartias/job-portal/internal/service"
	"github.com/fadilmartias/job-portal/internal/textutil"
	"gorm.io/gorm"
)

const (
	ProviderGemini   = "gemini"
	ProviderFallback = "fallback"
	ProviderCache    = "cache"

	// JD relevance outweighs generic resume quality in the final score.
	jdMatchWeight = 0.7
	qualityWeight = 0.3

	maxKeywordEntries       = 30
	maxConcurrentApplicants = 4
)

type RankingUsecase struct {
	jobs         JobStore
	users        UserStore
	applications ApplicationStore
	extractor    service.ExtractServiceInterface
	gemini       service.GeminiServiceInterface
}

func NewRankingUsecase(jobs JobStore, users UserStore, applications ApplicationStore, extractor service.ExtractServiceInterface, gemini service.GeminiServiceInterface) *RankingUsecase {
	return &RankingUsecase{
		jobs:         jobs,
		users:        users,
		applications: applications,
		extractor:    extractor,
		gemini:       gemini,
	}
}

// GetRankedApplicants scores every application for the job and returns them
// sorted by final score, highest first. Applicants are processed with
// bounded concurrency; any single applicant's extraction or scoring failure
// is isolated and never aborts the batch.
func (uc *RankingUsecase) GetRankedApplicants(ctx context.Context, jobID string) (*dto.RankedApplicantsResponse, error) {
	job, err := uc.jobs.FindByID(jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("load job %s: %w", jobID, err)
	}

	apps, err := uc.applications.FindByJob(jobID)
	if err != nil {
		return nil, fmt.Errorf("load applications for job %s: %w", jobID, err)
	}

	jdText := job.Description
	jdHash := textutil.HashText(jdText)

	// Results are collected by application index so that, before sorting,
	// order matches the application list; the stable sort then keeps ties
	// in that order.
	results := make([]*dto.RankedApplicant, len(apps))
	sem := make(chan struct{}, maxConcurrentApplicants)
	var wg sync.WaitGroup

	for i := range apps {
		if ctx.Err() != nil {
			break
		}
		sem <- struct{}{}
		wg.Add(1)
		go func(i int, app model.Application) {
			defer wg.Done()
			defer func() { <-sem }()
			results[i] = uc.rankOne(ctx, jdText, jdHash, &app)
		}(i, apps[i])
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ranked := make([]dto.RankedApplicant, 0, len(results))
	for _, r := range results {
		if r != nil {
			ranked = append(ranked, *r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Scores.FinalScore > ranked[j].Scores.FinalScore
	})

	return &dto.RankedApplicantsResponse{
		Job:              dto.JobRef{ID: job.ID, Title: job.Title},
		RankedApplicants: ranked,
	}, nil
}

// rankOne produces the ranked entry for one application, or nil when the
// applicant must be skipped (missing user record, cancelled context).
func (uc *RankingUsecase) rankOne(ctx context.Context, jdText, jdHash string, app *model.Application) *dto.RankedApplicant {
	if ctx.Err() != nil {
		return nil
	}

	user, err := uc.users.FindByID(app.UserID)
	if err != nil {
		logger.Warn().Err(err).
			Str("application_id", app.ID).
			Str("user_id", app.UserID).
			Msg("skipping application, user not found")
		return nil
	}

	resumeText := resolveResumeText(ctx, uc.applications, uc.extractor, app, user)
	resumeHash := textutil.HashText(resumeText)

	cache := app.RankingCache.Data()
	if cache.Valid(jdHash, resumeHash) {
		return &dto.RankedApplicant{
			ApplicationID: app.ID,
			Applicant:     dto.ApplicantRef{ID: user.ID, Name: user.Name, Email: user.Email},
			ResumeURL:     user.ResumeURL,
			Scores: dto.ScoreSet{
				JDMatchScore:       cache.JDMatchScore,
				ResumeQualityScore: cache.ResumeQualityScore,
				FinalScore:         cache.FinalScore,
			},
			Provider:        ProviderCache,
			ProviderError:   "",
			MatchedKeywords: emptyIfNil(cache.MatchedKeywords),
			MissingSkills:   emptyIfNil(cache.MissingSkills),
		}
	}

	var (
		jdMatchScore       int
		resumeQualityScore int
		matchedKeywords    []string
		missingSkills      []string
		provider           string
		providerError      string
	)

	analysis, err := uc.gemini.AnalyzeResume(ctx, jdText, resumeText)
	if err == nil {
		provider = ProviderGemini
		jdMatchScore = scoring.ToRange(analysis.JDMatchScore, 0, 100)
		resumeQualityScore = scoring.ToRange(analysis.ResumeQualityScore, 0, 100)
		matchedKeywords = emptyIfNil(analysis.MatchedKeywords)
		missingSkills = emptyIfNil(analysis.MissingSkills)
	} else {
		provider = ProviderFallback
		providerError = err.Error()
		logger.Info().Err(err).
			Str("application_id", app.ID).
			Msg("semantic scoring failed, using lexical fallback")

		jdMatchScore = scoring.JDMatchScore(jdText, resumeText, nil)
		resumeQualityScore = scoring.ResumeQualityScore(resumeText, nil)
		matchedKeywords, missingSkills = scoring.KeywordDiff(jdText, resumeText, maxKeywordEntries)
	}

	finalScore := int(math.Round(jdMatchWeight*float64(jdMatchScore) + qualityWeight*float64(resumeQualityScore)))

	if err := uc.applications.UpdateRankingCache(app.ID, model.RankingCache{
		JDHash:             jdHash,
		ResumeHash:         resumeHash,
		Provider:           provider,
		JDMatchScore:       jdMatchScore,
		ResumeQualityScore: resumeQualityScore,
		FinalScore:         finalScore,
		MatchedKeywords:    matchedKeywords,
		MissingSkills:      missingSkills,
		ComputedAt:         time.Now(),
	}); err != nil {
		logger.Warn().Err(err).
			Str("application_id", app.ID).
			Msg("ranking cache persist failed")
	}

	return &dto.RankedApplicant{
		ApplicationID: app.ID,
		Applicant:     dto.ApplicantRef{ID: user.ID, Name: user.Name, Email: user.Email},
		ResumeURL:     user.ResumeURL,
		Scores: dto.ScoreSet{
			JDMatchScore:       jdMatchScore,
			ResumeQualityScore: resumeQualityScore,
			FinalScore:         finalScore,
		},
		Provider:        provider,
		ProviderError:   providerError,
		MatchedKeywords: matchedKeywords,
		MissingSkills:   missingSkills,
	}
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

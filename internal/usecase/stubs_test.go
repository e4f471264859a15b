package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/fadilmartias/job-portal/internal/model"
	"github.com/fadilmartias/job-portal/internal/service"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type stubJobStore struct {
	job *model.Job
	err error
}

func (s *stubJobStore) FindByID(id string) (*model.Job, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.job == nil || s.job.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.job, nil
}

type stubUserStore struct {
	users map[string]*model.User
}

func (s *stubUserStore) FindByID(id string) (*model.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubCompanyStore struct {
	companies map[string]*model.Company
}

func (s *stubCompanyStore) FindByID(id string) (*model.Company, error) {
	if c, ok := s.companies[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type stubApplicationStore struct {
	mu              sync.Mutex
	apps            []*model.Application
	cacheErr        error
	resumeTextCalls int
	cacheCalls      int
}

func (s *stubApplicationStore) FindByID(id string) (*model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.apps {
		if a.ID == id {
			copied := *a
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubApplicationStore) FindByJob(jobID string) ([]model.Application, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Application
	for _, a := range s.apps {
		if a.JobID == jobID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (s *stubApplicationStore) UpdateResumeText(id string, resumeText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resumeTextCalls++
	for _, a := range s.apps {
		if a.ID == id {
			a.ResumeText = resumeText
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (s *stubApplicationStore) UpdateRankingCache(id string, cache model.RankingCache) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cacheCalls++
	if s.cacheErr != nil {
		return s.cacheErr
	}
	for _, a := range s.apps {
		if a.ID == id {
			a.RankingCache = datatypes.NewJSONType(cache)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func seedCache(app *model.Application, cache model.RankingCache) {
	app.RankingCache = datatypes.NewJSONType(cache)
}

type stubExtractor struct {
	mu    sync.Mutex
	text  string
	err   error
	calls int
}

func (s *stubExtractor) ExtractText(ctx context.Context, fileURL string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func (s *stubExtractor) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type stubGemini struct {
	mu          sync.Mutex
	enabled     bool
	analysis    *service.ResumeAnalysis
	analysisErr error
	content     string
	contentErr  error
	lastPrompt  string
}

func (s *stubGemini) Enabled() bool {
	return s.enabled
}

func (s *stubGemini) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPrompt = prompt
	if s.contentErr != nil {
		return "", s.contentErr
	}
	return s.content, nil
}

func (s *stubGemini) AnalyzeResume(ctx context.Context, jdText, resumeText string) (*service.ResumeAnalysis, error) {
	if s.analysisErr != nil {
		return nil, s.analysisErr
	}
	if s.analysis != nil {
		return s.analysis, nil
	}
	return nil, errors.New("no analysis configured")
}

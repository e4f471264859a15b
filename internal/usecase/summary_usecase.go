package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fadilmartias/job-portal/internal/dto"
	"github.com/fadilmartias/job-portal/internal/logger"
	"github.com/fadilmartias/job-portal/internal/model"
	"github.com/fadilmartias/job-portal/internal/scoring"
	"github.com/fadilmartias/job-portal/internal/service"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

// SummaryUsecase drives the recruiter-assist AI features that sit next to
// ranking: the per-candidate brief and email template generation. Both share
// the ranking engine's Gemini backend.
type SummaryUsecase struct {
	jobs         JobStore
	users        UserStore
	companies    CompanyStore
	applications ApplicationStore
	extractor    service.ExtractServiceInterface
	gemini       service.GeminiServiceInterface
}

func NewSummaryUsecase(jobs JobStore, users UserStore, companies CompanyStore, applications ApplicationStore, extractor service.ExtractServiceInterface, gemini service.GeminiServiceInterface) *SummaryUsecase {
	return &SummaryUsecase{
		jobs:         jobs,
		users:        users,
		companies:    companies,
		applications: applications,
		extractor:    extractor,
		gemini:       gemini,
	}
}

const summaryPromptTextLen = 12000

// GetCandidateSummary builds a recruiter-friendly brief for one application.
func (uc *SummaryUsecase) GetCandidateSummary(ctx context.Context, applicationID string) (*dto.CandidateSummaryResponse, error) {
	if _, err := model.ParseApplicationID(applicationID); err != nil {
		return nil, ErrApplicationNotFound
	}

	app, err := uc.applications.FindByID(applicationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("load application %s: %w", applicationID, err)
	}

	// Job and user lookups are tolerated as best-effort here; the brief
	// degrades to whatever context is available.
	var jobRef dto.JobRef
	jdText := ""
	if job, err := uc.jobs.FindByID(app.JobID); err == nil {
		jdText = job.Description
		jobRef = dto.JobRef{ID: job.ID, Title: job.Title}
	} else {
		logger.Warn().Err(err).Str("job_id", app.JobID).Msg("job lookup failed for candidate summary")
	}

	var candidate dto.ApplicantRef
	resumeText := app.ResumeText
	if user, err := uc.users.FindByID(app.UserID); err == nil {
		candidate = dto.ApplicantRef{ID: user.ID, Name: user.Name, Email: user.Email}
		resumeText = resolveResumeText(ctx, uc.applications, uc.extractor, app, user)
	} else {
		logger.Warn().Err(err).Str("user_id", app.UserID).Msg("user lookup failed for candidate summary")
	}

	if !uc.gemini.Enabled() {
		return nil, service.ErrGeminiUnavailable
	}

	prompt := fmt.Sprintf(`Create a concise recruiter-friendly candidate brief based on the Job Description and Resume.
Return STRICT JSON with keys: summary (string), strengths (string[]), risks (string[]), fitScore (0-100), recommendedInterviewQuestions (string[]).

JD: %s

Resume: %s

JSON:`, truncateForPrompt(jdText), truncateForPrompt(resumeText))

	text, err := uc.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := service.StripCodeFences(text)
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: candidate summary", service.ErrMalformedResponse)
	}
	parsed := gjson.Parse(cleaned)

	return &dto.CandidateSummaryResponse{
		Candidate:                     candidate,
		Job:                           jobRef,
		Summary:                       parsed.Get("summary").String(),
		Strengths:                     toStrings(parsed.Get("strengths")),
		Risks:                         toStrings(parsed.Get("risks")),
		FitScore:                      scoring.ToRange(parsed.Get("fitScore").Float(), 0, 100),
		RecommendedInterviewQuestions: toStrings(parsed.Get("recommendedInterviewQuestions")),
	}, nil
}

// GenerateEmailTemplate produces a subject/body pair for recruiter outreach,
// rejection or offer emails. The company name defaults from the Company
// record when the request omits it.
func (uc *SummaryUsecase) GenerateEmailTemplate(ctx context.Context, req dto.EmailTemplateRequest) (*dto.EmailTemplate, error) {
	if !uc.gemini.Enabled() {
		return nil, service.ErrGeminiUnavailable
	}

	templateType := strings.ToLower(req.TemplateType)
	if templateType == "" {
		templateType = "outreach"
	}
	tone := req.Tone
	if tone == "" {
		tone = "professional, friendly"
	}

	companyName := req.CompanyName
	if companyName == "" && req.CompanyID != "" {
		if company, err := uc.companies.FindByID(req.CompanyID); err == nil {
			companyName = company.Name
		}
	}
	if companyName == "" {
		companyName = "Our Company"
	}
	candidateName := req.CandidateName
	if candidateName == "" {
		candidateName = "Candidate"
	}
	jobTitle := req.JobTitle
	if jobTitle == "" {
		jobTitle = "the role"
	}

	prompt := fmt.Sprintf(`Write an email template as JSON ONLY with keys: subject, body.
Type: %s (one of outreach, rejection, offer)
Tone: %s
Company: %s
Candidate: %s
Role: %s
Constraints: concise, personalized, clear CTA, no placeholders beyond given fields, no markdown fences.`,
		templateType, tone, companyName, candidateName, jobTitle)

	text, err := uc.gemini.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	cleaned := service.StripCodeFences(text)
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: email template", service.ErrMalformedResponse)
	}
	parsed := gjson.Parse(cleaned)

	return &dto.EmailTemplate{
		Subject: parsed.Get("subject").String(),
		Body:    parsed.Get("body").String(),
	}, nil
}

func truncateForPrompt(text string) string {
	if len(text) > summaryPromptTextLen {
		return text[:summaryPromptTextLen]
	}
	return text
}

func toStrings(result gjson.Result) []string {
	items := result.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}

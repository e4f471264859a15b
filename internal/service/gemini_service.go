package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fadilmartias/job-portal/internal/config"
	"github.com/fadilmartias/job-portal/internal/logger"
	"github.com/tidwall/gjson"
	"google.golang.org/genai"
)

// ErrGeminiUnavailable is returned when no API key is configured. The
// ranking orchestrator treats it like any other scoring failure and takes
// the lexical fallback.
var ErrGeminiUnavailable = errors.New("gemini: GEMINI_API_KEY not set")

// ErrMalformedResponse is returned when the model output is not the strict
// JSON the prompt demands. It is an error on purpose: a silently zeroed
// result would be cached as a real score.
var ErrMalformedResponse = errors.New("gemini: malformed model response")

// ResumeAnalysis is the raw semantic assessment of a resume against a job
// description. Numeric scores are untrusted model output; callers clamp
// them before use.
type ResumeAnalysis struct {
	JDMatchScore             float64  `json:"jdMatchScore"`
	ResumeQualityScore       float64  `json:"resumeQualityScore"`
	MatchedKeywords          []string `json:"matchedKeywords"`
	MissingSkills            []string `json:"missingSkills"`
	ExtractedSkills          []string `json:"extractedSkills"`
	EstimatedYearsExperience int      `json:"estimatedYearsExperience"`
	CertificationsCount      int      `json:"certificationsCount"`
}

type GeminiServiceInterface interface {
	Enabled() bool
	GenerateContent(ctx context.Context, prompt string) (string, error)
	AnalyzeResume(ctx context.Context, jdText, resumeText string) (*ResumeAnalysis, error)
}

type GeminiService struct {
	client            *genai.Client
	model             string
	MaxRetries        int
	BaseDelay         time.Duration
	MaxDelay          time.Duration
	RequestTimeout    time.Duration
	consecutiveErrors atomic.Int32
	circuitBreakerMax int32
}

// NewGeminiService builds the client once at startup. A missing API key is
// not a startup error: the service comes up in an explicit unavailable
// state and every call returns ErrGeminiUnavailable.
func NewGeminiService(ctx context.Context) (*GeminiService, error) {
	geminiConfig := config.LoadGeminiConfig()

	s := &GeminiService{
		model:             geminiConfig.Model,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		MaxDelay:          90 * time.Second,
		RequestTimeout:    90 * time.Second,
		circuitBreakerMax: 5,
	}

	if geminiConfig.APIKey == "" {
		logger.Warn().Msg("GEMINI_API_KEY not set, semantic scoring disabled")
		return s, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	s.client = client
	return s, nil
}

func (s *GeminiService) Enabled() bool {
	return s.client != nil
}

func (s *GeminiService) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if !s.Enabled() {
		return "", ErrGeminiUnavailable
	}
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("prompt cannot be empty")
	}

	if n := s.consecutiveErrors.Load(); n >= s.circuitBreakerMax {
		return "", fmt.Errorf("circuit breaker open: too many consecutive errors (%d)", n)
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.RequestTimeout)
	defer cancel()

	var lastErr error
	for attempt := 0; attempt <= s.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := s.calculateBackoff(attempt)
			logger.Warn().Int("attempt", attempt).Int("max", s.MaxRetries).
				Dur("delay", delay).Msg("retrying GenerateContent")

			select {
			case <-time.After(delay):
			case <-timeoutCtx.Done():
				return "", fmt.Errorf("context timeout during retry: %w", timeoutCtx.Err())
			}
		}

		genConfig := &genai.GenerateContentConfig{
			Temperature: genai.Ptr(float32(0.1)),
		}

		result, err := s.client.Models.GenerateContent(
			timeoutCtx,
			s.model,
			genai.Text(prompt),
			genConfig,
		)

		if err == nil {
			s.consecutiveErrors.Store(0)
			if err := validateGenerateResponse(result); err != nil {
				return "", fmt.Errorf("invalid response: %w", err)
			}
			return result.Text(), nil
		}

		lastErr = err

		if !isRetryableError(err) {
			s.consecutiveErrors.Add(1)
			return "", fmt.Errorf("generate content failed: %w", err)
		}

		logger.Warn().Err(err).Int("attempt", attempt+1).Msg("retryable gemini error")
	}

	s.consecutiveErrors.Add(1)
	return "", fmt.Errorf("max retries (%d) exceeded for GenerateContent: %w", s.MaxRetries, lastErr)
}

const maxPromptTextLen = 12000

// AnalyzeResume asks the model for a semantic JD/resume assessment and
// parses its strict-JSON answer.
func (s *GeminiService) AnalyzeResume(ctx context.Context, jdText, resumeText string) (*ResumeAnalysis, error) {
	prompt := buildAnalysisPrompt(jdText, resumeText)

	text, err := s.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseResumeAnalysis(text)
}

func buildAnalysisPrompt(jdText, resumeText string) string {
	return fmt.Sprintf(`Act as a professional ATS scorer for recruiters. Perform SEMANTIC analysis between the Job Description (JD) and the Resume.

Requirements:
- Ignore stopwords/filler words entirely (e.g., a, an, the, for, of, to, in, on, is, are, etc.).
- Consider synonyms, related skills, frameworks, libraries (e.g., Node ≈ Node.js, React ≈ ReactJS).
- Weight domain-relevant experience and seniority (years, role level) higher than generic text.
- Penalize fluff and keyword stuffing that is unrelated to the JD.
- Extract real skills/entities; do not include stopwords as skills.
- Estimate years of experience from resume content.

Scoring:
- jdMatchScore (0-100): semantic relevance of resume to JD, considering synonyms and context.
- resumeQualityScore (0-100): quality based on clarity, structure, quantified impact, years, certifications, breadth/depth of skills.

Output JSON ONLY with keys:
{
  "jdMatchScore": number,
  "resumeQualityScore": number,
  "matchedKeywords": string[],
  "missingSkills": string[],
  "extractedSkills": string[],
  "estimatedYearsExperience": number,
  "certificationsCount": number
}

JD:
%s

Resume:
%s

JSON:`, truncateText(jdText, maxPromptTextLen), truncateText(resumeText, maxPromptTextLen))
}

func truncateText(text string, max int) string {
	if len(text) > max {
		return text[:max]
	}
	return text
}

// StripCodeFences removes the optional markdown fences some models wrap
// their JSON in.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if after, ok := strings.CutPrefix(trimmed, "```json"); ok {
		trimmed = after
	} else if after, ok := strings.CutPrefix(trimmed, "```"); ok {
		trimmed = after
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseResumeAnalysis(raw string) (*ResumeAnalysis, error) {
	cleaned := StripCodeFences(raw)
	if !gjson.Valid(cleaned) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformedResponse)
	}

	parsed := gjson.Parse(cleaned)
	if !parsed.Get("jdMatchScore").Exists() || !parsed.Get("resumeQualityScore").Exists() {
		return nil, fmt.Errorf("%w: missing score fields", ErrMalformedResponse)
	}

	analysis := &ResumeAnalysis{
		JDMatchScore:             parsed.Get("jdMatchScore").Float(),
		ResumeQualityScore:       parsed.Get("resumeQualityScore").Float(),
		MatchedKeywords:          stringSlice(parsed.Get("matchedKeywords")),
		MissingSkills:            stringSlice(parsed.Get("missingSkills")),
		ExtractedSkills:          stringSlice(parsed.Get("extractedSkills")),
		EstimatedYearsExperience: int(parsed.Get("estimatedYearsExperience").Int()),
		CertificationsCount:      int(parsed.Get("certificationsCount").Int()),
	}
	return analysis, nil
}

func stringSlice(result gjson.Result) []string {
	items := result.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := item.String(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (s *GeminiService) calculateBackoff(attempt int) time.Duration {
	delay := s.BaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay > s.MaxDelay {
		delay = s.MaxDelay
	}

	jitter := time.Duration(float64(delay) * 0.25)
	delay = delay - jitter/2 + time.Duration(float64(jitter)*0.5)
	return delay
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errMsg := err.Error()
	if strings.Contains(errMsg, "context canceled") ||
		strings.Contains(errMsg, "context deadline exceeded") {
		return false
	}

	var apiErr *genai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case 429: // Rate limit
			return true
		case 500, 502, 503, 504: // Server errors
			return true
		case 400, 401, 403, 404: // Client errors
			return false
		}
	}

	if strings.Contains(errMsg, "connection refused") ||
		strings.Contains(errMsg, "connection reset") ||
		strings.Contains(errMsg, "timeout") ||
		strings.Contains(errMsg, "temporary failure") ||
		strings.Contains(errMsg, "EOF") {
		return true
	}

	return false
}

func validateGenerateResponse(resp *genai.GenerateContentResponse) error {
	if resp == nil {
		return fmt.Errorf("response is nil")
	}
	if len(resp.Candidates) == 0 {
		return fmt.Errorf("no candidates in response")
	}
	if resp.Candidates[0].Content == nil {
		return fmt.Errorf("candidate content is nil")
	}
	if len(resp.Candidates[0].Content.Parts) == 0 {
		return fmt.Errorf("no parts in content")
	}
	return nil
}

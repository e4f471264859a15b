package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fadilmartias/job-portal/internal/model"
	"github.com/fadilmartias/job-portal/internal/service"
	"github.com/fadilmartias/job-portal/internal/textutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJD = "node.js backend engineer 5 years experience postgres docker"

func testJob() *model.Job {
	return &model.Job{
		ID:          "job-1",
		CompanyID:   "company-1",
		Title:       "Backend Engineer",
		Description: testJD,
	}
}

func testApplication(userID, resumeText string) *model.Application {
	return &model.Application{
		ID:         model.NewApplicationID("job-1", userID, time.Unix(1700000000, 0)).String(),
		JobID:      "job-1",
		UserID:     userID,
		CompanyID:  "company-1",
		Status:     "Pending",
		ResumeText: resumeText,
	}
}

func testUser(id string) *model.User {
	return &model.User{ID: id, Name: "User " + id, Email: id + "@example.com", ResumeURL: "https://cdn.example.com/" + id + ".pdf"}
}

func newRankingFixture(apps []*model.Application, users map[string]*model.User, extractor *stubExtractor, gemini *stubGemini) (*RankingUsecase, *stubJobStore, *stubApplicationStore) {
	jobs := &stubJobStore{job: testJob()}
	appStore := &stubApplicationStore{apps: apps}
	uc := NewRankingUsecase(jobs, &stubUserStore{users: users}, appStore, extractor, gemini)
	return uc, jobs, appStore
}

func TestGetRankedApplicantsJobNotFound(t *testing.T) {
	uc, _, _ := newRankingFixture(nil, nil, &stubExtractor{}, &stubGemini{})

	_, err := uc.GetRankedApplicants(context.Background(), "missing-job")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestGetRankedApplicantsFallback(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-a", "Backend engineer with 5 years experience in Node.js and Express"),
	}
	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysisErr: errors.New("gemini: 429 resource exhausted")}

	uc, _, appStore := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 1)

	r := result.RankedApplicants[0]
	assert.Equal(t, ProviderFallback, r.Provider)
	assert.NotEmpty(t, r.ProviderError)
	assert.LessOrEqual(t, len(r.MatchedKeywords), 30)
	assert.LessOrEqual(t, len(r.MissingSkills), 30)

	matched := make(map[string]bool)
	for _, kw := range r.MatchedKeywords {
		matched[kw] = true
	}
	for _, kw := range r.MissingSkills {
		assert.False(t, matched[kw], "keyword %q both matched and missing", kw)
	}

	for _, score := range []int{r.Scores.JDMatchScore, r.Scores.ResumeQualityScore, r.Scores.FinalScore} {
		assert.GreaterOrEqual(t, score, 0)
		assert.LessOrEqual(t, score, 100)
	}
	assert.Equal(t, 1, appStore.cacheCalls)
}

func TestGetRankedApplicantsSemanticPathClampsScores(t *testing.T) {
	apps := []*model.Application{testApplication("user-a", "some resume text")}
	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysis: &service.ResumeAnalysis{
		JDMatchScore:       150.7,
		ResumeQualityScore: -12,
		MatchedKeywords:    []string{"node.js"},
		MissingSkills:      []string{"kubernetes"},
	}}

	uc, _, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 1)

	r := result.RankedApplicants[0]
	assert.Equal(t, ProviderGemini, r.Provider)
	assert.Empty(t, r.ProviderError)
	assert.Equal(t, 100, r.Scores.JDMatchScore)
	assert.Equal(t, 0, r.Scores.ResumeQualityScore)
	assert.Equal(t, 70, r.Scores.FinalScore, "0.7*100 + 0.3*0")
	assert.Equal(t, []string{"node.js"}, r.MatchedKeywords)
	assert.Equal(t, []string{"kubernetes"}, r.MissingSkills)
}

func TestGetRankedApplicantsSecondCallServedFromCache(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-a", "Backend engineer with 5 years experience in Node.js and Express"),
		testApplication("user-b", "Node.js and postgres backend engineer, 4 years experience"),
	}
	users := map[string]*model.User{"user-a": testUser("user-a"), "user-b": testUser("user-b")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	first, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)

	second, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, second.RankedApplicants, len(first.RankedApplicants))

	for i, r := range second.RankedApplicants {
		assert.Equal(t, ProviderCache, r.Provider)
		assert.Empty(t, r.ProviderError)
		assert.Equal(t, first.RankedApplicants[i].Scores.FinalScore, r.Scores.FinalScore)
	}
}

func TestGetRankedApplicantsCacheInvalidatedByJDChange(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-a", "Backend engineer with 5 years experience in Node.js and Express"),
	}
	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, jobs, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	_, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)

	jobs.job.Description = testJD + " kubernetes terraform"

	second, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, second.RankedApplicants, 1)
	assert.Equal(t, ProviderFallback, second.RankedApplicants[0].Provider, "stale jd hash forces recomputation")
}

func TestGetRankedApplicantsZeroScoreCacheRecomputed(t *testing.T) {
	resumeText := "Backend engineer with 5 years experience in Node.js"
	app := testApplication("user-a", resumeText)
	seedCache(app, model.RankingCache{
		JDHash:     textutil.HashText(testJD),
		ResumeHash: textutil.HashText(resumeText),
		Provider:   ProviderFallback,
		FinalScore: 0,
	})

	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, _ := newRankingFixture([]*model.Application{app}, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 1)
	assert.NotEqual(t, ProviderCache, result.RankedApplicants[0].Provider,
		"a zero final score is never trusted as computed")
}

func TestGetRankedApplicantsExtractionFailureStillRanked(t *testing.T) {
	app := testApplication("user-a", "")
	users := map[string]*model.User{"user-a": testUser("user-a")}
	extractor := &stubExtractor{err: &service.ExtractionError{URL: "https://cdn.example.com/user-a.pdf", Err: errors.New("fetch failed with status 500")}}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, appStore := newRankingFixture([]*model.Application{app}, users, extractor, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 1, "failed extraction never aborts the request")

	r := result.RankedApplicants[0]
	assert.Equal(t, ProviderFallback, r.Provider)
	assert.Equal(t, 0, r.Scores.JDMatchScore, "empty resume text has no overlap")
	assert.Equal(t, 0, appStore.resumeTextCalls, "nothing to backfill on extraction failure")
}

func TestGetRankedApplicantsBackfillsExtractedText(t *testing.T) {
	app := testApplication("user-a", "")
	users := map[string]*model.User{"user-a": testUser("user-a")}
	extractor := &stubExtractor{text: "Backend engineer with 5 years experience in Node.js"}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, appStore := newRankingFixture([]*model.Application{app}, users, extractor, gemini)

	_, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.callCount())
	assert.Equal(t, 1, appStore.resumeTextCalls)

	// The backfilled text is reused; no second extraction.
	_, err = uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, 1, extractor.callCount())
}

func TestGetRankedApplicantsMissingUserSkipped(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-a", "Backend engineer with 5 years experience in Node.js"),
		testApplication("ghost", "resume of a deleted user"),
	}
	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 1)
	assert.Equal(t, "user-a", result.RankedApplicants[0].Applicant.ID)
}

func TestGetRankedApplicantsSortedDescending(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-weak", "florist with a passion for gardening"),
		testApplication("user-strong", "Node.js backend engineer, 5 years experience with postgres and docker"),
		testApplication("user-mid", "backend engineer, 2 years experience"),
	}
	users := map[string]*model.User{
		"user-weak":   testUser("user-weak"),
		"user-strong": testUser("user-strong"),
		"user-mid":    testUser("user-mid"),
	}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 3)

	for i := 1; i < len(result.RankedApplicants); i++ {
		assert.GreaterOrEqual(t,
			result.RankedApplicants[i-1].Scores.FinalScore,
			result.RankedApplicants[i].Scores.FinalScore,
			"ranked list must be non-increasing in final score")
	}
	assert.Equal(t, "user-strong", result.RankedApplicants[0].Applicant.ID)
}

func TestGetRankedApplicantsTiesKeepApplicationOrder(t *testing.T) {
	sameResume := "Backend engineer with 5 years experience in Node.js"
	apps := []*model.Application{
		testApplication("user-a", sameResume),
		testApplication("user-b", sameResume),
	}
	users := map[string]*model.User{"user-a": testUser("user-a"), "user-b": testUser("user-b")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, _ := newRankingFixture(apps, users, &stubExtractor{}, gemini)

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err)
	require.Len(t, result.RankedApplicants, 2)
	assert.Equal(t, result.RankedApplicants[0].Scores.FinalScore, result.RankedApplicants[1].Scores.FinalScore)
	assert.Equal(t, "user-a", result.RankedApplicants[0].Applicant.ID)
	assert.Equal(t, "user-b", result.RankedApplicants[1].Applicant.ID)
}

func TestGetRankedApplicantsCachePersistFailureIgnored(t *testing.T) {
	apps := []*model.Application{
		testApplication("user-a", "Backend engineer with 5 years experience in Node.js"),
	}
	users := map[string]*model.User{"user-a": testUser("user-a")}
	gemini := &stubGemini{analysisErr: errors.New("model unavailable")}

	uc, _, appStore := newRankingFixture(apps, users, &stubExtractor{}, gemini)
	appStore.cacheErr = errors.New("write throttled")

	result, err := uc.GetRankedApplicants(context.Background(), "job-1")
	require.NoError(t, err, "cache persist failures never fail the request")
	require.Len(t, result.RankedApplicants, 1)
	assert.Greater(t, result.RankedApplicants[0].Scores.FinalScore, 0)
}

package dto

// Response shapes for the recruiter-facing ranking and AI endpoints. Field
// names follow the client contract (camelCase).

type JobRef struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ApplicantRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ScoreSet struct {
	JDMatchScore       int `json:"jdMatchScore"`
	ResumeQualityScore int `json:"resumeQualityScore"`
	FinalScore         int `json:"finalScore"`
}

type RankedApplicant struct {
	ApplicationID   string       `json:"applicationId"`
	Applicant       ApplicantRef `json:"applicant"`
	ResumeURL       string       `json:"resumeUrl"`
	Scores          ScoreSet     `json:"scores"`
	Provider        string       `json:"provider"`
	ProviderError   string       `json:"providerError"`
	MatchedKeywords []string     `json:"matchedKeywords"`
	MissingSkills   []string     `json:"missingSkills"`
}

type RankedApplicantsResponse struct {
	Job              JobRef            `json:"job"`
	RankedApplicants []RankedApplicant `json:"rankedApplicants"`
}

package dto

type CandidateSummaryResponse struct {
	Candidate                     ApplicantRef `json:"candidate"`
	Job                           JobRef       `json:"job"`
	Summary                       string       `json:"summary"`
	Strengths                     []string     `json:"strengths"`
	Risks                         []string     `json:"risks"`
	FitScore                      int          `json:"fitScore"`
	RecommendedInterviewQuestions []string     `json:"recommendedInterviewQuestions"`
}

type EmailTemplateRequest struct {
	TemplateType  string `json:"templateType"` // outreach, rejection or offer
	CandidateName string `json:"candidateName"`
	JobTitle      string `json:"jobTitle"`
	CompanyID     string `json:"companyId"`
	CompanyName   string `json:"companyName"`
	Tone          string `json:"tone"`
}

type EmailTemplate struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// ApplicationID is the composite identifier "jobID#userID#timestamp" carried
// over from the document store the data originally lived in. Parsing and
// construction live here instead of ad hoc string splitting at call sites.
type ApplicationID struct {
	JobID     string
	UserID    string
	AppliedAt int64
}

func NewApplicationID(jobID, userID string, appliedAt time.Time) ApplicationID {
	return ApplicationID{JobID: jobID, UserID: userID, AppliedAt: appliedAt.UnixMilli()}
}

func ParseApplicationID(s string) (ApplicationID, error) {
	parts := strings.Split(s, "#")
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" {
		return ApplicationID{}, fmt.Errorf("malformed application id %q", s)
	}
	ts, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return ApplicationID{}, fmt.Errorf("malformed application id %q: %w", s, err)
	}
	return ApplicationID{JobID: parts[0], UserID: parts[1], AppliedAt: ts}, nil
}

func (id ApplicationID) String() string {
	return id.JobID + "#" + id.UserID + "#" + strconv.FormatInt(id.AppliedAt, 10)
}

// RankingCache memoizes one computed ranking for an application, addressed
// by content hashes of the job description and resume text it was computed
// from.
type RankingCache struct {
	JDHash             string    `json:"jd_hash"`
	ResumeHash         string    `json:"resume_hash"`
	Provider           string    `json:"provider"`
	JDMatchScore       int       `json:"jd_match_score"`
	ResumeQualityScore int       `json:"resume_quality_score"`
	FinalScore         int       `json:"final_score"`
	MatchedKeywords    []string  `json:"matched_keywords"`
	MissingSkills      []string  `json:"missing_skills"`
	ComputedAt         time.Time `json:"computed_at"`
}

// Valid reports whether the entry can be served without recomputation: both
// content hashes must match the current texts and FinalScore must be
// positive. A zero final score is indistinguishable from an uninitialized
// cache and is always recomputed.
func (c RankingCache) Valid(jdHash, resumeHash string) bool {
	return c.JDHash == jdHash && c.ResumeHash == resumeHash && c.FinalScore > 0
}

// Application is unique per (JobID, UserID); that uniqueness is enforced by
// the application flow, not here.
type Application struct {
	ID           string                           `gorm:"type:varchar(192);primaryKey" json:"id"`
	JobID        string                           `gorm:"type:varchar(64);index" json:"job_id"`
	UserID       string                           `gorm:"type:varchar(64);index" json:"user_id"`
	CompanyID    string                           `gorm:"type:varchar(64);index" json:"company_id"`
	Status       string                           `gorm:"type:varchar(50);default:Pending" json:"status"`
	AppliedAt    time.Time                        `json:"applied_at"`
	ResumeText   string                           `gorm:"type:text" json:"resume_text"`
	RankingCache datatypes.JSONType[RankingCache] `gorm:"type:jsonb" json:"ranking_cache"`
	CreatedAt    time.Time                        `json:"created_at"`
	UpdatedAt    time.Time                        `json:"updated_at"`
}

func (a *Application) TableName() string {
	return "applications"
}

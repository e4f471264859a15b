// Package scoring implements the deterministic lexical scoring path used
// when semantic analysis is unavailable or fails.
package scoring

import (
	"math"
	"strings"

	"github.com/fadilmartias/job-portal/internal/textutil"
)

// ResumeQualityScore rates a resume 0-100 from three heuristics: years of
// experience (capped at 20, worth 40 points), overlap with the provided
// skill list (capped at 15 matches, worth 40 points) and certification
// mentions (capped at 5, worth 20 points).
func ResumeQualityScore(resumeText string, skills []string) int {
	tokens := textutil.TokenSet(resumeText)
	years := textutil.EstimateYearsOfExperience(resumeText)
	certs := textutil.CountCertifications(resumeText)

	skillMatches := 0
	for _, s := range skills {
		if _, ok := tokens[strings.ToLower(s)]; ok {
			skillMatches++
		}
	}

	yearsScore := math.Min(20, float64(years)) / 20 * 40
	skillsScore := math.Min(15, float64(skillMatches)) / 15 * 40
	certsScore := math.Min(5, float64(certs)) / 5 * 20
	return int(math.Round(yearsScore + skillsScore + certsScore))
}

// JDMatchScore rates resume relevance to a job description 0-100: Jaccard
// similarity of the full texts plus a boost for extracted phrases that appear
// as JD tokens (up to 20 phrases, worth at most +0.2), capped at 1.
func JDMatchScore(jdText, resumeText string, extractedPhrases []string) int {
	jaccard := textutil.JaccardSimilarity(jdText, resumeText)
	jdTokens := textutil.TokenSet(jdText)

	phraseMatches := 0
	for _, p := range extractedPhrases {
		if _, ok := jdTokens[strings.ToLower(p)]; ok {
			phraseMatches++
		}
	}

	phraseBoost := math.Min(float64(phraseMatches), 20) / 20 * 0.2
	return int(math.Round(math.Min(1, jaccard+phraseBoost) * 100))
}

// ToRange clamps an untrusted numeric value into [min, max] and rounds it to
// an integer. NaN collapses to min.
func ToRange(value float64, min, max int) int {
	if math.IsNaN(value) {
		return min
	}
	n := int(math.Round(value))
	if n < min {
		return min
	}
	if n > max {
		return max
	}
	return n
}

// KeywordDiff intersects and subtracts the JD token set with the resume
// token set, producing the matched keywords and missing skills for the
// lexical fallback path. Each list is capped at limit entries.
func KeywordDiff(jdText, resumeText string, limit int) (matched, missing []string) {
	resumeTokens := textutil.TokenSet(resumeText)
	matched = []string{}
	missing = []string{}
	seen := make(map[string]struct{})
	for _, t := range textutil.Tokenize(jdText) {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		if _, ok := resumeTokens[t]; ok {
			if len(matched) < limit {
				matched = append(matched, t)
			}
		} else if len(missing) < limit {
			missing = append(missing, t)
		}
	}
	return matched, missing
}

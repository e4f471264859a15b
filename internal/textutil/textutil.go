package textutil

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

// stopwords is a fixed set of common English function words that carry no
// signal when comparing a job description against a resume.
var stopwords = map[string]struct{}{}

func init() {
	for _, w := range strings.Fields(
		"a an the and or but if then else for of on in to from by with as at " +
			"is are was were be been being it this that those these we you they " +
			"he she him her them i me my our your their so not no yes do did " +
			"done does can could should would will just about over under than " +
			"too very more most such per via") {
		stopwords[w] = struct{}{}
	}
}

var nonTokenChars = regexp.MustCompile(`[^a-z0-9+.# ]+`)

// Tokenize lowercases the text, replaces every character outside
// [a-z0-9+.# ] with a space (so tokens like "c++", "c#" and "node.js"
// survive), splits on whitespace and drops empty tokens, tokens of length
// two or less, and stopwords. Safe on empty input.
func Tokenize(text string) []string {
	cleaned := nonTokenChars.ReplaceAllString(strings.ToLower(text), " ")
	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, t := range fields {
		if len(t) <= 2 {
			continue
		}
		if _, ok := stopwords[t]; ok {
			continue
		}
		tokens = append(tokens, t)
	}
	return tokens
}

// TokenSet returns the unique tokens of the text.
func TokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range Tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

// JaccardSimilarity computes |A∩B| / |A∪B| over the token sets of both
// texts. Returns 0 when either set is empty.
func JaccardSimilarity(aText, bText string) float64 {
	a := TokenSet(aText)
	b := TokenSet(bText)
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for t := range a {
		if _, ok := b[t]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

var yearsPattern = regexp.MustCompile(`(?i)(\d+)\+?\s*(years|yrs)`)

// EstimateYearsOfExperience scans for "<n> years" / "<n>+ yrs" mentions and
// returns the maximum figure found. Resumes tend to repeat the candidate's
// total experience, so the maximum single mention is the best estimate, not
// the sum.
func EstimateYearsOfExperience(text string) int {
	years := 0
	for _, m := range yearsPattern.FindAllStringSubmatch(text, -1) {
		n := 0
		for _, c := range m[1] {
			n = n*10 + int(c-'0')
		}
		if n > years {
			years = n
		}
	}
	return years
}

var certPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)certified`),
	regexp.MustCompile(`(?i)certification`),
	regexp.MustCompile(`(?i)certificate`),
	regexp.MustCompile(`(?i)aws\s*certified`),
	regexp.MustCompile(`(?i)pmp`),
	regexp.MustCompile(`(?i)scrum\s*master`),
}

// CountCertifications sums match counts across the certification indicator
// patterns. Patterns overlap and double-count ("AWS Certified" hits both the
// generic and the named pattern); this is a coarse heuristic, not a unique
// entity count.
func CountCertifications(text string) int {
	sum := 0
	for _, re := range certPatterns {
		sum += len(re.FindAllStringIndex(text, -1))
	}
	return sum
}

// HashText returns the hex-encoded SHA-256 of the trimmed text. Used as the
// content address for ranking cache validity.
func HashText(text string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(text)))
	return hex.EncodeToString(h[:])
}

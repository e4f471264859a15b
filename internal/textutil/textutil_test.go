package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tokens := Tokenize("Senior C++ and C# Engineer, Node.js required!")
	assert.Contains(t, tokens, "c++")
	assert.Contains(t, tokens, "c#")
	assert.Contains(t, tokens, "node.js")
	assert.Contains(t, tokens, "senior")
	assert.NotContains(t, tokens, "and", "stopwords are dropped")
}

func TestTokenizeDropsShortTokens(t *testing.T) {
	tokens := Tokenize("go ab x backend")
	assert.Equal(t, []string{"backend"}, tokens)
}

func TestTokenizeEmptyInput(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("   \t\n"))
	assert.Empty(t, Tokenize("the and for of"))
}

func TestJaccardSimilarity(t *testing.T) {
	jd := "node.js backend engineer 5 years experience"
	resume := "Backend engineer with 5 years experience in Node.js and Express"
	assert.Greater(t, JaccardSimilarity(jd, resume), 0.0)

	assert.Equal(t, 1.0, JaccardSimilarity("golang developer", "golang developer"))
	assert.Equal(t, 0.0, JaccardSimilarity("golang", "python"))
}

func TestJaccardSimilarityEmptySets(t *testing.T) {
	assert.Equal(t, 0.0, JaccardSimilarity("", "backend engineer"))
	assert.Equal(t, 0.0, JaccardSimilarity("backend engineer", ""))
	assert.Equal(t, 0.0, JaccardSimilarity("", ""))
}

func TestEstimateYearsOfExperience(t *testing.T) {
	cases := []struct {
		name string
		text string
		want int
	}{
		{"single mention", "Backend engineer with 5 years experience in Node.js", 5},
		{"max across mentions, not sum", "3 years at Acme, 7 years total, 2 yrs with Go", 7},
		{"plus suffix", "10+ years of experience", 10},
		{"yrs spelling", "4 yrs professional experience", 4},
		{"no mention", "Backend engineer", 0},
		{"empty", "", 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, EstimateYearsOfExperience(tc.text))
		})
	}
}

func TestCountCertifications(t *testing.T) {
	// "AWS Certified" matches both the generic and the named pattern;
	// overlap is part of the heuristic.
	assert.Equal(t, 2, CountCertifications("AWS Certified Solutions Architect"))
	assert.Equal(t, 2, CountCertifications("PMP and Scrum Master"))
	assert.Equal(t, 0, CountCertifications("backend engineer"))
	assert.Equal(t, 0, CountCertifications(""))
}

func TestHashText(t *testing.T) {
	assert.Equal(t, HashText("resume"), HashText("resume"))
	assert.Equal(t, HashText("  resume  "), HashText("resume"), "hash is over trimmed text")
	assert.NotEqual(t, HashText("resume a"), HashText("resume b"))
	assert.Len(t, HashText(""), 64)
}

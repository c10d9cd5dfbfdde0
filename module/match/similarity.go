package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"

	"skillswap/module/user/model"
)

// SimilarityThreshold is the minimum bigram similarity for a fuzzy skill
// pairing to count as a match.
const SimilarityThreshold = 0.5

// Pair is one fuzzy pairing between a skill the learner wants and a skill
// the candidate teaches.
type Pair struct {
	Learn      string  `json:"learnSkill"`
	Teach      string  `json:"teachSkill"`
	Similarity float64 `json:"similarity"`
}

// Candidate is one scored teacher in the fuzzy match result.
type Candidate struct {
	User       model.User `json:"user"`
	Similarity float64    `json:"similarity"`
	Pairs      []Pair     `json:"matchedSkills"`
}

// Similarity scores two skill names with the Sørensen–Dice bigram
// coefficient, case-insensitively. Identical names score 1.
func Similarity(a, b string) float64 {
	return strutil.Similarity(strings.ToLower(a), strings.ToLower(b), metrics.NewSorensenDice())
}

// Score evaluates every teach skill of the candidate against every learn
// skill of the seeker and keeps pairings above the threshold. The candidate
// similarity is the best pairing found.
func Score(learnNames []string, candidate *model.User) (Candidate, bool) {
	c := Candidate{User: *candidate}
	for _, learn := range learnNames {
		for _, sk := range candidate.Skills {
			if sk.Type != model.SkillTeach {
				continue
			}
			sim := Similarity(learn, sk.Name)
			if sim <= SimilarityThreshold {
				continue
			}
			c.Pairs = append(c.Pairs, Pair{Learn: learn, Teach: sk.Name, Similarity: sim})
			if sim > c.Similarity {
				c.Similarity = sim
			}
		}
	}
	return c, len(c.Pairs) > 0
}

// Rank orders candidates by similarity, breaking ties on trust score.
func Rank(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		if cands[i].Similarity != cands[j].Similarity {
			return cands[i].Similarity > cands[j].Similarity
		}
		return cands[i].User.TrustScore > cands[j].User.TrustScore
	})
}

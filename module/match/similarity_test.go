package match

import (
	"testing"

	"skillswap/module/user/model"
)

func TestSimilarityIdenticalAndCase(t *testing.T) {
	if got := Similarity("guitar", "guitar"); got != 1 {
		t.Fatalf("identical names = %v, want 1", got)
	}
	if got := Similarity("Guitar", "GUITAR"); got != 1 {
		t.Fatalf("case-insensitive match = %v, want 1", got)
	}
}

func TestSimilarityNearNames(t *testing.T) {
	if got := Similarity("guitar", "acoustic guitar"); got <= SimilarityThreshold {
		t.Fatalf("near names scored %v, want > %v", got, SimilarityThreshold)
	}
	if got := Similarity("guitar", "cooking"); got > SimilarityThreshold {
		t.Fatalf("unrelated names scored %v, want <= %v", got, SimilarityThreshold)
	}
}

func TestScoreKeepsOnlyTeachSkills(t *testing.T) {
	cand := &model.User{
		Name: "Sam",
		Skills: []model.Skill{
			{Name: "guitar", Type: model.SkillLearn},
			{Name: "cooking", Type: model.SkillTeach},
		},
	}
	if _, ok := Score([]string{"guitar"}, cand); ok {
		t.Fatal("learn-type skill of the candidate must not match")
	}

	cand.Skills = append(cand.Skills, model.Skill{Name: "acoustic guitar", Type: model.SkillTeach})
	scored, ok := Score([]string{"guitar"}, cand)
	if !ok {
		t.Fatal("expected a fuzzy match on the teach skill")
	}
	if len(scored.Pairs) != 1 || scored.Pairs[0].Teach != "acoustic guitar" {
		t.Fatalf("pairs = %v", scored.Pairs)
	}
	if scored.Similarity != scored.Pairs[0].Similarity {
		t.Fatalf("candidate similarity %v != best pair %v", scored.Similarity, scored.Pairs[0].Similarity)
	}
}

func TestRankBySimilarityThenTrust(t *testing.T) {
	cands := []Candidate{
		{User: model.User{Name: "low", TrustScore: 5}, Similarity: 0.6},
		{User: model.User{Name: "trusted", TrustScore: 4.8}, Similarity: 0.9},
		{User: model.User{Name: "tied", TrustScore: 2}, Similarity: 0.9},
	}
	Rank(cands)
	if cands[0].User.Name != "trusted" || cands[1].User.Name != "tied" || cands[2].User.Name != "low" {
		t.Fatalf("order = %s, %s, %s", cands[0].User.Name, cands[1].User.Name, cands[2].User.Name)
	}
}

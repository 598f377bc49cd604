package services

import (
	"math"
	"sort"

	"github.com/google/uuid"
)

// MatchParams is the single tunable configuration for candidate ranking. The
// boosts are added to the raw cosine score before ranking, and a candidate is
// only eligible for delivery when its boosted score exceeds the threshold.
type MatchParams struct {
	SimilarityThreshold float64
	ArchetypeBoost      float64
	EmotionBoost        float64
}

func DefaultMatchParams() MatchParams {
	return MatchParams{
		SimilarityThreshold: 0.3,
		ArchetypeBoost:      0.10,
		EmotionBoost:        0.05,
	}
}

// Candidate is one prior story's embedding row, flattened for ranking.
// Candidates must be supplied in insertion (creation) order; that order is
// the deterministic tie-break.
type Candidate struct {
	StoryID     uuid.UUID
	Vector      []float32
	Archetype   string
	EmotionTone string
}

type RankedCandidate struct {
	Candidate
	Score float64
}

// CosineSimilarity returns the cosine of the angle between a and b. Mismatched
// lengths and zero-norm vectors score 0 rather than erroring: a story without
// a usable embedding is simply never similar to anything.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every candidate against the query and returns them in
// descending boosted-score order. Equal scores keep candidate input order, so
// repeated invocations with identical input yield identical output.
func Rank(query []float32, queryArchetype, queryTone string, candidates []Candidate, params MatchParams) []RankedCandidate {
	ranked := make([]RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		score := CosineSimilarity(query, c.Vector)
		if c.Archetype != "" && c.Archetype == queryArchetype {
			score += params.ArchetypeBoost
		}
		if c.EmotionTone != "" && c.EmotionTone == queryTone {
			score += params.EmotionBoost
		}
		ranked = append(ranked, RankedCandidate{Candidate: c, Score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

// BestMatch returns the top-ranked candidate when it clears the acceptance
// threshold, and false otherwise (empty corpus, missing query vector, or
// nothing similar enough all mean "no match").
func BestMatch(query []float32, queryArchetype, queryTone string, candidates []Candidate, params MatchParams) (RankedCandidate, bool) {
	if len(candidates) == 0 {
		return RankedCandidate{}, false
	}
	ranked := Rank(query, queryArchetype, queryTone, candidates, params)
	best := ranked[0]
	if best.Score <= params.SimilarityThreshold {
		return RankedCandidate{}, false
	}
	return best, true
}

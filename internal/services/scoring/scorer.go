package scoring

import (
	"context"
	"strings"

	"hirewire/internal/domain"
)

// CriteriaScorer computes a weighted keyword-overlap score of candidate
// data against requisition criteria. Each criterion scores the fraction of
// its keywords found in the candidate's skills or summary; the overall
// score is the weight-normalized blend, on a 0-100 scale.
type CriteriaScorer struct{}

func (CriteriaScorer) Compute(_ context.Context, app domain.Application, criteria []domain.Criterion) (domain.CandidateScore, error) {
	if len(criteria) == 0 {
		return domain.CandidateScore{}, domain.NewError(domain.CodeInsufficientData,
			"requisition has no scoring criteria")
	}
	if len(app.CandidateSkills) == 0 && strings.TrimSpace(app.CandidateSummary) == "" {
		return domain.CandidateScore{}, domain.NewError(domain.CodeInsufficientData,
			"candidate profile has no skills or summary")
	}

	haystack := strings.ToLower(app.CandidateSummary)
	skillSet := make(map[string]bool, len(app.CandidateSkills))
	for _, s := range app.CandidateSkills {
		skillSet[strings.ToLower(strings.TrimSpace(s))] = true
	}

	var totalWeight, weighted float64
	breakdown := make([]domain.CriterionScore, 0, len(criteria))
	for _, c := range criteria {
		weight := c.Weight
		if weight <= 0 {
			weight = 1
		}
		totalWeight += weight

		matched := make([]string, 0, len(c.Keywords))
		for _, kw := range c.Keywords {
			needle := strings.ToLower(strings.TrimSpace(kw))
			if needle == "" {
				continue
			}
			if skillSet[needle] || strings.Contains(haystack, needle) {
				matched = append(matched, needle)
			}
		}
		score := 0.0
		if len(c.Keywords) > 0 {
			score = float64(len(matched)) / float64(len(c.Keywords)) * 100
		}
		weighted += score * weight
		breakdown = append(breakdown, domain.CriterionScore{
			Criterion: c.Name,
			Weight:    weight,
			Score:     score,
			Matched:   matched,
		})
	}

	overall := 0.0
	if totalWeight > 0 {
		overall = weighted / totalWeight
	}
	if overall < 0 {
		overall = 0
	}
	if overall > 100 {
		overall = 100
	}
	return domain.CandidateScore{Overall: overall, Breakdown: breakdown}, nil
}

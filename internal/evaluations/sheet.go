package evaluations

import (
	"time"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

type CriterionScore struct {
	CriterionID int64  `json:"criterion_id"`
	Name        string `json:"name"`
	MaxScore    int64  `json:"max_score"`
	Score       *int64 `json:"score"`
}

type CategoryScore struct {
	CategoryID int64            `json:"category_id"`
	Name       string           `json:"name"`
	Criteria   []CriterionScore `json:"criteria"`
	Subtotal   int64            `json:"subtotal"`
	Max        int64            `json:"max"`
	Percentage float64          `json:"percentage"`
}

// Sheet is an evaluation laid out over the rubric.
type Sheet struct {
	ID             int64           `json:"id"`
	PlayerID       int64           `json:"player_id"`
	CoachProfileID *int64          `json:"coach_profile_id"`
	EvaluatedOn    string          `json:"evaluated_on"`
	Notes          string          `json:"notes"`
	Categories     []CategoryScore `json:"categories"`
	Total          int64           `json:"total"`
	Max            int64           `json:"max"`
	Percentage     float64         `json:"percentage"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// BuildSheet places scores on the rubric. Subtotals and maxima count scored criteria only.
func BuildSheet(rubric Rubric, evaluation dbgen.Evaluation, scores []dbgen.EvaluationScore) Sheet {
	byCriterion := make(map[int64]int64, len(scores))
	for _, s := range scores {
		byCriterion[s.CriterionID] = s.Score
	}

	sheet := Sheet{
		ID:          evaluation.ID,
		PlayerID:    evaluation.PlayerID,
		EvaluatedOn: evaluation.EvaluatedOn.UTC().Format(time.DateOnly),
		Notes:       evaluation.Notes,
		Categories:  make([]CategoryScore, 0, len(rubric.Categories)),
		UpdatedAt:   evaluation.UpdatedAt,
	}
	if evaluation.CoachProfileID.Valid {
		coach := evaluation.CoachProfileID.Int64
		sheet.CoachProfileID = &coach
	}

	for _, category := range rubric.Categories {
		cs := CategoryScore{
			CategoryID: category.ID,
			Name:       category.Name,
			Criteria:   make([]CriterionScore, 0, len(category.Criteria)),
		}
		for _, criterion := range category.Criteria {
			entry := CriterionScore{CriterionID: criterion.ID, Name: criterion.Name, MaxScore: criterion.MaxScore}
			if score, ok := byCriterion[criterion.ID]; ok {
				entry.Score = &score
				cs.Subtotal += score
				cs.Max += criterion.MaxScore
			}
			cs.Criteria = append(cs.Criteria, entry)
		}
		cs.Percentage = percentage(cs.Subtotal, cs.Max)
		sheet.Total += cs.Subtotal
		sheet.Max += cs.Max
		sheet.Categories = append(sheet.Categories, cs)
	}
	sheet.Percentage = percentage(sheet.Total, sheet.Max)
	return sheet
}

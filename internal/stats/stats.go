// Package stats aggregates match results for teams and players.
package stats

import (
	"math"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

type Result string

const (
	ResultWin  Result = "win"
	ResultDraw Result = "draw"
	ResultLoss Result = "loss"
)

const (
	FractionFull = "full"
	FractionHalf = "half"
)

// Outcome classifies a final score from the team's point of view.
func Outcome(teamGoals, opponentGoals int) Result {
	switch {
	case teamGoals > opponentGoals:
		return ResultWin
	case teamGoals == opponentGoals:
		return ResultDraw
	default:
		return ResultLoss
	}
}

type Score struct {
	TeamGoals     int    `json:"teamGoals"`
	OpponentGoals int    `json:"opponentGoals"`
	Outcome       Result `json:"outcome"`
}

// MatchResult sums quarter results into a final score. A match without
// recorded quarters has no result.
func MatchResult(quarters []dbgen.MatchQuarterResult) *Score {
	if len(quarters) == 0 {
		return nil
	}
	var score Score
	for _, q := range quarters {
		score.TeamGoals += int(q.TeamGoals)
		score.OpponentGoals += int(q.OpponentGoals)
	}
	score.Outcome = Outcome(score.TeamGoals, score.OpponentGoals)
	return &score
}

type Summary struct {
	Played         int     `json:"played"`
	Wins           int     `json:"wins"`
	Draws          int     `json:"draws"`
	Losses         int     `json:"losses"`
	GoalsFor       int     `json:"goalsFor"`
	GoalsAgainst   int     `json:"goalsAgainst"`
	GoalDifference int     `json:"goalDifference"`
	WinPercentage  float64 `json:"winPercentage"`
}

// Aggregate folds match results into a summary. Nil results are skipped.
func Aggregate(results []*Score) Summary {
	var s Summary
	for _, r := range results {
		if r == nil {
			continue
		}
		s.Played++
		s.GoalsFor += r.TeamGoals
		s.GoalsAgainst += r.OpponentGoals
		switch r.Outcome {
		case ResultWin:
			s.Wins++
		case ResultDraw:
			s.Draws++
		default:
			s.Losses++
		}
	}
	s.GoalDifference = s.GoalsFor - s.GoalsAgainst
	s.WinPercentage = WinPercentage(s.Wins, s.Played)
	return s
}

// WinPercentage is wins over played as a percentage rounded to one decimal.
func WinPercentage(wins, played int) float64 {
	if played == 0 {
		return 0
	}
	return math.Round(float64(wins)*1000/float64(played)) / 10
}

// FractionWeight is the number of periods a recorded fraction counts for.
func FractionWeight(fraction string) float64 {
	switch fraction {
	case FractionFull:
		return 1
	case FractionHalf:
		return 0.5
	default:
		return 0
	}
}

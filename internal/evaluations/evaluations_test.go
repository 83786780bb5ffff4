package evaluations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/testutil"
)

// NOTE: Tests cannot use t.Parallel() due to shared package state.

type fixture struct {
	service *Service
	rubric  Rubric
	player  dbgen.Player
	coach   dbgen.Profile
	ctx     context.Context
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	team := testutil.SeedTeam(t, database, "Lions")

	service, err := NewService(database)
	require.NoError(t, err)
	ctx := context.Background()
	rubric, err := service.Rubric(ctx)
	require.NoError(t, err)

	return fixture{
		service: service,
		rubric:  rubric,
		player:  testutil.SeedPlayer(t, database, team.ID, "Ana", 7),
		coach:   testutil.SeedProfile(t, database, "coach@club.test", "coach"),
		ctx:     ctx,
	}
}

func (f fixture) criterion(t *testing.T, category, name string) Criterion {
	t.Helper()
	for _, cat := range f.rubric.Categories {
		if cat.Name != category {
			continue
		}
		for _, c := range cat.Criteria {
			if c.Name == name {
				return c
			}
		}
	}
	t.Fatalf("criterion %s/%s not in rubric", category, name)
	return Criterion{}
}

func TestRubricIsSeeded(t *testing.T) {
	f := newFixture(t)

	require.Len(t, f.rubric.Categories, 4)
	assert.Equal(t, "Technical", f.rubric.Categories[0].Name)
	assert.Len(t, f.rubric.Categories[0].Criteria, 3)
	assert.Equal(t, int64(5), f.criterion(t, "Physical", "Speed").MaxScore)
}

func TestValidate(t *testing.T) {
	rubric := buildRubric(
		[]dbgen.EvaluationCategory{{ID: 1, Name: "Technical"}},
		[]dbgen.EvaluationCriterion{{ID: 10, CategoryID: 1, Name: "Passing", MaxScore: 10}},
	)

	tests := []struct {
		name   string
		scores []ScoreInput
		want   error
	}{
		{"empty", nil, ErrNoScores},
		{"unknown", []ScoreInput{{CriterionID: 11, Score: 1}}, ErrUnknownCriterion},
		{"duplicate", []ScoreInput{{CriterionID: 10, Score: 1}, {CriterionID: 10, Score: 2}}, ErrDuplicateCriterion},
		{"negative", []ScoreInput{{CriterionID: 10, Score: -1}}, ErrScoreOutOfRange},
		{"above max", []ScoreInput{{CriterionID: 10, Score: 11}}, ErrScoreOutOfRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, rubric.Validate(tt.scores), tt.want)
		})
	}
	assert.NoError(t, rubric.Validate([]ScoreInput{{CriterionID: 10, Score: 0}}))
	assert.NoError(t, rubric.Validate([]ScoreInput{{CriterionID: 10, Score: 10}}))
}

func TestCreateBuildsSheet(t *testing.T) {
	f := newFixture(t)
	passing := f.criterion(t, "Technical", "Passing")
	shooting := f.criterion(t, "Technical", "Shooting")
	speed := f.criterion(t, "Physical", "Speed")

	sheet, err := f.service.Create(f.ctx, f.player.ID, Input{
		EvaluatedOn:    time.Date(2026, 3, 4, 17, 30, 0, 0, time.UTC),
		Notes:          " steady ",
		CoachProfileID: f.coach.ID,
		Scores: []ScoreInput{
			{CriterionID: passing.ID, Score: 8},
			{CriterionID: shooting.ID, Score: 6},
			{CriterionID: speed.ID, Score: 4},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "2026-03-04", sheet.EvaluatedOn)
	assert.Equal(t, "steady", sheet.Notes)
	require.NotNil(t, sheet.CoachProfileID)
	assert.Equal(t, f.coach.ID, *sheet.CoachProfileID)

	technical := sheet.Categories[0]
	assert.Equal(t, int64(14), technical.Subtotal)
	assert.Equal(t, int64(20), technical.Max)
	assert.Equal(t, 70.0, technical.Percentage)
	assert.Nil(t, technical.Criteria[1].Score, "ball control left blank")

	assert.Equal(t, int64(18), sheet.Total)
	assert.Equal(t, int64(25), sheet.Max)
	assert.Equal(t, 72.0, sheet.Percentage)
	assert.Equal(t, 0.0, sheet.Categories[3].Percentage)
}

func TestUpdateReplacesScores(t *testing.T) {
	f := newFixture(t)
	passing := f.criterion(t, "Technical", "Passing")
	attitude := f.criterion(t, "Mental", "Attitude")

	created, err := f.service.Create(f.ctx, f.player.ID, Input{
		EvaluatedOn: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Scores:      []ScoreInput{{CriterionID: passing.ID, Score: 8}},
	})
	require.NoError(t, err)

	updated, err := f.service.Update(f.ctx, created.ID, Input{
		EvaluatedOn: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Scores:      []ScoreInput{{CriterionID: attitude.ID, Score: 5}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(5), updated.Total)
	assert.Equal(t, int64(5), updated.Max)
	assert.Nil(t, updated.Categories[0].Criteria[0].Score, "previous scores removed")

	fetched, err := f.service.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, updated.Total, fetched.Total)
	assert.Equal(t, "2026-03-05", fetched.EvaluatedOn)

	_, err = f.service.Update(f.ctx, 9999, Input{
		EvaluatedOn: time.Now(),
		Scores:      []ScoreInput{{CriterionID: attitude.ID, Score: 5}},
	})
	assert.ErrorIs(t, err, ErrEvaluationNotFound)
}

func TestInvalidUpdateKeepsScores(t *testing.T) {
	f := newFixture(t)
	passing := f.criterion(t, "Technical", "Passing")

	created, err := f.service.Create(f.ctx, f.player.ID, Input{
		EvaluatedOn: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
		Scores:      []ScoreInput{{CriterionID: passing.ID, Score: 8}},
	})
	require.NoError(t, err)

	_, err = f.service.Update(f.ctx, created.ID, Input{
		EvaluatedOn: time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
		Scores:      []ScoreInput{{CriterionID: passing.ID, Score: 11}},
	})
	require.ErrorIs(t, err, ErrScoreOutOfRange)

	fetched, err := f.service.Get(f.ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(8), fetched.Total)
	assert.Equal(t, "2026-03-04", fetched.EvaluatedOn)
}

func TestCreateRejects(t *testing.T) {
	f := newFixture(t)
	passing := f.criterion(t, "Technical", "Passing")
	scores := []ScoreInput{{CriterionID: passing.ID, Score: 3}}

	_, err := f.service.Create(f.ctx, 9999, Input{EvaluatedOn: time.Now(), Scores: scores})
	assert.ErrorIs(t, err, ErrPlayerNotFound)

	_, err = f.service.Create(f.ctx, f.player.ID, Input{Scores: scores})
	assert.ErrorIs(t, err, ErrDateMissing)

	_, err = f.service.Create(f.ctx, f.player.ID, Input{EvaluatedOn: time.Now(), Scores: []ScoreInput{{CriterionID: 9999, Score: 1}}})
	assert.ErrorIs(t, err, ErrUnknownCriterion)

	sheets, err := f.service.ListForPlayer(f.ctx, f.player.ID)
	require.NoError(t, err)
	assert.Empty(t, sheets)
}

func TestListPlayerOfAndDelete(t *testing.T) {
	f := newFixture(t)
	passing := f.criterion(t, "Technical", "Passing")

	var ids []int64
	for day := 1; day <= 2; day++ {
		sheet, err := f.service.Create(f.ctx, f.player.ID, Input{
			EvaluatedOn: time.Date(2026, 3, day, 0, 0, 0, 0, time.UTC),
			Scores:      []ScoreInput{{CriterionID: passing.ID, Score: int64(day)}},
		})
		require.NoError(t, err)
		ids = append(ids, sheet.ID)
	}

	sheets, err := f.service.ListForPlayer(f.ctx, f.player.ID)
	require.NoError(t, err)
	require.Len(t, sheets, 2)
	assert.Equal(t, ids[1], sheets[0].ID, "newest first")

	player, err := f.service.PlayerOf(f.ctx, ids[0])
	require.NoError(t, err)
	assert.Equal(t, f.player.ID, player.ID)

	require.NoError(t, f.service.Delete(f.ctx, ids[0]))
	assert.ErrorIs(t, f.service.Delete(f.ctx, ids[0]), ErrEvaluationNotFound)
	_, err = f.service.PlayerOf(f.ctx, ids[0])
	assert.ErrorIs(t, err, ErrEvaluationNotFound)

	_, err = f.service.ListForPlayer(f.ctx, 9999)
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

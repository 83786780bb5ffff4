package matches

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
	"github.com/codr1/Sideline/internal/testutil"
)

type fixture struct {
	engine *Engine
	q      *dbgen.Queries
	match  dbgen.Match
	ana    dbgen.Player
	bea    dbgen.Player
	cleo   dbgen.Player
	ctx    context.Context
}

func newFixture(t *testing.T, opts ...Option) fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	team := testutil.SeedTeam(t, database, "Lions")
	match := testutil.SeedMatch(t, database, team.ID, "Tigers", time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))

	engine, err := NewEngine(database, 2, opts...)
	require.NoError(t, err)

	return fixture{
		engine: engine,
		q:      database.Queries,
		match:  match,
		ana:    testutil.SeedPlayer(t, database, team.ID, "Ana", 7),
		bea:    testutil.SeedPlayer(t, database, team.ID, "Bea", 9),
		cleo:   testutil.SeedPlayer(t, database, team.ID, "Cleo", 11),
		ctx:    context.Background(),
	}
}

func TestNewEngineRejectsBadMinimum(t *testing.T) {
	database := testutil.NewTestDB(t)
	_, err := NewEngine(database, 5)
	require.Error(t, err)
	_, err = NewEngine(nil, 2)
	require.Error(t, err)
}

func TestAddCallUp(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))
	assert.ErrorIs(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID), ErrAlreadyCalledUp)
	assert.ErrorIs(t, f.engine.AddCallUp(f.ctx, 9999, f.ana.ID), ErrMatchNotFound)
	assert.ErrorIs(t, f.engine.AddCallUp(f.ctx, f.match.ID, 9999), ErrPlayerNotFound)

	rows, err := f.engine.ListCallUps(f.ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, f.ana.ID, rows[0].PlayerID)
}

func TestAddCallUpRejectsOtherTeam(t *testing.T) {
	database := testutil.NewTestDB(t)
	lions := testutil.SeedTeam(t, database, "Lions")
	bears := testutil.SeedTeam(t, database, "Bears")
	match := testutil.SeedMatch(t, database, lions.ID, "Tigers", time.Now())
	outsider := testutil.SeedPlayer(t, database, bears.ID, "Dora", 4)

	engine, err := NewEngine(database, 2)
	require.NoError(t, err)
	assert.ErrorIs(t, engine.AddCallUp(context.Background(), match.ID, outsider.ID), ErrPlayerNotOnTeam)
}

func TestRecordPeriodReplacesPrevious(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))

	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull}))
	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionHalf}))

	periods, err := f.q.ListMatchPeriods(f.ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, periods, 1)
	assert.Equal(t, stats.FractionHalf, periods[0].Fraction)
}

func TestRecordPeriodValidation(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))

	tests := []struct {
		name string
		in   PeriodInput
		want error
	}{
		{name: "period too low", in: PeriodInput{PlayerID: f.ana.ID, Period: 0, Fraction: stats.FractionFull}, want: ErrInvalidPeriod},
		{name: "period too high", in: PeriodInput{PlayerID: f.ana.ID, Period: 5, Fraction: stats.FractionFull}, want: ErrInvalidPeriod},
		{name: "bad fraction", in: PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: "quarter"}, want: ErrInvalidFraction},
		{name: "not called up", in: PeriodInput{PlayerID: f.bea.ID, Period: 1, Fraction: stats.FractionFull}, want: ErrNotCalledUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, f.engine.RecordPeriod(f.ctx, f.match.ID, tt.in), tt.want)
		})
	}
}

func TestRecordPeriodsIsAtomic(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))

	err := f.engine.RecordPeriods(f.ctx, f.match.ID, []PeriodInput{
		{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull},
		{PlayerID: f.bea.ID, Period: 1, Fraction: stats.FractionFull},
	})
	assert.ErrorIs(t, err, ErrNotCalledUp)

	periods, err := f.q.ListMatchPeriods(f.ctx, f.match.ID)
	require.NoError(t, err)
	assert.Empty(t, periods)
}

func TestApplyAndRemoveSubstitution(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))
	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 2, Fraction: stats.FractionFull}))

	sub, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 2, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID})
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)

	out, err := f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.ana.ID, Period: 2})
	require.NoError(t, err)
	assert.Equal(t, stats.FractionHalf, out.Fraction)
	in, err := f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.bea.ID, Period: 2})
	require.NoError(t, err)
	assert.Equal(t, stats.FractionHalf, in.Fraction)

	require.NoError(t, f.engine.RemoveSubstitution(f.ctx, f.match.ID, sub.ID))

	out, err = f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.ana.ID, Period: 2})
	require.NoError(t, err)
	assert.Equal(t, stats.FractionFull, out.Fraction)
	_, err = f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.bea.ID, Period: 2})
	assert.True(t, isNoRows(err))

	subs, err := f.engine.ListSubstitutions(f.ctx, f.match.ID)
	require.NoError(t, err)
	assert.Empty(t, subs)

	assert.ErrorIs(t, f.engine.RemoveSubstitution(f.ctx, f.match.ID, sub.ID), ErrSubstitutionNotFound)
}

func TestApplySubstitutionRequiresFullPeriod(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))
	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionHalf}))

	_, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID})
	assert.ErrorIs(t, err, ErrOutNotFullPeriod)

	out, err := f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.ana.ID, Period: 1})
	require.NoError(t, err)
	assert.Equal(t, stats.FractionHalf, out.Fraction)
	_, err = f.q.GetPlayerPeriod(f.ctx, dbgen.GetPlayerPeriodParams{MatchID: f.match.ID, PlayerID: f.bea.ID, Period: 1})
	assert.True(t, isNoRows(err))

	grid, err := f.engine.PeriodGrid(f.ctx, f.match.ID)
	require.NoError(t, err)
	for _, row := range grid {
		if row.PlayerID == f.ana.ID {
			assert.Equal(t, 0.5, row.Total)
		}
	}
}

func TestApplySubstitutionRules(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID, f.cleo.ID}))
	require.NoError(t, f.engine.RecordPeriods(f.ctx, f.match.ID, []PeriodInput{
		{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull},
		{PlayerID: f.cleo.ID, Period: 1, Fraction: stats.FractionFull},
	}))

	tests := []struct {
		name string
		in   SubstitutionInput
		want error
	}{
		{name: "same player", in: SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.ana.ID}, want: ErrSamePlayer},
		{name: "bad period", in: SubstitutionInput{Period: 9, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID}, want: ErrInvalidPeriod},
		{name: "outgoing not on field", in: SubstitutionInput{Period: 2, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID}, want: ErrOutNotOnField},
		{name: "incoming already on field", in: SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.cleo.ID}, want: ErrInAlreadyOnField},
		{name: "incoming not called up", in: SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: 9999}, want: ErrNotCalledUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID})
	require.NoError(t, err)
	_, err = f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 1, PlayerOutID: f.cleo.ID, PlayerInID: f.bea.ID})
	assert.ErrorIs(t, err, ErrAlreadySubstituted)
}

func TestRemoveCallUpRefusedWhileSubstituted(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))
	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull}))
	_, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.bea.ID), ErrCallUpInUse)
	assert.ErrorIs(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull}), ErrPeriodLocked)
}

func TestRemoveCallUpDeletesPeriods(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))
	require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: 3, Fraction: stats.FractionFull}))

	require.NoError(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.ana.ID))

	periods, err := f.q.ListMatchPeriods(f.ctx, f.match.ID)
	require.NoError(t, err)
	assert.Empty(t, periods)
	assert.ErrorIs(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.ana.ID), ErrNotCalledUp)
}

func TestRemoveCallUpRefusedWhileCreditedWithGoal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))
	goal, err := f.engine.RecordGoal(f.ctx, f.match.ID, GoalInput{Quarter: 2, ScorerPlayerID: &f.ana.ID, AssistPlayerID: &f.bea.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.ana.ID), ErrCallUpHasGoals)
	assert.ErrorIs(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.bea.ID), ErrCallUpHasGoals)
	assert.ErrorIs(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.bea.ID}), ErrCallUpHasGoals)

	callUps, err := f.engine.ListCallUps(f.ctx, f.match.ID)
	require.NoError(t, err)
	assert.Len(t, callUps, 2)

	require.NoError(t, f.engine.DeleteGoal(f.ctx, f.match.ID, goal.ID))
	require.NoError(t, f.engine.RemoveCallUp(f.ctx, f.match.ID, f.ana.ID))
}

func TestReplaceCallUps(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.bea.ID, f.cleo.ID}))

	rows, err := f.engine.ListCallUps(f.ctx, f.match.ID)
	require.NoError(t, err)
	ids := make([]int64, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PlayerID)
	}
	assert.ElementsMatch(t, []int64{f.bea.ID, f.cleo.ID}, ids)

	assert.ErrorIs(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.ana.ID}), ErrAlreadyCalledUp)
}

func TestValidateMinimumPeriods(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID, f.cleo.ID}))
	require.NoError(t, f.engine.RecordPeriods(f.ctx, f.match.ID, []PeriodInput{
		{PlayerID: f.ana.ID, Period: 1, Fraction: stats.FractionFull},
		{PlayerID: f.ana.ID, Period: 2, Fraction: stats.FractionFull},
		{PlayerID: f.bea.ID, Period: 1, Fraction: stats.FractionFull},
		{PlayerID: f.bea.ID, Period: 3, Fraction: stats.FractionHalf},
	}))

	report, err := f.engine.ValidateMinimumPeriods(f.ctx, f.match.ID)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, 2, report.Minimum)

	flagged := map[int64]float64{}
	for _, v := range report.Violations {
		flagged[v.PlayerID] = v.Played
	}
	assert.Equal(t, map[int64]float64{f.bea.ID: 1.5, f.cleo.ID: 0}, flagged)
}

func TestBelowMinimumWithZeroThreshold(t *testing.T) {
	report := BelowMinimum([]GridRow{{PlayerID: 1, Total: 0}}, 0)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Violations)
}

func TestPeriodGridNeverExceedsFour(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.AddCallUp(f.ctx, f.match.ID, f.ana.ID))
	for period := int64(1); period <= 4; period++ {
		for i := 0; i < 2; i++ {
			require.NoError(t, f.engine.RecordPeriod(f.ctx, f.match.ID, PeriodInput{PlayerID: f.ana.ID, Period: period, Fraction: stats.FractionFull}))
		}
	}

	grid, err := f.engine.PeriodGrid(f.ctx, f.match.ID)
	require.NoError(t, err)
	require.Len(t, grid, 1)
	assert.Equal(t, 4.0, grid[0].Total)
	assert.Equal(t, [4]string{"full", "full", "full", "full"}, grid[0].Periods)
}

type recordingNotifier struct {
	quarters []int64
	scores   []stats.Score
}

func (r *recordingNotifier) NotifyScore(ctx context.Context, match dbgen.Match, quarter int64, score stats.Score) error {
	r.quarters = append(r.quarters, quarter)
	r.scores = append(r.scores, score)
	return nil
}

func TestRecordQuarterResult(t *testing.T) {
	notifier := &recordingNotifier{}
	f := newFixture(t, WithScoreNotifier(notifier))

	_, err := f.engine.RecordQuarterResult(f.ctx, f.match.ID, QuarterInput{Quarter: 1, TeamGoals: 2, OpponentGoals: 0})
	require.NoError(t, err)
	score, err := f.engine.RecordQuarterResult(f.ctx, f.match.ID, QuarterInput{Quarter: 2, TeamGoals: 0, OpponentGoals: 3})
	require.NoError(t, err)
	assert.Equal(t, stats.Score{TeamGoals: 2, OpponentGoals: 3, Outcome: stats.ResultLoss}, *score)

	score, err = f.engine.RecordQuarterResult(f.ctx, f.match.ID, QuarterInput{Quarter: 2, TeamGoals: 0, OpponentGoals: 2})
	require.NoError(t, err)
	assert.Equal(t, stats.ResultDraw, score.Outcome)
	assert.Equal(t, []int64{1, 2, 2}, notifier.quarters)

	_, err = f.engine.RecordQuarterResult(f.ctx, f.match.ID, QuarterInput{Quarter: 1, TeamGoals: -1})
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = f.engine.RecordQuarterResult(f.ctx, f.match.ID, QuarterInput{Quarter: 5})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
}

func TestRecordGoal(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))

	goal, err := f.engine.RecordGoal(f.ctx, f.match.ID, GoalInput{Quarter: 1, ScorerPlayerID: &f.ana.ID, AssistPlayerID: &f.bea.ID})
	require.NoError(t, err)

	_, err = f.engine.RecordGoal(f.ctx, f.match.ID, GoalInput{Quarter: 1, ScorerPlayerID: &f.cleo.ID})
	assert.ErrorIs(t, err, ErrNotCalledUp)
	_, err = f.engine.RecordGoal(f.ctx, f.match.ID, GoalInput{Quarter: 1, ScorerPlayerID: &f.ana.ID, OwnGoal: true})
	assert.ErrorIs(t, err, ErrInvalidGoal)

	totals, err := f.q.GetPlayerGoalTotals(f.ctx, f.ana.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Goals)

	require.NoError(t, f.engine.DeleteGoal(f.ctx, f.match.ID, goal.ID))
	assert.ErrorIs(t, f.engine.DeleteGoal(f.ctx, f.match.ID, goal.ID), ErrGoalNotFound)
}

type countingObserver map[string]int

func (c countingObserver) ObserveSubstitution(action string) { c[action]++ }

func TestSubstitutionObserver(t *testing.T) {
	observer := countingObserver{}
	f := newFixture(t, WithSubstitutionObserver(observer))
	require.NoError(t, f.engine.ReplaceCallUps(f.ctx, f.match.ID, []int64{f.ana.ID, f.bea.ID}))

	_, err := f.engine.ApplySubstitution(f.ctx, f.match.ID, SubstitutionInput{Period: 1, PlayerOutID: f.ana.ID, PlayerInID: f.bea.ID})
	require.Error(t, err)
	assert.Equal(t, 1, observer[SubstitutionRefused])
}

package dbgen

import (
	"context"
	"database/sql"
	"time"
)

type Querier interface {
	AddTeamMembership(ctx context.Context, arg AddTeamMembershipParams) error
	CountCallUpsForPlayer(ctx context.Context, playerID int64) (int64, error)
	CountGoalsForPlayer(ctx context.Context, arg CountGoalsForPlayerParams) (int64, error)
	CountSubstitutionsForPlayer(ctx context.Context, arg CountSubstitutionsForPlayerParams) (int64, error)
	CountSubstitutionsInPeriod(ctx context.Context, arg CountSubstitutionsInPeriodParams) (int64, error)
	CreateCallUp(ctx context.Context, arg CreateCallUpParams) error
	CreateEvaluation(ctx context.Context, arg CreateEvaluationParams) (Evaluation, error)
	CreateGoal(ctx context.Context, arg CreateGoalParams) (MatchGoal, error)
	CreateMatch(ctx context.Context, arg CreateMatchParams) (Match, error)
	CreatePlayer(ctx context.Context, arg CreatePlayerParams) (Player, error)
	CreateProfile(ctx context.Context, arg CreateProfileParams) (Profile, error)
	CreateRecoveryToken(ctx context.Context, arg CreateRecoveryTokenParams) error
	CreateSubstitution(ctx context.Context, arg CreateSubstitutionParams) (MatchSubstitution, error)
	CreateTeam(ctx context.Context, arg CreateTeamParams) (Team, error)
	CreateTraining(ctx context.Context, arg CreateTrainingParams) (Training, error)
	DeleteAttendanceForTraining(ctx context.Context, trainingID int64) error
	DeleteCallUp(ctx context.Context, arg DeleteCallUpParams) (int64, error)
	DeleteCallUpsByMatch(ctx context.Context, matchID int64) error
	DeleteEvaluation(ctx context.Context, id int64) (int64, error)
	DeleteEvaluationScores(ctx context.Context, evaluationID int64) error
	DeleteGoal(ctx context.Context, arg DeleteGoalParams) (int64, error)
	DeleteMatch(ctx context.Context, id int64) (int64, error)
	DeletePlayer(ctx context.Context, id int64) (int64, error)
	DeletePlayerPeriod(ctx context.Context, arg DeletePlayerPeriodParams) (int64, error)
	DeletePlayerPeriodsForMatch(ctx context.Context, arg DeletePlayerPeriodsForMatchParams) error
	DeleteProfile(ctx context.Context, id int64) error
	DeleteQuarterResult(ctx context.Context, arg DeleteQuarterResultParams) (int64, error)
	DeleteStaleRecoveryTokens(ctx context.Context, now time.Time) (int64, error)
	DeleteSubstitution(ctx context.Context, id int64) (int64, error)
	DeleteTeam(ctx context.Context, id int64) (int64, error)
	DeleteTraining(ctx context.Context, id int64) (int64, error)
	ExpirePendingInvites(ctx context.Context, now time.Time) (int64, error)
	GetEvaluation(ctx context.Context, id int64) (Evaluation, error)
	GetMatch(ctx context.Context, id int64) (Match, error)
	GetPendingInvite(ctx context.Context, email string) (PendingInvite, error)
	GetPlayer(ctx context.Context, id int64) (Player, error)
	GetPlayerGoalTotals(ctx context.Context, playerID int64) (GetPlayerGoalTotalsRow, error)
	GetPlayerPeriod(ctx context.Context, arg GetPlayerPeriodParams) (MatchPlayerPeriod, error)
	GetProfileByEmail(ctx context.Context, email string) (Profile, error)
	GetProfileByID(ctx context.Context, id int64) (Profile, error)
	GetRecoveryToken(ctx context.Context, tokenHash string) (RecoveryToken, error)
	GetSubstitution(ctx context.Context, id int64) (MatchSubstitution, error)
	GetTeam(ctx context.Context, id int64) (Team, error)
	GetTraining(ctx context.Context, id int64) (Training, error)
	InsertAttendance(ctx context.Context, arg InsertAttendanceParams) error
	InsertEvaluationScore(ctx context.Context, arg InsertEvaluationScoreParams) error
	InsertPlayerPeriod(ctx context.Context, arg InsertPlayerPeriodParams) error
	IsCalledUp(ctx context.Context, arg IsCalledUpParams) (bool, error)
	ListAttendance(ctx context.Context, trainingID int64) ([]TrainingAttendance, error)
	ListAttendanceByTeam(ctx context.Context, arg ListAttendanceByTeamParams) ([]TrainingAttendance, error)
	ListEvaluationCategories(ctx context.Context) ([]EvaluationCategory, error)
	ListEvaluationCriteria(ctx context.Context) ([]EvaluationCriterion, error)
	ListEvaluationScores(ctx context.Context, evaluationID int64) ([]EvaluationScore, error)
	ListEvaluationsByPlayer(ctx context.Context, playerID int64) ([]Evaluation, error)
	ListGoals(ctx context.Context, matchID int64) ([]MatchGoal, error)
	ListMatchCallUps(ctx context.Context, matchID int64) ([]ListMatchCallUpsRow, error)
	ListMatchPeriods(ctx context.Context, matchID int64) ([]MatchPlayerPeriod, error)
	ListMatchesByTeam(ctx context.Context, arg ListMatchesByTeamParams) ([]Match, error)
	ListPendingInvites(ctx context.Context, status string) ([]PendingInvite, error)
	ListPlayerPeriodsByPlayer(ctx context.Context, playerID int64) ([]MatchPlayerPeriod, error)
	ListPlayersByProfile(ctx context.Context, profileID sql.NullInt64) ([]Player, error)
	ListPlayersByTeam(ctx context.Context, teamID int64) ([]Player, error)
	ListProfiles(ctx context.Context) ([]Profile, error)
	ListQuarterResults(ctx context.Context, matchID int64) ([]MatchQuarterResult, error)
	ListSubstitutions(ctx context.Context, matchID int64) ([]MatchSubstitution, error)
	ListTeamIDsForProfile(ctx context.Context, profileID int64) ([]int64, error)
	ListTeamMembers(ctx context.Context, teamID int64) ([]ListTeamMembersRow, error)
	ListTeams(ctx context.Context) ([]Team, error)
	ListTeamsForProfile(ctx context.Context, profileID int64) ([]Team, error)
	ListTrainingsByTeam(ctx context.Context, arg ListTrainingsByTeamParams) ([]Training, error)
	MarkInviteAccepted(ctx context.Context, email string) (int64, error)
	MarkRecoveryTokenUsed(ctx context.Context, arg MarkRecoveryTokenUsedParams) (int64, error)
	RemoveTeamMembership(ctx context.Context, arg RemoveTeamMembershipParams) (int64, error)
	TeamExists(ctx context.Context, id int64) (bool, error)
	UpdateEvaluation(ctx context.Context, arg UpdateEvaluationParams) (Evaluation, error)
	UpdateMatch(ctx context.Context, arg UpdateMatchParams) (Match, error)
	UpdatePlayer(ctx context.Context, arg UpdatePlayerParams) (Player, error)
	UpdatePlayerPeriodFraction(ctx context.Context, arg UpdatePlayerPeriodFractionParams) (int64, error)
	UpdateProfileDisplayName(ctx context.Context, arg UpdateProfileDisplayNameParams) error
	UpdateProfilePassword(ctx context.Context, arg UpdateProfilePasswordParams) error
	UpdateProfileRole(ctx context.Context, arg UpdateProfileRoleParams) error
	UpdateTeam(ctx context.Context, arg UpdateTeamParams) (Team, error)
	UpdateTraining(ctx context.Context, arg UpdateTrainingParams) (Training, error)
	UpsertPendingInvite(ctx context.Context, arg UpsertPendingInviteParams) (PendingInvite, error)
	UpsertQuarterResult(ctx context.Context, arg UpsertQuarterResultParams) (MatchQuarterResult, error)
}

var _ Querier = (*Queries)(nil)

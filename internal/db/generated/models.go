package dbgen

import (
	"database/sql"
	"time"
)

type Evaluation struct {
	ID             int64         `json:"id"`
	PlayerID       int64         `json:"player_id"`
	CoachProfileID sql.NullInt64 `json:"coach_profile_id"`
	EvaluatedOn    time.Time     `json:"evaluated_on"`
	Notes          string        `json:"notes"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

type EvaluationCategory struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	SortOrder int64  `json:"sort_order"`
}

type EvaluationCriterion struct {
	ID         int64  `json:"id"`
	CategoryID int64  `json:"category_id"`
	Name       string `json:"name"`
	MaxScore   int64  `json:"max_score"`
	SortOrder  int64  `json:"sort_order"`
}

type EvaluationScore struct {
	EvaluationID int64 `json:"evaluation_id"`
	CriterionID  int64 `json:"criterion_id"`
	Score        int64 `json:"score"`
}

type Match struct {
	ID        int64         `json:"id"`
	TeamID    int64         `json:"team_id"`
	Opponent  string        `json:"opponent"`
	MatchDate time.Time     `json:"match_date"`
	Location  string        `json:"location"`
	IsHome    bool          `json:"is_home"`
	Notes     string        `json:"notes"`
	CreatedBy sql.NullInt64 `json:"created_by"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type MatchCallUp struct {
	MatchID   int64     `json:"match_id"`
	PlayerID  int64     `json:"player_id"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchGoal struct {
	ID             int64         `json:"id"`
	MatchID        int64         `json:"match_id"`
	Quarter        int64         `json:"quarter"`
	ScorerPlayerID sql.NullInt64 `json:"scorer_player_id"`
	AssistPlayerID sql.NullInt64 `json:"assist_player_id"`
	Minute         sql.NullInt64 `json:"minute"`
	OwnGoal        bool          `json:"own_goal"`
	CreatedAt      time.Time     `json:"created_at"`
}

type MatchPlayerPeriod struct {
	MatchID   int64     `json:"match_id"`
	PlayerID  int64     `json:"player_id"`
	Period    int64     `json:"period"`
	Fraction  string    `json:"fraction"`
	CreatedAt time.Time `json:"created_at"`
}

type MatchQuarterResult struct {
	MatchID       int64     `json:"match_id"`
	Quarter       int64     `json:"quarter"`
	TeamGoals     int64     `json:"team_goals"`
	OpponentGoals int64     `json:"opponent_goals"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type MatchSubstitution struct {
	ID          int64     `json:"id"`
	MatchID     int64     `json:"match_id"`
	Period      int64     `json:"period"`
	PlayerOutID int64     `json:"player_out_id"`
	PlayerInID  int64     `json:"player_in_id"`
	CreatedAt   time.Time `json:"created_at"`
}

type PendingInvite struct {
	Email       string        `json:"email"`
	DisplayName string        `json:"display_name"`
	Role        string        `json:"role"`
	TeamIds     string        `json:"team_ids"`
	RedirectTo  string        `json:"redirect_to"`
	InvitedBy   sql.NullInt64 `json:"invited_by"`
	Status      string        `json:"status"`
	ExpiresAt   time.Time     `json:"expires_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Player struct {
	ID            int64          `json:"id"`
	TeamID        int64          `json:"team_id"`
	ProfileID     sql.NullInt64  `json:"profile_id"`
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	JerseyNumber  sql.NullInt64  `json:"jersey_number"`
	Position      string         `json:"position"`
	BirthDate     sql.NullTime   `json:"birth_date"`
	GuardianPhone sql.NullString `json:"guardian_phone"`
	Active        bool           `json:"active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

type Profile struct {
	ID           int64          `json:"id"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"display_name"`
	Role         string         `json:"role"`
	PasswordHash sql.NullString `json:"-"`
	Phone        sql.NullString `json:"phone"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

type RecoveryToken struct {
	TokenHash string       `json:"token_hash"`
	ProfileID int64        `json:"profile_id"`
	ExpiresAt time.Time    `json:"expires_at"`
	UsedAt    sql.NullTime `json:"used_at"`
	CreatedAt time.Time    `json:"created_at"`
}

type Team struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Season    string    `json:"season"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeamMembership struct {
	TeamID    int64     `json:"team_id"`
	ProfileID int64     `json:"profile_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Training struct {
	ID          int64     `json:"id"`
	TeamID      int64     `json:"team_id"`
	SessionDate time.Time `json:"session_date"`
	Location    string    `json:"location"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
}

type TrainingAttendance struct {
	TrainingID int64  `json:"training_id"`
	PlayerID   int64  `json:"player_id"`
	Status     string `json:"status"`
	Note       string `json:"note"`
}

// internal/api/dashboard/handlers.go
package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/Sideline/internal/api/apiutil"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
	"github.com/codr1/Sideline/internal/trainings"
)

const (
	dashboardQueryTimeout = 5 * time.Second
	dashboardDateLayout   = "2006-01-02"
	defaultRangeDays      = 30
	upcomingDays          = 14
	upcomingLimit         = 5
	dateRangeToday        = "today"
	dateRangeLast7Days    = "last_7_days"
	dateRangeLast30Days   = "last_30_days"
	dateRangeThisMonth    = "this_month"
	dateRangeThisYear     = "this_year"
	dateRangeCustom       = "custom"
)

var (
	queries   *dbgen.Queries
	collector *stats.Collector
	service   *trainings.Service
	now       = time.Now
)

// InitHandlers must be called during server startup before handling requests.
func InitHandlers(q *dbgen.Queries, c *stats.Collector, s *trainings.Service) {
	if q == nil || c == nil || s == nil {
		log.Warn().Msg("InitHandlers called with missing dependencies; dashboard handlers will be unavailable")
		return
	}
	queries = q
	collector = c
	service = s
}

type Dashboard struct {
	Team              dbgen.Team                   `json:"team"`
	DateRange         string                       `json:"date_range"`
	DateRangePreset   string                       `json:"date_range_preset"`
	StartDate         string                       `json:"start_date"`
	EndDate           string                       `json:"end_date"`
	Record            stats.Summary                `json:"record"`
	Results           []stats.MatchReport          `json:"results"`
	Attendance        []trainings.PlayerAttendance `json:"attendance"`
	UpcomingMatches   []dbgen.Match                `json:"upcoming_matches"`
	UpcomingTrainings []dbgen.Training             `json:"upcoming_trainings"`
}

// window is a half-open [Start, End) range of whole days.
type window struct {
	Start     time.Time
	End       time.Time
	Preset    string
	StartDate string
	EndDate   string
}

func (w window) label() string {
	return fmt.Sprintf("%s to %s", w.StartDate, w.EndDate)
}

// HandleTeamDashboard serves GET /api/v1/teams/{team_id}/dashboard.
func HandleTeamDashboard(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if queries == nil {
		logger.Error().Msg("Dashboard handlers not initialized")
		apiutil.WriteError(w, r, apiutil.Internal("Dashboard unavailable", nil))
		return
	}

	teamID, ok := apiutil.PathID(w, r, "team_id")
	if !ok {
		return
	}
	if _, ok := apiutil.RequireTeamAccess(w, r, teamID); !ok {
		return
	}

	win, err := parseDateRange(r, time.UTC)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), dashboardQueryTimeout)
	defer cancel()

	team, err := queries.GetTeam(ctx, teamID)
	if errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.NotFound("Team not found"))
		return
	}
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load team", err))
		return
	}

	data, err := buildDashboard(ctx, team, win)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load dashboard", err))
		return
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, data); err != nil {
		logger.Error().Err(err).Msg("Failed to write dashboard")
	}
}

func buildDashboard(ctx context.Context, team dbgen.Team, win window) (Dashboard, error) {
	data := Dashboard{
		Team:            team,
		DateRange:       win.label(),
		DateRangePreset: win.Preset,
		StartDate:       win.StartDate,
		EndDate:         win.EndDate,
	}

	current := now().UTC()
	horizon := current.AddDate(0, 0, upcomingDays)
	// The store treats both bounds as inclusive.
	last := win.End.Add(-time.Nanosecond)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		report, err := collector.TeamSummary(gctx, team.ID, win.Start, last)
		if err != nil {
			return fmt.Errorf("team summary: %w", err)
		}
		data.Record = report.Summary
		data.Results = report.Matches
		return nil
	})
	g.Go(func() error {
		attendance, err := service.TeamSummary(gctx, team.ID, win.Start, last)
		if err != nil {
			return fmt.Errorf("attendance summary: %w", err)
		}
		data.Attendance = attendance
		return nil
	})
	g.Go(func() error {
		upcoming, err := queries.ListMatchesByTeam(gctx, dbgen.ListMatchesByTeamParams{
			TeamID: team.ID,
			From:   current,
			To:     horizon,
		})
		if err != nil {
			return fmt.Errorf("upcoming matches: %w", err)
		}
		data.UpcomingMatches = soonest(upcoming)
		return nil
	})
	g.Go(func() error {
		upcoming, err := service.List(gctx, team.ID, current, horizon)
		if err != nil {
			return fmt.Errorf("upcoming trainings: %w", err)
		}
		data.UpcomingTrainings = soonest(upcoming)
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err
	}

	if data.Results == nil {
		data.Results = []stats.MatchReport{}
	}
	if data.Attendance == nil {
		data.Attendance = []trainings.PlayerAttendance{}
	}
	return data, nil
}

// soonest flips a newest-first listing and keeps the first upcomingLimit entries.
func soonest[T any](items []T) []T {
	out := slices.Clone(items)
	slices.Reverse(out)
	if len(out) > upcomingLimit {
		out = out[:upcomingLimit]
	}
	if out == nil {
		out = []T{}
	}
	return out
}

func parseDateRange(r *http.Request, loc *time.Location) (window, error) {
	query := r.URL.Query()
	rangeRaw := strings.TrimSpace(query.Get("date_range"))
	preset := strings.ToLower(rangeRaw)
	startRaw := strings.TrimSpace(query.Get("start_date"))
	endRaw := strings.TrimSpace(query.Get("end_date"))

	if rangeRaw != "" && strings.Contains(rangeRaw, "to") && !isKnownDateRangePreset(preset) {
		parts := strings.SplitN(rangeRaw, "to", 2)
		startRaw = strings.TrimSpace(parts[0])
		endRaw = strings.TrimSpace(parts[1])
		preset = ""
	}

	if preset != "" && preset != dateRangeCustom {
		startDate, endDate := presetDateRange(preset, loc)
		if startDate.IsZero() || endDate.IsZero() {
			return window{}, fmt.Errorf("invalid date_range")
		}
		return newWindow(startDate, endDate, preset), nil
	}

	if startRaw == "" && endRaw == "" {
		if preset == dateRangeCustom {
			return window{}, fmt.Errorf("start_date and end_date are required")
		}
		startDate, endDate := presetDateRange(dateRangeLast30Days, loc)
		return newWindow(startDate, endDate, dateRangeLast30Days), nil
	}

	if startRaw == "" || endRaw == "" {
		return window{}, fmt.Errorf("start_date and end_date are required")
	}

	startDate, err := time.ParseInLocation(dashboardDateLayout, startRaw, loc)
	if err != nil {
		return window{}, fmt.Errorf("start_date must be in YYYY-MM-DD format")
	}
	endDate, err := time.ParseInLocation(dashboardDateLayout, endRaw, loc)
	if err != nil {
		return window{}, fmt.Errorf("end_date must be in YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return window{}, fmt.Errorf("end_date must be after start_date")
	}
	return newWindow(startDate, endDate, dateRangeCustom), nil
}

func newWindow(startDate, endDate time.Time, preset string) window {
	return window{
		Start:     startDate,
		End:       endDate.AddDate(0, 0, 1),
		Preset:    preset,
		StartDate: startDate.Format(dashboardDateLayout),
		EndDate:   endDate.Format(dashboardDateLayout),
	}
}

func presetDateRange(preset string, loc *time.Location) (time.Time, time.Time) {
	current := now().In(loc)
	endDate := time.Date(current.Year(), current.Month(), current.Day(), 0, 0, 0, 0, loc)

	switch preset {
	case dateRangeToday:
		return endDate, endDate
	case dateRangeLast7Days:
		return endDate.AddDate(0, 0, -6), endDate
	case dateRangeLast30Days:
		return endDate.AddDate(0, 0, -(defaultRangeDays - 1)), endDate
	case dateRangeThisMonth:
		return time.Date(current.Year(), current.Month(), 1, 0, 0, 0, 0, loc), endDate
	case dateRangeThisYear:
		return time.Date(current.Year(), time.January, 1, 0, 0, 0, 0, loc), endDate
	default:
		return time.Time{}, time.Time{}
	}
}

func isKnownDateRangePreset(preset string) bool {
	switch preset {
	case dateRangeToday, dateRangeLast7Days, dateRangeLast30Days, dateRangeThisMonth, dateRangeThisYear, dateRangeCustom:
		return true
	default:
		return false
	}
}

// cmd/server/server.go
package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/codr1/Sideline/internal/api"
	"github.com/codr1/Sideline/internal/api/auth"
	"github.com/codr1/Sideline/internal/api/dashboard"
	"github.com/codr1/Sideline/internal/api/evaluations"
	"github.com/codr1/Sideline/internal/api/matches"
	"github.com/codr1/Sideline/internal/api/nav"
	"github.com/codr1/Sideline/internal/api/teams"
	"github.com/codr1/Sideline/internal/api/trainings"
	"github.com/codr1/Sideline/internal/config"
	"github.com/codr1/Sideline/internal/invites"
	"github.com/codr1/Sideline/internal/metrics"
)

func newServer(cfg *config.Config, a *app) *http.Server {
	return &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.App.Port),
		Handler:      newHandler(cfg, a),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func newHandler(cfg *config.Config, a *app) http.Handler {
	router := http.NewServeMux()

	// Register routes
	registerRoutes(router, cfg, a)

	// Setup middleware chain
	return api.ChainMiddleware(
		router,
		api.WithAuth,
		api.WithLogging(a.metrics),
		api.WithRecovery,
		api.WithRequestID,
	)
}

func registerRoutes(mux *http.ServeMux, cfg *config.Config, a *app) {
	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if a.registry != nil {
		mux.Handle("GET /metrics", metrics.NewMetricsHandler(a.registry))
	}

	// Auth routes
	mux.HandleFunc("POST /api/v1/auth/login", auth.HandleLogin)
	mux.HandleFunc("POST /api/v1/auth/logout", auth.HandleLogout)
	mux.HandleFunc("GET /api/v1/auth/me", auth.HandleMe)
	mux.HandleFunc("POST /api/v1/auth/recover", auth.HandleRecover)

	// Navigation routes
	mux.HandleFunc("GET /api/v1/nav/menu", nav.HandleMenu)
	mux.HandleFunc("GET /api/v1/nav/search", nav.HandleSearch)

	// Invite routes; the handler verifies its own bearer token and answers CORS preflight.
	inviteHandler := invites.NewHandler(a.invites, auth.Verifier{}, a.limiter, cfg.App.TrustProxy)
	mux.Handle("/api/v1/invites", inviteHandler)
	mux.HandleFunc("GET /api/v1/invites", inviteHandler.List)

	// Team routes
	mux.HandleFunc("GET /api/v1/teams", teams.HandleListTeams)
	mux.HandleFunc("POST /api/v1/teams", teams.HandleCreateTeam)
	mux.HandleFunc("GET /api/v1/teams/{team_id}", teams.HandleGetTeam)
	mux.HandleFunc("PUT /api/v1/teams/{team_id}", teams.HandleUpdateTeam)
	mux.HandleFunc("DELETE /api/v1/teams/{team_id}", teams.HandleDeleteTeam)
	mux.HandleFunc("GET /api/v1/teams/{team_id}/members", teams.HandleListMembers)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/members", teams.HandleAddMember)
	mux.HandleFunc("DELETE /api/v1/teams/{team_id}/members/{profile_id}", teams.HandleRemoveMember)

	// Player routes
	mux.HandleFunc("GET /api/v1/teams/{team_id}/players", teams.HandleListPlayers)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/players", teams.HandleCreatePlayer)
	mux.HandleFunc("GET /api/v1/players/{id}", teams.HandleGetPlayer)
	mux.HandleFunc("PUT /api/v1/players/{id}", teams.HandleUpdatePlayer)
	mux.HandleFunc("DELETE /api/v1/players/{id}", teams.HandleDeletePlayer)

	// Match routes
	mux.HandleFunc("GET /api/v1/teams/{team_id}/matches", matches.HandleListMatches)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/matches", matches.HandleCreateMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}", matches.HandleGetMatch)
	mux.HandleFunc("PUT /api/v1/matches/{id}", matches.HandleUpdateMatch)
	mux.HandleFunc("DELETE /api/v1/matches/{id}", matches.HandleDeleteMatch)
	mux.HandleFunc("GET /api/v1/matches/{id}/call-ups", matches.HandleListCallUps)
	mux.HandleFunc("PUT /api/v1/matches/{id}/call-ups", matches.HandleReplaceCallUps)
	mux.HandleFunc("POST /api/v1/matches/{id}/call-ups", matches.HandleAddCallUp)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/call-ups/{player_id}", matches.HandleRemoveCallUp)
	mux.HandleFunc("GET /api/v1/matches/{id}/periods", matches.HandlePeriodGrid)
	mux.HandleFunc("PUT /api/v1/matches/{id}/periods", matches.HandleRecordPeriods)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/periods/{player_id}/{period}", matches.HandleClearPeriod)
	mux.HandleFunc("POST /api/v1/matches/{id}/substitutions", matches.HandleApplySubstitution)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/substitutions/{substitution_id}", matches.HandleRemoveSubstitution)
	mux.HandleFunc("GET /api/v1/matches/{id}/validation", matches.HandleValidation)
	mux.HandleFunc("GET /api/v1/matches/{id}/quarters", matches.HandleListQuarters)
	mux.HandleFunc("PUT /api/v1/matches/{id}/quarters", matches.HandleRecordQuarter)
	mux.HandleFunc("POST /api/v1/matches/{id}/goals", matches.HandleRecordGoal)
	mux.HandleFunc("DELETE /api/v1/matches/{id}/goals/{goal_id}", matches.HandleDeleteGoal)

	// Stats routes
	mux.HandleFunc("GET /api/v1/teams/{team_id}/dashboard", dashboard.HandleTeamDashboard)
	mux.HandleFunc("GET /api/v1/teams/{team_id}/stats", matches.HandleTeamStats)
	mux.HandleFunc("GET /api/v1/players/{id}/stats", matches.HandlePlayerStats)

	// Training routes
	mux.HandleFunc("GET /api/v1/teams/{team_id}/trainings", trainings.HandleListTrainings)
	mux.HandleFunc("POST /api/v1/teams/{team_id}/trainings", trainings.HandleCreateTraining)
	mux.HandleFunc("GET /api/v1/teams/{team_id}/attendance", trainings.HandleAttendanceSummary)
	mux.HandleFunc("GET /api/v1/trainings/{id}", trainings.HandleGetTraining)
	mux.HandleFunc("PUT /api/v1/trainings/{id}", trainings.HandleUpdateTraining)
	mux.HandleFunc("DELETE /api/v1/trainings/{id}", trainings.HandleDeleteTraining)
	mux.HandleFunc("GET /api/v1/trainings/{id}/attendance", trainings.HandleGetAttendance)
	mux.HandleFunc("PUT /api/v1/trainings/{id}/attendance", trainings.HandleReplaceAttendance)

	// Evaluation routes
	mux.HandleFunc("GET /api/v1/evaluations", evaluations.HandleMyEvaluations)
	mux.HandleFunc("GET /api/v1/evaluations/rubric", evaluations.HandleRubric)
	mux.HandleFunc("GET /api/v1/evaluations/{id}", evaluations.HandleGetEvaluation)
	mux.HandleFunc("PUT /api/v1/evaluations/{id}", evaluations.HandleUpdateEvaluation)
	mux.HandleFunc("DELETE /api/v1/evaluations/{id}", evaluations.HandleDeleteEvaluation)
	mux.HandleFunc("GET /api/v1/players/{id}/evaluations", evaluations.HandleListEvaluations)
	mux.HandleFunc("POST /api/v1/players/{id}/evaluations", evaluations.HandleCreateEvaluation)
}

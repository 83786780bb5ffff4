// cmd/server/app.go
package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/auth"
	"github.com/codr1/Sideline/internal/api/dashboard"
	apievaluations "github.com/codr1/Sideline/internal/api/evaluations"
	apimatches "github.com/codr1/Sideline/internal/api/matches"
	"github.com/codr1/Sideline/internal/api/nav"
	"github.com/codr1/Sideline/internal/api/teams"
	apitrainings "github.com/codr1/Sideline/internal/api/trainings"
	"github.com/codr1/Sideline/internal/cognito"
	"github.com/codr1/Sideline/internal/config"
	"github.com/codr1/Sideline/internal/db"
	"github.com/codr1/Sideline/internal/email"
	"github.com/codr1/Sideline/internal/evaluations"
	"github.com/codr1/Sideline/internal/invites"
	"github.com/codr1/Sideline/internal/matches"
	"github.com/codr1/Sideline/internal/metrics"
	"github.com/codr1/Sideline/internal/notify"
	"github.com/codr1/Sideline/internal/ratelimit"
	"github.com/codr1/Sideline/internal/scheduler"
	"github.com/codr1/Sideline/internal/stats"
	"github.com/codr1/Sideline/internal/trainings"
)

// app holds the long-lived services shared by the HTTP handlers.
type app struct {
	db       *db.DB
	metrics  metrics.Metrics
	registry *prometheus.Registry
	limiter  *ratelimit.Limiter
	invites  *invites.Service
}

func newApp(cfg *config.Config) (*app, error) {
	database, err := db.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	a := &app{db: database, metrics: metrics.Nop{}}
	if cfg.Features.EnableMetrics {
		a.registry = prometheus.NewRegistry()
		a.metrics = metrics.NewService(a.registry)
	}

	limits := ratelimit.DefaultConfig()
	if cfg.Invites.MaxPerHour > 0 {
		limits.InviteMaxPerHour = cfg.Invites.MaxPerHour
	}
	if cfg.Auth.LoginMaxAttempts > 0 {
		limits.LoginMaxAttempts = cfg.Auth.LoginMaxAttempts
	}
	if lockout := cfg.LoginLockout(); lockout > 0 {
		limits.LoginLockout = lockout
	}
	a.limiter = ratelimit.New(limits)

	if err := a.wire(cfg); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(cfg *config.Config) error {
	var slack *notify.SlackNotifier
	if cfg.Slack.WebhookURL != "" {
		slack = notify.NewSlackNotifier(cfg.Slack.WebhookURL, a.metrics)
	}

	local := invites.NewLocalDirectory(a.db)
	var directory invites.Directory = local
	if cfg.Auth.CognitoPoolID != "" {
		pool, err := cognito.NewClient(cfg.Auth.CognitoPoolID)
		if err != nil {
			return fmt.Errorf("cognito client: %w", err)
		}
		directory = invites.NewPoolDirectory(local, pool)
	}

	inviteOpts := []invites.Option{invites.WithMetrics(a.metrics)}
	if slack != nil {
		inviteOpts = append(inviteOpts, invites.WithNotifier(slack))
	}
	if cfg.Email.Sender != "" {
		mailer, err := email.NewSESClient(cfg.Email.AccessKeyID, cfg.Email.SecretAccessKey, cfg.Email.Region, cfg.Email.Sender)
		if err != nil {
			return fmt.Errorf("ses client: %w", err)
		}
		inviteOpts = append(inviteOpts, invites.WithMailer(mailer))
	} else {
		log.Warn().Msg("No email sender configured; invite emails are disabled")
	}

	links := invites.NewTokenLinkIssuer(a.db, cfg.App.BaseURL, cfg.LinkTTL())
	inviteService, err := invites.NewService(a.db, directory, links, invites.Config{
		ClubName:        cfg.App.Name,
		BaseURL:         cfg.App.BaseURL,
		DefaultRedirect: cfg.Invites.DefaultRedirect,
		InviteTTL:       cfg.InviteTTL(),
	}, inviteOpts...)
	if err != nil {
		return fmt.Errorf("invite service: %w", err)
	}
	a.invites = inviteService

	if cfg.App.SecretKey == "" {
		log.Warn().Msg("APP_SECRET_KEY is not set; session tokens cannot be issued")
	}
	auth.InitHandlers(auth.Config{
		Queries:       a.db.Queries,
		SecretKey:     cfg.App.SecretKey,
		SessionTTL:    cfg.SessionTTL(),
		SecureCookies: !cfg.IsDevelopment(),
		LoginLimiter:  a.limiter,
		TrustProxy:    cfg.App.TrustProxy,
		Acceptor:      inviteService,
	})
	if cfg.Auth.ClerkSecretKey != "" {
		auth.InitClerk(cfg.Auth.ClerkSecretKey)
	}

	engineOpts := []matches.Option{matches.WithSubstitutionObserver(a.metrics)}
	if slack != nil {
		engineOpts = append(engineOpts, matches.WithScoreNotifier(slack))
	}
	engine, err := matches.NewEngine(a.db, cfg.MinimumPeriods(), engineOpts...)
	if err != nil {
		return fmt.Errorf("match engine: %w", err)
	}
	collector, err := stats.NewCollector(a.db.Queries)
	if err != nil {
		return fmt.Errorf("stats collector: %w", err)
	}
	trainingService, err := trainings.NewService(a.db)
	if err != nil {
		return fmt.Errorf("training service: %w", err)
	}
	evaluationService, err := evaluations.NewService(a.db)
	if err != nil {
		return fmt.Errorf("evaluation service: %w", err)
	}

	nav.InitHandlers(a.db.Queries)
	teams.InitHandlers(a.db.Queries)
	apimatches.InitHandlers(a.db.Queries, engine, collector)
	apitrainings.InitHandlers(trainingService)
	apievaluations.InitHandlers(a.db.Queries, evaluationService)
	dashboard.InitHandlers(a.db.Queries, collector, trainingService)
	return nil
}

// startJobs registers the periodic jobs on the shared scheduler.
func startJobs(cfg *config.Config, a *app) error {
	if err := scheduler.Init(); err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	if err := scheduler.RegisterInviteCleanupJob(a.invites, cfg.Invites.CleanupCron); err != nil {
		return err
	}
	return scheduler.Start()
}

func (a *app) Close() {
	if a.limiter != nil {
		a.limiter.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}
}

package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/invites"
)

const (
	inviteCleanupJobName = "invite_cleanup"
	inviteCleanupTimeout = 2 * time.Minute
)

// InviteCleaner expires stale invites and recovery tokens.
type InviteCleaner interface {
	Cleanup(ctx context.Context) (invites.CleanupResult, error)
}

// RegisterInviteCleanupJob schedules the invite cleanup on cronExpr.
func RegisterInviteCleanupJob(cleaner InviteCleaner, cronExpr string) error {
	if cleaner == nil {
		return fmt.Errorf("invite cleanup job requires a cleaner")
	}

	jobLogger := log.With().
		Str("component", "invite_cleanup_job").
		Str("job_name", inviteCleanupJobName).
		Str("cron", cronExpr).
		Logger()

	_, err := AddJob(inviteCleanupJobName, cronExpr, func(ctx context.Context) {
		runInviteCleanup(ctx, cleaner, &jobLogger)
	}, gocron.WithSingletonMode(gocron.LimitModeReschedule))
	if err != nil {
		return fmt.Errorf("add invite cleanup job: %w", err)
	}

	jobLogger.Info().Msg("Invite cleanup job registered")
	return nil
}

func runInviteCleanup(parent context.Context, cleaner InviteCleaner, logger *zerolog.Logger) {
	ctx, cancel := context.WithTimeout(parent, inviteCleanupTimeout)
	defer cancel()
	ctx = logger.WithContext(ctx)

	result, err := cleaner.Cleanup(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("Invite cleanup failed")
		return
	}
	if result.ExpiredInvites == 0 && result.DeletedTokens == 0 {
		logger.Debug().Msg("Invite cleanup found nothing to do")
		return
	}
	logger.Info().
		Int64("expired_invites", result.ExpiredInvites).
		Int64("deleted_tokens", result.DeletedTokens).
		Msg("Invite cleanup completed")
}

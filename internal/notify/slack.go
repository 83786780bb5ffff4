// Package notify posts club events to a Slack incoming webhook.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/metrics"
	"github.com/codr1/Sideline/internal/stats"
)

const postTimeout = 10 * time.Second

// webhookPoster matches slack.PostWebhookContext so tests can intercept posts.
type webhookPoster func(ctx context.Context, url string, msg *slack.WebhookMessage) error

type SlackNotifier struct {
	webhookURL string
	post       webhookPoster
	metrics    metrics.Metrics
}

func NewSlackNotifier(webhookURL string, m metrics.Metrics) *SlackNotifier {
	return newSlackNotifier(webhookURL, slack.PostWebhookContext, m)
}

func newSlackNotifier(webhookURL string, post webhookPoster, m metrics.Metrics) *SlackNotifier {
	if m == nil {
		m = metrics.Nop{}
	}
	return &SlackNotifier{webhookURL: webhookURL, post: post, metrics: m}
}

// NotifyScore posts the running score of a match after a quarter.
func (n *SlackNotifier) NotifyScore(ctx context.Context, match dbgen.Match, quarter int64, score stats.Score) error {
	venue := "away"
	if match.IsHome {
		venue = "home"
	}
	text := fmt.Sprintf("Q%d vs %s (%s): %d-%d", quarter, match.Opponent, venue, score.TeamGoals, score.OpponentGoals)
	return n.send(ctx, text)
}

// NotifyInvite announces that an invite was issued.
func (n *SlackNotifier) NotifyInvite(ctx context.Context, inviter, invitee, role string) error {
	return n.send(ctx, fmt.Sprintf("%s invited %s as %s", inviter, invitee, role))
}

func (n *SlackNotifier) send(ctx context.Context, text string) error {
	ctx, cancel := context.WithTimeout(ctx, postTimeout)
	defer cancel()

	if err := n.post(ctx, n.webhookURL, &slack.WebhookMessage{Text: text}); err != nil {
		n.metrics.IncSlackNotifFailed()
		log.Ctx(ctx).Error().Err(err).Msg("Failed to post Slack message")
		return fmt.Errorf("post slack webhook: %w", err)
	}
	n.metrics.IncSlackNotifSent()
	return nil
}

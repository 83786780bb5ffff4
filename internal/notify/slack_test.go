package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/stats"
)

type countingMetrics struct {
	sent, failed int
}

func (c *countingMetrics) ObserveHTTPRequest(string, int, time.Duration) {}
func (c *countingMetrics) IncInvite(string)                              {}
func (c *countingMetrics) ObserveSubstitution(string)                    {}
func (c *countingMetrics) IncSlackNotifSent()                            { c.sent++ }
func (c *countingMetrics) IncSlackNotifFailed()                          { c.failed++ }

func TestNotifyScore(t *testing.T) {
	var got *slack.WebhookMessage
	var gotURL string
	m := &countingMetrics{}
	n := newSlackNotifier("https://hooks.example/abc", func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
		gotURL = url
		got = msg
		return nil
	}, m)

	err := n.NotifyScore(context.Background(), dbgen.Match{Opponent: "Tigers", IsHome: true}, 2, stats.Score{TeamGoals: 3, OpponentGoals: 1})
	require.NoError(t, err)
	assert.Equal(t, "https://hooks.example/abc", gotURL)
	assert.Equal(t, "Q2 vs Tigers (home): 3-1", got.Text)
	assert.Equal(t, 1, m.sent)
}

func TestNotifyInviteFailure(t *testing.T) {
	m := &countingMetrics{}
	n := newSlackNotifier("https://hooks.example/abc", func(ctx context.Context, url string, msg *slack.WebhookMessage) error {
		return errors.New("webhook down")
	}, m)

	err := n.NotifyInvite(context.Background(), "admin@club.test", "coach@club.test", "coach")
	require.Error(t, err)
	assert.Equal(t, 1, m.failed)
}

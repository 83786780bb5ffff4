package invites

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const recoveryTokenBytes = 32

type Link struct {
	URL       string
	ExpiresAt time.Time
}

// LinkIssuer mints single-use recovery links for a profile.
type LinkIssuer interface {
	IssueLink(ctx context.Context, profileID int64, redirectTo string) (Link, error)
}

// TokenLinkIssuer stores the sha256 of a random token in recovery_tokens.
type TokenLinkIssuer struct {
	db      *db.DB
	baseURL string
	ttl     time.Duration
	now     func() time.Time
}

func NewTokenLinkIssuer(database *db.DB, baseURL string, ttl time.Duration) *TokenLinkIssuer {
	return &TokenLinkIssuer{
		db:      database,
		baseURL: strings.TrimRight(baseURL, "/"),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (i *TokenLinkIssuer) IssueLink(ctx context.Context, profileID int64, redirectTo string) (Link, error) {
	token, err := newRecoveryToken()
	if err != nil {
		return Link{}, fmt.Errorf("generate recovery token: %w", err)
	}

	expiresAt := i.now().UTC().Add(i.ttl)
	if err := i.db.Queries.CreateRecoveryToken(ctx, dbgen.CreateRecoveryTokenParams{
		TokenHash: HashToken(token),
		ProfileID: profileID,
		ExpiresAt: expiresAt,
	}); err != nil {
		return Link{}, fmt.Errorf("store recovery token: %w", err)
	}

	link := i.baseURL + "/auth/recover?token=" + url.QueryEscape(token)
	if redirectTo != "" {
		link += "&redirect_to=" + url.QueryEscape(redirectTo)
	}
	return Link{URL: link, ExpiresAt: expiresAt}, nil
}

// HashToken is the stored form of a recovery token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func newRecoveryToken() (string, error) {
	buf := make([]byte, recoveryTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

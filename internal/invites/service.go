// Package invites issues account invitations and redeems recovery links.
package invites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	"github.com/codr1/Sideline/internal/db"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/email"
	"github.com/codr1/Sideline/internal/metrics"
)

const (
	OutcomeSent     = "sent"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
	OutcomeLimited  = "rate_limited"
)

// Notifier announces issued invites.
type Notifier interface {
	NotifyInvite(ctx context.Context, inviter, invitee, role string) error
}

type Config struct {
	ClubName        string
	BaseURL         string
	DefaultRedirect string
	InviteTTL       time.Duration
}

// Request is the invite payload. A nil TeamIDs means the field was absent.
type Request struct {
	Email       string  `json:"email"`
	DisplayName string  `json:"display_name,omitempty"`
	Role        string  `json:"role"`
	TeamIDs     []int64 `json:"teamIds"`
	RedirectTo  string  `json:"redirectTo,omitempty"`
}

type Result struct {
	OK         bool   `json:"ok"`
	ActionLink string `json:"action_link"`
	Created    bool   `json:"created"`
}

type Service struct {
	db        *db.DB
	directory Directory
	links     LinkIssuer
	mailer    email.Sender
	notifier  Notifier
	metrics   metrics.Metrics
	cfg       Config
	now       func() time.Time
}

type Option func(*Service)

func WithMailer(sender email.Sender) Option {
	return func(s *Service) { s.mailer = sender }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m metrics.Metrics) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(database *db.DB, directory Directory, links LinkIssuer, cfg Config, opts ...Option) (*Service, error) {
	if database == nil {
		return nil, fmt.Errorf("invites: database is required")
	}
	if directory == nil || links == nil {
		return nil, fmt.Errorf("invites: directory and link issuer are required")
	}
	if cfg.InviteTTL <= 0 {
		return nil, fmt.Errorf("invites: invite ttl must be positive")
	}
	if cfg.DefaultRedirect == "" {
		cfg.DefaultRedirect = "/"
	}

	s := &Service{
		db:        database,
		directory: directory,
		links:     links,
		metrics:   metrics.Nop{},
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Service) logger(ctx context.Context) zerolog.Logger {
	return log.Ctx(ctx).With().Str("component", "invites").Logger()
}

func reject(status int, message string) error {
	return apiutil.HandlerError{Status: status, Message: message}
}

func fail(message string, err error) error {
	return apiutil.HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

// Invite runs the pipeline from the role check onward for an authenticated caller.
func (s *Service) Invite(ctx context.Context, caller *authz.AuthUser, req Request) (Result, error) {
	result, err := s.invite(ctx, caller, req)
	switch {
	case err == nil:
		s.metrics.IncInvite(OutcomeSent)
	case statusOf(err) >= http.StatusInternalServerError:
		s.metrics.IncInvite(OutcomeFailed)
	default:
		s.metrics.IncInvite(OutcomeRejected)
	}
	return result, err
}

func (s *Service) invite(ctx context.Context, caller *authz.AuthUser, req Request) (Result, error) {
	logger := s.logger(ctx)

	if err := s.authorize(ctx, caller); err != nil {
		return Result{}, err
	}

	address := strings.TrimSpace(req.Email)
	if address == "" || strings.TrimSpace(req.Role) == "" || req.TeamIDs == nil {
		return Result{}, reject(http.StatusBadRequest, "Missing required fields: email, role, teamIds")
	}

	role, ok := authz.ParseRole(req.Role)
	if !ok {
		return Result{}, reject(http.StatusBadRequest, fmt.Sprintf("Invalid role: %s", req.Role))
	}

	address, err := normalizeEmail(address)
	if err != nil {
		return Result{}, reject(http.StatusBadRequest, "Invalid email address")
	}

	teamIDs, err := s.checkTeams(ctx, role, req.TeamIDs)
	if err != nil {
		return Result{}, err
	}

	redirectTo, err := s.resolveRedirect(req.RedirectTo)
	if err != nil {
		return Result{}, reject(http.StatusBadRequest, "Invalid redirectTo")
	}

	displayName := strings.TrimSpace(req.DisplayName)

	account, found, err := s.directory.FindAccount(ctx, address)
	if err != nil {
		logger.Error().Err(err).Str("email", address).Msg("Failed to look up account")
		return Result{}, fail("Failed to look up user", err)
	}
	created := false
	if !found {
		account, err = s.directory.CreateAccount(ctx, address, displayName)
		if err != nil {
			logger.Error().Err(err).Str("email", address).Msg("Failed to create account")
			return Result{}, fail("Failed to create user", err)
		}
		created = true
	}

	link, err := s.links.IssueLink(ctx, account.ProfileID, redirectTo)
	if err != nil {
		logger.Error().Err(err).Int64("profile_id", account.ProfileID).Msg("Failed to generate recovery link")
		s.compensate(ctx, created, account)
		return Result{}, fail("Failed to generate recovery link", err)
	}

	encodedTeams, err := json.Marshal(teamIDs)
	if err != nil {
		s.compensate(ctx, created, account)
		return Result{}, fail("Failed to save invite", err)
	}
	invite, err := s.db.Queries.UpsertPendingInvite(ctx, dbgen.UpsertPendingInviteParams{
		Email:       address,
		DisplayName: displayName,
		Role:        string(role),
		TeamIds:     string(encodedTeams),
		RedirectTo:  redirectTo,
		InvitedBy:   nullInt64(caller.ID),
		ExpiresAt:   s.now().UTC().Add(s.cfg.InviteTTL),
	})
	if err != nil {
		logger.Error().Err(err).Str("email", address).Msg("Failed to upsert pending invite")
		s.compensate(ctx, created, account)
		return Result{}, fail("Failed to save invite", err)
	}

	logger.Info().
		Str("email", address).
		Str("role", string(role)).
		Int64("invited_by", caller.ID).
		Bool("created_account", created).
		Msg("Invite issued")

	s.announce(ctx, caller, invite, link, &logger)

	return Result{OK: true, ActionLink: link.URL, Created: created}, nil
}

func (s *Service) authorize(ctx context.Context, caller *authz.AuthUser) error {
	if caller == nil {
		return reject(http.StatusUnauthorized, "Invalid token")
	}
	if caller.Role != authz.RoleSuperAdmin {
		logger := s.logger(ctx)
		logger.Warn().Int64("caller_id", caller.ID).Str("role", string(caller.Role)).Msg("Invite refused for non super admin")
		return reject(http.StatusForbidden, "Only super admins can invite users")
	}
	return nil
}

// compensate removes an account this invite created when a later step failed.
func (s *Service) compensate(ctx context.Context, created bool, account Account) {
	if !created {
		return
	}
	logger := s.logger(ctx)
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.directory.DeleteAccount(cleanupCtx, account); err != nil {
		logger.Error().Err(err).Int64("profile_id", account.ProfileID).Msg("Failed to delete account after invite failure")
		return
	}
	logger.Warn().Int64("profile_id", account.ProfileID).Msg("Deleted account created by failed invite")
}

func (s *Service) announce(ctx context.Context, caller *authz.AuthUser, invite dbgen.PendingInvite, link Link, logger *zerolog.Logger) {
	if s.mailer != nil {
		msg := email.BuildInviteEmail(email.InviteDetails{
			ClubName:    s.cfg.ClubName,
			DisplayName: invite.DisplayName,
			Role:        invite.Role,
			InvitedBy:   callerName(caller),
			ActionLink:  link.URL,
			ExpiresAt:   link.ExpiresAt,
		})
		email.Deliver(ctx, s.mailer, invite.Email, msg, logger)
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyInvite(ctx, callerName(caller), invite.Email, invite.Role); err != nil {
			logger.Warn().Err(err).Msg("Failed to announce invite")
		}
	}
}

func (s *Service) checkTeams(ctx context.Context, role authz.Role, ids []int64) ([]int64, error) {
	teamIDs := make([]int64, 0, len(ids))
	for _, id := range ids {
		if slices.Contains(teamIDs, id) {
			continue
		}
		teamIDs = append(teamIDs, id)
	}
	if len(teamIDs) == 0 && role.RequiresTeams() {
		return nil, reject(http.StatusBadRequest, "At least one team is required for coach and player invites")
	}

	for _, id := range teamIDs {
		if id <= 0 {
			return nil, reject(http.StatusBadRequest, fmt.Sprintf("Invalid team ID: %d", id))
		}
		exists, err := s.db.Queries.TeamExists(ctx, id)
		if err != nil {
			return nil, fail("Failed to verify teams", err)
		}
		if !exists {
			return nil, reject(http.StatusBadRequest, fmt.Sprintf("Invalid team ID: %d", id))
		}
	}
	return teamIDs, nil
}

// resolveRedirect accepts a local path or an absolute URL on the configured host.
func (s *Service) resolveRedirect(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.cfg.DefaultRedirect, nil
	}

	target, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if target.IsAbs() {
		base, err := url.Parse(s.cfg.BaseURL)
		if err != nil || base.Host == "" {
			return "", errors.New("absolute redirect without base url")
		}
		if target.Scheme != "http" && target.Scheme != "https" {
			return "", errors.New("unsupported redirect scheme")
		}
		if !strings.EqualFold(target.Host, base.Host) {
			return "", errors.New("redirect host mismatch")
		}
		return target.String(), nil
	}
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || target.Host != "" {
		return "", errors.New("redirect must be a local path")
	}
	return raw, nil
}

// ListInvites returns invites with the given status, newest first.
func (s *Service) ListInvites(ctx context.Context, status string) ([]dbgen.PendingInvite, error) {
	switch status {
	case "":
		status = "pending"
	case "pending", "accepted", "expired":
	default:
		return nil, reject(http.StatusBadRequest, "Invalid status")
	}
	invites, err := s.db.Queries.ListPendingInvites(ctx, status)
	if err != nil {
		return nil, fail("Failed to list invites", err)
	}
	return invites, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", err
	}
	if addr.Address != raw || addr.Name != "" {
		return "", errors.New("email must be a bare address")
	}
	at := strings.LastIndex(raw, "@")
	if at <= 0 || !strings.Contains(raw[at+1:], ".") {
		return "", errors.New("email domain must be qualified")
	}
	return strings.ToLower(raw), nil
}

func callerName(caller *authz.AuthUser) string {
	if caller == nil {
		return ""
	}
	if name := strings.TrimSpace(caller.DisplayName); name != "" {
		return name
	}
	return caller.Email
}

func statusOf(err error) int {
	var herr apiutil.HandlerError
	if errors.As(err, &herr) {
		return herr.Status
	}
	return http.StatusInternalServerError
}

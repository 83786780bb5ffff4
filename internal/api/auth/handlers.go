package auth

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	"github.com/codr1/Sideline/internal/api/nav"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
	"github.com/codr1/Sideline/internal/invites"
	"github.com/codr1/Sideline/internal/ratelimit"
)

var (
	queries       *dbgen.Queries
	secretKey     []byte
	sessionTTL    = defaultSessionTTL
	secureCookies = true
	now           = time.Now

	limiter      = rate.NewLimiter(rate.Limit(100), 10)
	loginLimiter *ratelimit.Limiter
	trustProxy   bool
	acceptor     Acceptor
)

// Acceptor redeems recovery links.
type Acceptor interface {
	Accept(ctx context.Context, token, password string) (invites.Acceptance, error)
}

type Config struct {
	Queries       *dbgen.Queries
	SecretKey     string
	SessionTTL    time.Duration
	SecureCookies bool
	LoginLimiter  *ratelimit.Limiter
	TrustProxy    bool
	Acceptor      Acceptor
}

func InitHandlers(cfg Config) {
	queries = cfg.Queries
	secretKey = []byte(cfg.SecretKey)
	sessionTTL = cfg.SessionTTL
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	secureCookies = cfg.SecureCookies
	loginLimiter = cfg.LoginLimiter
	trustProxy = cfg.TrustProxy
	acceptor = cfg.Acceptor
	limiter = rate.NewLimiter(rate.Limit(100), 10) // More restrictive for auth
}

type userView struct {
	ID          int64      `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"display_name"`
	Role        string     `json:"role"`
	TeamIDs     []int64    `json:"team_ids"`
	SessionType string     `json:"session_type,omitempty"`
	Nav         []nav.Item `json:"nav,omitempty"`
}

func viewOf(user *authz.AuthUser) userView {
	return userView{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(user.Role),
		TeamIDs:     user.TeamIDs,
		SessionType: user.SessionType,
	}
}

type sessionResponse struct {
	Token          string    `json:"token"`
	ExpiresAt      time.Time `json:"expires_at"`
	User           userView  `json:"user"`
	RedirectTo     string    `json:"redirect_to,omitempty"`
	InviteAccepted bool      `json:"invite_accepted,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func HandleLogin(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	if !limiter.Allow() {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: "Too many requests"})
		return
	}

	var req loginRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}
	identifier := strings.ToLower(strings.TrimSpace(req.Email))
	if identifier == "" || req.Password == "" {
		apiutil.WriteError(w, r, apiutil.BadRequest("Email and password are required"))
		return
	}

	ip := ratelimit.GetClientIP(r, trustProxy)
	if loginLimiter != nil {
		if result := loginLimiter.CheckLogin(identifier, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("login", identifier, ip, result.Reason)
			w.Header().Set("Retry-After", retryAfter(result.RetryAfter))
			apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: "Too many login attempts, try again later"})
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	profile, err := queries.GetProfileByEmail(ctx, identifier)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to sign in", err))
		return
	}
	if err != nil || !profile.PasswordHash.Valid || !VerifyPassword(profile.PasswordHash.String, req.Password) {
		if loginLimiter != nil && loginLimiter.RecordLoginFailure(identifier, ip) {
			logger.Warn().Str("identifier", ratelimit.SanitizeIdentifier(identifier)).Msg("Login locked out after repeated failures")
		}
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusUnauthorized, Message: "Invalid email or password"})
		return
	}
	if loginLimiter != nil {
		loginLimiter.ResetLogin(identifier)
	}
	if NeedsRehash(profile.PasswordHash.String) {
		upgradePasswordHash(ctx, profile.ID, req.Password)
	}

	writeSession(w, r, profile.ID, SessionTypePassword, "", false)
}

// upgradePasswordHash re-hashes a verified password at the current cost. A
// failure only means the upgrade is retried on the next login.
func upgradePasswordHash(ctx context.Context, profileID int64, password string) {
	logger := log.Ctx(ctx).With().Int64("profile_id", profileID).Logger()
	hash, err := HashPassword(password)
	if err != nil {
		logger.Warn().Err(err).Msg("Failed to re-hash password")
		return
	}
	if err := queries.UpdateProfilePassword(ctx, dbgen.UpdateProfilePasswordParams{
		PasswordHash: sql.NullString{String: hash, Valid: true},
		ID:           profileID,
	}); err != nil {
		logger.Warn().Err(err).Msg("Failed to store upgraded password hash")
		return
	}
	logger.Info().Msg("Password hash upgraded")
}

func HandleLogout(w http.ResponseWriter, r *http.Request) {
	ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := apiutil.RequireRole(w, r, authz.Roles...)
	if !ok {
		return
	}
	view := viewOf(user)
	view.Nav = nav.MenuFor(user.Role)
	if err := apiutil.WriteJSON(w, http.StatusOK, view); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write profile")
	}
}

type recoverRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

// HandleRecover redeems a recovery link and signs the caller in.
func HandleRecover(w http.ResponseWriter, r *http.Request) {
	if !limiter.Allow() {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusTooManyRequests, Message: "Too many requests"})
		return
	}
	if acceptor == nil {
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusServiceUnavailable, Message: "Recovery not available"})
		return
	}

	var req recoverRequest
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		apiutil.WriteError(w, r, apiutil.BadRequest("Invalid JSON body"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	accepted, err := acceptor.Accept(ctx, req.Token, req.Password)
	switch {
	case err == nil:
	case errors.Is(err, invites.ErrWeakPassword):
		apiutil.WriteError(w, r, apiutil.FieldError{Field: "password", Reason: err.Error()})
		return
	case errors.Is(err, invites.ErrInvalidToken), errors.Is(err, invites.ErrTokenUsed), errors.Is(err, invites.ErrTokenExpired):
		apiutil.WriteError(w, r, apiutil.HandlerError{Status: http.StatusBadRequest, Message: "Recovery link is invalid or has expired", Err: err})
		return
	default:
		apiutil.WriteError(w, r, apiutil.Internal("Failed to redeem recovery link", err))
		return
	}

	writeSession(w, r, accepted.Profile.ID, SessionTypeRecovery, accepted.RedirectTo, accepted.InviteAccepted)
}

func writeSession(w http.ResponseWriter, r *http.Request, profileID int64, sessionType, redirectTo string, inviteAccepted bool) {
	logger := log.Ctx(r.Context())

	token, expiresAt, err := IssueToken(profileID, sessionType)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to create session", err))
		return
	}
	user, err := loadUser(r.Context(), profileID, sessionType)
	if err != nil {
		apiutil.WriteError(w, r, apiutil.Internal("Failed to load profile", err))
		return
	}

	SetSessionCookie(w, token, expiresAt)
	logger.Info().Int64("profile_id", profileID).Str("session_type", sessionType).Msg("Session issued")

	if err := apiutil.WriteJSON(w, http.StatusOK, sessionResponse{
		Token:          token,
		ExpiresAt:      expiresAt,
		User:           viewOf(user),
		RedirectTo:     redirectTo,
		InviteAccepted: inviteAccepted,
	}); err != nil {
		logger.Error().Err(err).Msg("Failed to write session response")
	}
}

func retryAfter(d time.Duration) string {
	return strconv.Itoa(int(d.Seconds()) + 1)
}

package auth

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codr1/Sideline/internal/api/authz"
	dbgen "github.com/codr1/Sideline/internal/db/generated"
)

const (
	sessionCookieName     = "sideline_session"
	defaultSessionTTL     = 8 * time.Hour
	SessionTypePassword   = "password"
	SessionTypeRecovery   = "recovery"
	SessionTypeClerk      = "clerk"
	sessionLookupDuration = 5 * time.Second
)

var (
	errAuthConfigMissing = errors.New("auth configuration missing")
	ErrInvalidSession    = errors.New("invalid session")
	ErrSessionExpired    = errors.New("session expired")
)

type authSession struct {
	ProfileID   int64  `json:"profile_id"`
	SessionType string `json:"session_type"`
	ExpiresAt   int64  `json:"exp"`
}

// IssueToken signs a session for profileID. The token is
// base64url(payload) + "." + base64url(hmac-sha256(payload)).
func IssueToken(profileID int64, sessionType string) (string, time.Time, error) {
	if profileID <= 0 {
		return "", time.Time{}, errors.New("session requires a profile")
	}
	expiresAt := now().Add(sessionTTL).Truncate(time.Second)
	payload, err := json.Marshal(authSession{
		ProfileID:   profileID,
		SessionType: normalizeSessionType(sessionType),
		ExpiresAt:   expiresAt.Unix(),
	})
	if err != nil {
		return "", time.Time{}, err
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payload)
	signature, err := signPayload(encodedPayload)
	if err != nil {
		return "", time.Time{}, err
	}
	return encodedPayload + "." + signature, expiresAt, nil
}

func parseToken(token string) (*authSession, error) {
	encodedPayload, signature, ok := strings.Cut(token, ".")
	if !ok || encodedPayload == "" || signature == "" {
		return nil, ErrInvalidSession
	}

	expectedSignature, err := signPayload(encodedPayload)
	if err != nil {
		return nil, err
	}
	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		return nil, fmt.Errorf("%w: bad signature", ErrInvalidSession)
	}

	payload, err := base64.RawURLEncoding.DecodeString(encodedPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	var session authSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}
	if session.ProfileID <= 0 {
		return nil, ErrInvalidSession
	}
	if session.ExpiresAt <= now().Unix() {
		return nil, ErrSessionExpired
	}
	session.SessionType = normalizeSessionType(session.SessionType)
	return &session, nil
}

// ResolveToken verifies a signed session or, when Clerk is configured, a
// Clerk session JWT, and loads the caller's profile and teams.
func ResolveToken(ctx context.Context, token string) (*authz.AuthUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidSession
	}

	session, err := parseToken(token)
	if err == nil {
		return loadUser(ctx, session.ProfileID, session.SessionType)
	}
	if clerkInitialized && looksLikeJWT(token) {
		profile, clerkErr := verifyClerkToken(ctx, token)
		if clerkErr != nil {
			return nil, clerkErr
		}
		return loadUser(ctx, profile.ID, SessionTypeClerk)
	}
	return nil, err
}

// Verifier adapts ResolveToken for callers that take a token verifier.
type Verifier struct{}

func (Verifier) VerifyToken(ctx context.Context, token string) (*authz.AuthUser, error) {
	return ResolveToken(ctx, token)
}

func loadUser(ctx context.Context, profileID int64, sessionType string) (*authz.AuthUser, error) {
	if queries == nil {
		return nil, errAuthConfigMissing
	}

	ctx, cancel := context.WithTimeout(ctx, sessionLookupDuration)
	defer cancel()

	profile, err := queries.GetProfileByID(ctx, profileID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: profile %d not found", ErrInvalidSession, profileID)
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	teamIDs, err := queries.ListTeamIDsForProfile(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("load teams: %w", err)
	}
	return userFromProfile(profile, teamIDs, sessionType), nil
}

func userFromProfile(profile dbgen.Profile, teamIDs []int64, sessionType string) *authz.AuthUser {
	role, ok := authz.ParseRole(profile.Role)
	if !ok {
		role = authz.RolePlayer
	}
	if teamIDs == nil {
		teamIDs = []int64{}
	}
	return &authz.AuthUser{
		ID:          profile.ID,
		Email:       profile.Email,
		DisplayName: profile.DisplayName,
		Role:        role,
		TeamIDs:     teamIDs,
		SessionType: sessionType,
	}
}

// TokenFromRequest reads a Bearer token, falling back to the session cookie.
func TokenFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	if header := strings.TrimSpace(r.Header.Get("Authorization")); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		return cookie.Value
	}
	if clerkInitialized {
		if cookie, err := r.Cookie(clerkCookieName); err == nil {
			return cookie.Value
		}
	}
	return ""
}

// UserFromRequest returns nil without error when the request carries no credentials.
func UserFromRequest(r *http.Request) (*authz.AuthUser, error) {
	token := TokenFromRequest(r)
	if token == "" {
		return nil, nil
	}
	return ResolveToken(r.Context(), token)
}

func SetSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
	})
}

func ClearSessionCookie(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func normalizeSessionType(sessionType string) string {
	switch sessionType {
	case SessionTypePassword, SessionTypeRecovery, SessionTypeClerk:
		return sessionType
	default:
		return SessionTypePassword
	}
}

func signPayload(payload string) (string, error) {
	if len(secretKey) == 0 {
		return "", errAuthConfigMissing
	}

	mac := hmac.New(sha256.New, secretKey)
	_, _ = mac.Write([]byte(payload))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil)), nil
}

func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}

package invites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/apiutil"
	"github.com/codr1/Sideline/internal/api/authz"
	"github.com/codr1/Sideline/internal/ratelimit"
)

const inviteTimeout = 15 * time.Second

// TokenVerifier resolves a bearer token to the calling user.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*authz.AuthUser, error)
}

// Handler serves POST /api/v1/invites.
type Handler struct {
	service    *Service
	verifier   TokenVerifier
	limiter    *ratelimit.Limiter
	trustProxy bool
}

func NewHandler(service *Service, verifier TokenVerifier, limiter *ratelimit.Limiter, trustProxy bool) *Handler {
	return &Handler{service: service, verifier: verifier, limiter: limiter, trustProxy: trustProxy}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())

	setCORSHeaders(w)
	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeFailure(w, r, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		writeFailure(w, r, http.StatusUnauthorized, "Missing authorization header")
		return
	}
	token, ok := bearerToken(header)
	if !ok {
		writeFailure(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), inviteTimeout)
	defer cancel()

	caller, err := h.verifier.VerifyToken(ctx, token)
	if err != nil || caller == nil {
		logger.Warn().Err(err).Msg("Invite token verification failed")
		writeFailure(w, r, http.StatusUnauthorized, "Invalid token")
		return
	}

	if err := h.service.authorize(ctx, caller); err != nil {
		h.service.metrics.IncInvite(OutcomeRejected)
		writeFailure(w, r, statusOf(err), err.Error())
		return
	}

	ip := ratelimit.GetClientIP(r, h.trustProxy)
	callerKey := fmt.Sprintf("%d", caller.ID)
	if h.limiter != nil {
		if result := h.limiter.CheckInvite(callerKey, ip); !result.Allowed {
			ratelimit.LogRateLimitExceeded("invite", callerKey, ip, result.Reason)
			h.service.metrics.IncInvite(OutcomeLimited)
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(result.RetryAfter.Seconds())+1))
			writeFailure(w, r, http.StatusTooManyRequests, "Too many invites, try again later")
			return
		}
	}

	var req Request
	if err := apiutil.DecodeJSON(r, &req); err != nil {
		writeFailure(w, r, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.service.Invite(ctx, caller, req)
	if err != nil {
		var herr apiutil.HandlerError
		if errors.As(err, &herr) {
			if herr.Err != nil {
				logger.Error().Err(herr.Err).Msg(herr.Message)
			}
			writeFailure(w, r, herr.Status, herr.Message)
			return
		}
		logger.Error().Err(err).Msg("Failed to process invite")
		writeFailure(w, r, http.StatusInternalServerError, "Failed to process invite")
		return
	}
	if h.limiter != nil {
		h.limiter.RecordInvite(callerKey, ip)
	}

	if err := apiutil.WriteJSON(w, http.StatusOK, result); err != nil {
		logger.Error().Err(err).Msg("Failed to write invite response")
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "authorization, content-type")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
}

type failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

func writeFailure(w http.ResponseWriter, r *http.Request, status int, message string) {
	if err := apiutil.WriteJSON(w, status, failure{OK: false, Error: message}); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write invite error")
	}
}

// List serves GET /api/v1/invites for admins behind WithAuth.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := log.Ctx(r.Context())
	if _, err := authz.RequireRole(r.Context(), authz.RoleSuperAdmin, authz.RoleAdmin); err != nil {
		apiutil.WriteAuthzError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	invites, err := h.service.ListInvites(ctx, strings.TrimSpace(r.URL.Query().Get("status")))
	if err != nil {
		apiutil.WriteError(w, r, err)
		return
	}

	type inviteView struct {
		Email       string    `json:"email"`
		DisplayName string    `json:"display_name"`
		Role        string    `json:"role"`
		TeamIDs     []int64   `json:"team_ids"`
		Status      string    `json:"status"`
		ExpiresAt   time.Time `json:"expires_at"`
		UpdatedAt   time.Time `json:"updated_at"`
	}
	views := make([]inviteView, 0, len(invites))
	for _, invite := range invites {
		var teamIDs []int64
		if err := json.Unmarshal([]byte(invite.TeamIds), &teamIDs); err != nil {
			logger.Warn().Err(err).Str("email", invite.Email).Msg("Invite has malformed team list")
		}
		if teamIDs == nil {
			teamIDs = []int64{}
		}
		views = append(views, inviteView{
			Email:       invite.Email,
			DisplayName: invite.DisplayName,
			Role:        invite.Role,
			TeamIDs:     teamIDs,
			Status:      invite.Status,
			ExpiresAt:   invite.ExpiresAt,
			UpdatedAt:   invite.UpdatedAt,
		})
	}
	if err := apiutil.WriteJSON(w, http.StatusOK, map[string]any{"invites": views}); err != nil {
		logger.Error().Err(err).Msg("Failed to write invites response")
	}
}

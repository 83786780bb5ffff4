package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/codr1/Sideline/internal/api/authz"
)

type FieldError struct {
	Field  string
	Reason string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Reason)
}

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func BadRequest(message string) HandlerError {
	return HandlerError{Status: http.StatusBadRequest, Message: message}
}

func NotFound(message string) HandlerError {
	return HandlerError{Status: http.StatusNotFound, Message: message}
}

func Conflict(message string, err error) HandlerError {
	return HandlerError{Status: http.StatusConflict, Message: message, Err: err}
}

func Internal(message string, err error) HandlerError {
	return HandlerError{Status: http.StatusInternalServerError, Message: message, Err: err}
}

func DecodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return fmt.Errorf("missing request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return err
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

type errorBody struct {
	Error  string `json:"error"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// WriteError renders err as a JSON error body. HandlerError, FieldError and
// authz sentinels map to their statuses; anything else is a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())

	var herr HandlerError
	var ferr FieldError
	switch {
	case errors.As(err, &herr):
		event := logger.Warn()
		if herr.Status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(herr.Err).Int("status", herr.Status).Msg(herr.Message)
		writeErrorBody(w, r, herr.Status, errorBody{Error: herr.Message})
	case errors.As(err, &ferr):
		writeErrorBody(w, r, http.StatusBadRequest, errorBody{Error: ferr.Error(), Field: ferr.Field, Reason: ferr.Reason})
	case errors.Is(err, authz.ErrUnauthenticated), errors.Is(err, authz.ErrForbidden):
		WriteAuthzError(w, r, err)
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeErrorBody(w, r, http.StatusInternalServerError, errorBody{Error: "Internal Server Error"})
	}
}

func WriteAuthzError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.Ctx(r.Context())
	user := authz.UserFromContext(r.Context())

	switch {
	case errors.Is(err, authz.ErrUnauthenticated):
		logger.Warn().Msg("Access denied: unauthenticated")
		writeErrorBody(w, r, http.StatusUnauthorized, errorBody{Error: "Unauthorized"})
	case errors.Is(err, authz.ErrForbidden):
		logEvent := logger.Warn()
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID).Str("role", string(user.Role))
		}
		logEvent.Msg("Access denied: forbidden")
		writeErrorBody(w, r, http.StatusForbidden, errorBody{Error: "Forbidden"})
	default:
		logEvent := logger.Error().Err(err)
		if user != nil {
			logEvent = logEvent.Int64("user_id", user.ID)
		}
		logEvent.Msg("Access denied: error")
		writeErrorBody(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to authorize request"})
	}
}

func writeErrorBody(w http.ResponseWriter, r *http.Request, status int, body errorBody) {
	if err := WriteJSON(w, status, body); err != nil {
		log.Ctx(r.Context()).Error().Err(err).Msg("Failed to write error response")
	}
}

// RequireTeamAccess writes the authz failure and returns false when the caller cannot read teamID.
func RequireTeamAccess(w http.ResponseWriter, r *http.Request, teamID int64) (*authz.AuthUser, bool) {
	user, err := authz.RequireTeamAccess(r.Context(), teamID)
	if err != nil {
		WriteAuthzError(w, r, err)
		return nil, false
	}
	return user, true
}

// RequireTeamStaff is RequireTeamAccess for coach and admin writes.
func RequireTeamStaff(w http.ResponseWriter, r *http.Request, teamID int64) (*authz.AuthUser, bool) {
	user, err := authz.RequireTeamStaff(r.Context(), teamID)
	if err != nil {
		WriteAuthzError(w, r, err)
		return nil, false
	}
	return user, true
}

func RequireRole(w http.ResponseWriter, r *http.Request, roles ...authz.Role) (*authz.AuthUser, bool) {
	user, err := authz.RequireRole(r.Context(), roles...)
	if err != nil {
		WriteAuthzError(w, r, err)
		return nil, false
	}
	return user, true
}

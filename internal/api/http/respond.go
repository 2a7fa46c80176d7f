package http

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/assist"
	auth "github.com/mind-engage/mindengage-tasks/internal/auth/middleware"
	"github.com/mind-engage/mindengage-tasks/internal/genai"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Msg    string              `json:"msg"`
	Error  string              `json:"error,omitempty"`
	Fields []apperr.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError answers with the status apperr assigns to err. fallback is
// the message for server-side failures.
func writeError(w http.ResponseWriter, err error, fallback string) {
	code := apperr.Status(err)
	body := errorBody{Msg: message(err, fallback)}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		body.Fields = ve.Fields
	}
	if code >= http.StatusInternalServerError {
		log.Printf("http: %s: %v", body.Msg, err)
		body.Error = err.Error()
	}
	writeJSON(w, code, body)
}

func message(err error, fallback string) string {
	var ve *apperr.ValidationError
	var ce *apperr.CollaboratorError
	switch {
	case errors.As(err, &ve):
		return ve.Msg
	case errors.Is(err, account.ErrUsernameTaken):
		return "Username already exists"
	case errors.Is(err, account.ErrRollNoTaken):
		return "Roll number already exists"
	case errors.Is(err, apperr.ErrConflict):
		return "Already exists"
	case errors.Is(err, apperr.ErrInvalidCredentials):
		return "Invalid credentials"
	case errors.Is(err, assist.ErrTestInProgress):
		return "AI assistance disabled during tests"
	case errors.Is(err, apperr.ErrForbidden):
		return "Access denied"
	case errors.Is(err, apperr.ErrUnauthorized):
		return "Token is not valid"
	case errors.Is(err, apperr.ErrNotFound):
		return "Not found"
	case errors.Is(err, assist.ErrNoContent):
		return "No content returned from Gemini AI"
	case errors.Is(err, genai.ErrNotConfigured):
		return "Server configuration error: Missing Gemini API key"
	case errors.As(err, &ce) && ce.Op == "upload pdf":
		return "Failed to upload PDF"
	}
	return fallback
}

// decodeJSON reads a JSON body into dst. Malformed bodies are validation
// errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return apperr.NewValidationError("Invalid request body", apperr.FieldError{Message: err.Error()})
	}
	return nil
}

// principal returns the caller set by the auth middleware.
func principal(r *http.Request) account.Principal {
	p, _ := auth.PrincipalFromContext(r.Context())
	return p
}

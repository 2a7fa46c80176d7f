package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-tasks/internal/account"
)

// POST /api/auth/register
func RegisterHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in account.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, err, "Server error")
			return
		}
		res, err := svc.Register(r.Context(), in)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /api/auth/login
func LoginHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err, "Server error")
			return
		}
		res, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /api/auth/me
func MeHandler(svc *account.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		prof, err := svc.Me(r.Context(), principal(r))
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, prof)
	}
}

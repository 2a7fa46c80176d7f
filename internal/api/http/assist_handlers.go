package http

import (
	"net/http"

	"github.com/mind-engage/mindengage-tasks/internal/assist"
)

// POST /api/assignments/ai-assist
func AIAssistHandler(svc *assist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in assist.AssistInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, err, "Server error")
			return
		}
		res, err := svc.Assist(r.Context(), principal(r), in)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /api/assignments/ai-generate
func AIGenerateHandler(svc *assist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in assist.GenerateInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, err, "Prompt must be a string with at least 10 characters")
			return
		}
		res, err := svc.GenerateQuiz(r.Context(), principal(r), in)
		if err != nil {
			writeError(w, err, "Failed to generate quiz questions")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// POST /api/gradus/ask
func GradusAskHandler(svc *assist.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in assist.AskInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, err, "Server error")
			return
		}
		res, err := svc.Ask(r.Context(), principal(r), in)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

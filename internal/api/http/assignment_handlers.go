package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mindengage-tasks/internal/apperr"
	"github.com/mind-engage/mindengage-tasks/internal/assignment"
	"github.com/mind-engage/mindengage-tasks/internal/grading"
)

// POST /api/assignments/create
//
// Accepts multipart/form-data with an optional "pdf" file, or a JSON body.
func CreateAssignmentHandler(svc *assignment.Service, maxUpload int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in assignment.CreateInput
		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
			r.Body = http.MaxBytesReader(w, r.Body, maxUpload+maxJSONBody)
			if err := r.ParseMultipartForm(maxUpload); err != nil {
				writeError(w, apperr.NewValidationError("Invalid form data",
					apperr.FieldError{Field: "pdf", Message: err.Error()}), "Server error")
				return
			}
			defer r.MultipartForm.RemoveAll()
			var err error
			if in, err = assignment.ParseForm(r.FormValue); err != nil {
				writeError(w, err, "Server error")
				return
			}
			f, hdr, err := r.FormFile("pdf")
			switch {
			case err == nil:
				defer f.Close()
				in.Attachment = &assignment.Attachment{Filename: hdr.Filename, Body: f}
			case !errors.Is(err, http.ErrMissingFile):
				writeError(w, apperr.NewValidationError("Invalid pdf upload",
					apperr.FieldError{Field: "pdf", Message: err.Error()}), "Server error")
				return
			}
		} else if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, err, "Server error")
			return
		}

		a, err := svc.Create(r.Context(), principal(r), in)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// GET /api/assignments/teacher
func ListTeacherAssignmentsHandler(svc *assignment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := svc.ListForTeacher(r.Context(), principal(r))
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, as)
	}
}

// GET /api/assignments/student
func ListStudentAssignmentsHandler(svc *assignment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		as, err := svc.ListForStudent(r.Context(), principal(r))
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, as)
	}
}

// GET /api/assignments/{id}
func GetAssignmentHandler(svc *assignment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, err := svc.Get(r.Context(), principal(r), chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

// PUT /api/assignments/submit/{id}  { "answers": {"0": "Paris"} }
func SubmitAssignmentHandler(svc *assignment.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers grading.Answers `json:"answers"`
		}
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err, "Server error")
			return
		}
		res, err := svc.Submit(r.Context(), principal(r), chi.URLParam(r, "id"), req.Answers)
		if err != nil {
			writeError(w, err, "Server error")
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

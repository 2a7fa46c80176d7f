package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mind-engage/mindengage-tasks/internal/account"
	"github.com/mind-engage/mindengage-tasks/internal/assignment"
	"github.com/mind-engage/mindengage-tasks/internal/assist"
	auth "github.com/mind-engage/mindengage-tasks/internal/auth/middleware"
	"github.com/mind-engage/mindengage-tasks/internal/rbac"
	"github.com/mind-engage/mindengage-tasks/internal/storage"
)

type Deps struct {
	Auth        *auth.AuthService
	AccountSvc  *account.Service
	Accounts    account.Store
	Assignments *assignment.Service
	Assist      *assist.Service

	Files       storage.BlobStore // served under /files; nil when blobs live elsewhere
	MaxUpload   int64             // bytes
	CORSOrigins []string
	Ready       func() error
}

func NewRouter(d Deps) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", auth.TokenHeader},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(api chi.Router) {
		api.Post("/auth/register", RegisterHandler(d.AccountSvc))
		api.Post("/auth/login", LoginHandler(d.AccountSvc))

		// Protected API (JWT → stored role in context → RBAC)
		api.Group(func(pr chi.Router) {
			pr.Use(auth.JWTMiddleware(d.Auth))
			pr.Use(auth.AttachRoleFromStore(d.Accounts))

			pr.Get("/auth/me", MeHandler(d.AccountSvc))

			pr.Route("/assignments", func(ar chi.Router) {
				ar.With(rbac.Require(rbac.PermAssignmentCreate)).
					Post("/create", CreateAssignmentHandler(d.Assignments, d.MaxUpload))
				ar.With(rbac.Require(rbac.PermAssignmentListOwn)).
					Get("/teacher", ListTeacherAssignmentsHandler(d.Assignments))
				ar.With(rbac.Require(rbac.PermAssignmentListAssigned)).
					Get("/student", ListStudentAssignmentsHandler(d.Assignments))
				ar.With(rbac.Require(rbac.PermAssignmentSubmit)).
					Put("/submit/{id}", SubmitAssignmentHandler(d.Assignments))
				ar.With(rbac.Require(rbac.PermAssistAsk)).
					Post("/ai-assist", AIAssistHandler(d.Assist))
				ar.With(rbac.Require(rbac.PermQuizGenerate)).
					Post("/ai-generate", AIGenerateHandler(d.Assist))
				ar.With(rbac.Require(rbac.PermAssignmentView)).
					Get("/{id}", GetAssignmentHandler(d.Assignments))
			})

			pr.With(rbac.Require(rbac.PermAssistAsk)).
				Post("/gradus/ask", GradusAskHandler(d.Assist))
		})
	})

	if d.Files != nil {
		r.Route("/files", func(fr chi.Router) { MountFiles(fr, d.Files) })
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, errorBody{Msg: "not ready", Error: err.Error()})
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	return r
}

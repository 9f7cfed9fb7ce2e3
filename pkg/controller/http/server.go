package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/engenharia-apr/aprd/pkg/usecase"
	"github.com/engenharia-apr/aprd/pkg/utils/logging"
)

type Server struct {
	router        *chi.Mux
	uc            *usecase.UseCases
	noAuthn       bool
	defaultTenant string
}

type Options func(*Server)

// WithNoAuthn accepts every request as an anonymous admin of the given
// tenant. Development only.
func WithNoAuthn(tenantID string) Options {
	return func(s *Server) {
		s.noAuthn = true
		s.defaultTenant = tenantID
	}
}

func New(uc *usecase.UseCases, opts ...Options) *Server {
	r := chi.NewRouter()

	s := &Server{
		router: r,
		uc:     uc,
	}
	for _, opt := range opts {
		opt(s)
	}

	r.Use(middleware.RequestID)
	r.Use(accessLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(actorMiddleware(s.noAuthn, s.defaultTenant))

		r.Route("/aprs", func(r chi.Router) {
			r.Get("/", s.listAPRs)
			r.Post("/", s.createAPR)

			r.Route("/{aprID}", func(r chi.Router) {
				r.Get("/", s.getAPR)
				r.Put("/", s.updateAPR)
				r.Delete("/", s.deleteAPR)

				r.Post("/status", s.changeStatus)
				r.Post("/finalize", s.finalizeAPR)
				r.Post("/rebuild", s.rebuildRiskItems)
				r.Post("/draft-steps", s.draftSteps)
				r.Get("/export", s.exportAPR)

				r.Get("/steps", s.listSteps)
				r.Post("/steps", s.addStep)
				r.Post("/steps/bulk", s.bulkAddSteps)
				r.Get("/risk-items", s.listRiskItems)
				r.Get("/events", s.listEvents)
			})
		})

		r.Route("/steps/{stepID}", func(r chi.Router) {
			r.Get("/", s.getStep)
			r.Put("/", s.updateStep)
			r.Delete("/", s.deleteStep)
		})

		r.Patch("/risk-items/{itemID}", s.overrideRiskItem)

		r.Route("/hazards", func(r chi.Router) {
			r.Get("/", s.listHazards)
			r.Post("/", s.importHazards)
		})
	})

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func accessLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			logging.Default().Info("access",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"remote", r.RemoteAddr,
				"user_agent", r.UserAgent(),
			)
		}()

		next.ServeHTTP(ww, r)
	})
}

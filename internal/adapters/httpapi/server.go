// Package httpapi exposes the booking wizard as a local JSON API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/example/skiphire/internal/ctxutil"
	"github.com/example/skiphire/internal/ports/primary"
)

// maxPhotoBytes bounds a multipart photo upload.
const maxPhotoBytes = 10 << 20

// Handler serves the booking API over a single session.
type Handler struct {
	booking  primary.BookingService
	catalog  primary.CatalogService
	logger   *zap.Logger
	validate *validator.Validate
}

// NewHandler creates a new Handler. logger may be nil.
func NewHandler(booking primary.BookingService, catalog primary.CatalogService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		booking:  booking,
		catalog:  catalog,
		logger:   logger,
		validate: newValidator(),
	}
}

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Routes builds the router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.accessLog)
	r.Use(withActor)

	r.Route("/catalog", func(r chi.Router) {
		r.Get("/", h.listSkips)
		r.Get("/{id}", h.getSkip)
		r.Get("/{id}/quote", h.quoteSkip)
	})

	r.Route("/session", func(r chi.Router) {
		r.Post("/", h.startSession)
		r.Get("/", h.getSession)
		r.Delete("/", h.endSession)

		r.Put("/skip", h.selectSkip)
		r.Put("/placement", h.setPlacement)
		r.Put("/delivery-date", h.setDeliveryDate)
		r.Delete("/delivery-date", h.clearDeliveryDate)
		r.Put("/address", h.setAddress)
		r.Put("/instructions", h.setInstructions)
		r.Put("/customer", h.updateCustomer)
		r.Post("/photo", h.uploadPhoto)
		r.Delete("/photo", h.clearPhoto)
		r.Post("/validate/{field}", h.validateField)
		r.Delete("/errors/{field}", h.clearError)
		r.Post("/advance", h.advance)
		r.Post("/retreat", h.retreat)
		r.Post("/submit", h.submit)
	})

	return r
}

// withActor marks requests as coming from the HTTP surface for the audit trail.
func withActor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(ctxutil.WithActorID(r.Context(), ctxutil.ActorHTTP)))
	})
}

func (h *Handler) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

// Server runs the API until its context is cancelled.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer creates a server listening on addr.
func NewServer(addr string, handler *Handler) *Server {
	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: handler.logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", s.srv.Addr))
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := s.srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

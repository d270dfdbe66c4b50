package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/tuanvumaihuynh/product-catalogue/internal/apperr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/auth"
	"github.com/tuanvumaihuynh/product-catalogue/internal/config"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/apierr"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/metric"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/middleware"
	"github.com/tuanvumaihuynh/product-catalogue/internal/http/swagger"
	"github.com/tuanvumaihuynh/product-catalogue/internal/service"
	"github.com/tuanvumaihuynh/product-catalogue/internal/storage/db"
	"github.com/tuanvumaihuynh/product-catalogue/pkg/validator"
)

var tracer = otel.Tracer("internal/http")

// Service represents the HTTP service.
type Service struct {
	cfg      config.HTTP
	logger   *slog.Logger
	registry *prometheus.Registry
	metrics  *metric.Metrics

	verifier      middleware.TokenVerifier
	healthChecker db.HealthChecker
	productSvc    service.ProductService
}

type CleanupFunc func(ctx context.Context) error

func New(
	cfg config.HTTP,
	log *slog.Logger,
	verifier middleware.TokenVerifier,
	healthChecker db.HealthChecker,
	productSvc service.ProductService,
) *Service {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Service{
		cfg:           cfg,
		logger:        log.With(slog.String("service", "http")),
		registry:      registry,
		metrics:       metric.New(registry),
		verifier:      verifier,
		healthChecker: healthChecker,
		productSvc:    productSvc,
	}
}

func (s *Service) Run(ctx context.Context) (CleanupFunc, error) {
	handler, err := s.Handler(ctx)
	if err != nil {
		return nil, err
	}

	return s.RunWithServer(ctx, handler)
}

// Handler builds the router with every middleware and route registered.
func (s *Service) Handler(ctx context.Context) (http.Handler, error) {
	r := chi.NewRouter()
	s.RegisterMiddlewares(r)

	if s.cfg.Swagger {
		if err := swagger.Register(ctx, r); err != nil {
			return nil, fmt.Errorf("register swagger: %w", err)
		}
	}

	if err := s.RegisterHandlers(r); err != nil {
		return nil, err
	}

	return r, nil
}

func (s *Service) RunWithServer(ctx context.Context, handler http.Handler) (CleanupFunc, error) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 16, // 64 KB
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", srv.Addr, err)
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.ErrorContext(ctx, "http server stopped unexpectedly", slog.Any("error", err))
		}
	}()

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}, nil
}

func (s *Service) RegisterMiddlewares(r chi.Router) {
	r.Use(
		middleware.Recoverer(s.logger),
		middleware.Trace(tracer),
		middleware.Metrics(s.metrics),
		middleware.CorrelationID(),
		middleware.Cors(s.cfg.CorsOrigins),
		middleware.Logging(s.logger),
	)
}

func (s *Service) RegisterHandlers(r chi.Router) error {
	v, err := validator.NewDefaultValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	products := newProductHandler(s.productSvc, v)
	health := newHealthHandler(s.healthChecker)

	r.Get("/healthz", s.handle(health.Healthz))
	r.Handle(middleware.MetricsPath, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{
		ErrorLog: log.Default(),
	}))

	r.Route("/products", func(r chi.Router) {
		r.Use(middleware.Authenticate(s.verifier, s.logger))

		r.With(s.authorize(auth.OperationCreateProduct)).
			Post("/", s.handle(products.CreateProduct))
		r.With(s.authorize(auth.OperationListPremiumProducts)).
			Get("/premium", s.handle(products.ListPremiumProducts))
		r.With(s.authorize(auth.OperationListProductsByCategory)).
			Get("/category/{category}", s.handle(products.ListProductsByCategory))
		r.With(s.authorize(auth.OperationUpdateProduct)).
			Patch("/{id}", s.handle(products.UpdateProduct))
		r.With(s.authorize(auth.OperationDeleteProduct)).
			Delete("/{id}", s.handle(products.DeleteProduct))

		// the sub-router already authenticated
		r.NotFound(s.authorize(auth.OperationOther)(http.HandlerFunc(s.notFound)).ServeHTTP)
		r.MethodNotAllowed(s.authorize(auth.OperationOther)(http.HandlerFunc(s.methodNotAllowed)).ServeHTTP)
	})

	r.NotFound(s.gateOther(s.notFound))
	r.MethodNotAllowed(s.gateOther(s.methodNotAllowed))

	return nil
}

func (s *Service) authorize(op auth.Operation) func(http.Handler) http.Handler {
	return middleware.Authorize(op, s.metrics, s.logger)
}

// gateOther restricts unmatched routes and methods to admins before answering them.
func (s *Service) gateOther(fn http.HandlerFunc) http.HandlerFunc {
	h := middleware.Authenticate(s.verifier, s.logger)(
		s.authorize(auth.OperationOther)(fn),
	)
	return h.ServeHTTP
}

func (s *Service) notFound(w http.ResponseWriter, r *http.Request) {
	s.handleResponseError(w, r, apperr.RouteNotFoundErr)
}

func (s *Service) methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.handleResponseError(w, r, apperr.MethodNotAllowedErr)
}

type response struct {
	status int
	body   any
}

type handlerFunc func(r *http.Request) (response, error)

func (s *Service) handle(fn handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res, err := fn(r)
		if err != nil {
			s.handleResponseError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(res.status)
		if err := json.NewEncoder(w).Encode(res.body); err != nil {
			s.logger.ErrorContext(r.Context(), "error encoding response",
				slog.Any("error", err))
		}
	}
}

// decodeJSON reads the request body into dst. Unknown fields are ignored.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErr.WithMsg("malformed request body").WrapParent(err)
	}
	return nil
}

func (s *Service) handleResponseError(w http.ResponseWriter, r *http.Request, err error) {
	res := apierr.New(err)

	logLevel := slog.LevelInfo
	if res.StatusCode >= 500 {
		logLevel = slog.LevelError
	} else if res.StatusCode >= 400 {
		logLevel = slog.LevelWarn
	}
	s.logger.Log(r.Context(), logLevel, "http response error", slog.Any("error", err))

	if err := apierr.Write(w, res); err != nil {
		s.logger.ErrorContext(r.Context(), "error encoding error response",
			slog.Any("error", err))
	}
}

package api

import (
	"net/http"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/hospital/pharmacy-api/internal/api/handler"
	"github.com/hospital/pharmacy-api/internal/api/middleware"
	"github.com/hospital/pharmacy-api/internal/core/domain"
	"github.com/hospital/pharmacy-api/internal/core/ports"
)

// Dependencies carries everything the HTTP layer needs from the outside.
type Dependencies struct {
	Auth     ports.AuthService
	Resolver ports.IdentityResolver
	Pharmacy ports.PharmacyService

	ReadinessChecks map[string]handler.DependencyCheck
	AllowedOrigins  []string
	// BootstrapEnabled exposes POST /auth/create-admin.
	BootstrapEnabled bool

	// Registry receives the HTTP request metrics and serves /metrics.
	// Nil means the process-wide default registry.
	Registry *prometheus.Registry

	Logger zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     deps.AllowedOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           3600,
	}))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "pharmacy",
		Registerer: registerer(deps.Registry),
	}))
	e.Use(middleware.Authorizer(deps.Resolver, deps.Logger))

	// --- Auth routes ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.GET("/validate", authHandler.Validate)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	if deps.BootstrapEnabled {
		auth.POST("/create-admin", authHandler.CreateAdmin)
	}

	// --- Pharmacist routes ---
	ph := handler.NewPharmacistHandler(deps.Pharmacy)
	pharmacist := e.Group("/pharmacist", middleware.RequireRole(domain.RolePharmacist))
	pharmacist.GET("/dashboard", ph.Dashboard)

	pharmacist.GET("/medicines", ph.ListMedicines)
	pharmacist.GET("/medicines/search", ph.SearchMedicines)
	pharmacist.GET("/medicines/low-stock", ph.LowStockMedicines)
	pharmacist.POST("/medicines", ph.CreateMedicine)
	pharmacist.PUT("/medicines/:medicineId", ph.UpdateMedicine)
	pharmacist.DELETE("/medicines/:medicineId", ph.DeleteMedicine)

	pharmacist.GET("/companies", ph.ListCompanies)
	pharmacist.POST("/companies", ph.CreateCompany)
	pharmacist.GET("/companies/:id", ph.GetCompany)
	pharmacist.PUT("/companies/:id", ph.UpdateCompany)

	pharmacist.GET("/distributors", ph.ListDistributors)
	pharmacist.POST("/distributors", ph.CreateDistributor)
	pharmacist.GET("/distributors/:id", ph.GetDistributor)
	pharmacist.PUT("/distributors/:id", ph.UpdateDistributor)

	pharmacist.GET("/prescriptions", ph.ListPrescriptions)
	pharmacist.GET("/prescriptions/:id", ph.GetPrescription)
	pharmacist.PUT("/prescriptions/:id/fill", ph.FillPrescription)

	// --- Doctor routes ---
	dh := handler.NewDoctorHandler(deps.Pharmacy)
	doctor := e.Group("/doctor", middleware.RequireRole(domain.RoleDoctor))
	doctor.POST("/prescriptions", dh.IssuePrescription)

	// --- Health probes, metrics and docs (no auth required) ---
	e.GET("/health", handler.NewHealthHandler().Liveness)
	e.GET("/health/ready", handler.NewHealthDependenciesHandler(deps.ReadinessChecks).Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: gatherer(deps.Registry),
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func registerer(r *prometheus.Registry) prometheus.Registerer {
	if r == nil {
		return prometheus.DefaultRegisterer
	}
	return r
}

func gatherer(r *prometheus.Registry) prometheus.Gatherer {
	if r == nil {
		return prometheus.DefaultGatherer
	}
	return r
}

// requestLogger writes one access log line per request through zerolog.
func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

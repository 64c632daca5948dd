package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vms-backend/internal/config"
	"vms-backend/internal/handlers"
	"vms-backend/internal/middleware"
	"vms-backend/internal/models"
	"vms-backend/internal/ws"
)

// Deps collects everything the route table needs.
type Deps struct {
	Config     *config.Config
	Auth       *middleware.AuthMiddleware
	APILogging *middleware.APILoggingMiddleware

	AuthHandler       *handlers.AuthHandler
	UserHandler       *handlers.UserHandler
	VisitorHandler    *handlers.VisitorHandler
	StaffHandler      *handlers.StaffHandler
	DashboardHandler  *handlers.DashboardHandler
	MonitoringHandler *handlers.MonitoringHandler
	HealthHandler     *handlers.HealthHandler
	Hub               *ws.Hub
}

// NewRouter builds the full route table with middleware applied.
func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.GzipCompression)
	r.Use(d.APILogging.Handler)
	r.Use(middleware.APIRateLimiter.Middleware)

	r.HandleFunc("/health", d.HealthHandler.Check).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.Handle("/ws", d.Auth.Handler(d.Hub))

	// Generated QR images, served as-is.
	r.PathPrefix("/qrcodes/").Handler(
		http.StripPrefix("/qrcodes/", http.FileServer(http.Dir(d.Config.QR.Folder))))

	// Public auth endpoints with a tighter rate limit.
	authRouter := r.PathPrefix("/api/auth").Subrouter()
	authRouter.Use(middleware.LoginRateLimiter.Middleware)
	authRouter.HandleFunc("/register", d.AuthHandler.Register).Methods(http.MethodPost)
	authRouter.HandleFunc("/login", d.AuthHandler.Login).Methods(http.MethodPost)

	// Everything below requires a valid token.
	api := r.PathPrefix("/api").Subrouter()
	api.Use(d.Auth.Handler)

	api.HandleFunc("/users/me", d.UserHandler.Me).Methods(http.MethodGet)
	api.HandleFunc("/users/me", d.UserHandler.UpdateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/me/password", d.UserHandler.ChangePassword).Methods(http.MethodPut)

	v := d.VisitorHandler
	api.HandleFunc("/visitors", v.CheckIn).Methods(http.MethodPost)
	api.HandleFunc("/visitors/scan", v.Scan).Methods(http.MethodGet)
	api.HandleFunc("/visitors/exit", v.Exit).Methods(http.MethodPost)
	api.HandleFunc("/visitors/exit-qr", v.ExitByQR).Methods(http.MethodPost)
	api.HandleFunc("/visitors/active", v.ListActive).Methods(http.MethodGet)
	api.HandleFunc("/visitors/all", v.ListAll).Methods(http.MethodGet)
	api.HandleFunc("/visitors/search", v.Search).Methods(http.MethodGet)
	api.HandleFunc("/visitors/filter/today", v.FilterToday).Methods(http.MethodGet)
	api.HandleFunc("/visitors/filter/date", v.FilterByDateRange).Methods(http.MethodGet)
	api.HandleFunc("/visitors/filter/status/{status}", v.FilterByStatus).Methods(http.MethodGet)
	api.HandleFunc("/visitors/advanced-search", v.AdvancedSearch).Methods(http.MethodGet)
	api.HandleFunc("/visitors/my", v.MyVisitors).Methods(http.MethodGet)
	api.HandleFunc("/visitors/overdue/{minutes:[0-9]+}", v.Overdue).Methods(http.MethodGet)
	api.HandleFunc("/visitors/stats/today", v.TodayStats).Methods(http.MethodGet)
	api.HandleFunc("/visitors/stats/today-hourly", v.HourlyToday).Methods(http.MethodGet)
	api.HandleFunc("/visitors/stats/hourly", v.HourlyByRange).Methods(http.MethodGet)
	api.HandleFunc("/visitors/export/csv", v.ExportCSV).Methods(http.MethodGet)
	api.HandleFunc("/visitors/export/excel", v.ExportExcel).Methods(http.MethodGet)
	api.HandleFunc("/visitors/{id:[0-9]+}/history", v.History).Methods(http.MethodGet)

	s := d.StaffHandler
	api.HandleFunc("/staff", s.Create).Methods(http.MethodPost)
	api.HandleFunc("/staff/me", s.Me).Methods(http.MethodGet)
	api.HandleFunc("/staff/me", s.UpdateMe).Methods(http.MethodPut)
	api.HandleFunc("/staff/me", s.DeleteMe).Methods(http.MethodDelete)
	api.HandleFunc("/staff/me/dashboard", s.Dashboard).Methods(http.MethodGet)
	api.HandleFunc("/staff/me/not-exited", s.NotExited).Methods(http.MethodGet)
	api.HandleFunc("/staff/search", s.Search).Methods(http.MethodGet)
	api.HandleFunc("/staff/code/{code}", s.GetByCode).Methods(http.MethodGet)
	api.HandleFunc("/staff/{id:[0-9]+}", s.Get).Methods(http.MethodGet)
	api.HandleFunc("/staff/{id:[0-9]+}", s.Update).Methods(http.MethodPut)
	api.HandleFunc("/staff/{id:[0-9]+}", s.Delete).Methods(http.MethodDelete)

	api.HandleFunc("/dashboard/analytics", d.DashboardHandler.Analytics).Methods(http.MethodGet)

	mon := api.PathPrefix("/monitoring").Subrouter()
	mon.Use(d.Auth.RequireRoles(models.RoleAdmin))
	mon.HandleFunc("/snapshot", d.MonitoringHandler.Snapshot).Methods(http.MethodGet)
	mon.HandleFunc("/api-summary", d.MonitoringHandler.APISummary).Methods(http.MethodGet)
	mon.HandleFunc("/trends", d.MonitoringHandler.Trends).Methods(http.MethodGet)
	mon.HandleFunc("/logs", d.MonitoringHandler.APILogs).Methods(http.MethodGet)

	return middleware.NewCORS(d.Config.CORS)(r)
}

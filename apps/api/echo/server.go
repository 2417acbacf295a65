package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/balance"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/core/report"
	"github.com/trezcool/daftar/core/student"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		Owners      core.OwnerResolver
		Health      core.Pinger
		Validate    *validator.Validate
		Translator  ut.Translator
		StudentSvc  *student.Service
		GroupSvc    *group.Service
		PaymentSvc  *payment.Service
		ExpenseSvc  *expense.Service
		BalanceSvc  *balance.Service
		GuestSvc    *guestcode.Service
		ReportSvc   *report.Service
		DisableLogs bool // request logs
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		jwt      middleware.JWTConfig
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	if deps.Owners == nil {
		deps.Owners = core.ContextOwnerResolver{}
	}
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		jwt:        newJWTConfig(deps.Conf),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.Server.ReadTimeout = s.Conf.Server.ReadTimeout
	s.app.Server.WriteTimeout = s.Conf.Server.WriteTimeout
	s.app.HideBanner = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.DisableLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator, s.signalShutdown)
	s.app.Debug = s.Conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/status", s.status)

	v1 := s.app.Group("/v1")
	registerGuestAPI(v1, s.GuestSvc, s.ReportSvc)

	authed := v1.Group("", middleware.JWTWithConfig(s.jwt), s.ownerMiddleware)
	registerStudentAPI(authed, s.Owners, s.StudentSvc)
	registerGroupAPI(authed, s.Owners, s.GroupSvc, s.BalanceSvc)
	registerPaymentAPI(authed, s.Owners, s.PaymentSvc)
	registerExpenseAPI(authed, s.Owners, s.ExpenseSvc)
	registerGuestCodeAPI(authed, s.Owners, s.GuestSvc)
	registerReportAPI(authed, s.Owners, s.ReportSvc)
}

// Start listens on Conf.Server.Address. Listener errors are sent to Errors().
func (s *Server) Start() {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	if err := s.app.Start(s.Conf.Server.Address); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default: // already signaled
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.Conf.AppName+" API!")
}

type statusResponse struct {
	Store     string `json:"store"`
	Connected bool   `json:"connected"`
}

// status reports the store's connectivity. An unreachable store answers 503; the cause is only logged.
func (s *Server) status(ctx echo.Context) error {
	resp := statusResponse{Store: s.Conf.Database.Driver, Connected: true}
	if s.Health != nil {
		if err := s.Health.Ping(ctx.Request().Context()); err != nil {
			resp.Connected = false
			s.Logger.Warn("store ping failed", err)
			return ctx.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return ctx.JSON(http.StatusOK, resp)
}

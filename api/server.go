package api

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/moyoez/claimdesk/api/controllers"
	"github.com/moyoez/claimdesk/api/middlewares"
	"github.com/moyoez/claimdesk/api/models"
	"github.com/moyoez/claimdesk/api/notifyhub"
	"github.com/moyoez/claimdesk/claim"
	"github.com/moyoez/claimdesk/intake"
	"github.com/moyoez/claimdesk/metrics"
	"github.com/moyoez/claimdesk/tool"
	"github.com/moyoez/claimdesk/types"
)

// Server is the local intake API.
type Server struct {
	cfg     types.AppConfig
	backend claim.Backend
	engine  *gin.Engine
	server  *http.Server
	mu      sync.RWMutex
}

func NewServer(cfg types.AppConfig, backend claim.Backend) *Server {
	return &Server{cfg: cfg, backend: backend}
}

// SessionOptions derives per-session settings from cfg.
func SessionOptions(cfg types.AppConfig) intake.Options {
	return intake.Options{
		ThumbnailSize:  cfg.ThumbnailSize,
		PreviewWorkers: cfg.PreviewWorkers,
		Sequencer: claim.Options{
			Model:    cfg.Model,
			USDToTHB: cfg.USDToTHBRate,
		},
		Notifier: models.GetNotifyDispatcher(),
	}
}

func (s *Server) setupRoutes() *gin.Engine {
	if tool.DefaultLogger.GetLevel() == log.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery())
	engine.Use(middlewares.AllowAllCORS())

	if err := metrics.RegisterDefault(); err != nil {
		tool.DefaultLogger.Warnf("[Server] Metrics registration failed: %v", err)
	}
	models.InitSessionStore(tool.SessionTTLDuration(&s.cfg))
	hub := notifyhub.New()
	models.SetNotifyHub(hub)

	intakeCtrl := controllers.NewIntakeController(s.backend, SessionOptions(s.cfg))
	submitLimiter := middlewares.NewPerMinuteLimiter(s.cfg.SubmitPerMinute)

	var guards []gin.HandlerFunc
	if !s.cfg.AllowRemote {
		guards = append(guards, middlewares.OnlyAllowLocal)
	}
	self := engine.Group("/api/self/v1", guards...)
	{
		self.POST("/sessions", intakeCtrl.CreateSession)
		self.GET("/sessions/:id", intakeCtrl.GetSession)
		self.DELETE("/sessions/:id", intakeCtrl.DeleteSession)
		self.POST("/sessions/:id/slots/:slot", intakeCtrl.AddFiles)                 // multipart "files"
		self.DELETE("/sessions/:id/slots/:slot", intakeCtrl.ClearSlot)              // drop the whole slot
		self.DELETE("/sessions/:id/slots/:slot/files/:name", intakeCtrl.RemoveFile) // first file with that name
		self.GET("/sessions/:id/slots/:slot/previews", intakeCtrl.Previews)
		self.GET("/sessions/:id/slots/:slot/files/:name", intakeCtrl.RawFile)
		self.POST("/sessions/:id/submit", submitLimiter.Middleware(), controllers.Submit)
		self.POST("/sessions/:id/dismiss", controllers.Dismiss)
		self.POST("/sessions/:id/reset", controllers.Reset)
		self.GET("/notify-ws", notifyhub.HandleNotifyWS(hub))
		self.GET("/create-qr-code", controllers.GenerateQRCode) // QR code PNG (same params as api.qrserver.com)
		self.GET("/status", controllers.UserStatus)
		self.GET("/config", controllers.UserConfigGet)
	}
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	return engine
}

// Handler builds the routes without listening; used by tests.
func (s *Server) Handler() http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		s.engine = s.setupRoutes()
	}
	return s.engine
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	handler := s.Handler()

	s.mu.Lock()
	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: handler,
	}
	srv := s.server
	s.mu.Unlock()

	tool.DefaultLogger.Infof("Starting intake API on http://0.0.0.0:%d (backend %s)", s.cfg.Port, s.cfg.BackendURL)
	if s.cfg.AllowRemote {
		for _, ip := range tool.LANIPv4s() {
			tool.DefaultLogger.Infof("Reachable on the local network at http://%s:%d", ip, s.cfg.Port)
		}
	}
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.RLock()
	srv := s.server
	s.mu.RUnlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

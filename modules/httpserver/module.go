package httpserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/example/file-drop/config"
	"github.com/example/file-drop/modules/storage"
	"github.com/gin-gonic/gin"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
)

// Module implements an HTTP server using the Gin framework.
type Module struct {
	cfg           config.Config
	server        *http.Server
	engine        *gin.Engine
	storageModule *storage.Module
	logger        types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
)

// NewModule creates a new HTTP server module.
func NewModule(cfg config.Config, logger types.Logger) *Module {
	return &Module{
		cfg:    cfg,
		logger: logger,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "http-server"
}

// SetStorageModule sets the storage module dependency.
func (m *Module) SetStorageModule(storageModule *storage.Module) {
	m.storageModule = storageModule
}

// Start binds the listener and serves in the background. A bind failure is
// returned so the application does not report itself ready.
func (m *Module) Start(ctx context.Context) error {
	if m.storageModule == nil {
		return fmt.Errorf("storage module not set")
	}

	gin.SetMode(gin.ReleaseMode)
	m.engine = NewRouter(m.storageModule.Store(), m.cfg.Passcode, m.cfg.MaxMultipartMemory, m.logger)

	// No read or write timeout: uploads and downloads may take as long as they need.
	m.server = &http.Server{
		Addr:              m.cfg.Addr(),
		Handler:           m.engine,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	ln, err := net.Listen("tcp", m.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.server.Addr, err)
	}

	go func() {
		m.logger.Info("HTTP server starting", "port", m.cfg.Port)
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("HTTP server error", "error", err)
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server.
func (m *Module) Stop(ctx context.Context) error {
	if m.server != nil {
		m.logger.Info("Shutting down HTTP server")
		return m.server.Shutdown(ctx)
	}
	return nil
}

// Health reports whether the server has been started.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.server == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "HTTP server not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}

// NewRouter builds the engine: the landing page is public, every other route
// sits behind the pass-code gate.
func NewRouter(store FileStore, passcode string, maxMultipartMemory int64, logger types.Logger) *gin.Engine {
	engine := gin.New()
	engine.MaxMultipartMemory = maxMultipartMemory

	engine.Use(gin.Recovery())
	engine.Use(requestIDMiddleware())
	engine.Use(loggingMiddleware(logger))
	engine.Use(corsMiddleware())

	h := NewHandlers(store, logger)

	engine.GET("/", h.Index)

	protected := engine.Group("/", PasscodeGate(passcode, logger))
	{
		protected.POST("/upload", h.Upload)
		protected.GET("/files", h.ListFiles)
		protected.GET("/uploads/:filename", h.Download)
		protected.GET("/download-all", h.DownloadAll)
	}

	return engine
}

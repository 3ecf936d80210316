package uihttp

import (
	"context"
	"errors"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cleargraph/internal/logger"
	webassets "cleargraph/internal/transport/web"
	"cleargraph/internal/workspace"

	"github.com/gin-gonic/gin"
)

// Server serves the browser UI and the JSON digitize API.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig lists what the HTTP layer needs.
type ServerConfig struct {
	Addr        string
	Workspaces  *workspace.Manager
	Digitizer   Digitizer
	UploadLimit int64
	CookieName  string
	SessionTTL  time.Duration
	// APITimeout bounds a synchronous /api/digitize call.
	APITimeout time.Duration
	// RefreshSeconds is the reload interval of the analyzing page.
	RefreshSeconds int
	PoweredBy      string
	PoweredByURL   string
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Workspaces == nil {
		return nil, errors.New("ui http server requires a workspace manager")
	}
	if cfg.Digitizer == nil {
		return nil, errors.New("ui http server requires a digitizer")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.CookieName == "" {
		cfg.CookieName = "cleargraph_session"
	}
	if cfg.RefreshSeconds <= 0 {
		cfg.RefreshSeconds = 2
	}
	if cfg.PoweredBy == "" {
		cfg.PoweredBy = "Gemini"
		cfg.PoweredByURL = "https://ai.google.dev"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	if err := loadTemplates(router); err != nil {
		return nil, err
	}
	if err := serveStatic(router); err != nil {
		return nil, err
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	h := &handler{cfg: cfg}
	h.register(router)

	return &Server{addr: cfg.Addr, router: router}, nil
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

func templateDirs() []string {
	dirs := []string{
		"internal/transport/web/templates",
		"web/templates",
		"/app/web/templates",
	}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Join(filepath.Dir(exe), "web", "templates"))
	}
	return dirs
}

// loadTemplates prefers templates on disk so they can be edited without a rebuild and
// falls back to the embedded copies.
func loadTemplates(router *gin.Engine) error {
	for _, base := range templateDirs() {
		stat, err := os.Stat(base)
		if err != nil || !stat.IsDir() {
			continue
		}
		files, _ := filepath.Glob(filepath.Join(base, "*.html"))
		if len(files) == 0 {
			continue
		}
		router.LoadHTMLFiles(files...)
		return nil
	}
	tmpl, err := template.New("ui").ParseFS(webassets.Templates, "templates/*.html")
	if err != nil {
		return err
	}
	router.SetHTMLTemplate(tmpl)
	return nil
}

func serveStatic(router *gin.Engine) error {
	for _, base := range []string{"internal/transport/web/static", "web/static", "/app/web/static"} {
		stat, err := os.Stat(base)
		if err == nil && stat.IsDir() {
			router.Static("/static", base)
			return nil
		}
	}
	sub, err := fs.Sub(webassets.Static, "static")
	if err != nil {
		return err
	}
	router.StaticFS("/static", http.FS(sub))
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		client := c.ClientIP()
		c.Next()
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, path, c.Writer.Status(), client, time.Since(start))
	}
}

func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("HTTP server listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

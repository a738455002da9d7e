// Package server exposes the scan and reconcile pipeline over HTTP.
// Uploads are processed synchronously; report artifacts land in the
// configured output directory under fixed names and are served back
// from /reports.
package server

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/ocr"
	"github.com/docsift/docsift/internal/pipeline"
)

// DocProcessor is the pipeline surface the handlers need; tests stub it.
type DocProcessor interface {
	ProcessUpload(ctx context.Context, filename string, data []byte) (pipeline.Result, error)
	ProcessImage(ctx context.Context, img image.Image) pipeline.Result
	ExtractText(ctx context.Context, filename string, data []byte) (ocr.Result, error)
}

type Server struct {
	cfg    common.Config
	proc   DocProcessor
	logger *slog.Logger
}

func New(cfg common.Config, proc DocProcessor, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, proc: proc, logger: logger}
}

// Router wires the routes. Upload size is capped before any handler
// reads the body.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.MaxMultipartMemory = s.cfg.Server.MaxUploadBytes

	r.GET("/healthz", s.handleHealth)
	r.POST("/documents", s.limitBody(s.handleScan))
	r.POST("/reconcile", s.limitBody(s.handleReconcile))
	r.GET("/reports/:name", s.handleReport)
	return r
}

func (s *Server) limitBody(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Server.MaxUploadBytes)
		h(c)
	}
}

// requestLog stamps a job ID onto the request context so the pipeline
// and every log line carry the same ID the client gets back.
func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New()
		c.Request = c.Request.WithContext(common.WithJobID(c.Request.Context(), id))
		c.Next()
		s.logger.Info("http.request",
			"job_id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
		)
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// writeError maps AppError codes onto HTTP statuses; everything else is a 500.
func (s *Server) writeError(c *gin.Context, err error) {
	code := "INTERNAL"
	status := http.StatusInternalServerError
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		switch code {
		case "UNSUPPORTED_FORMAT", "DECODE_FAILED", "INVALID_INPUT":
			status = http.StatusBadRequest
		}
	}
	s.logger.Warn("http.error", "code", code, "error", err)
	c.JSON(status, gin.H{"code": code, "error": err.Error()})
}

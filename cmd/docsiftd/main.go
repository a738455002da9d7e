package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/imgproc"
	"github.com/docsift/docsift/internal/ocr"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/server"
)

func main() {
	// .env is optional; real env vars win
	_ = godotenv.Load()

	fs := ff.NewFlagSet("docsiftd")
	var (
		addr      = fs.StringLong("addr", "", "listen address (overrides HTTP_ADDR)")
		reportDir = fs.StringLong("report-dir", "", "artifact output directory (overrides REPORT_DIR)")
		tesseract = fs.StringLong("tesseract", "", "tesseract binary path (overrides TESSERACT_PATH)")
		verbose   = fs.BoolLong("verbose", "debug logging")
	)
	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("DOCSIFT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if *addr != "" {
		cfg.Server.HTTPAddr = *addr
	}
	if *reportDir != "" {
		cfg.Report.OutputDir = *reportDir
	}
	if *tesseract != "" {
		cfg.OCR.Tesseract = *tesseract
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ocrCfg := ocr.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
		OEM:           cfg.OCR.OEM,
		PSM:           cfg.OCR.PSM,
		DPI:           cfg.OCR.DPI,
		MaxPages:      cfg.OCR.MaxPages,
		BoxMinConf:    cfg.OCR.BoxMinConf,
	}
	colCfg := ocrCfg
	colCfg.PSM = ocr.PSMColumns

	proc := pipeline.NewProcessor(
		logger,
		imgproc.NewNormalizer(imgproc.Config{
			Width:     cfg.Image.Width,
			Threshold: uint8(cfg.Image.Threshold),
			Otsu:      cfg.Image.Otsu,
			Denoise:   cfg.Image.Denoise,
			Deskew:    cfg.Image.Deskew,
		}, logger),
		ocr.NewExtractor(ocrCfg, logger),
	)
	proc.ColumnOCR = ocr.NewExtractor(colCfg, logger)

	srv := server.New(*cfg, proc, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: srv.Router(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http.listening", "addr", cfg.Server.HTTPAddr, "report_dir", cfg.Report.OutputDir)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http.serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
		os.Exit(1)
	}
}

// docsift is the command-line front end: scan a document to extracted
// fields and report files, or reconcile two inputs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/fields"
	"github.com/docsift/docsift/internal/imgproc"
	"github.com/docsift/docsift/internal/ocr"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/reconcile"
	"github.com/docsift/docsift/internal/report"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch os.Args[1] {
	case "scan":
		err = runScan(ctx, os.Args[2:])
	case "reconcile":
		err = runReconcile(ctx, os.Args[2:])
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: docsift <scan|reconcile> [flags] <file>...")
	fmt.Fprintln(os.Stderr, "  scan <document>                 extract fields, write PDF and XLSX reports")
	fmt.Fprintln(os.Stderr, "  reconcile <source> <against>    compare two inputs, write CSV verdicts")
}

func runScan(ctx context.Context, args []string) error {
	fs := ff.NewFlagSet("docsift scan")
	var (
		profilePath = fs.StringLong("profile", "", "extraction profile JSON (overrides classification)")
		outDir      = fs.StringLong("out", "", "output directory (overrides REPORT_DIR)")
		tesseract   = fs.StringLong("tesseract", "", "tesseract binary path")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("DOCSIFT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	rest := fs.GetArgs()
	if len(rest) != 1 {
		return fmt.Errorf("scan expects exactly one document path")
	}

	cfg := common.LoadConfig()
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}
	if *tesseract != "" {
		cfg.OCR.Tesseract = *tesseract
	}

	proc := newProcessor(cfg)
	if *profilePath != "" {
		p, err := fields.LoadProfile(*profilePath)
		if err != nil {
			return fmt.Errorf("loading profile: %w", err)
		}
		proc.Profile = &p
	}

	data, err := os.ReadFile(rest[0])
	if err != nil {
		return err
	}
	res, err := proc.ProcessUpload(ctx, rest[0], data)
	if err != nil {
		return err
	}

	fmt.Printf("document: %s\ntype:     %s\n\n", rest[0], res.DocType)
	rendered := res.Fields.Rendered()
	for _, name := range res.Fields.Names() {
		fmt.Printf("%-16s %s\n", name+":", rendered[name])
	}

	if pdfData, err := report.RenderPDF(res.Fields); err == nil {
		if path, err := report.WriteArtifact(cfg.Report.OutputDir, report.PDFName, pdfData); err == nil {
			fmt.Printf("\nwrote %s\n", path)
		}
	}
	if xlsxData, err := report.RenderXLSX(res.Fields); err == nil {
		if path, err := report.WriteArtifact(cfg.Report.OutputDir, report.XLSXName, xlsxData); err == nil {
			fmt.Printf("wrote %s\n", path)
		}
	}
	return nil
}

func runReconcile(ctx context.Context, args []string) error {
	fs := ff.NewFlagSet("docsift reconcile")
	var (
		mode   = fs.StringLong("mode", "lines", "comparison mode: lines or amounts")
		outDir = fs.StringLong("out", "", "output directory (overrides REPORT_DIR)")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("DOCSIFT")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		return err
	}
	rest := fs.GetArgs()
	if len(rest) != 2 {
		return fmt.Errorf("reconcile expects a source and an against path")
	}

	cfg := common.LoadConfig()
	if *outDir != "" {
		cfg.Report.OutputDir = *outDir
	}
	proc := newProcessor(cfg)

	srcLines, err := inputLines(ctx, proc, rest[0])
	if err != nil {
		return err
	}
	againstLines, err := inputLines(ctx, proc, rest[1])
	if err != nil {
		return err
	}

	var res reconcile.Result
	switch *mode {
	case "lines":
		res = reconcile.Lines(srcLines, againstLines)
	case "amounts":
		res = reconcile.Amounts(fields.AmountsInLines(srcLines), fields.AmountsInLines(againstLines))
	default:
		return fmt.Errorf("mode must be lines or amounts, got %q", *mode)
	}

	for _, e := range res.Entries {
		fmt.Printf("%-12s %s\n", e.Status, e.Entry)
	}
	if res.Numeric {
		fmt.Printf("\nmatched %d entries, %.2f of %.2f\n", res.MatchedCount, res.MatchedTotal, res.GrandTotal)
	}

	csvData, err := report.RenderCSV(res)
	if err != nil {
		return err
	}
	path, err := report.WriteArtifact(cfg.Report.OutputDir, report.CSVName, csvData)
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

// inputLines resolves a reconcile input: .txt files are read verbatim,
// everything else goes through normalize + OCR.
func inputLines(ctx context.Context, proc *pipeline.Processor, path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return ocr.SplitLines(ocr.NormalizeText(string(data))), nil
	}
	res, err := proc.ExtractText(ctx, path, data)
	if err != nil {
		return nil, err
	}
	return res.Lines, nil
}

// newLogger keeps pipeline chatter off stdout; only warnings surface.
func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

func newProcessor(cfg *common.Config) *pipeline.Processor {
	logger := newLogger()
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
	return proc
}

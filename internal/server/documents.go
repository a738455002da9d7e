package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/pipeline"
	"github.com/docsift/docsift/internal/report"
)

// handleScan accepts one multipart upload under "file", runs the full
// pipeline and writes the two extraction artifacts. The artifacts use
// fixed names, so a new scan overwrites the previous one.
func (s *Server) handleScan(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, common.NewAppError("INVALID_INPUT", "multipart field \"file\" is required", common.ErrInvalidInput))
		return
	}
	f, err := fh.Open()
	if err != nil {
		s.writeError(c, common.WrapError(err, "opening upload"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		s.writeError(c, common.WrapError(err, "reading upload"))
		return
	}

	res, err := s.proc.ProcessUpload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		s.writeError(c, err)
		return
	}

	reports := gin.H{}
	if pdfData, err := report.RenderPDF(res.Fields); err != nil {
		s.logger.Error("report.pdf.failed", "job_id", res.JobID, "error", err)
	} else if _, err := report.WriteArtifact(s.cfg.Report.OutputDir, report.PDFName, pdfData); err != nil {
		s.logger.Error("report.pdf.failed", "job_id", res.JobID, "error", err)
	} else {
		reports["pdf"] = "/reports/" + report.PDFName
	}
	if xlsxData, err := report.RenderXLSX(res.Fields); err != nil {
		s.logger.Error("report.xlsx.failed", "job_id", res.JobID, "error", err)
	} else if _, err := report.WriteArtifact(s.cfg.Report.OutputDir, report.XLSXName, xlsxData); err != nil {
		s.logger.Error("report.xlsx.failed", "job_id", res.JobID, "error", err)
	} else {
		reports["xlsx"] = "/reports/" + report.XLSXName
	}

	c.JSON(http.StatusOK, scanResponse(res, reports))
}

func scanResponse(res pipeline.Result, reports gin.H) gin.H {
	fieldOrder := res.Fields.Names()
	return gin.H{
		"job_id":      res.JobID.String(),
		"doc_type":    string(res.DocType),
		"fields":      res.Fields.Rendered(),
		"field_order": fieldOrder,
		"stages": gin.H{
			"normalize": stageJSON(string(res.Normalize.Status), res.Normalize.Err),
			"ocr":       stageJSON(string(res.OCR.Status), res.OCR.Err),
			"extract":   stageJSON(string(res.Extract.Status), nil),
		},
		"ocr": gin.H{
			"method":     res.OCR.Method,
			"pages":      res.OCR.Pages,
			"lines":      res.OCR.Lines,
			"confidence": res.OCR.Confidence,
			"warnings":   res.OCR.Warnings,
		},
		"duration_ms": res.Duration.Milliseconds(),
		"reports":     reports,
	}
}

func stageJSON(status string, err error) gin.H {
	h := gin.H{"status": status}
	if err != nil {
		h["error"] = err.Error()
	}
	return h
}

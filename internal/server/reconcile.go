package server

import (
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/common"
	"github.com/docsift/docsift/internal/fields"
	"github.com/docsift/docsift/internal/ocr"
	"github.com/docsift/docsift/internal/reconcile"
	"github.com/docsift/docsift/internal/report"
)

// handleReconcile compares two inputs. Each side is either an uploaded
// document ("source"/"against" files, OCR'd first) or raw text
// ("source_text"/"against_text"). Mode "lines" (default) compares
// trimmed lines; mode "amounts" compares the currency amounts found in
// the text.
func (s *Server) handleReconcile(c *gin.Context) {
	srcLines, err := s.reconcileSide(c, "source")
	if err != nil {
		s.writeError(c, err)
		return
	}
	againstLines, err := s.reconcileSide(c, "against")
	if err != nil {
		s.writeError(c, err)
		return
	}

	mode := c.DefaultPostForm("mode", "lines")
	var res reconcile.Result
	switch mode {
	case "lines":
		res = reconcile.Lines(srcLines, againstLines)
	case "amounts":
		res = reconcile.Amounts(fields.AmountsInLines(srcLines), fields.AmountsInLines(againstLines))
	default:
		s.writeError(c, common.NewAppError("INVALID_INPUT", "mode must be \"lines\" or \"amounts\"", common.ErrInvalidInput))
		return
	}

	csvURL := ""
	if csvData, err := report.RenderCSV(res); err != nil {
		s.logger.Error("report.csv.failed", "error", err)
	} else if _, err := report.WriteArtifact(s.cfg.Report.OutputDir, report.CSVName, csvData); err != nil {
		s.logger.Error("report.csv.failed", "error", err)
	} else {
		csvURL = "/reports/" + report.CSVName
	}

	entries := make([]gin.H, 0, len(res.Entries))
	for _, e := range res.Entries {
		entries = append(entries, gin.H{"entry": e.Entry, "status": string(e.Status)})
	}
	body := gin.H{"mode": mode, "entries": entries, "report": csvURL}
	if res.Numeric {
		body["matched_count"] = res.MatchedCount
		body["matched_total"] = res.MatchedTotal
		body["grand_total"] = res.GrandTotal
	}
	c.JSON(http.StatusOK, body)
}

// reconcileSide resolves one comparison side to lines, OCR-ing file
// uploads and splitting inline text.
func (s *Server) reconcileSide(c *gin.Context, name string) ([]string, error) {
	if fh, err := c.FormFile(name); err == nil {
		data, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		ocrRes, err := s.proc.ExtractText(c.Request.Context(), fh.Filename, data)
		if err != nil {
			return nil, err
		}
		return ocrRes.Lines, nil
	}
	if text, ok := c.GetPostForm(name + "_text"); ok {
		return ocr.SplitLines(strings.ReplaceAll(text, "\r\n", "\n")), nil
	}
	return nil, common.NewAppError("INVALID_INPUT",
		"provide "+name+" as a file upload or "+name+"_text", common.ErrInvalidInput)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, common.WrapError(err, "opening upload")
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, common.WrapError(err, "reading upload")
	}
	return data, nil
}

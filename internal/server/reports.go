package server

import (
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/docsift/docsift/internal/report"
)

// handleReport serves a generated artifact. Only the fixed artifact
// names are valid, which also keeps traversal out of the path.
func (s *Server) handleReport(c *gin.Context) {
	name := c.Param("name")
	switch name {
	case report.PDFName, report.XLSXName, report.CSVName:
	default:
		c.JSON(http.StatusNotFound, gin.H{"code": "NOT_FOUND", "error": "unknown report " + name})
		return
	}
	path := filepath.Join(s.cfg.Report.OutputDir, name)
	c.FileAttachment(path, name)
}

package ui

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"datamend/adapters/tabular"
	"datamend/internal/cleaner"
	"datamend/internal/errors"
	"datamend/internal/impute"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const previewRows = 10

type analyzeRequest struct {
	Filename string `json:"filename" binding:"required"`
}

type cleanRequest struct {
	Filename string        `json:"filename" binding:"required"`
	Method   string        `json:"method" binding:"required"`
	Columns  []string      `json:"columns"`
	Params   impute.Params `json:"params"`
}

type cleanupRequest struct {
	Filenames []string `json:"filenames" binding:"required"`
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.Storage.MaxUploadBytes)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file part"})
		return
	}
	original := filepath.Base(file.Filename)
	if original == "" || original == "." || original == string(filepath.Separator) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no selected file"})
		return
	}
	if _, err := tabular.DetectFormat(original); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file type"})
		return
	}

	// Stored names carry a short random prefix so concurrent uploads of
	// the same file never collide.
	stored := uuid.NewString()[:8] + "_" + original
	path := filepath.Join(s.cfg.Storage.UploadDir, stored)
	if err := c.SaveUploadedFile(file, path); err != nil {
		s.log.Error("[Upload] failed to save %s: %v", original, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save file"})
		return
	}

	cl := cleaner.New(path, s.log)
	if err := cl.Load(); err != nil {
		s.log.Warn("[Upload] failed to load %s: %v", stored, err)
		c.JSON(statusFor(err), gin.H{"error": "error loading file"})
		return
	}

	tbl := cl.Table()
	c.JSON(http.StatusOK, gin.H{
		"filename":       stored,
		"preview":        tbl.Rows(previewRows),
		"columns":        tbl.ColumnNames(),
		"missing_counts": cl.AnalyzeMissingData(),
		"column_stats":   cl.ColumnStats(),
		"shape":          gin.H{"rows": tbl.RowCount(), "cols": len(tbl.Columns)},
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	path, ok := s.storedPath(req.Filename)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	cl := cleaner.New(path, s.log)
	if err := cl.Load(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "error loading file"})
		return
	}

	tbl := cl.Table()
	c.JSON(http.StatusOK, gin.H{
		"missing_counts":     cl.AnalyzeMissingData(),
		"column_stats":       cl.ColumnStats(),
		"knn_recommendation": cl.KnnRecommendation(),
		"preview":            tbl.Rows(previewRows),
		"columns":            tbl.ColumnNames(),
	})
}

func (s *Server) handleClean(c *gin.Context) {
	var req cleanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	path, ok := s.storedPath(req.Filename)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}

	cl := cleaner.New(path, s.log)
	if err := cl.Load(); err != nil {
		c.JSON(statusFor(err), gin.H{"error": "error loading file"})
		return
	}

	cleaned, err := cl.Clean(req.Method, req.Columns, req.Params)
	if err != nil {
		s.log.Warn("[Clean] %s on %s failed: %v", req.Method, req.Filename, err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	cleanedName := "cleaned_" + req.Filename
	if _, err := cl.Save(filepath.Join(s.cfg.Storage.UploadDir, cleanedName)); err != nil {
		s.log.Error("[Clean] failed to save cleaned file: %v", err)
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"cleaned_filename": cleanedName,
		"preview":          cleaned.Rows(previewRows),
	})
}

func (s *Server) handleDownload(c *gin.Context) {
	path, ok := s.storedPath(c.Param("filename"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) handleCleanup(c *gin.Context) {
	var req cleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	for _, name := range req.Filenames {
		if path, ok := s.storedPath(name); ok {
			if err := os.Remove(path); err != nil {
				s.log.Debug("[Cleanup] failed to remove %s: %v", name, err)
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "cleanup complete"})
}

// storedPath resolves a client-supplied filename inside the upload
// directory, rejecting traversal and unknown files.
func (s *Server) storedPath(filename string) (string, bool) {
	if filename == "" || filename != filepath.Base(filename) || strings.Contains(filename, "..") {
		return "", false
	}
	path := filepath.Join(s.cfg.Storage.UploadDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// statusFor maps engine error codes to HTTP statuses; internal details
// never reach the response body.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeUnsupportedFormat, errors.CodeParseError, errors.CodeInvalidMethod,
		errors.CodeInvalidInput, errors.CodeNoDataLoaded:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/contentradar/scraper/internal/domain"
	"github.com/contentradar/scraper/internal/logger"
	"github.com/contentradar/scraper/internal/orchestrator"
	"github.com/contentradar/scraper/internal/runlog"
)

func (s *Server) handleScraperStatus(c *gin.Context) {
	status := s.scraper.Status()
	limiterStats := any(nil)
	respondSuccess(c, http.StatusOK, gin.H{
		"running":  status.Running,
		"adapters": status.Adapters,
		"limiter":  limiterStats,
	})
}

func (s *Server) handleScraperTypes(c *gin.Context) {
	respondSuccess(c, http.StatusOK, gin.H{"types": s.scraper.AdapterNames()})
}

type startRequest struct {
	TriggeredBy string `json:"triggeredBy"`
}

func (s *Server) handleScraperStart(c *gin.Context) {
	var req startRequest
	_ = c.ShouldBindJSON(&req)

	if s.scraper.Status().Running {
		respondConflict(c, orchestrator.ErrAlreadyRunning.Error())
		return
	}
	go func() {
		if err := s.scraper.StartAll(context.Background(), domain.TriggerAPI, req.TriggeredBy); err != nil {
			s.log.Error("api: start all failed", "error", err.Error())
		}
	}()
	respondAccepted(c, gin.H{"started": true})
}

func (s *Server) handleScraperStartOne(c *gin.Context) {
	name := c.Param("name")
	var req startRequest
	_ = c.ShouldBindJSON(&req)

	known := false
	for _, n := range s.scraper.AdapterNames() {
		known = known || n == name
	}
	switch {
	case !known:
		respondNotFound(c, "adapter "+name)
	case s.scraper.Status().Running:
		respondConflict(c, orchestrator.ErrAlreadyRunning.Error())
	default:
		go func() {
			if err := s.scraper.StartSpecific(context.Background(), name, domain.TriggerAPI, req.TriggeredBy); err != nil {
				s.log.Error("api: start adapter failed", "adapter", name, "error", err.Error())
			}
		}()
		respondAccepted(c, gin.H{"started": true, "adapter": name})
	}
}

func (s *Server) handleScraperStop(c *gin.Context) {
	n := s.scraper.StopAll(c.Request.Context())
	respondSuccess(c, http.StatusOK, gin.H{"stopped": n})
}

func (s *Server) handleScraperLogs(c *gin.Context) {
	page := parseIntQuery(c, "page", 1)
	limit := parseIntQuery(c, "limit", 50)

	filter := runlog.ListFilter{
		AdapterName: c.Query("scraperName"),
		Status:      domain.RunStatus(c.Query("status")),
		Limit:       limit,
	}
	if start := c.Query("startDate"); start != "" {
		if t, err := time.Parse(time.RFC3339, start); err == nil {
			filter.Since = t
		}
	}

	logs, err := s.runLogs.List(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccessPaginated(c, http.StatusOK, logs, page, limit, int64(len(logs)))
}

func (s *Server) handleScraperLogByID(c *gin.Context) {
	log, err := s.runLogs.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, runlog.ErrNotFound) {
		respondNotFound(c, "run log")
		return
	}
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, log)
}

func (s *Server) handleScraperStats(c *gin.Context) {
	days := parseIntQuery(c, "days", 7)
	cutoff := time.Now().AddDate(0, 0, -days)

	summary, err := s.runLogs.Summary(c.Request.Context(), cutoff)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"days": days, "summary": summary})
}

func (s *Server) handleFileLogTail(c *gin.Context) {
	filename := c.Param("filename")
	maxLines := parseIntQuery(c, "maxLines", 500)

	lines, err := logger.TailFile(s.cfg.LogDir, filename, maxLines)
	if errors.Is(err, logger.ErrInvalidLogFilename) {
		respondNotFound(c, "log file")
		return
	}
	if err != nil {
		respondNotFound(c, "log file")
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"filename": filename, "lines": lines})
}

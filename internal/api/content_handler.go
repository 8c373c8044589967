package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/contentradar/scraper/internal/domain"
	"github.com/contentradar/scraper/internal/store"
)

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (s *Server) handleContentList(c *gin.Context) {
	filter := store.ListFilter{
		Page:         parseIntQuery(c, "page", 1),
		Limit:        parseIntQuery(c, "limit", 20),
		Category:     c.Query("type"),
		SourceHost:   c.Query("source"),
		Tags:         splitCSV(c.Query("tags")),
		Keywords:     splitCSV(c.Query("keywords")),
		Search:       c.Query("search"),
		Status:       c.Query("status"),
		MinRelevance: parseIntQuery(c, "minRelevance", 0),
		MaxAgeDays:   parseIntQuery(c, "maxAgeDays", 0),
		SortField:    c.Query("sort"),
		SortOrder:    c.Query("order"),
	}

	result, err := s.content.List(c.Request.Context(), filter)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccessPaginated(c, http.StatusOK, result.Records, filter.Page, filter.Limit, result.Total)
}

func (s *Server) handleContentGet(c *gin.Context) {
	rec, err := s.content.GetByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondNotFound(c, "content record")
		return
	}
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, rec)
}

func (s *Server) handleContentDelete(c *gin.Context) {
	err := s.content.DeleteByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		respondNotFound(c, "content record")
		return
	}
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": true})
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleContentSetStatus(c *gin.Context) {
	var req setStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		respondBadRequest(c, "status is required")
		return
	}

	err := s.content.SetStatus(c.Request.Context(), c.Param("id"), domain.Status(req.Status))
	switch {
	case errors.Is(err, store.ErrNotFound):
		respondNotFound(c, "content record")
	case errors.Is(err, store.ErrStore):
		respondBadRequest(c, err.Error())
	case err != nil:
		respondInternalError(c, err.Error())
	default:
		respondSuccess(c, http.StatusOK, gin.H{"status": req.Status})
	}
}

func (s *Server) handleContentCleanup(c *gin.Context) {
	deleted, err := s.content.Cleanup(c.Request.Context(), s.cfg.ContentMaxAgeDays)
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, gin.H{"deleted": deleted})
}

func (s *Server) handleContentStatsOverview(c *gin.Context) {
	overview, err := s.content.Overview(c.Request.Context())
	if err != nil {
		respondInternalError(c, err.Error())
		return
	}
	respondSuccess(c, http.StatusOK, overview)
}

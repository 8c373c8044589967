// Package api implements the admin HTTP API: scraper control, run logs, and
// content browsing, adapted from the crawler's gin-based response-helper
// style down to the error envelope spec.md §6 defines.
package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIntQuery parses a query param as an int, falling back to def on
// missing/invalid input.
func parseIntQuery(c *gin.Context, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// apiError is the body shape spec.md §6 requires for every non-2xx response.
type apiError struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	c.JSON(status, apiError{
		Success: false,
		Error:   errorBody{Message: message, Code: code, Status: status, Details: details},
	})
}

// apiSuccess is the body shape spec.md §6 requires for every 2xx response:
// {success: bool, data, pagination?}.
type apiSuccess struct {
	Success    bool        `json:"success"`
	Data       any         `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// respondSuccess sends a 2xx envelope carrying data with no pagination.
func respondSuccess(c *gin.Context, status int, data any) {
	c.JSON(status, apiSuccess{Success: true, Data: data})
}

// respondSuccessPaginated sends a 2xx envelope carrying a page of data plus
// the pagination block spec.md §6 names for list endpoints.
func respondSuccessPaginated(c *gin.Context, status int, data any, page, limit int, total int64) {
	c.JSON(status, apiSuccess{
		Success:    true,
		Data:       data,
		Pagination: &pagination{Page: page, Limit: limit, Total: total},
	})
}

func respondBadRequest(c *gin.Context, message string) {
	respondError(c, http.StatusBadRequest, "bad_request", message, nil)
}

func respondNotFound(c *gin.Context, resource string) {
	respondError(c, http.StatusNotFound, "not_found", resource+" not found", nil)
}

func respondConflict(c *gin.Context, message string) {
	respondError(c, http.StatusConflict, "conflict", message, nil)
}

func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, "internal_error", message, nil)
}

// respondAccepted sends the 202 spec.md §6 requires for every asynchronous
// start, wrapped in the same success envelope as every other 2xx response.
func respondAccepted(c *gin.Context, data any) {
	respondSuccess(c, http.StatusAccepted, data)
}

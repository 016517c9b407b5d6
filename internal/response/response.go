package response

import (
	"net/http"

	"lms-service/internal/apperr"

	"github.com/gin-gonic/gin"
)

// Envelope is the standard API response shape:
// { success, message?, data, pagination?, statistics?, count? }.
type Envelope struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message,omitempty"`
	Code       string      `json:"code,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Statistics interface{} `json:"statistics,omitempty"`
	Count      *int        `json:"count,omitempty"`
}

// Pagination is the pagination block returned by list endpoints.
type Pagination struct {
	CurrentPage    int   `json:"currentPage"`
	TotalPages     int   `json:"totalPages"`
	TotalResults   int64 `json:"totalResults"`
	ResultsPerPage int   `json:"resultsPerPage"`
}

// NewPagination computes the block from page/limit and the filtered total.
func NewPagination(page, limit int, total int64) *Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &Pagination{
		CurrentPage:    page,
		TotalPages:     totalPages,
		TotalResults:   total,
		ResultsPerPage: limit,
	}
}

func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Message: message, Data: data})
}

func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Message: message, Data: data})
}

// Page sends a list response with pagination and an optional statistics block.
func Page(c *gin.Context, data interface{}, pagination *Pagination, statistics interface{}) {
	c.JSON(http.StatusOK, Envelope{
		Success:    true,
		Data:       data,
		Pagination: pagination,
		Statistics: statistics,
	})
}

// Counted sends a list response with a top-level count.
func Counted(c *gin.Context, data interface{}, count int) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data, Count: &count})
}

// Error translates any error into the envelope, mapping typed application
// errors to their status and everything else to a 500.
func Error(c *gin.Context, err error) {
	appErr := apperr.From(err)
	c.JSON(appErr.Status, Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

// AbortError is Error for middleware: it also stops the handler chain.
func AbortError(c *gin.Context, err error) {
	appErr := apperr.From(err)
	c.AbortWithStatusJSON(appErr.Status, Envelope{
		Success: false,
		Message: appErr.Message,
		Code:    appErr.Code,
	})
}

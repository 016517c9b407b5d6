package handlers

import (
	"fmt"
	"strconv"

	"lms-service/internal/middleware"
	"lms-service/internal/response"
	"lms-service/internal/service"

	"github.com/gin-gonic/gin"
)

type ExamQuestionHandler struct {
	Service *service.ExamQuestionService
}

func NewExamQuestionHandler(s *service.ExamQuestionService) *ExamQuestionHandler {
	return &ExamQuestionHandler{Service: s}
}

// Create handles POST /exam-questions.
func (h *ExamQuestionHandler) Create(c *gin.Context) {
	var in service.QuestionInput
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	question, err := h.Service.Create(c.Request.Context(), middleware.UserID(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Exam question created successfully", question)
}

// List handles GET /exam-questions with filtering, search, sorting and
// pagination.
func (h *ExamQuestionHandler) List(c *gin.Context) {
	query := service.QuestionListQuery{
		Page:       intQuery(c, "page", 1),
		Limit:      intQuery(c, "limit", 20),
		StageID:    c.Query("stageId"),
		SubjectID:  c.Query("subjectId"),
		CourseID:   c.Query("courseId"),
		Difficulty: c.Query("difficulty"),
		IsActive:   c.Query("isActive"),
		Search:     c.Query("search"),
		SortBy:     c.DefaultQuery("sortBy", "createdAt"),
		SortOrder:  c.DefaultQuery("sortOrder", "desc"),
	}

	views, total, summary, err := h.Service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Page(c, views, response.NewPagination(query.Page, query.Limit, total), summary)
}

// GetByID handles GET /exam-questions/:id.
func (h *ExamQuestionHandler) GetByID(c *gin.Context) {
	view, err := h.Service.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", view)
}

// Update handles PUT /exam-questions/:id.
func (h *ExamQuestionHandler) Update(c *gin.Context) {
	var in service.QuestionUpdateInput
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.Service.Update(c.Request.Context(), middleware.UserID(c), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Exam question updated successfully", view)
}

// Delete handles DELETE /exam-questions/:id.
func (h *ExamQuestionHandler) Delete(c *gin.Context) {
	if err := h.Service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Exam question deleted successfully", nil)
}

// ToggleStatus handles PATCH /exam-questions/:id/toggle-status.
func (h *ExamQuestionHandler) ToggleStatus(c *gin.Context) {
	question, err := h.Service.ToggleStatus(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	message := "Question deactivated successfully"
	if question.IsActive {
		message = "Question activated successfully"
	}
	response.OK(c, message, question)
}

// ListByCourse handles GET /exam-questions/course/:courseId.
func (h *ExamQuestionHandler) ListByCourse(c *gin.Context) {
	isActive := c.DefaultQuery("isActive", "true") == "true"

	views, err := h.Service.ListByCourse(c.Request.Context(), c.Param("courseId"), isActive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Counted(c, views, len(views))
}

// BulkCreate handles POST /exam-questions/bulk.
func (h *ExamQuestionHandler) BulkCreate(c *gin.Context) {
	var body struct {
		Questions []service.QuestionInput `json:"questions"`
	}
	if err := bindJSON(c, &body); err != nil {
		response.Error(c, err)
		return
	}

	questions, err := h.Service.BulkCreate(c.Request.Context(), middleware.UserID(c), body.Questions)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fmt.Sprintf("%d exam questions created successfully", len(questions)), questions)
}

// Statistics handles GET /exam-questions/statistics with optional
// course/stage/subject path filters.
func (h *ExamQuestionHandler) Statistics(c *gin.Context) {
	stats, err := h.Service.Statistics(c.Request.Context(), c.Param("courseId"), c.Param("stageId"), c.Param("subjectId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "", stats)
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}

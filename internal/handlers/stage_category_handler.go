package handlers

import (
	"lms-service/internal/response"
	"lms-service/internal/service"

	"github.com/gin-gonic/gin"
)

type StageCategoryHandler struct {
	Service *service.StageCategoryService
}

func NewStageCategoryHandler(s *service.StageCategoryService) *StageCategoryHandler {
	return &StageCategoryHandler{Service: s}
}

// categoryPagination is the nested pagination block of the category list
// response.
type categoryPagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// List handles GET /stage-categories (public).
func (h *StageCategoryHandler) List(c *gin.Context) {
	query := service.CategoryListQuery{
		Page:   intQuery(c, "page", 1),
		Limit:  intQuery(c, "limit", 50),
		Status: c.Query("status"),
		Search: c.Query("search"),
	}

	page, err := h.Service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}

	pages := int((page.Total + int64(query.Limit) - 1) / int64(query.Limit))
	response.OK(c, "Categories fetched successfully", gin.H{
		"categories": page.Categories,
		"pagination": categoryPagination{
			Page:  query.Page,
			Limit: query.Limit,
			Total: page.Total,
			Pages: pages,
		},
	})
}

// Get handles GET /stage-categories/:id (public).
func (h *StageCategoryHandler) Get(c *gin.Context) {
	view, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category fetched", gin.H{"category": view})
}

// Create handles POST /stage-categories (admin).
func (h *StageCategoryHandler) Create(c *gin.Context) {
	var in service.CategoryInput
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.Service.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Category created", gin.H{"category": view})
}

// Update handles PUT /stage-categories/:id (admin).
func (h *StageCategoryHandler) Update(c *gin.Context) {
	var in service.CategoryUpdateInput
	if err := bindJSON(c, &in); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.Service.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category updated", gin.H{"category": view})
}

// Delete handles DELETE /stage-categories/:id (admin).
func (h *StageCategoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category deleted", gin.H{"id": id})
}

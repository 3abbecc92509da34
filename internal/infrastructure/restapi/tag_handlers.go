package restapi

import (
	"net/http"

	"portfolio_tracker/internal/app/port"
	"portfolio_tracker/internal/domain/entity"

	"github.com/gin-gonic/gin"
)

// TagHandler handles tag CRUD.
type TagHandler struct {
	tags port.TagService
}

func NewTagHandler(tags port.TagService) *TagHandler {
	return &TagHandler{tags: tags}
}

// GET /api/tags
func (h *TagHandler) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tags)
}

// POST /api/tags
func (h *TagHandler) Create(c *gin.Context) {
	var in entity.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, invalidBody(err))
		return
	}
	tag, err := h.tags.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, tag)
}

// PUT /api/tags/:id
func (h *TagHandler) Update(c *gin.Context) {
	var in entity.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		respondError(c, invalidBody(err))
		return
	}
	tag, err := h.tags.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tag)
}

// DELETE /api/tags/:id
func (h *TagHandler) Delete(c *gin.Context) {
	if err := h.tags.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

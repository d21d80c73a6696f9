package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"invoice-console/internal/database"
)

type JournalHTTPHandler struct {
	journal database.Journal
}

func NewJournalHTTPHandler(journal database.Journal) *JournalHTTPHandler {
	return &JournalHTTPHandler{journal: journal}
}

type JournalQuery struct {
	Limit int `form:"limit,default=50" binding:"min=1,max=500"`
}

func (h *JournalHTTPHandler) ListSubmissions(c *gin.Context) {
	var query JournalQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters: "+err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	records, err := h.journal.Recent(ctx, query.Limit)
	if err != nil {
		handleError(c, err, nil)
		return
	}
	c.JSON(http.StatusOK, successResponse("Submissions retrieved successfully", records))
}

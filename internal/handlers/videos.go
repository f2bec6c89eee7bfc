package handlers

import (
	"context"
	"net/http"
	"strconv"

	"formcheck/internal/database"
	"formcheck/internal/models"

	"github.com/gin-gonic/gin"
)

// VideoLister pages through the ledger.
type VideoLister interface {
	List(ctx context.Context, q database.ListQuery) ([]models.ReceivedVideo, int64, error)
}

// GetVideosWithPage lists ledger rows. Query parameters: page, page_size,
// sort_by, sort_order, exercise, form.
func GetVideosWithPage(lister VideoLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		if lister == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Upload ledger is not configured"})
			return
		}

		page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
		if err != nil || page < 1 {
			page = 1
		}
		pageSize, err := strconv.Atoi(c.DefaultQuery("page_size", "10"))
		if err != nil || pageSize < 1 {
			pageSize = 10
		}
		if pageSize > 100 {
			pageSize = 100
		}

		videos, total, err := lister.List(c.Request.Context(), database.ListQuery{
			Exercise:  c.Query("exercise"),
			Form:      c.Query("form"),
			Page:      page,
			PageSize:  pageSize,
			SortBy:    c.DefaultQuery("sort_by", "id"),
			SortOrder: c.DefaultQuery("sort_order", "asc"),
		})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Error fetching videos", "details": err.Error()})
			return
		}
		if videos == nil {
			videos = []models.ReceivedVideo{}
		}

		c.JSON(http.StatusOK, gin.H{
			"total":     total,
			"page":      page,
			"page_size": pageSize,
			"videos":    videos,
		})
	}
}

package handlers

import (
	"net/http"
	"path/filepath"

	"formcheck/internal/dataset"
	"formcheck/internal/utils"

	"github.com/gin-gonic/gin"
)

type bucketSummary struct {
	Exercise  string  `json:"exercise"`
	Form      string  `json:"form"`
	Count     int     `json:"count"`
	AvgSizeMB float64 `json:"avg_size_mb"`
	StdSizeMB float64 `json:"std_size_mb"`
}

// DatasetOverview counts the stored videos per exercise/form bucket.
func (r *Receiver) DatasetOverview(c *gin.Context) {
	ov, err := dataset.Scan(filepath.Join(r.Root, dataset.DirName))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read dataset", "details": err.Error()})
		return
	}

	buckets := make([]bucketSummary, 0, len(ov.Buckets))
	for _, b := range ov.Buckets {
		avg, std := utils.SizeStatsMB(b.Sizes)
		buckets = append(buckets, bucketSummary{
			Exercise:  b.Exercise,
			Form:      b.Form,
			Count:     b.Count,
			AvgSizeMB: avg,
			StdSizeMB: std,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   ov.Total,
		"buckets": buckets,
	})
}

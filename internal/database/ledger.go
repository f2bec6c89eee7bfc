package database

import (
	"context"
	"strings"
	"time"

	"formcheck/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const timeLayout = "2006-01-02 15:04:05"

// ListQuery filters and pages ledger rows.
type ListQuery struct {
	Exercise  string
	Form      string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// sortColumns maps accepted sort keys to column names.
var sortColumns = map[string]string{
	"id":          "id",
	"exercise":    "exercise",
	"form":        "form",
	"file_name":   "file_name",
	"size_bytes":  "size_bytes",
	"uploads":     "uploads",
	"createtime":  "create_time",
	"create_time": "create_time",
	"updatetime":  "update_time",
	"update_time": "update_time",
}

// Ledger keeps one row per stored file.
type Ledger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db, now: time.Now}
}

// Record inserts v, or updates the row already holding v.StoredPath so the
// ledger follows the file system's last-write-wins.
func (l *Ledger) Record(ctx context.Context, v *models.ReceivedVideo) error {
	ts := l.now().Format(timeLayout)
	v.CreateTime = ts
	v.UpdateTime = ts
	v.IsDeleted = false
	if v.Uploads == 0 {
		v.Uploads = 1
	}

	return l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stored_path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"size_bytes":  v.SizeBytes,
			"client_ip":   v.ClientIP,
			"update_time": ts,
			"is_deleted":  false,
			"uploads":     gorm.Expr("received_videos.uploads + 1"),
		}),
	}).Create(v).Error
}

// List returns one page of rows and the total matching count.
func (l *Ledger) List(ctx context.Context, q ListQuery) ([]models.ReceivedVideo, int64, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}

	query := l.db.WithContext(ctx).Model(&models.ReceivedVideo{}).Where("is_deleted = ?", false)
	if q.Exercise != "" {
		query = query.Where("exercise = ?", q.Exercise)
	}
	if q.Form != "" {
		query = query.Where("form = ?", q.Form)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[strings.ToLower(q.SortBy)]
	if !ok {
		column = "id"
	}
	order := strings.ToLower(q.SortOrder)
	if order != "asc" && order != "desc" {
		order = "asc"
	}

	var videos []models.ReceivedVideo
	err := query.Order(column + " " + order).
		Offset((q.Page - 1) * q.PageSize).
		Limit(q.PageSize).
		Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}
	return videos, total, nil
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"formcheck/internal/database"
	"formcheck/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestDatasetOverview(t *testing.T) {
	root := t.TempDir()
	write := func(rel string, size int) {
		p := filepath.Join(root, "dataset", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0755))
		require.NoError(t, os.WriteFile(p, make([]byte, size), 0644))
	}
	write("squat/correct/a.mp4", 1<<20)
	write("squat/correct/b.mp4", 3<<20)
	write("deadlift/incorrect/c.mov", 1<<20)

	r := newTestRouter(NewReceiver(root), RouteOptions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dataset", nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Total   int             `json:"total"`
		Buckets []bucketSummary `json:"buckets"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Total)
	require.Len(t, resp.Buckets, 2)
	assert.Equal(t, bucketSummary{Exercise: "deadlift", Form: "incorrect", Count: 1, AvgSizeMB: 1}, resp.Buckets[0])
	assert.Equal(t, "squat", resp.Buckets[1].Exercise)
	assert.Equal(t, 2, resp.Buckets[1].Count)
	assert.Equal(t, 2.0, resp.Buckets[1].AvgSizeMB)
	assert.Equal(t, 1.4142, resp.Buckets[1].StdSizeMB)
}

func TestDatasetOverviewEmpty(t *testing.T) {
	r := newTestRouter(NewReceiver(t.TempDir()), RouteOptions{})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/dataset", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":0,"buckets":[]}`, w.Body.String())
}

func TestGetVideosWithPage(t *testing.T) {
	t.Run("Ledger Disabled", func(t *testing.T) {
		r := newTestRouter(NewReceiver(t.TempDir()), RouteOptions{})
		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/videos", nil)
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("Lists Ledger Rows", func(t *testing.T) {
		db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
		require.NoError(t, err)
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sqlDB.SetMaxOpenConns(1)
		defer sqlDB.Close()
		require.NoError(t, database.Migrate(db))

		ledger := database.NewLedger(db)
		for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
			require.NoError(t, ledger.Record(context.Background(), &models.ReceivedVideo{
				Exercise: "squat", Form: "correct", FileName: name,
				StoredPath: "dataset/squat/correct/" + name,
			}))
		}

		rcv := NewReceiver(t.TempDir())
		rcv.Ledger = ledger
		r := newTestRouter(rcv, RouteOptions{Videos: ledger})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/videos?page=1&page_size=2&sort_by=file_name&sort_order=desc&exercise=squat", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Total    int64                  `json:"total"`
			Page     int                    `json:"page"`
			PageSize int                    `json:"page_size"`
			Videos   []models.ReceivedVideo `json:"videos"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.EqualValues(t, 3, resp.Total)
		assert.Equal(t, 2, resp.PageSize)
		require.Len(t, resp.Videos, 2)
		assert.Equal(t, "c.mp4", resp.Videos[0].FileName)
	})
}

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path/filepath"

	"formcheck/internal/dataset"
	"formcheck/internal/models"

	"github.com/gin-gonic/gin"
)

// VideoLedger records accepted uploads.
type VideoLedger interface {
	Record(ctx context.Context, v *models.ReceivedVideo) error
}

// Mirror copies a stored file, addressed by its path relative to the
// receiver root, somewhere else.
type Mirror interface {
	Mirror(ctx context.Context, relPath string) error
}

// Receiver serves the upload endpoint and the read-only views of what it has
// stored. Ledger, Mirror and Thumbnail are optional.
type Receiver struct {
	Root      string
	Ledger    VideoLedger
	Mirror    Mirror
	Thumbnail func(videoPath, relPath string) error

	// background runs post-store work; tests replace it to run inline.
	background func(func())
}

func NewReceiver(root string) *Receiver {
	return &Receiver{Root: root, background: func(f func()) { go f() }}
}

// ReceiveUpload accepts a multipart form with a "video" file and the
// "exercise" and "form" fields, and stores the file under
// dataset/<exercise>/<form>/<original-filename>.
func (r *Receiver) ReceiveUpload(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "Upload too large", "details": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"message": "Expected a multipart/form-data upload", "details": err.Error()})
		return
	}

	// Exactly one file part, named video.
	if mf := c.Request.MultipartForm; mf != nil {
		for field, headers := range mf.File {
			if field != "video" || len(headers) != 1 {
				c.JSON(http.StatusBadRequest, gin.H{
					"message": "No file uploaded or file was rejected.",
					"details": fmt.Sprintf("unexpected file field %q (%d part(s)); exactly one \"video\" file is accepted", field, len(headers)),
				})
				return
			}
		}
	}

	exercise := c.PostForm("exercise")
	form := c.PostForm("form")
	if exercise == "" || form == "" {
		log.Printf("Validation Error: Exercise and form type are required.")
		c.JSON(http.StatusBadRequest, gin.H{"message": "Exercise and form type are required in the request body."})
		return
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "No file uploaded or file was rejected.", "details": err.Error()})
		return
	}

	name := dataset.BaseName(fileHeader.Filename)
	if err := dataset.ValidateFilename(name); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Only .mp4 and .mov video files are allowed!", "details": err.Error()})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to read uploaded file", "details": err.Error()})
		return
	}
	defer src.Close()

	relPath, size, err := dataset.Store(r.Root, exercise, form, name, src)
	if err != nil {
		if errors.Is(err, dataset.ErrInvalid) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid upload", "details": err.Error()})
			return
		}
		log.Printf("Failed to store upload: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to save file", "details": err.Error()})
		return
	}
	log.Printf("File received and saved to: %s", relPath)

	if r.Ledger != nil {
		row := &models.ReceivedVideo{
			Exercise:   exercise,
			Form:       form,
			FileName:   name,
			StoredPath: relPath,
			SizeBytes:  size,
			ClientIP:   c.ClientIP(),
		}
		if err := r.Ledger.Record(c.Request.Context(), row); err != nil {
			log.Printf("Warning: failed to record %s in ledger: %v", relPath, err)
		}
	}
	r.afterStore(relPath)

	c.JSON(http.StatusOK, gin.H{"message": "File uploaded successfully", "path": relPath})
}

// afterStore runs the optional best-effort follow-ups for a stored file.
func (r *Receiver) afterStore(relPath string) {
	if r.Thumbnail == nil && r.Mirror == nil {
		return
	}
	run := r.background
	if run == nil {
		run = func(f func()) { go f() }
	}
	videoPath := filepath.Join(r.Root, filepath.FromSlash(relPath))
	run(func() {
		if r.Thumbnail != nil {
			if err := r.Thumbnail(videoPath, relPath); err != nil {
				log.Printf("Warning: thumbnail for %s failed: %v", relPath, err)
			}
		}
		if r.Mirror != nil {
			if err := r.Mirror.Mirror(context.Background(), relPath); err != nil {
				log.Printf("Warning: mirror of %s failed: %v", relPath, err)
			}
		}
	})
}

package handlers

import (
	"net/http"
	"time"

	"formcheck/internal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TokenHeader carries the optional shared upload token.
const TokenHeader = "X-Upload-Token"

// RouteOptions configures the receiver's middleware.
type RouteOptions struct {
	CORSOrigins     []string
	MaxUploadBytes  int64
	UploadTokenHash string
	Videos          VideoLister
}

// SetupRoutes registers the receiver endpoints on r.
func SetupRoutes(r *gin.Engine, rcv *Receiver, opts RouteOptions) {
	r.Use(RequestID())
	r.Use(corsMiddleware(opts.CORSOrigins))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	upload := []gin.HandlerFunc{}
	if opts.MaxUploadBytes > 0 {
		upload = append(upload, MaxBodySize(opts.MaxUploadBytes))
	}
	if opts.UploadTokenHash != "" {
		upload = append(upload, RequireUploadToken(opts.UploadTokenHash))
	}
	upload = append(upload, rcv.ReceiveUpload)
	r.POST("/upload", upload...)

	r.GET("/dataset", rcv.DatasetOverview)
	r.GET("/videos", GetVideosWithPage(opts.Videos))
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", TokenHeader},
		ExposeHeaders: []string{"X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

// RequestID tags every request with an X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// MaxBodySize limits the size of the request body.
func MaxBodySize(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

// RequireUploadToken rejects requests whose X-Upload-Token does not match the
// bcrypt hash.
func RequireUploadToken(hash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !utils.CheckToken(c.GetHeader(TokenHeader), hash) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid upload token"})
			return
		}
		c.Next()
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"formcheck/internal/config"
	"formcheck/internal/database"
	"formcheck/internal/handlers"
	"formcheck/internal/mirror"
	"formcheck/internal/utils"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload receiver",
	Long: `Run the HTTP receiver. Uploaded videos are written to
<root>/dataset/<exercise>/<form>/<filename>. Configuration comes from the
environment (or a .env file); flags override it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.ListenPort, _ = cmd.Flags().GetString("port")
		}
		if cmd.Flags().Changed("root") {
			cfg.ReceiverRoot, _ = cmd.Flags().GetString("root")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runServe(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "3000", "port to listen on")
	serveCmd.Flags().String("root", ".", "directory that holds dataset/")
}

// newReceiver wires the optional ledger, mirror and thumbnails into a
// receiver.
func newReceiver(ctx context.Context, cfg *config.Config) (*handlers.Receiver, handlers.RouteOptions, error) {
	rcv := handlers.NewReceiver(cfg.ReceiverRoot)
	opts := handlers.RouteOptions{
		CORSOrigins:     cfg.CORSOrigins,
		MaxUploadBytes:  cfg.MaxUploadBytes,
		UploadTokenHash: cfg.UploadTokenHash,
	}

	if err := database.InitDB(cfg); err != nil {
		return nil, opts, fmt.Errorf("failed to connect to database: %w", err)
	}
	if database.DB != nil {
		ledger := database.NewLedger(database.DB)
		rcv.Ledger = ledger
		opts.Videos = ledger
		log.Println("Upload ledger enabled")
	}

	if cfg.S3Bucket != "" {
		m, err := mirror.NewFromEnv(ctx, cfg.S3Bucket, cfg.AWSRegion, cfg.ReceiverRoot)
		if err != nil {
			return nil, opts, err
		}
		rcv.Mirror = m
		log.Printf("Mirroring uploads to s3://%s", cfg.S3Bucket)
	}

	if cfg.Thumbnails {
		if err := utils.CheckFFmpeg(cfg.FFmpegPath); err != nil {
			log.Printf("Warning: thumbnails disabled: %v", err)
		} else {
			rcv.Thumbnail = func(videoPath, relPath string) error {
				return utils.GenerateThumbnail(videoPath, utils.ThumbnailPath(cfg.ReceiverRoot, relPath), 1, cfg.FFmpegPath)
			}
		}
	}
	return rcv, opts, nil
}

func runServe(ctx context.Context, cfg *config.Config) error {
	rcv, opts, err := newReceiver(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	r := gin.Default()
	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("Warning: Failed to set trusted proxies: %v", err)
	}
	handlers.SetupRoutes(r, rcv, opts)

	srv := &http.Server{
		Addr:              ":" + cfg.ListenPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	log.Printf("Server listening on port %s", cfg.ListenPort)
	for _, ip := range localIPv4() {
		log.Printf("Reachable at http://%s:%s", ip, cfg.ListenPort)
	}

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// localIPv4 lists the non-loopback IPv4 addresses of this host.
func localIPv4() []string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return nil
	}
	var out []string
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok || ipnet.IP.IsLoopback() {
			continue
		}
		if ip4 := ipnet.IP.To4(); ip4 != nil {
			out = append(out, ip4.String())
		}
	}
	return out
}

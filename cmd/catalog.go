package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/akhil-is-watching/securechain/internal/catalog"
	"github.com/akhil-is-watching/securechain/internal/configs"
	"github.com/akhil-is-watching/securechain/internal/kv"
	"github.com/akhil-is-watching/securechain/internal/ui"
)

var (
	catalogListen     string
	catalogGCInterval time.Duration
)

func init() {
	catalogServeCmd.Flags().StringVar(&catalogListen, "listen", "", "address to listen on (default is catalog.listen)")
	catalogServeCmd.Flags().DurationVar(&catalogGCInterval, "gc-interval", 10*time.Minute, "how often to compact the catalog database")
	catalogCmd.AddCommand(catalogServeCmd)
}

// resetCatalogCommandState resets the catalog command's global state for testing.
func resetCatalogCommandState() {
	catalogListen = ""
	catalogGCInterval = 10 * time.Minute
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Run the document catalog",
}

var catalogServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local catalog over HTTP",
	Long: `Serves the catalog database in the data directory over HTTP so other
machines can point catalog.url at it.

Runs until interrupted.

Examples:
  securechain catalog serve
  securechain catalog serve --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: runCatalogServe,
}

func runCatalogServe(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting catalog serve command")

	listen := catalogListen
	if listen == "" {
		listen = configs.GlobalConfig.Catalog.Listen
	}

	db, err := kv.Open(kv.Config{Path: configs.UserSettings.CatalogPath(), Logger: Logger})
	if err != nil {
		return Logger.ErrorfAndReturn("failed to open catalog: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			Logger.Warnf("Failed to close catalog: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go collectGarbage(ctx, db, catalogGCInterval)

	server := catalog.NewServer(catalog.NewBadger(db), Logger)
	fmt.Printf("%s Serving catalog on %s\n", ui.MarkDone.String(), ui.Highlight.Sprint(listen))
	if err := server.Start(ctx, listen); err != nil {
		return Logger.ErrorfAndReturn("catalog server stopped: %v", err)
	}
	Logger.Infof("Catalog server stopped")
	return nil
}

// collectGarbage runs value log compaction every interval until ctx is done.
func collectGarbage(ctx context.Context, db *kv.Store, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := db.Clean(); err != nil {
				Logger.Warnf("Catalog compaction failed: %v", err)
			}
		}
	}
}

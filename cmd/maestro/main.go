package main

import (
	"context"
	"embed"
	"flag"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"

	"github.com/creatorbridge/maestro/internal/app"
	"github.com/creatorbridge/maestro/pkg/automation/support/util/logger"
)

// embeddedConfig embeds the application's YAML configuration file.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// migrationsFS bundles the audit store schema migrations into the binary.
//
//go:embed all:resources/migrations
var migrationsFS embed.FS

func main() {
	campaignID := flag.String("campaign", "cmp_demo", "campaign to run the automation for")
	userID := flag.String("user", "usr_operator", "user starting the run")
	mode := flag.String("mode", "AUTOMATIC", "session mode: AUTOMATIC or MANUAL")
	store := flag.String("store", "memory", "audit store backend: memory or sql")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Cancelling the automation run...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	app.RunApplication(ctx, envFilePath, embeddedConfig, migrationsFS, app.Options{
		CampaignID: *campaignID,
		UserID:     *userID,
		Mode:       *mode,
		Store:      *store,
	})
}

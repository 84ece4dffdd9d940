// Package app assembles the Maestro automation engine into a runnable
// application using uber-fx.
package app

import (
	"bufio"
	"context"
	"embed"
	"fmt"
	"os"
	"time"

	"go.uber.org/fx"

	gormadapter "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm"
	gormmysql "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm/mysql"
	gormpostgres "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm/postgres"
	gormsqlite "github.com/creatorbridge/maestro/pkg/automation/adapter/database/gorm/sqlite"
	usecase "github.com/creatorbridge/maestro/pkg/automation/core/application/usecase"
	capability "github.com/creatorbridge/maestro/pkg/automation/core/capability"
	config "github.com/creatorbridge/maestro/pkg/automation/core/config"
	model "github.com/creatorbridge/maestro/pkg/automation/core/domain/model"
	archive "github.com/creatorbridge/maestro/pkg/automation/infrastructure/archive"
	inframetrics "github.com/creatorbridge/maestro/pkg/automation/infrastructure/metrics"
	migration "github.com/creatorbridge/maestro/pkg/automation/infrastructure/migration"
	inmemory "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/inmemory"
	sqlrepo "github.com/creatorbridge/maestro/pkg/automation/infrastructure/repository/sql"
	listener "github.com/creatorbridge/maestro/pkg/automation/listener"
	listenerlogging "github.com/creatorbridge/maestro/pkg/automation/listener/logging"
	notification "github.com/creatorbridge/maestro/pkg/automation/listener/notification"
	logger "github.com/creatorbridge/maestro/pkg/automation/support/util/logger"

	integration "github.com/creatorbridge/maestro/internal/integration"
)

// migrationsPath is where the embedded migration FS mounts its SQL files.
const migrationsPath = "resources/migrations"

// Options carries the command line selections into the application.
type Options struct {
	CampaignID string
	UserID     string
	Mode       string
	// Store selects the audit store backend: "memory" or "sql".
	Store string
}

// RunApplication sets up and runs the automation application.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS, opts Options) {
	cfg, err := config.LoadConfig(envFilePath, embeddedConfig)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Maestro.System.Logging.Level)

	storeOptions := storageBackendOptions(opts.Store)

	archiveOptions := fx.Options()
	if cfg.Maestro.Archive.Enabled {
		archiveOptions = archive.Module
	}

	app := fx.New(
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),
		config.Module,
		inframetrics.Module,
		capability.Module,
		listener.Module,
		listenerlogging.Module,
		notification.Module,
		integration.Module,
		usecase.Module,
		storeOptions,
		archiveOptions,

		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, p runParams) {
			startAutomationRun(lc, shutdowner, p, migrationsFS, opts, appCtx)
		}),
	)

	app.Run()

	if app.Err() != nil {
		logger.Fatalf("Application run failed: %v", app.Err())
	}
}

// storageBackendOptions selects the repository modules for the audit store.
func storageBackendOptions(store string) fx.Option {
	switch store {
	case "sql":
		return fx.Options(
			gormsqlite.Module,
			gormpostgres.Module,
			gormmysql.Module,
			gormadapter.Module,
			sqlrepo.Module,
			migration.Module,
		)
	default:
		return inmemory.Module
	}
}

// runParams collects the injected collaborators of the automation run.
type runParams struct {
	fx.In
	Service  usecase.AutomationService
	Sandbox  *integration.Sandbox
	Migrator migration.Migrator `optional:"true"`
	Config   *config.Config
}

// startAutomationRun registers the lifecycle hook that drives one automation
// session from start to report.
func startAutomationRun(lc fx.Lifecycle, shutdowner fx.Shutdowner, p runParams, migrationsFS embed.FS, opts Options, appCtx context.Context) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if p.Migrator != nil {
				if err := p.Migrator.Up(ctx, migrationsFS, migrationsPath); err != nil {
					return err
				}
			}
			go func() {
				defer func() {
					if r := recover(); r != nil {
						logger.Errorf("Panic recovered in automation run: %v", r)
					}
					if err := shutdowner.Shutdown(); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()
				runSession(appCtx, p.Service, p.Sandbox, opts)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Infof("Application shutting down.")
			return nil
		},
	})
}

// runSession drives one session to a terminal state and logs the report.
func runSession(appCtx context.Context, service usecase.AutomationService, sandbox *integration.Sandbox, opts Options) {
	mode, err := model.ParseSessionMode(opts.Mode)
	if err != nil {
		logger.Errorf("Invalid mode '%s': %v", opts.Mode, err)
		return
	}

	observer := listener.StateObserverFunc(func(state *model.CampaignState) {
		logger.Infof("Campaign '%s' state: status=%s creators=%d contracts=%d communications=%d",
			state.CampaignID, state.Status, len(state.SelectedCreators), len(state.SentContracts), len(state.Communications))
	})

	sessionID, err := service.StartAutomation(context.Background(), opts.CampaignID, opts.UserID, mode, observer)
	if err != nil {
		logger.Errorf("Failed to start automation for campaign '%s': %v", opts.CampaignID, err)
		return
	}
	logger.Infof("Started automation session '%s' (mode: %s).", sessionID, mode)

	// The sandbox roster carries each creator's channel; hand it to the run as
	// the operator preference sheet so contracts and outreach have creators to
	// work with.
	if prefs := sandbox.ContactPreferences(opts.CampaignID); len(prefs) > 0 {
		if err := service.SetCreatorPreferences(context.Background(), sessionID, prefs); err != nil {
			logger.Warnf("Failed to apply contact preferences for session '%s': %v", sessionID, err)
		}
	}

	// A SIGINT/SIGTERM cancels the run cooperatively; the session still
	// reaches a terminal state before the app exits.
	go func() {
		<-appCtx.Done()
		if err := service.CancelAutomation(context.Background(), sessionID); err != nil {
			logger.Debugf("Cancel on shutdown: %v", err)
		}
	}()

	if mode == model.ModeManual {
		go promptManualAdvance(appCtx, service, sessionID)
	}

	session, err := service.AwaitCompletion(context.Background(), sessionID)
	if err != nil {
		logger.Errorf("Failed to await session '%s': %v", sessionID, err)
		return
	}

	logger.Infof("Session '%s' finished with status %s. Counters: %+v", session.ID, session.Status, session.Counters)
	if len(session.ErrorLog) > 0 {
		logger.Warnf("Session '%s' recorded %d error(s); last: %s", session.ID, len(session.ErrorLog), session.ErrorLog[len(session.ErrorLog)-1].ErrorMessage)
	}

	report, err := service.ComputeReport(context.Background(), sessionID)
	if err != nil {
		logger.Errorf("Failed to compute report for session '%s': %v", sessionID, err)
		return
	}
	logger.Infof("Report: steps %d/%d completed, successRate=%.1f%%, efficiency=%.2f, duration=%dms",
		report.CompletedSteps, report.TotalSteps, report.SuccessRate, report.CommunicationEfficiency, report.TotalDurationMs)
}

// promptManualAdvance waits for the session to halt after creator intake,
// then blocks on operator confirmation before releasing the pipeline.
func promptManualAdvance(appCtx context.Context, service usecase.AutomationService, sessionID string) {
	for {
		select {
		case <-appCtx.Done():
			return
		case <-time.After(100 * time.Millisecond):
		}
		session, err := service.GetAutomationStatus(context.Background(), sessionID)
		if err != nil {
			logger.Errorf("Failed to poll session '%s': %v", sessionID, err)
			return
		}
		if session.Status.IsTerminal() {
			return
		}
		if session.Status == model.SessionStatusCreatorsLoaded {
			break
		}
	}

	fmt.Printf("Session %s halted after creator intake. Press Enter to continue with contracts and outreach...\n", sessionID)
	if _, err := bufio.NewReader(os.Stdin).ReadString('\n'); err != nil {
		logger.Warnf("Failed to read operator confirmation: %v", err)
	}
	if err := service.AdvanceManualStage(context.Background(), sessionID); err != nil {
		logger.Errorf("Failed to advance session '%s': %v", sessionID, err)
	}
}

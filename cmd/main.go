package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpapi "github.com/taroverse/engagebot/internal/api/http"
	"github.com/taroverse/engagebot/internal/config"
	"github.com/taroverse/engagebot/internal/content"
	"github.com/taroverse/engagebot/internal/jobs"
	"github.com/taroverse/engagebot/internal/logger"
	"github.com/taroverse/engagebot/internal/repository/postgres"
	"github.com/taroverse/engagebot/internal/service"
	storage "github.com/taroverse/engagebot/internal/storage/minio"
	"github.com/taroverse/engagebot/internal/telegram"
	"github.com/taroverse/engagebot/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel, cfg.LogJSON)

	db, err := postgres.NewConnection(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("failed to initialize storage", "error", err)
	}
	defer db.Close()

	ledgerRepo := postgres.NewLedgerRepository(db)
	deliveryRepo := postgres.NewDeliveryRepository(db)
	actionRepo := postgres.NewActionRepository(db)

	minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		logger.Fatal("failed to create minio client", "error", err)
	}
	mediaStore, err := storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	if err != nil {
		logger.Fatal("failed to initialize media store", "error", err)
	}

	templates, err := content.Load(cfg.Drip.ContentFile, content.Vars{
		Channel:     cfg.Bot.ChannelUsername,
		ChannelLink: cfg.Bot.ChannelLink,
	})
	if err != nil {
		logger.Fatal("failed to load content", "error", err, "path", cfg.Drip.ContentFile)
	}

	tgClient, err := telegram.NewClient(cfg.Bot.Token, cfg.Bot.ChannelUsername, logger)
	if err != nil {
		logger.Fatal("failed to create telegram client", "error", err)
	}

	segmentService := service.NewSegment(tgClient, ledgerRepo, logger)
	nurtureService := service.NewNurture(ledgerRepo, deliveryRepo, segmentService, templates, tgClient, logger, cfg.Drip.Concurrency)
	quotaService := service.NewQuota(cfg.Quota.CardPerDay, cfg.Quota.DicePerDay)
	drawService := service.NewDraw(mediaStore, quotaService, logger)
	reportService := service.NewReport(ledgerRepo, actionRepo, deliveryRepo, logger)
	tokenManager := token.NewJWT(cfg.JWT.Secret)

	bot := telegram.NewBot(telegram.BotParams{
		Client:        tgClient,
		Ledger:        ledgerRepo,
		Actions:       actionRepo,
		Draws:         drawService,
		Quota:         quotaService,
		Report:        reportService,
		Content:       templates,
		AdminIDs:      cfg.Bot.AdminIDs,
		ChannelLink:   cfg.Bot.ChannelLink,
		UpdateTimeout: cfg.Bot.UpdateTimeout,
		Logger:        logger,
	})

	runner := jobs.NewRunner(logger)
	runner.Register(jobs.NurtureJob(cfg.Drip.Interval, nurtureService))
	if cfg.Drip.CardOfDayEnabled {
		runner.Register(jobs.CardOfDayJob(cfg.Drip.CardOfDayInterval, drawService, tgClient))
	}
	runner.Register(jobs.DigestJob(cfg.Drip.DigestInterval, reportService, tgClient, cfg.Bot.AdminIDs))
	runner.Register(jobs.ReminderJob(cfg.Drip.ReminderInterval, ledgerRepo, tgClient))
	runner.Start(ctx)

	apiServer := httpapi.NewServer(reportService, tokenManager, cfg.HTTP.AdminKey, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting admin api", "port", cfg.HTTP.Port)
		if err := apiServer.Start(cfg.HTTP.Port); err != nil {
			logger.Error("admin api stopped", "error", err)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting update loop")
		bot.Run(ctx)
	}()

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Stop(shutdownCtx); err != nil {
		logger.Error("error during admin api shutdown", "error", err)
	}

	runner.Wait()
	wg.Wait()
	logger.Info("shutdown complete")
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}

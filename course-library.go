package main

import (
	"context"
	"fmt"

	"github.com/prateektimer/course-library/internal/config"
	"github.com/prateektimer/course-library/internal/db"
	"github.com/prateektimer/course-library/internal/lock"
	"github.com/prateektimer/course-library/internal/migration"
	"github.com/prateektimer/course-library/internal/notify"
	"github.com/prateektimer/course-library/internal/scanner"
	"github.com/prateektimer/course-library/internal/schedule"
	"github.com/prateektimer/course-library/internal/service/library"
	"github.com/prateektimer/course-library/internal/storage"
	"github.com/prateektimer/course-library/internal/thumbs"
	"github.com/urfave/cli/v2"
	"go-micro.dev/v4"
	"go-micro.dev/v4/logger"

	// Plugins
	_ "github.com/go-micro/plugins/v4/registry/etcd"
)

var Version = "v0.0.0"

const serviceName = "course-library"

func main() {
	logger.Infof("%s %s", serviceName, Version)
	defer logger.Info("DONE.")

	useDebug := false

	service := micro.NewService(
		micro.Name(serviceName),
		micro.Version(Version),
		micro.Flags(
			&cli.BoolFlag{
				Name:        "verbose",
				Aliases:     []string{"debug"},
				Usage:       "debug log level",
				Value:       false,
				Destination: &useDebug,
			},
		),
	)

	service.Init(
		micro.Action(func(context *cli.Context) error {
			configFile := fmt.Sprintf("/etc/%s/%s.yaml", serviceName, serviceName)
			if context.IsSet("config") {
				configFile = context.String("config")
			}
			return config.Load(configFile)
		}),
	)

	if useDebug {
		_ = logger.Init(logger.WithLevel(logger.DebugLevel))
	}

	cfg := config.Config()

	database, err := db.Connect(cfg.Database)
	if err != nil {
		logger.Fatalf("Connect to database failed: %s", err)
	}
	logger.Info("Connected to database")

	m := migration.Migrator{
		CurrentVersion: Version,
		Database:       database,
	}
	if err = m.Run(context.Background()); err != nil {
		logger.Fatalf("Migration failed: %s", err)
	}

	dirManager, err := storage.NewManager(cfg.Directories)
	if err != nil {
		logger.Fatalf("Cannot initialize directory manager: %s", err)
	}

	extractor := thumbs.NewFrameExtractor(cfg.Thumbnails.Ffmpeg)
	thumbCache, err := thumbs.NewCache(extractor, dirManager)
	if err != nil {
		logger.Fatalf("Cannot initialize thumbnail cache: %s", err)
	}
	defer func() {
		_ = thumbCache.Close()
	}()

	lk := lock.NewLocker()
	sched := schedule.New()
	defer sched.Stop()

	settings := library.Settings{
		Database:     database,
		Scanner:      scanner.New(scanner.NewFileTreeProvider(), cfg.Scan.Extensions),
		Thumbnails:   thumbCache,
		Placeholders: thumbs.NewPlaceholderRenderer(dirManager, cfg.Thumbnails.Font),
		Scheduler:    sched,
		Locker:       lk,
		Publisher:    notify.NewPublisher(service),
	}

	libraryService := library.NewService(settings)
	if err = libraryService.Initialize(context.Background()); err != nil {
		logger.Fatalf("Cannot initialize library service: %s", err)
	}

	if err = micro.RegisterHandler(service.Server(), libraryService); err != nil {
		logger.Fatalf("Register service failed: %s", err)
	}

	if err = service.Run(); err != nil {
		logger.Fatalf("Run service failed: %s", err)
	}
}

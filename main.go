package main

import (
	"context"
	"errors"
	"time"

	"github.com/cppla/gardennotes/config"
	"github.com/cppla/gardennotes/models"
	"github.com/cppla/gardennotes/repository"
	"github.com/cppla/gardennotes/routes"
	"github.com/cppla/gardennotes/services"
	"github.com/cppla/gardennotes/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	if rc := utils.InitRedis(cfg); rc != nil {
		defer rc.Close()
	}

	db, err := config.InitDatabase(cfg, &models.Note{}, &models.Prompt{}, &models.Answer{}, &models.UploadedFile{})
	dbReady := err == nil
	switch {
	case errors.Is(err, config.ErrDatabaseNotConfigured):
		utils.Sugar.Warnf("no database url configured; data endpoints answer missing-database-url. %s", config.DatabaseURLHint)
	case err != nil:
		utils.Sugar.Fatalf("database init failed: %v", err)
	}

	notes := repository.NewNoteRepository(db)
	prompts := repository.NewPromptRepository(db)
	answers := repository.NewAnswerRepository(db)
	uploads := repository.NewUploadRepository(db)

	r := routes.SetupRouter(cfg, routes.Deps{
		Notes:   services.NewNoteService(cfg, notes, uploads),
		Prompts: services.NewPromptService(cfg, prompts),
		Answers: services.NewAnswerService(cfg, prompts, answers),
		Uploads: uploads,
		DBReady: func() bool { return dbReady },
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if dbReady {
		// Uploads never attached to a note are removed once expired
		utils.StartUploadCleaner(ctx, uploads, time.Duration(cfg.UploadCleanIntervalMinutes)*time.Minute)
	}

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}

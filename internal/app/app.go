// Package app wires the sync engine together: local store, repositories,
// authentication, remote client and orchestrator, and runs it until the
// process receives a termination signal.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/planloop/planloop/internal/auth"
	"github.com/planloop/planloop/internal/common"
	"github.com/planloop/planloop/internal/config"
	"github.com/planloop/planloop/internal/logging"
	"github.com/planloop/planloop/internal/media"
	"github.com/planloop/planloop/internal/models"
	"github.com/planloop/planloop/internal/processors"
	"github.com/planloop/planloop/internal/remote"
	"github.com/planloop/planloop/internal/repositories/categories"
	"github.com/planloop/planloop/internal/repositories/meals"
	"github.com/planloop/planloop/internal/repositories/metadata"
	"github.com/planloop/planloop/internal/repositories/recipes"
	"github.com/planloop/planloop/internal/repositories/shoppingitems"
	"github.com/planloop/planloop/internal/repositories/todos"
	"github.com/planloop/planloop/internal/repositories/users"
	"github.com/planloop/planloop/internal/storage"
	"github.com/planloop/planloop/internal/syncer"
)

type App struct {
	config *config.Config
	logger logging.Logger
	syncer *syncer.Syncer
	client *remote.FirestoreClient
	media  *media.Service
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.Setup(cfg.LogLevel)

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("local store init error: %w", err)
	}

	userRepo := users.NewSQLiteRepository(db)
	svc := &processors.Services{
		Users:         userRepo,
		Todos:         todos.NewSQLiteRepository(db),
		Recipes:       recipes.NewSQLiteRepository(db),
		Meals:         meals.NewSQLiteRepository(db),
		ShoppingItems: shoppingitems.NewSQLiteRepository(db),
		Categories:    categories.NewSQLiteRepository(db),
		Log:           logger,
	}

	client, err := remote.NewFirestoreClient(ctx,
		cfg.FirestoreProjectID, cfg.FirestoreCredentialsFile,
		metadata.NewSQLiteRepository(db),
		remote.NewLocalCollaborators(userRepo),
		logger, cfg.MaxBatchSize)
	if err != nil {
		return nil, fmt.Errorf("remote client init error: %w", err)
	}

	provider := auth.NewTokenProvider(cfg.IDTokenFile)

	s := syncer.New(provider, client, svc, logger, syncer.Options{
		PushInterval: cfg.PushInterval,
		StartupDelay: cfg.StartupDelay,
	})

	// photo storage is optional; without a bucket the engine syncs
	// everything except media
	var mediaSvc *media.Service
	if cfg.S3Bucket != "" {
		mediaSvc, err = media.NewService(ctx, media.Options{
			Region:       cfg.S3Region,
			Bucket:       cfg.S3Bucket,
			BaseEndpoint: cfg.S3BaseEndpoint,
			AccessKey:    cfg.S3AccessKey,
			SecretKey:    cfg.S3SecretKey,
		})
		if err != nil {
			return nil, fmt.Errorf("media storage init error: %w", err)
		}
	}

	return &App{config: cfg, logger: logger, syncer: s, client: client, media: mediaSvc}, nil
}

// AttachRecipePhoto reserves a storage key for the recipe's photo, records it
// on the recipe and syncs the change, and returns the presigned URL the
// caller uploads the photo bytes to.
func (app *App) AttachRecipePhoto(ctx context.Context, r *models.Recipe, by string) (string, error) {
	if app.media == nil {
		return "", common.ErrorMediaNotConfigured
	}

	key, url, err := app.media.PresignedPutURL(ctx)
	if err != nil {
		return "", err
	}

	r.SetPhotoKey(key, by)
	if err := app.syncer.SyncEntityImmediately(ctx, r); err != nil {
		return "", err
	}

	return url, nil
}

// RecipePhotoURL returns a presigned download URL for the recipe's photo.
func (app *App) RecipePhotoURL(ctx context.Context, r *models.Recipe) (string, error) {
	if app.media == nil {
		return "", common.ErrorMediaNotConfigured
	}
	if r.PhotoKey == "" {
		return "", common.ErrorNotFound
	}
	return app.media.PresignedGetURL(ctx, r.PhotoKey)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting sync engine...")

	app.initSignalHandler(cancelFunc)

	if err := app.syncer.Start(ctx); err != nil {
		app.logger.Error(ctx, "failed to start sync engine", "error", err)
		return
	}

	<-ctx.Done()

	app.logger.Info(ctx, "shutting down...")
	app.syncer.Stop()
	if err := app.client.Close(); err != nil {
		app.logger.Warn(ctx, "error closing remote client", "error", err)
	}
}

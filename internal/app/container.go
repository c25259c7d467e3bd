package app

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"job-board/internal/config"
	"job-board/internal/database"
	dbpostgres "job-board/internal/database/postgres"
	"job-board/internal/infrastructure/blob"
	"job-board/internal/infrastructure/cache"
	"job-board/internal/pkg/jwt"
	"job-board/internal/repository"
	"job-board/internal/usecase"
	ucapp "job-board/internal/usecase/application"
	ucauth "job-board/internal/usecase/auth"
	ucjob "job-board/internal/usecase/job"
	"job-board/internal/usecase/resume"
	"job-board/internal/ws"
)

// Container owns the long-lived dependencies of one server process.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis
	Blobs *blob.S3Store
	JWT   *jwt.HMACService
	Hub   *ws.Hub

	Identity     *usecase.IdentityResolver
	Auth         *usecase.Auth
	Users        *usecase.User
	Jobs         *ucjob.Service
	Applications *ucapp.Service
	Resumes      *resume.Service
}

func NewContainer(cfg config.Config) (*Container, error) {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	blobs, err := blob.NewS3Store(ctx, cfg.S3)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	c := &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  cache.NewRedis(cfg.Redis, logger),
		Blobs:  blobs,
		JWT: jwt.NewHMACService(
			cfg.JWT.AccessSecret,
			cfg.JWT.RefreshSecret,
			cfg.JWT.AccessExpiresIn,
			cfg.JWT.RefreshExpiresIn,
		),
		Hub: ws.NewHub(logger),
	}
	c.wire()

	return c, nil
}

func (c *Container) wire() {
	userRepo := repository.NewPostgresUserRepository(c.DB)
	jobRepo := repository.NewPostgresJobRepository(c.DB)
	appRepo := repository.NewPostgresApplicationRepository(c.DB)

	authSvc := ucauth.NewService(userRepo, ucauth.Options{AdminRegistrationCode: c.Config.Admin.RegistrationCode})

	c.Identity = usecase.NewIdentityResolver(c.JWT, c.Cache, userRepo, c.Logger)
	c.Auth = usecase.NewAuthUsecase(authSvc, userRepo, c.JWT, c.Cache, c.Config.JWT.RefreshExpiresIn, c.Logger)
	c.Users = usecase.NewUserUsecase(userRepo)
	c.Jobs = ucjob.NewService(jobRepo, appRepo, c.Logger)
	c.Resumes = resume.NewService(c.Blobs, appRepo, resume.Options{
		MaxBytes: c.Config.Upload.MaxBytes,
		Timeout:  c.Config.Upload.Timeout,
	}, c.Logger)
	c.Applications = ucapp.NewService(
		appRepo,
		jobRepo,
		c.Resumes,
		ws.NewNotifier(c.Hub),
		ucapp.Options{AllowDuplicates: c.Config.Application.AllowDuplicates},
		c.Logger,
	)
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}

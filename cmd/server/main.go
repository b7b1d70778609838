package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"qrcode-api/internal/auth"
	"qrcode-api/internal/config"
	apphttp "qrcode-api/internal/http"
	"qrcode-api/internal/pagination"
	"qrcode-api/internal/repository/sqlite"
	"qrcode-api/internal/service"
	"qrcode-api/internal/storage"
)

const qrCodeKeyPrefix = "qrcodes"

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if err := configureLogger(logger, cfg); err != nil {
		logger.Fatalf("configure logger: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("invalid config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	codeRepo := sqlite.NewQRCodeRepository(db)

	if err := userRepo.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := codeRepo.Init(ctx); err != nil {
		logger.Fatalf("init qr code repository: %v", err)
	}

	tokenTTL := time.Duration(cfg.Auth.ExpireMinutes) * time.Minute
	tokens, err := auth.NewTokens(cfg.Auth.SecretKey, cfg.Auth.Algorithm, tokenTTL)
	if err != nil {
		logger.Fatalf("setup tokens: %v", err)
	}
	resolver := auth.NewResolver(auth.NewAPIKeyVerifier(userRepo), auth.NewTokenVerifier(tokens, userRepo))

	userService := service.NewUserService(userRepo, logger)
	if cfg.Superuser.Username != "" {
		if _, err := userService.EnsureSuperuser(ctx, cfg.Superuser.Username, cfg.Superuser.Email, cfg.Superuser.Password); err != nil {
			logger.Fatalf("ensure superuser: %v", err)
		}
	}

	storageSvc, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}
	qrCodeService := service.NewQRCodeService(codeRepo, storageSvc, qrCodeKeyPrefix, logger)

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	handlerCfg := apphttp.Config{
		Users:    userService,
		QRCodes:  qrCodeService,
		Resolver: resolver,
		Tokens:   tokens,
		TokenTTL: tokenTTL,
		Paging: pagination.Policy{
			DefaultPerPage: cfg.Paging.DefaultPerPage,
			MaxPerPage:     cfg.Paging.MaxPerPage,
		},
		Logger: logger,
	}
	// local images are served by this process under the public URL path
	if cfg.Storage.Driver == "local" && strings.HasPrefix(cfg.Storage.PublicURL, "/") {
		handlerCfg.StaticDir = cfg.Storage.LocalDir
		handlerCfg.StaticPrefix = cfg.Storage.PublicURL
	}
	apphttp.NewHandler(handlerCfg).RegisterRoutes(router)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func configureLogger(logger *logrus.Logger, cfg config.Config) error {
	level, err := logrus.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	if cfg.Debug && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "", "text":
	default:
		return fmt.Errorf("unknown log format %q", cfg.Log.Format)
	}
	return nil
}

func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, error) {
	if cfg.Storage.Driver == "local" {
		logger.Infof("storing qr images in %s", cfg.Storage.LocalDir)
		return storage.NewLocalService(cfg.Storage.LocalDir, cfg.Storage.PublicURL)
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	// a path-only public URL belongs to the local driver
	publicURL := cfg.Storage.PublicURL
	if strings.HasPrefix(publicURL, "/") {
		publicURL = ""
	}

	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.S3Options{
		Bucket:    cfg.Storage.Bucket,
		KeyPrefix: cfg.Storage.KeyPrefix,
		Region:    cfg.Storage.Region,
		PublicURL: publicURL,
		ACL:       cfg.Storage.ACL,
	})
}

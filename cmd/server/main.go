package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/daffaabp/storage-management/internal/auth"
	"github.com/daffaabp/storage-management/internal/conf"
	"github.com/daffaabp/storage-management/internal/data"
	"github.com/daffaabp/storage-management/internal/email"
	filebiz "github.com/daffaabp/storage-management/internal/file/biz"
	filedata "github.com/daffaabp/storage-management/internal/file/data"
	fileservice "github.com/daffaabp/storage-management/internal/file/service"
	"github.com/daffaabp/storage-management/internal/pkg/logger"
	"github.com/daffaabp/storage-management/internal/server"
	userbiz "github.com/daffaabp/storage-management/internal/user/biz"
	userdata "github.com/daffaabp/storage-management/internal/user/data"
	userservice "github.com/daffaabp/storage-management/internal/user/service"
)

var (
	configFile = flag.String("config", "config.yaml", "config file path")
)

func main() {
	flag.Parse()

	// Load configuration
	config, err := conf.LoadConfig(*configFile)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger with config
	logConfig := &logger.Config{
		Level:            config.Log.Level,
		Format:           config.Log.Format,
		Output:           config.Log.Output,
		EnableCaller:     config.Log.EnableCaller,
		EnableStacktrace: config.Log.EnableStacktrace,
		File: logger.FileConfig{
			Filename:   config.Log.File.Filename,
			MaxSize:    config.Log.File.MaxSize,
			MaxAge:     config.Log.File.MaxAge,
			MaxBackups: config.Log.File.MaxBackups,
			Compress:   config.Log.File.Compress,
		},
	}

	log, err := logger.New(logConfig)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer log.Sync()

	// Initialize global logger
	if err := logger.InitGlobal(logConfig); err != nil {
		log.Fatal("failed to initialize global logger", zap.Error(err))
	}

	log.Info("config loaded successfully")

	// Initialize data layer
	d, cleanup, err := data.NewData(config, log)
	if err != nil {
		log.Fatal("failed to initialize data layer", zap.Error(err))
	}
	defer cleanup()

	// Initialize adapters
	codeSender, err := email.NewSender(&email.Config{
		Host:        config.SMTP.Host,
		Port:        config.SMTP.Port,
		Username:    config.SMTP.Username,
		Password:    config.SMTP.Password,
		From:        config.SMTP.From,
		SendTimeout: config.SMTP.SendTimeout,
	})
	if err != nil {
		log.Fatal("failed to initialize mail sender", zap.Error(err))
	}

	jwtManager := auth.NewJWTManager(config.Auth.JWTSecret, config.Auth.JWTIssuer)

	blobStore := filedata.NewMinIOBlobStore(d.MinIOClient, filedata.BlobStoreConfig{
		Bucket:        config.MinIO.Bucket,
		PublicBaseURL: config.MinIO.PublicBaseURL,
		Endpoint:      config.MinIO.Endpoint,
		UseSSL:        config.MinIO.UseSSL,
	})

	// Initialize repositories
	userRepo := userdata.NewUserRepo(d.DB)
	pendingRepo := userdata.NewRedisPendingSignInRepo(d.RedisClient)
	fileRepo := filedata.NewFileRepo(d.DB)
	notifier := filedata.NewRedisNotifier(d.RedisClient)

	// Initialize use cases
	userUseCase := userbiz.NewUserUseCase(userRepo, pendingRepo, codeSender, jwtManager, log)
	fileUseCase := filebiz.NewFileUseCase(fileRepo, blobStore, notifier, log)

	// Initialize services
	userService := userservice.NewUserService(userUseCase, log.Logger)
	fileService := fileservice.NewFileService(fileUseCase, log.Logger)

	// Initialize server
	httpServer := server.NewHTTPServer(config, log, jwtManager, userService, fileService)

	go func() {
		if err := httpServer.Start(); err != nil {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	log.Info("server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Stop(ctx); err != nil {
		log.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	log.Info("server exited")
}

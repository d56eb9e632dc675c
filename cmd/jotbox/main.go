package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/jotbox/jotbox/internal/config"
	"github.com/jotbox/jotbox/internal/db"
	"github.com/jotbox/jotbox/internal/handler"
	"github.com/jotbox/jotbox/internal/middleware"
	"github.com/jotbox/jotbox/internal/oauth"
	"github.com/jotbox/jotbox/internal/repo"
	"github.com/jotbox/jotbox/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "jotbox",
		Short: "jotbox notes server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run jotbox server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))
			return runServer(cfg)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func buildRepos(cfg *config.Config) (repo.UserRepository, repo.NoteRepository, repo.OtpRepository, error) {
	var users repo.UserRepository
	var notes repo.NoteRepository
	var codes repo.OtpRepository
	switch cfg.Storage.Type {
	case "postgres":
		conn, err := db.Open(cfg.Storage.Database)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open db: %w", err)
		}
		if err := db.ApplyMigrations(conn); err != nil {
			return nil, nil, nil, fmt.Errorf("migrations: %w", err)
		}
		users = repo.NewUserRepo(conn)
		notes = repo.NewNoteRepo(conn)
		codes = repo.NewOtpRepo(conn)
	default:
		users = repo.NewMemoryUserRepo()
		notes = repo.NewMemoryNoteRepo()
		codes = repo.NewMemoryOtpRepo()
	}
	if cfg.Storage.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Storage.Redis.Addr,
			Password: cfg.Storage.Redis.Password,
			DB:       cfg.Storage.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			return nil, nil, nil, fmt.Errorf("ping redis: %w", err)
		}
		codes = repo.NewRedisOtpRepo(client)
	}
	return users, notes, codes, nil
}

func runServer(cfg *config.Config) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("storage", cfg.Storage.Type),
		zap.String("mail", cfg.Mail.Type),
	)

	users, notes, codes, err := buildRepos(cfg)
	if err != nil {
		return err
	}

	mailSender := service.NewEmailSender(cfg.Mail)
	otpService := service.NewOtpService(
		codes,
		mailSender,
		time.Duration(cfg.OTP.TTLMinutes)*time.Minute,
		time.Duration(cfg.OTP.CooldownSeconds)*time.Second,
		cfg.OTP.MaxAttempts,
		cfg.OTP.ExposeDevCode,
	)
	jwtSecret := []byte(cfg.JWTSecret)
	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(users, otpService, jwtSecret, jwtTTL)

	oauthProviders := map[string]oauth.Provider{}
	client := &http.Client{Timeout: 10 * time.Second}
	if cfg.OAuth.Google.Enable {
		provider, err := oauth.NewProvider("google", oauth.ProviderArgs{Config: oauth.ProviderConfig{
			ClientID:     cfg.OAuth.Google.ClientID,
			ClientSecret: cfg.OAuth.Google.ClientSecret,
			RedirectURL:  cfg.OAuth.Google.RedirectURL,
			Scopes:       cfg.OAuth.Google.Scopes,
		}, Client: client})
		if err != nil {
			return fmt.Errorf("init google oauth: %w", err)
		}
		oauthProviders["google"] = provider
	}
	oauthService := service.NewOAuthService(users, jwtSecret, jwtTTL, oauthProviders)
	noteService := service.NewNoteService(notes)

	deps := handler.RouterDeps{
		Auth:             handler.NewAuthHandler(authService),
		OAuth:            handler.NewOAuthHandler(oauthService, cfg.AppURL),
		Notes:            handler.NewNoteHandler(noteService),
		JWTSecret:        jwtSecret,
		OTPRequestWindow: time.Duration(cfg.OTP.CooldownSeconds) * time.Second,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSAllowlist),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ecopress/internal/config"
	"github.com/ecopress/internal/db"
	"github.com/ecopress/internal/logger"
	"github.com/ecopress/internal/mailer"
	"github.com/ecopress/internal/metrics"
	"github.com/ecopress/internal/router"
	"github.com/ecopress/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	newUsername string
	newPassword string
	newEmail    string
	newRole     string

	rootCmd = &cobra.Command{
		Use:   "ecopress",
		Short: "EcoPress publishing site",
		RunE:  runServe,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE:  runServe,
	}

	createUserCmd = &cobra.Command{
		Use:   "create-user",
		Short: "Create an account with the given role (admin accounts are only created here)",
		RunE:  runCreateUser,
	}

	seedCmd = &cobra.Command{
		Use:   "seed",
		Short: "Insert demo users, articles, papers and pages",
		RunE:  runSeed,
	}
)

func init() {
	createUserCmd.Flags().StringVarP(&newUsername, "username", "u", "", "username")
	createUserCmd.Flags().StringVarP(&newPassword, "password", "p", "", "password")
	createUserCmd.Flags().StringVar(&newEmail, "email", "", "email address")
	createUserCmd.Flags().StringVar(&newRole, "role", db.RoleAdmin, "role: admin, editor or user")
	_ = createUserCmd.MarkFlagRequired("username")
	_ = createUserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, createUserCmd, seedCmd)
}

// bootstrap 读取配置、创建日志并初始化数据库
func bootstrap() (config.AppConfig, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.AppConfig{}, nil, nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.LogFile, cfg.Debug)

	gdb, err := db.Init(cfg.DatabaseDriver, cfg.DatabaseSource())
	if err != nil {
		_ = log.Sync()
		return config.AppConfig{}, nil, nil, fmt.Errorf("initialize database: %w", err)
	}
	return cfg, log, gdb, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	gin.SetMode(cfg.GinMode)

	r, err := router.SetupRouter(router.Options{
		Config:  cfg,
		DB:      gdb,
		Logger:  log,
		Metrics: metrics.New(prometheus.DefaultRegisterer),
		Mailer:  mailer.New(cfg.SMTP),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", cfg.ListenAddr), zap.String("driver", cfg.DatabaseDriver))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func runCreateUser(cmd *cobra.Command, _ []string) error {
	_, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	created, err := db.EnsureUser(gdb, newUsername, newPassword, newEmail, newRole)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	if !created {
		fmt.Fprintf(cmd.OutOrStdout(), "user %q already exists\n", newUsername)
		return nil
	}
	log.Info("user created", zap.String("username", newUsername), zap.String("role", newRole))
	fmt.Fprintf(cmd.OutOrStdout(), "created %s %q\n", newRole, newUsername)
	return nil
}

func runSeed(cmd *cobra.Command, _ []string) error {
	_, log, gdb, err := bootstrap()
	if err != nil {
		return err
	}
	defer log.Sync()

	report, err := seed.Run(gdb, time.Now(), log)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "seeded %s\n", report)
	fmt.Fprintf(cmd.OutOrStdout(), "demo accounts: admin, editor, reader (password %s)\n", seed.DemoPassword)
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"LifeStats/internal/alias"
	"LifeStats/internal/api"
	"LifeStats/internal/metrics"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func serveCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), *configFile)
		},
	}
}

func runServe(ctx context.Context, configFile string) error {
	a, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	defer a.close()

	if a.cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         a.cfg.Sentry.DSN,
			Environment: a.cfg.Sentry.Environment,
			SampleRate:  1.0,
		}); err != nil {
			return fmt.Errorf("初始化 Sentry 失败: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
		a.logger.Info("Sentry 错误上报已启用")
	}

	m, err := metrics.NewMetrics(nil)
	if err != nil {
		return fmt.Errorf("注册指标失败: %w", err)
	}

	registry := alias.NewRegistry(nil)
	svcs := api.NewServices(a.db, a.cfg, registry, m, a.logger)
	if err := svcs.Aliases.Load(ctx); err != nil {
		return err
	}

	// 配置Gin运行模式（debug/release）
	gin.SetMode(a.cfg.Server.Mode)
	r := api.NewRouter(a.cfg, svcs, m, a.logger)
	a.logger.Infof("Gin运行模式: %s", a.cfg.Server.Mode)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("服务启动成功，端口：%d", a.cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("启动服务失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.logger.Info("收到退出信号，正在关闭服务")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	return nil
}

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"LifeStats/internal/config"
	"LifeStats/internal/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// app 子命令共用的启动结果
type app struct {
	cfg    *config.Config
	logger *logrus.Logger
	db     *gorm.DB
}

// newLogger 按配置初始化日志
func newLogger(cfg config.LogConfig) *logrus.Logger {
	l := logrus.New()
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)
	if strings.EqualFold(cfg.Format, "json") {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	if err != nil && cfg.Level != "" {
		l.Warnf("未知日志级别 %q，使用 info", cfg.Level)
	}
	return l
}

// bootstrap 1. 加载配置 2. 初始化日志 3. 连接数据库并迁移
func bootstrap(configFile string) (*app, error) {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return nil, fmt.Errorf("加载配置文件失败: %w", err)
	}
	logger := newLogger(cfg.Log)
	logger.WithFields(logrus.Fields{"driver": cfg.Database.Driver, "port": cfg.Server.Port}).Info("配置文件加载成功")

	db, err := database.Open(&cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	logger.Info("数据库表结构检查完成（不存在则已创建）")
	return &app{cfg: cfg, logger: logger, db: db}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.WithError(err).Warn("关闭数据库连接失败")
		}
	}
}

func rootCommand() *cobra.Command {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "lifestats",
		Short:         "LifeStats personal habit tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
		// 不带子命令时等同于 serve
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configFile)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config.yaml (default: ./config/config.yaml or ./config.yaml)")

	rootCmd.AddCommand(
		serveCommand(&configFile),
		migrateCommand(&configFile),
		importFormsCommand(&configFile),
	)
	return rootCmd
}

func main() {
	if err := rootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// internal/cli/root.go
package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"go_4_learn_progress/internal/config"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

var configDir string

// Execute はCLIを実行します
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_DIR")
	if envConfig == "" {
		envConfig = "configs"
	}

	cmd := &cobra.Command{
		Use:           config.AppName,
		Short:         "Learner progress and assessment gating service",
		Version:       config.AppVersion,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVar(&configDir, "config", envConfig, "directory containing config.yaml")
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSeedCmd())
	return cmd
}

// loadConfigAndLogger は設定を読み込み、アプリケーション全体のロガーを初期化します
func loadConfigAndLogger() (*config.Config, *slog.Logger, error) {
	// 設定読み込み用の一時的なロガー
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.Log.Level, os.Getenv("APP_ENV"))
	slog.SetDefault(logger)
	return cfg, logger, nil
}

// APP_ENV=dev のときは tint、それ以外は JSON で出力する
func newLogger(level, appEnv string) *slog.Logger {
	logLevel := new(slog.LevelVar)
	logLevel.Set(config.ParseLogLevel(level))

	var handler slog.Handler
	if strings.ToLower(appEnv) == "dev" {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.RFC3339,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		})
	}
	return slog.New(handler)
}

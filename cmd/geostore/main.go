// Command geostore - административные операции над слоями:
// миграции, прогрев кеша тайлов, топология маршрутизации, эвристики зумов и обработка слоев.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/geostore-service/internal/app"
	"github.com/geostore-service/internal/config"
	"github.com/geostore-service/internal/pkg/logger"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:           "geostore",
	Short:         "GeoStore layer administration",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override LOG_LEVEL")
}

// runtime - конфигурация и логгер команды
type runtime struct {
	store *config.Store
	log   *zap.Logger
}

func newRuntime() (*runtime, error) {
	store, err := config.NewStore()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := store.Current().Log.Level
	if logLevel != "" {
		level = logLevel
	}
	log, err := logger.New(level, "cli")
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return &runtime{store: store, log: log}, nil
}

// withApp собирает приложение, выполняет fn и закрывает подключения.
// SIGINT/SIGTERM отменяют контекст fn.
func withApp(cmd *cobra.Command, opts app.Options, fn func(ctx context.Context, a *app.App) error) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}
	defer rt.log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, rt.store, rt.log, opts)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

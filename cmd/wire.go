package cmd

import (
	"fmt"
	"io"
	"log/slog"

	tomlconfig "github.com/bnema/waapi-creator/internal/adapters/config/toml"
	"github.com/bnema/waapi-creator/internal/adapters/waapi"
	"github.com/bnema/waapi-creator/internal/application"
	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/bnema/waapi-creator/internal/logging"
	"github.com/bnema/waapi-creator/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	configPath string
	viper      *viper.Viper
	catalog    domain.Catalog
	loaded     *tomlconfig.Config
}

func wireApp() *app {
	return &app{
		viper:   viper.New(),
		catalog: domain.DefaultCatalog(),
	}
}

// config loads the configuration once per process.
func (a *app) config() (tomlconfig.Config, error) {
	if a.loaded != nil {
		return *a.loaded, nil
	}

	cfg, err := tomlconfig.Load(a.viper, a.configPath)
	if err != nil {
		return tomlconfig.Config{}, fmt.Errorf("load config: %w", err)
	}
	a.loaded = &cfg

	return cfg, nil
}

func (a *app) resolvedConfigPath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return tomlconfig.DefaultPath()
}

// newLogger logs to output, or to the configured log file when toFile is set.
func (a *app) newLogger(cfg tomlconfig.Config, output io.Writer, toFile bool) (*slog.Logger, func() error, error) {
	opts := logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: output,
	}
	if toFile {
		opts.File = cfg.Log.File
	}

	logger, closeFn, err := logging.New(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("wire logger: %w", err)
	}

	return logger.With("component", "waapi-creator"), closeFn, nil
}

func (a *app) newConnector(cfg tomlconfig.Config, logger *slog.Logger) ports.Connector {
	return &waapi.Connector{
		URL:     cfg.WAAPI.URL,
		Realm:   cfg.WAAPI.Realm,
		Timeout: cfg.WAAPI.Timeout,
		Logger:  logger,
	}
}

func (a *app) newCreator(cfg tomlconfig.Config, logger *slog.Logger) *application.Creator {
	return application.NewCreator(a.newConnector(cfg, logger), logger)
}

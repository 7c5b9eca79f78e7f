package toml

import (
	"fmt"
	"time"

	"github.com/bnema/waapi-creator/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version int          `toml:"version"`
	WAAPI   waapiSchema  `toml:"waapi"`
	UI      uiSchema     `toml:"ui"`
	Create  createSchema `toml:"create"`
	Lock    lockSchema   `toml:"lock"`
	Log     logSchema    `toml:"log"`
}

type waapiSchema struct {
	URL     string `toml:"url"`
	Realm   string `toml:"realm"`
	Timeout string `toml:"timeout"`
}

type uiSchema struct {
	Pin         bool   `toml:"pin"`
	DefaultType string `toml:"default_type"`
}

type createSchema struct {
	OnNameConflict string `toml:"on_name_conflict"`
}

type lockSchema struct {
	Path string `toml:"path"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

func toSchema(cfg Config) fileSchema {
	return fileSchema{
		Version: currentSchemaVersion,
		WAAPI: waapiSchema{
			URL:     cfg.WAAPI.URL,
			Realm:   cfg.WAAPI.Realm,
			Timeout: cfg.WAAPI.Timeout.String(),
		},
		UI: uiSchema{
			Pin:         cfg.UI.Pin,
			DefaultType: cfg.UI.DefaultType,
		},
		Create: createSchema{OnNameConflict: string(cfg.Create.OnNameConflict)},
		Lock:   lockSchema{Path: cfg.Lock.Path},
		Log: logSchema{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		},
	}
}

func fromSchema(file fileSchema) (Config, error) {
	if file.Version > currentSchemaVersion {
		return Config{}, fmt.Errorf("unsupported config schema version %d (current %d)", file.Version, currentSchemaVersion)
	}

	timeout, err := time.ParseDuration(file.WAAPI.Timeout)
	if err != nil {
		return Config{}, fmt.Errorf("parse waapi.timeout: %w", err)
	}

	return Config{
		WAAPI: WAAPIConfig{
			URL:     file.WAAPI.URL,
			Realm:   file.WAAPI.Realm,
			Timeout: timeout,
		},
		UI: UIConfig{
			Pin:         file.UI.Pin,
			DefaultType: file.UI.DefaultType,
		},
		Create: CreateConfig{OnNameConflict: domain.NameConflict(file.Create.OnNameConflict)},
		Lock:   LockConfig{Path: file.Lock.Path},
		Log: LogConfig{
			Level:  file.Log.Level,
			Format: file.Log.Format,
			File:   file.Log.File,
		},
	}, nil
}

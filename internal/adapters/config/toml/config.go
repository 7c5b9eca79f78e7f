package toml

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/waapi-creator/internal/domain"
	"github.com/spf13/viper"
)

const (
	appDir     = "waapi-creator"
	configName = "config"
	configType = "toml"
	envPrefix  = "WAAPI_CREATOR"

	keyWAAPIURL       = "waapi.url"
	keyWAAPIRealm     = "waapi.realm"
	keyWAAPITimeout   = "waapi.timeout"
	keyUIPin          = "ui.pin"
	keyUIDefaultType  = "ui.default_type"
	keyNameConflict   = "create.on_name_conflict"
	keyLockPath       = "lock.path"
	keyLogLevel       = "log.level"
	keyLogFormat      = "log.format"
	keyLogFile        = "log.file"
	lockFileName      = "waapi-creator.lock"
	logFileName       = "waapi-creator.log"
	defaultLogLevel   = "info"
	defaultLogFormat  = "text"
	defaultUIPin      = true
	defaultConfigFile = configName + "." + configType
)

// WAAPI endpoint defaults of a stock Wwise authoring install.
const (
	DefaultURL     = "ws://127.0.0.1:8080/waapi"
	DefaultRealm   = "realm1"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	WAAPI  WAAPIConfig
	UI     UIConfig
	Create CreateConfig
	Lock   LockConfig
	Log    LogConfig
}

type WAAPIConfig struct {
	URL     string
	Realm   string
	Timeout time.Duration
}

type UIConfig struct {
	Pin         bool
	DefaultType string
}

type CreateConfig struct {
	OnNameConflict domain.NameConflict
}

type LockConfig struct {
	Path string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

// DefaultPath is where Load looks when no explicit path is given.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}

	return filepath.Join(dir, appDir, defaultConfigFile), nil
}

func Defaults() Config {
	logFile := ""
	if cacheDir, err := os.UserCacheDir(); err == nil {
		logFile = filepath.Join(cacheDir, appDir, logFileName)
	}

	return Config{
		WAAPI: WAAPIConfig{
			URL:     DefaultURL,
			Realm:   DefaultRealm,
			Timeout: DefaultTimeout,
		},
		UI:   UIConfig{Pin: defaultUIPin},
		Lock: LockConfig{Path: filepath.Join(os.TempDir(), lockFileName)},
		Log: LogConfig{
			Level:  defaultLogLevel,
			Format: defaultLogFormat,
			File:   logFile,
		},
	}
}

// Load resolves the config from defaults, the TOML file and WAAPI_CREATOR_*
// environment variables, in increasing priority. A missing file is not an
// error.
func Load(cfg *viper.Viper, path string) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	defaults := Defaults()
	cfg.SetDefault(keyWAAPIURL, defaults.WAAPI.URL)
	cfg.SetDefault(keyWAAPIRealm, defaults.WAAPI.Realm)
	cfg.SetDefault(keyWAAPITimeout, defaults.WAAPI.Timeout)
	cfg.SetDefault(keyUIPin, defaults.UI.Pin)
	cfg.SetDefault(keyUIDefaultType, defaults.UI.DefaultType)
	cfg.SetDefault(keyNameConflict, string(defaults.Create.OnNameConflict))
	cfg.SetDefault(keyLockPath, defaults.Lock.Path)
	cfg.SetDefault(keyLogLevel, defaults.Log.Level)
	cfg.SetDefault(keyLogFormat, defaults.Log.Format)
	cfg.SetDefault(keyLogFile, defaults.Log.File)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	if path != "" {
		cfg.SetConfigFile(path)
	} else {
		defaultPath, err := DefaultPath()
		if err != nil {
			return Config{}, err
		}
		cfg.SetConfigName(configName)
		cfg.SetConfigType(configType)
		cfg.AddConfigPath(filepath.Dir(defaultPath))
	}

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	loaded := Config{
		WAAPI: WAAPIConfig{
			URL:     cfg.GetString(keyWAAPIURL),
			Realm:   cfg.GetString(keyWAAPIRealm),
			Timeout: cfg.GetDuration(keyWAAPITimeout),
		},
		UI: UIConfig{
			Pin:         cfg.GetBool(keyUIPin),
			DefaultType: cfg.GetString(keyUIDefaultType),
		},
		Create: CreateConfig{
			OnNameConflict: domain.NameConflict(cfg.GetString(keyNameConflict)),
		},
		Lock: LockConfig{Path: cfg.GetString(keyLockPath)},
		Log: LogConfig{
			Level:  cfg.GetString(keyLogLevel),
			Format: cfg.GetString(keyLogFormat),
			File:   cfg.GetString(keyLogFile),
		},
	}

	if err := loaded.Validate(domain.DefaultCatalog()); err != nil {
		return Config{}, err
	}

	return loaded, nil
}

func (c Config) Validate(catalog domain.Catalog) error {
	if strings.TrimSpace(c.WAAPI.URL) == "" {
		return fmt.Errorf("%s is required", keyWAAPIURL)
	}
	if !strings.HasPrefix(c.WAAPI.URL, "ws://") && !strings.HasPrefix(c.WAAPI.URL, "wss://") {
		return fmt.Errorf("%s must be a ws:// or wss:// url, got %q", keyWAAPIURL, c.WAAPI.URL)
	}
	if strings.TrimSpace(c.WAAPI.Realm) == "" {
		return fmt.Errorf("%s is required", keyWAAPIRealm)
	}
	if c.WAAPI.Timeout < 0 {
		return fmt.Errorf("%s must not be negative", keyWAAPITimeout)
	}
	if c.UI.DefaultType != "" {
		if _, err := catalog.Lookup(c.UI.DefaultType); err != nil {
			return fmt.Errorf("%s: %w", keyUIDefaultType, err)
		}
	}
	if err := c.Create.OnNameConflict.Validate(); err != nil {
		return fmt.Errorf("%s: %w", keyNameConflict, err)
	}
	if strings.TrimSpace(c.Lock.Path) == "" {
		return fmt.Errorf("%s is required", keyLockPath)
	}

	return nil
}

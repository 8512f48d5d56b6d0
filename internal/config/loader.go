package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// FileName is the configuration file name without extension.
	FileName = "qrtool"

	// EnvPrefix prefixes environment overrides, as in QRTOOL_ENCODE_SIZE.
	EnvPrefix = "QRTOOL"
)

// Loader reads configuration with the precedence flags, environment,
// file, defaults.
type Loader struct {
	v *viper.Viper
}

func NewLoader() *Loader {
	l := &Loader{v: viper.New()}
	l.v.SetConfigName(FileName)
	l.v.SetConfigType("yaml")
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	l.v.AutomaticEnv()
	l.setDefaults()
	return l
}

// BindFlag makes a command-line flag override key.
func (l *Loader) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("no flag for %s", key)
	}
	return l.v.BindPFlag(key, flag)
}

// Load reads the configuration. An empty file searches the default
// locations, and a missing file there is not an error.
func (l *Loader) Load(file string) (*Config, error) {
	if file != "" {
		if _, err := os.Stat(file); err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		l.v.SetConfigFile(file)
	} else {
		l.addConfigPaths()
	}

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// FileUsed is the path of the file that was read, if any.
func (l *Loader) FileUsed() string { return l.v.ConfigFileUsed() }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if dir, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		l.v.AddConfigPath(filepath.Join(dir, FileName))
	} else if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", FileName))
	}
	l.v.AddConfigPath("/etc/" + FileName)
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()
	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("log_format", d.LogFormat)

	l.v.SetDefault("encode.error_correction", d.Encode.ErrorCorrection)
	l.v.SetDefault("encode.character_set", d.Encode.CharacterSet)
	l.v.SetDefault("encode.force_eci", d.Encode.ForceECI)
	l.v.SetDefault("encode.version", d.Encode.Version)
	l.v.SetDefault("encode.mask", d.Encode.Mask)
	l.v.SetDefault("encode.margin", d.Encode.Margin)
	l.v.SetDefault("encode.size", d.Encode.Size)
	l.v.SetDefault("encode.output", d.Encode.Output)

	l.v.SetDefault("decode.try_harder", d.Decode.TryHarder)
	l.v.SetDefault("decode.pure_barcode", d.Decode.PureBarcode)
	l.v.SetDefault("decode.character_set", d.Decode.CharacterSet)
	l.v.SetDefault("decode.binarizer", d.Decode.Binarizer)
	l.v.SetDefault("decode.workers", d.Decode.Workers)
}

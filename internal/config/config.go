// Package config holds the qrtool configuration and loads it from files,
// the environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"runtime"
	"slices"
	"strings"

	"github.com/ericlevine/qrkit/charset"
	"github.com/ericlevine/qrkit/qrcode/decoder"
)

// Config is the complete qrtool configuration.
type Config struct {
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`

	Encode EncodeConfig `mapstructure:"encode" yaml:"encode"`
	Decode DecodeConfig `mapstructure:"decode" yaml:"decode"`
}

// EncodeConfig drives `qrtool encode`.
type EncodeConfig struct {
	ErrorCorrection string `mapstructure:"error_correction" yaml:"error_correction"`
	CharacterSet    string `mapstructure:"character_set" yaml:"character_set"`
	ForceECI        bool   `mapstructure:"force_eci" yaml:"force_eci"`
	Version         int    `mapstructure:"version" yaml:"version"`
	// Mask is -1 for automatic selection.
	Mask   int `mapstructure:"mask" yaml:"mask"`
	Margin int `mapstructure:"margin" yaml:"margin"`
	// Size is the side of the PNG in pixels.
	Size int `mapstructure:"size" yaml:"size"`
	// Output is "png" or "terminal".
	Output string `mapstructure:"output" yaml:"output"`
}

// DecodeConfig drives `qrtool decode`.
type DecodeConfig struct {
	TryHarder    bool   `mapstructure:"try_harder" yaml:"try_harder"`
	PureBarcode  bool   `mapstructure:"pure_barcode" yaml:"pure_barcode"`
	CharacterSet string `mapstructure:"character_set" yaml:"character_set"`
	// Binarizer is "hybrid", "histogram" or "both"; both tries the global
	// histogram first.
	Binarizer string `mapstructure:"binarizer" yaml:"binarizer"`
	Workers   int    `mapstructure:"workers" yaml:"workers"`
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
	outputs    = []string{"png", "terminal"}
	binarizers = []string{"hybrid", "histogram", "both"}
)

func DefaultConfig() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		Encode: EncodeConfig{
			ErrorCorrection: "M",
			Mask:            -1,
			Margin:          4,
			Size:            256,
			Output:          "png",
		},
		Decode: DecodeConfig{
			Binarizer: "both",
			Workers:   runtime.NumCPU(),
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(slices.Contains(logLevels, strings.ToLower(c.LogLevel)), "log_level %q is not one of %v", c.LogLevel, logLevels)
	check(slices.Contains(logFormats, c.LogFormat), "log_format %q is not one of %v", c.LogFormat, logFormats)

	_, err := decoder.ParseECLevel(c.Encode.ErrorCorrection)
	check(err == nil, "encode.error_correction %q is not L, M, Q or H", c.Encode.ErrorCorrection)
	check(c.Encode.CharacterSet == "" || charset.Lookup(c.Encode.CharacterSet) != nil,
		"encode.character_set %q is not supported", c.Encode.CharacterSet)
	check(c.Encode.Version >= 0 && c.Encode.Version <= 40, "encode.version %d is outside 0-40", c.Encode.Version)
	check(c.Encode.Mask >= -1 && c.Encode.Mask <= 7, "encode.mask %d is outside -1 to 7", c.Encode.Mask)
	check(c.Encode.Margin >= 0, "encode.margin %d is negative", c.Encode.Margin)
	check(c.Encode.Size > 0, "encode.size must be positive")
	check(slices.Contains(outputs, c.Encode.Output), "encode.output %q is not one of %v", c.Encode.Output, outputs)

	check(c.Decode.CharacterSet == "" || charset.Lookup(c.Decode.CharacterSet) != nil,
		"decode.character_set %q is not supported", c.Decode.CharacterSet)
	check(slices.Contains(binarizers, c.Decode.Binarizer), "decode.binarizer %q is not one of %v", c.Decode.Binarizer, binarizers)
	check(c.Decode.Workers > 0, "decode.workers must be positive")

	return errors.Join(errs...)
}

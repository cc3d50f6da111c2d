// Package config resolves spherecmp settings from CLI flags, SPHERECMP_
// environment variables and an optional TOML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strconv"
	"strings"
	"unicode"

	"github.com/obinnaokechukwu/spherecmp/internal/logging"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// EnvPrefix is prepended to every env tag.
const EnvPrefix = "SPHERECMP_"

// Options holds every tunable of the spherecmp command.
type Options struct {
	Config string

	LoggingLevel    string `toml:"logging.level" env:"LOGGING_LEVEL" flag:"log-level"`
	LoggingFormat   string `toml:"logging.format" env:"LOGGING_FORMAT" flag:"log-format"`
	FFmpegLogLevel  string `toml:"ffmpeg.log_level" env:"FFMPEG_LOG_LEVEL" flag:"ffmpeg-log-level"`
	MetadataPrefix  string `toml:"report.metadata_prefix" env:"REPORT_METADATA_PREFIX" flag:"metadata-prefix"`
	StreamIndex     int    `toml:"decode.stream_index" env:"DECODE_STREAM_INDEX" flag:"stream-index"`
	MaxFrames       int    `toml:"decode.max_frames" env:"DECODE_MAX_FRAMES" flag:"max-frames"`
	MetricsTextfile string `toml:"metrics.textfile" env:"METRICS_TEXTFILE" flag:"metrics-textfile"`
	Progress        bool   `toml:"report.progress" env:"REPORT_PROGRESS" flag:"progress"`
}

// Defaults returns the built-in values, the lowest precedence layer.
func Defaults() Options {
	return Options{
		LoggingLevel:   "warn",
		LoggingFormat:  "text",
		FFmpegLogLevel: "error",
		MetadataPrefix: "lavfi.ssim360",
	}
}

// Validate reports the first setting that cannot be used.
func (o *Options) Validate() error {
	if _, ok := logging.ParseLevel(o.LoggingLevel); !ok {
		return fmt.Errorf("invalid log level %q", o.LoggingLevel)
	}
	switch strings.ToLower(o.LoggingFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log format %q (want text or json)", o.LoggingFormat)
	}
	if o.MetadataPrefix == "" {
		return errors.New("metadata prefix must not be empty")
	}
	if o.StreamIndex < 0 {
		return fmt.Errorf("stream index must be non-negative, got %d", o.StreamIndex)
	}
	if o.MaxFrames < 0 {
		return fmt.Errorf("max frames must be non-negative, got %d", o.MaxFrames)
	}
	return nil
}

// Logging returns the logging section as a logging.Config.
func (o *Options) Logging() logging.Config {
	return logging.Config{Level: o.LoggingLevel, Format: o.LoggingFormat}
}

// LoadConfig loads configuration with proper precedence: CLI args > env vars > config file.
// If cmd is provided, flags explicitly set via CLI will not be overwritten.
// A missing config file is not an error.
func LoadConfig(opts any, cmd *cobra.Command) error {
	v := reflect.ValueOf(opts).Elem()
	t := v.Type()

	changedFlags := make(map[string]bool)
	if cmd != nil {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			if f.Changed {
				changedFlags[f.Name] = true
			}
		})
	}

	var configPath string
	if f := v.FieldByName("Config"); f.IsValid() && f.Kind() == reflect.String {
		configPath = f.String()
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return fmt.Errorf("failed to read config %s: %w", configPath, err)
		default:
			var config map[string]any
			if err := toml.Unmarshal(data, &config); err != nil {
				return fmt.Errorf("failed to parse TOML config: %w", err)
			}

			for i := 0; i < v.NumField(); i++ {
				fieldType := t.Field(i)
				if changedFlags[flagName(fieldType)] {
					continue
				}
				if tomlPath := fieldType.Tag.Get("toml"); tomlPath != "" {
					if value := getNestedValue(config, tomlPath); value != nil {
						setFieldValue(v.Field(i), value)
					}
				}
			}
		}
	}

	for i := 0; i < v.NumField(); i++ {
		fieldType := t.Field(i)
		if changedFlags[flagName(fieldType)] {
			continue
		}
		if envKey := fieldType.Tag.Get("env"); envKey != "" {
			if envValue := os.Getenv(EnvPrefix + envKey); envValue != "" {
				if err := setFieldValueFromString(v.Field(i), envValue); err != nil {
					return fmt.Errorf("%s%s: %w", EnvPrefix, envKey, err)
				}
			}
		}
	}

	return nil
}

// flagName prefers an explicit flag tag over the derived name.
func flagName(field reflect.StructField) string {
	if name := field.Tag.Get("flag"); name != "" {
		return name
	}
	return fieldNameToFlag(field.Name)
}

// fieldNameToFlag converts a struct field name to a CLI flag name.
// Example: "LoggingLevel" -> "logging-level", "Port" -> "port".
func fieldNameToFlag(fieldName string) string {
	var result []rune
	for i, r := range fieldName {
		if i > 0 && unicode.IsUpper(r) {
			result = append(result, '-')
		}
		result = append(result, unicode.ToLower(r))
	}
	return string(result)
}

// getNestedValue retrieves a value from nested map using dot notation.
func getNestedValue(data map[string]any, path string) any {
	parts := strings.Split(path, ".")
	current := data

	for i, part := range parts {
		if i == len(parts)-1 {
			return current[part]
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return nil
		}
		current = next
	}
	return nil
}

func setFieldValue(field reflect.Value, value any) {
	if !field.CanSet() {
		return
	}

	switch field.Kind() {
	case reflect.String:
		if s, ok := value.(string); ok {
			field.SetString(s)
		}
	case reflect.Bool:
		if b, ok := value.(bool); ok {
			field.SetBool(b)
		}
	case reflect.Int:
		if i, ok := value.(int64); ok {
			field.SetInt(i)
		} else if i, intOk := value.(int); intOk {
			field.SetInt(int64(i))
		}
	}
}

// setFieldValueFromString sets a field value from string (for env vars).
func setFieldValueFromString(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Int:
		i, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(i)
	}
	return nil
}

// Package config holds the engine-wide settings that sit outside a single
// document's CreateOptions/OpenExistingOptions: default statement-cache
// size, default SQLite busy-timeout, and log level/format. It is grounded on
// the teacher's internal/config package, which uses the same
// viper.Viper-singleton-plus-environment-binding pattern for its own
// application-wide settings.
package config

import (
	"strings"

	"github.com/spf13/viper"
)

var v *viper.Viper

// Initialize sets up the viper configuration singleton. Should be called
// once at process startup (the CLI does this in its root command's
// PersistentPreRunE); library callers that embed this package directly may
// skip it and rely on the defaults below.
func Initialize() error {
	v = viper.New()
	v.SetConfigType("yaml")
	v.SetConfigName("imgdoc2")
	v.AddConfigPath("$HOME/.config/imgdoc2")
	v.AddConfigPath(".")

	v.SetEnvPrefix("IMGDOC2")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault("statement-cache-size", 128)
	v.SetDefault("busy-timeout-ms", 5000)
	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "text")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return nil
}

func ensure() *viper.Viper {
	if v == nil {
		_ = Initialize()
	}
	return v
}

// StatementCacheSize is the default number of prepared statements a
// Connection keeps warm.
func StatementCacheSize() int { return ensure().GetInt("statement-cache-size") }

// BusyTimeoutMillis is the SQLite busy-timeout passed on the DSN of every
// connection sqlite.Open makes.
func BusyTimeoutMillis() int { return ensure().GetInt("busy-timeout-ms") }

// LogLevel is the configured minimum log level ("debug", "info", "warn",
// "error").
func LogLevel() string { return ensure().GetString("log-level") }

// LogFormat is the configured log encoding ("text" or "json").
func LogFormat() string { return ensure().GetString("log-format") }

package app

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/bdobrica/Vaani/common/environment"
	"github.com/bdobrica/Vaani/internal/vaani/actions"
	"github.com/bdobrica/Vaani/internal/vaani/automation"
	"github.com/bdobrica/Vaani/internal/vaani/clock"
	"github.com/bdobrica/Vaani/internal/vaani/confirm"
	"github.com/bdobrica/Vaani/internal/vaani/fallback"
	"github.com/bdobrica/Vaani/internal/vaani/matrix"
	"github.com/bdobrica/Vaani/internal/vaani/observability"
)

// Config holds application configuration.
type Config struct {
	DatabasePath string
	// HTTPAddr is the listener for /health, /status and /metrics. Empty
	// disables the server.
	HTTPAddr string

	// LexiconFile is an optional YAML overlay of extra phrases.
	LexiconFile string
	// DefinitionsFile is an optional YAML file of tasks and macros applied
	// at startup.
	DefinitionsFile string
	SeedPresets     bool
	MaxMacroDepth   int

	ConfirmationTimeout time.Duration
	ConfirmationGrace   time.Duration
	AllowDangerous      bool

	// LogRetentionDays bounds both rotated log files and the command log
	// table. Zero keeps the command log forever.
	LogRetentionDays int
	Log              observability.Config

	// Matrix is disabled when Homeserver is empty.
	Matrix   matrix.Config
	Fallback fallback.Config

	// Power and Desktop perform side effects; nil selects a dry run.
	Power   actions.PowerController
	Desktop actions.Desktop

	Clock    clock.Clock
	Location *time.Location
}

// Default retention for logs and the command log.
const DefaultLogRetentionDays = 30

// LoadConfig reads Config from the environment.
func LoadConfig() Config {
	retention := environment.IntOr("LOG_RETENTION_DAYS", DefaultLogRetentionDays)
	return Config{
		DatabasePath:        environment.StringOr("VAANI_DB_PATH", "./vaani.db"),
		HTTPAddr:            environment.StringOr("VAANI_HTTP_ADDR", ""),
		LexiconFile:         environment.StringOr("VAANI_LEXICON_FILE", ""),
		DefinitionsFile:     environment.StringOr("VAANI_DEFINITIONS_FILE", ""),
		SeedPresets:         environment.BoolOr("VAANI_SEED_PRESETS", true),
		MaxMacroDepth:       environment.IntOr("VAANI_MAX_MACRO_DEPTH", automation.DefaultMaxDepth),
		ConfirmationTimeout: environment.DurationOr("CONFIRMATION_TIMEOUT", confirm.DefaultTimeout),
		ConfirmationGrace:   environment.DurationOr("CONFIRMATION_GRACE", confirm.DefaultGrace),
		AllowDangerous:      environment.BoolOr("ENABLE_DANGEROUS_COMMANDS", true),
		LogRetentionDays:    retention,
		Log: observability.Config{
			Level:      environment.StringOr("LOG_LEVEL", "info"),
			Format:     environment.StringOr("LOG_FORMAT", "text"),
			File:       environment.StringOr("LOG_FILE", ""),
			MaxAgeDays: retention,
		},
		Matrix: matrix.Config{
			Homeserver:     environment.StringOr("MATRIX_HOMESERVER", ""),
			UserID:         environment.StringOr("MATRIX_USER_ID", ""),
			AccessToken:    environment.StringOr("MATRIX_ACCESS_TOKEN", ""),
			Rooms:          environment.StringSliceOr("MATRIX_ROOMS", nil),
			AllowedSenders: environment.StringSliceOr("VAANI_ALLOWED_SENDERS", nil),
		},
		Fallback: fallback.Config{
			APIKey:  environment.StringOr("FALLBACK_API_KEY", ""),
			BaseURL: environment.StringOr("FALLBACK_BASE_URL", fallback.DefaultBaseURL),
			Models:  environment.StringSliceOr("FALLBACK_MODELS", nil),
			Timeout: environment.DurationOr("FALLBACK_TIMEOUT", fallback.DefaultTimeout),
			Rate:    rate.Limit(environment.FloatOr("FALLBACK_RATE", float64(fallback.DefaultRate))),
			Burst:   environment.IntOr("FALLBACK_BURST", fallback.DefaultBurst),
		},
	}
}

// Validate reports configuration that cannot start.
func (c Config) Validate() error {
	var errs []error
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("VAANI_DB_PATH must not be empty"))
	}
	if c.MaxMacroDepth < 0 {
		errs = append(errs, fmt.Errorf("VAANI_MAX_MACRO_DEPTH must be >= 0, got %d", c.MaxMacroDepth))
	}
	if c.Matrix.Homeserver != "" {
		if c.Matrix.UserID == "" {
			errs = append(errs, errors.New("MATRIX_USER_ID is required when MATRIX_HOMESERVER is set"))
		}
		if c.Matrix.AccessToken == "" {
			errs = append(errs, errors.New("MATRIX_ACCESS_TOKEN is required when MATRIX_HOMESERVER is set"))
		}
		if len(c.Matrix.Rooms) == 0 {
			errs = append(errs, errors.New("MATRIX_ROOMS is required when MATRIX_HOMESERVER is set"))
		}
	}
	return errors.Join(errs...)
}

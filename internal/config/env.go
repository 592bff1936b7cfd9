package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
}

type StorageEnv struct {
	// Type is one of local, s3 or sqlite.
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".taskboard/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"taskboard/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// SQLite settings (used when Type == "sqlite")
	SQLitePath string `envconfig:"SQLITE_PATH" default:".taskboard/taskboard.db"`
}

type AuthEnv struct {
	JWTSecret string        `envconfig:"JWT_SECRET" required:"true"`
	TokenTTL  time.Duration `envconfig:"TOKEN_TTL" default:"24h"`
	// The bootstrap admin is created at startup when it does not exist yet.
	BootstrapAdminID    string `envconfig:"BOOTSTRAP_ADMIN_ID"`
	BootstrapAdminName  string `envconfig:"BOOTSTRAP_ADMIN_NAME" default:"admin"`
	BootstrapAdminEmail string `envconfig:"BOOTSTRAP_ADMIN_EMAIL"`
}

type WorkflowEnv struct {
	OverloadThreshold int `envconfig:"OVERLOAD_THRESHOLD" default:"2"`
	// ReconcileSchedule is a cron spec; empty disables scheduled reconciliation.
	ReconcileSchedule    string `envconfig:"RECONCILE_SCHEDULE" default:"@every 10m"`
	ReconcileConcurrency int    `envconfig:"RECONCILE_CONCURRENCY" default:"8"`
}

type Env struct {
	BaseEnv
	StorageEnv
	AuthEnv
	WorkflowEnv
}

const namespace = "TASKBOARD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	if e.JWTSecret == "" {
		return fmt.Errorf("TASKBOARD_JWT_SECRET must not be empty")
	}
	switch e.StorageEnv.Type {
	case "local", "sqlite":
	case "s3":
		if e.S3Bucket == "" {
			return fmt.Errorf("TASKBOARD_S3_BUCKET is required when TASKBOARD_STORAGE_TYPE=s3")
		}
	default:
		return fmt.Errorf("unknown TASKBOARD_STORAGE_TYPE %q", e.StorageEnv.Type)
	}
	if e.OverloadThreshold < 1 {
		return fmt.Errorf("TASKBOARD_OVERLOAD_THRESHOLD must be positive, got %d", e.OverloadThreshold)
	}
	if e.ReconcileConcurrency < 1 {
		return fmt.Errorf("TASKBOARD_RECONCILE_CONCURRENCY must be positive, got %d", e.ReconcileConcurrency)
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

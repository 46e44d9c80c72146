package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

var newAvatarBucket = gcp.NewAvatarBucket

type StorageProviderBootstrapErrorCode string

const (
	StorageProviderBootstrapErrorInvalidMode         StorageProviderBootstrapErrorCode = "invalid_mode"
	StorageProviderBootstrapErrorMissingEmulatorHost StorageProviderBootstrapErrorCode = "missing_emulator_host"
	StorageProviderBootstrapErrorConnectFailed       StorageProviderBootstrapErrorCode = "connect_failed"
)

type StorageProviderBootstrapError struct {
	Code         StorageProviderBootstrapErrorCode
	Mode         string
	EmulatorHost string
	Cause        error
}

func (e *StorageProviderBootstrapError) Error() string {
	if e == nil {
		return "object storage bootstrap failed"
	}
	return fmt.Sprintf(
		"object storage bootstrap failed (code=%s mode=%q emulator_host=%q): %v",
		e.Code,
		e.Mode,
		e.EmulatorHost,
		e.Cause,
	)
}

func (e *StorageProviderBootstrapError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// resolveAvatarBucket returns nil, nil when no bucket is configured; avatar routes then answer 503.
func resolveAvatarBucket(ctx context.Context, log *logger.Logger, cfg Config) (gcp.AvatarBucket, error) {
	if !cfg.StorageEnabled() {
		log.Warn("AVATAR_GCS_BUCKET_NAME not set; avatar uploads disabled")
		return nil, nil
	}
	storageCfg := cfg.StorageConfig()
	mode := strings.ToLower(strings.TrimSpace(string(storageCfg.Mode)))

	if err := precheckStorageConfig(storageCfg); err != nil {
		log.Error(
			"Object storage provider selection failed",
			"mode", mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", storageProviderBootstrapErrorCode(err),
			"error", err,
		)
		return nil, err
	}

	log.Info("Selecting object storage provider", "mode", mode, "emulator_host", storageCfg.EmulatorHost)
	bucket, err := newAvatarBucket(ctx, log, storageCfg)
	if err != nil {
		classified := &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorConnectFailed,
			Mode:         mode,
			EmulatorHost: storageCfg.EmulatorHost,
			Cause:        err,
		}
		log.Error(
			"Object storage provider bootstrap failed",
			"mode", mode,
			"emulator_host", storageCfg.EmulatorHost,
			"error_code", classified.Code,
			"error", classified,
		)
		return nil, classified
	}
	return bucket, nil
}

func precheckStorageConfig(cfg gcp.StorageConfig) error {
	mode := gcp.ObjectStorageMode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	switch mode {
	case "", gcp.ObjectStorageModeGCS:
		return nil
	case gcp.ObjectStorageModeGCSEmulator:
		if strings.TrimSpace(cfg.EmulatorHost) == "" {
			return &StorageProviderBootstrapError{
				Code:  StorageProviderBootstrapErrorMissingEmulatorHost,
				Mode:  string(mode),
				Cause: fmt.Errorf("STORAGE_EMULATOR_HOST is required in %s mode", mode),
			}
		}
		return nil
	default:
		return &StorageProviderBootstrapError{
			Code:         StorageProviderBootstrapErrorInvalidMode,
			Mode:         string(cfg.Mode),
			EmulatorHost: cfg.EmulatorHost,
			Cause:        fmt.Errorf("unsupported object storage mode %q", cfg.Mode),
		}
	}
}

func storageProviderBootstrapErrorCode(err error) StorageProviderBootstrapErrorCode {
	var bootstrapErr *StorageProviderBootstrapError
	if errors.As(err, &bootstrapErr) {
		if bootstrapErr.Code != "" {
			return bootstrapErr.Code
		}
	}
	return StorageProviderBootstrapErrorConnectFailed
}

package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
)

// StorageConfig configures the avatar bucket client. An empty Mode resolves to
// the emulator when EmulatorHost is set, otherwise to GCS.
type StorageConfig struct {
	Mode            ObjectStorageMode
	EmulatorHost    string
	AvatarBucket    string
	AvatarCDNDomain string
	PublicBaseURL   string
	Credentials     string
}

func (cfg StorageConfig) resolvedMode() ObjectStorageMode {
	mode := ObjectStorageMode(strings.ToLower(strings.TrimSpace(string(cfg.Mode))))
	if mode == "" {
		if strings.TrimSpace(cfg.EmulatorHost) != "" {
			return ObjectStorageModeGCSEmulator
		}
		return ObjectStorageModeGCS
	}
	return mode
}

func (cfg StorageConfig) Validate() error {
	if strings.TrimSpace(cfg.AvatarBucket) == "" {
		return fmt.Errorf("missing avatar bucket name")
	}
	switch cfg.resolvedMode() {
	case ObjectStorageModeGCS:
	case ObjectStorageModeGCSEmulator:
		if err := requireAbsoluteURL("emulator host", cfg.EmulatorHost); err != nil {
			return err
		}
	default:
		return fmt.Errorf("invalid object storage mode %q (allowed: %q, %q)",
			cfg.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator)
	}
	if strings.TrimSpace(cfg.PublicBaseURL) != "" {
		if err := requireAbsoluteURL("public base url", cfg.PublicBaseURL); err != nil {
			return err
		}
	}
	return nil
}

func requireAbsoluteURL(name, raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("missing %s", name)
	}
	u, err := url.Parse(raw)
	if err != nil || strings.TrimSpace(u.Scheme) == "" || strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("invalid %s %q; expected absolute URL like http://localhost:4443", name, raw)
	}
	return nil
}

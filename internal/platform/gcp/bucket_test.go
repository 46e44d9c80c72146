package gcp

import "testing"

func TestGetPublicURL(t *testing.T) {
	cases := []struct {
		name   string
		bucket *avatarBucket
		key    string
		want   string
	}{
		{
			name:   "gcs_default",
			bucket: &avatarBucket{bucketName: "avatar-bucket"},
			key:    "user_avatar/u/1.png",
			want:   "https://storage.googleapis.com/avatar-bucket/user_avatar/u/1.png",
		},
		{
			name:   "cdn_domain",
			bucket: &avatarBucket{bucketName: "avatar-bucket", cdnDomain: "cdn.example.com"},
			key:    "/user_avatar/u/1.png",
			want:   "https://cdn.example.com/user_avatar/u/1.png",
		},
		{
			name:   "public_base_url",
			bucket: &avatarBucket{bucketName: "avatar-bucket", publicBaseURL: "http://localhost:4443"},
			key:    "user_avatar/u/1.png",
			want:   "http://localhost:4443/avatar-bucket/user_avatar/u/1.png",
		},
		{
			name: "emulator_media_endpoint",
			bucket: &avatarBucket{
				bucketName:   "avatar-bucket",
				storageMode:  ObjectStorageModeGCSEmulator,
				emulatorHost: "http://fake-gcs:4443",
			},
			key:  "user_avatar/abc/123.png",
			want: "http://fake-gcs:4443/storage/v1/b/avatar-bucket/o/user_avatar%2Fabc%2F123.png?alt=media",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.bucket.GetPublicURL(tc.key); got != tc.want {
				t.Fatalf("GetPublicURL: want=%q got=%q", tc.want, got)
			}
		})
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a/b.png":      "image/png",
		"a/b.JPEG":     "image/jpeg",
		"a/b.webp?v=1": "image/webp",
		"a/b.bin":      "",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Fatalf("contentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}

func TestStorageConfigValidate(t *testing.T) {
	cases := []struct {
		name    string
		cfg     StorageConfig
		wantErr bool
	}{
		{name: "gcs", cfg: StorageConfig{AvatarBucket: "b"}},
		{name: "emulator_inferred", cfg: StorageConfig{AvatarBucket: "b", EmulatorHost: "http://fake-gcs:4443"}},
		{name: "missing_bucket", cfg: StorageConfig{}, wantErr: true},
		{name: "emulator_without_host", cfg: StorageConfig{AvatarBucket: "b", Mode: ObjectStorageModeGCSEmulator}, wantErr: true},
		{name: "emulator_bad_host", cfg: StorageConfig{AvatarBucket: "b", Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "fake-gcs:4443"}, wantErr: true},
		{name: "unknown_mode", cfg: StorageConfig{AvatarBucket: "b", Mode: "s3"}, wantErr: true},
		{name: "bad_public_base", cfg: StorageConfig{AvatarBucket: "b", PublicBaseURL: "localhost"}, wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if tc.wantErr != (err != nil) {
				t.Fatalf("Validate: wantErr=%v err=%v", tc.wantErr, err)
			}
		})
	}
	if got := (StorageConfig{EmulatorHost: "http://x:1"}).resolvedMode(); got != ObjectStorageModeGCSEmulator {
		t.Fatalf("resolvedMode: got=%q", got)
	}
}

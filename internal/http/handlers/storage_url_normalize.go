package handlers

import (
	"strings"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
)

// URLResolver is the slice of the avatar bucket handlers need.
type URLResolver interface {
	GetPublicURL(key string) string
}

var _ URLResolver = (gcp.AvatarBucket)(nil)

func resolveBucketBackedURL(bucket URLResolver, storageKey, currentURL string) string {
	key := strings.TrimSpace(storageKey)
	if bucket == nil || key == "" {
		return strings.TrimSpace(currentURL)
	}
	resolved := strings.TrimSpace(bucket.GetPublicURL(key))
	if resolved == "" {
		return strings.TrimSpace(currentURL)
	}
	return resolved
}

// normalizeUserAvatarURL re-derives the public URL from the stored key so a CDN
// domain change applies to existing rows.
func normalizeUserAvatarURL(bucket URLResolver, u *types.User) {
	if u == nil {
		return
	}
	u.AvatarURL = resolveBucketBackedURL(bucket, u.AvatarBucketKey, u.AvatarURL)
}

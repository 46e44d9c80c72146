package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image"
	"image/color"
	"strings"
	"unicode"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	types "github.com/yungbote/quizprogress-backend/internal/domain"
	"github.com/yungbote/quizprogress-backend/internal/platform/gcp"
	"github.com/yungbote/quizprogress-backend/internal/platform/logger"
)

const (
	AvatarSize        = 256
	MaxAvatarBytes    = 10 << 20
	avatarKeyPrefix   = "user_avatar/"
	avatarKeyAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
)

// ErrInvalidAvatar marks uploads rejected before anything is stored.
var ErrInvalidAvatar = errors.New("invalid avatar image")

// AvatarService renders and stores user avatars. It only sets the avatar fields on
// the passed user; persisting them is the caller's job.
type AvatarService interface {
	UploadInitialsAvatar(ctx context.Context, u *types.User) error
	UploadImageAvatar(ctx context.Context, u *types.User, raw []byte) error
}

type avatarService struct {
	log      *logger.Logger
	bucket   gcp.AvatarBucket
	fontFace font.Face
	palette  []color.NRGBA
}

var defaultAvatarPalette = []color.NRGBA{
	{R: 0x3B, G: 0x82, B: 0xF6, A: 0xFF},
	{R: 0x10, G: 0xB9, B: 0x81, A: 0xFF},
	{R: 0xF5, G: 0x9E, B: 0x0B, A: 0xFF},
	{R: 0xEF, G: 0x44, B: 0x44, A: 0xFF},
	{R: 0x8B, G: 0x5C, B: 0xF6, A: 0xFF},
	{R: 0xEC, G: 0x48, B: 0x99, A: 0xFF},
	{R: 0x14, G: 0xB8, B: 0xA6, A: 0xFF},
	{R: 0x64, G: 0x74, B: 0x8B, A: 0xFF},
}

func NewAvatarService(log *logger.Logger, bucket gcp.AvatarBucket) (AvatarService, error) {
	if bucket == nil {
		return nil, fmt.Errorf("avatar bucket required")
	}
	face, err := loadFontFace(goregular.TTF, AvatarSize*0.4)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}
	return &avatarService{
		log:      log.With("service", "AvatarService"),
		bucket:   bucket,
		fontFace: face,
		palette:  defaultAvatarPalette,
	}, nil
}

func (as *avatarService) UploadInitialsAvatar(ctx context.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	buf, err := as.renderInitials(u)
	if err != nil {
		return err
	}
	return as.store(ctx, u, buf)
}

func (as *avatarService) UploadImageAvatar(ctx context.Context, u *types.User, raw []byte) error {
	if u == nil || u.ID == uuid.Nil {
		return fmt.Errorf("user required")
	}
	if len(raw) == 0 || len(raw) > MaxAvatarBytes {
		return fmt.Errorf("%w: size must be 1..%d bytes", ErrInvalidAvatar, MaxAvatarBytes)
	}
	buf, err := processUploadedAvatar(raw, AvatarSize)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAvatar, err)
	}
	return as.store(ctx, u, buf)
}

// store uploads under a fresh versioned key, points u at it and removes older objects.
func (as *avatarService) store(ctx context.Context, u *types.User, buf bytes.Buffer) error {
	newKey, err := avatarKey(u.ID)
	if err != nil {
		return err
	}
	if err := as.bucket.UploadFile(ctx, newKey, bytes.NewReader(buf.Bytes())); err != nil {
		return fmt.Errorf("failed to upload user avatar: %w", err)
	}
	oldKey := strings.TrimSpace(u.AvatarBucketKey)
	u.AvatarBucketKey = newKey
	u.AvatarURL = as.bucket.GetPublicURL(newKey)

	as.cleanup(ctx, u.ID, oldKey, newKey)
	return nil
}

// cleanup is best effort: failures are logged, never returned.
func (as *avatarService) cleanup(ctx context.Context, userID uuid.UUID, oldKey, newKey string) {
	stale := map[string]struct{}{}
	if oldKey != "" && oldKey != newKey {
		stale[oldKey] = struct{}{}
	}
	keys, err := as.bucket.ListKeys(ctx, avatarKeyPrefix+userID.String()+"/")
	if err != nil {
		as.log.Ctx(ctx).Warn("listing old avatars failed (ignored)", "error", err)
	}
	for _, k := range keys {
		if k != newKey {
			stale[k] = struct{}{}
		}
	}
	for k := range stale {
		if err := as.bucket.DeleteFile(ctx, k); err != nil {
			as.log.Ctx(ctx).Warn("failed to delete old avatar (ignored)", "key", k, "error", err)
		}
	}
}

func avatarKey(userID uuid.UUID) (string, error) {
	id, err := gonanoid.Generate(avatarKeyAlphabet, 16)
	if err != nil {
		return "", fmt.Errorf("avatar key: %w", err)
	}
	return fmt.Sprintf("%s%s/%s.png", avatarKeyPrefix, userID.String(), id), nil
}

func (as *avatarService) renderInitials(u *types.User) (bytes.Buffer, error) {
	const size = AvatarSize
	dc := gg.NewContext(size, size)
	dc.DrawCircle(size/2, size/2, size/2)
	dc.Clip()

	dc.SetColor(as.colorFor(u.ID))
	dc.DrawRectangle(0, 0, size, size)
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(computeInitials(u.Name), size/2, size/2, 0.5, 0.35)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf, nil
}

// colorFor is stable per user so regenerated avatars keep their background.
func (as *avatarService) colorFor(id uuid.UUID) color.NRGBA {
	h := fnv.New32a()
	_, _ = h.Write(id[:])
	return as.palette[int(h.Sum32()%uint32(len(as.palette)))]
}

func processUploadedAvatar(raw []byte, size int) (bytes.Buffer, error) {
	var out bytes.Buffer

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return out, fmt.Errorf("decode image: %w", err)
	}

	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	if side == 0 {
		return out, fmt.Errorf("decode image: empty bounds")
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	src := image.Rect(x0, y0, x0+side, y0+side)

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, src, draw.Over, nil)

	dc := gg.NewContext(size, size)
	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()
	dc.DrawImage(dst, 0, 0)

	if err := dc.EncodePNG(&out); err != nil {
		return out, fmt.Errorf("encode png: %w", err)
	}
	return out, nil
}

// computeInitials takes the first letter of up to two words of name.
func computeInitials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		r, _ := utf8.DecodeRuneInString(word)
		if r == utf8.RuneError || !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
		if utf8.RuneCountInString(b.String()) == 2 {
			break
		}
	}
	if b.Len() == 0 {
		return "?"
	}
	return b.String()
}

func loadFontFace(ttf []byte, size float64) (font.Face, error) {
	parsed, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTF: %w", err)
	}
	return truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	}), nil
}

package storage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"agora/internal/config"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // register WebP decoder
)

const (
	// MaxImageDimension bounds the longest edge of a stored photo.
	MaxImageDimension = 2048
	// WebPQuality is the lossy encode quality for stored photos.
	WebPQuality = 70
)

// DiskStore is an ObjectStore backed by a local directory. Every accepted
// image is normalized: decoded, resized to fit MaxImageDimension, and
// re-encoded as WebP under a random name.
type DiskStore struct {
	dir      string
	baseURL  string
	maxBytes int64
}

// NewDiskStore builds a DiskStore from the media configuration.
func NewDiskStore(cfg *config.Config) (*DiskStore, error) {
	if err := os.MkdirAll(cfg.MediaDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}
	return &DiskStore{
		dir:      cfg.MediaDir,
		baseURL:  strings.TrimRight(cfg.MediaBaseURL, "/"),
		maxBytes: int64(cfg.MediaMaxUploadSizeMB) * 1024 * 1024,
	}, nil
}

// Dir returns the directory the store writes into.
func (s *DiskStore) Dir() string {
	return s.dir
}

// Put validates, normalizes, and stores the image, returning its public URL.
func (s *DiskStore) Put(ctx context.Context, content []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", ErrInvalidImage
	}
	if s.maxBytes > 0 && int64(len(content)) > s.maxBytes {
		return "", ErrTooLarge
	}

	detected := http.DetectContentType(content)
	if !isAllowedImageMIME(detected) {
		return "", ErrInvalidImage
	}
	if provided := normalizeContentType(contentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, detected) {
		return "", ErrInvalidImage
	}

	decoded, _, err := image.Decode(bytes.NewReader(content))
	if err != nil {
		return "", ErrInvalidImage
	}

	normalized := resizeToFit(decoded, MaxImageDimension, MaxImageDimension)

	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, normalized, &webp.Options{Quality: WebPQuality}); err != nil {
		return "", fmt.Errorf("failed to encode photo: %w", err)
	}

	name := uuid.NewString() + ".webp"
	if err := os.WriteFile(filepath.Join(s.dir, name), buf.Bytes(), 0o600); err != nil {
		return "", fmt.Errorf("failed to write photo object: %w", err)
	}

	return s.baseURL + "/" + name, nil
}

// Delete removes the object behind the URL. Unknown objects are not an error.
func (s *DiskStore) Delete(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	name := path.Base(url)
	// Only names we generated are valid; anything else could be traversal.
	if name != filepath.Base(name) || !strings.HasSuffix(name, ".webp") {
		return fmt.Errorf("refusing to delete unrecognized object %q", url)
	}
	if _, err := uuid.Parse(strings.TrimSuffix(name, ".webp")); err != nil {
		return fmt.Errorf("refusing to delete unrecognized object %q", url)
	}

	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete photo object: %w", err)
	}
	return nil
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 {
		return src
	}
	if w <= maxWidth && h <= maxHeight {
		return src
	}

	scaleW := float64(maxWidth) / float64(w)
	scaleH := float64(maxHeight) / float64(h)
	scale := scaleW
	if scaleH < scale {
		scale = scaleH
	}
	newW := int(float64(w) * scale)
	newH := int(float64(h) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

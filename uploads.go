package blogadmin

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const thumbnailQuality = 80

// UploadManager validates and persists uploaded image files. Stored names
// are generated (uuid + unix timestamp), never derived from the original
// name, so uploads cannot traverse paths or overwrite each other.
type UploadManager struct {
	dir        string
	maxSize    int64
	allowed    map[string]bool
	thumbWidth int
}

// NewUploadManager creates an UploadManager writing into dir.
func NewUploadManager(dir string, maxSize int64, allowedExtensions []string, thumbWidth int) *UploadManager {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	return &UploadManager{
		dir:        dir,
		maxSize:    maxSize,
		allowed:    allowed,
		thumbWidth: thumbWidth,
	}
}

// Store validates and persists an uploaded file, returning the generated
// filename. declaredSize is checked before anything is read or written;
// ErrFileTooLarge and ErrUnsupportedType block the write entirely.
// A scaled JPEG thumbnail is derived best-effort alongside the original.
func (u *UploadManager) Store(src io.Reader, originalName string, declaredSize int64) (string, error) {
	if declaredSize > u.maxSize {
		return "", fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, u.maxSize>>20)
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(originalName), "."))
	if !u.allowed[ext] {
		return "", fmt.Errorf("%w: allowed types: %s", ErrUnsupportedType, strings.Join(u.allowedList(), ", "))
	}

	// Read through a limit one byte past the cap so a lying Content-Length
	// still cannot push an oversized file onto disk.
	data, err := io.ReadAll(io.LimitReader(src, u.maxSize+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > u.maxSize {
		return "", fmt.Errorf("%w: maximum size is %dMB", ErrFileTooLarge, u.maxSize>>20)
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s_%d.%s", uuid.NewString(), time.Now().Unix(), ext)
	if err := os.WriteFile(filepath.Join(u.dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	// Thumbnail failures never fail the upload; the admin table falls back
	// to the original file.
	_ = u.writeThumbnail(name, data)

	return name, nil
}

// Remove deletes a stored file and its thumbnail. Absence is not an error;
// any other failure is returned so callers can log it. Names containing
// path separators are ignored.
func (u *UploadManager) Remove(name string) error {
	if name == "" || filepath.Base(name) != name {
		return nil
	}
	if err := os.Remove(filepath.Join(u.dir, name)); err != nil && !os.IsNotExist(err) {
		return err
	}
	if err := os.Remove(filepath.Join(u.dir, ThumbnailName(name))); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// ThumbnailName returns the thumbnail filename derived from a stored
// upload name. Thumbnails are always JPEG.
func ThumbnailName(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return "thumb_" + base + ".jpg"
}

func (u *UploadManager) writeThumbnail(name string, data []byte) error {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > u.thumbWidth {
		newH := h * u.thumbWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, u.thumbWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: thumbnailQuality}); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(u.dir, ThumbnailName(name)), buf.Bytes(), 0o644)
}

func (u *UploadManager) allowedList() []string {
	exts := make([]string, 0, len(u.allowed))
	for ext := range u.allowed {
		exts = append(exts, ext)
	}
	// map order is random; keep the error message stable
	sort.Strings(exts)
	return exts
}

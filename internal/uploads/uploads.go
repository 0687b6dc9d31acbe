// Package uploads turns multipart files and base64 payloads into stored images
// addressed by a public path under /uploads/.
package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

const (
	// PublicPrefix is the URL path uploaded images are served under.
	PublicPrefix = "/uploads/"
	// MaxFileSize is the per-image limit for both ingestion paths.
	MaxFileSize = 5 << 20
	// MaxFiles bounds how many images one field may carry.
	MaxFiles = 10
)

var (
	ErrNotImage      = errors.New("only image files are allowed")
	ErrFileTooLarge  = fmt.Errorf("file too large, maximum size is %d MB", MaxFileSize>>20)
	ErrTooManyFiles  = fmt.Errorf("too many files, maximum is %d", MaxFiles)
	ErrInvalidBase64 = errors.New("invalid base64 image data")
	// ErrStorage wraps failures of the storage backend itself.
	ErrStorage = errors.New("failed to store image")
)

var dataURLPrefix = regexp.MustCompile(`^data:image/[a-zA-Z0-9.+-]+;base64,`)

var safeExt = regexp.MustCompile(`^\.[a-z0-9]{1,8}$`)

// Ingestor validates incoming images and writes them to a Backend.
type Ingestor struct {
	backend Backend
	now     func() time.Time
}

// NewIngestor creates an Ingestor writing to b.
func NewIngestor(b Backend) *Ingestor {
	return &Ingestor{backend: b, now: time.Now}
}

// Backend exposes the storage the ingestor writes to.
func (in *Ingestor) Backend() Backend {
	return in.backend
}

// fileName builds "<field>-<unixMillis>-<random><ext>".
func (in *Ingestor) fileName(field, ext string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%s-%d-%s%s", slug.Make(field), in.now().UnixMilli(), random, ext)
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if !safeExt.MatchString(ext) {
		return ""
	}
	return ext
}

// PublicPath returns the URL path a stored file is served from.
func PublicPath(name string) string {
	return PublicPrefix + name
}

// NameFromPath extracts the stored file name from a public path. It returns
// false for paths that do not point into the upload area.
func NameFromPath(p string) (string, bool) {
	if !strings.HasPrefix(p, PublicPrefix) {
		return "", false
	}
	name := path.Base(p)
	if name == "" || name == "." || name == "/" {
		return "", false
	}
	return name, true
}

// SaveFiles stores every file of one multipart field and returns their public
// paths in order. All files are checked before anything is written, and a
// storage failure removes the files already written by this call.
func (in *Ingestor) SaveFiles(ctx context.Context, field string, files []*multipart.FileHeader) ([]string, error) {
	if len(files) > MaxFiles {
		return nil, ErrTooManyFiles
	}
	for _, fh := range files {
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return nil, fmt.Errorf("%s: %w", fh.Filename, ErrNotImage)
		}
		if fh.Size > MaxFileSize {
			return nil, fmt.Errorf("%s: %w", fh.Filename, ErrFileTooLarge)
		}
		if err := sniffImage(fh); err != nil {
			return nil, err
		}
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		name := in.fileName(field, extension(fh.Filename))
		if err := in.saveFile(ctx, name, fh); err != nil {
			in.Discard(ctx, paths...)
			return nil, err
		}
		paths = append(paths, PublicPath(name))
	}
	return paths, nil
}

// sniffImage checks the leading bytes of the file, not the client's header.
func sniffImage(fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorage, fh.Filename, err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: reading %s: %v", ErrStorage, fh.Filename, err)
	}
	if detected := http.DetectContentType(head[:n]); !strings.HasPrefix(detected, "image/") {
		return fmt.Errorf("%s (detected %s): %w", fh.Filename, detected, ErrNotImage)
	}
	return nil
}

func (in *Ingestor) saveFile(ctx context.Context, name string, fh *multipart.FileHeader) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("%w: opening %s: %v", ErrStorage, fh.Filename, err)
	}
	defer src.Close()
	if err := in.backend.Save(ctx, name, src, fh.Size, fh.Header.Get("Content-Type")); err != nil {
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return nil
}

// IsBase64Image reports whether s looks like a data URL image payload rather
// than an already stored path.
func IsBase64Image(s string) bool {
	return dataURLPrefix.MatchString(s)
}

// SaveBase64 decodes a base64 image, with or without a data URL header, and
// stores it as a .jpg file named after prefix.
func (in *Ingestor) SaveBase64(ctx context.Context, prefix, payload string) (string, error) {
	raw := dataURLPrefix.ReplaceAllString(strings.TrimSpace(payload), "")
	if raw == "" {
		return "", ErrInvalidBase64
	}
	if base64.StdEncoding.DecodedLen(len(raw)) > MaxFileSize+3 {
		return "", ErrFileTooLarge
	}
	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBase64, err)
	}
	if len(data) > MaxFileSize {
		return "", ErrFileTooLarge
	}

	name := in.fileName(prefix, ".jpg")
	if err := in.backend.Save(ctx, name, bytes.NewReader(data), int64(len(data)), "image/jpeg"); err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return PublicPath(name), nil
}

// Discard removes stored files by public path. Failures are logged only.
func (in *Ingestor) Discard(ctx context.Context, paths ...string) {
	for _, p := range paths {
		name, ok := NameFromPath(p)
		if !ok {
			continue
		}
		if err := in.backend.Delete(ctx, name); err != nil {
			slog.Warn("failed to discard upload", "path", p, "error", err)
		}
	}
}

// Open streams a stored file by name.
func (in *Ingestor) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	return in.backend.Open(ctx, path.Base(name))
}

package uploads

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

var (
	pngData  = []byte("\x89PNG\r\n\x1a\npng-bytes")
	jpegData = []byte("\xff\xd8\xff\xe0jpeg-bytes")
)

type testFile struct {
	name        string
	contentType string
	body        []byte
}

// fileHeaders builds real multipart headers the way an HTTP form would carry them.
func fileHeaders(t *testing.T, field string, files ...testFile) []*multipart.FileHeader {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, field, f.name))
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		if err != nil {
			t.Fatalf("CreatePart: %v", err)
		}
		part.Write(f.body)
	}
	w.Close()

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(32 << 20)
	if err != nil {
		t.Fatalf("ReadForm: %v", err)
	}
	t.Cleanup(func() { form.RemoveAll() })
	return form.File[field]
}

func newTestIngestor(t *testing.T) (*Ingestor, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "uploads")
	return NewIngestor(NewDiskBackend(dir)), dir
}

var fileNamePattern = regexp.MustCompile(`^/uploads/coverimage-\d+-[0-9a-f]{12}\.png$`)

func TestSaveFiles(t *testing.T) {
	in, dir := newTestIngestor(t)
	files := fileHeaders(t, "coverImage", testFile{"Shirt.PNG", "image/png", pngData})

	paths, err := in.SaveFiles(context.Background(), "coverImage", files)
	if err != nil {
		t.Fatalf("SaveFiles: %v", err)
	}
	if len(paths) != 1 || !fileNamePattern.MatchString(paths[0]) {
		t.Fatalf("unexpected paths %v", paths)
	}

	// The directory did not exist before the first save.
	data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(paths[0], PublicPrefix)))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if !bytes.Equal(data, pngData) {
		t.Errorf("stored %q", data)
	}
}

func TestSaveFilesRejects(t *testing.T) {
	big := bytes.Repeat([]byte("x"), MaxFileSize+1)
	many := make([]testFile, MaxFiles+1)
	for i := range many {
		many[i] = testFile{fmt.Sprintf("%d.jpg", i), "image/jpeg", jpegData}
	}

	tests := []struct {
		name  string
		files []testFile
		want  error
	}{
		{"not an image", []testFile{{"notes.txt", "text/plain", []byte("hi")}}, ErrNotImage},
		{"too large", []testFile{{"big.jpg", "image/jpeg", big}}, ErrFileTooLarge},
		{"too many", many, ErrTooManyFiles},
		{"one bad file rejects the batch", []testFile{{"ok.jpg", "image/jpeg", jpegData}, {"bad.pdf", "application/pdf", []byte("x")}}, ErrNotImage},
		{"image header on non-image bytes", []testFile{{"renamed.png", "image/png", []byte("<html><body>not a png</body></html>")}}, ErrNotImage},
		{"empty file", []testFile{{"empty.jpg", "image/jpeg", nil}}, ErrNotImage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, dir := newTestIngestor(t)
			_, err := in.SaveFiles(context.Background(), "additionalImages", fileHeaders(t, "additionalImages", tt.files...))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if _, err := os.Stat(dir); !os.IsNotExist(err) {
				t.Errorf("expected nothing written, stat err = %v", err)
			}
		})
	}
}

func TestSaveBase64(t *testing.T) {
	in, dir := newTestIngestor(t)
	payload := base64.StdEncoding.EncodeToString([]byte("jpeg-bytes"))

	for _, input := range []string{"data:image/jpeg;base64," + payload, payload} {
		p, err := in.SaveBase64(context.Background(), "cover", input)
		if err != nil {
			t.Fatalf("SaveBase64: %v", err)
		}
		if !strings.HasPrefix(p, "/uploads/cover-") || !strings.HasSuffix(p, ".jpg") {
			t.Errorf("unexpected path %s", p)
		}
		data, err := os.ReadFile(filepath.Join(dir, strings.TrimPrefix(p, PublicPrefix)))
		if err != nil || string(data) != "jpeg-bytes" {
			t.Errorf("stored %q, err %v", data, err)
		}
	}
}

func TestSaveBase64Rejects(t *testing.T) {
	in, _ := newTestIngestor(t)
	big := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("x"), MaxFileSize+1))

	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"garbage", "data:image/png;base64,!!not-base64!!", ErrInvalidBase64},
		{"empty after prefix", "data:image/png;base64,", ErrInvalidBase64},
		{"too large", big, ErrFileTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := in.SaveBase64(context.Background(), "cover", tt.payload); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestIsBase64Image(t *testing.T) {
	if !IsBase64Image("data:image/webp;base64,AAAA") {
		t.Error("expected data URL to be detected")
	}
	if IsBase64Image("/uploads/cover.jpg") {
		t.Error("stored path detected as base64")
	}
}

func TestDiscardAndOpen(t *testing.T) {
	in, _ := newTestIngestor(t)
	ctx := context.Background()
	p, err := in.SaveBase64(ctx, "cover", base64.StdEncoding.EncodeToString([]byte("abc")))
	if err != nil {
		t.Fatalf("SaveBase64: %v", err)
	}
	name, ok := NameFromPath(p)
	if !ok {
		t.Fatalf("NameFromPath(%s) failed", p)
	}

	rc, err := in.Open(ctx, name)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "abc" {
		t.Errorf("read %q", data)
	}

	in.Discard(ctx, p, "https://elsewhere.example/x.jpg")
	if _, err := in.Open(ctx, name); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after discard, got %v", err)
	}
}

func TestContentType(t *testing.T) {
	if got := ContentType("a.png"); got != "image/png" {
		t.Errorf("ContentType(a.png) = %s", got)
	}
	if got := ContentType("noext"); got != "application/octet-stream" {
		t.Errorf("ContentType(noext) = %s", got)
	}
}

package preview

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/phani41/brain-tumor-detection-cnn/internal/models"
)

func scan(n byte) models.Upload {
	return models.NewUpload("scan.png", "image/png", []byte{0x89, 'P', 'N', 'G', n})
}

func TestSequentialSelectionsKeepOneLivePreview(t *testing.T) {
	store := NewStore()
	m := NewManager(store)

	const selections = 5
	var uris []string
	for i := 0; i < selections; i++ {
		uri, err := m.SetPreview(scan(byte(i)))
		if err != nil {
			t.Fatalf("SetPreview #%d error: %v", i, err)
		}
		uris = append(uris, uri)
	}

	if store.Live() != 1 {
		t.Fatalf("live previews = %d, want 1", store.Live())
	}
	if m.Revoked() != selections-1 {
		t.Fatalf("revoked = %d, want %d", m.Revoked(), selections-1)
	}
	if m.Current() != uris[len(uris)-1] {
		t.Fatalf("current = %q, want last uri %q", m.Current(), uris[len(uris)-1])
	}
	for _, uri := range uris[:len(uris)-1] {
		id, _ := IDFromURI(uri)
		if _, ok := store.Get(id); ok {
			t.Fatalf("superseded preview %s still live", uri)
		}
	}
}

func TestReleaseOnTeardown(t *testing.T) {
	store := NewStore()
	m := NewManager(store)

	if _, err := m.SetPreview(scan(1)); err != nil {
		t.Fatalf("SetPreview error: %v", err)
	}
	m.Release()
	m.Release()

	if store.Live() != 0 {
		t.Fatalf("live previews = %d, want 0", store.Live())
	}
	if m.Current() != "" {
		t.Fatalf("current = %q, want empty", m.Current())
	}
	if m.Revoked() != 1 {
		t.Fatalf("revoked = %d, want 1", m.Revoked())
	}
}

func TestInvalidUploadKeepsActivePreview(t *testing.T) {
	store := NewStore()
	m := NewManager(store)

	uri, err := m.SetPreview(scan(1))
	if err != nil {
		t.Fatalf("SetPreview error: %v", err)
	}

	_, err = m.SetPreview(models.NewUpload("notes.txt", "text/plain", []byte("hello")))
	if !errors.Is(err, models.ErrUnsupportedMedia) {
		t.Fatalf("expected ErrUnsupportedMedia, got %v", err)
	}
	if m.Current() != uri || store.Live() != 1 {
		t.Fatalf("active preview changed: current=%q live=%d", m.Current(), store.Live())
	}
}

func TestManagersShareStoreIndependently(t *testing.T) {
	store := NewStore()
	a, b := NewManager(store), NewManager(store)

	if _, err := a.SetPreview(scan(1)); err != nil {
		t.Fatal(err)
	}
	if _, err := b.SetPreview(scan(2)); err != nil {
		t.Fatal(err)
	}
	if _, err := a.SetPreview(scan(3)); err != nil {
		t.Fatal(err)
	}

	if store.Live() != 2 {
		t.Fatalf("live previews = %d, want one per manager", store.Live())
	}
}

func TestIDFromURI(t *testing.T) {
	if id, ok := IDFromURI(URI("abc")); !ok || id != "abc" {
		t.Fatalf("IDFromURI round trip = %q, %v", id, ok)
	}
	if _, ok := IDFromURI("/elsewhere/abc"); ok {
		t.Fatal("expected foreign uri to be rejected")
	}
	if _, ok := IDFromURI(URIPrefix); ok {
		t.Fatal("expected empty id to be rejected")
	}
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.SetGray(x, x%h, color.Gray{Y: 200})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestLargePreviewIsDownscaled(t *testing.T) {
	store := NewStore()
	id, err := store.Create(models.NewUpload("scan.png", "", encodePNG(t, 1024, 800)))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	blob, _ := store.Get(id)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(blob.Data))
	if err != nil {
		t.Fatalf("stored preview does not decode: %v", err)
	}
	if cfg.Width != MaxEdge || cfg.Height > MaxEdge {
		t.Fatalf("preview is %dx%d, want longest edge %d", cfg.Width, cfg.Height, MaxEdge)
	}
	if blob.ContentType != "image/png" {
		t.Fatalf("content type = %q", blob.ContentType)
	}
}

func TestSmallPreviewIsKeptAsUploaded(t *testing.T) {
	store := NewStore()
	data := encodePNG(t, 64, 64)
	id, err := store.Create(models.NewUpload("scan.png", "image/png", data))
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	blob, _ := store.Get(id)
	if !bytes.Equal(blob.Data, data) {
		t.Fatal("small preview should be stored unchanged")
	}
}

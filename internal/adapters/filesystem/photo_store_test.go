package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/skiphire/internal/ports/secondary"
)

func TestPhotoStore_Upload(t *testing.T) {
	base := t.TempDir()
	store, err := NewPhotoStore(base)
	if err != nil {
		t.Fatalf("NewPhotoStore failed: %v", err)
	}

	receipt, err := store.Upload(context.Background(), secondary.PhotoUpload{
		SessionID: "abc-123",
		Filename:  "driveway.jpg",
		Content:   strings.NewReader("jpeg bytes"),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	want := filepath.Join(base, "abc-123", "driveway.jpg")
	if receipt.Location != want {
		t.Errorf("expected location %s, got %s", want, receipt.Location)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("expected file on disk: %v", err)
	}
	if string(data) != "jpeg bytes" {
		t.Errorf("unexpected content %q", data)
	}
}

func TestPhotoStore_ConfinesPaths(t *testing.T) {
	base := t.TempDir()
	store, _ := NewPhotoStore(base)

	receipt, err := store.Upload(context.Background(), secondary.PhotoUpload{
		SessionID: "abc",
		Filename:  "../../etc/passwd",
		Content:   strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if filepath.Dir(receipt.Location) != filepath.Join(base, "abc") {
		t.Errorf("expected photo inside session dir, got %s", receipt.Location)
	}

	tests := []secondary.PhotoUpload{
		{SessionID: "abc", Filename: "..", Content: strings.NewReader("x")},
		{SessionID: "../abc", Filename: "a.jpg", Content: strings.NewReader("x")},
		{SessionID: "", Filename: "a.jpg", Content: strings.NewReader("x")},
	}
	for _, p := range tests {
		if _, err := store.Upload(context.Background(), p); err == nil {
			t.Errorf("expected error for session %q file %q", p.SessionID, p.Filename)
		}
	}
}

func TestPhotoStore_Cancelled(t *testing.T) {
	store, _ := NewPhotoStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Upload(ctx, secondary.PhotoUpload{SessionID: "abc", Filename: "a.jpg", Content: strings.NewReader("x")})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(store.BasePath(), "abc", "a.jpg")); !os.IsNotExist(statErr) {
		t.Error("expected partial file removed")
	}
}

package cloudinary

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/example/skiphire/internal/ports/secondary"
)

type fakeUploader struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = params
	return f.result, f.err
}

func TestPhotoStore_Upload(t *testing.T) {
	fake := &fakeUploader{result: &uploader.UploadResult{SecureURL: "https://res.cloudinary.com/demo/image/upload/skiphire/abc-drive.jpg"}}
	store := &PhotoStore{api: fake, folder: "skiphire"}

	receipt, err := store.Upload(context.Background(), secondary.PhotoUpload{
		SessionID: "abc",
		Filename:  "drive.jpg",
		Content:   strings.NewReader("x"),
	})
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if receipt.Location != fake.result.SecureURL {
		t.Errorf("expected secure URL, got %s", receipt.Location)
	}
	if fake.params.Folder != "skiphire" || fake.params.PublicID != "abc-drive" {
		t.Errorf("unexpected params folder=%s public_id=%s", fake.params.Folder, fake.params.PublicID)
	}
}

func TestPhotoStore_UploadErrors(t *testing.T) {
	tests := []struct {
		name   string
		result *uploader.UploadResult
		err    error
	}{
		{name: "transport error", err: errors.New("connection reset")},
		{name: "api error", result: func() *uploader.UploadResult {
			r := &uploader.UploadResult{}
			r.Error.Message = "Invalid image file"
			return r
		}()},
		{name: "no url", result: &uploader.UploadResult{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &PhotoStore{api: &fakeUploader{result: tt.result, err: tt.err}}
			if _, err := store.Upload(context.Background(), secondary.PhotoUpload{SessionID: "abc", Filename: "a.jpg"}); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestNewPhotoStore_RequiresCredentials(t *testing.T) {
	if _, err := NewPhotoStore("demo", "", "secret", "skiphire"); err == nil {
		t.Error("expected error without an API key")
	}
}

package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := NewLocalStorage(dir)
	require.NoError(t, err)

	path, err := s.Save(context.Background(), "abc.png", "image/png", strings.NewReader("data"))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/abc.png", path)

	b, err := os.ReadFile(filepath.Join(dir, "abc.png"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(b))

	// 同名は上書きしない
	_, err = s.Save(context.Background(), "abc.png", "image/png", strings.NewReader("other"))
	assert.Error(t, err)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, name := range []string{"../x.png", "a/b.png", ""} {
		_, err := s.Save(context.Background(), name, "image/png", strings.NewReader("x"))
		assert.Error(t, err, name)
	}
}

func TestNewLocalStorage_RequiresDir(t *testing.T) {
	_, err := NewLocalStorage(" ")
	assert.Error(t, err)
}

type fakeUploader struct {
	params uploader.UploadParams
	result *uploader.UploadResult
	err    error
}

func (f *fakeUploader) Upload(ctx context.Context, file interface{}, p uploader.UploadParams) (*uploader.UploadResult, error) {
	f.params = p
	return f.result, f.err
}

func TestCloudinaryStorage_Save(t *testing.T) {
	up := &fakeUploader{result: &uploader.UploadResult{URL: "http://res.cloudinary.com/demo/image/upload/v1/products/abc.png"}}
	s := &CloudinaryStorage{upload: up, folder: "products"}

	url, err := s.Save(context.Background(), "abc.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/image/upload/v1/products/abc.png", url)
	assert.Equal(t, "abc", up.params.PublicID)
	assert.Equal(t, "products", up.params.Folder)
	assert.Equal(t, "image", up.params.ResourceType)
}

func TestCloudinaryStorage_Errors(t *testing.T) {
	s := &CloudinaryStorage{upload: &fakeUploader{err: errors.New("boom")}}
	_, err := s.Save(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.Error(t, err)

	s = &CloudinaryStorage{upload: &fakeUploader{result: &uploader.UploadResult{Error: api.ErrorResp{Message: "Invalid image file"}}}}
	_, err = s.Save(context.Background(), "a.png", "image/png", strings.NewReader("x"))
	assert.ErrorContains(t, err, "Invalid image file")

	_, err = NewCloudinaryStorage("", "")
	assert.Error(t, err)
}

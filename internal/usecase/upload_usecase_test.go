package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/hamiddiallo/ecommerce/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func TestUploadImage_SavesPNGUnderGeneratedName(t *testing.T) {
	storage := &StorageMock{}
	uc := usecase.NewUploadUsecase(storage, 1024)

	storage.On("Save", mock.Anything, mock.MatchedBy(func(name string) bool {
		return strings.HasSuffix(name, ".png") && len(name) == 36+4
	}), "image/png").Return("/uploads/generated.png", nil)

	out, err := uc.UploadImage(context.Background(), bytes.NewReader(pngHeader))
	require.NoError(t, err)
	assert.Equal(t, "/uploads/generated.png", out.FilePath)
	assert.Equal(t, "image/png", out.ContentType)
	assert.Equal(t, int64(len(pngHeader)), out.Size)
	assert.Equal(t, pngHeader, storage.saved)
}

func TestUploadImage_RejectsNonImage(t *testing.T) {
	storage := &StorageMock{}
	uc := usecase.NewUploadUsecase(storage, 1024)

	_, err := uc.UploadImage(context.Background(), strings.NewReader("just some text"))
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "unsupported file type")
	storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestUploadImage_SizeLimits(t *testing.T) {
	storage := &StorageMock{}
	uc := usecase.NewUploadUsecase(storage, 16)

	_, err := uc.UploadImage(context.Background(), bytes.NewReader(pngHeader))
	assertStatus(t, err, http.StatusBadRequest)
	assertErrContains(t, err, "exceeds")

	_, err = uc.UploadImage(context.Background(), bytes.NewReader(nil))
	assertErrContains(t, err, "file is empty")
}

func TestUploadImage_StorageFailure(t *testing.T) {
	storage := &StorageMock{}
	uc := usecase.NewUploadUsecase(storage, 1024)

	storage.On("Save", mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("disk full"))

	_, err := uc.UploadImage(context.Background(), bytes.NewReader(pngHeader))
	assertStatus(t, err, http.StatusInternalServerError)
}

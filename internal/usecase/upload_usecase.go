package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// FileStorage はアップロードされた画像の保存先。公開URL(パス)を返す
type FileStorage interface {
	Save(ctx context.Context, name string, contentType string, r io.Reader) (string, error)
}

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/gif":  true,
}

type UploadUsecase struct {
	storage  FileStorage
	maxBytes int64
}

func NewUploadUsecase(storage FileStorage, maxBytes int64) *UploadUsecase {
	return &UploadUsecase{storage: storage, maxBytes: maxBytes}
}

type UploadOutput struct {
	FilePath    string `json:"file_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// 中身からMIMEを判定し、画像だけ保存する。ファイル名はuuidで振り直す
func (u *UploadUsecase) UploadImage(ctx context.Context, r io.Reader) (UploadOutput, error) {
	data, err := io.ReadAll(io.LimitReader(r, u.maxBytes+1))
	if err != nil {
		return UploadOutput{}, WrapHTTPError(http.StatusBadRequest, "invalid file", err)
	}
	if len(data) == 0 {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "file is empty")
	}
	if int64(len(data)) > u.maxBytes {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, fmt.Sprintf("file exceeds %d bytes", u.maxBytes))
	}

	mt := mimetype.Detect(data)
	if !allowedImageTypes[mt.String()] {
		return UploadOutput{}, NewHTTPError(http.StatusBadRequest, "unsupported file type")
	}

	name := uuid.NewString() + mt.Extension()
	path, err := u.storage.Save(ctx, name, mt.String(), bytes.NewReader(data))
	if err != nil {
		return UploadOutput{}, WrapHTTPError(http.StatusInternalServerError, "upload failed", err)
	}
	return UploadOutput{FilePath: path, ContentType: mt.String(), Size: int64(len(data))}, nil
}

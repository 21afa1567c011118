package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PublicPrefix は静的配信するURLのパス
const PublicPrefix = "/uploads"

// LocalStorage はアップロード画像をディスクに保存し /uploads/<name> を返す
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("upload dir is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) Dir() string { return s.dir }

func (s *LocalStorage) Save(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	// ディレクトリを抜けさせない
	base := filepath.Base(name)
	if base == "." || base == string(filepath.Separator) || base != name {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dst := filepath.Join(s.dir, base)
	f, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(dst)
		return "", fmt.Errorf("close file: %w", err)
	}
	return PublicPrefix + "/" + base, nil
}

package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// LocalStore はローカルファイルシステムに画像を保存するBlobStore実装。
// 保存名は衝突しないようUUIDで採番し、/uploads/配下の公開パスを返す。
type LocalStore struct {
	dir string
}

var _ BlobStore = (*LocalStore)(nil)

// NewLocalStore は保存先ディレクトリを作成してLocalStoreを生成する。
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("アップロードディレクトリの作成に失敗: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Dir は保存先ディレクトリを返す。静的配信のルートとして使う。
func (s *LocalStore) Dir() string {
	return s.dir
}

// Save は画像を保存し、/uploads/<name>形式の公開パスを返す。
// 元のファイル名は拡張子のみ引き継ぐ。
func (s *LocalStore) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	name := uuid.New().String() + safeExt(filename)
	path := filepath.Join(s.dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("画像ファイルの作成に失敗: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("画像の書き込みに失敗: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("画像ファイルのクローズに失敗: %w", err)
	}

	return "/uploads/" + name, nil
}

// safeExt はファイル名から拡張子を取り出す。
// パス区切りを含むなど怪しい拡張子は捨てる。
func safeExt(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) > 10 {
		return ""
	}
	return ext
}

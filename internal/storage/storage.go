// Package storage は物件画像のバイナリ保存を提供する。
//
// 保存先はローカルファイルシステムとS3の2種類で、どちらも
// 保存後にフィードへ埋め込む公開URLパスを返す。
package storage

import (
	"context"
	"io"
)

// BlobStore は画像バイナリの保存インターフェース。
// Saveは保存に成功すると公開参照（URLまたはパス）を返す。
type BlobStore interface {
	Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
}

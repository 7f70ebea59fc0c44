package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// s3Uploader はS3Storeが使うAPIの最小インターフェース。テスト差し替え用。
type s3Uploader interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store はS3バケットに画像を保存するBlobStore実装。
// 認証情報は環境変数・インスタンスロールなどSDKの既定チェーンから解決する。
type S3Store struct {
	client    s3Uploader
	bucket    string
	publicURL string
}

var _ BlobStore = (*S3Store)(nil)

// NewS3Store はSDKの既定設定でS3クライアントを構築してS3Storeを生成する。
// publicURLは保存後の参照の組み立てに使うベースURL
// （例: https://cdn.example.com）。
func NewS3Store(ctx context.Context, bucket, publicURL string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS SDK設定の読み込みに失敗: %w", err)
	}
	return &S3Store{
		client:    s3.NewFromConfig(cfg),
		bucket:    bucket,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}, nil
}

// Save は画像をrentals/プレフィックス配下にアップロードし、公開URLを返す。
func (s *S3Store) Save(ctx context.Context, filename, contentType string, r io.Reader) (string, error) {
	key := "rentals/" + uuid.New().String() + safeExt(filename)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        r,
	})
	if err != nil {
		return "", fmt.Errorf("S3へのアップロードに失敗: %w", err)
	}

	return s.publicURL + "/" + key, nil
}

package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/John-Robertt/docark/internal/classify"
)

// S3API 是 S3Store 消费的最小客户端接口（便于用 stub 测试）。
type S3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, opts ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// S3Store 把工件归档到 S3。
//
// S3 对同名 key 是覆盖语义，所以先 HeadObject 探测存在性，
// 冲突时与 DirStore 一样走数字后缀重试。
type S3Store struct {
	client S3API
	bucket string
	prefix string
}

func NewS3Store(client S3API, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: prefix}
}

// CheckBucket 启动时校验容器可解析（配置校验的一部分，失败即 fatal）。
func (s *S3Store) CheckBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		return fmt.Errorf("归档 bucket 不可用 %q：%w", s.bucket, err)
	}
	return nil
}

func (s *S3Store) Put(ctx context.Context, name string, data []byte) (string, error) {
	try := name
	for n := 0; ; n++ {
		if n > 0 {
			try = suffixed(name, n)
		}
		if n > maxSuffixRetry {
			return "", fmt.Errorf("同名冲突重试超过 %d 次：%q", maxSuffixRetry, name)
		}

		key := path.Join(s.prefix, try)
		exists, err := s.exists(ctx, key)
		if err != nil {
			return "", err
		}
		if exists {
			continue
		}

		_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(data),
			ContentType: aws.String(classify.PDFContentType),
		})
		if err != nil {
			return "", fmt.Errorf("写入 s3://%s/%s 失败：%w", s.bucket, key, err)
		}
		return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
	}
}

func (s *S3Store) exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}
	var nsk *types.NoSuchKey
	var nf *types.NotFound
	if errors.As(err, &nsk) || errors.As(err, &nf) {
		return false, nil
	}
	return false, fmt.Errorf("探测 s3://%s/%s 失败：%w", s.bucket, key, err)
}

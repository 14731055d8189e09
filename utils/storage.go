package utils

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

type StorageConfig struct {
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	// Endpoint of an S3-compatible object store.
	Endpoint string
}

// Storage uploads public assets (product images) to an S3-compatible
// object store.
type Storage struct {
	client *s3.S3
	bucket string
	host   string
}

func NewStorage(cfg StorageConfig) (*Storage, error) {
	if cfg.Bucket == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("storage: bucket and endpoint are required")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("storage: parse endpoint: %w", err)
	}

	sess, err := session.NewSession(&aws.Config{
		Region:   aws.String(cfg.Region),
		Endpoint: aws.String(cfg.Endpoint),
		Credentials: credentials.NewStaticCredentials(
			cfg.AccessKey, cfg.SecretKey, "",
		),
	})
	if err != nil {
		return nil, err
	}

	return &Storage{
		client: s3.New(sess),
		bucket: cfg.Bucket,
		host:   u.Host,
	}, nil
}

// UploadFile stores the file publicly and returns its URL.
func (st *Storage) UploadFile(file []byte, fileName, folder, contentType string) (string, error) {
	filePath := fmt.Sprintf("%s/%s", folder, fileName)
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := st.client.PutObject(&s3.PutObjectInput{
		Bucket:        aws.String(st.bucket),
		Key:           aws.String(filePath),
		Body:          bytes.NewReader(file),
		ContentLength: aws.Int64(int64(len(file))),
		ContentType:   aws.String(contentType),
		ACL:           aws.String("public-read"),
	})
	if err != nil {
		return "", fmt.Errorf("unable to upload file to storage: %v", err)
	}

	return fmt.Sprintf("https://%s.%s/%s", st.bucket, strings.TrimPrefix(st.host, "www."), filePath), nil
}

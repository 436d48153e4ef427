package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cloo-solutions/shopdesk/internal/domain"
)

// S3ClientConfig holds configuration for S3DocumentStore
type S3ClientConfig struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UsePathStyle    bool
}

// S3DocumentStore keeps knowledge base documents in S3-compatible storage
// (e.g., RustFS) under "<tenant folder>/<file name>".
type S3DocumentStore struct {
	client *s3.Client
	bucket string
}

// NewS3DocumentStore creates a new S3DocumentStore with the given configuration
func NewS3DocumentStore(ctx context.Context, cfg S3ClientConfig) (*S3DocumentStore, error) {
	// Create custom resolver for S3-compatible endpoints
	customResolver := aws.EndpointResolverWithOptionsFunc(
		func(service, region string, options ...interface{}) (aws.Endpoint, error) {
			if cfg.Endpoint != "" {
				return aws.Endpoint{
					URL:               cfg.Endpoint,
					HostnameImmutable: true,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		},
	)

	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
		config.WithEndpointResolverWithOptions(customResolver),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3DocumentStore{
		client: client,
		bucket: cfg.Bucket,
	}, nil
}

// ListDocuments returns the tenant's .txt documents sorted by name
func (s *S3DocumentStore) ListDocuments(ctx context.Context, tenant domain.Tenant) ([]domain.Document, error) {
	prefix := tenant.DocumentFolder() + "/"

	var keys []string
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: list objects: %w", domain.ErrStorageOperationFail, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			name := strings.TrimPrefix(key, prefix)
			// Only direct children of the folder count
			if strings.Contains(name, "/") || !isDocumentName(name) {
				continue
			}
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	docs := make([]domain.Document, 0, len(keys))
	for _, key := range keys {
		content, err := s.getObject(ctx, key)
		if err != nil {
			return nil, err
		}
		docs = append(docs, domain.Document{
			Tenant:  tenant,
			Name:    path.Base(key),
			Content: content,
		})
	}
	return docs, nil
}

// PutDocument writes doc, replacing any document of the same name
func (s *S3DocumentStore) PutDocument(ctx context.Context, doc domain.Document) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(documentKey(doc)),
		Body:        bytes.NewReader([]byte(doc.Content)),
		ContentType: aws.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return fmt.Errorf("%w: put object: %w", domain.ErrStorageOperationFail, err)
	}
	return nil
}

func (s *S3DocumentStore) getObject(ctx context.Context, key string) (string, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("%w: get object %s: %w", domain.ErrStorageOperationFail, key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read object %s: %w", domain.ErrStorageOperationFail, key, err)
	}
	return string(data), nil
}

// EnsureBucket creates the bucket if it doesn't exist
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket: %w", err)
	}

	return nil
}

func documentKey(doc domain.Document) string {
	return doc.Tenant.DocumentFolder() + "/" + doc.Name
}

func isDocumentName(name string) bool {
	return name != "" && strings.HasSuffix(strings.ToLower(name), domain.DocumentExtension)
}

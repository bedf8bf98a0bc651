package database

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/sirupsen/logrus"
)

// ObjectPutter subconjunto del cliente S3 usado por el archivo
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// ArchiveClient guarda copias de los documentos enviados en un storage S3 compatible
type ArchiveClient struct {
	s3Client ObjectPutter
	endpoint string
	bucket   string
	logger   *logrus.Logger
}

// NewArchiveClient crea el cliente del archivo a partir de la configuración
func NewArchiveClient(ctx context.Context, cfg *config.StorageConfig, logger *logrus.Logger) (*ArchiveClient, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true
	})

	return NewArchiveClientWith(s3Client, cfg.Endpoint, cfg.Bucket, logger), nil
}

// NewArchiveClientWith crea el archivo sobre un cliente S3 existente
func NewArchiveClientWith(client ObjectPutter, endpoint, bucket string, logger *logrus.Logger) *ArchiveClient {
	return &ArchiveClient{
		s3Client: client,
		endpoint: endpoint,
		bucket:   bucket,
		logger:   logger,
	}
}

// HealthCheck verifica que el bucket exista
func (a *ArchiveClient) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := a.s3Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(a.bucket),
	})
	if err != nil {
		return fmt.Errorf("error checking archive bucket: %w", err)
	}
	return nil
}

// PutDocument guarda un archivo bajo documents/{documentID}/{name} y retorna su URL
func (a *ArchiveClient) PutDocument(ctx context.Context, documentID, name string, data []byte) (string, error) {
	key := path.Join("documents", documentID, name)

	_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String("application/json"),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		return "", fmt.Errorf("error uploading %s to archive: %w", key, err)
	}

	url := fmt.Sprintf("%s/%s/%s", a.endpoint, a.bucket, key)

	a.logger.WithFields(logrus.Fields{
		"bucket":      a.bucket,
		"key":         key,
		"document_id": documentID,
		"size":        len(data),
	}).Info("Document archived")

	return url, nil
}

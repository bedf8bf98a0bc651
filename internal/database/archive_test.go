package database

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	puts    []*s3.PutObjectInput
	bodies  [][]byte
	failPut error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.failPut != nil {
		return nil, f.failPut
	}
	body, _ := io.ReadAll(params.Body)
	f.puts = append(f.puts, params)
	f.bodies = append(f.bodies, body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(_ context.Context, _ *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, nil
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestArchiveClient_PutDocument(t *testing.T) {
	fake := &fakeS3{}
	archive := NewArchiveClientWith(fake, "https://storage.example.com", "einvoice-documents", quietLogger())

	url, err := archive.PutDocument(context.Background(), "UUID-1", "payload.json", []byte(`{"documents":[]}`))

	require.NoError(t, err)
	assert.Equal(t, "https://storage.example.com/einvoice-documents/documents/UUID-1/payload.json", url)
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "einvoice-documents", aws.ToString(fake.puts[0].Bucket))
	assert.Equal(t, "documents/UUID-1/payload.json", aws.ToString(fake.puts[0].Key))
	assert.Equal(t, int64(16), aws.ToInt64(fake.puts[0].ContentLength))
	assert.JSONEq(t, `{"documents":[]}`, string(fake.bodies[0]))
}

func TestArchiveClient_PutDocumentError(t *testing.T) {
	fake := &fakeS3{failPut: errors.New("access denied")}
	archive := NewArchiveClientWith(fake, "https://storage.example.com", "bucket", quietLogger())

	_, err := archive.PutDocument(context.Background(), "UUID-1", "response.json", []byte(`{}`))

	assert.ErrorContains(t, err, "access denied")
	assert.NoError(t, archive.HealthCheck(context.Background()))
}

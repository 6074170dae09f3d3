package storage

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/require"
)

type fakeS3 struct {
	in  *s3.PutObjectInput
	err error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestNew_Validation(t *testing.T) {
	_, err := New(nil, "bucket", "ap-northeast-1")
	require.Error(t, err)
	_, err = New(&fakeS3{}, " ", "ap-northeast-1")
	require.Error(t, err)
	_, err = New(&fakeS3{}, "bucket", "")
	require.Error(t, err)
}

func TestUpload(t *testing.T) {
	fake := &fakeS3{}
	client, err := New(fake, "qr-bucket", "ap-northeast-1")
	require.NoError(t, err)

	png := []byte{0x89, 0x50, 0x4e, 0x47}
	url, err := client.Upload(context.Background(), "u1", "c1", png)
	require.NoError(t, err)
	require.Equal(t, "https://qr-bucket.s3.ap-northeast-1.amazonaws.com/qrcode/u1/c1.png", url)

	require.Equal(t, "qr-bucket", aws.ToString(fake.in.Bucket))
	require.Equal(t, "qrcode/u1/c1.png", aws.ToString(fake.in.Key))
	require.Equal(t, "image/png", aws.ToString(fake.in.ContentType))

	body, err := io.ReadAll(fake.in.Body)
	require.NoError(t, err)
	require.Equal(t, png, body)
}

func TestUpload_EmptyImage(t *testing.T) {
	fake := &fakeS3{}
	client, err := New(fake, "qr-bucket", "ap-northeast-1")
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "u1", "c1", nil)
	require.Error(t, err)
	require.Nil(t, fake.in)
}

func TestUpload_PutFailure(t *testing.T) {
	fake := &fakeS3{err: errors.New("access denied")}
	client, err := New(fake, "qr-bucket", "ap-northeast-1")
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "u1", "c1", []byte{0x01})
	require.ErrorContains(t, err, "access denied")
}

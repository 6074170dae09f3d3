// Package storage uploads generated contact QR images to S3 and hands back
// their public URLs.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// s3API is the minimal S3 interface required by Client.
// Defined here for testability.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Client uploads QR images into one bucket under qrcode/<user>/<card>.png.
// The bucket is expected to allow public reads on that prefix.
type Client struct {
	api    s3API
	bucket string
	region string
}

// New creates a storage Client for the given bucket and region.
func New(api s3API, bucket, region string) (*Client, error) {
	if api == nil {
		return nil, errors.New("storage: api must not be nil")
	}
	if strings.TrimSpace(bucket) == "" {
		return nil, errors.New("storage: bucket must not be empty")
	}
	if strings.TrimSpace(region) == "" {
		return nil, errors.New("storage: region must not be empty")
	}
	return &Client{api: api, bucket: bucket, region: region}, nil
}

// Upload stores a PNG and returns its public URL. Re-uploading the same card
// overwrites the previous object, which is fine: the content only changes
// when the card does.
func (c *Client) Upload(ctx context.Context, userID, cardID string, png []byte) (string, error) {
	if len(png) == 0 {
		return "", errors.New("storage: image must not be empty")
	}

	key := fmt.Sprintf("qrcode/%s/%s.png", userID, cardID)
	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(png),
		ContentType: aws.String("image/png"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: put object %s: %w", key, err)
	}

	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key), nil
}

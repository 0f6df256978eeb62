// Package media issues presigned object-storage URLs for recipe photos. The
// photo bytes never pass through the sync engine: a recipe carries only its
// storage key, and clients up/download directly against the presigned URLs.
package media

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Options carries the object-storage connection settings.
type Options struct {
	Region       string
	Bucket       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

const urlExpiry = 15 * time.Minute

// Service produces presigned PUT and GET URLs for photo objects.
type Service struct {
	opts    Options
	presign presigner
}

// presigner is the subset of s3.PresignClient the service uses.
type presigner interface {
	PresignPutObject(ctx context.Context, params *s3.PutObjectInput,
		optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput,
		optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

func NewService(ctx context.Context, opts Options) (*Service, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(opts.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			opts.AccessKey,
			opts.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(opts.BaseEndpoint)
		}
	})

	return &Service{opts: opts, presign: s3.NewPresignClient(client)}, nil
}

// NewPhotoKey returns a fresh date-partitioned storage key.
func NewPhotoKey() string {
	d := time.Now()
	return fmt.Sprintf("photos/%d/%d/%d/%v", d.Year(), d.Month(), d.Day(), uuid.New())
}

// PresignedPutURL returns a fresh storage key and an upload URL for it.
func (s *Service) PresignedPutURL(ctx context.Context) (string, string, error) {
	key := NewPhotoKey()

	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket: &s.opts.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return "", "", err
	}

	return key, req.URL, nil
}

// PresignedGetURL returns a download URL for an existing photo key.
func (s *Service) PresignedGetURL(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.opts.Bucket,
		Key:    &key,
	}, s3.WithPresignExpires(urlExpiry))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

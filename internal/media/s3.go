// Copyright (c) 2026 VidTube. All rights reserved.
// Author: arjun.mehra.dev@gmail.com

package media

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/arjunmehra/vidtube/internal/platform/apperr"
	"github.com/arjunmehra/vidtube/internal/platform/config"
	"github.com/arjunmehra/vidtube/pkg/uuidv7"
)

// uploadPartSize tunes the multipart chunking for the S3 uploader.
const uploadPartSize = 5 * 1024 * 1024

// S3Store implements [Store] backed by an S3-compatible object store.
//
// # Compatibility
//
// Path-style addressing and an optional custom endpoint keep the store usable
// against MinIO and Cloudflare R2 in development, not just AWS proper.
type S3Store struct {
	uploader *manager.Uploader
	client   *s3.Client
	bucket   string
	baseURL  string
}

/*
NewS3Store configures an uploader and client targeting the configured bucket.

Parameters:
  - context: context.Context
  - cfg: *config.Config (S3Bucket, S3Region, S3Endpoint, S3PublicBaseURL)

Returns:
  - *S3Store: Ready-to-use media store
  - error: If the bucket is missing or AWS credentials cannot be resolved
*/
func NewS3Store(context context.Context, cfg *config.Config) (*S3Store, error) {
	if strings.TrimSpace(cfg.S3Bucket) == "" {
		return nil, fmt.Errorf("media_s3_bucket_required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.S3Region),
	}

	// Custom endpoints (MinIO, R2) replace the default AWS resolver.
	if strings.TrimSpace(cfg.S3Endpoint) != "" {
		resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, _ ...interface{}) (aws.Endpoint, error) {
			if service == s3.ServiceID {
				return aws.Endpoint{
					URL:           cfg.S3Endpoint,
					SigningRegion: cfg.S3Region,
				}, nil
			}
			return aws.Endpoint{}, &aws.EndpointNotFoundError{}
		})
		loadOpts = append(loadOpts, awsconfig.WithEndpointResolverWithOptions(resolver))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("media_load_aws_config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = true
	})

	uploader := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = uploadPartSize
		u.LeavePartsOnError = false
	})

	return &S3Store{
		uploader: uploader,
		client:   client,
		bucket:   cfg.S3Bucket,
		baseURL:  strings.TrimSuffix(cfg.S3PublicBaseURL, "/"),
	}, nil
}

// Upload pushes the file to the bucket under a fresh time-ordered key.
//
// The object key is never derived from the client filename; only the
// extension survives, so colliding or hostile names cannot overwrite
// existing assets.
func (s *S3Store) Upload(context context.Context, file FileUpload) (*Asset, error) {
	key := "media/" + uuidv7.New() + strings.ToLower(path.Ext(file.Name))

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   manager.ReadSeekCloser(file.Content),
		ACL:    s3types.ObjectCannedACLPublicRead,
	}
	if file.ContentType != "" {
		input.ContentType = aws.String(file.ContentType)
	}

	if _, err := s.uploader.Upload(context, input); err != nil {
		return nil, apperr.Upload(fmt.Errorf("media_s3_upload %s: %w", key, err))
	}

	return &Asset{
		RemoteURL: s.publicURL(key),
		AssetID:   key,
	}, nil
}

// Delete removes the object identified by assetID from the bucket.
//
// Failures surface as apperr.Delete so callers can log them without
// aborting the operation that triggered the cleanup.
func (s *S3Store) Delete(context context.Context, assetID string) error {
	if strings.TrimSpace(assetID) == "" {
		return nil
	}

	_, err := s.client.DeleteObject(context, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(assetID),
	})
	if err != nil {
		return apperr.Delete(fmt.Errorf("media_s3_delete %s: %w", assetID, err))
	}

	return nil
}

// publicURL maps an object key to its externally reachable location.
func (s *S3Store) publicURL(key string) string {
	if s.baseURL == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key)
}

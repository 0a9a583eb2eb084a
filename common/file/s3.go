// Copyright (c) CurioSwitch (choko@curioswitch.org)
// SPDX-License-Identifier: BUSL-1.1

package file

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type S3Config struct {
	Bucket string

	// PublicBaseURL is prepended to object keys to form the returned URL,
	// e.g. a CloudFront distribution. Defaults to the bucket's virtual-hosted
	// S3 URL.
	PublicBaseURL string

	// PublicRead sets a public-read ACL on uploaded objects. Leave unset for
	// buckets with ACLs disabled.
	PublicRead bool
}

// S3 writes files to an S3 bucket.
type S3 struct {
	client *s3.Client
	conf   S3Config
}

// NewS3Client creates an S3 client from the default AWS configuration chain.
func NewS3Client(ctx context.Context, region string) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("file: loading aws config: %w", err)
	}
	return s3.NewFromConfig(cfg), nil
}

func NewS3(client *s3.Client, conf S3Config) *S3 {
	if conf.PublicBaseURL == "" {
		conf.PublicBaseURL = fmt.Sprintf("https://%s.s3.amazonaws.com", conf.Bucket)
	}
	conf.PublicBaseURL = strings.TrimSuffix(conf.PublicBaseURL, "/")
	return &S3{
		client: client,
		conf:   conf,
	}
}

func (s *S3) WriteFile(ctx context.Context, path string, contentType string, data []byte) (string, error) {
	in := &s3.PutObjectInput{
		Bucket:      aws.String(s.conf.Bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}
	if s.conf.PublicRead {
		in.ACL = s3types.ObjectCannedACLPublicRead
	}
	if _, err := s.client.PutObject(ctx, in); err != nil {
		return "", fmt.Errorf("file: uploading %s to s3: %w", path, err)
	}
	return s.conf.PublicBaseURL + "/" + path, nil
}

package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3SynonymState implements SynonymState backed by S3, for deployments that
// manage the synonym table as a shared object rather than a baked-in file.

type S3SynonymState struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3SynonymState(s3Client *s3.Client, bucket, key string) *S3SynonymState {
	return &S3SynonymState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3SynonymState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get synonym object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// S3RecipeFixtureState implements RecipeFixtureState backed by S3.

type S3RecipeFixtureState struct {
	bucket string
	key    string
	s3     *s3.Client
}

func NewS3RecipeFixtureState(s3Client *s3.Client, bucket, key string) *S3RecipeFixtureState {
	return &S3RecipeFixtureState{
		bucket: bucket,
		key:    key,
		s3:     s3Client,
	}
}

func (s *S3RecipeFixtureState) Load(ctx context.Context) ([]byte, error) {
	resp, err := s.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe fixture object from S3: %w", err)
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

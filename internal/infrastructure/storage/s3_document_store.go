package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	awsv2 "github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"

	"github.com/bailflow/core/internal/domain/lease"
	"github.com/bailflow/core/internal/infrastructure/config"
)

// S3DocumentStore renders sealed lease documents and keeps them in an
// S3-compatible bucket. The rendered artifact is the immutable record a
// sealed lease points to; it must never be overwritten.
type S3DocumentStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
	logger    *zap.Logger
}

// NewS3DocumentStore creates an S3-backed document store
func NewS3DocumentStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (*S3DocumentStore, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load storage configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = awsv2.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3DocumentStore{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: strings.TrimSuffix(cfg.KeyPrefix, "/"),
		logger:    logger,
	}, nil
}

// EnsureBucket creates the bucket if it does not exist yet
func (s *S3DocumentStore) EnsureBucket(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: awsv2.String(s.bucket),
	})
	if err == nil {
		return nil
	}

	var notFound *types.NotFound
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}

	_, err = s.client.CreateBucket(ctx, &s3.CreateBucketInput{
		Bucket: awsv2.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	s.logger.Info("created storage bucket", zap.String("bucket", s.bucket))
	return nil
}

// GenerateSealedDocument renders the frozen contract with its signature
// proofs and stores it under a timestamped key.
func (s *S3DocumentStore) GenerateSealedDocument(ctx context.Context, l *lease.Lease, signers []lease.Signer) (string, error) {
	key := fmt.Sprintf("%s/%s/sealed-%d.txt", s.keyPrefix, l.ID, time.Now().Unix())
	body := renderSealedDocument(l, signers)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      awsv2.String(s.bucket),
		Key:         awsv2.String(key),
		Body:        strings.NewReader(body),
		ContentType: awsv2.String("text/plain; charset=utf-8"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to store sealed document: %w", err)
	}

	s.logger.Info("sealed document stored",
		zap.String("lease_id", l.ID.String()),
		zap.String("key", key),
	)
	return key, nil
}

// Delete removes a stored object by key
func (s *S3DocumentStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// ObjectExists reports whether a key is present in the bucket
func (s *S3DocumentStore) ObjectExists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: awsv2.String(s.bucket),
		Key:    awsv2.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check object %s: %w", key, err)
	}
	return true, nil
}

func renderSealedDocument(l *lease.Lease, signers []lease.Signer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CONTRAT DE BAIL %s\n", l.ID)
	fmt.Fprintf(&b, "Type: %s\n", l.Type)
	fmt.Fprintf(&b, "Bien: %s\n", l.PropertyID)
	fmt.Fprintf(&b, "Date d'effet: %s\n", l.StartDate.Format("2006-01-02"))
	if l.EndDate != nil {
		fmt.Fprintf(&b, "Date de fin: %s\n", l.EndDate.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "Loyer: %s EUR\n", l.RentAmount.StringFixed(2))
	fmt.Fprintf(&b, "Dépôt de garantie: %s EUR\n", l.DepositAmount.StringFixed(2))
	b.WriteString("\nSignatures:\n")
	for _, signer := range signers {
		fmt.Fprintf(&b, "- %s <%s> [%s]", signer.Role, signer.Email, signer.Status)
		if signer.SignedAt != nil {
			fmt.Fprintf(&b, " signé le %s, empreinte %s",
				signer.SignedAt.Format(time.RFC3339), signer.Proof.ContentHash)
		}
		b.WriteString("\n")
	}
	return b.String()
}

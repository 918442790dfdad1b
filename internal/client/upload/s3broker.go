package upload

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/cofit/cofitcli/internal/client/client"
	"github.com/cofit/cofitcli/internal/client/models"
	"github.com/cofit/cofitcli/internal/logging"
	"github.com/google/uuid"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
)

// StorageS3 is the StorageBackend reported on S3Broker tickets.
const StorageS3 = "s3"

// S3Config points the S3Broker at a bucket. BaseEndpoint is optional and
// switches the client to path-style addressing (MinIO and friends).
type S3Config struct {
	Bucket        string
	Region        string
	BaseEndpoint  string
	AccessKey     string
	SecretKey     string
	PublicBaseURL string
	Expires       time.Duration
}

// S3Broker presigns PUT URLs against an S3-compatible bucket, bypassing the
// backend. Meant for local development.
type S3Broker struct {
	cfg    S3Config
	logger logging.Logger

	mu sync.Mutex
	pc *s3.PresignClient
}

func NewS3Broker(cfg S3Config, logger logging.Logger) *S3Broker {
	if cfg.Expires <= 0 {
		cfg.Expires = 15 * time.Minute
	}
	return &S3Broker{cfg: cfg, logger: logger}
}

// ObjectKey lays out uploads as notes/<date>/<uuid>.<ext>.
func ObjectKey(extension, date string) string {
	return fmt.Sprintf("notes/%s/%s.%s", date, uuid.New(), extension)
}

func (b *S3Broker) getPresignClient(ctx context.Context) (*s3.PresignClient, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pc != nil {
		return b.pc, nil
	}

	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(b.cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			b.cfg.AccessKey,
			b.cfg.SecretKey,
			"",
		)))
	if err != nil {
		return nil, err
	}

	c := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if b.cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(b.cfg.BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	b.pc = newS3PresignClient(c)
	return b.pc, nil
}

func (b *S3Broker) publicURL(key string) string {
	base := b.cfg.PublicBaseURL
	if base == "" {
		if b.cfg.BaseEndpoint != "" {
			base = strings.TrimRight(b.cfg.BaseEndpoint, "/") + "/" + b.cfg.Bucket
		} else {
			base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", b.cfg.Bucket, b.cfg.Region)
		}
	}
	return strings.TrimRight(base, "/") + "/" + key
}

func (b *S3Broker) RequestTicket(ctx context.Context, extension, date string) (*models.Ticket, error) {
	pc, err := b.getPresignClient(ctx)
	if err != nil {
		return nil, &client.TicketError{Extension: extension, Date: date, Err: err}
	}

	bucket := b.cfg.Bucket
	key := ObjectKey(extension, date)

	req, err := presignPutObject(pc, ctx, &s3.PutObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(b.cfg.Expires))
	if err != nil {
		return nil, &client.TicketError{Extension: extension, Date: date, Err: err}
	}

	b.logger.Debug(ctx, "presigned upload slot", "ext", extension, "date", date, "key", key)

	return &models.Ticket{
		WriteURL:       req.URL,
		PublicURL:      b.publicURL(key),
		StorageBackend: StorageS3,
		ObjectKey:      key,
	}, nil
}

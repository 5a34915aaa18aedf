package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	apperrors "salespulse/internal/errors"
)

// objectAPI is the subset of the S3 client the source needs
type objectAPI interface {
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Options locates an export in an S3-compatible bucket (AWS S3 or MinIO)
type S3Options struct {
	Bucket       string
	Key          string
	Region       string
	Endpoint     string // optional, enables a custom endpoint
	UsePathStyle bool
	Sheet        string

	// Extra options applied when loading the AWS config and building the
	// client, e.g. static credentials or a custom HTTP client.
	LoadOptions   []func(*awsconfig.LoadOptions) error
	ClientOptions []func(*s3.Options)
}

// S3Source reads an export object from a bucket. Credentials come from the
// default AWS chain unless LoadOptions override them.
type S3Source struct {
	client objectAPI
	bucket string
	key    string
	sheet  string
	format Format
	logger *slog.Logger
}

// NewS3Source builds the S3 client for opts
func NewS3Source(ctx context.Context, opts S3Options, logger *slog.Logger) (*S3Source, error) {
	if opts.Bucket == "" || opts.Key == "" {
		return nil, apperrors.NewConfigError("s3 bucket and key required", nil)
	}
	format, err := DetectFormat(opts.Key)
	if err != nil {
		return nil, err
	}

	region := opts.Region
	if region == "" {
		region = "us-east-1"
	}
	loadOpts := append([]func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}, opts.LoadOptions...)
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, apperrors.NewConfigError("failed to load AWS configuration", err)
	}

	clientOpts := append([]func(*s3.Options){func(o *s3.Options) {
		o.UsePathStyle = opts.UsePathStyle
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	}}, opts.ClientOptions...)
	client := s3.NewFromConfig(awsCfg, clientOpts...)

	return newS3Source(client, opts.Bucket, opts.Key, opts.Sheet, format, logger), nil
}

func newS3Source(client objectAPI, bucket, key, sheet string, format Format, logger *slog.Logger) *S3Source {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Source{
		client: client,
		bucket: bucket,
		key:    key,
		sheet:  sheet,
		format: format,
		logger: logger.With(slog.String("component", "s3_source")),
	}
}

func (s *S3Source) ID() string { return "s3://" + s.bucket + "/" + s.key }

// Fingerprint is the object ETag, or size and modification time when the
// backend does not report one.
func (s *S3Source) Fingerprint(ctx context.Context) (string, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return "", s.objectError("head", err)
	}

	if etag := strings.Trim(aws.ToString(out.ETag), `"`); etag != "" {
		return etag, nil
	}
	fp := strconv.FormatInt(aws.ToInt64(out.ContentLength), 10)
	if out.LastModified != nil {
		fp += "-" + strconv.FormatInt(out.LastModified.UnixNano(), 10)
	}
	return fp, nil
}

func (s *S3Source) Load(ctx context.Context) (*Table, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, s.objectError("get", err)
	}
	defer out.Body.Close()

	table, err := ReadTable(out.Body, s.format, s.sheet)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.ID(), err)
	}

	s.logger.InfoContext(ctx, "export read",
		slog.String("bucket", s.bucket),
		slog.String("key", s.key),
		slog.String("format", string(s.format)),
		slog.Int("records", len(table.Records)))
	return table, nil
}

func (s *S3Source) objectError(op string, err error) error {
	if isNotFound(err) {
		return apperrors.NewNotFoundError("export "+s.ID()).
			WithContext("bucket", s.bucket).
			WithContext("key", s.key)
	}
	return apperrors.NewStorageError(fmt.Sprintf("s3 %s failed", op), err).
		WithContext("bucket", s.bucket).
		WithContext("key", s.key)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noSuchKey) || errors.As(err, &notFound) {
		return true
	}
	var respErr *awshttp.ResponseError
	return errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusNotFound
}

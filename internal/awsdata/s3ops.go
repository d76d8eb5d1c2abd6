package awsdata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

// Object is one listed S3 object.
type Object struct {
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
}

// ListObjects paginates a bucket/prefix listing to completion, grounded on
// the teacher's bucket.json/pack's paginator idiom (ListObjectsV2Paginator).
func ListObjects(ctx context.Context, client *s3.Client, bucket, prefix string) ([]Object, error) {
	paginator := s3.NewListObjectsV2Paginator(client, &s3.ListObjectsV2Input{
		Bucket: &bucket,
		Prefix: &prefix,
	})

	var out []Object
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, mapS3Error(err)
		}
		for _, obj := range page.Contents {
			o := Object{Key: *obj.Key, Size: *obj.Size}
			if obj.ETag != nil {
				o.ETag = *obj.ETag
			}
			if obj.LastModified != nil {
				o.LastModified = *obj.LastModified
			}
			out = append(out, o)
		}
	}
	return out, nil
}

// HeadObject returns size/etag/last-modified for one key, honoring an
// optional versionId.
func HeadObject(ctx context.Context, client *s3.Client, bucket, key, versionID string) (*Object, error) {
	input := &s3.HeadObjectInput{Bucket: &bucket, Key: &key}
	if versionID != "" {
		input.VersionId = &versionID
	}
	resp, err := client.HeadObject(ctx, input)
	if err != nil {
		return nil, mapS3Error(err)
	}
	o := &Object{Key: key}
	if resp.ContentLength != nil {
		o.Size = *resp.ContentLength
	}
	if resp.ETag != nil {
		o.ETag = *resp.ETag
	}
	if resp.LastModified != nil {
		o.LastModified = *resp.LastModified
	}
	return o, nil
}

// GetBytes reads an object fully into memory, honoring an optional
// versionId and byte range.
func GetBytes(ctx context.Context, client *s3.Client, bucket, key, versionID string, rangeHeader string) ([]byte, error) {
	input := &s3.GetObjectInput{Bucket: &bucket, Key: &key}
	if versionID != "" {
		input.VersionId = &versionID
	}
	if rangeHeader != "" {
		input.Range = &rangeHeader
	}
	resp, err := client.GetObject(ctx, input)
	if err != nil {
		return nil, mapS3Error(err)
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, "read object body", err)
	}
	return b, nil
}

// GetText is GetBytes decoded as a UTF-8 string, for text-preview tools.
func GetText(ctx context.Context, client *s3.Client, bucket, key, versionID string, rangeHeader string) (string, error) {
	b, err := GetBytes(ctx, client, bucket, key, versionID, rangeHeader)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// PresignGet returns a time-limited presigned GET URL.
func PresignGet(ctx context.Context, client *s3.Client, bucket, key, versionID string, expires time.Duration) (string, error) {
	presign := s3.NewPresignClient(client)
	input := &s3.GetObjectInput{Bucket: &bucket, Key: &key}
	if versionID != "" {
		input.VersionId = &versionID
	}
	req, err := presign.PresignGetObject(ctx, input, s3.WithPresignExpires(expires))
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "presign object", err)
	}
	return req.URL, nil
}

// PutItem is one requested put for PutBatch.
type PutItem struct {
	Key     string
	Content []byte
}

// PutResult is the per-item outcome of PutBatch; batch is not atomic, so
// every item reports its own success/error independently rather than
// aggregating into a single pass/fail.
type PutResult struct {
	Key     string
	Success bool
	ETag    string
	Err     error
}

const maxConcurrentPuts = 8

// PutBatch uploads items concurrently with a bounded worker pool, grounded
// on HetznerUploadToRemote's semaphore + WaitGroup + buffered-channel
// collection pattern, generalized to report per-item results instead of one
// aggregate summary (§4.5's "batch is not atomic" rule).
func PutBatch(ctx context.Context, client *s3.Client, bucket string, items []PutItem) []PutResult {
	uploader := manager.NewUploader(client)
	semaphore := make(chan struct{}, maxConcurrentPuts)
	var wg sync.WaitGroup
	results := make(chan PutResult, len(items))

	for _, item := range items {
		wg.Add(1)
		go func(it PutItem) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			res := PutResult{Key: it.Key}
			key := it.Key
			out, err := uploader.Upload(ctx, &s3.PutObjectInput{
				Bucket: &bucket,
				Key:    &key,
				Body:   bytes.NewReader(it.Content),
			})
			if err != nil {
				res.Err = mapS3Error(err)
			} else {
				res.Success = true
				if out.ETag != nil {
					res.ETag = *out.ETag
				}
			}
			results <- res
		}(item)
	}

	wg.Wait()
	close(results)

	out := make([]PutResult, 0, len(items))
	for r := range results {
		out = append(out, r)
	}
	return out
}

// mapS3Error distinguishes the error kinds §4.5 requires callers be able to
// tell apart (InvalidVersionId, NoSuchVersion, AccessDenied, NoSuchKey)
// rather than collapsing everything into a generic upstream error.
func mapS3Error(err error) error {
	if err == nil {
		return nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return apperr.Wrap(apperr.NotFound, "object not found", err)
		case "NoSuchVersion":
			return apperr.Wrap(apperr.NotFound, "object version not found", err)
		case "InvalidArgument":
			if strings.Contains(strings.ToLower(apiErr.ErrorMessage()), "version") {
				return apperr.Wrap(apperr.ValidationFailed, "invalid version id", err)
			}
		case "AccessDenied":
			return apperr.Wrap(apperr.PermissionDenied, "access denied by bucket policy or IAM", err)
		}
	}
	var notFound *types.NoSuchKey
	if errors.As(err, &notFound) {
		return apperr.Wrap(apperr.NotFound, "object not found", err)
	}
	return apperr.Wrap(apperr.UpstreamUnavailable, "s3 request failed", err)
}

// KeyFromURI splits an s3://bucket/key URI.
func KeyFromURI(uri string) (bucket, key string, ok bool) {
	const prefix = "s3://"
	if !strings.HasPrefix(uri, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(uri, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// BaseName is the final path segment of a logical or physical key.
func BaseName(key string) string {
	return filepath.Base(key)
}

// Package tilesource optionally prefetches raster tiles from remote
// object storage into the local data root before a catalog build.
// Grounded on cmd/import-elevation/main.go's own doc comment pointing at
// the public Copernicus DEM bucket ("Data Source: Copernicus DEM GLO-90:
// https://copernicus-dem-30m.s3.amazonaws.com/"); this is that fetch step
// made explicit instead of assumed pre-downloaded. Prefetch only ever
// runs before a catalog build, never at query time, per SPEC_FULL.md's
// Non-goals.
package tilesource

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dustin/go-humanize"
)

// S3Prefetcher downloads missing .tif tiles from an S3 bucket/prefix
// into a local data root.
type S3Prefetcher struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Prefetcher builds a prefetcher using the default AWS credential
// chain (environment, shared config, instance role).
func NewS3Prefetcher(ctx context.Context, bucket, prefix string) (*S3Prefetcher, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &S3Prefetcher{client: s3.NewFromConfig(cfg), bucket: bucket, prefix: prefix}, nil
}

// Sync lists every .tif object under the configured prefix and downloads
// any not already present under localDataRoot, preserving the remote key
// layout relative to the prefix.
func (p *S3Prefetcher) Sync(ctx context.Context, localDataRoot string) (int, error) {
	var fetched int
	var totalBytes int64

	paginator := s3.NewListObjectsV2Paginator(p.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(p.bucket),
		Prefix: aws.String(p.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fetched, fmt.Errorf("list s3 objects: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(strings.ToLower(key), ".tif") {
				continue
			}

			relPath := strings.TrimPrefix(key, p.prefix)
			destPath := filepath.Join(localDataRoot, relPath)

			if _, statErr := os.Stat(destPath); statErr == nil {
				continue // already present
			}

			if err := p.download(ctx, key, destPath); err != nil {
				slog.Warn("tilesource: failed to download tile", "key", key, "error", err)
				continue
			}
			fetched++
			totalBytes += aws.ToInt64(obj.Size)
		}
	}

	slog.Info("tile prefetch complete", "fetched", fetched, "size", humanize.Bytes(uint64(totalBytes)))
	return fetched, nil
}

func (p *S3Prefetcher) download(ctx context.Context, key, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	out, err := p.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("get object: %w", err)
	}
	defer out.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, out.Body); err != nil {
		return fmt.Errorf("write local file: %w", err)
	}
	return nil
}

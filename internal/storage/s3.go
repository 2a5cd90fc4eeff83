package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	cerrdefs "github.com/containerd/errdefs"
)

// NOAA publishes the GOES buckets in us-east-1.
const s3Region = "us-east-1"

// AmazonS3 reads the NOAA open data buckets anonymously.
type AmazonS3 struct {
	client *s3.Client
}

func NewAmazonS3(ctx context.Context) (AmazonS3, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(s3Region),
		awsconfig.WithCredentialsProvider(aws.AnonymousCredentials{}),
	)
	if err != nil {
		return AmazonS3{}, fmt.Errorf("LoadDefaultConfig: %v", err)
	}
	return AmazonS3{s3.NewFromConfig(cfg)}, nil
}

func (s AmazonS3) Name() string {
	return "s3"
}

func (s AmazonS3) Protocol() Protocol {
	return S3
}

func splitS3(p string) (string, string, error) {
	scheme, bucket, key, ok := SplitURL(p)
	if !ok || scheme != "s3" {
		return "", "", fmt.Errorf("not a s3:// path: %s", p)
	}
	return bucket, key, nil
}

func (s AmazonS3) pages(ctx context.Context, dir string, f func(*s3.ListObjectsV2Output)) error {
	bucket, prefix, err := splitS3(dir)
	if err != nil {
		return err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("ListObjectsV2(%q): %v", bucket, err)
		}
		f(page)
	}
	return nil
}

func (s AmazonS3) List(ctx context.Context, dir string) ([]string, error) {
	bucket, _, err := splitS3(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = s.pages(ctx, dir, func(page *s3.ListObjectsV2Output) {
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key != "" && !strings.HasSuffix(key, "/") {
				files = append(files, "s3://"+bucket+"/"+key)
			}
		}
	})
	return files, err
}

func (s AmazonS3) Dirs(ctx context.Context, dir string) ([]string, error) {
	var dirs []string
	err := s.pages(ctx, dir, func(page *s3.ListObjectsV2Output) {
		for _, cp := range page.CommonPrefixes {
			dirs = append(dirs, path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/")))
		}
	})
	return dirs, err
}

func (s AmazonS3) Stat(ctx context.Context, p string) (int64, error) {
	bucket, key, err := splitS3(p)
	if err != nil {
		return 0, err
	}
	head, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return 0, fmt.Errorf("HeadObject(%q): %w", key, cerrdefs.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("HeadObject(%q): %v", key, err)
	}
	return aws.ToInt64(head.ContentLength), nil
}

func (s AmazonS3) Fetch(ctx context.Context, p string, outputFileName string) error {
	bucket, key, err := splitS3(p)
	if err != nil {
		return err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("GetObject(%q): %v", key, err)
	}
	defer out.Body.Close()

	return copyToFile(outputFileName, out.Body, nil)
}

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	cerrdefs "github.com/containerd/errdefs"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"rpucella.net/goes-catalog/internal/util"
)

// GoogleCloud reads the public GOES buckets on Cloud Storage. The client is
// safe for concurrent use and is shared by all workers.
type GoogleCloud struct {
	client *storage.Client
}

func NewGoogleCloud(ctx context.Context) (GoogleCloud, error) {
	client, err := storage.NewClient(ctx, option.WithoutAuthentication())
	if err != nil {
		return GoogleCloud{}, fmt.Errorf("storage.NewClient: %v", err)
	}
	return GoogleCloud{client}, nil
}

func (s GoogleCloud) Name() string {
	return "gcs"
}

func (s GoogleCloud) Protocol() Protocol {
	return GCS
}

func (s GoogleCloud) Close() error {
	return s.client.Close()
}

func splitGS(p string) (string, string, error) {
	scheme, bucket, key, ok := SplitURL(p)
	if !ok || scheme != "gs" {
		return "", "", fmt.Errorf("not a gs:// path: %s", p)
	}
	return bucket, key, nil
}

func (s GoogleCloud) objects(ctx context.Context, dir string, f func(*storage.ObjectAttrs)) error {
	bucket, prefix, err := splitGS(dir)
	if err != nil {
		return err
	}
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	it := s.client.Bucket(bucket).Objects(ctx, &storage.Query{Prefix: prefix, Delimiter: "/"})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("Bucket(%q).Objects: %v", bucket, err)
		}
		f(attrs)
	}
	return nil
}

func (s GoogleCloud) List(ctx context.Context, dir string) ([]string, error) {
	bucket, _, err := splitGS(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	err = s.objects(ctx, dir, func(attrs *storage.ObjectAttrs) {
		if attrs.Name != "" && !strings.HasSuffix(attrs.Name, "/") {
			files = append(files, "gs://"+bucket+"/"+attrs.Name)
		}
	})
	return files, err
}

func (s GoogleCloud) Dirs(ctx context.Context, dir string) ([]string, error) {
	var dirs []string
	err := s.objects(ctx, dir, func(attrs *storage.ObjectAttrs) {
		if attrs.Prefix != "" {
			dirs = append(dirs, path.Base(strings.TrimSuffix(attrs.Prefix, "/")))
		}
	})
	return dirs, err
}

func (s GoogleCloud) Stat(ctx context.Context, p string) (int64, error) {
	bucket, key, err := splitGS(p)
	if err != nil {
		return 0, err
	}
	attrs, err := s.client.Bucket(bucket).Object(key).Attrs(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return 0, fmt.Errorf("Object(%q).Attrs: %w", key, cerrdefs.ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("Object(%q).Attrs: %v", key, err)
	}
	return attrs.Size, nil
}

// Fetch downloads the object and checks its CRC32C against the object
// attributes. A mismatching download is removed.
func (s GoogleCloud) Fetch(ctx context.Context, p string, outputFileName string) error {
	bucket, key, err := splitGS(p)
	if err != nil {
		return err
	}
	obj := s.client.Bucket(bucket).Object(key)
	attrs, err := obj.Attrs(ctx)
	if err != nil {
		return fmt.Errorf("Object(%q).Attrs: %v", key, err)
	}
	rc, err := obj.NewReader(ctx)
	if err != nil {
		return fmt.Errorf("Object(%q).NewReader: %v", key, err)
	}
	defer rc.Close()

	var crcw *util.CRCwriter
	err = copyToFile(outputFileName, rc, func(w io.Writer) io.Writer {
		crcw = util.NewCRCwriter(w)
		return crcw
	})
	if err != nil {
		return err
	}
	if crc32c := crcw.Sum(); crc32c != attrs.CRC32C {
		os.Remove(outputFileName)
		return fmt.Errorf("crc32c of %s is %x, expected %x", key, crc32c, attrs.CRC32C)
	}
	return nil
}

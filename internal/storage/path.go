package storage

import (
	"path"
	"path/filepath"
	"strings"

	"rpucella.net/goes-catalog/internal/errdefs"
	"rpucella.net/goes-catalog/internal/goes"
)

type Protocol string

const (
	GCS   Protocol = "gcs"
	S3    Protocol = "s3"
	Local Protocol = "local"
)

var protocols = []Protocol{GCS, S3, Local}

func AvailableProtocols() []Protocol {
	return append([]Protocol(nil), protocols...)
}

func ParseProtocol(name string) (Protocol, error) {
	lower := Protocol(strings.ToLower(strings.TrimSpace(name)))
	// "gs" is the gsutil spelling
	if lower == "gs" {
		return GCS, nil
	}
	for _, p := range protocols {
		if p == lower {
			return p, nil
		}
	}
	return "", errdefs.Invalid("protocol", name, "available protocols: %v", protocols)
}

// ConnectionType selects how remote paths are handed to callers.
type ConnectionType string

const (
	Bucket  ConnectionType = "bucket"
	HTTPS   ConnectionType = "https"
	NCBytes ConnectionType = "nc_bytes"
)

var connectionTypes = []ConnectionType{Bucket, HTTPS, NCBytes}

func AvailableConnectionTypes() []ConnectionType {
	return append([]ConnectionType(nil), connectionTypes...)
}

func ParseConnectionType(name string) (ConnectionType, error) {
	if name == "" {
		return Bucket, nil
	}
	for _, c := range connectionTypes {
		if string(c) == strings.ToLower(name) {
			return c, nil
		}
	}
	return "", errdefs.Invalid("connection_type", name, "available connection types: %v", connectionTypes)
}

// BucketName returns the public bucket holding a satellite's data.
//
//	gcs: gcp-public-data-goes-16
//	s3:  noaa-goes16
func BucketName(protocol Protocol, sat goes.Satellite) string {
	switch protocol {
	case GCS:
		return "gcp-public-data-goes-" + sat.Number()
	case S3:
		return "noaa-goes" + sat.Number()
	}
	return ""
}

// Root returns the directory under which a satellite's products live. For
// local storage this is <baseDir>/GOES-16.
func Root(protocol Protocol, sat goes.Satellite, baseDir string) (string, error) {
	switch protocol {
	case GCS:
		return "gs://" + BucketName(protocol, sat), nil
	case S3:
		return "s3://" + BucketName(protocol, sat), nil
	case Local:
		if baseDir == "" {
			return "", errdefs.Invalid("base_dir", "", "required for local storage")
		}
		return filepath.Join(baseDir, strings.ToUpper(string(sat))), nil
	}
	_, err := ParseProtocol(string(protocol))
	return "", err
}

// Join appends elements to a bucket URI or a local directory.
func Join(dir string, elem ...string) string {
	if _, _, _, ok := SplitURL(dir); ok {
		return strings.TrimSuffix(dir, "/") + "/" + path.Join(elem...)
	}
	return filepath.Join(append([]string{dir}, elem...)...)
}

// SplitURL splits gs://bucket/key and s3://bucket/key. ok is false for
// anything else.
func SplitURL(u string) (scheme, bucket, key string, ok bool) {
	for _, s := range []string{"gs", "s3"} {
		prefix := s + "://"
		if !strings.HasPrefix(u, prefix) {
			continue
		}
		rest := strings.TrimPrefix(u, prefix)
		bucket, key, _ = strings.Cut(rest, "/")
		if bucket == "" {
			return "", "", "", false
		}
		return s, bucket, key, true
	}
	return "", "", "", false
}

// Connect rewrites a bucket path for the given connection type. Local paths
// are returned unchanged.
func Connect(p string, ctype ConnectionType) (string, error) {
	scheme, bucket, key, ok := SplitURL(p)
	if !ok || ctype == Bucket || ctype == "" {
		return p, nil
	}
	var https string
	switch scheme {
	case "gs":
		https = "https://storage.googleapis.com/" + bucket + "/" + key
	case "s3":
		https = "https://" + bucket + ".s3.amazonaws.com/" + key
	}
	switch ctype {
	case HTTPS:
		return https, nil
	case NCBytes:
		return https + "#mode=bytes", nil
	}
	_, err := ParseConnectionType(string(ctype))
	return "", err
}

// LocalPath maps a bucket path to <baseDir>/<SATELLITE>/<object key>. Paths
// that are already local are returned unchanged.
func LocalPath(remote string, sat goes.Satellite, baseDir string) string {
	_, _, key, ok := SplitURL(remote)
	if !ok {
		return remote
	}
	return filepath.Join(baseDir, strings.ToUpper(string(sat)), filepath.FromSlash(key))
}

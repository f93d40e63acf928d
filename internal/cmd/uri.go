package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// URI parsing errors
var (
	// ErrInvalidURI indicates the URI could not be parsed.
	ErrInvalidURI = errors.New("invalid URI")

	// ErrUnsupportedProvider indicates the URI scheme is not supported.
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// ErrMissingBucket indicates the URI is missing a bucket name.
	ErrMissingBucket = errors.New("missing bucket name")
)

// LocationURI is a parsed remote run-output location.
//
// Example URIs:
//   - s3://bucket
//   - s3://bucket/runs/nightly
//   - s3://bucket/runs/nightly/
type LocationURI struct {
	// Provider is the storage provider (e.g., "s3").
	Provider string

	// Bucket is the bucket name.
	Bucket string

	// Prefix is the key prefix, either empty or ending in "/".
	Prefix string
}

// String returns the URI in canonical form.
func (u *LocationURI) String() string {
	return fmt.Sprintf("%s://%s/%s", u.Provider, u.Bucket, u.Prefix)
}

// IsRemoteLocation reports whether location carries a URI scheme.
func IsRemoteLocation(location string) bool {
	return strings.Contains(location, "://")
}

// ParseURI parses a remote run-output location. Keys are always treated as
// prefixes: "s3://b/runs/x" and "s3://b/runs/x/" are the same location.
func ParseURI(uri string) (*LocationURI, error) {
	if uri == "" {
		return nil, fmt.Errorf("%w: empty URI", ErrInvalidURI)
	}

	schemeEnd := strings.Index(uri, "://")
	if schemeEnd == -1 {
		return nil, fmt.Errorf("%w: missing scheme (expected s3://...)", ErrInvalidURI)
	}

	provider := strings.ToLower(uri[:schemeEnd])
	if provider != "s3" {
		return nil, fmt.Errorf("%w: %s (supported: s3)", ErrUnsupportedProvider, provider)
	}

	remainder := uri[schemeEnd+3:]
	bucket, key, _ := strings.Cut(remainder, "/")
	if bucket == "" {
		return nil, fmt.Errorf("%w: in %s", ErrMissingBucket, uri)
	}
	if _, err := url.Parse("s3://" + bucket + "/"); err != nil || strings.ContainsAny(bucket, " ?#") {
		return nil, fmt.Errorf("%w: invalid bucket name %q", ErrInvalidURI, bucket)
	}

	prefix := strings.Trim(key, "/")
	if prefix != "" {
		prefix += "/"
	}
	return &LocationURI{Provider: provider, Bucket: bucket, Prefix: prefix}, nil
}

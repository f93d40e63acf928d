// Package provider abstracts the storage that run outputs are read from.
//
// Providers are read-only: the reporting tool lists keys and fetches object
// bodies, nothing else. Authentication for remote providers uses SDK default
// credential chains.
package provider

import (
	"context"
	"io"
	"time"
)

// Provider lists and reads objects under a root (a directory or a bucket).
//
// Implementations should be safe for concurrent use.
type Provider interface {
	// List returns a page of objects with the given prefix.
	// Use ContinuationToken from ListResult for subsequent pages.
	List(ctx context.Context, opts ListOptions) (*ListResult, error)

	// GetObject opens an object for reading.
	// Returns ErrNotFound if the object does not exist.
	GetObject(ctx context.Context, key string) (body io.ReadCloser, contentLength int64, err error)

	// Close releases any resources held by the provider.
	Close() error
}

// ListOptions configures a List operation.
type ListOptions struct {
	// Prefix filters results to keys starting with this value.
	Prefix string

	// ContinuationToken resumes listing from a previous ListResult.
	ContinuationToken string

	// MaxKeys limits the number of objects returned per page.
	// Zero uses provider default (typically 1000).
	MaxKeys int
}

// ListResult contains a page of objects from a List operation.
type ListResult struct {
	Objects []ObjectSummary

	// ContinuationToken is used to retrieve the next page.
	// Empty string indicates no more pages.
	ContinuationToken string

	IsTruncated bool
}

// ObjectSummary contains basic metadata returned from List operations.
type ObjectSummary struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ProviderType identifies a storage provider.
type ProviderType string

const (
	ProviderFile ProviderType = "file"
	ProviderS3   ProviderType = "s3"
)

// String returns the string representation of the provider type.
func (p ProviderType) String() string {
	return string(p)
}

// ListAll pages through every object under prefix.
func ListAll(ctx context.Context, p Provider, prefix string) ([]ObjectSummary, error) {
	var (
		out   []ObjectSummary
		token string
	)
	for {
		res, err := p.List(ctx, ListOptions{Prefix: prefix, ContinuationToken: token})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Objects...)
		if !res.IsTruncated || res.ContinuationToken == "" {
			return out, nil
		}
		token = res.ContinuationToken
	}
}

// ReadAll fetches the full body of an object.
func ReadAll(ctx context.Context, p Provider, key string) ([]byte, error) {
	body, _, err := p.GetObject(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()
	return io.ReadAll(body)
}

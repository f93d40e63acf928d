package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/3leaps/runstatus/internal/config"
	"github.com/3leaps/runstatus/internal/observability"
	"github.com/3leaps/runstatus/pkg/match"
	"github.com/3leaps/runstatus/pkg/monitor"
	"github.com/3leaps/runstatus/pkg/provider"
	"github.com/3leaps/runstatus/pkg/provider/file"
	"github.com/3leaps/runstatus/pkg/provider/s3"
	"github.com/3leaps/runstatus/pkg/runoutput"
	"github.com/3leaps/runstatus/pkg/runstate"
)

// runSource is an opened location that run outputs are read from.
type runSource struct {
	provider provider.Provider
	kind     provider.ProviderType

	// prefix is the key prefix of the location, empty or ending in "/".
	prefix string

	// display renders base keys for humans.
	display func(base string) string
}

// Close releases the provider.
func (s *runSource) Close() error {
	return s.provider.Close()
}

// rootBase is the run base for the location itself.
func (s *runSource) rootBase() string {
	if s.prefix == "" {
		return "."
	}
	return strings.TrimSuffix(s.prefix, "/")
}

// openSource opens a local directory or s3:// location. An empty location
// means the working directory.
func openSource(ctx context.Context, location string, cfg *config.Config) (*runSource, error) {
	if IsRemoteLocation(location) {
		uri, err := ParseURI(location)
		if err != nil {
			return nil, ExitWithCode(observability.CLILogger, foundry.ExitInvalidArgument, "Invalid URI", err)
		}

		p, err := s3.New(ctx, s3.Config{
			Bucket:          uri.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			Profile:         cfg.S3.Profile,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			SessionToken:    cfg.S3.SessionToken,
		})
		if err != nil {
			return nil, ExitWithCode(observability.CLILogger, foundry.ExitExternalServiceUnavailable, "Failed to connect to storage provider", err)
		}
		observability.CLILogger.Debug("Opened remote location",
			zap.String("bucket", uri.Bucket),
			zap.String("prefix", uri.Prefix))

		return &runSource{
			provider: p,
			kind:     provider.ProviderS3,
			prefix:   uri.Prefix,
			display: func(base string) string {
				if base == "." {
					base = ""
				}
				return (&LocationURI{Provider: uri.Provider, Bucket: uri.Bucket, Prefix: strings.TrimSuffix(base, "/")}).String()
			},
		}, nil
	}

	if location == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, exitError(foundry.ExitFileReadError, "Failed to resolve working directory", err)
		}
		location = wd
	}
	info, err := os.Stat(location)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, exitError(foundry.ExitFileNotFound, "Run output not found", err)
		}
		return nil, exitError(foundry.ExitFileReadError, "Failed to read run output", err)
	}
	if !info.IsDir() {
		return nil, exitError(foundry.ExitInvalidArgument, "Run output must be a directory", fmt.Errorf("%s is not a directory", location))
	}

	p, err := file.New(file.Config{BaseDir: location})
	if err != nil {
		return nil, exitError(foundry.ExitInvalidArgument, "Invalid directory", err)
	}
	base := p.BaseDir()
	return &runSource{
		provider: p,
		kind:     provider.ProviderFile,
		display: func(key string) string {
			if key == "." || key == "" {
				return base
			}
			return filepath.Join(base, filepath.FromSlash(key))
		},
	}, nil
}

// resolveRun opens location and picks the run output to report on. An
// explicit location is the run itself; otherwise run outputs selected by sel
// are discovered under the working directory and, when there are several,
// one is chosen interactively.
func resolveRun(cmd *cobra.Command, location string, sel *match.Matcher) (*runSource, string, error) {
	ctx := cmd.Context()
	src, err := openSource(ctx, location, appConfig)
	if err != nil {
		return nil, "", err
	}
	if location != "" {
		if sel.Selective() {
			observability.CLILogger.Debug("Ignoring run selector for explicit directory")
		}
		return src, src.rootBase(), nil
	}

	bases, err := discoverRuns(ctx, src, sel)
	if err != nil {
		_ = src.Close()
		return nil, "", err
	}
	switch len(bases) {
	case 0:
		_ = src.Close()
		return nil, "", exitError(foundry.ExitFileNotFound, "No run output found",
			fmt.Errorf("no %s below %s", runoutput.RunInfoFile, src.display(src.rootBase())))
	case 1:
		return src, bases[0], nil
	}

	names := make([]string, len(bases))
	for i, b := range bases {
		names[i] = src.display(b)
	}
	choice, err := newRunSelector(cmd.InOrStdin(), cmd.ErrOrStderr(), names).Run()
	if err != nil {
		_ = src.Close()
		return nil, "", exitError(foundry.ExitInvalidArgument, "No run output selected", err)
	}
	observability.CLILogger.Debug("Selected run output", zap.String("location", names[choice]))
	return src, bases[choice], nil
}

// discoverRuns lists run bases below the source location that sel selects.
func discoverRuns(ctx context.Context, src *runSource, sel *match.Matcher) ([]string, error) {
	found, err := runoutput.Discover(ctx, src.provider, src.prefix+sel.ListPrefix())
	if err != nil {
		return nil, loadFailure(err)
	}

	bases := found[:0]
	for _, base := range found {
		if sel.Match(relativeBase(src, base)) {
			bases = append(bases, base)
		}
	}
	observability.CLILogger.Debug("Discovered run outputs",
		zap.Int("found", len(found)),
		zap.Int("selected", len(bases)))
	return bases, nil
}

// loadSnapshot reads one run output.
func loadSnapshot(ctx context.Context, src *runSource, base string) (*runstate.Snapshot, error) {
	snap, err := runoutput.Load(ctx, src.provider, base)
	if err != nil {
		observability.CLILogger.Debug("Failed to load run output", zap.String("base", base), zap.Error(err))
		return nil, loadFailure(err)
	}
	snap.Location = src.display(base)
	return snap, nil
}

// loadFailure maps loader and monitor errors to exit codes.
func loadFailure(err error) error {
	var dupErr *monitor.DuplicateJobKeyError
	switch {
	case errors.Is(err, context.Canceled):
		return exitError(foundry.ExitSignalInt, "Interrupted", err)
	case errors.Is(err, runoutput.ErrNotRunOutput), provider.IsNotFound(err):
		return exitError(foundry.ExitFileNotFound, "Run output not found", err)
	case provider.IsRemoteFailure(err), provider.IsAccessDenied(err):
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to read from storage provider", err)
	case errors.As(err, &dupErr):
		return exitError(foundry.ExitFileReadError, "Invalid run state", err)
	default:
		return exitError(foundry.ExitFileReadError, "Failed to read run output", err)
	}
}

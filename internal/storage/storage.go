package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// UploadRequest carries one artifact to a provider. PartitionDate is the
// job's start time in the configured timezone, captured once before the
// upload begins, so a dump that crosses midnight lands in the day it started.
type UploadRequest struct {
	LocalPath     string
	Filename      string
	PartitionDate time.Time
	Metadata      map[string]string
}

// Storage uploads a local file to a remote bucket under a date-partitioned
// key. Implementations create their remote client lazily on first use and
// are not reused across runs.
type Storage interface {
	// Provider returns the provider tag (r2, s3).
	Provider() string
	// Upload stores the file and returns the remote key.
	Upload(ctx context.Context, req UploadRequest) (string, error)
	// Check probes connectivity and credentials against the bucket.
	Check(ctx context.Context) error
}

// Error reports a failed storage operation.
type Error struct {
	Provider string
	Cause    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s storage: %v", e.Provider, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// ObjectKey builds `{folder}/{YYYYMMDD}/{filename}`. The date component uses
// the calendar date of day as given, not UTC. Uploading the same key twice
// overwrites the prior object; keys are timestamp-qualified to the second, so
// collisions need a sub-second cadence.
func ObjectKey(folder string, day time.Time, filename string) string {
	folder = strings.Trim(folder, "/")
	return path.Join(folder, day.Format("20060102"), filename)
}

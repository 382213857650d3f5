package biz

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrAccessDenied = errors.New("access to file denied")
	ErrEmptyFile    = errors.New("file content is empty")
	ErrUnauthorized = errors.New("no authenticated user")
)

// Ingestion stages at which an upload can fail
const (
	StageBlobWrite     = "blob_write"
	StageMetadataWrite = "metadata_write"
)

// IngestionError reports which upload step failed and whether the
// compensating blob delete succeeded. Compensated is meaningful only
// for the metadata_write stage: false there means an orphaned blob
// was left behind and needs out-of-band cleanup.
type IngestionError struct {
	Stage       string
	Compensated bool
	Err         error
}

func (e *IngestionError) Error() string {
	if e.Stage == StageMetadataWrite {
		return fmt.Sprintf("ingestion failed at %s (compensated=%t): %v", e.Stage, e.Compensated, e.Err)
	}
	return fmt.Sprintf("ingestion failed at %s: %v", e.Stage, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

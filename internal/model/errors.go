package model

import (
	"errors"
	"fmt"
)

// ErrEmptyDataset is returned when Fit is given no training examples.
var ErrEmptyDataset = errors.New("empty training dataset")

// ArtifactError reports a failure reading or writing the persisted model.
// It is always fatal: a model that cannot be read is never replaced by a
// freshly trained one.
type ArtifactError struct {
	Op   string // stat, read, decode, encode or write
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("model artifact %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error { return e.Err }

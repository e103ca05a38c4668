package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/abhisek/pses/internal/features"
	"github.com/abhisek/pses/internal/level"
)

// artifact is the on-disk form of a Classifier.
type artifact struct {
	Classes   [level.Count]string                `json:"classes"`
	Features  [features.Dim]string               `json:"features"`
	Mean      [features.Dim]float64              `json:"mean"`
	Scale     [features.Dim]float64              `json:"scale"`
	Coef      [level.Count][features.Dim]float64 `json:"coef"`
	Intercept [level.Count]float64               `json:"intercept"`
	Metadata  Metadata                           `json:"metadata"`
}

// MarshalJSON encodes the classifier as a self-contained document.
func (c *Classifier) MarshalJSON() ([]byte, error) {
	a := artifact{
		Features:  features.Names,
		Mean:      c.mean,
		Scale:     c.scale,
		Coef:      c.coef,
		Intercept: c.intercept,
		Metadata:  c.meta,
	}
	for _, l := range level.All() {
		a.Classes[l] = l.String()
	}
	return json.Marshal(a)
}

// UnmarshalJSON decodes a document written by MarshalJSON. Documents that
// parse but do not describe a usable classifier are rejected.
func (c *Classifier) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return errors.New("artifact is null")
	}
	var a artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	if err := a.validate(); err != nil {
		return err
	}
	c.mean = a.Mean
	c.scale = a.Scale
	c.coef = a.Coef
	c.intercept = a.Intercept
	c.meta = a.Metadata
	return nil
}

func (a *artifact) validate() error {
	for _, l := range level.All() {
		if a.Classes[l] != l.String() {
			return fmt.Errorf("classes: want %q at %d, got %q", l.String(), int(l), a.Classes[l])
		}
	}
	if a.Features != features.Names {
		return fmt.Errorf("features: want %v, got %v", features.Names, a.Features)
	}
	if !allFinite(a.Mean[:]) {
		return errors.New("mean has non-finite entries")
	}
	for j, sc := range a.Scale {
		if !allFinite([]float64{sc}) || sc <= 0 {
			return fmt.Errorf("scale[%d] must be finite and positive, got %v", j, sc)
		}
	}
	if !allFinite(a.Intercept[:]) {
		return errors.New("intercept has non-finite entries")
	}
	for k := range a.Coef {
		if !allFinite(a.Coef[k][:]) {
			return fmt.Errorf("coef[%d] has non-finite entries", k)
		}
	}
	return nil
}

// Load reads a classifier from path.
func Load(path string) (*Classifier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactError{Op: "read", Path: path, Err: err}
	}
	clf := &Classifier{}
	if err := json.Unmarshal(data, clf); err != nil {
		return nil, &ArtifactError{Op: "decode", Path: path, Err: err}
	}
	return clf, nil
}

// Save writes clf to path atomically: the document goes to a temp file in
// the same directory which is then renamed over path.
func Save(path string, clf *Classifier) error {
	data, err := json.MarshalIndent(clf, "", "  ")
	if err != nil {
		return &ArtifactError{Op: "encode", Path: path, Err: err}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &ArtifactError{Op: "write", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".model-*.tmp")
	if err != nil {
		return &ArtifactError{Op: "write", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := writeAndSync(tmp, data); err != nil {
		os.Remove(tmpName)
		return &ArtifactError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &ArtifactError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func writeAndSync(f *os.File, data []byte) error {
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Exists reports whether an artifact is present at path. Errors other than
// "not exist" are returned so that an unreadable location is not mistaken
// for a cold start.
func Exists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if info.IsDir() {
			return false, &ArtifactError{Op: "stat", Path: path, Err: fmt.Errorf("is a directory")}
		}
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, &ArtifactError{Op: "stat", Path: path, Err: err}
}

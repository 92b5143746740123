package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-logr/logr"
)

// ArtifactFileName is the fixed name of the model artifact file.
const ArtifactFileName = "simple_model.json"

// Status is the recorded outcome of the most recent load.
type Status struct {
	// Loaded is true if the artifact was found and deserialized.
	Loaded bool
	// PathChecked is the artifact path resolved at load time.
	PathChecked string
	// Err is the reason the load failed, if it did.
	Err error
}

// NewLoader returns a loader that reads the artifact from modelDir. When
// modelDir is empty, the directory is resolved relative to the running
// executable (one level up, under model/) so that the artifact location
// does not depend on the working directory.
func NewLoader(modelDir string, logger logr.Logger) *Loader {
	return &Loader{
		modelDir: modelDir,
		logger:   logger.WithName("loader"),
	}
}

// Loader owns the model handle lifecycle. Load and Release write the
// handle; Model and Status can be called concurrently with each other.
type Loader struct {
	modelDir string
	logger   logr.Logger

	mu     sync.RWMutex
	model  *Model
	status Status
}

// Load resolves the artifact path and deserializes the classifier. A
// failure leaves the handle empty and is recorded for Status; the returned
// error is informational and must not abort the caller.
func (l *Loader) Load() error {
	path, err := l.resolvePath()
	if err != nil {
		return l.fail(path, fmt.Errorf("resolve artifact path: %s", err))
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return l.fail(path, fmt.Errorf("read artifact: %s", err))
	}

	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return l.fail(path, fmt.Errorf("unmarshal artifact: %s", err))
	}
	if err := a.validate(); err != nil {
		return l.fail(path, fmt.Errorf("validate artifact: %s", err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.model = &Model{a: a}
	l.status = Status{Loaded: true, PathChecked: path}
	l.logger.Info("Loaded model artifact", "path", path, "classes", len(a.Coefficients))
	return nil
}

// Model returns the current handle. The second return value is false when
// no artifact is loaded.
func (l *Loader) Model() (*Model, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model, l.model != nil
}

// Status returns the recorded outcome of the most recent load.
func (l *Loader) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.status
}

// Release drops the model handle.
func (l *Loader) Release() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model == nil {
		return
	}
	l.model = nil
	l.logger.Info("Released model handle")
}

func (l *Loader) fail(path string, err error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.model = nil
	l.status = Status{PathChecked: path, Err: err}
	return err
}

func (l *Loader) resolvePath() (string, error) {
	dir := l.modelDir
	if dir == "" {
		exe, err := os.Executable()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(filepath.Dir(exe), "..", "model")
	}
	return filepath.Abs(filepath.Join(dir, ArtifactFileName))
}

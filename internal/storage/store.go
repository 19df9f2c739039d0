// Package storage persists build templates on the local filesystem.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gofrs/flock"

	"github.com/buildasaur/buildasaur/internal/buildtemplate"
)

//go:generate mockgen -destination=mocks/mock_template_store.go -package=mocks -source=store.go TemplateStore

const (
	templateExt  = ".json"
	lockFileName = ".lock"
)

// ErrNotFound is returned when no valid template exists under the requested ID.
var ErrNotFound = errors.New("build template not found")

// TemplateStore defines the interface for build template persistence
type TemplateStore interface {
	// Save writes the template, replacing any previous version with the same ID.
	// Templates are saved even when they do not validate.
	Save(ctx context.Context, tpl *buildtemplate.BuildTemplate) error

	// Load returns the template with the given ID. Templates that fail
	// validation are reported as ErrNotFound.
	Load(ctx context.Context, id string) (*buildtemplate.BuildTemplate, error)

	// List returns every valid template, ordered by name and ID.
	List(ctx context.Context) ([]*buildtemplate.BuildTemplate, error)

	// ListForProject returns the valid templates offered to projectName.
	ListForProject(ctx context.Context, projectName string) ([]*buildtemplate.BuildTemplate, error)

	// Delete removes the template with the given ID.
	Delete(ctx context.Context, id string) error
}

// FileTemplateStore keeps one JSON document per template in a directory.
// Access is serialized across processes with a lock file.
type FileTemplateStore struct {
	dir string
	// mu serializes goroutines of this process, the flock other processes.
	mu     sync.Mutex
	lock   *flock.Flock
	logger *slog.Logger
}

// Option configures a FileTemplateStore.
type Option func(*FileTemplateStore)

// WithLogger sets the logger used for skipped documents.
func WithLogger(logger *slog.Logger) Option {
	return func(s *FileTemplateStore) {
		s.logger = logger
	}
}

// NewFileTemplateStore creates the template directory if needed and returns a
// store rooted at it.
func NewFileTemplateStore(dir string, opts ...Option) (*FileTemplateStore, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create template directory %s: %w", dir, err)
	}
	s := &FileTemplateStore{
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, lockFileName)),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Dir returns the directory templates are stored in.
func (s *FileTemplateStore) Dir() string {
	return s.dir
}

// Save writes the template atomically to <id>.json.
func (s *FileTemplateStore) Save(_ context.Context, tpl *buildtemplate.BuildTemplate) error {
	path, err := s.pathFor(tpl.ID)
	if err != nil {
		return err
	}

	data, err := tpl.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal build template '%s': %w", tpl.ID, err)
	}

	unlock, err := s.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	// Write to temporary file first for atomic operation
	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write temporary template file '%s': %w", tpl.ID, err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to rename template file '%s': %w", tpl.ID, err)
	}
	return nil
}

// Load reads a single template.
func (s *FileTemplateStore) Load(_ context.Context, id string) (*buildtemplate.BuildTemplate, error) {
	path, err := s.pathFor(id)
	if err != nil {
		return nil, err
	}

	unlock, err := s.acquire(true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	tpl, err := s.readFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	if tpl == nil {
		s.logger.Warn("Skipping invalid build template", "id", id, "path", path)
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return tpl, nil
}

// List reads every template in the directory. Unreadable and invalid
// documents are logged and skipped.
func (s *FileTemplateStore) List(_ context.Context) ([]*buildtemplate.BuildTemplate, error) {
	unlock, err := s.acquire(true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read template directory: %w", err)
	}

	templates := make([]*buildtemplate.BuildTemplate, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != templateExt {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		tpl, err := s.readFile(path)
		if err != nil {
			s.logger.Warn("Skipping unreadable build template", "path", path, "error", err)
			continue
		}
		if tpl == nil {
			s.logger.Warn("Skipping invalid build template", "path", path)
			continue
		}
		templates = append(templates, tpl)
	}

	sort.Slice(templates, func(i, j int) bool {
		a, b := templates[i], templates[j]
		if a.DisplayName() != b.DisplayName() {
			return a.DisplayName() < b.DisplayName()
		}
		return a.ID < b.ID
	})
	return templates, nil
}

// ListForProject returns the templates associated with projectName together
// with templates that have no project association.
func (s *FileTemplateStore) ListForProject(ctx context.Context, projectName string) ([]*buildtemplate.BuildTemplate, error) {
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	filtered := make([]*buildtemplate.BuildTemplate, 0, len(all))
	for _, tpl := range all {
		if tpl.BelongsTo(projectName) {
			filtered = append(filtered, tpl)
		}
	}
	return filtered, nil
}

// Delete removes a template file.
func (s *FileTemplateStore) Delete(_ context.Context, id string) error {
	path, err := s.pathFor(id)
	if err != nil {
		return err
	}

	unlock, err := s.acquire(false)
	if err != nil {
		return err
	}
	defer unlock()

	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return fmt.Errorf("failed to delete template '%s': %w", id, err)
	}
	return nil
}

// acquire takes the in-process mutex and then a shared or exclusive file lock.
func (s *FileTemplateStore) acquire(shared bool) (func(), error) {
	s.mu.Lock()
	lockFn := s.lock.Lock
	if shared {
		lockFn = s.lock.RLock
	}
	if err := lockFn(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("failed to lock template directory: %w", err)
	}
	return func() {
		_ = s.lock.Unlock()
		s.mu.Unlock()
	}, nil
}

// readFile returns nil without error for a well-formed document that does
// not validate.
func (*FileTemplateStore) readFile(path string) (*buildtemplate.BuildTemplate, error) {
	// #nosec G304 -- path is built from the store directory and a checked ID
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return buildtemplate.DecodeJSON(data)
}

func (s *FileTemplateStore) pathFor(id string) (string, error) {
	if id == "" || id != filepath.Base(id) || strings.HasPrefix(id, ".") {
		return "", fmt.Errorf("invalid build template id %q", id)
	}
	return filepath.Join(s.dir, id+templateExt), nil
}

package padla

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// FilesystemStorage stores template versions as YAML documents.
//
// Directory structure:
//
//	<root>/
//	  <template-name>/
//	    v1.yaml
//	    v2.yaml
//	    ...
type FilesystemStorage struct {
	mu     sync.RWMutex
	root   string
	closed bool
}

// FilesystemStorageDriver is the driver for creating FilesystemStorage instances.
type FilesystemStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameFilesystem, &FilesystemStorageDriver{})
}

// Open creates a new FilesystemStorage. The connection string is the root directory.
func (d *FilesystemStorageDriver) Open(connectionString string) (TemplateStorage, error) {
	return NewFilesystemStorage(connectionString)
}

// NewFilesystemStorage creates a filesystem storage rooted at root,
// creating the directory if needed.
func NewFilesystemStorage(root string) (*FilesystemStorage, error) {
	if root == "" {
		return nil, &StorageError{Message: ErrMsgInvalidStorageRoot}
	}

	if err := os.MkdirAll(root, FilesystemDirPermissions); err != nil {
		return nil, &StorageError{
			Message: ErrMsgCreateStorageDir,
			Name:    root,
			Cause:   err,
		}
	}

	return &FilesystemStorage{
		root: root,
	}, nil
}

// Get retrieves the latest version of a template by name.
func (s *FilesystemStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	return s.loadTemplate(name, versions[0])
}

// GetByID retrieves a specific template version by ID.
// It scans every stored document.
func (s *FilesystemStorage) GetByID(ctx context.Context, id string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	for _, tmpl := range all {
		if tmpl.ID == id {
			return tmpl, nil
		}
	}
	return nil, NewTemplateNotFoundError(id)
}

// GetVersion retrieves a specific version of a template.
func (s *FilesystemStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	return s.loadTemplate(name, version)
}

// Save writes tmpl as the next version of its name.
func (s *FilesystemStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	nextVersion := 1
	if tmpl != nil && validateTemplateName(tmpl.Name) == nil {
		versions, err := s.listVersionsInternal(tmpl.Name)
		if err != nil {
			return err
		}
		if len(versions) > 0 {
			nextVersion = versions[0] + 1
		}
	}
	if err := prepareSave(ctx, tmpl, nextVersion); err != nil {
		return err
	}

	templateDir := filepath.Join(s.root, tmpl.Name)
	if err := os.MkdirAll(templateDir, FilesystemDirPermissions); err != nil {
		return &StorageError{Message: ErrMsgCreateStorageDir, Name: templateDir, Cause: err}
	}

	data, err := yaml.Marshal(tmpl)
	if err != nil {
		return &StorageError{Message: ErrMsgMarshalTemplate, Name: tmpl.Name, Cause: err}
	}

	filename := s.versionPath(tmpl.Name, tmpl.Version)
	if err := os.WriteFile(filename, data, FilesystemFilePermissions); err != nil {
		return &StorageError{Message: ErrMsgWriteTemplateFile, Name: filename, Cause: err}
	}
	return nil
}

// Delete removes all versions of a template by name.
func (s *FilesystemStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return err
	}
	if len(versions) == 0 {
		return NewTemplateNotFoundError(name)
	}

	if err := os.RemoveAll(filepath.Join(s.root, name)); err != nil {
		return &StorageError{Message: ErrMsgDeleteTemplateFiles, Name: name, Cause: err}
	}
	return nil
}

// DeleteVersion removes a specific version of a template.
func (s *FilesystemStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validateTemplateName(name); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	err := os.Remove(s.versionPath(name, version))
	if errors.Is(err, fs.ErrNotExist) {
		return NewStorageVersionNotFoundError(name, version)
	}
	if err != nil {
		return &StorageError{Message: ErrMsgDeleteTemplateFiles, Name: name, Version: version, Cause: err}
	}

	// Drop the directory once the last version is gone.
	if versions, err := s.listVersionsInternal(name); err == nil && len(versions) == 0 {
		_ = os.Remove(filepath.Join(s.root, name))
	}
	return nil
}

// List returns templates matching the query.
func (s *FilesystemStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	all, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return filterTemplates(all, query), nil
}

// Exists checks if a template exists.
func (s *FilesystemStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if validateTemplateName(name) != nil {
		return false, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	versions, err := s.listVersionsInternal(name)
	if err != nil {
		return false, err
	}
	return len(versions) > 0, nil
}

// ListVersions returns all version numbers of a template, newest first.
func (s *FilesystemStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	return s.listVersionsInternal(name)
}

// Close marks the storage as closed. Files are left in place.
func (s *FilesystemStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	return nil
}

// Root returns the storage root directory.
func (s *FilesystemStorage) Root() string {
	return s.root
}

func (s *FilesystemStorage) versionPath(name string, version int) string {
	return filepath.Join(s.root, name, FilesystemVersionPrefix+strconv.Itoa(version)+FilesystemVersionExt)
}

// listVersionsInternal lists version numbers for a template, newest first (no locking).
func (s *FilesystemStorage) listVersionsInternal(name string) ([]int, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []int{}, nil
		}
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: name, Cause: err}
	}

	versions := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if version := parseVersionFilename(entry.Name()); version > 0 {
			versions = append(versions, version)
		}
	}

	sort.Sort(sort.Reverse(sort.IntSlice(versions)))
	return versions, nil
}

// loadTemplate loads one version from disk (no locking).
func (s *FilesystemStorage) loadTemplate(name string, version int) (*StoredTemplate, error) {
	filename := s.versionPath(name, version)
	data, err := os.ReadFile(filename)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewStorageVersionNotFoundError(name, version)
		}
		return nil, &StorageError{Message: ErrMsgReadTemplateFile, Name: filename, Cause: err}
	}

	var tmpl StoredTemplate
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, &StorageError{Message: ErrMsgUnmarshalTemplate, Name: filename, Cause: err}
	}
	return &tmpl, nil
}

// loadAll loads every stored version (no locking).
func (s *FilesystemStorage) loadAll(ctx context.Context) ([]*StoredTemplate, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, &StorageError{Message: ErrMsgReadStorageDir, Name: s.root, Cause: err}
	}

	var all []*StoredTemplate
	for _, entry := range entries {
		if !entry.IsDir() || validateTemplateName(entry.Name()) != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		versions, err := s.listVersionsInternal(entry.Name())
		if err != nil {
			return nil, err
		}
		for _, version := range versions {
			tmpl, err := s.loadTemplate(entry.Name(), version)
			if err != nil {
				return nil, err
			}
			all = append(all, tmpl)
		}
	}
	return all, nil
}

// parseVersionFilename returns N for "vN.yaml", or 0.
func parseVersionFilename(filename string) int {
	digits, ok := strings.CutPrefix(filename, FilesystemVersionPrefix)
	if !ok {
		return 0
	}
	digits, ok = strings.CutSuffix(digits, FilesystemVersionExt)
	if !ok {
		return 0
	}
	version, err := strconv.Atoi(digits)
	if err != nil || version < 1 {
		return 0
	}
	return version
}

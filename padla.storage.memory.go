package padla

import (
	"context"
	"sync"
)

// MemoryStorage is an in-memory implementation of TemplateStorage.
// It is intended for tests, development and the CLI. Data is lost on exit.
type MemoryStorage struct {
	mu        sync.RWMutex
	templates map[string][]*StoredTemplate // name -> versions, newest first
	byID      map[string]*StoredTemplate
	closed    bool
}

// MemoryStorageDriver is the driver for creating MemoryStorage instances.
type MemoryStorageDriver struct{}

func init() {
	RegisterStorageDriver(StorageDriverNameMemory, &MemoryStorageDriver{})
}

// Open creates a new MemoryStorage instance. The connection string is ignored.
func (d *MemoryStorageDriver) Open(string) (TemplateStorage, error) {
	return NewMemoryStorage(), nil
}

// NewMemoryStorage creates a new in-memory template storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		templates: make(map[string][]*StoredTemplate),
		byID:      make(map[string]*StoredTemplate),
	}
}

// Get retrieves the latest version of a template by name.
func (s *MemoryStorage) Get(ctx context.Context, name string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	if len(versions) == 0 {
		return nil, NewTemplateNotFoundError(name)
	}
	return versions[0].Clone(), nil
}

// GetByID retrieves a specific template version by ID.
func (s *MemoryStorage) GetByID(ctx context.Context, id string) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	tmpl, ok := s.byID[id]
	if !ok {
		return nil, NewTemplateNotFoundError(id)
	}
	return tmpl.Clone(), nil
}

// GetVersion retrieves a specific version of a template.
func (s *MemoryStorage) GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	for _, tmpl := range s.templates[name] {
		if tmpl.Version == version {
			return tmpl.Clone(), nil
		}
	}
	return nil, NewStorageVersionNotFoundError(name, version)
}

// Save stores a template as the next version of its name.
func (s *MemoryStorage) Save(ctx context.Context, tmpl *StoredTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	nextVersion := 1
	if tmpl != nil {
		if versions := s.templates[tmpl.Name]; len(versions) > 0 {
			nextVersion = versions[0].Version + 1
		}
	}
	if err := prepareSave(ctx, tmpl, nextVersion); err != nil {
		return err
	}

	stored := tmpl.Clone()
	s.templates[tmpl.Name] = append([]*StoredTemplate{stored}, s.templates[tmpl.Name]...)
	s.byID[stored.ID] = stored
	return nil
}

// Delete removes all versions of a template.
func (s *MemoryStorage) Delete(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions, ok := s.templates[name]
	if !ok {
		return NewTemplateNotFoundError(name)
	}
	for _, tmpl := range versions {
		delete(s.byID, tmpl.ID)
	}
	delete(s.templates, name)
	return nil
}

// DeleteVersion removes a specific version of a template.
func (s *MemoryStorage) DeleteVersion(ctx context.Context, name string, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return NewStorageClosedError()
	}

	versions := s.templates[name]
	for i, tmpl := range versions {
		if tmpl.Version != version {
			continue
		}
		delete(s.byID, tmpl.ID)
		remaining := append(versions[:i:i], versions[i+1:]...)
		if len(remaining) == 0 {
			delete(s.templates, name)
		} else {
			s.templates[name] = remaining
		}
		return nil
	}
	return NewStorageVersionNotFoundError(name, version)
}

// List returns templates matching the query.
func (s *MemoryStorage) List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	all := make([]*StoredTemplate, 0, len(s.byID))
	for _, versions := range s.templates {
		for _, tmpl := range versions {
			all = append(all, tmpl.Clone())
		}
	}
	return filterTemplates(all, query), nil
}

// Exists checks if a template exists.
func (s *MemoryStorage) Exists(ctx context.Context, name string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return false, NewStorageClosedError()
	}

	return len(s.templates[name]) > 0, nil
}

// ListVersions returns all version numbers of a template, newest first.
func (s *MemoryStorage) ListVersions(ctx context.Context, name string) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, NewStorageClosedError()
	}

	versions := s.templates[name]
	result := make([]int, len(versions))
	for i, tmpl := range versions {
		result[i] = tmpl.Version
	}
	return result, nil
}

// Close marks the storage as closed and drops its contents.
func (s *MemoryStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.templates = nil
	s.byID = nil
	return nil
}

package padla

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// StoredTemplate is one version of a named template source kept in a storage backend.
type StoredTemplate struct {
	// ID is the unique identifier (UUID) of this version.
	ID string `json:"id" yaml:"id"`

	// Name is the template name used for lookups.
	Name string `json:"name" yaml:"name"`

	// Source is the raw template source.
	Source string `json:"source" yaml:"source"`

	// Version is the version number (1, 2, 3, ...). Higher versions are newer.
	Version int `json:"version" yaml:"version"`

	// Metadata contains arbitrary key-value pairs for user-defined data.
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`

	// Tags for categorization and querying.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// CreatedBy identifies who created this version (optional).
	CreatedBy string `json:"created_by,omitempty" yaml:"created_by,omitempty"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Clone returns a deep copy of the template.
func (t *StoredTemplate) Clone() *StoredTemplate {
	if t == nil {
		return nil
	}
	c := *t
	c.Metadata = maps.Clone(t.Metadata)
	c.Tags = slices.Clone(t.Tags)
	return &c
}

// TemplateQuery defines filters for listing templates.
type TemplateQuery struct {
	// Tags filters to templates having ALL specified tags.
	Tags []string

	// CreatedBy filters by creator.
	CreatedBy string

	// NamePrefix filters to names starting with this prefix.
	NamePrefix string

	// NameContains filters to names containing this substring.
	NameContains string

	// Limit is the maximum number of results (0 = no limit).
	Limit int

	// Offset is the number of results to skip (for pagination).
	Offset int

	// IncludeAllVersions includes all versions, not just latest.
	IncludeAllVersions bool
}

// TemplateStorage is the interface for pluggable template source backends.
// Implementations must be safe for concurrent use.
type TemplateStorage interface {
	// Get retrieves the latest version of a template by name.
	// Returns an error wrapping ErrTemplateNotFound if the template doesn't exist.
	Get(ctx context.Context, name string) (*StoredTemplate, error)

	// GetByID retrieves a specific template version by ID.
	GetByID(ctx context.Context, id string) (*StoredTemplate, error)

	// GetVersion retrieves a specific version of a template.
	GetVersion(ctx context.Context, name string, version int) (*StoredTemplate, error)

	// Save stores tmpl as a new version of its name. ID, Version, CreatedAt
	// and UpdatedAt are set by the storage.
	Save(ctx context.Context, tmpl *StoredTemplate) error

	// Delete removes all versions of a template by name.
	Delete(ctx context.Context, name string) error

	// DeleteVersion removes a specific version of a template.
	DeleteVersion(ctx context.Context, name string, version int) error

	// List returns templates matching the query, ordered by name then
	// version descending.
	List(ctx context.Context, query *TemplateQuery) ([]*StoredTemplate, error)

	// Exists checks if a template with the given name exists.
	Exists(ctx context.Context, name string) (bool, error)

	// ListVersions returns all version numbers of a template, newest first.
	ListVersions(ctx context.Context, name string) ([]int, error)

	// Close releases any resources held by the storage.
	// Every later call returns an error wrapping ErrStorageClosed.
	Close() error
}

// StorageDriver is a factory for creating storage instances.
// Drivers register themselves during init().
type StorageDriver interface {
	// Open creates a new storage instance. The connection string is driver-specific.
	Open(connectionString string) (TemplateStorage, error)
}

// Storage driver registry
var (
	storageDriversMu sync.RWMutex
	storageDrivers   = make(map[string]StorageDriver)
)

// RegisterStorageDriver registers a storage driver by name.
// Panics if driver is nil or the name is already registered.
func RegisterStorageDriver(name string, driver StorageDriver) {
	storageDriversMu.Lock()
	defer storageDriversMu.Unlock()

	if driver == nil {
		panic(ErrMsgNilStorageDriver)
	}
	if _, exists := storageDrivers[name]; exists {
		panic(ErrMsgDriverAlreadyRegistered + ": " + name)
	}
	storageDrivers[name] = driver
}

// OpenStorage opens a storage using the named driver.
//
//	storage, err := padla.OpenStorage("memory", "")
//	storage, err := padla.OpenStorage("filesystem", "/path/to/templates")
//	storage, err := padla.OpenStorage("sqlite", "templates.db")
func OpenStorage(driverName, connectionString string) (TemplateStorage, error) {
	storageDriversMu.RLock()
	driver, ok := storageDrivers[driverName]
	storageDriversMu.RUnlock()

	if !ok {
		return nil, NewStorageDriverNotFoundError(driverName)
	}
	return driver.Open(connectionString)
}

// ListStorageDrivers returns the names of all registered storage drivers in sorted order.
func ListStorageDrivers() []string {
	storageDriversMu.RLock()
	names := make([]string, 0, len(storageDrivers))
	for name := range storageDrivers {
		names = append(names, name)
	}
	storageDriversMu.RUnlock()

	sort.Strings(names)
	return names
}

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
	Name    string
	Version int
	Cause   error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	msg := e.Message
	switch {
	case e.Name != "" && e.Version > 0:
		msg += ": " + e.Name + " " + FilesystemVersionPrefix + strconv.Itoa(e.Version)
	case e.Name != "":
		msg += ": " + e.Name
	}
	if e.Cause != nil && e.Cause.Error() != e.Message {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError wraps cause with a storage message and template name.
func NewStorageError(message, name string, cause error) error {
	return &StorageError{
		Message: message,
		Name:    name,
		Cause:   cause,
	}
}

// NewStorageDriverNotFoundError creates an error for a missing storage driver.
func NewStorageDriverNotFoundError(name string) error {
	return &StorageError{
		Message: ErrMsgStorageDriverNotFound,
		Name:    name,
	}
}

// NewStorageVersionNotFoundError creates an error for a missing template version.
func NewStorageVersionNotFoundError(name string, version int) error {
	return &StorageError{
		Message: ErrMsgVersionNotFound,
		Name:    name,
		Version: version,
		Cause:   ErrTemplateNotFound,
	}
}

// NewStorageClosedError creates an error for operations on closed storage.
func NewStorageClosedError() error {
	return &StorageError{
		Message: ErrMsgStorageClosed,
		Cause:   ErrStorageClosed,
	}
}

// newTemplateID returns a fresh version identifier.
func newTemplateID() string {
	return uuid.NewString()
}

// validateTemplateName rejects names that cannot be stored safely on every backend.
func validateTemplateName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return NewInvalidTemplateNameError(name)
	}
	return nil
}

// prepareSave validates tmpl and stamps the fields set by storage.
func prepareSave(ctx context.Context, tmpl *StoredTemplate, version int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if tmpl == nil {
		return NewNilArgumentError(ArgTemplate)
	}
	if err := validateTemplateName(tmpl.Name); err != nil {
		return err
	}

	now := time.Now().UTC()
	tmpl.ID = newTemplateID()
	tmpl.Version = version
	tmpl.CreatedAt = now
	tmpl.UpdatedAt = now
	return nil
}

// matchesQuery reports whether tmpl passes the non-pagination filters of query.
func matchesQuery(tmpl *StoredTemplate, query *TemplateQuery) bool {
	if query == nil {
		return true
	}
	if query.NamePrefix != "" && !strings.HasPrefix(tmpl.Name, query.NamePrefix) {
		return false
	}
	if query.NameContains != "" && !strings.Contains(tmpl.Name, query.NameContains) {
		return false
	}
	if query.CreatedBy != "" && tmpl.CreatedBy != query.CreatedBy {
		return false
	}
	for _, tag := range query.Tags {
		if !slices.Contains(tmpl.Tags, tag) {
			return false
		}
	}
	return true
}

// sortTemplates orders by name, then version descending.
func sortTemplates(templates []*StoredTemplate) {
	sort.Slice(templates, func(i, j int) bool {
		if templates[i].Name != templates[j].Name {
			return templates[i].Name < templates[j].Name
		}
		return templates[i].Version > templates[j].Version
	})
}

// paginate applies query.Offset and query.Limit.
func paginate(templates []*StoredTemplate, query *TemplateQuery) []*StoredTemplate {
	if query == nil {
		return templates
	}
	if query.Offset > 0 {
		if query.Offset >= len(templates) {
			return []*StoredTemplate{}
		}
		templates = templates[query.Offset:]
	}
	if query.Limit > 0 && query.Limit < len(templates) {
		templates = templates[:query.Limit]
	}
	return templates
}

// filterTemplates applies the query filters, ordering and pagination.
func filterTemplates(templates []*StoredTemplate, query *TemplateQuery) []*StoredTemplate {
	result := make([]*StoredTemplate, 0, len(templates))
	for _, tmpl := range templates {
		if matchesQuery(tmpl, query) {
			result = append(result, tmpl)
		}
	}
	sortTemplates(result)
	if query == nil || !query.IncludeAllVersions {
		result = latestOnly(result)
	}
	return paginate(result, query)
}

// latestOnly keeps the first entry per name of a sorted slice.
func latestOnly(sorted []*StoredTemplate) []*StoredTemplate {
	result := make([]*StoredTemplate, 0, len(sorted))
	for _, tmpl := range sorted {
		if n := len(result); n > 0 && result[n-1].Name == tmpl.Name {
			continue
		}
		result = append(result, tmpl)
	}
	return result
}

package padla

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// CatalogConfig configures a Catalog.
type CatalogConfig struct {
	// MaxEntries bounds the number of cached models; the oldest entry is
	// evicted first. Use a negative value for no limit.
	// Default: 1000
	MaxEntries int

	// TTL is how long a compiled model is served before it is reloaded.
	// Default: 0 (no expiry)
	TTL time.Duration

	// WarmConcurrency limits parallel loads in Warm.
	// Default: 8
	WarmConcurrency int

	// Metrics receives cache and compile measurements.
	// Default: NewCatalogMetrics (global OTel meter provider)
	Metrics CatalogMetrics
}

// DefaultCatalogConfig returns a configuration with sensible defaults.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		MaxEntries:      CatalogDefaultMaxEntries,
		WarmConcurrency: CatalogDefaultWarmConcurrency,
	}
}

// Catalog serves named templates from a TemplateStorage, compiled with an
// engine's backend and cached by name.
// Concurrent misses for one name share a single load.
type Catalog[T any] struct {
	engine  *Engine[T]
	storage TemplateStorage
	config  CatalogConfig
	logger  *zap.Logger
	metrics CatalogMetrics

	mu         sync.RWMutex
	entries    map[string]*catalogEntry[T]
	generation uint64
	loads      singleflight.Group
	now        func() time.Time
}

type catalogEntry[T any] struct {
	model    TextModel[T]
	version  int
	loadedAt time.Time
}

// NewCatalog creates a catalog over storage.
func NewCatalog[T any](engine *Engine[T], storage TemplateStorage, config CatalogConfig, logger *zap.Logger) (*Catalog[T], error) {
	if engine == nil {
		return nil, NewNilArgumentError(ArgEngine)
	}
	if storage == nil {
		return nil, NewNilArgumentError(ArgStorage)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	if config.MaxEntries == 0 {
		config.MaxEntries = CatalogDefaultMaxEntries
	}
	if config.WarmConcurrency <= 0 {
		config.WarmConcurrency = CatalogDefaultWarmConcurrency
	}
	metrics := config.Metrics
	if metrics == nil {
		metrics = NewCatalogMetrics(logger)
	}

	logger.Debug(LogMsgCatalogCreated,
		zap.String(LogFieldBackend, engine.Factory().Name()),
		zap.Int(LogFieldCacheSize, config.MaxEntries),
		zap.Duration(LogFieldTTL, config.TTL),
	)

	return &Catalog[T]{
		engine:  engine,
		storage: storage,
		config:  config,
		logger:  logger,
		metrics: metrics,
		entries: make(map[string]*catalogEntry[T]),
		now:     time.Now,
	}, nil
}

// Get returns the compiled latest version of name, loading it on a miss.
func (c *Catalog[T]) Get(ctx context.Context, name string) (TextModel[T], error) {
	if entry, ok := c.lookup(name); ok {
		c.metrics.RecordHit(ctx, name)
		return entry.model, nil
	}

	c.metrics.RecordMiss(ctx, name)
	c.logger.Debug(LogMsgCatalogMiss, zap.String(LogFieldName, name))

	// The load is shared, so one caller canceling must not fail the others.
	result, err, _ := c.loads.Do(name, func() (any, error) {
		return c.load(context.WithoutCancel(ctx), name)
	})
	if err != nil {
		return nil, err
	}
	return result.(*catalogEntry[T]).model, nil
}

// Render evaluates the latest version of name against target.
func (c *Catalog[T]) Render(ctx context.Context, name string, target T) (string, error) {
	model, err := c.Get(ctx, name)
	if err != nil {
		return "", err
	}

	text, err := model.Text(target)
	if err != nil {
		c.metrics.RecordRenderError(ctx, name)
		return "", err
	}
	return text, nil
}

// Put stores source as a new version of name and drops the cached model.
func (c *Catalog[T]) Put(ctx context.Context, name, source string) (*StoredTemplate, error) {
	tmpl := &StoredTemplate{Name: name, Source: source}
	if err := c.Save(ctx, tmpl); err != nil {
		return nil, err
	}
	return tmpl, nil
}

// Save stores tmpl as a new version and drops the cached model of its name.
func (c *Catalog[T]) Save(ctx context.Context, tmpl *StoredTemplate) error {
	if err := c.storage.Save(ctx, tmpl); err != nil {
		return err
	}
	c.Invalidate(tmpl.Name)
	return nil
}

// Warm loads names concurrently so that later Get calls hit the cache.
func (c *Catalog[T]) Warm(ctx context.Context, names ...string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.WarmConcurrency)
	for _, name := range names {
		g.Go(func() error {
			_, err := c.Get(ctx, name)
			return err
		})
	}
	return g.Wait()
}

// Invalidate drops the cached model of name.
func (c *Catalog[T]) Invalidate(name string) {
	c.mu.Lock()
	_, existed := c.entries[name]
	delete(c.entries, name)
	c.generation++
	c.mu.Unlock()

	c.loads.Forget(name)
	if existed {
		c.logger.Debug(LogMsgCatalogInvalidated, zap.String(LogFieldName, name))
	}
}

// InvalidateAll drops every cached model.
func (c *Catalog[T]) InvalidateAll() {
	c.mu.Lock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	clear(c.entries)
	c.generation++
	c.mu.Unlock()

	for _, name := range names {
		c.loads.Forget(name)
	}
}

// Len returns the number of cached models.
func (c *Catalog[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// Cached returns the names of the cached models in sorted order.
func (c *Catalog[T]) Cached() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	c.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Version returns the stored version of the cached model of name.
func (c *Catalog[T]) Version(name string) (int, bool) {
	entry, ok := c.lookup(name)
	if !ok {
		return 0, false
	}
	return entry.version, true
}

// Storage returns the underlying storage.
func (c *Catalog[T]) Storage() TemplateStorage {
	return c.storage
}

func (c *Catalog[T]) lookup(name string) (*catalogEntry[T], bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[name]
	if !ok || c.expired(entry) {
		return nil, false
	}
	return entry, true
}

func (c *Catalog[T]) expired(entry *catalogEntry[T]) bool {
	return c.config.TTL > 0 && c.now().Sub(entry.loadedAt) >= c.config.TTL
}

func (c *Catalog[T]) load(ctx context.Context, name string) (entry *catalogEntry[T], err error) {
	c.mu.RLock()
	generation := c.generation
	c.mu.RUnlock()

	start := c.now()
	ctx, span := startLoadSpan(ctx, name, c.engine.Factory().Name())
	defer func() {
		c.metrics.RecordCompile(ctx, name, c.now().Sub(start), err)
		endSpan(span, err)
		if err != nil {
			c.logger.Warn(LogMsgCatalogLoadFailed, zap.String(LogFieldName, name), zap.Error(err))
		}
	}()

	tmpl, err := c.storage.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int(AttrTemplateVersion, tmpl.Version))

	model, err := c.engine.Parse(tmpl.Source)
	if err != nil {
		return nil, NewCompileError(name, err)
	}

	entry = &catalogEntry[T]{
		model:    model,
		version:  tmpl.Version,
		loadedAt: c.now(),
	}
	c.store(name, entry, generation)

	c.logger.Debug(LogMsgCatalogCompiled,
		zap.String(LogFieldName, name),
		zap.Int(LogFieldVersion, tmpl.Version),
		zap.Duration(LogFieldDuration, c.now().Sub(start)),
	)
	return entry, nil
}

// store caches entry unless an invalidation happened since the load started.
func (c *Catalog[T]) store(name string, entry *catalogEntry[T], generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != generation {
		return
	}
	if _, exists := c.entries[name]; !exists && c.config.MaxEntries > 0 && len(c.entries) >= c.config.MaxEntries {
		c.evictOldest()
	}
	c.entries[name] = entry
}

// evictOldest removes the entry loaded first (caller holds the lock).
func (c *Catalog[T]) evictOldest() {
	var oldestName string
	var oldest time.Time
	for name, entry := range c.entries {
		if oldestName == "" || entry.loadedAt.Before(oldest) {
			oldestName, oldest = name, entry.loadedAt
		}
	}
	if oldestName != "" {
		delete(c.entries, oldestName)
		c.logger.Debug(LogMsgCatalogEvicted, zap.String(LogFieldName, oldestName))
	}
}

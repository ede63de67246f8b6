package padla

import "time"

// Default syntax runes
const (
	DefaultPrefix    = '{'
	DefaultSuffix    = '}'
	DefaultDelimiter = ':'
	DefaultEscape    = '\\'
)

// DefaultUnknownReplacement is substituted for placeholders with no registered formatter.
const DefaultUnknownReplacement = "<?>"

// Backend names for the built-in TextModelFactory implementations
const (
	BackendSegment = "segment"
	BackendClosure = "closure"
	BackendJoin    = "join"

	// DefaultBackend is used when no backend option is given.
	DefaultBackend = BackendClosure
)

// Environment variable names read by LoadSyntaxEnv
const (
	EnvPrefix             = "PADLA_PREFIX"
	EnvSuffix             = "PADLA_SUFFIX"
	EnvDelimiter          = "PADLA_DELIMITER"
	EnvEscape             = "PADLA_ESCAPE"
	EnvUnknownReplacement = "PADLA_UNKNOWN"
)

// Storage driver names
const (
	StorageDriverNameMemory     = "memory"
	StorageDriverNameFilesystem = "filesystem"
	StorageDriverNameSQLite     = "sqlite"
	StorageDriverNamePostgres   = "postgres"
)

// Filesystem storage constants
const (
	FilesystemDirPermissions  = 0o755
	FilesystemFilePermissions = 0o644
	FilesystemVersionPrefix   = "v"
	FilesystemVersionExt      = ".yaml"
)

// PostgreSQL storage constants
const (
	PostgresTablePrefix            = "padla_"
	PostgresDefaultMaxOpenConns    = 25
	PostgresDefaultMaxIdleConns    = 5
	PostgresDefaultConnMaxLifetime = 5 * time.Minute
	PostgresDefaultConnMaxIdleTime = 5 * time.Minute
	PostgresDefaultQueryTimeout    = 30 * time.Second
)

// SQLite storage constants
const (
	SQLiteTablePrefix         = "padla_"
	SQLiteDefaultBusyTimeout  = 5 * time.Second
	SQLiteDefaultQueryTimeout = 30 * time.Second
	SQLiteMemoryPath          = ":memory:"
)

// Catalog defaults
const (
	CatalogDefaultMaxEntries      = 1000
	CatalogDefaultWarmConcurrency = 8
)

// Observability names
const (
	InstrumentationName = "github.com/JarvisCraft/padla-sub001"

	MetricCatalogHits         = "padla.catalog.hits"
	MetricCatalogMisses       = "padla.catalog.misses"
	MetricCatalogCompilations = "padla.catalog.compilations"
	MetricCatalogErrors       = "padla.catalog.errors"
	MetricCatalogCompileMs    = "padla.catalog.compile_ms"

	SpanCatalogLoad = "padla.catalog.load"

	AttrTemplateName    = "template.name"
	AttrTemplateVersion = "template.version"
	AttrBackend         = "padla.backend"
	AttrOperation       = "padla.operation"

	OperationLoad   = "load"
	OperationRender = "render"
)

// Log message constants
const (
	LogMsgEngineCreated      = "engine created"
	LogMsgTemplateCompiled   = "template compiled"
	LogMsgRegistryCreated    = "formatter registry created"
	LogMsgFormatterAdded     = "formatter added"
	LogMsgFormatterReplaced  = "formatter replaced"
	LogMsgFormatterRemoved   = "formatter removed"
	LogMsgCatalogCreated     = "catalog created"
	LogMsgCatalogMiss        = "catalog miss - loading template"
	LogMsgCatalogCompiled    = "catalog template compiled"
	LogMsgCatalogInvalidated = "catalog entry invalidated"
	LogMsgCatalogEvicted     = "catalog entry evicted"
	LogMsgCatalogLoadFailed  = "catalog template load failed"
	LogMsgMetricsInitFailed  = "metrics initialization failed, using no-op recorder"
)

// Log field names
const (
	LogFieldName         = "name"
	LogFieldSourceLength = "source_length"
	LogFieldSegments     = "segment_count"
	LogFieldBackend      = "backend"
	LogFieldVersion      = "version"
	LogFieldDuration     = "duration"
	LogFieldPrefix       = "prefix"
	LogFieldSuffix       = "suffix"
	LogFieldDelimiter    = "delimiter"
	LogFieldEscape       = "escape"
	LogFieldCacheSize    = "cache_size"
	LogFieldTTL          = "ttl"
)

// Metadata keys attached to errors
const (
	MetaKeyName     = "name"
	MetaKeyRune     = "rune"
	MetaKeyField    = "field"
	MetaKeyBackend  = "backend"
	MetaKeyArgument = "argument"
	MetaKeyValue    = "value"
)

// Syntax field names used in validation errors
const (
	FieldPrefix    = "prefix"
	FieldSuffix    = "suffix"
	FieldDelimiter = "delimiter"
	FieldEscape    = "escape"
	FieldSpecial   = "special_escapes"
)

// Argument names used in nil-argument errors
const (
	ArgBuilder  = "builder"
	ArgFactory  = "factory"
	ArgRegistry = "registry"
	ArgStorage  = "storage"
	ArgEngine   = "engine"
	ArgTemplate = "template"
)

// Panic messages for builder misuse
const (
	PanicMsgBuilderReleased = "padla: builder used after BuildAndRelease"
	PanicMsgNilModel        = "padla: nil text model appended"
)

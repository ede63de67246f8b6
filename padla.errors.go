package padla

import (
	"errors"
	"strconv"

	"github.com/itsatony/go-cuserr"
)

// Error message constants - all error messages are constants
const (
	// Syntax errors
	ErrMsgInvalidSyntax    = "invalid template syntax configuration"
	ErrMsgZeroRune         = "syntax rune must be set"
	ErrMsgInvalidRune      = "syntax rune is not a valid unicode code point"
	ErrMsgDuplicateRune    = "syntax runes must be distinct"
	ErrMsgInvalidRuneValue = "syntax value must be exactly one character"
	ErrMsgSyntaxLoadFailed = "failed to load syntax configuration"

	// Registry errors
	ErrMsgEmptyFormatterName  = "formatter name cannot be empty"
	ErrMsgFormatterNameEscape = "formatter name cannot contain the escape character"
	ErrMsgNilFormatter        = "formatter cannot be nil"

	// Engine and model errors
	ErrMsgNilArgument    = "required argument is nil"
	ErrMsgUnknownBackend = "unknown text model backend"

	// Catalog and storage errors
	ErrMsgTemplateNotFound        = "template not found"
	ErrMsgInvalidTemplateName     = "invalid template name"
	ErrMsgCompileFailed           = "template compilation failed"
	ErrMsgNilStorageDriver        = "storage driver is nil"
	ErrMsgDriverAlreadyRegistered = "storage driver already registered"
	ErrMsgStorageDriverNotFound   = "storage driver not found"
	ErrMsgStorageClosed           = "storage is closed"
	ErrMsgVersionNotFound         = "template version not found"
	ErrMsgInvalidStorageRoot      = "storage root directory is empty"
	ErrMsgCreateStorageDir        = "failed to create storage directory"
	ErrMsgReadStorageDir          = "failed to read storage directory"
	ErrMsgReadTemplateFile        = "failed to read template file"
	ErrMsgWriteTemplateFile       = "failed to write template file"
	ErrMsgDeleteTemplateFiles     = "failed to delete template files"
	ErrMsgMarshalTemplate         = "failed to marshal template"
	ErrMsgUnmarshalTemplate       = "failed to unmarshal template"
	ErrMsgEmptyConnString         = "storage connection string is empty"
	ErrMsgConnectionFailed        = "failed to connect to database"
	ErrMsgQueryFailed             = "database query failed"
	ErrMsgTransactionFailed       = "database transaction failed"
	ErrMsgMigrationFailed         = "database migration failed"
)

// Sentinel errors for errors.Is checks
var (
	// ErrTemplateNotFound is wrapped by every "template not found" error.
	ErrTemplateNotFound = errors.New(ErrMsgTemplateNotFound)
	// ErrStorageClosed is returned by storage operations after Close.
	ErrStorageClosed = errors.New(ErrMsgStorageClosed)
)

// Error code constants for categorization
const (
	ErrCodeSyntax   = "PADLA_SYNTAX"
	ErrCodeRegistry = "PADLA_REGISTRY"
	ErrCodeParse    = "PADLA_PARSE"
	ErrCodeCatalog  = "PADLA_CATALOG"
	ErrCodeStorage  = "PADLA_STORAGE"
)

// NewInvalidSyntaxError creates an error for an unusable syntax configuration.
func NewInvalidSyntaxError(msg, field string, r rune) error {
	return cuserr.NewValidationError(ErrCodeSyntax, msg).
		WithMetadata(MetaKeyField, field).
		WithMetadata(MetaKeyRune, strconv.QuoteRune(r))
}

// NewInvalidRuneValueError creates an error for a configured value that is not a single rune.
func NewInvalidRuneValueError(field, value string) error {
	return cuserr.NewValidationError(ErrCodeSyntax, ErrMsgInvalidRuneValue).
		WithMetadata(MetaKeyField, field).
		WithMetadata(MetaKeyValue, value)
}

// NewSyntaxLoadError wraps a failure to decode syntax configuration.
func NewSyntaxLoadError(cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeSyntax, ErrMsgSyntaxLoadFailed)
}

// NewEmptyFormatterNameError creates an error for registering an unnamed formatter.
func NewEmptyFormatterNameError() error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgEmptyFormatterName)
}

// NewFormatterNameEscapeError creates an error for a formatter name containing the escape rune.
func NewFormatterNameEscapeError(name string, escape rune) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgFormatterNameEscape).
		WithMetadata(MetaKeyName, name).
		WithMetadata(MetaKeyRune, strconv.QuoteRune(escape))
}

// NewNilFormatterError creates an error for registering a nil formatter.
func NewNilFormatterError(name string) error {
	return cuserr.NewValidationError(ErrCodeRegistry, ErrMsgNilFormatter).
		WithMetadata(MetaKeyName, name)
}

// NewNilArgumentError creates an error for a required argument that was nil.
func NewNilArgumentError(argument string) error {
	return cuserr.NewValidationError(ErrCodeParse, ErrMsgNilArgument).
		WithMetadata(MetaKeyArgument, argument)
}

// NewUnknownBackendError creates an error for an unregistered backend name.
func NewUnknownBackendError(backend string) error {
	return cuserr.NewNotFoundError(MetaKeyBackend, ErrMsgUnknownBackend).
		WithMetadata(MetaKeyBackend, backend)
}

// NewTemplateNotFoundError creates an error for a missing stored template.
func NewTemplateNotFoundError(name string) error {
	return cuserr.WrapStdError(ErrTemplateNotFound, ErrCodeStorage, ErrMsgTemplateNotFound).
		WithMetadata(MetaKeyName, name)
}

// NewInvalidTemplateNameError creates an error for an unusable template name.
func NewInvalidTemplateNameError(name string) error {
	return cuserr.NewValidationError(ErrCodeCatalog, ErrMsgInvalidTemplateName).
		WithMetadata(MetaKeyName, name)
}

// NewCompileError wraps a failure to compile a stored template.
func NewCompileError(name string, cause error) error {
	return cuserr.WrapStdError(cause, ErrCodeCatalog, ErrMsgCompileFailed).
		WithMetadata(MetaKeyName, name)
}

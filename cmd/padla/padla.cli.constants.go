package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate   = "template"
	FlagData       = "data"
	FlagDataFile   = "data-file"
	FlagSyntax     = "syntax"
	FlagOutput     = "output"
	FlagBackend    = "backend"
	FlagVerbose    = "verbose"
	FlagFormat     = "format"
	FlagStrictMode = "strict"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagSyntaxShort   = "c"
	FlagOutputShort   = "o"
	FlagBackendShort  = "b"
	FlagVerboseShort  = "v"
	FlagFormatShort   = "F"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Built-in formatter names
const (
	FormatterVar   = "var"
	FormatterUpper = "upper"
	FormatterLower = "lower"
	FormatterEnv   = "env"
)

// Formatter value syntax
const (
	DefaultValueSeparator = "|"
	PathSeparator         = "."
)

// Error messages
const (
	ErrMsgNoCommand           = "no command specified"
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgInvalidJSON         = "invalid JSON data"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgParseTemplateFailed = "template parsing failed"
	ErrMsgExecuteFailed       = "template execution failed"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgInvalidSyntax       = "invalid syntax configuration"
	ErrMsgEngineFailed        = "failed to create engine"
	ErrMsgVariableNotFound    = "variable not found"
	ErrMsgEnvNotFound         = "environment variable not set"
)

// Help text templates
const (
	HelpMainUsage = `padla - runtime string templating CLI

Usage:
    padla <command> [options]

Commands:
    render      Render a template with JSON data
    validate    Validate a template without rendering
    version     Show version information
    help        Show help for a command

Use "padla help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with JSON data

Usage:
    padla render [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -d, --data <json>       JSON data string
    -f, --data-file <file>  JSON data file
    -c, --syntax <file>     Syntax YAML file (prefix, suffix, delimiter, escape)
    -b, --backend <name>    Compiled template backend: closure, join, segment
    -o, --output <file>     Output file (default: stdout)
    -v, --verbose           Log engine activity to stderr

Formatters:
    {var:path}              Value at a dot-separated path in the data
    {var:path|default}      Same, with a default for missing values
    {upper:path}            Upper-cased value at path
    {lower:path}            Lower-cased value at path
    {env:NAME|default}      Environment variable

Environment:
    PADLA_PREFIX, PADLA_SUFFIX, PADLA_DELIMITER, PADLA_ESCAPE and
    PADLA_UNKNOWN override the syntax file.

Examples:
    padla render -t greeting.txt -d '{"user": {"name": "Alice"}}'
    padla render -t greeting.txt -f data.json -o greeting.out
    echo 'Hi {var:name}' | padla render -t - -d '{"name": "Bob"}'`

	HelpValidateUsage = `Validate a template without rendering

Usage:
    padla validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -c, --syntax <file>     Syntax YAML file
    -F, --format <format>   Output format: text, json (default: text)
    --strict                Treat warnings as errors

Examples:
    padla validate -t greeting.txt
    padla validate -t greeting.txt --strict -F json
    cat greeting.txt | padla validate -t -`

	HelpVersionUsage = `Show version information

Usage:
    padla version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    padla help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command`
)

// Version output
const (
	VersionTextHeader = "%s version %s"
	VersionTextField  = "  %-7s %s"
	VersionUnknown    = "unknown"
	VersionDevel      = "(devel)"
	VersionsFileName  = "versions.yaml"
)

// versions.yaml sections and keys, also the text output labels
const (
	VersionSectionProject = "project"
	VersionSectionGit     = "git"
	VersionSectionBuild   = "build"
	VersionKeyVersion     = "version"
	VersionKeyCommit      = "commit"
	VersionKeyBranch      = "branch"
	VersionKeyTime        = "time"
	VersionKeyGo          = "go"
	VersionKeyGoVersion   = "go_version"
)

// Build settings stamped by the go command
const (
	BuildSettingRevision = "vcs.revision"
	BuildSettingTime     = "vcs.time"
)

// Validation output format templates
const (
	ValidationTextSuccess      = "Template is valid"
	ValidationTextIssueHeader  = "Validation issues:"
	ValidationTextIssueFormat  = "  [%s] %s at line %d, column %d"
	ValidationTextNoPosition   = "  [%s] %s"
	ValidationTextErrorSummary = "%d error(s), %d warning(s)"
)

// Severity names for output
const (
	SeverityNameError   = "ERROR"
	SeverityNameWarning = "WARNING"
	SeverityNameInfo    = "INFO"
)

// CLI metadata
const (
	CLIName        = "padla"
	CLIDescription = "runtime string templating CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
	FmtJSONIndent      = "  "
	FmtNamedError      = "%s: %s"
)

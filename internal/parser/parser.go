// Package parser loads command files. A command file is an ordered list of
// titled shell commands in TOML, YAML or Markdown form.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/harrison/getset/internal/models"
)

// DefaultFile is the command file used when none is given.
const DefaultFile = "getset.toml"

// Format represents the format of a command file
type Format int

const (
	// FormatTOML represents a TOML (.toml) command file; also used for
	// unrecognised extensions
	FormatTOML Format = iota
	// FormatYAML represents a YAML (.yaml, .yml) command file
	FormatYAML
	// FormatMarkdown represents a Markdown (.md, .markdown) command file
	FormatMarkdown
)

// String returns the string representation of the Format
func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatMarkdown:
		return "markdown"
	default:
		return "toml"
	}
}

// ErrMissingSecretKey is returned when a platformx section has no secret_key.
var ErrMissingSecretKey = errors.New("platformx.secret_key is required when platformx is configured")

// Parser is the interface that all command file parsers must implement
type Parser interface {
	// Parse reads from an io.Reader and returns the parsed commands
	Parse(r io.Reader) (*models.CommandFile, error)
}

// SourceLoadError reports that a command file could not be read or parsed.
type SourceLoadError struct {
	Path   string
	Format Format
	// Read is true when the file itself could not be read.
	Read bool
	Err  error
}

func (e *SourceLoadError) Error() string {
	if e.Read {
		return fmt.Sprintf("Error reading file '%s': %v", e.Path, e.Err)
	}
	return fmt.Sprintf("Error parsing %s in '%s': %v", strings.ToUpper(e.Format.String()), e.Path, e.Err)
}

func (e *SourceLoadError) Unwrap() error {
	return e.Err
}

// DetectFormat detects the command file format based on file extension
// Supported extensions:
//   - .md, .markdown -> FormatMarkdown
//   - .yaml, .yml -> FormatYAML
//   - all others -> FormatTOML
func DetectFormat(filename string) Format {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".md", ".markdown":
		return FormatMarkdown
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// NewParser creates a new parser instance for the specified format
func NewParser(format Format) (Parser, error) {
	switch format {
	case FormatTOML:
		return NewTOMLParser(), nil
	case FormatYAML:
		return NewYAMLParser(), nil
	case FormatMarkdown:
		return NewMarkdownParser(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %v", format)
	}
}

// ParseFile detects the format of path, parses it and validates the result.
// The absolute path is stored in CommandFile.FilePath.
func ParseFile(path string) (*models.CommandFile, error) {
	format := DetectFormat(path)

	parser, err := NewParser(format)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Format: format, Read: true, Err: err}
	}
	defer file.Close()

	cf, err := parser.Parse(file)
	if err != nil {
		return nil, &SourceLoadError{Path: path, Format: format, Err: err}
	}
	if err := cf.Validate(); err != nil {
		return nil, &SourceLoadError{Path: path, Format: format, Err: err}
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	cf.FilePath = absPath

	return cf, nil
}

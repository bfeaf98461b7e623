// Package loader reads announcement configuration files.
//
// TOML, YAML and JSON files are supported; the format is chosen by file
// extension. A file may list other files under "include"; they are loaded
// first and the including file overrides them.
package loader

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultMaxIncludeDepth bounds nested includes.
const DefaultMaxIncludeDepth = 8

// File is the content of one configuration file. Nil fields were not set
// in the file.
type File struct {
	Include      []string `toml:"include" yaml:"include" json:"include"`
	Serialize    *bool    `toml:"serialize" yaml:"serialize" json:"serialize"`
	LogLevel     *string  `toml:"logLevel" yaml:"logLevel" json:"logLevel"`
	LogFormat    *string  `toml:"logFormat" yaml:"logFormat" json:"logFormat"`
	Trace        *bool    `toml:"trace" yaml:"trace" json:"trace"`
	LuaNamespace *string  `toml:"luaNamespace" yaml:"luaNamespace" json:"luaNamespace"`
}

// Merge returns f with every field set in over replacing f's value.
// Include lists are not merged.
func (f File) Merge(over File) File {
	if over.Serialize != nil {
		f.Serialize = over.Serialize
	}
	if over.LogLevel != nil {
		f.LogLevel = over.LogLevel
	}
	if over.LogFormat != nil {
		f.LogFormat = over.LogFormat
	}
	if over.Trace != nil {
		f.Trace = over.Trace
	}
	if over.LuaNamespace != nil {
		f.LuaNamespace = over.LuaNamespace
	}
	f.Include = nil
	return f
}

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf returns the format for path based on its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// Parse decodes data in the given format. source names the data in errors.
// Unknown keys are rejected.
func Parse(format Format, source string, data []byte) (File, error) {
	switch format {
	case FormatTOML:
		return parseTOML(source, data)
	case FormatYAML:
		return parseYAML(source, data)
	case FormatJSON:
		return parseJSON(source, data)
	default:
		return File{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems such as
// fstest.MapFS.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Loader loads configuration files from a FileSystem.
type Loader struct {
	fs FileSystem
}

// New creates a loader reading from the OS file system.
func New() *Loader {
	return &Loader{fs: DefaultFS()}
}

// NewWithFS creates a loader with a custom file system.
func NewWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// LoadFrom reads and parses the file at path. A missing file is not an
// error: LoadFrom returns found == false and an empty File.
func (l *Loader) LoadFrom(path string) (file File, found bool, err error) {
	format, err := FormatOf(path)
	if err != nil {
		return File{}, false, err
	}

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, false, nil
		}
		return File{}, false, fmt.Errorf("reading config file %s: %w", path, err)
	}

	file, err = Parse(format, path, data)
	if err != nil {
		return File{}, false, err
	}
	return file, true, nil
}

// LoadFromReader parses configuration in the given format from r.
func (l *Loader) LoadFromReader(format Format, r io.Reader) (File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(format, "<reader>", data)
}

// LoadWithIncludes loads the file at path and the files it includes.
// Relative include paths are resolved against the including file's
// directory; included files must exist. maxDepth limits nesting.
func (l *Loader) LoadWithIncludes(path string, maxDepth int) (File, bool, error) {
	if maxDepth <= 0 {
		return File{}, false, fmt.Errorf("%w: %s", ErrIncludeDepthExceeded, path)
	}

	file, found, err := l.LoadFrom(path)
	if err != nil || !found || len(file.Include) == 0 {
		return file, found, err
	}

	merged := File{}
	baseDir := filepath.Dir(path)
	for _, inc := range file.Include {
		incPath := inc
		if !filepath.IsAbs(inc) {
			incPath = filepath.Join(baseDir, inc)
		}

		incFile, incFound, err := l.LoadWithIncludes(incPath, maxDepth-1)
		if err != nil {
			return File{}, false, fmt.Errorf("loading include %s: %w", incPath, err)
		}
		if !incFound {
			return File{}, false, fmt.Errorf("loading include %s: %w", incPath, fs.ErrNotExist)
		}
		merged = merged.Merge(incFile)
	}

	return merged.Merge(file), true, nil
}

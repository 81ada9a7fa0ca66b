package tools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/wagiedev/project-tools-mcp/internal/mcp"
)

var errAccessDenied = errors.New("access denied")

// EntryType classifies a directory entry.
type EntryType string

const (
	// EntryFile is a regular file.
	EntryFile EntryType = "file"
	// EntryDirectory is a directory.
	EntryDirectory EntryType = "directory"
	// EntryOther covers symlinks, sockets, devices and pipes.
	EntryOther EntryType = "other"
)

// ReadFileInput is the input of read_project_file.
type ReadFileInput struct {
	RelativePath string `json:"relativePath" jsonschema:"path of the file relative to the project root"`
}

// ReadFileOutput is the output of read_project_file. Exactly one of Content
// and Error is set; use FileContent and FileFailure to build it.
type ReadFileOutput struct {
	RelativePath string  `json:"relativePath"`
	AbsolutePath string  `json:"absolutePath"`
	Content      *string `json:"content,omitempty"`
	Error        string  `json:"error,omitempty"`
}

// FileContent is the successful variant of ReadFileOutput.
func FileContent(relativePath, absolutePath, content string) ReadFileOutput {
	return ReadFileOutput{
		RelativePath: relativePath,
		AbsolutePath: absolutePath,
		Content:      &content,
	}
}

// FileFailure is the reported-error variant of ReadFileOutput.
func FileFailure(relativePath, absolutePath string, err error) ReadFileOutput {
	return ReadFileOutput{
		RelativePath: relativePath,
		AbsolutePath: absolutePath,
		Error:        err.Error(),
	}
}

// ReportedError implements mcp.Reporter.
func (o ReadFileOutput) ReportedError() string { return o.Error }

// ListDirectoryInput is the input of list_project_directory.
type ListDirectoryInput struct {
	RelativePath string `json:"relativePath,omitempty" jsonschema:"directory relative to the project root, defaults to the root"`
}

// DirectoryEntry is one immediate child of a listed directory.
type DirectoryEntry struct {
	Name string    `json:"name"`
	Type EntryType `json:"type"`
}

// ListDirectoryOutput is the output of list_project_directory. On failure
// Entries is empty and Error is set.
type ListDirectoryOutput struct {
	Directory string           `json:"directory"`
	Entries   []DirectoryEntry `json:"entries"`
	Error     string           `json:"error,omitempty"`
}

// ReportedError implements mcp.Reporter.
func (o ListDirectoryOutput) ReportedError() string { return o.Error }

// resolve maps a client path to an absolute path under the root.
// Absolute inputs are kept, cleaned.
func (c *Catalog) resolve(relativePath string) string {
	if filepath.IsAbs(relativePath) {
		return filepath.Clean(relativePath)
	}

	return filepath.Join(c.root, relativePath)
}

// checkAccess applies the deny patterns to the path as seen from the root.
func (c *Catalog) checkAccess(absolutePath string) error {
	if len(c.deny) == 0 {
		return nil
	}

	rel, err := filepath.Rel(c.root, absolutePath)
	if err != nil {
		rel = absolutePath
	}

	rel = filepath.ToSlash(rel)
	for _, pattern := range c.deny {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return fmt.Errorf("%w: %s", errAccessDenied, rel)
		}
	}

	return nil
}

func (c *Catalog) readFile(_ context.Context, in ReadFileInput) (ReadFileOutput, error) {
	abs := c.resolve(in.RelativePath)

	if err := c.checkAccess(abs); err != nil {
		return FileFailure(in.RelativePath, abs, err), nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		c.log.Debug("Read failed", "path", abs, "error", err)

		return FileFailure(in.RelativePath, abs, err), nil
	}

	return FileContent(in.RelativePath, abs, strings.ToValidUTF8(string(data), "\uFFFD")), nil
}

func (c *Catalog) listDirectory(_ context.Context, in ListDirectoryInput) (ListDirectoryOutput, error) {
	rel := in.RelativePath
	if rel == "" {
		rel = "."
	}

	abs := c.resolve(rel)
	out := ListDirectoryOutput{
		Directory: abs,
		Entries:   []DirectoryEntry{},
	}

	if err := c.checkAccess(abs); err != nil {
		out.Error = err.Error()

		return out, nil
	}

	dirents, err := os.ReadDir(abs)
	if err != nil {
		c.log.Debug("List failed", "path", abs, "error", err)
		out.Error = err.Error()

		return out, nil
	}

	for _, d := range dirents {
		out.Entries = append(out.Entries, DirectoryEntry{
			Name: d.Name(),
			Type: classify(d),
		})
	}

	return out, nil
}

// classify does not follow symlinks.
func classify(d os.DirEntry) EntryType {
	switch {
	case d.Type().IsRegular():
		return EntryFile
	case d.IsDir():
		return EntryDirectory
	default:
		return EntryOther
	}
}

func (c *Catalog) readFileDescriptor() (*mcp.Descriptor, error) {
	return mcp.NewDescriptor(
		ReadProjectFileName,
		"Read Project File",
		"Read a text file relative to the project root. Read failures are reported in the error field.",
		c.readFile,
		mcp.WithAnnotations(&sdk.ToolAnnotations{ReadOnlyHint: true}),
	)
}

func (c *Catalog) listDirectoryDescriptor() (*mcp.Descriptor, error) {
	return mcp.NewDescriptor(
		ListProjectDirectoryName,
		"List Project Directory",
		"List the immediate children of a directory relative to the project root, classified as file, directory or other.",
		c.listDirectory,
		mcp.WithAnnotations(&sdk.ToolAnnotations{ReadOnlyHint: true}),
	)
}

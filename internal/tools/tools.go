// Package tools provides the fixed catalog of example operations: number
// addition, the current time in India Standard Time, and read-only access to
// files and directories under a workspace root.
package tools

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/jonboulle/clockwork"

	"github.com/wagiedev/project-tools-mcp/internal/mcp"
)

// Operation names exposed to MCP clients.
const (
	AddNumbersName           = "add_numbers"
	CurrentTimeISTName       = "current_time_ist"
	ReadProjectFileName      = "read_project_file"
	ListProjectDirectoryName = "list_project_directory"
)

// Catalog holds the shared state the operations need.
type Catalog struct {
	log   *slog.Logger
	root  string
	clock clockwork.Clock
	deny  []string
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithRoot sets the directory relative paths resolve against.
// Defaults to the process working directory.
func WithRoot(root string) Option {
	return func(c *Catalog) {
		c.root = root
	}
}

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Catalog) {
		c.clock = clock
	}
}

// WithDenyPaths sets doublestar glob patterns matched against the cleaned
// relative path. Matching paths are reported as access denied.
func WithDenyPaths(patterns ...string) Option {
	return func(c *Catalog) {
		c.deny = append(c.deny, patterns...)
	}
}

// New creates a Catalog. A relative root is resolved against the working
// directory. It fails if a deny pattern is malformed or the working
// directory cannot be determined.
func New(log *slog.Logger, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		log:   log.With("component", "tools"),
		clock: clockwork.NewRealClock(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("determine working directory: %w", err)
		}

		c.root = wd
	}

	root, err := filepath.Abs(c.root)
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", c.root, err)
	}

	c.root = root

	for _, pattern := range c.deny {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid deny pattern %q", pattern)
		}
	}

	return c, nil
}

// Root returns the workspace root.
func (c *Catalog) Root() string {
	return c.root
}

// Register adds every catalog operation to reg.
func (c *Catalog) Register(reg *mcp.Registry) error {
	descs, err := c.Descriptors()
	if err != nil {
		return err
	}

	for _, d := range descs {
		if err := reg.Register(d); err != nil {
			return err
		}
	}

	return nil
}

// Descriptors builds the operation descriptors in catalog order.
func (c *Catalog) Descriptors() ([]*mcp.Descriptor, error) {
	builders := []func() (*mcp.Descriptor, error){
		c.addNumbersDescriptor,
		c.currentTimeDescriptor,
		c.readFileDescriptor,
		c.listDirectoryDescriptor,
	}

	descs := make([]*mcp.Descriptor, 0, len(builders))
	for _, build := range builders {
		d, err := build()
		if err != nil {
			return nil, err
		}

		descs = append(descs, d)
	}

	return descs, nil
}

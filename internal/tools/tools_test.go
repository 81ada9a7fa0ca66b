package tools

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"

	toolserrors "github.com/wagiedev/project-tools-mcp/internal/errors"
	"github.com/wagiedev/project-tools-mcp/internal/mcp"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newWorkspace creates a root with a.txt and an empty directory b.
func newWorkspace(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("hello\nworld\n"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(root, "b"), 0o755))

	return root
}

func newRegistry(t *testing.T, opts ...Option) (*mcp.Registry, *Catalog) {
	t.Helper()

	catalog, err := New(discardLogger(), opts...)
	require.NoError(t, err)

	reg := mcp.NewRegistry(discardLogger())
	require.NoError(t, catalog.Register(reg))
	reg.Seal()

	return reg, catalog
}

func dispatch(t *testing.T, reg *mcp.Registry, name string, args any) *mcp.Result {
	t.Helper()

	raw, err := json.Marshal(args)
	require.NoError(t, err)

	res, err := reg.Dispatch(context.Background(), name, raw)
	require.NoError(t, err)

	return res
}

func TestCatalogRegistersAllOperations(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	names := make([]string, 0, 4)
	for _, d := range reg.List() {
		names = append(names, d.Name)
		require.NotEmpty(t, d.Title)
		require.NotEmpty(t, d.Description)
		require.NotNil(t, d.OutputSchema)
		require.NotNil(t, d.Annotations)
		require.True(t, d.Annotations.ReadOnlyHint)
	}

	require.Equal(t, []string{
		AddNumbersName,
		CurrentTimeISTName,
		ReadProjectFileName,
		ListProjectDirectoryName,
	}, names)
}

func TestCatalogDefaultsToWorkingDirectory(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)

	catalog, err := New(discardLogger())
	require.NoError(t, err)
	require.Equal(t, wd, catalog.Root())
}

func TestCatalogRelativeRoot(t *testing.T) {
	root := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "secret.txt"), []byte("hunter2"), 0o600))

	t.Chdir(filepath.Dir(root))

	wd, err := os.Getwd()
	require.NoError(t, err)

	absRoot := filepath.Join(wd, filepath.Base(root))

	reg, catalog := newRegistry(t, WithRoot(filepath.Base(root)), WithDenyPaths("secret.txt"))
	require.Equal(t, absRoot, catalog.Root())

	t.Run("paths in results are absolute", func(t *testing.T) {
		file := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "a.txt"}).Structured.(ReadFileOutput)
		require.Equal(t, filepath.Join(absRoot, "a.txt"), file.AbsolutePath)
		require.NotNil(t, file.Content)

		listing := dispatch(t, reg, ListProjectDirectoryName, nil).Structured.(ListDirectoryOutput)
		require.Equal(t, absRoot, listing.Directory)
		require.Empty(t, listing.Error)
	})

	t.Run("deny patterns hold for relative and absolute requests", func(t *testing.T) {
		for _, path := range []string{"secret.txt", filepath.Join(absRoot, "secret.txt")} {
			out := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": path}).Structured.(ReadFileOutput)

			require.Nil(t, out.Content, "path %s", path)
			require.Equal(t, "access denied: secret.txt", out.Error, "path %s", path)
		}
	})
}

func TestCatalogRejectsBadDenyPattern(t *testing.T) {
	_, err := New(discardLogger(), WithRoot(t.TempDir()), WithDenyPaths("[unclosed"))
	require.Error(t, err)
}

func TestAddNumbers(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	tests := []struct {
		name string
		a, b float64
		want float64
	}{
		{name: "positive", a: 2, b: 3, want: 5},
		{name: "negative", a: -7, b: 2, want: -5},
		{name: "fractional", a: 0.25, b: 0.5, want: 0.75},
		{name: "zero", a: 0, b: 0, want: 0},
		{name: "float rounding is preserved", a: 0.1, b: 0.2, want: 0.1 + 0.2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := dispatch(t, reg, AddNumbersName, map[string]any{"a": tt.a, "b": tt.b})
			require.Equal(t, AddNumbersOutput{Result: tt.want}, res.Structured)
			require.False(t, res.Failed())
		})
	}
}

func TestAddNumbersRequiresBothOperands(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	_, err := reg.Dispatch(context.Background(), AddNumbersName, json.RawMessage(`{"a":1}`))
	require.Error(t, err)
	require.Contains(t, err.Error(), "fields [b]")
}

func TestAddNumbersRejectsUnknownArguments(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	_, err := reg.Dispatch(context.Background(), AddNumbersName, json.RawMessage(`{"a":1,"b":2,"note":"x"}`))
	require.ErrorIs(t, err, toolserrors.ErrInvalidArguments)

	var verr *toolserrors.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, []string{"note"}, verr.Fields)
}

func TestFormatInstant(t *testing.T) {
	instant := time.Date(2026, time.October, 16, 9, 34, 5, 123_456_789, time.UTC)

	got := FormatInstant(instant)

	require.Equal(t, "2026-10-16T09:34:05.123Z", got.ISO)
	require.Equal(t, "Friday, 16 October 2026 at 3:04:05 pm IST", got.Human)
}

func TestCurrentTimeIST(t *testing.T) {
	start := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(start)
	reg, _ := newRegistry(t, WithRoot(t.TempDir()), WithClock(clock))

	first := dispatch(t, reg, CurrentTimeISTName, nil).Structured.(CurrentTimeOutput)
	clock.Advance(1500 * time.Millisecond)
	second := dispatch(t, reg, CurrentTimeISTName, map[string]any{}).Structured.(CurrentTimeOutput)

	require.Equal(t, "2026-01-01T00:00:00.000Z", first.ISO)
	require.Equal(t, "Thursday, 1 January 2026 at 5:30:00 am IST", first.Human)
	require.Equal(t, "2026-01-01T00:00:01.500Z", second.ISO)

	parsed, err := time.Parse(time.RFC3339Nano, second.ISO)
	require.NoError(t, err)
	require.Equal(t, time.UTC, parsed.Location())
	require.LessOrEqual(t, first.ISO, second.ISO)
}

func TestCurrentTimeIST_RealClockIsNonDecreasing(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	first := dispatch(t, reg, CurrentTimeISTName, nil).Structured.(CurrentTimeOutput)
	second := dispatch(t, reg, CurrentTimeISTName, nil).Structured.(CurrentTimeOutput)

	_, err := time.Parse(time.RFC3339Nano, first.ISO)
	require.NoError(t, err)
	require.LessOrEqual(t, first.ISO, second.ISO)
}

func TestCurrentTimeIST_RejectsArguments(t *testing.T) {
	reg, _ := newRegistry(t, WithRoot(t.TempDir()))

	_, err := reg.Dispatch(context.Background(), CurrentTimeISTName, json.RawMessage(`{"zone":"UTC"}`))
	require.Error(t, err)
}

func TestReadProjectFile(t *testing.T) {
	root := newWorkspace(t)
	reg, _ := newRegistry(t, WithRoot(root))

	t.Run("existing file returns its content", func(t *testing.T) {
		res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "a.txt"})
		out := res.Structured.(ReadFileOutput)

		require.Equal(t, "a.txt", out.RelativePath)
		require.Equal(t, filepath.Join(root, "a.txt"), out.AbsolutePath)
		require.NotNil(t, out.Content)
		require.Equal(t, "hello\nworld\n", *out.Content)
		require.Empty(t, out.Error)
		require.False(t, res.Failed())
	})

	t.Run("missing file is reported, not raised", func(t *testing.T) {
		res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "nope.txt"})
		out := res.Structured.(ReadFileOutput)

		require.Equal(t, filepath.Join(root, "nope.txt"), out.AbsolutePath)
		require.Nil(t, out.Content)
		require.Contains(t, out.Error, "no such file or directory")
		require.True(t, res.Failed())
		require.NotContains(t, res.Text, `"content"`)
	})

	t.Run("directory is reported", func(t *testing.T) {
		res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "b"})
		out := res.Structured.(ReadFileOutput)

		require.Nil(t, out.Content)
		require.NotEmpty(t, out.Error)
	})

	t.Run("empty file has empty content", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(root, "empty"), nil, 0o600))

		res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "empty"})
		out := res.Structured.(ReadFileOutput)

		require.NotNil(t, out.Content)
		require.Empty(t, *out.Content)
		require.Contains(t, res.Text, `"content": ""`)
	})

	t.Run("absolute path is kept", func(t *testing.T) {
		abs := filepath.Join(root, "b", "..", "a.txt")

		res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": abs})
		out := res.Structured.(ReadFileOutput)

		require.Equal(t, filepath.Join(root, "a.txt"), out.AbsolutePath)
		require.NotNil(t, out.Content)
	})

	t.Run("missing relativePath is a validation failure", func(t *testing.T) {
		_, err := reg.Dispatch(context.Background(), ReadProjectFileName, json.RawMessage(`{}`))
		require.Error(t, err)
	})
}

func TestReadProjectFile_DenyPaths(t *testing.T) {
	root := newWorkspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, ".env"), []byte("SECRET=1"), 0o600))

	reg, _ := newRegistry(t, WithRoot(root), WithDenyPaths("**/.env", "b/**"))

	res := dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": ".env"})
	out := res.Structured.(ReadFileOutput)

	require.Nil(t, out.Content)
	require.Equal(t, "access denied: .env", out.Error)

	res = dispatch(t, reg, ReadProjectFileName, map[string]any{"relativePath": "a.txt"})
	require.False(t, res.Failed())
}

func TestListProjectDirectory(t *testing.T) {
	root := newWorkspace(t)
	reg, _ := newRegistry(t, WithRoot(root))

	want := []DirectoryEntry{
		{Name: "b", Type: EntryDirectory},
		{Name: "a.txt", Type: EntryFile},
	}
	sortEntries := cmpopts.SortSlices(func(x, y DirectoryEntry) bool { return x.Name < y.Name })

	t.Run("defaults to the root", func(t *testing.T) {
		res := dispatch(t, reg, ListProjectDirectoryName, nil)
		out := res.Structured.(ListDirectoryOutput)

		require.Equal(t, root, out.Directory)
		require.Empty(t, out.Error)

		if diff := cmp.Diff(want, out.Entries, sortEntries); diff != "" {
			t.Errorf("entries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("explicit dot equals the default", func(t *testing.T) {
		res := dispatch(t, reg, ListProjectDirectoryName, map[string]any{"relativePath": "."})
		out := res.Structured.(ListDirectoryOutput)

		require.Equal(t, root, out.Directory)

		if diff := cmp.Diff(want, out.Entries, sortEntries); diff != "" {
			t.Errorf("entries mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("empty directory lists no entries", func(t *testing.T) {
		res := dispatch(t, reg, ListProjectDirectoryName, map[string]any{"relativePath": "b"})
		out := res.Structured.(ListDirectoryOutput)

		require.Equal(t, filepath.Join(root, "b"), out.Directory)
		require.NotNil(t, out.Entries)
		require.Empty(t, out.Entries)
		require.Contains(t, res.Text, `"entries": []`)
	})

	t.Run("missing directory is reported", func(t *testing.T) {
		res := dispatch(t, reg, ListProjectDirectoryName, map[string]any{"relativePath": "ghost"})
		out := res.Structured.(ListDirectoryOutput)

		require.Contains(t, out.Error, "no such file or directory")
		require.Empty(t, out.Entries)
		require.True(t, res.Failed())
	})

	t.Run("file is not a directory", func(t *testing.T) {
		res := dispatch(t, reg, ListProjectDirectoryName, map[string]any{"relativePath": "a.txt"})
		out := res.Structured.(ListDirectoryOutput)

		require.NotEmpty(t, out.Error)
		require.Empty(t, out.Entries)
	})
}

func TestListProjectDirectory_Symlink(t *testing.T) {
	root := newWorkspace(t)
	if err := os.Symlink(filepath.Join(root, "a.txt"), filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	reg, _ := newRegistry(t, WithRoot(root))

	out := dispatch(t, reg, ListProjectDirectoryName, nil).Structured.(ListDirectoryOutput)

	types := make(map[string]EntryType, len(out.Entries))
	for _, e := range out.Entries {
		types[e.Name] = e.Type
	}

	require.Equal(t, map[string]EntryType{
		"a.txt": EntryFile,
		"b":     EntryDirectory,
		"link":  EntryOther,
	}, types)
}

func TestListProjectDirectory_DenyPaths(t *testing.T) {
	root := newWorkspace(t)
	reg, _ := newRegistry(t, WithRoot(root), WithDenyPaths("b"))

	out := dispatch(t, reg, ListProjectDirectoryName, map[string]any{"relativePath": "b"}).Structured.(ListDirectoryOutput)

	require.Equal(t, "access denied: b", out.Error)
	require.Empty(t, out.Entries)
}

package core_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focus-cli/core"
)

var baseLines = []string{
	"127.0.0.1 localhost",
	"",
	"# static entries below",
	"192.168.1.5 nas.local",
}

func TestAddSection_AppendsSortedEntries(t *testing.T) {
	got := core.AddSection(baseLines, []string{"b.com", "a.com"}, "127.0.0.1")

	want := append(append([]string{}, baseLines...),
		"",
		core.MarkerStart,
		"127.0.0.1 a.com",
		"127.0.0.1 b.com",
		core.MarkerEnd,
	)
	assert.Equal(t, want, got)
}

func TestAddSection_Idempotent(t *testing.T) {
	domains := []string{"reddit.com", "reddit.co.uk"}
	once := core.AddSection(baseLines, domains, "127.0.0.1")
	twice := core.AddSection(once, domains, "127.0.0.1")
	assert.Equal(t, once, twice)
}

func TestAddSection_ReplacesPreviousSection(t *testing.T) {
	withOld := core.AddSection(baseLines, []string{"old.com"}, "127.0.0.1")
	got := core.AddSection(withOld, []string{"new.com"}, "0.0.0.0")

	assert.NotContains(t, got, "127.0.0.1 old.com")
	assert.Contains(t, got, "0.0.0.0 new.com")
	// Still exactly one marker pair.
	starts := 0
	for _, line := range got {
		if line == core.MarkerStart {
			starts++
		}
	}
	assert.Equal(t, 1, starts)
}

func TestRemoveSection_RoundTrip(t *testing.T) {
	added := core.AddSection(baseLines, []string{"reddit.com"}, "127.0.0.1")
	assert.Equal(t, baseLines, core.RemoveSection(added))
}

func TestRemoveSection_NoMarkersUnchanged(t *testing.T) {
	assert.Equal(t, baseLines, core.RemoveSection(baseLines))
}

func TestRemoveSection_MidFileSection(t *testing.T) {
	lines := []string{
		"127.0.0.1 localhost",
		"",
		core.MarkerStart,
		"127.0.0.1 reddit.com",
		core.MarkerEnd,
		"192.168.1.5 nas.local",
	}
	got := core.RemoveSection(lines)
	assert.Equal(t, []string{"127.0.0.1 localhost", "192.168.1.5 nas.local"}, got)
}

func TestRemoveSection_UnterminatedSectionDroppedToEOF(t *testing.T) {
	lines := []string{
		"127.0.0.1 localhost",
		core.MarkerStart,
		"127.0.0.1 reddit.com",
		"# trailing junk with no end marker",
	}
	got := core.RemoveSection(lines)
	assert.Equal(t, []string{"127.0.0.1 localhost"}, got)
}

func TestRemoveSection_PreservesUnrelatedLinesExactly(t *testing.T) {
	lines := []string{
		"   127.0.0.1\tlocalhost  ",
		"",
		"",
		"# comment kept as-is",
	}
	added := core.AddSection(lines, []string{"a.com"}, "127.0.0.1")
	assert.Equal(t, lines, core.RemoveSection(added))
}

func TestReadWriteHostsLines_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hosts")
	require.NoError(t, core.WriteHostsLines(path, baseLines))

	got, err := core.ReadHostsLines(path)
	require.NoError(t, err)
	assert.Equal(t, baseLines, got)

	// The write is temp+rename; no temp file should be left behind.
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestReadHostsLines_MissingFile(t *testing.T) {
	_, err := core.ReadHostsLines(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/autoplay/internal/autoplay"
	"github.com/dshills/autoplay/internal/autoplay/autoplaytest"
	"github.com/dshills/autoplay/internal/input/key"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.gsi")
	autoplaytest.Record(t, path,
		autoplay.NewEntry(0, autoplay.Press(key.KeyShiftLeft)),
		autoplay.NewEntry(250*time.Millisecond, autoplay.Press(key.KeyA)),
		autoplay.NewEntry(400*time.Millisecond, autoplay.Release(key.KeyA)),
	)
	return path
}

func TestInspect(t *testing.T) {
	path := writeSample(t)

	out, err := execute(t, "inspect", path)
	require.NoError(t, err)

	assert.Contains(t, out, "Entries:     3")
	assert.Contains(t, out, "Transitions: 3")
	assert.Contains(t, out, "Duration:    400ms")
	assert.Contains(t, out, "1 press, 1 release")
	assert.Contains(t, out, "Still held at end: ShiftLeft")
}

func TestSummarize(t *testing.T) {
	s := autoplay.NewSession(
		autoplay.NewEntry(0, autoplay.Press(key.KeyB), autoplay.Press(key.KeyA)),
		autoplay.NewEntry(time.Second, autoplay.Release(key.KeyA), autoplay.Release(key.KeyB)),
		autoplay.NewEntry(2*time.Second, autoplay.Press(key.KeyA)),
	)
	sum := summarize(s)

	assert.Equal(t, 3, sum.Entries)
	assert.Equal(t, 5, sum.Transitions)
	assert.Equal(t, 2*time.Second, sum.Duration)
	assert.Equal(t, []keyUse{
		{Key: key.KeyA, Presses: 2, Releases: 1},
		{Key: key.KeyB, Presses: 1, Releases: 1},
	}, sum.Keys)
	assert.Equal(t, []key.Key{key.KeyA}, sum.Held)
}

func TestDumpImport(t *testing.T) {
	path := writeSample(t)

	out, err := execute(t, "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "offset: 250ms")
	assert.Contains(t, out, "- press: A")

	yamlPath := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(out), 0o644))

	outPath := filepath.Join(t.TempDir(), "copy.gsi")
	out, err = execute(t, "import", yamlPath, outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 3 entries")

	orig, err := autoplay.ReadFile(path)
	require.NoError(t, err)
	copied, err := autoplay.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, orig.Equal(copied))
}

func TestImportRejectsBadYAML(t *testing.T) {
	yamlPath := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte("entries:\n  - offset: 0s\n    transitions: [{press: nokey}]\n"), 0o644))

	outPath := filepath.Join(t.TempDir(), "out.gsi")
	_, err := execute(t, "import", yamlPath, outPath)
	assert.ErrorIs(t, err, key.ErrUnknownKey)
	assert.NoFileExists(t, outPath)
}

func TestCompose(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "hello.lua")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
local t = tap("F1", 0)
text("hi", t)
`), 0o644))

	outPath := filepath.Join(dir, "hello.gsi")
	out, err := execute(t, "compose", "--hold", "50ms", scriptPath, outPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "wrote "), out)

	s, err := autoplay.ReadFile(outPath)
	require.NoError(t, err)
	first, ok := s.Front()
	require.True(t, ok)
	assert.Equal(t, autoplay.NewEntry(0, autoplay.Press(key.KeyF1)), first)
	assert.Equal(t, 6, s.TransitionCount())
}

func TestMissingFile(t *testing.T) {
	_, err := execute(t, "inspect", filepath.Join(t.TempDir(), "none.gsi"))
	assert.ErrorIs(t, err, autoplay.ErrNotFound)

	_, err = execute(t, "dump")
	assert.Error(t, err)
}

func TestBadConfig(t *testing.T) {
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "none.toml"))
	assert.Error(t, err)
}

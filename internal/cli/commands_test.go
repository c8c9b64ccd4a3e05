package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typelate/docpatch/internal/cli"
)

func run(t *testing.T, wd string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := cli.Commands(wd, args, os.Getenv, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

const rulesYAML = `rules:
  - name: add-z
    anchor: "X\n\n---\n"
    insert: "Z\n"
`

func TestApply(t *testing.T) {
	t.Run("rewrites the target in place", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", rulesYAML)
		target := writeFile(t, dir, "doc.md", "X\n\n---\n\nY\n")

		stdout, stderr, err := run(t, dir, "apply", "--rules", "rules.yaml", "doc.md")
		require.NoError(t, err)
		assert.Contains(t, stdout, "patched doc.md (1 of 1 rules applied)")
		assert.Empty(t, stderr)

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "X\n\n---\nZ\n\nY\n", string(got))
	})

	t.Run("missing anchor is reported and skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", rulesYAML)
		target := writeFile(t, dir, "doc.md", "no anchors here\n")

		stdout, stderr, err := run(t, dir, "apply", "--rules", "rules.yaml", "doc.md")
		require.NoError(t, err)
		assert.Contains(t, stdout, "patched doc.md (0 of 1 rules applied)")
		assert.Contains(t, stderr, `skip rule "add-z": anchor not found`)

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "no anchors here\n", string(got))
	})

	t.Run("strict mode fails and leaves the file alone", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", rulesYAML)
		target := writeFile(t, dir, "doc.md", "no anchors here\n")

		_, _, err := run(t, dir, "apply", "--strict", "--rules", "rules.yaml", "doc.md")
		require.ErrorContains(t, err, "anchor not found")

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "no anchors here\n", string(got))
	})

	t.Run("dry run does not write", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", rulesYAML)
		target := writeFile(t, dir, "doc.md", "X\n\n---\n\nY\n")

		stdout, _, err := run(t, dir, "apply", "--dry-run", "--diff", "--rules", "rules.yaml", "doc.md")
		require.NoError(t, err)
		assert.Contains(t, stdout, "dry run: left doc.md unchanged (1 of 1 rules match)")
		assert.Contains(t, stdout, "+Z\n")

		got, err := os.ReadFile(target)
		require.NoError(t, err)
		assert.Equal(t, "X\n\n---\n\nY\n", string(got))
	})

	t.Run("rule file target is the default", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", "target: doc.md\n"+rulesYAML)
		writeFile(t, dir, "doc.md", "X\n\n---\n\nY\n")

		stdout, _, err := run(t, dir, "apply", "--rules", "rules.yaml")
		require.NoError(t, err)
		assert.Contains(t, stdout, "patched doc.md")
	})

	t.Run("unreadable target is fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "rules.yaml", rulesYAML)
		_, _, err := run(t, dir, "apply", "--rules", "rules.yaml", "missing.md")
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestRuleSourceFlags(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "X\n")

	t.Run("unknown flag", func(t *testing.T) {
		_, _, err := run(t, dir, "apply", "--unknown")
		assert.ErrorContains(t, err, "unknown flag")
	})
	t.Run("rules and preset are mutually exclusive", func(t *testing.T) {
		_, _, err := run(t, dir, "apply", "--rules", "a.yaml", "--preset", "spec-guide", "doc.md")
		assert.ErrorContains(t, err, "mutually exclusive")
	})
	t.Run("a rule source is required", func(t *testing.T) {
		_, _, err := run(t, dir, "apply", "doc.md")
		assert.ErrorContains(t, err, "either --rules or --preset is required")
	})
	t.Run("unknown preset", func(t *testing.T) {
		_, _, err := run(t, dir, "check", "--preset", "bogus", "doc.md")
		assert.ErrorContains(t, err, `unknown preset "bogus"`)
	})
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rules.yaml", rulesYAML)
	writeFile(t, dir, "good.md", "X\n\n---\n\nY\n")
	writeFile(t, dir, "bad.md", "nothing to see\n")

	t.Run("all anchors found", func(t *testing.T) {
		stdout, _, err := run(t, dir, "check", "--rules", "rules.yaml", "good.md")
		require.NoError(t, err)
		assert.Contains(t, stdout, "all 1 rule anchor(s) found")
	})

	t.Run("missing anchors fail", func(t *testing.T) {
		stdout, _, err := run(t, dir, "check", "--rules", "rules.yaml", "bad.md")
		require.ErrorContains(t, err, "1 rule anchor(s) not found")
		assert.Contains(t, stdout, `bad.md: missing anchor for rule "add-z"`)
	})
}

func TestRules(t *testing.T) {
	dir := t.TempDir()

	t.Run("lists preset rules", func(t *testing.T) {
		stdout, _, err := run(t, dir, "rules", "--preset", "spec-guide")
		require.NoError(t, err)
		assert.Contains(t, stdout, "target: specs/SPEC_CREATION_GUIDE.md")
		assert.Contains(t, stdout, "orchestrator-delegation-rules")
		assert.Contains(t, stdout, "phase-sizing-constraints")
		assert.Contains(t, stdout, "anti-patterns-11-13")
	})

	t.Run("multi-line anchors are truncated", func(t *testing.T) {
		stdout, _, err := run(t, dir, "rules", "--preset", "handoff-standards")
		require.NoError(t, err)
		assert.Contains(t, stdout, `...`)
	})
}

func TestPreview(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.md", "# Title\n\nbody text\n")

	stdout, _, err := run(t, dir, "preview", "doc.md")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Title")
	assert.Contains(t, stdout, "body text")
}

func TestGlobalChangeDir(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "rules.yaml", rulesYAML)
	writeFile(t, sub, "doc.md", "X\n\n---\n\nY\n")

	stdout, _, err := run(t, dir, "-C", "sub", "apply", "--rules", "rules.yaml", "doc.md")
	require.NoError(t, err)
	assert.Contains(t, stdout, "patched doc.md")

	got, err := os.ReadFile(filepath.Join(sub, "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "X\n\n---\nZ\n\nY\n", string(got))
}

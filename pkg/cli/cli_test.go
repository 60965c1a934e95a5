package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invar-dev/invar/pkg/pack"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSetupAndLocalWorkflow(t *testing.T) {
	dir := t.TempDir()

	_, err := run(t, "setup", "-C", dir,
		"--name", "testpack",
		"--minecraft", "1.20.1",
		"--loader", "fabric",
		"--loader-version", "0.15.0")
	require.NoError(t, err)

	p, err := pack.Read(dir)
	require.NoError(t, err)
	assert.Equal(t, "testpack", p.Name)
	assert.Equal(t, pack.LoaderFabric, p.Instance.Loader)

	// Setup refuses to clobber an existing pack.
	_, err = run(t, "setup", "-C", dir, "--name", "other", "--minecraft", "1.20.1", "--loader", "fabric")
	require.Error(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "custom.jar"), []byte("jar"), 0o644))
	_, err = run(t, "add", "-C", dir, "--local", "mods/custom.jar")
	require.NoError(t, err)

	out, err := run(t, "list", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "custom")
	assert.Contains(t, out, "local")

	out, err = run(t, "doctor", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "consistent")

	archive := filepath.Join(dir, "out.mrpack")
	_, err = run(t, "export", "-C", dir, "-o", archive)
	require.NoError(t, err)
	info, err := os.Stat(archive)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestAddLocalDerivesCategoryFromDirectory(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "setup", "-C", dir, "--name", "p", "--minecraft", "1.20.1", "--loader", "fabric")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "shaderpacks", "glow.zip"), []byte("zip"), 0o644))
	_, err = run(t, "add", "-C", dir, "--local", "shaderpacks/glow.zip")
	require.NoError(t, err)

	out, err := run(t, "list", "-C", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "shaderpack")

	// A file outside any runtime directory needs --category.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	_, err = run(t, "add", "-C", dir, "--local", "notes.txt")
	require.Error(t, err)
}

func TestAddLocalRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "setup", "-C", dir, "--name", "p", "--minecraft", "1.20.1", "--loader", "fabric")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "custom.jar"), []byte("jar"), 0o644))
	_, err = run(t, "add", "-C", dir, "--local", "mods/custom.jar")
	require.NoError(t, err)

	// Adding the same file again must not produce a second entry.
	_, err = run(t, "add", "-C", dir, "--local", "mods/custom.jar")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already declared")

	p, err := pack.Read(dir)
	require.NoError(t, err)
	require.Len(t, p.LocalComponents, 1)
}

func TestLoaderFlagHelpListsLoaders(t *testing.T) {
	assert.Equal(t, "minecraft, forge, neoforge, fabric, quilt", loaderNames())
}

func TestRemoveSuggestsCloseMatches(t *testing.T) {
	dir := t.TempDir()
	_, err := run(t, "setup", "-C", dir, "--name", "p", "--minecraft", "1.20.1", "--loader", "fabric")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "mods", "custom.jar"), []byte("jar"), 0o644))
	_, err = run(t, "add", "-C", dir, "--local", "mods/custom.jar")
	require.NoError(t, err)

	_, err = run(t, "remove", "-C", dir, "custm")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "custom"`)

	_, err = run(t, "remove", "-C", dir, "custom")
	require.NoError(t, err)

	out, err := run(t, "list", "-C", dir)
	require.NoError(t, err)
	assert.NotContains(t, out, "custom")
}

func TestParseComponentSpec(t *testing.T) {
	id, constraint := parseComponentSpec("Fabric-API@>=1.1")
	assert.Equal(t, "fabric-api", id.String())
	assert.Equal(t, ">=1.1", constraint)

	id, constraint = parseComponentSpec("sodium")
	assert.Equal(t, "sodium", id.String())
	assert.Empty(t, constraint)
}

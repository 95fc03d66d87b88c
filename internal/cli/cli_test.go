package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BartekS5/fieldmap/internal/config"
	"github.com/BartekS5/fieldmap/pkg/logger"
	"github.com/BartekS5/fieldmap/pkg/models"
)

func quietLogs(t *testing.T) {
	t.Helper()
	logger.SetOutput(io.Discard, logger.ERROR)
	t.Cleanup(func() { logger.SetOutput(os.Stderr, logger.INFO) })
}

// run executes the root command with args and returns its stdout.
func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// initMapping creates a mapping for source [id, name] and destination
// [key, name, note] and returns its path.
func initMapping(t *testing.T, file string) string {
	t.Helper()
	quietLogs(t)
	dir := t.TempDir()
	src := writeFile(t, dir, "src.yaml", "name: people\nfields:\n  - name: id\n    type: int\n  - name: name\n    type: text\n")
	dst := writeFile(t, dir, "dst.yaml", "name: accounts\nfields:\n  - name: key\n  - name: name\n  - name: note\n")
	path := filepath.Join(dir, file)

	_, err := run(t, nil, "init", "-m", path, "--source", src, "--dest", dst)
	require.NoError(t, err)
	return path
}

func loadMapping(t *testing.T, path string) *config.MappingFile {
	t.Helper()
	mf, err := config.LoadMappingFile(path)
	require.NoError(t, err)
	return mf
}

func TestInit_MatchesFieldsByName(t *testing.T) {
	path := initMapping(t, "mapping.yaml")

	mf := loadMapping(t, path)
	assert.Equal(t, "people", mf.Source.Name)
	assert.Equal(t, "accounts", mf.Destination.Name)
	assert.Equal(t, models.Mapping{
		{Destination: "key", Expression: ""},
		{Destination: "name", Expression: "name"},
		{Destination: "note", Expression: ""},
	}, mf.Mapping)
}

func TestInit_RefusesOverwrite(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	dir := filepath.Dir(path)

	_, err := run(t, nil, "init", "-m", path, "--source", filepath.Join(dir, "src.yaml"), "--dest", filepath.Join(dir, "dst.yaml"))
	assert.ErrorContains(t, err, "already exists")

	_, err = run(t, nil, "init", "-m", path, "--force", "--source", filepath.Join(dir, "src.yaml"), "--dest", filepath.Join(dir, "dst.yaml"))
	assert.NoError(t, err)
}

func TestInit_TableNeedsConnection(t *testing.T) {
	quietLogs(t)
	path := filepath.Join(t.TempDir(), "m.yaml")
	_, err := run(t, &config.Config{}, "init", "-m", path, "--source-table", "dbo.users", "--dest-table", "dbo.accounts")
	assert.ErrorContains(t, err, "FIELDMAP_SQL_CONNECTION_STRING")
}

func TestShow(t *testing.T) {
	path := initMapping(t, "mapping.yaml")

	out, err := run(t, nil, "show", "-m", path)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n"))
	require.Len(t, lines, 4)
	assert.Contains(t, string(lines[0]), "Source expression")
	assert.Contains(t, string(lines[0]), "Destination field")
	assert.Regexp(t, `^0\s+-\s+key$`, string(lines[1]))
	assert.Regexp(t, `^1\s+name\s+name$`, string(lines[2]))
}

func TestSet(t *testing.T) {
	path := initMapping(t, "mapping.json")

	_, err := run(t, nil, "set", "-m", path, "0", "source", "id")
	require.NoError(t, err)
	_, err = run(t, nil, "set", "-m", path, "2", "0", "name", "--quote-field")
	require.NoError(t, err)
	_, err = run(t, nil, "set", "-m", path, "1", "dest", "full_name")
	require.NoError(t, err)

	assert.Equal(t, models.Mapping{
		{Destination: "key", Expression: "id"},
		{Destination: "full_name", Expression: "name"},
		{Destination: "note", Expression: `"name"`},
	}, loadMapping(t, path).Mapping)
}

func TestSet_OutOfRange(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	before := loadMapping(t, path)

	_, err := run(t, nil, "set", "-m", path, "3", "0", "x")
	assert.ErrorContains(t, err, "outside the mapping")
	_, err = run(t, nil, "set", "-m", path, "0", "2", "x")
	assert.Error(t, err)
	_, err = run(t, nil, "set", "-m", path, "zero", "0", "x")
	assert.ErrorContains(t, err, "invalid row")

	assert.Equal(t, before, loadMapping(t, path))
}

func TestInsertAndRemove(t *testing.T) {
	path := initMapping(t, "mapping.yaml")

	_, err := run(t, nil, "insert", "-m", path, "1", "--dest", "extra", "--expr", "id * 2")
	require.NoError(t, err)
	_, err = run(t, nil, "remove", "-m", path, "2", "2")
	require.NoError(t, err)

	assert.Equal(t, models.Mapping{
		{Destination: "key", Expression: ""},
		{Destination: "extra", Expression: "id * 2"},
	}, loadMapping(t, path).Mapping)

	_, err = run(t, nil, "insert", "-m", path, "3")
	assert.ErrorContains(t, err, "cannot insert")
	_, err = run(t, nil, "remove", "-m", path, "1", "2")
	assert.ErrorContains(t, err, "cannot remove")
}

func TestInsert_WithoutDestinationIsNotSaved(t *testing.T) {
	path := initMapping(t, "mapping.yaml")

	_, err := run(t, nil, "insert", "-m", path, "0", "2")
	require.NoError(t, err)
	assert.Len(t, loadMapping(t, path).Mapping, 3)
}

func TestValidate(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	_, err := run(t, nil, "set", "-m", path, "0", "0", "id + 1")
	require.NoError(t, err)
	_, err = run(t, nil, "set", "-m", path, "2", "0", "upper(name) || 'x'")
	require.NoError(t, err)

	out, err := run(t, nil, "validate", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "No issues found.\n", out)

	_, err = run(t, nil, "set", "-m", path, "0", "0", `"missing" + 1`)
	require.NoError(t, err)
	_, err = run(t, nil, "set", "-m", path, "2", "0", "upper(name")
	require.NoError(t, err)

	out, err = run(t, nil, "validate", "-m", path)
	assert.ErrorContains(t, err, "has errors")
	assert.Contains(t, out, "row 0: error: unknown field: missing")
	assert.Contains(t, out, "row 2: error: malformed expression")
}

func TestValidate_DestinationCheck(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	_, err := run(t, nil, "set", "-m", path, "0", "destination", "nowhere")
	require.NoError(t, err)

	out, err := run(t, nil, "validate", "-m", path)
	assert.Error(t, err)
	assert.Contains(t, out, `"nowhere" is not a destination field`)

	out, err = run(t, nil, "validate", "-m", path, "--dest-check=false")
	assert.NoError(t, err)
	assert.Contains(t, out, "source expression is unset")
}

func TestExport(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	_, err := run(t, nil, "set", "-m", path, "2", "destination", "key")
	require.NoError(t, err)
	_, err = run(t, nil, "set", "-m", path, "2", "source", "id")
	require.NoError(t, err)

	out, err := run(t, nil, "export", "-m", path)
	require.NoError(t, err)
	assert.Equal(t, "key: \"\"\nname: name\nkey: id\n", out)

	out, err = run(t, nil, "export", "-m", path, "--format", "json", "--on-duplicate", "last-wins")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key": "id", "name": "name"}`, out)

	_, err = run(t, nil, "export", "-m", path, "--on-duplicate", "reject")
	assert.ErrorIs(t, err, models.ErrDuplicateDestination)

	_, err = run(t, nil, "export", "-m", path, "--format", "xml")
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	exported := filepath.Join(t.TempDir(), "export.json")

	_, err := run(t, nil, "export", "-m", path, "--format", "json", "-o", exported)
	require.NoError(t, err)
	want := loadMapping(t, path).Mapping

	_, err = run(t, nil, "remove", "-m", path, "0", "3")
	require.NoError(t, err)
	assert.Empty(t, loadMapping(t, path).Mapping)

	_, err = run(t, nil, "import", "-m", path, "--from", exported)
	require.NoError(t, err)
	assert.Equal(t, want, loadMapping(t, path).Mapping)
}

func TestImport_YAML(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	from := writeFile(t, t.TempDir(), "in.yaml", "z: \"id\"\na: name || 'x'\n")

	_, err := run(t, nil, "import", "-m", path, "--from", from)
	require.NoError(t, err)
	assert.Equal(t, models.Mapping{
		{Destination: "z", Expression: "id"},
		{Destination: "a", Expression: "name || 'x'"},
	}, loadMapping(t, path).Mapping)
}

func TestRemoteCommandsNeedConnection(t *testing.T) {
	path := initMapping(t, "mapping.yaml")
	cfg := &config.Config{}

	_, err := run(t, cfg, "push", "-m", path, "--name", "x")
	assert.ErrorContains(t, err, "FIELDMAP_MONGO_CONNECTION_STRING")
	_, err = run(t, cfg, "pull", "-m", path, "--name", "x")
	assert.ErrorContains(t, err, "FIELDMAP_MONGO_CONNECTION_STRING")
	_, err = run(t, cfg, "list")
	assert.ErrorContains(t, err, "FIELDMAP_MONGO_CONNECTION_STRING")
	_, err = run(t, cfg, "delete", "--name", "x")
	assert.ErrorContains(t, err, "FIELDMAP_MONGO_CONNECTION_STRING")
	_, err = run(t, cfg, "delete")
	assert.ErrorContains(t, err, `"name" not set`)
}

func TestParseColumn(t *testing.T) {
	for in, want := range map[string]int{"source": 0, "src": 0, "0": 0, "destination": 1, "dst": 1, "1": 1, "7": 7} {
		got, err := parseColumn(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := parseColumn("left")
	assert.Error(t, err)
}

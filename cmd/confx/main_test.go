package main

import (
	"encoding/base64"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/termfx/confx/internal/envfile"
	"github.com/termfx/confx/internal/model"
)

const testTemplate = `# Wanderer configuration
SECRET_KEY_BASE=changeme
CLOAK_KEY=changeme
`

func runCommand(t *testing.T, args ...string) error {
	t.Helper()
	cmd := newRootCmd(&rootFlags{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func setupFixture(t *testing.T) (templatePath, configPath string) {
	t.Helper()
	dir := t.TempDir()
	templatePath = filepath.Join(dir, "wanderer-conf.env.sample")
	configPath = filepath.Join(dir, "wanderer-conf.env")
	require.NoError(t, os.WriteFile(templatePath, []byte(testTemplate), 0o644))
	return templatePath, configPath
}

func TestCreateConfigCommand(t *testing.T) {
	tmpl, conf := setupFixture(t)

	err := runCommand(t, "create-config", "--template", tmpl, "--config", conf)
	require.NoError(t, err)

	got, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, testTemplate, string(got))
}

func TestCreateConfigCommandMissingTemplate(t *testing.T) {
	dir := t.TempDir()

	err := runCommand(t, "create-config",
		"--template", filepath.Join(dir, "absent.sample"),
		"--config", filepath.Join(dir, "conf.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrTemplateNotFound)
}

func TestKeyCommands(t *testing.T) {
	tests := []struct {
		command string
		key     string
		nbytes  int
	}{
		{command: "base-key", key: "SECRET_KEY_BASE", nbytes: 48},
		{command: "cloak-key", key: "CLOAK_KEY", nbytes: 32},
	}

	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			tmpl, conf := setupFixture(t)
			require.NoError(t, runCommand(t, "create-config", "--template", tmpl, "--config", conf))

			err := runCommand(t, tt.command, "--config", conf, "--no-audit")
			require.NoError(t, err)

			data, err := os.ReadFile(conf)
			require.NoError(t, err)

			value, ok := envfile.Parse(data).Lookup(tt.key)
			require.True(t, ok)
			require.NotEqual(t, "changeme", value)

			raw, err := base64.StdEncoding.DecodeString(value)
			require.NoError(t, err)
			assert.Len(t, raw, tt.nbytes)
		})
	}
}

func TestRotateCommand(t *testing.T) {
	tmpl, conf := setupFixture(t)
	require.NoError(t, runCommand(t, "create-config", "--template", tmpl, "--config", conf))

	err := runCommand(t, "rotate", "--config", conf, "--no-audit", "--key", "SECRET_KEY_BASE", "--bytes", "16")
	require.NoError(t, err)

	data, err := os.ReadFile(conf)
	require.NoError(t, err)
	value, ok := envfile.Parse(data).Lookup("SECRET_KEY_BASE")
	require.True(t, ok)
	raw, err := base64.StdEncoding.DecodeString(value)
	require.NoError(t, err)
	assert.Len(t, raw, 16)
}

func TestUnderscoreAliases(t *testing.T) {
	tmpl, conf := setupFixture(t)

	require.NoError(t, runCommand(t, "create_config", "--template", tmpl, "--config", conf))
	require.NoError(t, runCommand(t, "base_key", "--config", conf, "--no-audit"))
	assert.NoError(t, runCommand(t, "cloak_key", "--config", conf, "--no-audit"))
}

func TestRotateCommandRequiresKey(t *testing.T) {
	assert.Error(t, runCommand(t, "rotate", "--no-audit"))
}

func TestRotateCommandMissingConfig(t *testing.T) {
	err := runCommand(t, "cloak-key", "--no-audit",
		"--config", filepath.Join(t.TempDir(), "absent.env"))
	require.Error(t, err)
	assert.ErrorIs(t, err, model.ErrConfigNotFound)
}

func TestDryRunLeavesFileUntouched(t *testing.T) {
	tmpl, conf := setupFixture(t)
	require.NoError(t, runCommand(t, "create-config", "--template", tmpl, "--config", conf))

	err := runCommand(t, "base-key", "--config", conf, "--no-audit", "--dry-run")
	require.NoError(t, err)

	got, err := os.ReadFile(conf)
	require.NoError(t, err)
	assert.Equal(t, testTemplate, string(got))
}

func TestHistoryCommand(t *testing.T) {
	tmpl, conf := setupFixture(t)
	auditDB := filepath.Join(t.TempDir(), "audit.db")
	require.NoError(t, runCommand(t, "create-config", "--template", tmpl, "--config", conf))

	require.NoError(t, runCommand(t, "cloak-key", "--config", conf, "--audit-db", auditDB))
	assert.NoError(t, runCommand(t, "history", "--audit-db", auditDB, "--json"))
}

func TestHistoryCommandAuditDisabled(t *testing.T) {
	assert.Error(t, runCommand(t, "history", "--no-audit"))
}

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rsbench/internal/domain"
)

func TestRootCmd_RequiresTargetAndTestFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"prod"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestRootCmd_MissingConfigFile(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--config", filepath.Join(t.TempDir(), "absent.yaml"),
		"prod", "smoke.yaml",
	})

	err := cmd.Execute()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	assert.ErrorAs(t, err, &cfgErr)
}

func TestRootCmd_UnknownTarget(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `prod:
  clusterOrWorkgroup: bench-wg
  environmentType: serverless
  databaseName: dev
  credentialsRef: arn:aws:secretsmanager:us-east-1:123456789012:secret:bench
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", cfgPath, "staging", "smoke.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "staging")
}

func TestRootCmd_MissingTestFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	cfg := `prod:
  clusterOrWorkgroup: bench-wg
  environmentType: serverless
  databaseName: dev
  credentialsRef: arn:aws:secretsmanager:us-east-1:123456789012:secret:bench
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{
		"--config", cfgPath,
		"--tests-dir", dir,
		"prod", "absent.yaml",
	})

	err := cmd.Execute()
	require.Error(t, err)
	var tfErr *domain.TestFileError
	assert.ErrorAs(t, err, &tfErr)
}

func TestVersionCmd(t *testing.T) {
	cmd := newVersionCmd()
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
}

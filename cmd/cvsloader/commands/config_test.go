package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadVisitConfigFile_Valid(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "cfg.yaml")
	content := `origin: my-module
source:
  kind: local
  path: /tmp/src
target:
  path: /tmp/target
options:
  fuzzWindowSeconds: 120
  placeholderDomain: example.invalid
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := LoadVisitConfigFile(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "local", cfg.Source.Kind)
	require.Equal(t, "/tmp/src", cfg.Source.Path)
	require.Equal(t, "/tmp/target", cfg.Target.Path)
	require.Equal(t, int64(120), cfg.Options.FuzzWindowSeconds)

	vc := cfg.ToVisitConfig()
	require.Equal(t, "/tmp/src", vc.SourcePath)
	require.Equal(t, "/tmp/target", vc.TargetPath)
	require.Equal(t, int64(120), vc.FuzzWindow)
}

func TestLoadVisitConfigFile_MissingTargetPath(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "bad.yaml")
	content := `source:
  path: /tmp/src
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	_, err := LoadVisitConfigFile(cfgPath)
	require.Error(t, err)
}

func TestLoadVisitConfigFile_MissingSourcePath(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "bad.yaml")
	content := `target:
  path: /tmp/target
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	_, err := LoadVisitConfigFile(cfgPath)
	require.Error(t, err)
}

func TestLoadVisitConfigFile_RemoteRequiresModule(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "cfg.yaml")
	content := `source:
  kind: pserver
  path: /cvsroot
target:
  path: /tmp/target
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	_, err := LoadVisitConfigFile(cfgPath)
	require.Error(t, err)
}

func TestLoadVisitConfigFile_DefaultsOriginToSourcePath(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "cfg.yaml")
	content := `source:
  path: /tmp/src
target:
  path: /tmp/target
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	cfg, err := LoadVisitConfigFile(cfgPath)
	require.NoError(t, err)
	require.Equal(t, "/tmp/src", cfg.Origin)
}

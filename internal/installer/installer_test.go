package installer

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"superclaude/internal/backup"
	"superclaude/internal/component"
	"superclaude/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeComponent implements component.Component with scriptable hooks so the
// orchestrator can be exercised without touching real integrations.
type fakeComponent struct {
	name string
	pkg  string

	validateOK       bool
	validateProblems []string
	validatePanic    bool
	validateCalls    int

	installErr   error
	installPanic bool
	installCalls int
	onInstall    func(cfg *config.InstallConfig) error

	postErr   error
	postCalls int
}

func newFake(name, pkg string) *fakeComponent {
	return &fakeComponent{name: name, pkg: pkg, validateOK: true}
}

func (c *fakeComponent) Name() string        { return c.name }
func (c *fakeComponent) Description() string { return "fake " + c.name }
func (c *fakeComponent) PackageRef() string  { return c.pkg }

func (c *fakeComponent) ValidatePrerequisites() (bool, []string) {
	c.validateCalls++
	if c.validatePanic {
		panic("validate blew up")
	}
	return c.validateOK, c.validateProblems
}

func (c *fakeComponent) Install(cfg *config.InstallConfig) error {
	c.installCalls++
	if c.installPanic {
		panic("install blew up")
	}
	if c.onInstall != nil {
		if err := c.onInstall(cfg); err != nil {
			return err
		}
	}
	return c.installErr
}

func (c *fakeComponent) PostInstall() error {
	c.postCalls++
	return c.postErr
}

type testHarness struct {
	installDir string
	backupDir  string
	installer  *Installer
	components []*fakeComponent
}

func newHarness(t *testing.T, components ...*fakeComponent) *testHarness {
	t.Helper()
	base := t.TempDir()
	installDir := filepath.Join(base, "install")
	backupDir := filepath.Join(base, "backups")
	require.NoError(t, os.MkdirAll(installDir, 0755))

	registry := component.NewRegistry()
	for _, c := range components {
		require.NoError(t, registry.Register(c))
	}

	inst, err := New(Options{
		InstallDir: installDir,
		BackupDir:  backupDir,
		Registry:   registry,
		Version:    "test",
	})
	require.NoError(t, err)

	return &testHarness{
		installDir: installDir,
		backupDir:  backupDir,
		installer:  inst,
		components: components,
	}
}

func (h *testHarness) run(t *testing.T, selected ...string) (*Result, error) {
	t.Helper()
	return h.installer.Run(&config.InstallConfig{SelectedMCPServers: selected})
}

func dirContents(t *testing.T, dir string) map[string]string {
	t.Helper()
	contents := make(map[string]string)
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			contents[rel+"/"] = ""
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		contents[rel] = string(data)
		return nil
	})
	require.NoError(t, err)
	return contents
}

func TestRunCommitsOnSuccess(t *testing.T) {
	magic := newFake("magic", "@21st-dev/magic")
	h := newHarness(t, magic)

	result, err := h.run(t, "magic")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, StateCommitted, result.State)
	assert.Equal(t, []string{"magic"}, result.Installed)
	assert.NotEmpty(t, result.RunID)
	assert.FileExists(t, result.BackupPath)
	assert.Equal(t, 1, magic.installCalls)
	assert.Equal(t, 1, magic.postCalls)

	meta, err := config.LoadMetadata(h.installDir)
	require.NoError(t, err)
	assert.Equal(t, "test", meta.Version)
	assert.Equal(t, []string{"magic"}, meta.Components)
}

func TestSelectivity(t *testing.T) {
	magic := newFake("magic", "@21st-dev/magic")
	sequential := newFake("sequential", "@modelcontextprotocol/server-sequential-thinking")
	context7 := newFake("context7", "@upstash/context7-mcp")
	h := newHarness(t, magic, sequential, context7)

	result, err := h.run(t, "magic")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"magic"}, result.Installed)
	assert.Equal(t, 1, magic.installCalls)
	assert.Equal(t, "@21st-dev/magic", magic.PackageRef())
	assert.Zero(t, sequential.installCalls)
	assert.Zero(t, context7.installCalls)
	assert.Zero(t, sequential.postCalls)
	assert.Zero(t, context7.postCalls)
}

func TestSelectionIsAFilterNotASequence(t *testing.T) {
	var order []string
	magic := newFake("magic", "@21st-dev/magic")
	magic.onInstall = func(cfg *config.InstallConfig) error {
		order = append(order, "magic")
		return nil
	}
	context7 := newFake("context7", "@upstash/context7-mcp")
	context7.onInstall = func(cfg *config.InstallConfig) error {
		order = append(order, "context7")
		return nil
	}
	h := newHarness(t, magic, context7)

	// Selection lists context7 first, but registration order wins.
	result, err := h.run(t, "context7", "magic")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, []string{"magic", "context7"}, order)
	assert.Equal(t, []string{"magic", "context7"}, result.Installed)
}

func TestValidationPrecedesMutation(t *testing.T) {
	magic := newFake("magic", "@21st-dev/magic")
	sequential := newFake("sequential", "@modelcontextprotocol/server-sequential-thinking")
	sequential.validateOK = false
	sequential.validateProblems = []string{"node executable not found in PATH"}
	h := newHarness(t, magic, sequential)

	result, err := h.run(t, "magic", "sequential")

	var prereqErr *PrerequisiteError
	require.ErrorAs(t, err, &prereqErr)
	require.Len(t, prereqErr.Problems, 1)
	assert.Equal(t, "sequential", prereqErr.Problems[0].Component)
	assert.Contains(t, prereqErr.Problems[0].Description, "node executable")

	assert.False(t, result.Success)
	assert.Equal(t, StateValidating, result.State)
	// Zero install calls across ALL components, not just the failing one.
	assert.Zero(t, magic.installCalls)
	assert.Zero(t, sequential.installCalls)
}

func TestValidationAggregatesAcrossComponents(t *testing.T) {
	magic := newFake("magic", "@21st-dev/magic")
	magic.validateOK = false
	magic.validateProblems = []string{"missing API key"}
	sequential := newFake("sequential", "@modelcontextprotocol/server-sequential-thinking")
	sequential.validatePanic = true
	context7 := newFake("context7", "@upstash/context7-mcp")
	h := newHarness(t, magic, sequential, context7)

	_, err := h.run(t, "magic", "sequential", "context7")

	var prereqErr *PrerequisiteError
	require.ErrorAs(t, err, &prereqErr)

	// Both failures reported; the panic in one component did not stop
	// validation of its siblings.
	byComponent := make(map[string]string)
	for _, p := range prereqErr.Problems {
		byComponent[p.Component] = p.Description
	}
	assert.Contains(t, byComponent, "magic")
	assert.Contains(t, byComponent, "sequential")
	assert.Contains(t, byComponent["sequential"], "fault")
	assert.Equal(t, 1, context7.validateCalls)
}

func TestUnknownSelectionIsReported(t *testing.T) {
	magic := newFake("magic", "@21st-dev/magic")
	h := newHarness(t, magic)

	_, err := h.run(t, "magic", "nonexistent")

	var prereqErr *PrerequisiteError
	require.ErrorAs(t, err, &prereqErr)
	require.Len(t, prereqErr.Problems, 1)
	assert.Equal(t, "nonexistent", prereqErr.Problems[0].Component)
	assert.Zero(t, magic.installCalls)
}

func TestRollbackOnInstallFailure(t *testing.T) {
	okComp := newFake("magic", "@21st-dev/magic")
	var h *testHarness
	okComp.onInstall = func(cfg *config.InstallConfig) error {
		return os.WriteFile(filepath.Join(h.installDir, "magic.txt"), []byte("installed"), 0644)
	}
	badComp := newFake("sequential", "@modelcontextprotocol/server-sequential-thinking")
	badComp.installErr = errors.New("npm registry unreachable")
	h = newHarness(t, okComp, badComp)

	// Pre-run state: one file A.
	require.NoError(t, os.WriteFile(filepath.Join(h.installDir, "A"), []byte("original"), 0644))
	before := dirContents(t, h.installDir)

	result, err := h.run(t, "magic", "sequential")

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "sequential", installErr.Component)
	assert.Equal(t, "sequential", result.FailedComponent)
	assert.Equal(t, StateRolledBack, result.State)
	assert.False(t, result.Success)

	// The directory is bit-for-bit its pre-run self: A survives, the
	// partial magic install is gone.
	assert.Equal(t, before, dirContents(t, h.installDir))
}

func TestRollbackOnInstallPanic(t *testing.T) {
	okComp := newFake("magic", "@21st-dev/magic")
	panicComp := newFake("sequential", "@modelcontextprotocol/server-sequential-thinking")
	panicComp.installPanic = true
	h := newHarness(t, okComp, panicComp)

	require.NoError(t, os.WriteFile(filepath.Join(h.installDir, "A"), []byte("original"), 0644))

	result, err := h.run(t, "magic", "sequential")

	var installErr *InstallError
	require.ErrorAs(t, err, &installErr)
	assert.Equal(t, "sequential", installErr.Component)
	assert.Contains(t, installErr.Err.Error(), "fault")
	assert.Equal(t, StateRolledBack, result.State)

	data, readErr := os.ReadFile(filepath.Join(h.installDir, "A"))
	require.NoError(t, readErr)
	assert.Equal(t, "original", string(data))
}

func TestRollbackOnPostInstallFailure(t *testing.T) {
	comp := newFake("magic", "@21st-dev/magic")
	var h *testHarness
	comp.onInstall = func(cfg *config.InstallConfig) error {
		return os.WriteFile(filepath.Join(h.installDir, "magic.txt"), []byte("installed"), 0644)
	}
	comp.postErr = errors.New("index write refused")
	h = newHarness(t, comp)

	before := dirContents(t, h.installDir)
	result, err := h.run(t, "magic")

	var postErr *PostInstallError
	require.ErrorAs(t, err, &postErr)
	assert.Equal(t, "magic", postErr.Component)
	assert.Equal(t, StateRolledBack, result.State)
	assert.Equal(t, before, dirContents(t, h.installDir))
}

func TestDoubleFaultEndsInManualRecovery(t *testing.T) {
	comp := newFake("magic", "@21st-dev/magic")
	var h *testHarness
	comp.onInstall = func(cfg *config.InstallConfig) error {
		// Destroy the snapshot before failing so the rollback has
		// nothing to restore from.
		entries, readErr := os.ReadDir(h.backupDir)
		require.NoError(t, readErr)
		for _, entry := range entries {
			require.NoError(t, os.Remove(filepath.Join(h.backupDir, entry.Name())))
		}
		return errors.New("provisioning failed")
	}
	h = newHarness(t, comp)

	result, err := h.run(t, "magic")

	var recoveryErr *ManualRecoveryError
	require.ErrorAs(t, err, &recoveryErr)
	assert.Equal(t, StateManualRecovery, result.State)
	assert.False(t, result.Success)
	assert.NotNil(t, recoveryErr.RestoreErr)
	assert.Equal(t, result.BackupPath, recoveryErr.BackupPath)

	// The two failure outcomes stay distinguishable.
	var installErr *InstallError
	assert.ErrorAs(t, recoveryErr.Cause, &installErr)
	assert.NotEqual(t, StateRolledBack, result.State)
}

func TestBackupFailureAbortsBeforeMutation(t *testing.T) {
	comp := newFake("magic", "@21st-dev/magic")

	base := t.TempDir()
	installDir := filepath.Join(base, "install")
	require.NoError(t, os.MkdirAll(installDir, 0755))
	// A file where the backup directory should be makes archive creation
	// impossible.
	backupDir := filepath.Join(base, "backups")
	require.NoError(t, os.WriteFile(backupDir, []byte("not a dir"), 0644))

	registry := component.NewRegistry()
	require.NoError(t, registry.Register(comp))
	inst, err := New(Options{InstallDir: installDir, BackupDir: backupDir, Registry: registry})
	require.NoError(t, err)

	result, err := inst.Run(&config.InstallConfig{SelectedMCPServers: []string{"magic"}})

	var backupErr *backup.Error
	require.ErrorAs(t, err, &backupErr)
	assert.Equal(t, StateBackingUp, result.State)
	assert.Zero(t, comp.validateCalls)
	assert.Zero(t, comp.installCalls)
}

func TestEmptyInstallDirectoryBackupIsValid(t *testing.T) {
	comp := newFake("magic", "@21st-dev/magic")
	h := newHarness(t, comp)

	result, err := h.run(t, "magic")
	require.NoError(t, err)

	// The snapshot of the initially empty directory must reopen as a
	// well-formed archive with at most the root member.
	members, err := backup.Verify(result.BackupPath)
	require.NoError(t, err)
	assert.LessOrEqual(t, members, 1)
}

func TestEmptySelectionCommitsWithoutInstalls(t *testing.T) {
	comp := newFake("magic", "@21st-dev/magic")
	h := newHarness(t, comp)

	result, err := h.run(t)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, StateCommitted, result.State)
	assert.Empty(t, result.Installed)
	assert.Zero(t, comp.installCalls)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "IDLE", StateIdle.String())
	assert.Equal(t, "BACKING_UP", StateBackingUp.String())
	assert.Equal(t, "VALIDATING", StateValidating.String())
	assert.Equal(t, "INSTALLING", StateInstalling.String())
	assert.Equal(t, "POST_INSTALL", StatePostInstall.String())
	assert.Equal(t, "COMMITTED", StateCommitted.String())
	assert.Equal(t, "ROLLED_BACK", StateRolledBack.String())
	assert.Equal(t, "MANUAL_RECOVERY", StateManualRecovery.String())
	assert.Equal(t, "UNKNOWN", State(99).String())
}

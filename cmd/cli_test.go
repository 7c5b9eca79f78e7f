package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tomlconfig "github.com/bnema/waapi-creator/internal/adapters/config/toml"
	"github.com/bnema/waapi-creator/internal/adapters/lock"
	"github.com/bnema/waapi-creator/internal/adapters/waapi"
	"github.com/bnema/waapi-creator/internal/adapters/waapi/waapitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionPrintsVersion(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "dev\n", stdout)
}

func TestTypesListsCatalogWithFlags(t *testing.T) {
	stdout, _, err := executeCLI(t, "types")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.Len(t, lines, 22)
	assert.Equal(t, "ActorMixer", lines[0])
	assert.Contains(t, stdout, "Sound\t@IsVoice (default false)")
	assert.Contains(t, stdout, "RandomSequenceContainer\t@RandomOrSequence (default true)")
}

func TestTypesMatchIsCaseInsensitive(t *testing.T) {
	stdout, _, err := executeCLI(t, "types", "--match", "ran")
	require.NoError(t, err)
	assert.Equal(t, "RandomSequenceContainer\t@RandomOrSequence (default true)\n", stdout)
}

func TestTypesMatchWithoutResult(t *testing.T) {
	_, _, err := executeCLI(t, "types", "--match", "zzz")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no type matches \"zzz\"")
}

func TestConfigInitWritesDefaultsOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	stdout, _, err := executeCLI(t, "--config", path, "config", "init")
	require.NoError(t, err)
	assert.Equal(t, "wrote "+path+"\n", stdout)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), tomlconfig.DefaultURL)

	_, _, err = executeCLI(t, "--config", path, "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file already exists")

	_, _, err = executeCLI(t, "--config", path, "config", "init", "--force")
	require.NoError(t, err)
}

func TestConfigShowReadsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[waapi]\nrealm = \"studio\"\ntimeout = \"3s\"\n\n[ui]\ndefault_type = \"Sound\"\n"), 0o600))

	stdout, _, err := executeCLI(t, "--config", path, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "studio")
	assert.Contains(t, stdout, "3s")
	assert.Contains(t, stdout, "Sound")
	assert.Contains(t, stdout, tomlconfig.DefaultURL)
}

func TestConfigShowAppliesEnvironmentOverrides(t *testing.T) {
	t.Setenv("WAAPI_CREATOR_WAAPI_URL", "ws://10.0.0.5:8080/waapi")

	stdout, _, err := executeCLI(t, "config", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "ws://10.0.0.5:8080/waapi")
}

func TestInvalidConfigIsRejected(t *testing.T) {
	t.Setenv("WAAPI_CREATOR_WAAPI_URL", "http://127.0.0.1:8080/waapi")

	_, _, err := executeCLI(t, "config", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a ws:// or wss:// url")
}

func TestCreateRequiresType(t *testing.T) {
	_, _, err := executeCLI(t, "create")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s) \"type\" not set")
}

func TestCreateRejectsUnknownType(t *testing.T) {
	_, _, err := executeCLI(t, "create", "--type", "Nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown object type \"Nope\"")
}

func TestCreateFailsWhenWwiseIsUnreachable(t *testing.T) {
	t.Setenv("WAAPI_CREATOR_WAAPI_URL", "ws://127.0.0.1:1/waapi")
	t.Setenv("WAAPI_CREATOR_WAAPI_TIMEOUT", "1s")

	_, stderr, err := executeCLIWithInput(t, "Kick\n", "create", "--type", "Sound")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to wwise")
	assert.Contains(t, stderr, "Connecting to Wwise...")
}

func TestCreateUsesSelectionAsParent(t *testing.T) {
	router := newWwiseRouter(t, []any{map[string]any{"id": "{drums}", "name": "Drums", "type": "ActorMixer"}})
	router.Handle(waapi.ProcCreateObject, func(kwargs map[string]any) waapitest.Reply {
		return waapitest.Reply{Result: map[string]any{"id": "{" + kwargs["name"].(string) + "}", "name": kwargs["name"]}}
	})

	stdout, stderr, err := executeCLIWithInput(t, "Kick\nSnare\n\nHat \n", "create", "--type", "Sound", "--voice")
	require.NoError(t, err)
	assert.Equal(t, "Create Kick successfully\nCreate Snare successfully\nCreate Hat successfully\n", stdout)

	calls := router.Calls(waapi.ProcCreateObject)
	require.Len(t, calls, 3)
	for i, name := range []string{"Kick", "Snare", "Hat"} {
		assert.Equal(t, map[string]any{
			"parent":   "{drums}",
			"type":     "Sound",
			"name":     name,
			"@IsVoice": true,
		}, calls[i].Kwargs)
	}
	assert.Eventually(t, func() bool { return router.Leaves() == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Contains(t, stderr, "3/3 created")
}

func TestCreateParentFlagOverridesSelection(t *testing.T) {
	router := newWwiseRouter(t, nil)
	router.Handle(waapi.ProcCreateObject, func(kwargs map[string]any) waapitest.Reply {
		return waapitest.Reply{Result: map[string]any{"id": "{new}", "name": kwargs["name"]}}
	})

	names := filepath.Join(t.TempDir(), "names.txt")
	require.NoError(t, os.WriteFile(names, []byte("Loop\r\n"), 0o600))

	_, _, err := executeCLI(t, "create", "--type", "RandomSequenceContainer", "--random=false", "--parent", "{music}", "--file", names)
	require.NoError(t, err)

	calls := router.Calls(waapi.ProcCreateObject)
	require.Len(t, calls, 1)
	assert.Equal(t, "{music}", calls[0].Kwargs["parent"])
	assert.Equal(t, "Loop", calls[0].Kwargs["name"])
	assert.Equal(t, false, calls[0].Kwargs["@RandomOrSequence"])
}

func TestCreateWithoutSelectionReportsDiagnostic(t *testing.T) {
	router := newWwiseRouter(t, nil)

	stdout, _, err := executeCLIWithInput(t, "Kick\n", "create", "--type", "Folder")
	require.Error(t, err)
	assert.Equal(t, "Please select an object\n", stdout)
	assert.Empty(t, router.Calls(waapi.ProcCreateObject))
}

func TestCreateStopsAtFirstRemoteFailure(t *testing.T) {
	router := newWwiseRouter(t, []any{map[string]any{"id": "{p}", "name": "SFX", "type": "Folder"}})
	router.Handle(waapi.ProcCreateObject, func(kwargs map[string]any) waapitest.Reply {
		if kwargs["name"] == "Snare" {
			return waapitest.Reply{ErrorURI: "ak.wwise.invalid_arguments", Message: "An object named Snare already exists"}
		}
		return waapitest.Reply{Result: map[string]any{"id": "{new}", "name": kwargs["name"]}}
	})

	stdout, stderr, err := executeCLIWithInput(t, "Kick\nSnare\nHat\n", "create", "--type", "Folder")
	require.Error(t, err)
	assert.Equal(t, "Create Kick successfully\nFailed to create Snare: An object named Snare already exists\n", stdout)
	assert.Len(t, router.Calls(waapi.ProcCreateObject), 2)
	assert.Contains(t, stderr, "1/3 created")
	assert.Contains(t, stderr, "stopped at Snare: An object named Snare already exists")
}

func TestSelectionPrintsSelectedObjects(t *testing.T) {
	newWwiseRouter(t, []any{map[string]any{"id": "{drums}", "name": "Drums", "type": "ActorMixer"}})

	stdout, _, err := executeCLI(t, "selection")
	require.NoError(t, err)
	assert.Equal(t, "Drums | ActorMixer\t{drums}\n", stdout)

	stdout, _, err = executeCLI(t, "selection", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"{drums}","name":"Drums","type":"ActorMixer"}]`, stdout)
}

func TestSelectionWithNothingSelected(t *testing.T) {
	newWwiseRouter(t, nil)

	stdout, _, err := executeCLI(t, "selection")
	require.NoError(t, err)
	assert.Equal(t, "nothing selected\n", stdout)
}

func TestInfoPrintsVersion(t *testing.T) {
	newWwiseRouter(t, nil)

	stdout, _, err := executeCLI(t, "info")
	require.NoError(t, err)
	assert.Equal(t, "Wwise v2023.1.4 Build 8496\n", stdout)
}

func TestFormExitsQuietlyWhenAlreadyRunning(t *testing.T) {
	lockPath := filepath.Join(t.TempDir(), "waapi-creator.lock")
	t.Setenv("WAAPI_CREATOR_LOCK_PATH", lockPath)

	guard, err := lock.Acquire(lockPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = guard.Release() })

	stdout, stderr, err := executeCLI(t)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Equal(t, "waapi-creator is already running\n", stderr)
}

// newWwiseRouter starts a fake WAAPI endpoint with the given selection and
// points the CLI at it.
func newWwiseRouter(t *testing.T, selection []any) *waapitest.Router {
	t.Helper()

	if selection == nil {
		selection = []any{}
	}

	router := waapitest.NewRouter(t)
	router.Handle(waapi.ProcGetInfo, func(map[string]any) waapitest.Reply {
		return waapitest.Reply{Result: map[string]any{
			"displayName": "Wwise",
			"version":     map[string]any{"displayName": "v2023.1.4 Build 8496"},
		}}
	})
	router.Handle(waapi.ProcGetSelectedObjects, func(map[string]any) waapitest.Reply {
		return waapitest.Reply{Result: map[string]any{"objects": selection}}
	})

	t.Setenv("WAAPI_CREATOR_WAAPI_URL", router.URL())
	t.Setenv("WAAPI_CREATOR_WAAPI_TIMEOUT", "2s")

	return router
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	return executeCLIWithInput(t, "", args...)
}

func executeCLIWithInput(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	if os.Getenv("WAAPI_CREATOR_LOCK_PATH") == "" {
		t.Setenv("WAAPI_CREATOR_LOCK_PATH", filepath.Join(home, "waapi-creator.lock"))
	}

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &lockedBuffer{}
	root.SetIn(strings.NewReader(input))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

// lockedBuffer guards stderr, which the client's read loop may log to.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TEST TYPE: Integration Test
// DEPENDENCIES: Real filesystem (t.TempDir), cobra command tree
// PURPOSE: Verify the punktf commands end to end on a small source tree

package punktf

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/punktf/pkg/errors"
	"github.com/arthur-debert/punktf/pkg/filesystem"
	"github.com/arthur-debert/punktf/pkg/hooks"
)

type recordedHook struct {
	command string
	hc      hooks.Context
}

type recordingHooks struct {
	calls []recordedHook
}

func (r *recordingHooks) Run(_ context.Context, command string, hc hooks.Context) error {
	r.calls = append(r.calls, recordedHook{command: command, hc: hc})
	return nil
}

type cliFixture struct {
	src    string
	home   string
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	hooks  *recordingHooks
	env    environment
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func newCLIFixture(t *testing.T) *cliFixture {
	t.Helper()
	base := t.TempDir()
	f := &cliFixture{
		src:    filepath.Join(base, "src"),
		home:   filepath.Join(base, "home"),
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		hooks:  &recordingHooks{},
	}
	require.NoError(t, os.MkdirAll(f.home, 0755))

	writeTestFile(t, filepath.Join(f.src, "profiles", "base.yaml"), `
variables:
  NAME: demo
dotfiles:
  - path: zshrc
  - path: gitconfig
    template: true
post_hooks:
  - echo done
`)
	writeTestFile(t, filepath.Join(f.src, "profiles", "linux.yaml"), fmt.Sprintf(`
target: %q
imports:
  - base
variables:
  NAME: linux-user
`, filepath.ToSlash(f.home)))
	writeTestFile(t, filepath.Join(f.src, "profiles", "notarget.yaml"), `
dotfiles:
  - path: zshrc
`)
	writeTestFile(t, filepath.Join(f.src, "dotfiles", "zshrc"), "export EDITOR=vim\n")
	writeTestFile(t, filepath.Join(f.src, "dotfiles", "gitconfig"), "[user]\n\tname = {{NAME}}\n")

	f.env = environment{
		stdin:         strings.NewReader(""),
		stdout:        f.stdout,
		stderr:        f.stderr,
		interactive:   func() bool { return false },
		fs:            filesystem.NewOS(),
		getenv:        func(string) string { return "" },
		getwd:         func() (string, error) { return f.src, nil },
		userConfigDir: t.TempDir(),
		hooks:         f.hooks,
	}
	return f
}

func (f *cliFixture) run(args ...string) error {
	cmd := newRootCmd(f.env)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func (f *cliFixture) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(f.home, rel))
	require.NoError(t, err)
	return string(data)
}

func TestDeployCmd(t *testing.T) {
	f := newCLIFixture(t)

	err := f.run("deploy", "linux", "--source", f.src, "--format", "text")
	require.NoError(t, err)

	assert.Equal(t, "export EDITOR=vim\n", f.read(t, "zshrc"))
	assert.Equal(t, "[user]\n\tname = linux-user\n", f.read(t, "gitconfig"))

	out := f.stdout.String()
	assert.Contains(t, out, "Deploying profile linux from "+f.src+" to "+f.home)
	assert.Contains(t, out, "2 deployed, 0 skipped, 0 failed, 0 superseded")

	require.Len(t, f.hooks.calls, 1)
	assert.Equal(t, "echo done", f.hooks.calls[0].command)
	assert.Equal(t, hooks.Context{Dir: f.src, Source: f.src, Target: f.home, Profile: "linux"}, f.hooks.calls[0].hc)
}

func TestDeployCmd_SourceFromWorkingDirectory(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("deploy", "linux", "--format", "text"))
	assert.Equal(t, "export EDITOR=vim\n", f.read(t, "zshrc"))
}

func TestDeployCmd_TargetFlagWins(t *testing.T) {
	f := newCLIFixture(t)
	other := t.TempDir()

	require.NoError(t, f.run("deploy", "linux", "--target", other, "--format", "text"))

	_, err := os.Stat(filepath.Join(other, "zshrc"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(f.home, "zshrc"))
	assert.True(t, os.IsNotExist(err))
}

func TestDeployCmd_EnvironmentTargetIsFallback(t *testing.T) {
	f := newCLIFixture(t)
	fallback := t.TempDir()
	t.Setenv("PUNKTF_TARGET", fallback)

	// linux has its own target, so the fallback is ignored
	require.NoError(t, f.run("deploy", "linux", "--format", "text"))
	assert.Equal(t, "export EDITOR=vim\n", f.read(t, "zshrc"))

	// notarget has none, so it deploys to the fallback
	require.NoError(t, f.run("deploy", "notarget", "--format", "text"))
	_, err := os.Stat(filepath.Join(fallback, "zshrc"))
	assert.NoError(t, err)
}

func TestDeployCmd_DryRun(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("deploy", "linux", "--dry-run", "--format", "text"))

	_, err := os.Stat(filepath.Join(f.home, "zshrc"))
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, f.stdout.String(), "(dry run)")
	assert.Contains(t, f.stdout.String(), "2 would deploy")
	assert.Empty(t, f.hooks.calls)
}

func TestDeployCmd_MergeKeepFlag(t *testing.T) {
	f := newCLIFixture(t)
	writeTestFile(t, filepath.Join(f.home, "zshrc"), "mine\n")

	require.NoError(t, f.run("deploy", "linux", "--merge", "keep", "--format", "text"))

	assert.Equal(t, "mine\n", f.read(t, "zshrc"))
	assert.Contains(t, f.stdout.String(), "1 deployed, 1 skipped")
}

func TestDeployCmd_AskWithoutTerminalKeeps(t *testing.T) {
	f := newCLIFixture(t)
	writeTestFile(t, filepath.Join(f.home, "zshrc"), "mine\n")

	require.NoError(t, f.run("deploy", "linux", "--merge", "ask", "--format", "text"))
	assert.Equal(t, "mine\n", f.read(t, "zshrc"))
}

func TestDeployCmd_AskOnTerminalPrompts(t *testing.T) {
	f := newCLIFixture(t)
	writeTestFile(t, filepath.Join(f.home, "zshrc"), "mine\n")
	f.env.interactive = func() bool { return true }
	f.env.stdin = strings.NewReader("r\n")

	require.NoError(t, f.run("deploy", "linux", "--merge", "ask", "--format", "text"))

	assert.Equal(t, "export EDITOR=vim\n", f.read(t, "zshrc"))
	assert.Contains(t, f.stderr.String(), "[r]eplace, [k]eep, [a]bort all?")
}

func TestDeployCmd_AbortAll(t *testing.T) {
	f := newCLIFixture(t)
	writeTestFile(t, filepath.Join(f.home, "zshrc"), "mine\n")
	f.env.interactive = func() bool { return true }
	f.env.stdin = strings.NewReader("a\n")

	err := f.run("deploy", "linux", "--merge", "ask", "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDeployAborted))
	assert.Equal(t, "mine\n", f.read(t, "zshrc"))
	assert.Contains(t, f.stdout.String(), "Deployment failed: deployment aborted by user")
}

func TestDeployCmd_FailedItemIsError(t *testing.T) {
	f := newCLIFixture(t)
	// A directory in the way cannot be replaced by a file
	require.NoError(t, os.MkdirAll(filepath.Join(f.home, "zshrc"), 0755))

	err := f.run("deploy", "linux", "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDeployFailed))
	assert.Contains(t, err.Error(), "some dotfiles failed to deploy")
	// The other dotfile still deployed
	assert.Equal(t, "[user]\n\tname = linux-user\n", f.read(t, "gitconfig"))
}

func TestDeployCmd_NoTarget(t *testing.T) {
	f := newCLIFixture(t)

	err := f.run("deploy", "notarget", "--format", "text")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDeployFailed))
	assert.Contains(t, f.stdout.String(), "Deployment failed: no target path")
}

func TestDeployCmd_ProfileErrors(t *testing.T) {
	t.Run("no profile", func(t *testing.T) {
		f := newCLIFixture(t)
		err := f.run("deploy")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})

	t.Run("profile from environment", func(t *testing.T) {
		f := newCLIFixture(t)
		t.Setenv("PUNKTF_PROFILE", "linux")
		require.NoError(t, f.run("deploy", "--format", "text"))
		assert.Equal(t, "export EDITOR=vim\n", f.read(t, "zshrc"))
	})

	t.Run("unknown profile", func(t *testing.T) {
		f := newCLIFixture(t)
		err := f.run("deploy", "nope")
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrProfileNotFound))
	})

	t.Run("missing source", func(t *testing.T) {
		f := newCLIFixture(t)
		err := f.run("deploy", "linux", "--source", filepath.Join(f.src, "missing"))
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrSourceNotFound))
	})
}

func TestDeployCmd_JSONOutput(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("deploy", "linux", "--format", "json"))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(f.stdout.Bytes(), &got))
	assert.Equal(t, "linux", got["profile"])
	assert.Equal(t, false, got["dry_run"])
	require.Contains(t, got, "deployment")
}

func TestDeployCmd_RecordFile(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		f := newCLIFixture(t)
		path := filepath.Join(t.TempDir(), "record.json")

		require.NoError(t, f.run("deploy", "linux", "--format", "text", "--output", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]interface{}
		require.NoError(t, json.Unmarshal(data, &got))
		assert.Equal(t, "linux", got["profile"])
	})

	t.Run("yaml", func(t *testing.T) {
		f := newCLIFixture(t)
		path := filepath.Join(t.TempDir(), "record.yaml")

		require.NoError(t, f.run("deploy", "linux", "--format", "text", "--output", path))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		var got map[string]interface{}
		require.NoError(t, yaml.Unmarshal(data, &got))
		assert.Equal(t, "linux", got["profile"])
	})

	t.Run("unknown extension", func(t *testing.T) {
		f := newCLIFixture(t)
		path := filepath.Join(t.TempDir(), "record.txt")

		err := f.run("deploy", "linux", "--format", "text", "--output", path)
		require.Error(t, err)
		assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
	})
}

func TestDeployCmd_SourceConfigFile(t *testing.T) {
	f := newCLIFixture(t)
	writeTestFile(t, filepath.Join(f.src, "punktf.toml"), "profile = \"linux\"\n[deploy]\ndry_run = true\n")

	require.NoError(t, f.run("deploy", "--source", f.src, "--format", "text"))

	_, err := os.Stat(filepath.Join(f.home, "zshrc"))
	assert.True(t, os.IsNotExist(err), "dry_run from punktf.toml applies")
}

func TestProfileShowCmd(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("profile", "show", "linux", "--format", "text"))

	out := f.stdout.String()
	assert.Contains(t, out, "Profile: linux\n")
	assert.Contains(t, out, "Layers: "+LayerTargetCLI+", linux, base, "+LayerTargetEnv+"\n")
	assert.Contains(t, out, "Target: "+f.home+" (from linux)\n")
	assert.Contains(t, out, "  NAME = linux-user\n")
	assert.Contains(t, out, "Post-hooks:\n  echo done\n")
	assert.Empty(t, f.hooks.calls)
}

func TestProfileShowCmd_TargetFlag(t *testing.T) {
	f := newCLIFixture(t)
	other := t.TempDir()

	require.NoError(t, f.run("profile", "show", "linux", "--target", other, "--format", "text"))
	assert.Contains(t, f.stdout.String(), "Target: "+other+" (from "+LayerTargetCLI+")\n")
}

func TestProfileListCmd(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("profile", "list", "--format", "text"))
	assert.Equal(t, "base\nlinux\nnotarget\n", f.stdout.String())
}

func TestVersionCmd(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("version"))
	assert.Contains(t, f.stdout.String(), "punktf version dev")
}

func TestCompletionCmd(t *testing.T) {
	f := newCLIFixture(t)

	require.NoError(t, f.run("completion", "bash"))
	assert.Contains(t, f.stdout.String(), "punktf")

	assert.Error(t, f.run("completion", "tcsh"))
}

func TestTopicsCmd(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		f := newCLIFixture(t)
		require.NoError(t, f.run("topics"))
		out := f.stdout.String()
		assert.Contains(t, out, "merge")
		assert.Contains(t, out, "profiles")
		assert.Contains(t, out, "templates")
	})

	t.Run("topic", func(t *testing.T) {
		f := newCLIFixture(t)
		require.NoError(t, f.run("topics", "merge"))
		assert.Contains(t, f.stdout.String(), "overwrite")
	})

	t.Run("unknown", func(t *testing.T) {
		f := newCLIFixture(t)
		assert.Error(t, f.run("topics", "nope"))
	})
}

func TestRootCmd_Structure(t *testing.T) {
	cmd := NewRootCmd()

	names := map[string]bool{}
	for _, c := range cmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"deploy", "profile", "topics", "version", "completion"} {
		assert.True(t, names[want], "missing command %s", want)
	}

	deploy, _, err := cmd.Find([]string{"deploy"})
	require.NoError(t, err)
	for _, flag := range []string{"target", "dry-run", "merge", "output"} {
		assert.NotNil(t, deploy.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRootCmd_InvalidFormat(t *testing.T) {
	f := newCLIFixture(t)

	err := f.run("profile", "list", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --format")
}

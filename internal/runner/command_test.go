package runner_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/churn-pipeline/internal/runner"
)

func sh(script string) []string {
	return []string{"sh", "-c", script}
}

func TestCommandRunnerMergesOutput(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cr := runner.NewCommandRunner(t.TempDir(), &out)

	err := cr.Run(context.Background(), sh("echo one; echo two 1>&2; echo; echo 'three  '"))
	require.NoError(t, err)
	assert.Equal(t, "one\ntwo\n\nthree\n", out.String())
}

func TestCommandRunnerExitCode(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cr := runner.NewCommandRunner(t.TempDir(), &out)

	err := cr.Run(context.Background(), sh("echo before; exit 2"))

	var exitErr *runner.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Error(), "exit code 2")
	assert.Equal(t, "before\n", out.String())
}

func TestCommandRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	cr := runner.NewCommandRunner(t.TempDir(), &bytes.Buffer{})

	err := cr.Run(context.Background(), []string{"churnpipe-no-such-tool-xyz", "--version"})
	require.ErrorIs(t, err, runner.ErrToolNotFound)

	err = cr.Run(context.Background(), []string{"./no/such/binary"})
	require.ErrorIs(t, err, runner.ErrToolNotFound)
}

func TestCommandRunnerEmptyCommand(t *testing.T) {
	t.Parallel()

	cr := runner.NewCommandRunner(t.TempDir(), &bytes.Buffer{})
	assert.Error(t, cr.Run(context.Background(), nil))
}

func TestCommandRunnerWorkingDirectory(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here\r\n"), 0o600))

	var out bytes.Buffer
	cr := runner.NewCommandRunner(dir, &out)

	require.NoError(t, cr.Run(context.Background(), sh("cat marker.txt")))
	assert.Equal(t, "here\n", out.String())
}

func TestCommandRunnerInvalidUTF8(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	cr := runner.NewCommandRunner(t.TempDir(), &out)

	require.NoError(t, cr.Run(context.Background(), sh(`printf '\377ok\n'`)))
	assert.Equal(t, "�ok\n", out.String())
}

// cancelOnLine cancels a context as soon as a given line is written.
type cancelOnLine struct {
	mu     sync.Mutex
	buf    strings.Builder
	line   string
	cancel context.CancelFunc
}

func (c *cancelOnLine) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.Write(p)
	if strings.Contains(c.buf.String(), c.line+"\n") {
		c.cancel()
	}

	return len(p), nil
}

func TestCommandRunnerStreamsBeforeExit(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &cancelOnLine{line: "ready", cancel: cancel}
	cr := runner.NewCommandRunner(t.TempDir(), out)

	// the line must reach the writer while the child is still sleeping
	err := cr.Run(ctx, sh("echo ready; exec sleep 30"))
	require.ErrorIs(t, err, context.Canceled)
}

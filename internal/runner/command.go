package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"strings"

	"github.com/pkg/errors"
)

// ErrToolNotFound is returned when a command cannot be found on the system.
var ErrToolNotFound = errors.New("command not found")

// ExitError is returned when a command exits with a non-zero code.
type ExitError struct {
	Argv []string
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q failed with exit code %d", strings.Join(e.Argv, " "), e.Code)
}

// Executor runs a command to completion.
type Executor interface {
	Run(ctx context.Context, argv []string) error
}

// CommandRunner runs commands as child processes and echoes their output line by line.
type CommandRunner struct {
	// Dir is the working directory of the children.
	Dir string
	Out io.Writer
}

func NewCommandRunner(dir string, out io.Writer) *CommandRunner {
	return &CommandRunner{Dir: dir, Out: out}
}

// Run starts argv and blocks until it exits. Standard output and standard error share a single pipe, so the
// lines are echoed in the order the child wrote them.
func (c *CommandRunner) Run(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return errors.New("empty command")
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = c.Dir

	pr, pw, err := os.Pipe()
	if err != nil {
		return errors.Wrap(err, "unable to create output pipe")
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	err = cmd.Start()
	// the child holds its own copy of the write end
	_ = pw.Close()
	if err != nil {
		_ = pr.Close()
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return errors.Wrapf(ErrToolNotFound, "%s: %v", argv[0], err)
		}

		return errors.Wrapf(err, "unable to start %s", argv[0])
	}

	streamErr := streamLines(pr, c.Out)
	_ = pr.Close()

	err = cmd.Wait()
	if ctx.Err() != nil {
		return errors.Wrapf(ctx.Err(), "%s interrupted", argv[0])
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return &ExitError{Argv: argv, Code: exitErr.ExitCode()}
	}
	if err != nil {
		return errors.Wrapf(err, "unable to wait for %s", argv[0])
	}

	return streamErr
}

// streamLines copies r to w one line at a time, as soon as each line is complete.
func streamLines(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			line = strings.ToValidUTF8(strings.TrimRight(line, " \t\r\n"), "\uFFFD")
			if _, werr := fmt.Fprintln(w, line); werr != nil {
				// keep draining so the child never blocks on a full pipe
				_, _ = io.Copy(io.Discard, reader)

				return errors.Wrap(werr, "unable to echo command output")
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "unable to read command output")
		}
	}
}

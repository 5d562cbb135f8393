package fastexport

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/gitsplit-io/gitsplit/modules/command"
)

// Options configures one `git fast-export` invocation.
type Options struct {
	// RepoPath is the working directory to run git in.
	RepoPath string
	// Branch is the committish to export. Defaults to "master" to match
	// the exporter this package is grounded on.
	Branch string
	// WithBlobs controls whether blob payloads are exported at all; when
	// false, `--no-data` is appended and Splitter/Parser never see a
	// commit's blob content, only its tree shape.
	WithBlobs bool
}

func (o Options) branch() string {
	if o.Branch == "" {
		return "master"
	}
	return o.Branch
}

// Exporter owns a running `git fast-export` child process and its stdout.
type Exporter struct {
	cmd    *command.Command
	stdout io.ReadCloser
}

// Start spawns `git fast-export` with the fixed flag set this engine
// requires (stable original-oids, stripped tag signatures, dropped
// filtered-tag objects, synthesized taggers for faked-missing ones,
// excluded-parent references preserved, UTF-8 re-encoding, and the `done`
// feature so the stream ends deterministically).
func Start(ctx context.Context, opts Options) (*Exporter, error) {
	args := []string{
		"fast-export",
		"--show-original-ids",
		"--signed-tags=strip",
		"--tag-of-filtered-object=drop",
		"--fake-missing-tagger",
		"--reference-excluded-parents",
		"--reencode=yes",
		"--use-done-feature",
		"--progress", "1",
	}
	if !opts.WithBlobs {
		args = append(args, "--no-data")
	}
	args = append(args, opts.branch())

	cmd := command.NewFromOptions(ctx, &command.RunOpts{RepoPath: opts.RepoPath}, "git", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("fastexport: stdout pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("fastexport: start git fast-export: %w", err)
	}
	return &Exporter{cmd: cmd, stdout: stdout}, nil
}

// Reader returns a buffered reader over the child's stdout, ready to hand
// to NewSplitter.
func (e *Exporter) Reader() *bufio.Reader {
	return bufio.NewReaderSize(e.stdout, 64*1024)
}

// Wait blocks until the exporter process exits, returning its error if it
// exited non-zero. The child's stderr goes straight to this process's
// stderr and is not captured into the error.
func (e *Exporter) Wait() error {
	return e.cmd.Wait()
}

// Kill terminates the exporter process, used when a downstream consumer
// fails and wants to stop the stream early rather than let fast-export run
// to completion into a pipe nobody is reading.
func (e *Exporter) Kill() error {
	return e.cmd.Exit()
}

package historyfilter

import (
	"context"
	"fmt"
	"io"

	"github.com/gitsplit-io/gitsplit/modules/command"
)

// Importer owns a running `git fast-import` child process and its stdin.
// Writing a well-formed fast-import stream to it and then closing it
// rewrites the repository's history in place.
type Importer struct {
	cmd   *command.Command
	stdin io.WriteCloser
}

// StartImporter spawns `git fast-import` in force mode (ref updates are
// always non-fast-forward from fast-import's point of view, since every
// rewritten commit gets a new oid) with raw-permissive date parsing, so
// timestamps fast-export already normalized pass straight through.
func StartImporter(ctx context.Context, repoPath string) (*Importer, error) {
	cmd := command.NewFromOptions(ctx, &command.RunOpts{RepoPath: repoPath}, "git",
		"-c", "core.ignorecase=false",
		"fast-import",
		"--date-format=raw-permissive",
		"--force",
		"--quiet",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("historyfilter: stdin pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("historyfilter: start git fast-import: %w", err)
	}
	return &Importer{cmd: cmd, stdin: stdin}, nil
}

// Write implements io.Writer so an Importer can be passed directly to
// fastexport.WriteObject.
func (im *Importer) Write(p []byte) (int, error) {
	return im.stdin.Write(p)
}

// Close finishes the stream (`done\n`, matching --use-done-feature on the
// export side) and closes stdin, letting fast-import begin applying it.
func (im *Importer) Close() error {
	if _, err := im.stdin.Write([]byte("done\n")); err != nil {
		im.stdin.Close()
		return err
	}
	return im.stdin.Close()
}

// Wait blocks until fast-import exits, returning its error if it exited
// non-zero. The child's stderr goes straight to this process's stderr and
// is not captured into the error.
func (im *Importer) Wait() error {
	return im.cmd.Wait()
}

package topbase

import (
	"bufio"
	"context"
	"fmt"

	"github.com/gitsplit-io/gitsplit/modules/command"
	"github.com/gitsplit-io/gitsplit/modules/trace"
)

// loadLog runs `git log -m --raw --pretty=oneline` against committish and
// parses its output into a CommitLog, invoking cb per commit the way
// parseLog does so callers can stop the walk early without reading the
// whole history. -m expands a merge commit into one diff per parent, which
// is what makes git emit the "(from <hash>)" header token parseHeaderLine
// keys its merge detection on; without it every merge commit is emitted
// with no blob lines at all, and a commit with no blob lines vacuously
// "contains all blobs" of the opposite branch.
func loadLog(ctx context.Context, repoPath, committish string, limit int, cb func(Commit) ShouldAdd) (CommitLog, error) {
	args := []string{"--no-pager", "log", "-m", "--no-color", "--raw", "--pretty=oneline"}
	if limit > 0 {
		args = append(args, fmt.Sprintf("-n%d", limit))
	}
	args = append(args, committish)

	cmd := command.NewFromOptions(ctx, &command.RunOpts{RepoPath: repoPath}, "git", args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return CommitLog{}, trace.Errorf("topbase: open stdout pipe for %s: %v", committish, err)
	}
	if err := cmd.Start(); err != nil {
		return CommitLog{}, trace.Errorf("topbase: spawn git log %s: %v", committish, err)
	}

	stopped := false
	commits, allBlobs, parseErr := parseLog(bufio.NewReader(stdout), func(c Commit) ShouldAdd {
		decision := cb(c)
		if decision == Exit || decision == AddAndExit {
			stopped = true
		}
		return decision
	})
	var waitErr error
	if stopped {
		// The rest of the log is never read: stop git log rather than wait
		// for it to finish writing into a pipe nobody drains.
		_ = cmd.Exit()
	} else {
		waitErr = cmd.Wait()
	}

	log := CommitLog{Commits: commits, Blobs: allBlobs}
	if parseErr != nil {
		return log, trace.Errorf("topbase: parse git log %s: %v", committish, parseErr)
	}
	if waitErr != nil {
		return log, trace.Errorf("topbase: git log %s: %v", committish, waitErr)
	}
	return log, nil
}

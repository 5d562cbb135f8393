package topbase

import "context"

// groupAccumulator folds a stream of (commit, included?) decisions into
// maximal runs of consecutive included commits, closing a group the moment
// a non-included commit interrupts the run.
type groupAccumulator struct {
	groups  []ConsecutiveCommitGroup
	current *ConsecutiveCommitGroup
}

func (g *groupAccumulator) advance(include bool, commit Commit) {
	if !include {
		if g.current != nil {
			g.groups = append(g.groups, *g.current)
			g.current = nil
		}
		return
	}
	if g.current == nil {
		g.current = &ConsecutiveCommitGroup{}
	}
	g.current.Commits = append(g.current.Commits, commit)
}

func (g *groupAccumulator) finish() []ConsecutiveCommitGroup {
	if g.current != nil {
		g.groups = append(g.groups, *g.current)
		g.current = nil
	}
	return g.groups
}

// aTraversal holds the per-commit decision state for streaming committish A
// against an already-fully-loaded B. It is kept separate from the process
// I/O in loadLog so the traversal logic can be driven directly from a
// canned commit slice in tests, without spawning git.
type aTraversal struct {
	bLog       CommitLog
	mode       TraversalMode
	acc        *groupAccumulator
	stopAt     []BlobDiff
	haveStopAt bool
}

func newATraversal(bLog CommitLog, mode TraversalMode) *aTraversal {
	return &aTraversal{bLog: bLog, mode: mode, acc: &groupAccumulator{}}
}

// step is the per-commit decision function, in the shape loadLog's callback
// expects: given the next commit read from A's log, decide whether to keep
// it and whether to stop reading.
func (t *aTraversal) step(commit Commit) ShouldAdd {
	// merge commits are never considered A-only; skip them entirely,
	// leaving the currently open group (if any) untouched.
	if commit.IsMerge {
		return DontAdd
	}

	shouldAddToA := !t.bLog.ContainsAllBlobs(commit)
	t.acc.advance(shouldAddToA, commit)

	switch t.mode {
	case Fullbase:
		return Add
	case TopbaseRewind:
		if !shouldAddToA {
			t.stopAt = commit.Blobs
			t.haveStopAt = true
			return AddAndExit
		}
		return Add
	default: // Topbase
		if !shouldAddToA {
			return Exit
		}
		return DontAdd
	}
}

// FindDifference compares committishes a (the "top") and b (the "bottom")
// under the given traversal mode, returning the consecutive commit groups
// present only in a and only in b respectively.
//
// b is always fully materialized first (its entire commit list and blob id
// set are loaded into memory). a is streamed from its tip; how far it is
// streamed, and whether b is searched afterward, depends on mode. In
// Topbase, b is not searched afterward and the b-only result is always empty. In
// TopbaseRewind and Fullbase, b is searched too.
func FindDifference(ctx context.Context, repoPath, a, b string, mode TraversalMode) (aOnly, bOnly []ConsecutiveCommitGroup, err error) {
	bLog, err := loadLog(ctx, repoPath, b, 0, func(Commit) ShouldAdd { return Add })
	if err != nil {
		return nil, nil, err
	}

	traversal := newATraversal(bLog, mode)
	aLog, err := loadLog(ctx, repoPath, a, 0, traversal.step)
	if err != nil {
		return nil, nil, err
	}

	bAcc := &groupAccumulator{}
	if mode == Fullbase || mode == TopbaseRewind {
		for _, commit := range bLog.Commits {
			if traversal.haveStopAt && AllBlobsExist(traversal.stopAt, commit.Blobs) {
				break
			}
			shouldAddToB := !aLog.ContainsAllBlobs(commit)
			bAcc.advance(shouldAddToB, commit)
		}
	}

	return traversal.acc.finish(), bAcc.finish(), nil
}

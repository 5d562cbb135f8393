package topbase

import (
	"context"
	"fmt"
)

// Verify reports whether every commit reachable from a is also present, by
// content fingerprint, in b — i.e. whether a split or filter of b into a
// lost no content. It runs the differencer in Fullbase mode and checks that
// the a-only result is empty; a non-nil, non-empty return value lists the
// commits that would be lost.
//
// This generalizes, to a whole-branch check, the same blob-membership test
// the A/B differencer already performs commit by commit, letting a caller
// confirm "this split is lossless" or "this sync is safe to fast-forward"
// without re-deriving the traversal by hand.
func Verify(ctx context.Context, repoPath, a, b string) (lossless bool, missing []Commit, err error) {
	aOnly, _, err := FindDifference(ctx, repoPath, a, b, Fullbase)
	if err != nil {
		return false, nil, fmt.Errorf("topbase: verify %s against %s: %w", a, b, err)
	}

	for _, group := range aOnly {
		missing = append(missing, group.Commits...)
	}
	return len(missing) == 0, missing, nil
}

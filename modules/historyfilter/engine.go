package historyfilter

import (
	"fmt"

	"github.com/gitsplit-io/gitsplit/modules/fastexport"
)

// ApplyRules rewrites commit's file-ops in place according to rules,
// dropping anything that should_use_file excludes. Copy, DeleteAll, and
// note-modify ops are always dropped: there is no per-path rule that makes
// sense for "replace the whole tree" or "attach a note", and copy's
// implicit cross-path content reference can't survive a renamed or
// partial tree. A Rename survives only when both its source and
// destination pass the filter — if the destination is excluded there is
// nothing to keep, and if only the source is excluded there is no longer
// a source tree for the rename to read from.
func ApplyRules(defaultInclude bool, commit *fastexport.Commit, rules []Rule) {
	kept := commit.FileOps[:0]
	for _, op := range commit.FileOps {
		switch op.Kind {
		case fastexport.FileCopy, fastexport.FileDeleteAll, fastexport.NoteModify:
			continue

		case fastexport.FileRename:
			src, dst := op.Src, op.Dst
			srcOK := ShouldUseFile(&src, rules, defaultInclude)
			dstOK := ShouldUseFile(&dst, rules, defaultInclude)
			if srcOK && dstOK {
				op.Src, op.Dst, op.Path = src, dst, dst
				kept = append(kept, op)
			}

		case fastexport.FileModify, fastexport.FileDelete:
			path := op.Path
			if ShouldUseFile(&path, rules, defaultInclude) {
				op.Path = path
				kept = append(kept, op)
			}
		}
	}
	commit.FileOps = kept
}

// Error is a filter engine invariant violation: a mark referenced before
// it was ever defined. This should never happen for a stream that
// actually came from `git fast-export`; seeing it means upstream parsing
// produced marks out of dependency order.
type Error struct {
	Mark fastexport.Mark
}

func (e Error) Error() string {
	return fmt.Sprintf("historyfilter: mark %s was never recorded before being referenced", e.Mark)
}

func resolveMark(s *State, mark fastexport.Mark) (fastexport.Mark, error) {
	mapped, ok := s.GetMappedMark(mark)
	if !ok {
		return 0, Error{Mark: mark}
	}
	return mapped, nil
}

// parentsOf returns commit's full parent list: its `from` mark (if any)
// followed by its `merge` marks. fast-export's grammar keeps these as two
// separate lines, but the filter engine reasons about "how many parents
// does this commit have" as a single count, the same way the engine this
// package is grounded on does.
func parentsOf(commit *fastexport.Commit) []fastexport.Mark {
	if !commit.HasFrom {
		return commit.Merges
	}
	out := make([]fastexport.Mark, 0, len(commit.Merges)+1)
	out = append(out, commit.From)
	out = append(out, commit.Merges...)
	return out
}

// setParents writes parents back onto commit as a `from` (the first
// entry) plus zero or more `merge`s (the rest), or clears both when
// parents is empty.
func setParents(commit *fastexport.Commit, parents []fastexport.Mark) {
	if len(parents) == 0 {
		commit.HasFrom = false
		commit.From = 0
		commit.Merges = nil
		return
	}
	commit.HasFrom = true
	commit.From = parents[0]
	commit.Merges = append([]fastexport.Mark(nil), parents[1:]...)
}

// filterAncestorMap drops any mark from merges that is an ancestor of one
// already kept, scanning in the direction requested. Each check is an
// O(log n) lookup in the ancestor table, which already holds every
// transitive ancestor, so no graph walk is needed. The right-to-left scan
// returns the kept marks in reverse order.
func filterAncestorMap(s *State, merges []fastexport.Mark, leftToRight bool) []fastexport.Mark {
	if len(merges) < 2 {
		return merges
	}

	var kept []fastexport.Mark
	if leftToRight {
		kept = []fastexport.Mark{merges[0]}
		for _, m := range merges[1:] {
			if !s.IsAncestorOfAny(m, kept) {
				kept = append(kept, m)
			}
		}
	} else {
		kept = []fastexport.Mark{merges[len(merges)-1]}
		for i := len(merges) - 2; i >= 0; i-- {
			m := merges[i]
			if !s.IsAncestorOfAny(m, kept) {
				kept = append(kept, m)
			}
		}
	}
	return kept
}

// resolveMerges maps each parent through the mark map, drops any that now
// resolve to MapsToEmpty, deduplicates consecutive repeats, and reduces
// the remainder by ancestry in both directions.
func resolveMerges(s *State, parents []fastexport.Mark) ([]fastexport.Mark, error) {
	var out []fastexport.Mark
	for _, m := range parents {
		mapped, err := resolveMark(s, m)
		if err != nil {
			return nil, err
		}
		if mapped != MapsToEmpty {
			out = append(out, mapped)
		}
	}
	out = dedupConsecutive(out)
	out = filterAncestorMap(s, out, true)
	out = filterAncestorMap(s, out, false)
	return out, nil
}

func dedupConsecutive(marks []fastexport.Mark) []fastexport.Mark {
	if len(marks) == 0 {
		return marks
	}
	out := marks[:1]
	for _, m := range marks[1:] {
		if m != out[len(out)-1] {
			out = append(out, m)
		}
	}
	return out
}

// performInitial classifies a commit with no parents: a no-op if its
// file-ops survived filtering, or an elision (mapped to MapsToEmpty) if
// they were all filtered away.
func performInitial(s *State, commit *fastexport.Commit) (bool, error) {
	setParents(commit, nil)
	if len(commit.FileOps) == 0 {
		s.SetMarkMap(commit.Mark, MapsToEmpty)
		return false, nil
	}
	s.SetMarkMap(commit.Mark, commit.Mark)
	s.UsingCommitWithContents(commit.Mark, nil, commit.FileOps)
	s.UpdateGraph(commit.Mark, nil)
	return true, nil
}

// performRegular classifies a commit with exactly one parent, resolving
// that parent through the mark map first. A commit is elided (and its
// mark remapped to its resolved parent) when its file-ops were filtered
// down to nothing, or when its resulting tree is identical to its
// parent's.
func performRegular(s *State, commit *fastexport.Commit, parent fastexport.Mark) (bool, error) {
	resolvedParent, err := resolveMark(s, parent)
	if err != nil {
		return false, err
	}

	if len(commit.FileOps) == 0 {
		s.SetMarkMap(commit.Mark, resolvedParent)
		return false, nil
	}

	if resolvedParent == MapsToEmpty {
		return performInitial(s, commit)
	}

	same, found := s.ContentsAreSameAs(resolvedParent, commit.FileOps)
	if !found {
		return false, Error{Mark: resolvedParent}
	}
	if same {
		s.SetMarkMap(commit.Mark, resolvedParent)
		return false, nil
	}

	setParents(commit, []fastexport.Mark{resolvedParent})

	s.SetMarkMap(commit.Mark, commit.Mark)
	s.UpdateGraph(commit.Mark, []fastexport.Mark{resolvedParent})
	s.UsingCommitWithContents(commit.Mark, []fastexport.Mark{resolvedParent}, commit.FileOps)
	return true, nil
}

// performMerge classifies a commit with two or more parents. Resolving
// its parent list can demote it to a regular commit (one surviving
// parent) or an initial commit (none), in which case it falls through to
// the corresponding handler.
func performMerge(s *State, commit *fastexport.Commit, parents []fastexport.Mark) (bool, error) {
	resolved, err := resolveMerges(s, parents)
	if err != nil {
		return false, err
	}

	switch len(resolved) {
	case 0:
		return performInitial(s, commit)
	case 1:
		return performRegular(s, commit, resolved[0])
	}

	// Reverse: the right-to-left reduction pass above returns the parents
	// in reverse order, so flip them back to fast-export's order before
	// recording.
	for i, j := 0, len(resolved)-1; i < j; i, j = i+1, j-1 {
		resolved[i], resolved[j] = resolved[j], resolved[i]
	}

	setParents(commit, resolved)
	s.SetMarkMap(commit.Mark, commit.Mark)
	s.UpdateGraph(commit.Mark, resolved)
	s.UsingCommitWithContents(commit.Mark, resolved, commit.FileOps)
	return true, nil
}

// Perform applies rules to commit's file-ops, then classifies it as
// initial/regular/merge by parent count and runs the matching handler.
// The returned bool reports whether commit survived; when false, the
// caller should write nothing to the output stream (the mark map has
// already been updated so later commits resolve through it correctly).
func Perform(s *State, defaultInclude bool, commit *fastexport.Commit, rules []Rule) (bool, error) {
	ApplyRules(defaultInclude, commit, rules)

	parents := parentsOf(commit)
	switch len(parents) {
	case 0:
		return performInitial(s, commit)
	case 1:
		return performRegular(s, commit, parents[0])
	default:
		return performMerge(s, commit, parents)
	}
}

// Package historyfilter tracks, across a single linear pass over a commit
// stream, which commits survive a set of path filter rules, how their
// marks and parents need to be remapped once some commits are dropped, and
// whether a commit's tree is identical to its parent's (and so can be
// elided even though it wasn't explicitly filtered).
package historyfilter

import (
	"encoding/binary"
	"sort"

	"github.com/zeebo/blake3"
	"github.com/gitsplit-io/gitsplit/modules/fastexport"
)

// MapsToEmpty is the mark map target recorded for a commit that was
// dropped and had no surviving parent to fall back to: anything that
// pointed at it should now point at nothing at all.
const MapsToEmpty fastexport.Mark = 0

// State accumulates everything the filter Engine needs to know about marks
// it has already processed: where each one now maps to, its ancestor set,
// and a content fingerprint of its resulting tree.
type State struct {
	haveUsedACommit bool

	markMap   map[fastexport.Mark]fastexport.Mark
	ancestors map[fastexport.Mark][]fastexport.Mark
	contents  map[fastexport.Mark]map[uint64]uint64
}

// New returns an empty State, ready to process a stream starting at its
// first commit.
func New() *State {
	return &State{
		markMap:   make(map[fastexport.Mark]fastexport.Mark),
		ancestors: make(map[fastexport.Mark][]fastexport.Mark),
		contents:  make(map[fastexport.Mark]map[uint64]uint64),
	}
}

// HaveUsedACommit reports whether any commit has been kept so far.
func (s *State) HaveUsedACommit() bool { return s.haveUsedACommit }

// MarkUsed records that at least one commit has survived filtering.
func (s *State) MarkUsed() { s.haveUsedACommit = true }

func hashBytes(b []byte) uint64 {
	sum := blake3.Sum256(b)
	return binary.LittleEndian.Uint64(sum[:8])
}

func hashPathKey(path string) uint64 {
	return hashBytes([]byte(path))
}

// hashFileOp fingerprints everything about an op that matters for
// "is this tree identical to the parent's": its kind and every field, so
// two modifies of the same path with different blobs hash differently.
func hashFileOp(op fastexport.FileOp) uint64 {
	var buf []byte
	buf = append(buf, byte(op.Kind))
	buf = append(buf, op.Mode...)
	buf = append(buf, 0)
	buf = append(buf, op.DataRef...)
	buf = append(buf, 0)
	buf = append(buf, op.Path...)
	buf = append(buf, 0)
	buf = append(buf, op.Src...)
	buf = append(buf, 0)
	buf = append(buf, op.Dst...)
	return hashBytes(buf)
}

// UsingCommitWithContents builds mark's content fingerprint map: the union
// of its parents' maps (merged in reverse order, so earlier parents win
// ties) overlaid with mark's own file-ops, keyed by path.
func (s *State) UsingCommitWithContents(mark fastexport.Mark, parents []fastexport.Mark, ops []fastexport.FileOp) {
	merged := make(map[uint64]uint64, len(ops))
	for i := len(parents) - 1; i >= 0; i-- {
		if parentMap, ok := s.contents[parents[i]]; ok {
			for k, v := range parentMap {
				merged[k] = v
			}
		}
	}
	for _, op := range ops {
		merged[hashPathKey(op.PathKey())] = hashFileOp(op)
	}
	s.contents[mark] = merged
}

// ContentsAreSameAs reports whether every op in ops already exists,
// unchanged, in parent's content map. The second return value is false
// when parent has no recorded content map at all (an internal consistency
// error: every kept mark must have been recorded via
// UsingCommitWithContents before anything can claim it as a parent).
func (s *State) ContentsAreSameAs(parent fastexport.Mark, ops []fastexport.FileOp) (bool, bool) {
	parentMap, ok := s.contents[parent]
	if !ok {
		return false, false
	}
	for _, op := range ops {
		want, present := parentMap[hashPathKey(op.PathKey())]
		if !present || want != hashFileOp(op) {
			return false, true
		}
	}
	return true, true
}

// SetMarkMap records where mark now resolves to: itself, if it survived
// filtering unchanged; an ancestor, if it was elided; or MapsToEmpty, if
// it and everything before it were dropped.
func (s *State) SetMarkMap(mark, target fastexport.Mark) {
	s.markMap[mark] = target
}

// GetMappedMark resolves mark through the map. The second return value is
// false only when mark has never been recorded at all, which indicates
// the stream referenced a parent mark before defining it.
func (s *State) GetMappedMark(mark fastexport.Mark) (fastexport.Mark, bool) {
	target, ok := s.markMap[mark]
	return target, ok
}

// UpdateGraph rebuilds mark's ancestor table as the sorted, deduplicated
// union of its parents' own ancestor tables plus the parents themselves.
func (s *State) UpdateGraph(mark fastexport.Mark, parents []fastexport.Mark) {
	sorted := append([]fastexport.Mark(nil), parents...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var table []fastexport.Mark
	for _, p := range sorted {
		table = append(table, s.ancestors[p]...)
		table = append(table, p)
	}
	sort.Slice(table, func(i, j int) bool { return table[i] < table[j] })
	table = dedupSorted(table)
	s.ancestors[mark] = table
}

func dedupSorted(marks []fastexport.Mark) []fastexport.Mark {
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

// IsAncestor reports whether mark is an ancestor of parent, or equal to it
// (a mark is trivially its own ancestor).
func (s *State) IsAncestor(mark, parent fastexport.Mark) bool {
	if mark == parent {
		return true
	}
	table := s.ancestors[parent]
	i := sort.Search(len(table), func(i int) bool { return table[i] >= mark })
	return i < len(table) && table[i] == mark
}

// IsAncestorOfAny reports whether mark is an ancestor of (or equal to) any
// element of candidates.
func (s *State) IsAncestorOfAny(mark fastexport.Mark, candidates []fastexport.Mark) bool {
	for _, c := range candidates {
		if s.IsAncestor(mark, c) {
			return true
		}
	}
	return false
}

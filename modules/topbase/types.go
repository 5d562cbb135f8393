// Package topbase implements the A/B history differencer: given two
// committishes, it determines which commits of one exist in the other by
// content fingerprint rather than by shared ancestry, which lets it compare
// branches that were produced by rewriting history (filtering, splitting)
// and therefore share no actual git parent/child edges.
package topbase

// DiffStatus classifies one blob-diff line of a `git log --raw` entry.
type DiffStatus int

const (
	StatusUnknown DiffStatus = iota
	StatusAdded
	StatusCopied
	StatusDeleted
	StatusModified
	StatusRenamed
	StatusTypeChanged
	StatusUnmerged
)

func parseDiffStatus(code byte) DiffStatus {
	switch code {
	case 'A':
		return StatusAdded
	case 'C':
		return StatusCopied
	case 'D':
		return StatusDeleted
	case 'M':
		return StatusModified
	case 'R':
		return StatusRenamed
	case 'T':
		return StatusTypeChanged
	case 'U':
		return StatusUnmerged
	default:
		return StatusUnknown
	}
}

// BlobDiff is one `:<mode> <mode> <id> <id> <status>\t<path>` line of a
// `git log --raw` entry.
type BlobDiff struct {
	Status   DiffStatus
	ModePrev string
	ModeNext string
	IDPrev   string
	IDNext   string
	PathPrev string
	PathNext string
}

// EffectiveID is the blob identity this diff entry contributes to a commit's
// content fingerprint: the destination id, except for a deletion, which is
// identified by the id it removed.
func (b BlobDiff) EffectiveID() string {
	if b.Status == StatusDeleted {
		return b.IDPrev
	}
	return b.IDNext
}

// Path is the path this diff entry is keyed under for display purposes: the
// destination path, or for a rename/copy, "<src> -> <dst>".
func (b BlobDiff) Path() string {
	if b.PathPrev != "" && b.PathPrev != b.PathNext {
		return b.PathPrev + " -> " + b.PathNext
	}
	return b.PathNext
}

// Commit is one header line of `git log --raw --pretty=oneline` together
// with its blob-diff entries.
type Commit struct {
	Hash    string
	Summary string
	IsMerge bool
	Blobs   []BlobDiff
}

// ContainsAllBlobs reports whether every blob id touched by this commit also
// appears somewhere in blobSet.
func (c Commit) ContainsAllBlobs(blobSet map[string]struct{}) bool {
	for _, b := range c.Blobs {
		if _, ok := blobSet[b.EffectiveID()]; !ok {
			return false
		}
	}
	return true
}

// AllBlobsExist reports whether every blob in a also appears in b, by id.
func AllBlobsExist(a, b []BlobDiff) bool {
	bSet := make(map[string]struct{}, len(b))
	for _, blob := range b {
		bSet[blob.EffectiveID()] = struct{}{}
	}
	for _, blob := range a {
		if _, ok := bSet[blob.EffectiveID()]; !ok {
			return false
		}
	}
	return true
}

// CommitLog is a full committish's history: every commit in traversal
// order, plus the union of all blob ids it contains.
type CommitLog struct {
	Commits []Commit
	Blobs   map[string]struct{}
}

// ContainsAllBlobs reports whether every blob touched by c also appears
// somewhere in the log.
func (l CommitLog) ContainsAllBlobs(c Commit) bool {
	return c.ContainsAllBlobs(l.Blobs)
}

// ConsecutiveCommitGroup is a maximal run of adjacent commits sharing the
// same "present in the opposite branch" verdict.
type ConsecutiveCommitGroup struct {
	Commits []Commit
}

// TraversalMode selects one of the three A/B comparison strategies.
type TraversalMode int

const (
	// Topbase fully loads B, then streams A from the tip until it finds a
	// commit whose blobs are entirely present in B.
	Topbase TraversalMode = iota
	// TopbaseRewind is a Topbase followed by a walk up B looking for
	// commits that diverged from the fork point found on A.
	TopbaseRewind
	// Fullbase traverses both branches in their entirety, never stopping
	// early; the most expensive but exhaustive mode.
	Fullbase
)

package topbase

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// parseHeaderLine parses one non-blob line of `git log --raw --pretty=oneline`
// output. A regular commit line is "<hash> <summary...>". A merge commit
// line, when the log was invoked with per-parent expansion (`-m`), is
// "<hash> (from <parent-hash>) <summary...>" once per parent.
//
// Distinguishing a merge from a regular commit uses a soft heuristic: the
// second token literally equals "(from" and the third token is a hash of the
// same length as the commit's, followed by ")". This is a deliberate deviation from
// the simpler "no blob line seen" heuristic of the tool this package is
// based on, which cannot tell a merge commit from a regular one until it
// has already read (and discarded) its diff; matching on the "(from"
// marker lets the caller classify the commit from its header line alone.
func parseHeaderLine(line string) (hash, summary string, isMerge bool) {
	firstSpace := strings.IndexByte(line, ' ')
	if firstSpace < 0 {
		return line, "", false
	}
	hash = line[:firstSpace]
	rest := line[firstSpace+1:]

	fields := strings.SplitN(rest, " ", 3)
	if len(fields) >= 3 && fields[0] == "(from" {
		parentToken := fields[1]
		if len(parentToken) == len(hash)+1 && strings.HasSuffix(parentToken, ")") {
			return hash, fields[2], true
		}
	}
	return hash, rest, false
}

// parseBlobLine parses one ":<mode> <mode> <id> <id> <status>[score]\t<path>"
// line. Renames and copies carry a second, tab-separated destination path.
func parseBlobLine(line string) (BlobDiff, error) {
	body := strings.TrimPrefix(line, ":")

	tab := strings.IndexByte(body, '\t')
	if tab < 0 {
		return BlobDiff{}, fmt.Errorf("topbase: malformed raw diff line: %q", line)
	}
	fields := strings.Fields(body[:tab])
	if len(fields) != 5 {
		return BlobDiff{}, fmt.Errorf("topbase: malformed raw diff line: %q", line)
	}
	modePrev, modeNext, idPrev, idNext, statusField := fields[0], fields[1], fields[2], fields[3], fields[4]

	paths := strings.Split(body[tab+1:], "\t")
	pathNext := paths[len(paths)-1]
	pathPrev := ""
	if len(paths) > 1 {
		pathPrev = paths[0]
	}

	return BlobDiff{
		Status:   parseDiffStatus(statusField[0]),
		ModePrev: modePrev,
		ModeNext: modeNext,
		IDPrev:   idPrev,
		IDNext:   idNext,
		PathPrev: pathPrev,
		PathNext: pathNext,
	}, nil
}

// ShouldAdd controls how parseLog's per-commit callback steers accumulation.
type ShouldAdd int

const (
	Add ShouldAdd = iota
	DontAdd
	AddAndExit
	Exit
)

// parseLog reads `git log --raw --pretty=oneline` (optionally `-m`-expanded)
// output line by line, building one Commit per header line plus its blob
// diffs, and invokes cb once each commit is complete so callers can decide
// whether to keep it and whether to stop reading early.
//
// allBlobs accumulates every blob id seen in the stream, including those
// belonging to commits cb declines to keep: a commit on one side is
// "present" on the other side by blob membership alone, regardless of
// which commit that blob was last touched in, so the membership test needs
// every blob this traversal read, not just the commits it chose to keep.
func parseLog(r *bufio.Reader, cb func(Commit) ShouldAdd) (commits []Commit, allBlobs map[string]struct{}, err error) {
	allBlobs = make(map[string]struct{})
	var current Commit
	haveCurrent := false

	flush := func() (bool, error) {
		if !haveCurrent {
			return false, nil
		}
		switch cb(current) {
		case Add:
			commits = append(commits, current)
			return false, nil
		case AddAndExit:
			commits = append(commits, current)
			return true, nil
		case Exit:
			return true, nil
		default: // DontAdd
			return false, nil
		}
	}

	for {
		var line string
		line, err = r.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if line != "" {
			if !strings.HasPrefix(line, ":") {
				var stop bool
				var ferr error
				stop, ferr = flush()
				if ferr != nil {
					return commits, allBlobs, ferr
				}
				if stop {
					return commits, allBlobs, nil
				}
				hash, summary, isMerge := parseHeaderLine(line)
				current = Commit{Hash: hash, Summary: summary, IsMerge: isMerge}
				haveCurrent = true
			} else {
				blob, perr := parseBlobLine(line)
				if perr != nil {
					return commits, allBlobs, perr
				}
				current.Blobs = append(current.Blobs, blob)
				allBlobs[blob.EffectiveID()] = struct{}{}
			}
		}
		if err != nil {
			break
		}
	}
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		return commits, allBlobs, err
	}

	if _, ferr := flush(); ferr != nil {
		return commits, allBlobs, ferr
	}
	return commits, allBlobs, nil
}

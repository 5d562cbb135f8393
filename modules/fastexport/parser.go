package fastexport

import (
	"fmt"
	"strconv"
	"strings"
)

// beforeMode tracks the pre-data word scanner's position: looking for one
// of feature/reset/commit/blob, then inside whichever of those it found.
type beforeMode int

const (
	beforeInitial beforeMode = iota
	beforeReset
	beforeCommit
	beforeBlob
)

// afterMode tracks the post-data word scanner's position. Once we've seen
// `from` or `merge`, `from` can no longer appear; once we've seen a file-op,
// neither can (fast-export emits at most one from, then zero or more
// merges, then file-ops).
type afterMode int

const (
	afterInitial afterMode = iota
	afterFrom
	afterFileOps
)

type preDataObject struct {
	hasFeatureDone bool
	resetRef       string
	hasReset       bool
	resetFrom      string
	hasResetFrom   bool
	dataSize       int

	isBlob bool
	ref    string // commit ref (refs/heads/...)
	mark   string // ":123", still colon-prefixed
	hasOID bool
	oid    string

	committer   Person
	hasAuthor   bool
	author      Person
}

type postDataObject struct {
	from     string
	hasFrom  bool
	merges   []string
	fileOps  []FileOp
}

// ParseStructured turns one UnstructuredObject into a StructuredObject,
// applying the same grammar `git fast-import` itself expects on its input:
// a pre-data header section, the already-isolated data payload, and a
// post-data section of from/merge/file-op lines.
func ParseStructured(u UnstructuredObject) (StructuredObject, error) {
	pre, err := parseBeforeData(u.BeforeData)
	if err != nil {
		return StructuredObject{}, err
	}
	post, err := parseAfterData(u.AfterData)
	if err != nil {
		return StructuredObject{}, err
	}

	var out StructuredObject
	out.HasReset = pre.hasReset
	out.ResetRef = pre.resetRef
	out.HasResetFrom = pre.hasResetFrom
	out.FeatureDone = pre.hasFeatureDone
	if pre.hasResetFrom {
		out.ResetFrom = parseMark(pre.resetFrom)
	}

	if pre.ref == "" && !pre.isBlob {
		// reset-only object: no commit, no blob header was seen.
		out.Kind = ObjectNone
		return out, nil
	}

	if pre.isBlob {
		out.Kind = ObjectBlob
		out.Blob = Blob{
			HasMark:     pre.mark != "",
			OriginalOID: pre.oid,
			Data:        u.Data,
		}
		if pre.mark != "" {
			out.Blob.Mark = parseMark(pre.mark)
		}
		return out, nil
	}

	out.Kind = ObjectCommit
	c := Commit{
		Ref:         pre.ref,
		OriginalOID: pre.oid,
		Committer:   pre.committer,
		Message:     u.Data,
		FileOps:     post.fileOps,
	}
	if pre.mark != "" {
		c.Mark = parseMark(pre.mark)
	}
	switch {
	case !pre.hasAuthor:
		c.AuthorKind = NoAuthor
	case pre.author == pre.committer:
		c.AuthorKind = AuthorSameAsCommitter
	default:
		c.AuthorKind = AuthorDistinct
		c.Author = pre.author
	}
	if post.hasFrom {
		c.HasFrom = true
		c.From = parseMark(post.from)
	}
	for _, m := range post.merges {
		c.Merges = append(c.Merges, parseMark(m))
	}
	out.Commit = c
	return out, nil
}

func parseMark(tok string) Mark {
	n, _ := strconv.ParseInt(strings.TrimPrefix(tok, ":"), 10, 64)
	return Mark(n)
}

func parseBeforeData(text string) (preDataObject, error) {
	var obj preDataObject
	mode := beforeInitial
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		first := fields[0]

		switch mode {
		case beforeInitial:
			switch first {
			case "feature":
				obj.hasFeatureDone = true
			case "reset":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed reset line %q", line)
				}
				obj.resetRef = fields[1]
				obj.hasReset = true
				mode = beforeReset
			case "commit":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed commit line %q", line)
				}
				obj.ref = fields[1]
				mode = beforeCommit
			case "blob":
				obj.isBlob = true
				mode = beforeBlob
			default:
				return obj, fmt.Errorf("fastexport: unexpected line in header section: %q", line)
			}

		case beforeReset:
			switch first {
			case "from":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed reset-from line %q", line)
				}
				obj.resetFrom = fields[1]
				obj.hasResetFrom = true
				mode = beforeInitial
			case "commit":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed commit line %q", line)
				}
				obj.ref = fields[1]
				mode = beforeCommit
			default:
				return obj, fmt.Errorf("fastexport: unexpected line after reset: %q", line)
			}

		case beforeCommit:
			switch first {
			case "mark":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed mark line %q", line)
				}
				obj.mark = fields[1]
			case "original-oid":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed original-oid line %q", line)
				}
				obj.hasOID = true
				obj.oid = fields[1]
			case "author":
				p, err := parsePersonLine(line)
				if err != nil {
					return obj, err
				}
				obj.hasAuthor = true
				obj.author = p
			case "committer":
				p, err := parsePersonLine(line)
				if err != nil {
					return obj, err
				}
				obj.committer = p
			case "encoding":
				// --reencode=yes means we never need to special-case this.
			case "data":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed data line %q", line)
				}
				obj.dataSize, _ = strconv.Atoi(fields[1])
			default:
				return obj, fmt.Errorf("fastexport: unexpected line in commit header: %q", line)
			}

		case beforeBlob:
			switch first {
			case "mark":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed mark line %q", line)
				}
				obj.mark = fields[1]
			case "original-oid":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed original-oid line %q", line)
				}
				obj.hasOID = true
				obj.oid = fields[1]
			case "data":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed data line %q", line)
				}
				obj.dataSize, _ = strconv.Atoi(fields[1])
			default:
				return obj, fmt.Errorf("fastexport: unexpected line in blob header: %q", line)
			}
		}
	}
	return obj, nil
}

// parsePersonLine matches fast-export's
// "author|committer <name>? <email> <when>" grammar. Name may be absent
// (an empty name between the two spaces preceding '<').
func parsePersonLine(line string) (Person, error) {
	rest := line
	for _, prefix := range []string{"author ", "committer "} {
		if strings.HasPrefix(rest, prefix) {
			rest = strings.TrimPrefix(rest, prefix)
			break
		}
	}
	open := strings.IndexByte(rest, '<')
	close := strings.IndexByte(rest, '>')
	if open < 0 || close < 0 || close < open {
		return Person{}, fmt.Errorf("fastexport: malformed author/committer line %q", line)
	}
	name := strings.TrimSpace(rest[:open])
	email := rest[open+1 : close]
	when := strings.TrimSpace(rest[close+1:])
	return Person{Name: name, HasName: name != "", Email: email, When: when}, nil
}

func parseAfterData(text string) (postDataObject, error) {
	var obj postDataObject
	mode := afterInitial
	for _, line := range strings.Split(text, "\n") {
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		first := fields[0]

		if mode != afterFileOps {
			switch first {
			case "from":
				if mode == afterFrom || mode == afterFileOps {
					return obj, fmt.Errorf("fastexport: unexpected second from line %q", line)
				}
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed from line %q", line)
				}
				obj.from = fields[1]
				obj.hasFrom = true
				mode = afterFrom
				continue
			case "merge":
				if len(fields) < 2 {
					return obj, fmt.Errorf("fastexport: malformed merge line %q", line)
				}
				obj.merges = append(obj.merges, fields[1])
				mode = afterFrom
				continue
			}
		}

		op, err := parseFileOpLine(line, first, fields)
		if err != nil {
			return obj, err
		}
		obj.fileOps = append(obj.fileOps, op)
		mode = afterFileOps
	}
	return obj, nil
}

func parseFileOpLine(line, first string, fields []string) (FileOp, error) {
	switch first {
	case "M":
		if len(fields) < 4 {
			return FileOp{}, fmt.Errorf("fastexport: malformed M line %q", line)
		}
		return FileOp{Kind: FileModify, Mode: fields[1], DataRef: fields[2], Path: joinRest(fields, 3)}, nil
	case "D":
		if len(fields) < 2 {
			return FileOp{}, fmt.Errorf("fastexport: malformed D line %q", line)
		}
		return FileOp{Kind: FileDelete, Path: joinRest(fields, 1)}, nil
	case "C":
		if len(fields) < 3 {
			return FileOp{}, fmt.Errorf("fastexport: malformed C line %q", line)
		}
		return FileOp{Kind: FileCopy, Src: fields[1], Dst: joinRest(fields, 2)}, nil
	case "R":
		if len(fields) < 3 {
			return FileOp{}, fmt.Errorf("fastexport: malformed R line %q", line)
		}
		return FileOp{Kind: FileRename, Src: fields[1], Dst: joinRest(fields, 2), Path: joinRest(fields, 2)}, nil
	case "N":
		if len(fields) < 3 {
			return FileOp{}, fmt.Errorf("fastexport: malformed N line %q", line)
		}
		return FileOp{Kind: NoteModify, DataRef: fields[1], Path: joinRest(fields, 2)}, nil
	case "deleteall":
		return FileOp{Kind: FileDeleteAll}, nil
	default:
		return FileOp{}, fmt.Errorf("fastexport: unexpected file-op line %q", line)
	}
}

// joinRest re-joins fields[i:] with single spaces, undoing the
// whitespace-splitting for the trailing path component (which may itself
// contain spaces when fast-export quoted it).
func joinRest(fields []string, i int) string {
	return strings.Join(fields[i:], " ")
}

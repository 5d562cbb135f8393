package fastexport

import (
	"fmt"
	"io"
)

// WriteObject serializes obj back into fast-import text, in the exact
// section order fast-import's grammar requires: feature/reset header,
// then either a commit (mark, original-oid, author?, committer, data,
// message, from?, merge*, file-ops, blank line) or a blob (mark,
// original-oid, data, payload, newline).
func WriteObject(w io.Writer, obj StructuredObject) error {
	var buf []byte

	if obj.FeatureDone {
		buf = append(buf, "feature done\n"...)
	}
	if obj.HasReset {
		buf = append(buf, "reset "...)
		buf = append(buf, obj.ResetRef...)
		buf = append(buf, '\n')
		if obj.HasResetFrom {
			buf = append(buf, "from "...)
			buf = append(buf, obj.ResetFrom.String()...)
			buf = append(buf, '\n')
		}
		buf = append(buf, '\n')
	}

	switch obj.Kind {
	case ObjectCommit:
		buf = appendCommit(buf, obj.Commit)
	case ObjectBlob:
		buf = appendBlob(buf, obj.Blob)
	case ObjectNone:
		// reset-only: nothing further to emit.
	}

	_, err := w.Write(buf)
	return err
}

func appendCommit(buf []byte, c Commit) []byte {
	buf = append(buf, "commit "...)
	buf = append(buf, c.Ref...)
	buf = append(buf, '\n')
	if !c.Mark.IsZero() {
		buf = append(buf, "mark "...)
		buf = append(buf, c.Mark.String()...)
		buf = append(buf, '\n')
	}
	buf = append(buf, "original-oid "...)
	buf = append(buf, c.OriginalOID...)
	buf = append(buf, '\n')

	switch c.AuthorKind {
	case AuthorSameAsCommitter:
		buf = appendPerson(buf, c.Committer, true)
	case AuthorDistinct:
		buf = appendPerson(buf, c.Author, true)
	}
	buf = appendPerson(buf, c.Committer, false)

	buf = append(buf, "data "...)
	buf = append(buf, fmt.Sprintf("%d", len(c.Message))...)
	buf = append(buf, '\n')
	buf = append(buf, c.Message...)
	buf = append(buf, '\n')

	if c.HasFrom {
		buf = append(buf, "from "...)
		buf = append(buf, c.From.String()...)
		buf = append(buf, '\n')
	}
	for _, m := range c.Merges {
		buf = append(buf, "merge "...)
		buf = append(buf, m.String()...)
		buf = append(buf, '\n')
	}
	for _, op := range c.FileOps {
		buf = appendFileOp(buf, op)
		buf = append(buf, '\n')
	}
	buf = append(buf, '\n')
	return buf
}

func appendPerson(buf []byte, p Person, isAuthor bool) []byte {
	if isAuthor {
		buf = append(buf, "author "...)
	} else {
		buf = append(buf, "committer "...)
	}
	if p.HasName {
		buf = append(buf, p.Name...)
		buf = append(buf, ' ')
	}
	buf = append(buf, '<')
	buf = append(buf, p.Email...)
	buf = append(buf, "> "...)
	buf = append(buf, p.When...)
	buf = append(buf, '\n')
	return buf
}

func appendFileOp(buf []byte, op FileOp) []byte {
	switch op.Kind {
	case FileModify:
		buf = append(buf, "M "...)
		buf = append(buf, op.Mode...)
		buf = append(buf, ' ')
		buf = append(buf, op.DataRef...)
		buf = append(buf, ' ')
		buf = append(buf, op.Path...)
	case FileDelete:
		buf = append(buf, "D "...)
		buf = append(buf, op.Path...)
	case FileCopy:
		buf = append(buf, "C "...)
		buf = append(buf, op.Src...)
		buf = append(buf, ' ')
		buf = append(buf, op.Dst...)
	case FileRename:
		buf = append(buf, "R "...)
		buf = append(buf, op.Src...)
		buf = append(buf, ' ')
		buf = append(buf, op.Dst...)
	case FileDeleteAll:
		buf = append(buf, "deleteall"...)
	case NoteModify:
		buf = append(buf, "N "...)
		buf = append(buf, op.DataRef...)
		buf = append(buf, ' ')
		buf = append(buf, op.Path...)
	}
	return buf
}

func appendBlob(buf []byte, b Blob) []byte {
	buf = append(buf, "blob\n"...)
	if b.HasMark {
		buf = append(buf, "mark "...)
		buf = append(buf, b.Mark.String()...)
		buf = append(buf, '\n')
	}
	buf = append(buf, "original-oid "...)
	buf = append(buf, b.OriginalOID...)
	buf = append(buf, '\n')
	buf = append(buf, "data "...)
	buf = append(buf, fmt.Sprintf("%d", len(b.Data))...)
	buf = append(buf, '\n')
	buf = append(buf, b.Data...)
	buf = append(buf, '\n')
	return buf
}

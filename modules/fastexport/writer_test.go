package fastexport

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteObjectCommitRoundTripsThroughSplitterAndParser(t *testing.T) {
	c := Commit{
		Ref:         "refs/heads/master",
		Mark:        Mark(7),
		OriginalOID: "1111111111111111111111111111111111111111",
		Committer:   Person{Name: "Jane Doe", HasName: true, Email: "jane@example.com", When: "1000 +0000"},
		AuthorKind:  AuthorDistinct,
		Author:      Person{Name: "John Doe", HasName: true, Email: "john@example.com", When: "900 +0000"},
		Message:     []byte("a commit message"),
		HasFrom:     true,
		From:        Mark(6),
		Merges:      []Mark{Mark(4), Mark(5)},
		FileOps: []FileOp{
			{Kind: FileModify, Mode: "100644", DataRef: ":8", Path: "a.txt"},
			{Kind: FileDelete, Path: "b.txt"},
			{Kind: FileDeleteAll},
		},
	}
	in := StructuredObject{Kind: ObjectCommit, Commit: c}

	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, in))
	buf.WriteString("progress 1 objects\n")

	s := NewSplitter(&buf)
	unstructured, err := s.Next()
	require.NoError(t, err)

	out, err := ParseStructured(unstructured)
	require.NoError(t, err)

	require.Equal(t, ObjectCommit, out.Kind)
	assert.Equal(t, c.Ref, out.Commit.Ref)
	assert.Equal(t, c.Mark, out.Commit.Mark)
	assert.Equal(t, c.OriginalOID, out.Commit.OriginalOID)
	assert.Equal(t, c.Committer, out.Commit.Committer)
	assert.Equal(t, c.AuthorKind, out.Commit.AuthorKind)
	assert.Equal(t, c.Author, out.Commit.Author)
	assert.Equal(t, c.Message, out.Commit.Message)
	assert.Equal(t, c.From, out.Commit.From)
	assert.Equal(t, c.Merges, out.Commit.Merges)
	require.Len(t, out.Commit.FileOps, 3)
	assert.Equal(t, c.FileOps[0], out.Commit.FileOps[0])
	assert.Equal(t, FileDelete, out.Commit.FileOps[1].Kind)
	assert.Equal(t, FileDeleteAll, out.Commit.FileOps[2].Kind)
}

func TestWriteObjectBlobRoundTrips(t *testing.T) {
	b := Blob{Mark: Mark(2), HasMark: true, OriginalOID: "2222222222222222222222222222222222222222", Data: []byte{0x00, 'x', 0xff}}
	in := StructuredObject{Kind: ObjectBlob, Blob: b}

	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, in))
	buf.WriteString("progress 1 objects\n")

	s := NewSplitter(&buf)
	unstructured, err := s.Next()
	require.NoError(t, err)

	out, err := ParseStructured(unstructured)
	require.NoError(t, err)
	require.Equal(t, ObjectBlob, out.Kind)
	assert.Equal(t, b.Mark, out.Blob.Mark)
	assert.Equal(t, b.OriginalOID, out.Blob.OriginalOID)
	assert.Equal(t, b.Data, out.Blob.Data)
}

func TestWriteObjectResetWithFrom(t *testing.T) {
	in := StructuredObject{
		Kind:         ObjectNone,
		HasReset:     true,
		ResetRef:     "refs/heads/main",
		HasResetFrom: true,
		ResetFrom:    Mark(3),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteObject(&buf, in))

	got := buf.String()
	assert.Contains(t, got, "reset refs/heads/main\n")
	assert.Contains(t, got, "from :3\n")
}

package fastexport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStructuredCommitWithDistinctAuthor(t *testing.T) {
	u := UnstructuredObject{
		BeforeData: "commit refs/heads/master\n" +
			"mark :3\n" +
			"original-oid cccccccccccccccccccccccccccccccccccccccc\n" +
			"author Alice <alice@example.com> 1000 +0000\n" +
			"committer Bob <bob@example.com> 1100 +0000\n" +
			"data 7\n",
		Data: []byte("initial"),
		AfterData: "from :1\n" +
			"merge :2\n" +
			"M 100644 :4 a.txt\n" +
			"D b.txt\n" +
			"deleteall\n",
	}

	obj, err := ParseStructured(u)
	require.NoError(t, err)

	require.Equal(t, ObjectCommit, obj.Kind)
	c := obj.Commit
	assert.Equal(t, "refs/heads/master", c.Ref)
	assert.Equal(t, Mark(3), c.Mark)
	assert.Equal(t, "cccccccccccccccccccccccccccccccccccccccc", c.OriginalOID)
	assert.Equal(t, AuthorDistinct, c.AuthorKind)
	assert.Equal(t, "Alice", c.Author.Name)
	assert.Equal(t, "alice@example.com", c.Author.Email)
	assert.Equal(t, "Bob", c.Committer.Name)
	assert.True(t, c.HasFrom)
	assert.Equal(t, Mark(1), c.From)
	require.Len(t, c.Merges, 1)
	assert.Equal(t, Mark(2), c.Merges[0])
	require.Len(t, c.FileOps, 3)
	assert.Equal(t, FileModify, c.FileOps[0].Kind)
	assert.Equal(t, "100644", c.FileOps[0].Mode)
	assert.Equal(t, "a.txt", c.FileOps[0].Path)
	assert.Equal(t, FileDelete, c.FileOps[1].Kind)
	assert.Equal(t, "b.txt", c.FileOps[1].Path)
	assert.Equal(t, FileDeleteAll, c.FileOps[2].Kind)
}

func TestParseStructuredAuthorSameAsCommitterCollapses(t *testing.T) {
	u := UnstructuredObject{
		BeforeData: "commit refs/heads/master\n" +
			"original-oid dddddddddddddddddddddddddddddddddddddddd\n" +
			"author Carol <carol@example.com> 900 +0000\n" +
			"committer Carol <carol@example.com> 900 +0000\n" +
			"data 0\n",
	}

	obj, err := ParseStructured(u)
	require.NoError(t, err)
	assert.Equal(t, AuthorSameAsCommitter, obj.Commit.AuthorKind)
}

func TestParseStructuredNoAuthorLine(t *testing.T) {
	u := UnstructuredObject{
		BeforeData: "commit refs/heads/master\n" +
			"original-oid eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee\n" +
			"committer Dan <dan@example.com> 900 +0000\n" +
			"data 0\n",
	}

	obj, err := ParseStructured(u)
	require.NoError(t, err)
	assert.Equal(t, NoAuthor, obj.Commit.AuthorKind)
}

func TestParseStructuredBlob(t *testing.T) {
	u := UnstructuredObject{
		BeforeData: "blob\n" +
			"mark :9\n" +
			"original-oid ffffffffffffffffffffffffffffffffffffffff\n" +
			"data 3\n",
		Data: []byte("abc"),
	}

	obj, err := ParseStructured(u)
	require.NoError(t, err)
	require.Equal(t, ObjectBlob, obj.Kind)
	assert.Equal(t, Mark(9), obj.Blob.Mark)
	assert.Equal(t, []byte("abc"), obj.Blob.Data)
}

func TestParseStructuredResetOnly(t *testing.T) {
	u := UnstructuredObject{
		BeforeData: "reset refs/heads/master\n" +
			"from :5\n",
	}

	obj, err := ParseStructured(u)
	require.NoError(t, err)
	assert.Equal(t, ObjectNone, obj.Kind)
	assert.True(t, obj.HasReset)
	assert.Equal(t, "refs/heads/master", obj.ResetRef)
	assert.True(t, obj.HasResetFrom)
	assert.Equal(t, Mark(5), obj.ResetFrom)
}

func TestParsePersonLineWithoutName(t *testing.T) {
	p, err := parsePersonLine("committer <bot@example.com> 0 +0000")
	require.NoError(t, err)
	assert.False(t, p.HasName)
	assert.Equal(t, "bot@example.com", p.Email)
	assert.Equal(t, "0 +0000", p.When)
}

func TestParseFileOpRenameRetainsSrcAndDst(t *testing.T) {
	op, err := parseFileOpLine("R old.txt new.txt", "R", []string{"R", "old.txt", "new.txt"})
	require.NoError(t, err)
	assert.Equal(t, FileRename, op.Kind)
	assert.Equal(t, "old.txt", op.Src)
	assert.Equal(t, "new.txt", op.Dst)
}

func TestParseFileOpRenameWithSpacesInDestination(t *testing.T) {
	op, err := parseFileOpLine("R old.txt new name.txt", "R", []string{"R", "old.txt", "new", "name.txt"})
	require.NoError(t, err)
	assert.Equal(t, FileRename, op.Kind)
	assert.Equal(t, "old.txt", op.Src)
	assert.Equal(t, "new name.txt", op.Dst)
}

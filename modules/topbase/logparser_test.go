package topbase

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeaderLineRegularCommit(t *testing.T) {
	hash, summary, isMerge := parseHeaderLine("abc123 fix the thing")
	assert.Equal(t, "abc123", hash)
	assert.Equal(t, "fix the thing", summary)
	assert.False(t, isMerge)
}

func TestParseHeaderLineMergeCommit(t *testing.T) {
	hash, summary, isMerge := parseHeaderLine("abc123 (from def456) merge branch 'x'")
	assert.Equal(t, "abc123", hash)
	assert.Equal(t, "merge branch 'x'", summary)
	assert.True(t, isMerge)
}

func TestParseHeaderLineParenFromButWrongLength(t *testing.T) {
	// third token doesn't look like a same-length parenthesized hash, so
	// this isn't classified as a merge even though it starts with "(from".
	hash, summary, isMerge := parseHeaderLine("abc123 (from short) nope")
	assert.Equal(t, "abc123", hash)
	assert.Equal(t, "(from short) nope", summary)
	assert.False(t, isMerge)
}

func TestParseBlobLineModify(t *testing.T) {
	b, err := parseBlobLine(":100644 100644 aaa111 bbb222 M\tfile.txt")
	require.NoError(t, err)
	assert.Equal(t, StatusModified, b.Status)
	assert.Equal(t, "bbb222", b.EffectiveID())
	assert.Equal(t, "file.txt", b.Path())
}

func TestParseBlobLineDeleteUsesPrevID(t *testing.T) {
	b, err := parseBlobLine(":100644 000000 aaa111 000000 D\tfile.txt")
	require.NoError(t, err)
	assert.Equal(t, StatusDeleted, b.Status)
	assert.Equal(t, "aaa111", b.EffectiveID())
}

func TestParseBlobLineRenameHasTwoPaths(t *testing.T) {
	b, err := parseBlobLine(":100644 100644 aaa111 aaa111 R100\told.txt\tnew.txt")
	require.NoError(t, err)
	assert.Equal(t, StatusRenamed, b.Status)
	assert.Equal(t, "old.txt", b.PathPrev)
	assert.Equal(t, "new.txt", b.PathNext)
	assert.Equal(t, "old.txt -> new.txt", b.Path())
}

func TestParseBlobLineMalformedMissingTab(t *testing.T) {
	_, err := parseBlobLine(":100644 100644 aaa111 bbb222 M file.txt")
	assert.Error(t, err)
}

func newLineReader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestParseLogHeadersWithoutBlobs(t *testing.T) {
	commits, blobs, err := parseLog(newLineReader("somehash commit message\n01010101 another commit message\n"), func(Commit) ShouldAdd { return Add })
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Empty(t, blobs)
}

func TestParseLogParsesBlobsUnderHeader(t *testing.T) {
	log := "hash1 msg1\n" +
		":100644 100644 xyz abc M\tfile1.txt\n" +
		":100644 000000 123 000000 D\tfile2.txt\n"
	commits, blobs, err := parseLog(newLineReader(log), func(Commit) ShouldAdd { return Add })
	require.NoError(t, err)
	require.Len(t, commits, 1)
	require.Len(t, commits[0].Blobs, 2)
	assert.Equal(t, StatusModified, commits[0].Blobs[0].Status)
	assert.Equal(t, "abc", commits[0].Blobs[0].EffectiveID())
	assert.Equal(t, StatusDeleted, commits[0].Blobs[1].Status)
	assert.Equal(t, "123", commits[0].Blobs[1].EffectiveID())
	assert.Contains(t, blobs, "abc")
	assert.Contains(t, blobs, "123")
}

func TestParseLogHonorsDontAddButStillCollectsBlobs(t *testing.T) {
	log := "hash1 msg1\n" +
		":100644 100644 xyz abc M\tfile1.txt\n" +
		"hash2 msg2\n" +
		":100644 100644 aaa bbb M\tfile2.txt\n"
	var seen []string
	commits, blobs, err := parseLog(newLineReader(log), func(c Commit) ShouldAdd {
		seen = append(seen, c.Hash)
		if c.Hash == "hash1" {
			return DontAdd
		}
		return Add
	})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "hash2", commits[0].Hash)
	// hash1's blob is still in the set even though the commit was dropped.
	assert.Contains(t, blobs, "abc")
	assert.Contains(t, blobs, "bbb")
	assert.Equal(t, []string{"hash1", "hash2"}, seen)
}

func TestParseLogExitStopsBeforeAddingCurrentCommit(t *testing.T) {
	log := "hash1 msg1\nhash2 msg2\nhash3 msg3\n"
	commits, _, err := parseLog(newLineReader(log), func(c Commit) ShouldAdd {
		if c.Hash == "hash2" {
			return Exit
		}
		return Add
	})
	require.NoError(t, err)
	require.Len(t, commits, 1)
	assert.Equal(t, "hash1", commits[0].Hash)
}

func TestParseLogAddAndExitIncludesCurrentCommit(t *testing.T) {
	log := "hash1 msg1\nhash2 msg2\nhash3 msg3\n"
	commits, _, err := parseLog(newLineReader(log), func(c Commit) ShouldAdd {
		if c.Hash == "hash2" {
			return AddAndExit
		}
		return Add
	})
	require.NoError(t, err)
	require.Len(t, commits, 2)
	assert.Equal(t, "hash2", commits[1].Hash)
}

package topbase

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlobDiffEffectiveIDDeletionUsesPrevID(t *testing.T) {
	b := BlobDiff{Status: StatusDeleted, IDPrev: "prev", IDNext: "0000000"}
	assert.Equal(t, "prev", b.EffectiveID())
}

func TestBlobDiffEffectiveIDNonDeletionUsesNextID(t *testing.T) {
	b := BlobDiff{Status: StatusModified, IDPrev: "prev", IDNext: "next"}
	assert.Equal(t, "next", b.EffectiveID())
}

func TestCommitContainsAllBlobsTrueWhenEverythingPresent(t *testing.T) {
	c := Commit{Blobs: []BlobDiff{blobDiff("a"), blobDiff("b")}}
	assert.True(t, c.ContainsAllBlobs(blobSet("a", "b", "c")))
}

func TestCommitContainsAllBlobsFalseWhenSomethingMissing(t *testing.T) {
	c := Commit{Blobs: []BlobDiff{blobDiff("a"), blobDiff("missing")}}
	assert.False(t, c.ContainsAllBlobs(blobSet("a")))
}

func TestAllBlobsExist(t *testing.T) {
	a := []BlobDiff{blobDiff("a"), blobDiff("b")}
	assert.True(t, AllBlobsExist(a, []BlobDiff{blobDiff("a"), blobDiff("b"), blobDiff("c")}))
	assert.False(t, AllBlobsExist(a, []BlobDiff{blobDiff("a")}))
}

package historyfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func filterPaths(paths []string, rules []Rule, defaultInclude bool) []string {
	var kept []string
	for _, p := range paths {
		path := p
		if ShouldUseFile(&path, rules, defaultInclude) {
			kept = append(kept, path)
		}
	}
	return kept
}

func TestShouldUseFileRename(t *testing.T) {
	rules := []Rule{RenameRule("a.txt", "b.txt")}
	got := filterPaths([]string{"a.txt"}, rules, false)
	assert.Equal(t, []string{"b.txt"}, got)
}

func TestShouldUseFileRenameToRoot(t *testing.T) {
	rules := []Rule{RenameRule("src/", "")}
	got := filterPaths([]string{"src/a.txt", "src/b.txt"}, rules, false)
	assert.Equal(t, []string{"a.txt", "b.txt"}, got)
}

func TestShouldUseFileHandlesQuotedSpaces(t *testing.T) {
	rules := []Rule{RenameRule("my folder/", "nospace/")}
	got := filterPaths([]string{`"my folder/a.txt"`, `"my folder/b.txt"`}, rules, false)
	assert.Equal(t, []string{"nospace/a.txt", "nospace/b.txt"}, got)
}

func TestShouldUseFileReaddsQuotesWhenStillSpaced(t *testing.T) {
	rules := []Rule{RenameRule("my folder/", "with space/")}
	got := filterPaths([]string{`"my folder/a.txt"`, `"my folder/b.txt"`}, rules, false)
	assert.Equal(t, []string{`"with space/a.txt"`, `"with space/b.txt"`}, got)
}

func TestShouldUseFileIncludeExcludeOrderMatters(t *testing.T) {
	include := IncludeRule("src/")
	exclude := ExcludeRule("src/b")

	got := filterPaths([]string{"src/a/", "src/b/"}, []Rule{include, exclude}, false)
	assert.Equal(t, []string{"src/a/"}, got)

	got = filterPaths([]string{"src/a/", "src/b/"}, []Rule{exclude, include}, false)
	assert.Equal(t, []string{"src/a/", "src/b/"}, got)
}

func TestShouldUseFileExactExcludeShortCircuitsRegardlessOfOrder(t *testing.T) {
	include := IncludeRule("src/")
	exclude := ExcludeRule("src/b/")

	got := filterPaths([]string{"src/a/", "src/b/"}, []Rule{exclude, include}, false)
	assert.Equal(t, []string{"src/a/"}, got)
}

func TestShouldUseFileOrderingAcrossIncludeExcludeRename(t *testing.T) {
	rules := []Rule{
		RenameRule("lib/src/", ""),
		ExcludeRule("lib/src/a.b"),
		RenameRule("lib/src/a.b.c", "a.q"),
		ExcludeRule("lib/src/xyz/something.txt"),
	}
	got := filterPaths([]string{
		"lib/src/a.txt",
		"lib/src/a.b",
		"lib/src/a.b.c",
		"lib/src/xyz/hello.txt",
		"lib/src/xyz/something.txt",
	}, rules, false)
	assert.Equal(t, []string{"a.txt", "a.q", "xyz/hello.txt"}, got)
}

func TestShouldUseFileOrderingWithRenameBeforeExclude(t *testing.T) {
	rules := []Rule{
		RenameRule("lib/src/", ""),
		ExcludeRule("lib/src/a.b.c"),
		RenameRule("lib/src/a.b", "a.q"),
		ExcludeRule("lib/src/xyz/something.txt"),
	}
	got := filterPaths([]string{
		"lib/src/a.txt",
		"lib/src/a.b",
		"lib/src/a.b.c",
		"lib/src/xyz/hello.txt",
		"lib/src/xyz/something.txt",
	}, rules, false)
	assert.Equal(t, []string{"a.txt", "a.q", "xyz/hello.txt"}, got)
}

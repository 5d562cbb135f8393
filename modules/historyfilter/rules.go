package historyfilter

import (
	"strings"

	shellquote "github.com/kballard/go-shellquote"
)

// RuleKind identifies which of the three path filter behaviors a Rule
// applies.
type RuleKind int

const (
	Include RuleKind = iota
	Exclude
	Rename
)

// Rule is one ordered path filter directive. Src is the prefix an
// Include/Exclude rule matches, or the source prefix a Rename replaces;
// Dest is only meaningful for Rename.
type Rule struct {
	Kind RuleKind
	Src  string
	Dest string
}

func IncludeRule(prefix string) Rule { return Rule{Kind: Include, Src: prefix} }
func ExcludeRule(prefix string) Rule { return Rule{Kind: Exclude, Src: prefix} }
func RenameRule(src, dest string) Rule {
	return Rule{Kind: Rename, Src: src, Dest: dest}
}

// ShouldUseFile applies rules in order to *path and reports whether the
// path should be kept. Rules are evaluated left to right: Include/Exclude
// toggle a running keep/drop decision, an exact-match Exclude returns
// false immediately (no later rule can override it), and a matching
// Rename is staged and applied only once, after every rule has run, so
// that a rule deciding to exclude the pre-rename path still works even
// though a later rule renames it.
//
// git fast-export wraps any path containing a space in double quotes;
// ShouldUseFile strips that wrapping before matching (using shellquote to
// correctly unescape it) and re-applies its own quoting afterward if the
// surviving path still contains a space.
func ShouldUseFile(path *string, rules []Rule, defaultInclude bool) bool {
	raw := *path
	checkPath := raw
	reAddQuotes := false

	if len(raw) >= 2 && strings.HasPrefix(raw, `"`) && strings.HasSuffix(raw, `"`) {
		reAddQuotes = true
		if words, err := shellquote.Split(raw); err == nil && len(words) == 1 {
			checkPath = words[0]
		} else {
			checkPath = raw[1 : len(raw)-1]
		}
	}

	shouldKeep := defaultInclude
	var replacement string
	hasReplacement := false

	for _, rule := range rules {
		switch rule.Kind {
		case Include:
			if strings.HasPrefix(checkPath, rule.Src) {
				shouldKeep = true
			}
		case Exclude:
			if strings.HasPrefix(checkPath, rule.Src) {
				if checkPath == rule.Src {
					return false
				}
				shouldKeep = false
			}
		case Rename:
			if strings.HasPrefix(checkPath, rule.Src) {
				replacement = strings.Replace(checkPath, rule.Src, rule.Dest, 1)
				hasReplacement = true
				shouldKeep = true
			}
		}
	}

	if hasReplacement && shouldKeep {
		checkPath = replacement
	}

	if shouldKeep && reAddQuotes && strings.Contains(checkPath, " ") {
		checkPath = `"` + checkPath + `"`
	}

	*path = checkPath
	return shouldKeep
}

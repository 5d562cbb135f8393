// Package main is a thin demonstrator binary wiring the filter engine and
// the A/B differencer together behind two subcommands. The declarative
// rules-file format, interactive sync prompts, and a full flag grammar are
// out of scope; this exists to give the engine packages a runnable entry
// point, not to be a complete CLI product.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/gitsplit-io/gitsplit/modules/gitsplitconfig"
	"github.com/gitsplit-io/gitsplit/modules/gitsplitprogress"
	"github.com/gitsplit-io/gitsplit/modules/historyfilter"
	"github.com/gitsplit-io/gitsplit/modules/topbase"
	"github.com/gitsplit-io/gitsplit/modules/trace"
	"github.com/sirupsen/logrus"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(127)
	}
	var err error
	switch os.Args[1] {
	case "filter":
		err = runFilter(os.Args[2:])
	case "topbase":
		err = runTopbase(os.Args[2:])
	default:
		usage()
		os.Exit(127)
	}
	if err != nil {
		logrus.Errorf("%v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: gitsplit <filter|topbase> [flags]")
}

func configureLogging(cfg *gitsplitconfig.Config) {
	if level, lerr := logrus.ParseLevel(cfg.LogLevel); lerr == nil {
		logrus.SetLevel(level)
	}
	if cfg.LogFormat == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
}

// ruleFlags accumulates -include/-exclude/-rename flags in the order they
// appeared on the command line, since rule order is meaningful.
type ruleFlags struct {
	rules []historyfilter.Rule
}

func (r *ruleFlags) includeVar() flag.Value { return ruleAdder{r, historyfilter.Include} }
func (r *ruleFlags) excludeVar() flag.Value { return ruleAdder{r, historyfilter.Exclude} }
func (r *ruleFlags) renameVar() flag.Value  { return ruleAdder{r, historyfilter.Rename} }

type ruleAdder struct {
	r    *ruleFlags
	kind historyfilter.RuleKind
}

func (a ruleAdder) String() string { return "" }

func (a ruleAdder) Set(value string) error {
	switch a.kind {
	case historyfilter.Include:
		a.r.rules = append(a.r.rules, historyfilter.IncludeRule(value))
	case historyfilter.Exclude:
		a.r.rules = append(a.r.rules, historyfilter.ExcludeRule(value))
	case historyfilter.Rename:
		src, dest, ok := strings.Cut(value, ":")
		if !ok {
			return fmt.Errorf("gitsplit: -rename wants src:dest, got %q", value)
		}
		a.r.rules = append(a.r.rules, historyfilter.RenameRule(src, dest))
	}
	return nil
}

func runFilter(args []string) error {
	fs := flag.NewFlagSet("filter", flag.ExitOnError)
	repoPath := fs.String("repo", ".", "path to the repository to rewrite")
	branch := fs.String("branch", "", "branch to export (defaults to master)")
	withBlobs := fs.Bool("with-blobs", true, "export blob content (disable for a tree-shape-only dry run)")
	defaultInclude := fs.Bool("default-include", false, "keep a path when no rule matches it")
	configPath := fs.String("config", "", "path to an engine tunables TOML file")
	quiet := fs.Bool("quiet", false, "disable the progress bar")
	debug := fs.Bool("debug", false, "print per-step timing to stderr")

	rules := &ruleFlags{}
	fs.Var(rules.includeVar(), "include", "keep paths under this prefix (repeatable)")
	fs.Var(rules.excludeVar(), "exclude", "drop paths under this prefix (repeatable)")
	fs.Var(rules.renameVar(), "rename", "rewrite paths under src to dest, given as src:dest (repeatable)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(rules.rules) == 0 {
		return fmt.Errorf("gitsplit filter: no -include/-exclude/-rename rules given")
	}

	tracker := trace.NewTracker(*debug)
	dbg := trace.NewDebuger(*debug)

	cfg, err := gitsplitconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("gitsplit filter: load config: %w", err)
	}
	configureLogging(cfg)
	tracker.StepNext("load config")
	dbg.DbgPrint("filter: %d rule(s), default-include=%v", len(rules.rules), *defaultInclude)

	bar := gitsplitprogress.New("filtering", *quiet)
	defer bar.Done()

	err = historyfilter.Run(context.Background(), historyfilter.Options{
		RepoPath:       *repoPath,
		Branch:         *branch,
		WithBlobs:      *withBlobs,
		DefaultInclude: *defaultInclude,
		Workers:        cfg.Workers,
	}, rules.rules)
	tracker.StepNext("filter run")
	return err
}

func runTopbase(args []string) error {
	fs := flag.NewFlagSet("topbase", flag.ExitOnError)
	repoPath := fs.String("repo", ".", "path to the repository")
	configPath := fs.String("config", "", "path to an engine tunables TOML file")
	verify := fs.Bool("verify", false, "only report whether A is losslessly contained in B")
	debug := fs.Bool("debug", false, "print per-step timing to stderr")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("gitsplit topbase: usage: gitsplit topbase [flags] <a> <b>")
	}
	a, b := fs.Arg(0), fs.Arg(1)

	tracker := trace.NewTracker(*debug)
	dbg := trace.NewDebuger(*debug)

	cfg, err := gitsplitconfig.Load(*configPath)
	if err != nil {
		return fmt.Errorf("gitsplit topbase: load config: %w", err)
	}
	configureLogging(cfg)
	tracker.StepNext("load config")

	ctx := context.Background()

	if *verify {
		lossless, missing, err := topbase.Verify(ctx, *repoPath, a, b)
		tracker.StepNext("verify %s in %s", a, b)
		if err != nil {
			return err
		}
		if lossless {
			fmt.Printf("%s is fully contained in %s\n", a, b)
			return nil
		}
		fmt.Printf("%s is missing %d commit(s) from %s:\n", a, len(missing), b)
		for _, c := range missing {
			fmt.Printf("  %s %s\n", c.Hash, c.Summary)
		}
		return nil
	}

	mode, err := cfg.ResolveTraversalMode()
	if err != nil {
		return err
	}
	dbg.DbgPrint("topbase: comparing %s against %s in mode %v", a, b, mode)
	aOnly, bOnly, err := topbase.FindDifference(ctx, *repoPath, a, b, mode)
	tracker.StepNext("find difference")
	if err != nil {
		return err
	}
	printGroups(a, aOnly)
	printGroups(b, bOnly)
	return nil
}

func printGroups(side string, groups []topbase.ConsecutiveCommitGroup) {
	fmt.Printf("commits only on %s:\n", side)
	for _, group := range groups {
		for _, c := range group.Commits {
			fmt.Printf("  %s %s\n", c.Hash, c.Summary)
		}
	}
}

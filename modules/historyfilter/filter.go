package historyfilter

import (
	"context"
	"fmt"

	"github.com/gitsplit-io/gitsplit/modules/fastexport"
)

// Options configures one end-to-end filter run.
type Options struct {
	RepoPath       string
	Branch         string // defaults to "master"
	WithBlobs      bool
	DefaultInclude bool
	Workers        int // 0 picks fastexport.Workers()
}

// Run streams RepoPath's history out through `git fast-export`, applies
// rules to every commit, and streams the result into `git fast-import`,
// rewriting the branch in place. It returns once fast-import has finished
// applying the rewritten stream.
func Run(ctx context.Context, opts Options, rules []Rule) error {
	exporter, err := fastexport.Start(ctx, fastexport.Options{
		RepoPath:  opts.RepoPath,
		Branch:    opts.Branch,
		WithBlobs: opts.WithBlobs,
	})
	if err != nil {
		return err
	}

	importer, err := StartImporter(ctx, opts.RepoPath)
	if err != nil {
		_ = exporter.Kill()
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = fastexport.Workers()
	}

	state := New()
	splitter := fastexport.NewSplitter(exporter.Reader())

	dispatchErr := fastexport.Dispatch(ctx, workers, fastexport.SplitterSource(splitter), func(obj fastexport.StructuredObject) error {
		switch obj.Kind {
		case fastexport.ObjectBlob:
			return fastexport.WriteObject(importer, obj)

		case fastexport.ObjectCommit:
			used, err := Perform(state, opts.DefaultInclude, &obj.Commit, rules)
			if err != nil {
				return fmt.Errorf("historyfilter: %w", err)
			}
			if !state.HaveUsedACommit() && used {
				state.MarkUsed()
			}
			if !used {
				return nil
			}
			return fastexport.WriteObject(importer, obj)

		default: // ObjectNone: a bare reset, always passed through
			return fastexport.WriteObject(importer, obj)
		}
	})

	closeErr := importer.Close()
	waitErr := importer.Wait()
	exportWaitErr := exporter.Wait()

	switch {
	case dispatchErr != nil:
		_ = exporter.Kill()
		return dispatchErr
	case closeErr != nil:
		return closeErr
	case waitErr != nil:
		return waitErr
	default:
		return exportWaitErr
	}
}

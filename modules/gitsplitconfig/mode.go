package gitsplitconfig

import (
	"fmt"

	"github.com/gitsplit-io/gitsplit/modules/topbase"
)

// ResolveTraversalMode maps the config's string tunable onto the
// topbase.TraversalMode the differencer actually takes, so a CLI layer
// never needs to know the topbase package's enum values directly.
func (c *Config) ResolveTraversalMode() (topbase.TraversalMode, error) {
	switch c.TraversalMode {
	case "", "topbase":
		return topbase.Topbase, nil
	case "topbase-rewind":
		return topbase.TopbaseRewind, nil
	case "fullbase":
		return topbase.Fullbase, nil
	default:
		return topbase.Topbase, fmt.Errorf("gitsplitconfig: unknown traversal_mode %q", c.TraversalMode)
	}
}

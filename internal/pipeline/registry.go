package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"seoggi/internal/config"
	"seoggi/internal/passes"
	"seoggi/internal/passes/constfold"
	"seoggi/internal/passes/dce"
	"seoggi/internal/passes/inline"
)

type passFactory func(cfg *config.Config) passes.Pass

var registry = map[string]passFactory{
	constfold.Name: func(*config.Config) passes.Pass {
		return constfold.New()
	},
	dce.Name: func(cfg *config.Config) passes.Pass {
		return dce.New(cfg.DCE.MaxIterations)
	},
	inline.Name: func(cfg *config.Config) passes.Pass {
		return inline.New(cfg.Inline.SizeThreshold, cfg.Inline.ExceptionsEnabled)
	},
}

// KnownPasses returns the names accepted in pipeline.passes, sorted.
func KnownPasses() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// NewPass builds the named transformation pass from cfg.
func NewPass(name string, cfg *config.Config) (passes.Pass, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown pass %q (known: %s)", name, strings.Join(KnownPasses(), ", "))
	}
	return factory(cfg), nil
}

package passes

import "sync"

type cacheKey struct {
	analysis string
	function string
}

// AnalysisCache stores analysis results keyed by analysis name and
// function name. Module-wide results use the empty function name. An
// analysis is valid once its pass ran and until a pass invalidates it.
type AnalysisCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]any
	valid   map[string]bool
}

func NewAnalysisCache() *AnalysisCache {
	return &AnalysisCache{
		entries: make(map[cacheKey]any),
		valid:   make(map[string]bool),
	}
}

// Get returns the cached result of analysis for function.
func (c *AnalysisCache) Get(analysis, function string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[cacheKey{analysis, function}]
	return v, ok
}

// Put stores a result.
func (c *AnalysisCache) Put(analysis, function string, v any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{analysis, function}] = v
}

// MarkValid records that analysis has been computed for the whole module.
func (c *AnalysisCache) MarkValid(analysis string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.valid[analysis] = true
}

// Valid reports whether analysis is computed and not invalidated.
func (c *AnalysisCache) Valid(analysis string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.valid[analysis]
}

// Invalidate drops every result of analysis.
func (c *AnalysisCache) Invalidate(analysis string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.valid, analysis)
	for k := range c.entries {
		if k.analysis == analysis {
			delete(c.entries, k)
		}
	}
}

// Clear drops everything.
func (c *AnalysisCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[cacheKey]any)
	c.valid = make(map[string]bool)
}

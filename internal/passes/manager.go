package passes

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/tliron/commonlog"

	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/safety"
)

// PassStats summarizes what a pass did across runs of one Manager.
type PassStats struct {
	Name     string
	Runs     int
	Modified int
	Duration time.Duration
}

// Manager registers passes, orders them by dependency and runs them over a
// module. It is the only mutator of the module during Run.
type Manager struct {
	// VerifyModified fingerprints the module around every pass and fails
	// with UnreportedModification when a pass changed the IR but reported
	// no modification.
	VerifyModified bool

	passes  []Pass
	byName  map[string]Pass
	checker safety.Checker
	cache   *AnalysisCache
	metrics *metrics.Set
	stats   map[string]*PassStats
	diags   *diagnostics.DiagnosticBag
	log     commonlog.Logger
	lastRun string
}

// NewManager returns an empty manager. A nil checker selects the default
// safety checker.
func NewManager(checker safety.Checker) *Manager {
	if checker == nil {
		checker = safety.New()
	}
	return &Manager{
		byName:  make(map[string]Pass),
		checker: checker,
		cache:   NewAnalysisCache(),
		metrics: metrics.NewSet(),
		stats:   make(map[string]*PassStats),
		diags:   diagnostics.NewDiagnosticBag(),
		log:     commonlog.GetLogger("seoggi.passes"),
	}
}

// AddPass registers p. Every name p requires must already be registered.
// The pass's own safety pre-check runs before the registration is kept.
func (m *Manager) AddPass(p Pass) error {
	name := p.Name()
	if _, dup := m.byName[name]; dup {
		return diagnostics.Errorf(diagnostics.DuplicatePass, name, "pass %q is already registered", name)
	}
	for _, req := range p.Requires() {
		if _, ok := m.byName[req]; !ok {
			return diagnostics.Errorf(diagnostics.MissingPassDependency, name, "pass %q requires %q, which is not registered", name, req)
		}
	}

	m.passes = append(m.passes, p)
	m.byName[name] = p
	if err := p.VerifySafety(m.newContext(nil, name)); err != nil {
		m.rollback(1)
		return fmt.Errorf("registering pass %s: %w", name, err)
	}
	m.log.Debugf("registered pass %s", name)
	return nil
}

// AddPasses registers a batch. Requirements may be satisfied by any pass in
// the batch, so the batch can be given in any order. Dependency cycles
// within the batch are accepted here and reported by SortPasses. On error
// nothing from the batch stays registered.
func (m *Manager) AddPasses(ps ...Pass) error {
	batch := make(map[string]bool, len(ps))
	for _, p := range ps {
		name := p.Name()
		if _, dup := m.byName[name]; dup || batch[name] {
			return diagnostics.Errorf(diagnostics.DuplicatePass, name, "pass %q is already registered", name)
		}
		batch[name] = true
	}
	for _, p := range ps {
		for _, req := range p.Requires() {
			if _, ok := m.byName[req]; !ok && !batch[req] {
				return diagnostics.Errorf(diagnostics.MissingPassDependency, p.Name(), "pass %q requires %q, which is not registered", p.Name(), req)
			}
		}
	}

	for _, p := range ps {
		m.passes = append(m.passes, p)
		m.byName[p.Name()] = p
	}
	for _, p := range ps {
		if err := p.VerifySafety(m.newContext(nil, p.Name())); err != nil {
			m.rollback(len(ps))
			return fmt.Errorf("registering pass %s: %w", p.Name(), err)
		}
		m.log.Debugf("registered pass %s", p.Name())
	}
	return nil
}

func (m *Manager) rollback(n int) {
	for _, p := range m.passes[len(m.passes)-n:] {
		delete(m.byName, p.Name())
	}
	m.passes = m.passes[:len(m.passes)-n]
}

// Passes returns the registered passes in registration order.
func (m *Manager) Passes() []Pass {
	return append([]Pass(nil), m.passes...)
}

// SortPasses returns the passes in an order where every pass comes after
// the passes it requires. Unconstrained passes keep registration order.
func (m *Manager) SortPasses() ([]Pass, error) {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, len(m.passes))
	order := make([]Pass, 0, len(m.passes))

	var visit func(name, from string) error
	visit = func(name, from string) error {
		p, ok := m.byName[name]
		if !ok {
			return diagnostics.Errorf(diagnostics.MissingPassDependency, from, "pass %q requires %q, which is not registered", from, name)
		}
		switch color[name] {
		case grey:
			return diagnostics.Errorf(diagnostics.CyclicPassDependency, name, "pass %q transitively requires itself", name)
		case black:
			return nil
		}
		color[name] = grey
		for _, req := range p.Requires() {
			if err := visit(req, name); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, p)
		return nil
	}

	for _, p := range m.passes {
		if err := visit(p.Name(), ""); err != nil {
			return nil, err
		}
	}
	return order, nil
}

// Run executes every registered pass over mod in dependency order. The
// first failure aborts the run and is returned.
func (m *Manager) Run(mod *mir.Module) error {
	if mod == nil {
		return diagnostics.Errorf(diagnostics.MalformedIR, "", "nil module")
	}
	order, err := m.SortPasses()
	if err != nil {
		return err
	}

	m.lastRun = uuid.NewString()
	m.cache.Clear()
	m.log.Infof("run %s: %d pass(es) over module %s", m.lastRun, len(order), mod.Name)

	for _, p := range order {
		if err := m.runPass(p, mod); err != nil {
			m.counter("seoggi_pass_failures_total", p.Name()).Inc()
			m.log.Errorf("run %s: pass %s failed: %s", m.lastRun, p.Name(), err)
			return err
		}
	}
	m.log.Infof("run %s: done", m.lastRun)
	return nil
}

func (m *Manager) runPass(p Pass, mod *mir.Module) error {
	name := p.Name()
	if _, isAnalysis := p.(Analysis); isAnalysis && m.cache.Valid(name) {
		m.log.Debugf("analysis %s is up to date", name)
		return nil
	}

	for _, req := range p.Requires() {
		if err := m.ensureAnalysis(req, mod); err != nil {
			return err
		}
	}

	ctx := m.newContext(mod, name)
	if err := p.VerifySafety(ctx); err != nil {
		return annotate(name, err)
	}

	var before uint64
	if m.VerifyModified {
		before = mir.Fingerprint(mod)
	}

	start := time.Now()
	modified, err := p.RunOnModule(ctx, mod)
	m.record(name, modified, start)
	if err != nil {
		return annotate(name, err)
	}

	if _, isAnalysis := p.(Analysis); isAnalysis {
		m.cache.MarkValid(name)
	}

	if !modified {
		if m.VerifyModified && mir.Fingerprint(mod) != before {
			return diagnostics.Errorf(diagnostics.UnreportedModification, name, "pass changed the module but reported no modification")
		}
		m.log.Debugf("pass %s: no change", name)
		return nil
	}

	if err := m.checker.VerifyAll(mod); err != nil {
		return diagnostics.Wrap(diagnostics.VerificationFailed, name, err)
	}
	for _, inv := range p.Invalidates() {
		m.cache.Invalidate(inv)
	}
	m.log.Debugf("pass %s: modified module, invalidated %v", name, p.Invalidates())
	return nil
}

// ensureAnalysis re-runs name, and the analyses it depends on, when an
// earlier pass invalidated it. Transformation passes are left alone: the
// sort already placed them before their dependents.
func (m *Manager) ensureAnalysis(name string, mod *mir.Module) error {
	p, ok := m.byName[name]
	if !ok {
		return diagnostics.Errorf(diagnostics.MissingPassDependency, "", "%q is not registered", name)
	}
	a, isAnalysis := p.(Analysis)
	if !isAnalysis || m.cache.Valid(name) {
		return nil
	}
	for _, req := range a.Requires() {
		if err := m.ensureAnalysis(req, mod); err != nil {
			return err
		}
	}
	m.log.Debugf("recomputing analysis %s", name)
	start := time.Now()
	_, err := a.RunOnModule(m.newContext(mod, name), mod)
	m.record(name, false, start)
	if err != nil {
		return annotate(name, err)
	}
	m.cache.MarkValid(name)
	return nil
}

func (m *Manager) newContext(mod *mir.Module, pass string) *Context {
	return &Context{
		Module:  mod,
		Checker: m.checker,
		Cache:   m.cache,
		Log:     m.log,
		Diags:   m.diags,
		Pass:    pass,
	}
}

func (m *Manager) record(name string, modified bool, start time.Time) {
	st := m.stats[name]
	if st == nil {
		st = &PassStats{Name: name}
		m.stats[name] = st
	}
	st.Runs++
	st.Duration += time.Since(start)
	m.counter("seoggi_pass_runs_total", name).Inc()
	m.metrics.GetOrCreateHistogram(fmt.Sprintf(`seoggi_pass_duration_seconds{pass=%q}`, name)).UpdateDuration(start)
	if modified {
		st.Modified++
		m.counter("seoggi_pass_modifications_total", name).Inc()
	}
}

func (m *Manager) counter(metric, pass string) *metrics.Counter {
	return m.metrics.GetOrCreateCounter(fmt.Sprintf(`%s{pass=%q}`, metric, pass))
}

// Stats returns per-pass statistics in registration order.
func (m *Manager) Stats() []PassStats {
	out := make([]PassStats, 0, len(m.stats))
	for _, p := range m.passes {
		if st, ok := m.stats[p.Name()]; ok {
			out = append(out, *st)
		}
	}
	return out
}

// Diagnostics returns the warnings passes raised during runs of m.
func (m *Manager) Diagnostics() *diagnostics.DiagnosticBag {
	return m.diags
}

// Cache exposes the analysis cache, mainly for inspection in tests.
func (m *Manager) Cache() *AnalysisCache {
	return m.cache
}

// RunID returns the id of the most recent Run.
func (m *Manager) RunID() string {
	return m.lastRun
}

// WriteMetrics writes the per-pass metrics in Prometheus text format.
func (m *Manager) WriteMetrics(w io.Writer) {
	m.metrics.WritePrometheus(w)
}

// Modified reports how many times name modified the module.
func (m *Manager) Modified(name string) int {
	if st, ok := m.stats[name]; ok {
		return st.Modified
	}
	return 0
}

// annotate names the pass in errors that do not carry it already.
func annotate(pass string, err error) error {
	var perr *diagnostics.PassError
	if errors.As(err, &perr) {
		if perr.Pass == "" {
			perr.Pass = pass
		}
		return err
	}
	return fmt.Errorf("pass %s: %w", pass, err)
}

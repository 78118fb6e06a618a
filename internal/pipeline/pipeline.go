package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/tliron/commonlog"

	"seoggi/colors"
	"seoggi/internal/config"
	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
	"seoggi/internal/phase"
	"seoggi/internal/safety"
)

// Pipeline coordinates one optimization run over a module.
type Pipeline struct {
	cfg     *config.Config
	checker safety.Checker
	manager *passes.Manager
	diags   *diagnostics.DiagnosticBag

	module *mir.Module
	phase  phase.ModulePhase

	// Debug prints phase progress to Out.
	Debug bool
	Out   io.Writer

	log commonlog.Logger
}

// New builds a pipeline from cfg. A nil cfg selects config.Defaults.
func New(cfg *config.Config, debug bool) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	selected := passes.Analyses()
	for _, name := range cfg.Pipeline.Passes {
		p, err := NewPass(name, cfg)
		if err != nil {
			return nil, err
		}
		selected = append(selected, p)
	}

	checker := safety.New()
	manager := passes.NewManager(checker)
	manager.VerifyModified = cfg.Pipeline.VerifyModified
	if err := manager.AddPasses(selected...); err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:     cfg,
		checker: checker,
		manager: manager,
		diags:   manager.Diagnostics(),
		Debug:   debug,
		Out:     os.Stdout,
		log:     commonlog.GetLogger("seoggi.pipeline"),
	}, nil
}

// Run verifies mod and runs every configured pass over it. Failures are
// returned and also recorded in Diagnostics, next to any warnings the
// passes raised.
func (p *Pipeline) Run(mod *mir.Module) error {
	p.diags.Clear()
	p.module = mod
	p.phase = phase.PhaseNotStarted
	if err := p.advance(phase.PhaseLoaded); err != nil {
		return err
	}

	if p.Debug {
		colors.CYAN.Fprintf(p.Out, "\n[Phase 1] Verify\n")
	}
	if err := p.checker.VerifyAll(mod); err != nil {
		return p.fail(diagnostics.Wrap(diagnostics.MalformedIR, "", err))
	}
	if err := p.advance(phase.PhaseVerified); err != nil {
		return err
	}
	if p.Debug {
		colors.PURPLE.Fprintf(p.Out, "  ✓ %s (%d functions)\n", moduleName(mod), len(mod.Functions))
	}

	if p.Debug {
		colors.CYAN.Fprintf(p.Out, "\n[Phase 2] Optimize\n")
	}
	if err := p.manager.Run(mod); err != nil {
		return p.fail(err)
	}
	if p.Debug {
		for _, st := range p.manager.Stats() {
			colors.PURPLE.Fprintf(p.Out, "  ✓ %s (%d modified)\n", st.Name, st.Modified)
		}
	}
	if err := p.advance(phase.PhaseOptimized); err != nil {
		return err
	}

	if p.Debug {
		colors.GREEN.Fprintf(p.Out, "\n✓ Optimization successful! (%d passes)\n", len(p.manager.Passes()))
	}
	return nil
}

func (p *Pipeline) fail(err error) error {
	p.diags.AddError(err)
	p.log.Errorf("%s", err)
	return err
}

func (p *Pipeline) advance(to phase.ModulePhase) error {
	if !phase.CanAdvance(p.phase, to) {
		return fmt.Errorf("cannot advance module %s from %s to %s", moduleName(p.module), p.phase, to)
	}
	p.phase = to
	p.log.Debugf("module %s: %s", moduleName(p.module), to)
	return nil
}

// Diagnostics returns the diagnostics collected by Run.
func (p *Pipeline) Diagnostics() *diagnostics.DiagnosticBag {
	return p.diags
}

func (p *Pipeline) Manager() *passes.Manager {
	return p.manager
}

func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Phase returns how far the last module got.
func (p *Pipeline) Phase() phase.ModulePhase {
	return p.phase
}

func moduleName(mod *mir.Module) string {
	if mod == nil || mod.Name == "" {
		return "<unknown>"
	}
	return mod.Name
}

package pipeline

import (
	"fmt"
	"os"

	"seoggi/internal/mir"
	"seoggi/internal/phase"
)

// LoadModule reads a CBOR-encoded module from path.
func LoadModule(path string) (*mir.Module, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}
	mod, err := mir.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("cannot decode %s: %w", path, err)
	}
	return mod, nil
}

// SaveModule writes mod to path in the CBOR interchange format.
func SaveModule(path string, mod *mir.Module) error {
	data, err := mir.Encode(mod)
	if err != nil {
		return fmt.Errorf("cannot encode module %s: %w", moduleName(mod), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	return nil
}

// RunFile loads the module at in, optimizes it and, when out is not
// empty, writes the result there.
func (p *Pipeline) RunFile(in, out string) (*mir.Module, error) {
	mod, err := LoadModule(in)
	if err != nil {
		return nil, p.fail(err)
	}
	if err := p.Run(mod); err != nil {
		return mod, err
	}
	if out == "" {
		return mod, nil
	}
	if err := SaveModule(out, mod); err != nil {
		return mod, p.fail(err)
	}
	if err := p.advance(phase.PhaseWritten); err != nil {
		return mod, err
	}
	p.log.Infof("wrote %s", out)
	return mod, nil
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/urfave/cli/v2"

	"seoggi/colors"
	"seoggi/internal/config"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
	"seoggi/internal/pipeline"
)

const version = "0.1.0"

func main() {
	app := &cli.App{
		Name:    "seoggi-opt",
		Usage:   "Optimize seoggi MIR modules",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:      "run",
				Usage:     "Run the optimization pipeline over a module",
				ArgsUsage: "<in.cbor>",
				Flags:     mergeFlags(globalFlags, runFlags),
				Action:    runAction,
			},
			{
				Name:      "print",
				Usage:     "Print a module as text",
				ArgsUsage: "<in.cbor>",
				Action: func(c *cli.Context) error {
					path, err := inputPath(c)
					if err != nil {
						return err
					}
					mod, err := pipeline.LoadModule(path)
					if err != nil {
						return err
					}
					fmt.Print(mir.FormatModule(mod))
					return nil
				},
			},
			{
				Name:  "passes",
				Usage: "List the available passes",
				Action: func(c *cli.Context) error {
					colors.CYAN.Println("Transformations:")
					for _, name := range pipeline.KnownPasses() {
						fmt.Printf("  %s\n", name)
					}
					colors.CYAN.Println("Analyses:")
					for _, p := range passes.Analyses() {
						fmt.Printf("  %s\n", p.Name())
					}
					return nil
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		colors.RED.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	in, err := inputPath(c)
	if err != nil {
		return err
	}
	cfg, err := loadConfig(c.String(flagConfig), filepath.Dir(in), c.StringSlice(flagPasses))
	if err != nil {
		return err
	}
	configureLogging(c, cfg)

	p, err := pipeline.New(cfg, c.Bool(flagDebug))
	if err != nil {
		return err
	}
	mod, err := p.RunFile(in, c.String(flagOut))
	if err != nil {
		p.Diagnostics().EmitAll()
		return cli.Exit("", 1)
	}

	if c.Bool(flagPrint) {
		fmt.Print(mir.FormatModule(mod))
	}
	if c.Bool(flagSummary) {
		p.PrintSummary(os.Stdout)
	}
	if path := c.String(flagMetrics); path != "" {
		if err := writeMetrics(p, path); err != nil {
			return err
		}
	}
	return nil
}

func inputPath(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one input module, got %d", c.NArg())
	}
	return c.Args().First(), nil
}

// loadConfig reads the explicit config file when given, otherwise searches
// upwards from dir. Passes named on the command line replace the configured
// pipeline.
func loadConfig(path, dir string, passNames []string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.FindAndLoad(dir)
	}
	if err != nil {
		return nil, err
	}

	if len(passNames) > 0 {
		var names []string
		for _, n := range passNames {
			for _, part := range strings.Split(n, ",") {
				if part = strings.TrimSpace(part); part != "" {
					names = append(names, part)
				}
			}
		}
		cfg.Pipeline.Passes = names
	}
	return cfg, cfg.Validate()
}

func configureLogging(c *cli.Context, cfg *config.Config) {
	verbosity := cfg.Log.Verbosity
	if v := c.Int(flagVerbosity); v >= 0 {
		verbosity = v
	}
	file := cfg.LogFile()
	if f := c.String(flagLogFile); f != "" {
		file = f
	}
	if file == "" {
		commonlog.Configure(verbosity, nil)
		return
	}
	commonlog.Configure(verbosity, &file)
}

func writeMetrics(p *pipeline.Pipeline, path string) error {
	if path == "-" {
		p.Manager().WriteMetrics(os.Stdout)
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()
	p.Manager().WriteMetrics(f)
	return nil
}

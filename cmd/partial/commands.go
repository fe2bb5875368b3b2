package main

import (
	"github.com/scott-cotton/cli"
)

func MainCommand() *cli.Command {
	cfg := &MainConfig{}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	cmd := cli.NewCommandAt(&cfg.Main, "partial").
		WithSynopsis("partial [opts] command [opts]").
		WithDescription("partial streams declarative partial updates into html documents\nand evaluates declarative route rules.").
		WithOpts(opts...).
		WithSubs(
			ApplyCommand(cfg),
			ExtractCommand(cfg),
			RoutesCommand(cfg),
			NavCommand(cfg))
	return cmd.WithRun(func(cc *cli.Context, args []string) error {
		cmd.Usage(cc, nil)
		return nil
	})
}

func ApplyCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ApplyConfig{MainConfig: mainCfg}
	opts, err := cli.StructOpts(cfg)
	if err != nil {
		panic(err)
	}
	opts = append(opts, &cli.Opt{
		Name:        "base",
		Description: "base document to patch (default empty document)",
		Type:        cli.NamedFuncOpt(stringOpt(&cfg.Base), "(filepath)"),
	})
	cmd := cli.NewCommand("apply").
		WithAliases("a").
		WithSynopsis("apply [-base doc.html] [-diff] [streams...]").
		WithDescription("Stream patch segments into a document and print the result").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return apply(cfg, cc, args)
		})
	cfg.Apply = cmd
	return cmd
}

func ExtractCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &ExtractConfig{MainConfig: mainCfg}
	opts := []*cli.Opt{
		{
			Name:        "base",
			Description: "base document holding the targets",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Base), "(filepath)"),
		},
		{
			Name:        "target",
			Description: "render only this target after extraction",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Target), "(id)"),
		},
	}
	cmd := cli.NewCommand("extract").
		WithAliases("x").
		WithSynopsis("extract -base doc.html [-target id] [streams...]").
		WithDescription("Extract only patch segments from piped markup, discarding the rest").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return extract(cfg, cc, args)
		})
	cfg.Extract = cmd
	return cmd
}

func RoutesCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &RoutesConfig{MainConfig: mainCfg}
	opts := []*cli.Opt{
		{
			Name:        "rules",
			Description: "yaml route rule set",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Rules), "(filepath)"),
		},
	}
	cmd := cli.NewCommand("routes").
		WithAliases("r").
		WithSynopsis("routes -rules rules.yaml url [urls...]").
		WithDescription("Evaluate a compiled route rule set against urls").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return routes(cfg, cc, args)
		})
	cfg.Routes = cmd
	return cmd
}

func NavCommand(mainCfg *MainConfig) *cli.Command {
	cfg := &NavConfig{MainConfig: mainCfg, Root: "."}
	opts := []*cli.Opt{
		{
			Name:        "rules",
			Description: "yaml route rule set",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Rules), "(filepath)"),
		},
		{
			Name:        "base",
			Description: "base document to patch",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Base), "(filepath)"),
		},
		{
			Name:        "root",
			Description: "directory patch sources are fetched from",
			Type:        cli.NamedFuncOpt(stringOpt(&cfg.Root), "(dir)"),
		},
	}
	cmd := cli.NewCommand("nav").
		WithAliases("n").
		WithSynopsis("nav -rules rules.yaml -base doc.html <from> <to>").
		WithDescription("Simulate an intercepted navigation with file-backed fetches").
		WithOpts(opts...).
		WithRun(func(cc *cli.Context, args []string) error {
			return navRun(cfg, cc, args)
		})
	cfg.Nav = cmd
	return cmd
}

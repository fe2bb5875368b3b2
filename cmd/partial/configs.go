package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/scott-cotton/cli"

	"github.com/dbaron/declarative-partial-updates/dom"
)

type MainConfig struct {
	Color bool `cli:"name=color desc='force color output'"`

	Main *cli.Command
}

func (cfg *MainConfig) setupColor() {
	if cfg.Color {
		color.NoColor = false
		return
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

type ApplyConfig struct {
	*MainConfig
	Diff bool `cli:"name=diff desc='print a diff of the document instead of the result'"`

	Base string

	Apply *cli.Command
}

type ExtractConfig struct {
	*MainConfig

	Base   string
	Target string

	Extract *cli.Command
}

type RoutesConfig struct {
	*MainConfig

	Rules string

	Routes *cli.Command
}

type NavConfig struct {
	*MainConfig

	Rules string
	Base  string
	Root  string

	Nav *cli.Command
}

func stringOpt(dst *string) cli.FuncOpt {
	return cli.FuncOpt(func(_ *cli.Context, v string) (any, error) {
		*dst = v
		return v, nil
	})
}

func loadDocument(path string) (*dom.Document, error) {
	if path == "" {
		return dom.NewDocument(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	defer f.Close()
	doc, err := dom.ParseDocument(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	return doc, nil
}

func openArg(cc *cli.Context, path string) (io.Reader, func() error, error) {
	if path == "-" {
		return cc.In, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open %q: %w", path, err)
	}
	return f, f.Close, nil
}

package main

import (
	"fmt"

	"github.com/scott-cotton/cli"

	partial "github.com/dbaron/declarative-partial-updates"
	"github.com/dbaron/declarative-partial-updates/dom"
)

func extract(cfg *ExtractConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Extract.Parse(cc, args)
	if err != nil {
		cfg.Extract.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Base == "" {
		return fmt.Errorf("%w: extract requires -base", cli.ErrUsage)
	}
	doc, err := loadDocument(cfg.Base)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		r, closeArg, err := openArg(cc, arg)
		if err != nil {
			return err
		}
		_, err = partial.Extract(doc, doc.Root, r)
		closeArg()
		if err != nil {
			return err
		}
	}
	out := doc.Root
	if cfg.Target != "" {
		out = doc.ElementByID(cfg.Target)
		if out == nil {
			return fmt.Errorf("no element with id %q", cfg.Target)
		}
	}
	if err := dom.Render(cc.Out, out); err != nil {
		return err
	}
	_, err = cc.Out.Write([]byte("\n"))
	return err
}

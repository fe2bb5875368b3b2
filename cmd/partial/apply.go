package main

import (
	"strings"

	"github.com/scott-cotton/cli"
	"github.com/sergi/go-diff/diffmatchpatch"

	partial "github.com/dbaron/declarative-partial-updates"
	"github.com/dbaron/declarative-partial-updates/dom"
)

func apply(cfg *ApplyConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Apply.Parse(cc, args)
	if err != nil {
		cfg.Apply.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	cfg.setupColor()
	doc, err := loadDocument(cfg.Base)
	if err != nil {
		return err
	}
	var before string
	if cfg.Diff {
		before = doc.Root.String()
	}
	if len(args) == 0 {
		args = []string{"-"}
	}
	for _, arg := range args {
		r, closeArg, err := openArg(cc, arg)
		if err != nil {
			return err
		}
		_, err = partial.Apply(doc, r)
		closeArg()
		if err != nil {
			return err
		}
	}
	if cfg.Diff {
		dmp := diffmatchpatch.New()
		diffs := dmp.DiffMain(before, doc.Root.String(), false)
		_, err := cc.Out.Write([]byte(dmp.DiffPrettyText(diffs)))
		return err
	}
	var sb strings.Builder
	if err := dom.Render(&sb, doc.Root); err != nil {
		return err
	}
	_, err = cc.Out.Write([]byte(sb.String() + "\n"))
	return err
}

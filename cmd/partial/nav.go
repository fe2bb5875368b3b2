package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/scott-cotton/cli"

	"github.com/dbaron/declarative-partial-updates/dom"
	"github.com/dbaron/declarative-partial-updates/nav"
	"github.com/dbaron/declarative-partial-updates/patch"
	"github.com/dbaron/declarative-partial-updates/route"
)

func navRun(cfg *NavConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Nav.Parse(cc, args)
	if err != nil {
		cfg.Nav.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Rules == "" || len(args) != 2 {
		return fmt.Errorf("%w: nav requires -rules and exactly <from> <to>", cli.ErrUsage)
	}
	cfg.setupColor()
	from, err := url.Parse(args[0])
	if err != nil {
		return fmt.Errorf("bad url %q: %w", args[0], err)
	}
	to, err := url.Parse(args[1])
	if err != nil {
		return fmt.Errorf("bad url %q: %w", args[1], err)
	}
	table, err := loadTable(cfg.Rules)
	if err != nil {
		return err
	}
	doc, err := loadDocument(cfg.Base)
	if err != nil {
		return err
	}
	unsub := table.Subscribe(func(changes []route.Change) {
		for _, ch := range changes {
			state := "inactive"
			if ch.Active {
				state = "active"
			}
			fmt.Fprintf(cc.Out, "route %s -> %s\n", ch.Rule, state)
		}
	})
	defer unsub()
	reg := patch.NewRegistry(doc)
	ic := nav.NewInterceptor(table, reg, fileFetcher(cfg.Root), from)
	handled, err := ic.Navigate(context.Background(), to)
	if err != nil {
		return err
	}
	if !handled {
		fmt.Fprintf(cc.Out, "not intercepted: %s\n", to)
		return nil
	}
	if err := dom.Render(cc.Out, doc.Root); err != nil {
		return err
	}
	_, err = cc.Out.Write([]byte("\n"))
	return err
}

// fileFetcher serves patch sources from a local directory, keyed by
// url path.
func fileFetcher(root string) nav.Fetcher {
	return nav.FetchFunc(func(_ context.Context, u *url.URL) (io.ReadCloser, error) {
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(u.Path)))
		if err != nil {
			return nil, err
		}
		return f, nil
	})
}

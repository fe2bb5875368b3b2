package main

import (
	"fmt"
	"net/url"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/scott-cotton/cli"

	"github.com/dbaron/declarative-partial-updates/route"
)

func routes(cfg *RoutesConfig, cc *cli.Context, args []string) error {
	args, err := cfg.Routes.Parse(cc, args)
	if err != nil {
		cfg.Routes.Usage(cc, err)
		return cli.ExitCodeErr(1)
	}
	if cfg.Rules == "" {
		return fmt.Errorf("%w: routes requires -rules", cli.ErrUsage)
	}
	if len(args) == 0 {
		return fmt.Errorf("%w: routes requires at least one url", cli.ErrUsage)
	}
	cfg.setupColor()
	table, err := loadTable(cfg.Rules)
	if err != nil {
		return err
	}
	for _, arg := range args {
		u, err := url.Parse(arg)
		if err != nil {
			return fmt.Errorf("bad url %q: %w", arg, err)
		}
		fmt.Fprintf(cc.Out, "%s\n", arg)
		printState(cc, table.Evaluate(u))
	}
	return nil
}

func loadTable(path string) (*route.Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", path, err)
	}
	rules, err := route.ParseRules(b)
	if err != nil {
		return nil, err
	}
	table, err := route.Compile(rules, nil)
	if err != nil {
		return nil, fmt.Errorf("compiling %q: %w", path, err)
	}
	return table, nil
}

var (
	activeColor   = color.New(color.FgGreen)
	inactiveColor = color.New(color.FgRed)
)

func printState(cc *cli.Context, state route.MatchState) {
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		st := state[k]
		mark := inactiveColor.Sprint("inactive")
		if st.Active {
			mark = activeColor.Sprint("active")
		}
		fmt.Fprintf(cc.Out, "  %-20s %s", k, mark)
		pkeys := make([]string, 0, len(st.Params))
		for pk := range st.Params {
			pkeys = append(pkeys, pk)
		}
		sort.Strings(pkeys)
		for _, pk := range pkeys {
			fmt.Fprintf(cc.Out, " %s=%s", pk, st.Params[pk])
		}
		fmt.Fprintln(cc.Out)
	}
}

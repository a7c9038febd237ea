package main

import "flag"

type showOptions struct {
	evalImportance int
	json           bool
}

func newShowFlags() (*flag.FlagSet, *showOptions) {
	opts := &showOptions{}
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	fs.IntVar(&opts.evalImportance, "eval-importance", 0, "look-ahead evaluation importance, 0-10 (spec §4.10)")
	fs.BoolVar(&opts.json, "json", false, "emit JSON instead of text")
	return fs, opts
}

type importOptions struct {
	ledgerDir string
	workers   int
	json      bool
}

func newImportFlags() (*flag.FlagSet, *importOptions) {
	opts := &importOptions{}
	fs := flag.NewFlagSet("import_cpgn", flag.ContinueOnError)
	fs.StringVar(&opts.ledgerDir, "ledger", "", "badger directory for dedup across repeated imports (optional)")
	fs.IntVar(&opts.workers, "workers", 0, "parser worker count, 0 means GOMAXPROCS")
	fs.BoolVar(&opts.json, "json", false, "emit JSON progress summary instead of a progress line")
	return fs, opts
}

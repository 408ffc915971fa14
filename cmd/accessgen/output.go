package main

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"

	"github.com/syssam/accessgen/compiler"
)

func (a *app) info(format string, args ...any) {
	pterm.Info.WithWriter(a.stdout).Printfln(format, args...)
}

// printReport prints the files touched by a run, relative to the working
// directory when possible.
func (a *app) printReport(r *compiler.Report, written bool) {
	for _, path := range r.Created {
		pterm.Info.WithWriter(a.stdout).Printfln("created schema %s", rel(path))
	}
	for _, path := range r.Written {
		pterm.Success.WithWriter(a.stdout).Printfln("generated %s", rel(path))
	}
	switch {
	case written && len(r.Written) == 0:
		pterm.Success.WithWriter(a.stdout).Printfln("%s: %d files already up to date", r.Pipeline, len(r.Unchanged))
	case !written:
		pterm.Success.WithWriter(a.stdout).Printfln("%s: %d files up to date", r.Pipeline, len(r.Unchanged))
	}
}

// printError prints err and the hints attached to it.
func (a *app) printError(err error) {
	pterm.Error.WithWriter(a.stderr).Println(err.Error())
	for _, hint := range errors.GetAllHints(err) {
		pterm.Info.WithWriter(a.stderr).Println("hint: " + hint)
	}
}

func rel(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if r, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(r) && len(r) < len(path) {
		return r
	}
	return path
}

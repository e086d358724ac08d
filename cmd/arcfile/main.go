// Command arcfile is a thin wrapper around the three archive-engine
// entry points (back_up, info, restore). It deliberately has no
// progress display, no interactive password prompt and no file-list
// filtering UI: those are the external collaborators spec.md §1 keeps
// out of the core's scope.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/arcfile/arcfile"
)

func usage(fset *flag.FlagSet, help string) func() {
	return func() {
		fmt.Fprintln(os.Stderr, help)
		fmt.Fprintln(os.Stderr, "Flags:")
		fset.PrintDefaults()
	}
}

const backupHelp = `arcfile backup [-flags] <source> <destination>

Package a directory tree into a single self-describing archive.

Example:
  % arcfile backup -compression HUFFMAN -encryption AES_256_CBC /etc /root/etc.arc
`

func cmdBackup(args []string) error {
	fset := flag.NewFlagSet("backup", flag.ExitOnError)
	compression := fset.String("compression", "NONE", "compression method: NONE, LZ77 or HUFFMAN")
	encryption := fset.String("encryption", "NONE", "encryption method: NONE or AES_256_CBC")
	password := fset.String("password", "", "password for AES_256_CBC encryption")
	excludeFile := fset.String("exclude-file", "", "path to a newline-delimited list of paths (relative to source) to exclude")
	fset.Usage = usage(fset, backupHelp)
	fset.Parse(args)

	if fset.NArg() != 2 {
		fset.Usage()
		os.Exit(2)
	}
	source, destination := fset.Arg(0), fset.Arg(1)

	excluded := ""
	if *excludeFile != "" {
		b, err := os.ReadFile(*excludeFile)
		if err != nil {
			return fmt.Errorf("reading -exclude-file: %v", err)
		}
		excluded = string(b)
	}

	status := arcfile.BackUp(source, destination, *compression, *encryption, *password, excluded)
	if status != arcfile.OK {
		return fmt.Errorf("%s", status)
	}
	return nil
}

const infoHelp = `arcfile info <archive>

Print a summary of an archive's header and member list without
extracting any payload.
`

func cmdInfo(args []string) error {
	fset := flag.NewFlagSet("info", flag.ExitOnError)
	fset.Usage = usage(fset, infoHelp)
	fset.Parse(args)

	if fset.NArg() != 1 {
		fset.Usage()
		os.Exit(2)
	}

	report := arcfile.Info(fset.Arg(0))
	fmt.Print(report)
	return nil
}

const restoreHelp = `arcfile restore [-flags] <archive> <destination>

Reconstruct the tree stored in archive under destination.

Example:
  % arcfile restore -password hunter2 /root/etc.arc /tmp/restored-etc
`

func cmdRestore(args []string) error {
	fset := flag.NewFlagSet("restore", flag.ExitOnError)
	password := fset.String("password", "", "password, if the archive was encrypted")
	fset.Usage = usage(fset, restoreHelp)
	fset.Parse(args)

	if fset.NArg() != 2 {
		fset.Usage()
		os.Exit(2)
	}

	status := arcfile.Restore(fset.Arg(0), fset.Arg(1), *password)
	if status != arcfile.OK {
		return fmt.Errorf("%s", status)
	}
	return nil
}

func funcmain() error {
	type cmd struct {
		fn func(args []string) error
	}
	verbs := map[string]cmd{
		"backup":  {cmdBackup},
		"info":    {cmdInfo},
		"restore": {cmdRestore},
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "arcfile <backup|info|restore> [-flags] <args>")
		os.Exit(2)
	}
	verb, rest := args[0], args[1:]

	v, ok := verbs[verb]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n", verb)
		fmt.Fprintln(os.Stderr, "syntax: arcfile <backup|info|restore> [options]")
		os.Exit(2)
	}
	return v.fn(rest)
}

func main() {
	if err := funcmain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Command rack plays and renders Lua patches.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/dudk/rack/log"
)

// command is a rack subcommand. Register binds its flags, Run executes it
// once flags are parsed.
type command interface {
	Name() string
	Help() string
	Register(*flag.FlagSet)
	Run() error
}

// Exit codes.
const (
	exitOK = iota
	exitFailure
	exitUsage
)

var commands = []command{
	&playCommand{},
	&renderCommand{},
}

func main() {
	os.Exit(run(os.Args[1:], os.Stderr))
}

// run executes the command named by the first argument and returns the exit
// code. Usage and flag errors are written to w.
func run(args []string, w io.Writer) int {
	if len(args) == 0 {
		usage(w)
		return exitUsage
	}
	cmd := lookup(args[0])
	if cmd == nil {
		fmt.Fprintf(w, "rack: unknown command %q\n\n", args[0])
		usage(w)
		return exitUsage
	}

	fs := flag.NewFlagSet("rack "+cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(w)
	cmd.Register(fs)
	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if err := cmd.Run(); err != nil {
		log.GetLogger().WithField("command", cmd.Name()).Error(err)
		return exitFailure
	}
	return exitOK
}

func lookup(name string) command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "Rack is a modular synthesizer driven by Lua patches.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: rack <command> [flags]")
	fmt.Fprintln(w)
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, cmd := range commands {
		fmt.Fprintf(tw, "  %s\t%s\n", cmd.Name(), cmd.Help())
	}
	tw.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, `Run "rack <command> -h" for command flags.`)
}

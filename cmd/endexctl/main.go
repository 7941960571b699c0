// endexctl is a CLI for creating, inspecting, and exercising endex log
// volumes.
//
// Usage:
//
//	endexctl [flags] <dir>
//
// Flags:
//
//	-c, --capacity     Max file capacity in bytes (default: 5 MiB)
//	-p, --password      Volume password; empty opens unencrypted
//	-r, --retention     Cleanup retention window in days (default: 30)
//
// Flag defaults can also be set in <dir>/.endexctl.json (JSONC); an
// explicit flag always wins over the file.
//
// Commands (in REPL):
//
//	write <text>         Append a record
//	flush                 msync the active file
//	export                Snapshot the active file to export.log
//	cleanup [days]        Remove files older than the retention window
//	info                  Show active file path, capacity, and fill level
//	rotate                Force a rotation onto a fresh file
//	saveconfig            Persist current capacity/retention to .endexctl.json
//	help                  Show this help
//	exit / quit / q       Close the volume and exit
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/pflag"

	"github.com/tobinwells/endex/pkg/endex"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flags := pflag.NewFlagSet("endexctl", pflag.ContinueOnError)

	capacity := flags.Uint32P("capacity", "c", endex.DefaultCapacity, "max file capacity in bytes")
	password := flags.StringP("password", "p", "", "volume password; empty opens unencrypted")
	retention := flags.IntP("retention", "r", 30, "cleanup retention window in days")

	if err := flags.Parse(os.Args[1:]); err != nil {
		return err
	}

	if flags.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "usage: endexctl [flags] <dir>")

		return fmt.Errorf("missing directory argument")
	}

	dir := flags.Arg(0)

	cliCfg, err := LoadCLIConfig(dir)
	if err != nil {
		return err
	}

	effectiveCapacity := *capacity
	if !flags.Changed("capacity") && cliCfg.Capacity != 0 {
		effectiveCapacity = cliCfg.Capacity
	}

	effectiveRetention := *retention
	if !flags.Changed("retention") {
		effectiveRetention = cliCfg.Retention
	}

	if err := endex.SetMaxCapacity(effectiveCapacity); err != nil {
		return fmt.Errorf("capacity: %w", err)
	}

	h, encrypted, err := endex.Open(dir, *password)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}

	r := &REPL{handle: h, dir: dir, encrypted: encrypted, retention: effectiveRetention}

	return r.Run()
}

// REPL is the interactive command loop for one open volume.
type REPL struct {
	handle    *endex.Handle
	dir       string
	encrypted bool
	retention int
	liner     *liner.State
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(home, ".endexctl_history")
}

// Run starts the REPL loop.
func (r *REPL) Run() error {
	r.liner = liner.NewLiner()
	defer r.liner.Close()

	r.liner.SetCtrlCAborts(true)
	r.liner.SetCompleter(r.completer)

	if f, err := os.Open(historyFile()); err == nil {
		r.liner.ReadHistory(f)
		f.Close()
	}

	fmt.Printf("endexctl - endex CLI (dir=%s, encrypted=%v)\n", r.dir, r.encrypted)
	fmt.Println("Type 'help' for available commands.")
	fmt.Println()

	for {
		line, err := r.liner.Prompt("endex> ")
		if err != nil {
			if err == liner.ErrPromptAborted || err == io.EOF {
				fmt.Println("\nBye!")

				break
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		r.liner.AppendHistory(line)

		parts := strings.Fields(line)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "exit", "quit", "q":
			fmt.Println("Bye!")

			r.saveHistory()

			return r.handle.Close()

		case "help", "?":
			r.printHelp()

		case "write":
			r.cmdWrite(args)

		case "flush":
			r.cmdFlush()

		case "export":
			r.cmdExport()

		case "cleanup":
			r.cmdCleanup(args)

		case "info":
			r.cmdInfo()

		case "rotate":
			r.cmdRotate()

		case "saveconfig":
			r.cmdSaveConfig()

		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}

	r.saveHistory()

	return r.handle.Close()
}

func (r *REPL) saveHistory() {
	if path := historyFile(); path != "" {
		if f, err := os.Create(path); err == nil {
			r.liner.WriteHistory(f)
			f.Close()
		}
	}
}

func (r *REPL) completer(line string) []string {
	commands := []string{
		"write", "flush", "export", "cleanup",
		"info", "rotate", "saveconfig", "help", "exit", "quit", "q",
	}

	var completions []string

	lower := strings.ToLower(line)
	for _, cmd := range commands {
		if strings.HasPrefix(cmd, lower) {
			completions = append(completions, cmd)
		}
	}

	return completions
}

func (r *REPL) printHelp() {
	fmt.Println(`Commands:
  write <text>      Append <text> as one record
  flush             msync the active file
  export            Snapshot the active file to export.log
  cleanup [days]    Remove files older than the retention window (or [days])
  info              Show active file path, capacity, and fill level
  rotate            Force a rotation onto a fresh file
  saveconfig        Persist current capacity/retention to .endexctl.json
  help              Show this help
  exit/quit/q       Close the volume and exit`)
}

func (r *REPL) cmdWrite(args []string) {
	if len(args) < 1 {
		fmt.Println("Usage: write <text>")

		return
	}

	msg := strings.Join(args, " ")

	if err := r.handle.Write([]byte(msg)); err != nil {
		fmt.Printf("Error writing: %v\n", err)

		return
	}

	fmt.Printf("wrote %d bytes\n", len(msg))
}

func (r *REPL) cmdFlush() {
	if err := r.handle.Flush(); err != nil {
		fmt.Printf("Error flushing: %v\n", err)

		return
	}

	fmt.Println("flushed")
}

func (r *REPL) cmdExport() {
	path, err := r.handle.Export()
	if err != nil {
		fmt.Printf("Error exporting: %v\n", err)

		return
	}

	fmt.Printf("exported to %s\n", path)
}

func (r *REPL) cmdCleanup(args []string) {
	days := r.retention

	if len(args) >= 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			fmt.Printf("Error parsing days: %v\n", err)

			return
		}

		days = n
	}

	if err := r.handle.Cleanup(days); err != nil {
		fmt.Printf("Error cleaning up: %v\n", err)

		return
	}

	fmt.Printf("cleaned up files older than %d days\n", days)
}

func (r *REPL) cmdInfo() {
	info := r.handle.Stat()

	fmt.Printf("path:      %s\n", info.Path)
	fmt.Printf("capacity:  %d\n", info.Capacity)
	fmt.Printf("used:      %d\n", info.Used)
	fmt.Printf("encrypted: %v\n", info.Encrypted)
}

func (r *REPL) cmdSaveConfig() {
	cfg := CLIConfig{
		Capacity:  r.handle.Stat().Capacity,
		Retention: r.retention,
	}

	if err := SaveCLIConfig(r.dir, cfg); err != nil {
		fmt.Printf("Error saving config: %v\n", err)

		return
	}

	fmt.Printf("saved %s\n", filepath.Join(r.dir, ConfigFileName))
}

func (r *REPL) cmdRotate() {
	before := r.handle.Stat().Path

	// There's no direct "rotate now" call — rotation only happens lazily
	// when a write would overflow. Fill the remaining payload, then write
	// one more byte to force it.
	info := r.handle.Stat()

	remaining := info.Capacity - endex.FooterSize - info.Used
	if remaining > 0 {
		if err := r.handle.Write(make([]byte, remaining)); err != nil {
			fmt.Printf("Error forcing rotation: %v\n", err)

			return
		}
	}

	if err := r.handle.Write([]byte{0}); err != nil {
		fmt.Printf("Error forcing rotation: %v\n", err)

		return
	}

	after := r.handle.Stat().Path
	if after == before {
		fmt.Println("no rotation occurred")

		return
	}

	fmt.Printf("rotated: %s -> %s\n", before, after)
}

package main

import (
	"fmt"
	"os"
)

// Version is set via -ldflags at build time.
var Version = "dev"

// isTerminal returns true if stdin is a terminal (not piped).
func isTerminal() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

// printBanner displays a friendly banner when run interactively without args.
func printBanner() {
	fmt.Println(`
       _          _ _     _           _
   ___| |__   ___| | | __| | __ _ ___| |__
  / __| '_ \ / _ \ | |/ _' |/ _' / __| '_ \
  \__ \ | | |  __/ | | (_| | (_| \__ \ | | |
  |___/_| |_|\___|_|_|\__,_|\__,_|___/_| |_|

  Personal shell dashboard

  Usage: shelldash <command> [options]
         shelldash --help

  MCP server mode requires piped input.`)
}

func main() {
	args := os.Args

	// No args: banner on a terminal, MCP server over piped stdio.
	if len(args) < 2 {
		if isTerminal() {
			printBanner()
			return
		}
		args = append(args, "mcp")
	}

	app := newCLIApp(defaultEnv())
	if err := app.Run(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

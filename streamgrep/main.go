package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/mfroeh/streamgrep/internal/logutil"
	"github.com/mfroeh/streamgrep/internal/search"
	"github.com/mfroeh/streamgrep/regex"
)

type CLI struct {
	Pattern string   `arg:"" name:"pattern" help:"Regex pattern to use in search" type:"string"`
	Paths   []string `arg:"" optional:"" name:"path" help:"Files or directories to search, - for stdin. Defaults to the current directory."`

	OnlyMatching     bool `short:"o" xor:"mode" help:"Print only the matched parts of matching lines."`
	Count            bool `short:"c" xor:"mode" help:"Print the number of matching lines per file."`
	FilesWithMatches bool `short:"l" xor:"mode" help:"Print only the names of files with a match."`
	Quiet            bool `short:"q" xor:"mode" help:"Print nothing, exit on the first match."`
	Stream           bool `short:"z" xor:"mode" help:"Search each input as one stream, matches may span lines. Prints path:start-end:text."`

	LineNumber  bool   `short:"n" default:"true" negatable:"" help:"Prefix lines with their line number."`
	Heading     bool   `help:"Print the file name once above its matches instead of on every line."`
	Overlapping bool   `help:"Report every longest match per start offset, not only non-overlapping ones."`
	Jobs        int    `short:"j" default:"0" help:"Number of files searched concurrently, 0 for one per CPU."`
	Color       string `enum:"auto,always,never" default:"auto" env:"STREAMGREP_COLOR" help:"When to highlight matches (${enum})."`
	Debug       int    `short:"d" type:"counter" env:"STREAMGREP_DEBUG" help:"Log debug output to stderr, twice for trace output."`
}

func (c *CLI) options() search.Options {
	opts := search.Options{
		LineNumbers: c.LineNumber,
		Heading:     c.Heading,
		Overlapping: c.Overlapping,
		Jobs:        c.Jobs,
	}

	switch {
	case c.OnlyMatching:
		opts.Mode = search.OnlyMatching
	case c.Count:
		opts.Mode = search.Count
	case c.FilesWithMatches:
		opts.Mode = search.FilesWithMatches
	case c.Quiet:
		opts.Mode = search.Quiet
	case c.Stream:
		opts.Mode = search.Stream
	}

	switch c.Color {
	case "always":
		opts.Color = true
	case "auto":
		opts.Color = !color.NoColor
	}
	return opts
}

var cli CLI

func main() {
	kong.Parse(&cli,
		kong.Name("streamgrep"),
		kong.Description("Searches files, directories and stdin for a regex pattern in a single forward pass."),
		kong.UsageOnError(),
		// usage errors exit like any other failure
		kong.Exit(func(code int) {
			if code != 0 {
				code = 1
			}
			os.Exit(code)
		}),
	)

	slog.SetDefault(logutil.NewLogger(os.Stderr, logutil.Level(cli.Debug)))

	re, err := regex.Compile(cli.Pattern)
	if err != nil {
		log.Fatalf("failed to build regex: %v", err)
	}
	slog.Debug("compiled pattern", "pattern", re, "nodes", re.Len(), "groups", re.NumGroups(), "literals", len(re.Literals()))
	logutil.Trace(nil, "pattern graph", "graph", re.Dump())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	matched, err := search.Run(ctx, re, cli.options(), cli.Paths, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalf("%v", err)
	}
	if !matched {
		stop()
		os.Exit(1)
	}
}

// Command treeaudit fingerprints every file under a directory,
// reports files that are new or changed since the previous run, and
// records the fresh fingerprints in file_hashes.json in the working
// directory for the next run.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/byte4ever/treeaudit/baseline"
	"github.com/byte4ever/treeaudit/checker"
	"github.com/byte4ever/treeaudit/config"
	"github.com/byte4ever/treeaudit/report"
	"github.com/byte4ever/treeaudit/scanner"
)

var (
	errInvalidRoot  = errors.New("invalid directory")
	errVerifyFailed = errors.New("file did not verify")
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(), os.Interrupt,
	)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		stop()
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
}

//nolint:funlen // CLI flag setup is inherently long
func run(
	ctx context.Context,
	args []string,
	stdin io.Reader,
	stdout io.Writer,
) error {
	const errCtx = "running treeaudit"

	fs := flag.NewFlagSet("treeaudit", flag.ContinueOnError)

	dir := fs.String(
		"dir", "",
		"Directory to check (prompted for when empty)",
	)
	configPath := fs.String(
		"config", config.DefaultFileName,
		"YAML settings file",
	)
	format := fs.String(
		"format", "",
		"Report format: text, json or yaml",
	)
	sorted := fs.Bool(
		"sort", false,
		"Sort report listings",
	)
	noColor := fs.Bool(
		"no-color", false,
		"Disable styled text output",
	)
	verbose := fs.Bool(
		"v", false,
		"Log every file",
	)
	verify := fs.String(
		"verify", "",
		"Check one relative path against the baseline without updating it",
	)

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(
		os.Stderr, &slog.HandlerOptions{Level: level},
	)))

	loadConfig := config.LoadOptional
	if flagSet(fs, "config") {
		loadConfig = config.Load
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if *format != "" {
		cfg.Format = *format
	}

	fmtName, err := report.ParseFormat(cfg.Format)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	root := strings.TrimSpace(*dir)
	if root == "" {
		root, err = prompt(stdin, stdout)
		if err != nil {
			return fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	if !scanner.IsDir(root) {
		fmt.Fprintln(stdout, "Invalid directory. Please try again.") //nolint:errcheck // best-effort notice

		return fmt.Errorf("%s: %w: %s", errCtx, errInvalidRoot, root)
	}

	store, err := baseline.NewStore(baseline.DefaultFileName)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	tree, err := scanner.NewTree(
		cfg.Exclude, cfg.ExcludeDirs, store.Path(),
	)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	ch := checker.New(store, tree)

	if *verify != "" {
		return runVerify(ch, root, *verify, stdout)
	}

	res, err := ch.Check(ctx, root)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	if err := report.Render(stdout, res, report.Options{
		Format: fmtName,
		Color:  cfg.ColorEnabled() && !*noColor,
		Sort:   cfg.Sort || *sorted,
	}); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	return nil
}

// flagSet reports whether name was given on the command
// line.
func flagSet(fs *flag.FlagSet, name string) bool {
	found := false

	fs.Visit(func(fl *flag.Flag) {
		if fl.Name == name {
			found = true
		}
	})

	return found
}

// prompt asks for the directory on stdin.
func prompt(stdin io.Reader, stdout io.Writer) (string, error) {
	const errCtx = "reading directory"

	fmt.Fprint(stdout, "Enter directory path to check: ") //nolint:errcheck // prompt only

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("%s: %w", errCtx, err)
	}

	return strings.TrimSpace(line), nil
}

func runVerify(
	ch *checker.Checker,
	root string,
	rel string,
	stdout io.Writer,
) error {
	const errCtx = "verifying"

	status, err := ch.Verify(root, rel)
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}

	fmt.Fprintf(stdout, "%s: %s\n", rel, status) //nolint:errcheck // report line

	if status != checker.StatusIntact {
		return fmt.Errorf("%s: %w: %s is %s", errCtx, errVerifyFailed, rel, status)
	}

	return nil
}

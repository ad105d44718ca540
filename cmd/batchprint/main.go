package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajkula/GoBatchPrint/config"
	"github.com/ajkula/GoBatchPrint/domain/service"
)

const version = "1.0.0"

// Exit codes
const (
	exitOK           = 0
	exitSessionError = 1
	exitFileFailures = 2
)

type options struct {
	configPath     string
	generateConfig bool
	showVersion    bool
	dir            string
	listOnly       bool
	serve          bool
	watchDir       string
	dryRun         bool
	issueToken     string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return exitSessionError
	}

	// Display version information
	if opts.showVersion {
		fmt.Fprintf(stdout, "GoBatchPrint Version %s\n", version)
		return exitOK
	}

	// Generate a default configuration file
	if opts.generateConfig {
		if err := config.SaveConfig(config.DefaultConfig(), opts.configPath); err != nil {
			fmt.Fprintf(stderr, "Error generating config file: %v\n", err)
			return exitSessionError
		}
		fmt.Fprintf(stdout, "Default configuration file generated at: %s\n", opts.configPath)
		return exitOK
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "Error loading config: %v\n", err)
		return exitSessionError
	}

	if opts.issueToken != "" {
		return issueToken(cfg, opts.issueToken, stdout, stderr)
	}

	if opts.dir == "" && !opts.serve {
		fmt.Fprintln(stderr, "Nothing to do: pass -dir <folder> to print a folder or -serve to start the server")
		return exitSessionError
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApp(rootCtx, cfg, opts.serve)
	if err != nil {
		fmt.Fprintf(stderr, "Error starting: %v\n", err)
		return exitSessionError
	}
	defer app.close()

	switch {
	case opts.listOnly:
		return listFolder(rootCtx, app, opts.dir, stdout, stderr)
	case opts.serve:
		return serve(rootCtx, app, stderr)
	default:
		return printFolder(rootCtx, app, opts.dir, stdout, stderr)
	}
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := flag.NewFlagSet("batchprint", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")
	fs.BoolVar(&opts.generateConfig, "generate-config", false, "Generate default configuration file")
	fs.BoolVar(&opts.showVersion, "version", false, "Show version information")
	fs.StringVar(&opts.dir, "dir", "", "Folder whose PDF files are printed")
	fs.BoolVar(&opts.listOnly, "list", false, "Only list the PDF files of -dir")
	fs.BoolVar(&opts.serve, "serve", false, "Start the HTTP API")
	fs.StringVar(&opts.watchDir, "watch", "", "Hot folder printed as files arrive (server mode)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Log submissions instead of printing")
	fs.StringVar(&opts.issueToken, "issue-token", "", "Print an API token for the given subject and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// a hot folder only makes sense in server mode
	if opts.watchDir != "" {
		opts.serve = true
	}
	return opts, nil
}

// loadConfig falls back to defaults when the default config file is absent
func loadConfig(opts *options) (*config.Config, error) {
	var cfg *config.Config
	if _, err := os.Stat(opts.configPath); err == nil || opts.configPath != "config.yaml" {
		loaded, err := config.LoadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		cfg.ResolvePaths()
	}

	if opts.dryRun {
		cfg.Printer.Backend = "dry-run"
	}
	if opts.watchDir != "" {
		cfg.Watch.Enabled = true
		cfg.Watch.Directory = opts.watchDir
	}
	if !opts.serve {
		cfg.HTTP.Enabled = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func issueToken(cfg *config.Config, subject string, stdout, stderr io.Writer) int {
	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "Error creating logger: %v\n", err)
		return exitSessionError
	}
	defer logger.Shutdown()

	auth := service.NewAuthService(logger, cfg.Security.JWT.Secret, cfg.Security.JWT.ExpirationMinutes)
	token, err := auth.GenerateToken(subject, time.Now())
	if err != nil {
		fmt.Fprintf(stderr, "Error issuing token: %v\n", err)
		return exitSessionError
	}
	fmt.Fprintln(stdout, token)
	return exitOK
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"github.com/phrazzld/scry-flashgen/internal/bootstrap"
	"github.com/phrazzld/scry-flashgen/internal/config"
	"github.com/phrazzld/scry-flashgen/internal/domain"
	"github.com/phrazzld/scry-flashgen/internal/extract"
	"github.com/phrazzld/scry-flashgen/internal/platform/logger"
	"github.com/phrazzld/scry-flashgen/internal/redact"
)

// Exit codes
const (
	exitOK        = 0
	exitFailure   = 1
	exitUsage     = 2
	exitNoResults = 3
)

var errUsage = errors.New("usage error")

type options struct {
	method      string
	schemaType  string
	file        string
	url         string
	text        string
	images      bool
	json        bool
	verbose     bool
	provider    string
	model       string
	concurrency int
}

type cli struct {
	stdin       io.Reader
	stdout      io.Writer
	stderr      io.Writer
	loadConfig  func() (*config.Config, error)
	newProvider bootstrap.ProviderFactory
}

func (c *cli) parseFlags(args []string) (options, *pflag.FlagSet, error) {
	var opts options
	fs := pflag.NewFlagSet("flashgen", pflag.ContinueOnError)
	fs.SetOutput(c.stderr)

	fs.StringVarP(&opts.method, "method", "m", "", "extraction method: pdf, docx, pptx, csv, webpage, youtube, text")
	fs.StringVarP(&opts.schemaType, "type", "t", "basic", "flashcard type: basic, scored, cloze, illustrated (or type-I, type-II)")
	fs.StringVarP(&opts.file, "file", "f", "", "input file; '-' reads stdin")
	fs.StringVarP(&opts.url, "url", "u", "", "input url for webpage and youtube")
	fs.StringVar(&opts.text, "text", "", "input text for the text method")
	fs.BoolVar(&opts.images, "images", false, "attach images extracted from a pdf to illustrated cards")
	fs.BoolVar(&opts.json, "json", false, "print the result as JSON")
	fs.BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	fs.StringVar(&opts.provider, "provider", "", "override llm.provider (gemini or anthropic)")
	fs.StringVar(&opts.model, "model", "", "override llm.model_name")
	fs.IntVar(&opts.concurrency, "concurrency", 0, "override pipeline.concurrency")

	if err := fs.Parse(args); err != nil {
		return options{}, fs, fmt.Errorf("%w: %v", errUsage, err)
	}
	if fs.NArg() > 0 {
		return options{}, fs, fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	opts.method = strings.ToLower(strings.TrimSpace(opts.method))
	if opts.method == "" {
		if opts.text != "" {
			opts.method = extract.MethodText
		} else {
			return options{}, fs, fmt.Errorf("%w: --method is required", errUsage)
		}
	}
	if opts.images && opts.method != extract.MethodPDF {
		return options{}, fs, fmt.Errorf("%w: --images requires --method pdf", errUsage)
	}
	return opts, fs, nil
}

func (c *cli) run(ctx context.Context, args []string) int {
	opts, fs, err := c.parseFlags(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(c.stderr, "flashgen: %v\n", err)
		fs.PrintDefaults()
		return exitUsage
	}

	cfg, err := c.loadConfig()
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitFailure
	}
	if err := applyOverrides(cfg, opts, fs); err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitUsage
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	log := logger.New(c.stderr, level)
	ctx = logger.WithLogger(ctx, log)

	services, err := bootstrap.Build(ctx, cfg, log, c.newProvider)
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitFailure
	}

	src, err := c.readSource(opts)
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitUsage
	}

	text, err := services.Extractors.Extract(ctx, opts.method, src)
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitFailure
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(c.stderr, "flashgen: no text could be extracted from the input")
		return exitNoResults
	}

	var images []domain.ImageRef
	if opts.images {
		images, err = extract.PDFImages(ctx, src.Data)
		if err != nil {
			log.Warn("image extraction failed, continuing without images", "error", redact.Error(err))
		}
	}

	result, err := services.Flashcards.GenerateFlashcards(ctx, text, opts.schemaType, images)
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: %s\n", redact.Error(err))
		return exitFailure
	}

	if opts.json {
		err = writeJSON(c.stdout, result)
	} else {
		err = writeCards(c.stdout, result)
	}
	if err != nil {
		fmt.Fprintf(c.stderr, "flashgen: write output: %v\n", err)
		return exitFailure
	}

	writeSummary(c.stderr, result)
	if len(result.Flashcards) == 0 {
		return exitNoResults
	}
	return exitOK
}

// applyOverrides copies explicitly set flags onto cfg and revalidates it.
func applyOverrides(cfg *config.Config, opts options, fs *pflag.FlagSet) error {
	if fs.Changed("provider") {
		cfg.LLM.Provider = opts.provider
		if !fs.Changed("model") {
			cfg.LLM.ModelName = ""
		}
	}
	if fs.Changed("model") {
		cfg.LLM.ModelName = opts.model
	}
	if cfg.LLM.ModelName == "" {
		switch cfg.LLM.Provider {
		case config.ProviderAnthropic:
			cfg.LLM.ModelName = config.DefaultAnthropicModel
		default:
			cfg.LLM.ModelName = config.DefaultGeminiModel
		}
	}
	if fs.Changed("concurrency") {
		cfg.Pipeline.Concurrency = opts.concurrency
	}
	return config.Validate(cfg)
}

// readSource builds the extraction input from the flags.
func (c *cli) readSource(opts options) (extract.Source, error) {
	switch {
	case opts.text != "":
		if opts.method != extract.MethodText {
			return extract.Source{}, fmt.Errorf("%w: --text only applies to --method text", errUsage)
		}
		return extract.Source{Name: "text", Data: []byte(opts.text)}, nil

	case opts.url != "":
		return extract.Source{Name: opts.url, URL: opts.url}, nil

	case opts.file == "-" || (opts.file == "" && opts.method == extract.MethodText):
		data, err := io.ReadAll(c.stdin)
		if err != nil {
			return extract.Source{}, fmt.Errorf("read stdin: %w", err)
		}
		return extract.Source{Name: "stdin", Data: data}, nil

	case opts.file != "":
		if err := extract.ValidateFileName(opts.method, opts.file); err != nil {
			return extract.Source{}, err
		}
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return extract.Source{}, fmt.Errorf("read %s: %w", filepath.Base(opts.file), err)
		}
		return extract.Source{Name: filepath.Base(opts.file), Data: data}, nil

	default:
		return extract.Source{}, fmt.Errorf("%w: --method %s needs --file or --url", errUsage, opts.method)
	}
}

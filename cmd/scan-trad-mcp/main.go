package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cloudwego/eino/components/model"
	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/config"
	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/grammar"
	"github.com/ironsheep/scan-trad-mcp/internal/layout"
	"github.com/ironsheep/scan-trad-mcp/internal/logging"
	"github.com/ironsheep/scan-trad-mcp/internal/ocr"
	"github.com/ironsheep/scan-trad-mcp/internal/pipeline"
	"github.com/ironsheep/scan-trad-mcp/internal/server"
	"github.com/ironsheep/scan-trad-mcp/internal/translate"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func printHelp() {
	fmt.Println("scan-trad-mcp - MCP server translating the text regions of scanned pages")
	fmt.Println()
	fmt.Println("Usage: scan-trad-mcp [options]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --config, -c PATH   Load configuration from a YAML or JSON file")
	fmt.Println("  --version, -v       Print version information")
	fmt.Println("  --help, -h          Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  SCANTRAD_CONFIG=path               Configuration file (if --config is not given)")
	fmt.Println("  SCANTRAD_LOG_LEVEL=debug           Enable debug logging")
	fmt.Println("  SCANTRAD_TRANSLATION_PROVIDER=chat Translate with the LLM endpoint")
	fmt.Println("  OPENAI_API_KEY=...                 Key of the LLM endpoint")
	fmt.Println()
	fmt.Println("This server communicates via MCP protocol over stdin/stdout.")
	fmt.Println("Configure it in your MCP client (e.g., Claude Desktop).")
}

// configPath returns the file named by --config, or SCANTRAD_CONFIG.
func configPath(args []string) (string, error) {
	for i := 0; i < len(args); i++ {
		switch arg := args[i]; {
		case arg == "--config" || arg == "-c":
			if i+1 >= len(args) {
				return "", fmt.Errorf("%s requires a path", arg)
			}
			return args[i+1], nil
		case strings.HasPrefix(arg, "--config="):
			return strings.TrimPrefix(arg, "--config="), nil
		default:
			return "", fmt.Errorf("unknown argument %q", arg)
		}
	}
	return os.Getenv(config.EnvPrefix + "_CONFIG"), nil
}

func main() {
	// Handle --version and -v flags
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("scan-trad-mcp %s\n", Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp()
			return
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], stdio{in: os.Stdin, out: os.Stdout, log: os.Stderr}, newTesseract)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "scan-trad-mcp: %v\n", err)
		var usage usageError
		if errors.As(err, &usage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// stdio are the streams of the server. MCP traffic uses in and out, logs go
// to log.
type stdio struct {
	in  io.Reader
	out io.Writer
	log io.Writer
}

// closingRecognizer is a recognizer holding native resources.
type closingRecognizer interface {
	ocr.Recognizer
	Close() error
}

func newTesseract() closingRecognizer { return ocr.NewTesseract() }

// usageError marks errors in the command line arguments.
type usageError struct{ error }

func (e usageError) Unwrap() error { return e.error }

// run serves MCP requests until the input ends or ctx is canceled. The
// recognizer is closed before run returns, on every path.
func run(ctx context.Context, args []string, streams stdio, newRecognizer func() closingRecognizer) error {
	path, err := configPath(args)
	if err != nil {
		return usageError{err}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.New(cfg.LogLevel, streams.log)
	logger.WithFields(logrus.Fields{
		"version":    Version,
		"build_time": BuildTime,
		"commit":     GitCommit,
	}).Debug("Scan translation MCP server starting")

	recognizer := newRecognizer()
	defer func() {
		if err := recognizer.Close(); err != nil {
			logger.WithError(err).Warn("Failed to release the recognizer")
		}
	}()

	deps, err := buildDeps(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	deps.Recognizer = recognizer

	srv := server.New(deps, pipelineOptions(cfg))
	if err := srv.Serve(ctx, streams.in, streams.out); err != nil && ctx.Err() == nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// buildDeps creates every collaborator of the pipeline except the recognizer.
func buildDeps(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (pipeline.Deps, error) {
	var chatModel model.BaseChatModel
	if cfg.NeedsChatModel() {
		m, err := translate.NewChatModel(ctx, translate.ChatConfig{
			Model:   cfg.LLM.Model,
			APIKey:  cfg.LLM.APIKey,
			BaseURL: cfg.LLM.BaseURL,
		})
		if err != nil {
			return pipeline.Deps{}, err
		}
		chatModel = m
		logger.WithField("model", cfg.LLM.Model).Info("Chat model configured")
	}

	deps := pipeline.Deps{
		Translator: translator(cfg, chatModel),
		Detector:   detector(cfg),
		Engine:     layout.NewEngine(layout.LoadFontSet(cfg.FontPath, logger)),
		Logger:     logger,
	}
	if cfg.Grammar.Enabled {
		deps.Corrector = grammar.NewChat(chatModel)
	}
	return deps, nil
}

func translator(cfg *config.Config, m model.BaseChatModel) translate.Provider {
	if strings.EqualFold(cfg.Translation.Provider, config.ProviderChat) && m != nil {
		return translate.NewChat(m)
	}
	return translate.NewDemoTable()
}

func detector(cfg *config.Config) detection.Provider {
	if strings.EqualFold(cfg.Detection.Provider, config.DetectionDemo) {
		return detection.Demo{}
	}
	return nil
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Padding:       cfg.Regions.Padding,
		RingWidth:     cfg.Regions.RingWidth,
		Language:      cfg.OCR.Language,
		PageSegMode:   cfg.OCR.PageSegMode,
		Preprocess:    cfg.OCR.Preprocess,
		Grammar:       cfg.Grammar.Enabled,
		MaxNewTokens:  cfg.Grammar.MaxNewTokens,
		SortByTop:     cfg.Regions.SortByTop,
		Parallel:      cfg.Regions.Parallel,
		DefaultLocale: cfg.Translation.DefaultLocale,
	}
}

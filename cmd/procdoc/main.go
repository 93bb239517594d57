package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/procdoc/procdoc"
	"github.com/procdoc/procdoc/etree"
	"github.com/procdoc/procdoc/fs"
	"github.com/procdoc/procdoc/htmltomarkdown"
	prochttp "github.com/procdoc/procdoc/http"
	"github.com/procdoc/procdoc/pdf"
	"github.com/procdoc/procdoc/retrieve"
	"github.com/procdoc/procdoc/rod"
	procslog "github.com/procdoc/procdoc/slog"
	"github.com/procdoc/procdoc/sqlite"
	"github.com/procdoc/procdoc/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	Cases      procdoc.CaseService
	Retrievals procdoc.RetrievalService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Pick up PROCDOC_* settings from a .env file when one is present.
	_ = godotenv.Load()

	// Initialize dependencies struct for Kong binding
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	// Create Kong parser with dependency binding
	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("procdoc"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'procdoc --help' to see available commands")
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	// Parse arguments first to know which command and its flags
	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set PROCDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	// Wire archive services into dependencies
	m.Cases = sqlite.NewCaseService(m.DB)
	m.Retrievals = sqlite.NewRetrievalService(m.DB)
	deps.DB = m.DB
	deps.Cases = m.Cases
	deps.Retrievals = m.Retrievals
	deps.Exporter = etree.NewExporter()

	// Commands that visit the portal get a browser session and the full
	// retrieval stack; history and export work from the archive alone.
	if portalCommands[cmd] {
		cfg := ConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return err
		}

		level := slog.LevelWarn
		if cli.Verbose {
			level = slog.LevelInfo
		}
		logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

		session := rod.NewSession(cfg, rod.WithLogger(logger))
		defer session.Close()

		locator := rod.NewLocator(session)
		retriever := &retrieve.Retriever{
			Locator:    procslog.NewLoggingLocator(locator, logger),
			Finder:     rod.NewFinder(session),
			Resolver:   procslog.NewLoggingResolver(rod.NewResolver(session), logger),
			Movements:  rod.NewMovementsExtractor(session, locator),
			Sessions:   session,
			Fetcher:    procslog.NewLoggingFetcher(prochttp.NewFetcher(prochttp.WithUserAgent(cfg.UserAgent)), logger),
			Parser:     pdf.NewExtractor(),
			Cases:      m.Cases,
			Retrievals: m.Retrievals,
			Limiter:    retrieve.NewLimiter(portalRate()),
			Logger:     logger,
		}
		if cfg.SnapshotDir != "" {
			retriever.Extractor = trafilatura.NewExtractor()
			retriever.Converter = htmltomarkdown.NewConverter()
			retriever.Snapshots = fs.NewWriter(cfg.SnapshotDir)
		}
		deps.Retriever = retriever
	}

	return kongCtx.Run(deps)
}

// portalCommands names the commands that drive the browser against the
// portal.
var portalCommands = map[string]bool{
	"search":    true,
	"movements": true,
	"fetch":     true,
	"text":      true,
	"batch":     true,
}

// defaultPortalRate is the portal visit rate in visits per second. The
// portal throttles aggressive clients, so stay polite by default.
const defaultPortalRate = 1.0

func portalRate() float64 {
	if v := os.Getenv("PROCDOC_RATE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultPortalRate
}

func defaultDBPath() string {
	if path := os.Getenv("PROCDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "procdoc.db"
	}
	dir := filepath.Join(home, ".procdoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "procdoc.db")
}

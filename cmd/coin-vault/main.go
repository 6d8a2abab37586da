package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/Antkiler2012/Coin-Vault/internal/coin"
	"github.com/Antkiler2012/Coin-Vault/internal/ocr"
	"github.com/Antkiler2012/Coin-Vault/internal/search"
	"github.com/Antkiler2012/Coin-Vault/internal/verify"
)

//go:embed VERSION.txt
var versionFile string

var version = strings.TrimSpace(versionFile)

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "--version" || arg == "-version" || arg == "-v" {
			fmt.Println(version)
			os.Exit(0)
		}
	}

	fs := ff.NewFlagSet("coin-vault")
	var (
		port           = fs.IntLong("port", 8080, "HTTP server port")
		dbPath         = fs.StringLong("db", "coin-vault.db", "Database file path")
		storagePath    = fs.StringLong("storage", "./coins", "Coin image storage directory")
		onboardingPath = fs.StringLong("onboarding-file", ".onboarded", "Onboarding marker file path")
		payloadSize    = fs.IntLong("payload-cache-size", 32, "Maximum number of staged scans held in memory")
		visionKey      = fs.StringLong("vision-key", "", "Google Cloud Vision API key (or set COIN_VAULT_VISION_KEY env var)")
		serpKey        = fs.StringLong("serpapi-key", "", "SerpAPI key (or set COIN_VAULT_SERPAPI_KEY env var)")
		geminiKey      = fs.StringLong("gemini-key", "", "Google Gemini API key (or set COIN_VAULT_GEMINI_KEY env var)")
		geminiModel    = fs.StringLong("gemini-model", "gemini-1.5-flash", "Google Gemini model name")
		authUser       = fs.StringLong("auth-user", "", "Basic auth username (optional)")
		authPass       = fs.StringLong("auth-pass", "", "Basic auth password (optional)")
		showVersion    = fs.BoolLong("version", "Show version information")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("COIN_VAULT"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Check version flag after parsing
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	// Initialize database
	slog.Info("Initializing database...")
	db, err := coin.NewBoltDB(*dbPath)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Initialize storage
	slog.Info("Initializing storage...")
	store, err := coin.NewLocalStorage(*storagePath)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		os.Exit(1)
	}

	// Missing API keys never stop the server; the corresponding collaborator
	// simply produces no data
	if *visionKey == "" {
		slog.Warn("No Vision API key configured, OCR will produce no text")
	}
	recognizer := ocr.NewVision(*visionKey)

	if *serpKey == "" {
		slog.Warn("No SerpAPI key configured, shopping search will produce no listings")
	}
	searcher := search.NewSerpAPI(*serpKey)

	var verifier verify.Verifier
	if *geminiKey != "" {
		slog.Info("Initializing Gemini verifier...", "model", *geminiModel)
		gemini, err := verify.NewGemini(*geminiKey, *geminiModel)
		if err != nil {
			slog.Error("Failed to initialize Gemini", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		verifier = gemini
	} else {
		slog.Warn("No Gemini API key configured, estimates will not be verified")
	}

	metrics := coin.NewMetrics()
	estimator := coin.NewEstimator(recognizer, searcher, verifier, metrics)
	service := coin.NewService(db, store)
	onboarding := coin.NewOnboardingFlag(*onboardingPath)

	payloads, err := coin.NewPayloadCache(*payloadSize)
	if err != nil {
		slog.Error("Failed to initialize payload cache", "error", err)
		os.Exit(1)
	}

	// Initialize server
	basicAuth := coin.BasicAuth{
		Username: *authUser,
		Password: *authPass,
	}
	server := coin.NewServer(estimator, service, payloads, onboarding, metrics, basicAuth)

	// Start server in goroutine
	addr := fmt.Sprintf(":%d", *port)
	go func() {
		if err := server.Start(addr); err != nil {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	slog.Info("Server started", "address", fmt.Sprintf("http://localhost%s", addr))
	if *authUser != "" || *authPass != "" {
		slog.Info("Basic auth enabled", "user", *authUser)
	}

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	slog.Info("Shutting down...")
}

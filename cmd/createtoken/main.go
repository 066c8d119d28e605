// Package main provides the token creation entry point.
// Executes: validate → pin artifacts → build transaction → sign → submit → confirm
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"solana-token-forge/internal/creator"
	"solana-token-forge/internal/keys"
	"solana-token-forge/internal/observability"
	"solana-token-forge/internal/pinata"
	"solana-token-forge/internal/solana"
	"solana-token-forge/internal/wallet"
)

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, polling fallback used when empty)")
	pinataKey := flag.String("pinata-api-key", os.Getenv("PINATA_API_KEY"), "Pinata API key")
	pinataSecret := flag.String("pinata-secret", os.Getenv("PINATA_SECRET_API_KEY"), "Pinata secret API key")
	platformWallet := flag.String("platform-wallet", os.Getenv("PLATFORM_FEE_WALLET"), "Platform fee wallet address")
	keypairPath := flag.String("keypair", os.Getenv("WALLET_KEYPAIR"), "Path to requester keypair file (Solana JSON format)")

	name := flag.String("name", "", "Token name")
	symbol := flag.String("symbol", "", "Token symbol")
	description := flag.String("description", "", "Token description")
	imagePath := flag.String("image", "", "Path to token logo image (PNG)")
	decimals := flag.Uint("decimals", 9, "Token decimals (0-18)")
	supply := flag.Uint64("supply", 0, "Total supply in whole tokens")

	revokeMint := flag.Bool("revoke-mint", false, "Revoke mint authority after minting")
	revokeFreeze := flag.Bool("revoke-freeze", false, "Revoke freeze authority after minting")
	revokeUpdate := flag.Bool("revoke-update", false, "Make metadata immutable")

	confirmTimeout := flag.Duration("confirm-timeout", creator.DefaultConfirmTimeout, "Finalization wait before giving up")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (empty to disable)")
	verbose := flag.Bool("verbose", false, "Verbose output")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[createtoken] ", log.LstdFlags)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint (or SOLANA_RPC_ENDPOINT) is required")
	}
	if *pinataKey == "" || *pinataSecret == "" {
		logger.Fatal("--pinata-api-key and --pinata-secret (or PINATA_API_KEY / PINATA_SECRET_API_KEY) are required")
	}
	if *platformWallet == "" {
		logger.Fatal("--platform-wallet (or PLATFORM_FEE_WALLET) is required")
	}
	if *keypairPath == "" {
		logger.Fatal("--keypair (or WALLET_KEYPAIR) is required")
	}
	if *imagePath == "" {
		logger.Fatal("--image is required")
	}
	if *decimals > 18 {
		logger.Fatalf("--decimals %d out of range (0-18)", *decimals)
	}

	feeWallet, err := keys.ParsePubkey(*platformWallet)
	if err != nil {
		logger.Fatalf("Invalid platform wallet address: %v", err)
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		logger.Fatalf("Read image: %v", err)
	}

	w, err := wallet.LoadKeypairWallet(*keypairPath)
	if err != nil {
		logger.Fatalf("Load keypair: %v", err)
	}

	// Create context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, cancelling...", sig)
		cancel()
	}()

	var metrics *observability.Metrics
	if *metricsAddr != "" {
		metrics = observability.NewMetrics("tokenforge")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", *metricsAddr)
			if err := http.ListenAndServe(*metricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	rpcOpts := []solana.ClientOption{}
	if metrics != nil {
		rpcOpts = append(rpcOpts, solana.WithCallObserver(func(method string, d time.Duration) {
			metrics.RPCCallLatency.WithLabelValues(method).Observe(d.Seconds())
		}))
	}
	rpc := solana.NewHTTPClient(*rpcEndpoint, rpcOpts...)

	var ws solana.WSClient
	if *wsEndpoint != "" {
		wsClient, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Printf("WebSocket connect failed (%v), falling back to polling", err)
		} else {
			ws = wsClient
			defer wsClient.Close()
		}
	}

	c, err := creator.New(creator.Options{
		RPC:            rpc,
		WS:             ws,
		Publisher:      pinata.NewClient(*pinataKey, *pinataSecret),
		Wallet:         w,
		PlatformWallet: feeWallet,
		ConfirmTimeout: *confirmTimeout,
		Metrics:        metrics,
		Logger:         logger,
		Verbose:        *verbose,
	})
	if err != nil {
		logger.Fatalf("Setup: %v", err)
	}

	result, err := c.CreateToken(ctx, creator.Request{
		Name:         *name,
		Symbol:       *symbol,
		Description:  *description,
		Decimals:     uint8(*decimals),
		Supply:       *supply,
		Image:        image,
		ImageName:    filepath.Base(*imagePath),
		RevokeMint:   *revokeMint,
		RevokeFreeze: *revokeFreeze,
		RevokeUpdate: *revokeUpdate,
	})
	if err != nil {
		logger.Fatalf("Token creation failed: %v", err)
	}

	fmt.Println("Token created successfully:")
	fmt.Printf("  Mint:      %s\n", result.MintAddress)
	fmt.Printf("  Metadata:  %s\n", result.MetadataURI)
	fmt.Printf("  Signature: %s\n", result.Signature)
	fmt.Printf("  Explorer:  https://solscan.io/tx/%s\n", result.Signature)
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

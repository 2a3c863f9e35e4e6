// Command sxt-attestor runs the off-chain attestor loop of spec §4.H:
// watch finalized blocks, rebuild the attestation tree, sign the state
// root, and submit an attest_block extrinsic. It also exposes the
// one-shot registration and verification subcommands operators run by
// hand.
package main

import (
	"context"
	"crypto/ecdsa"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sxt-network/sxt-node/pkg/attest/attestor"
	"github.com/sxt-network/sxt-node/pkg/bridge/rpcclient"
	"github.com/sxt-network/sxt-node/pkg/bridge/submitter"
	"github.com/sxt-network/sxt-node/pkg/config"
	"github.com/sxt-network/sxt-node/pkg/metrics"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to attestor configuration")
	flag.Parse()

	args := flag.Args()
	cmd := "serve"
	if len(args) > 0 {
		cmd = args[0]
		args = args[1:]
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[attestor] load config %s: %v", *configPath, err)
	}

	key, err := crypto.LoadECDSA(cfg.Attestor.SigningKeyPath)
	if err != nil {
		log.Fatalf("[attestor] load signing key %s: %v", cfg.Attestor.SigningKeyPath, err)
	}

	switch cmd {
	case "register":
		runRegister(key, args)
	case "verify":
		runVerify(cfg, args)
	case "serve":
		runServe(cfg, key)
	default:
		log.Fatalf("[attestor] unknown subcommand %q (want serve|register|verify)", cmd)
	}
}

// runRegister implements spec §4.H "Registration (one-shot, run
// manually)": sign a canonical message over the attestor's runtime
// account id and print (r,s,v,pub_key,eth_address) for admin enrollment.
func runRegister(key *ecdsa.PrivateKey, args []string) {
	if len(args) < 1 {
		log.Fatalf("[attestor] register requires a runtime account id argument")
	}
	proof, err := attestor.Register(key, args[0])
	if err != nil {
		log.Fatalf("[attestor] register: %v", err)
	}
	fmt.Println(proof.String())
}

// runVerify implements spec §4.H "Verification (one-shot, run
// manually)": fetch stored attestations for a block, recompute the
// canonical message, verify each signature, and assert all state roots
// agree.
func runVerify(cfg *config.Config, args []string) {
	if len(args) < 1 {
		log.Fatalf("[attestor] verify requires a block number argument")
	}
	blockNumber, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		log.Fatalf("[attestor] verify: invalid block number %q: %v", args[0], err)
	}

	client, err := rpcclient.Dial(cfg.Chain.NativeRPCURL)
	if err != nil {
		log.Fatalf("[attestor] verify: dial %s: %v", cfg.Chain.NativeRPCURL, err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Chain.RequestTimeout.Duration())
	defer cancel()

	attestations, err := client.Attestations(ctx, blockNumber)
	if err != nil {
		log.Fatalf("[attestor] verify: fetch attestations for block %d: %v", blockNumber, err)
	}

	stateRoot, err := attestor.VerifyBlock(blockNumber, attestations)
	if err != nil {
		log.Fatalf("[attestor] verify: block %d: %v", blockNumber, err)
	}
	fmt.Printf("block %d: %d attestations agree, state_root=0x%x\n", blockNumber, len(attestations), stateRoot)
}

// runServe is the long-running attestor loop: dial the native chain,
// subscribe to finalized blocks, and process each one until a shutdown
// signal arrives.
func runServe(cfg *config.Config, key *ecdsa.PrivateKey) {
	logger := log.New(os.Stdout, "[attestor] ", log.LstdFlags)

	client, err := rpcclient.Dial(cfg.Chain.NativeRPCURL)
	if err != nil {
		log.Fatalf("[attestor] dial %s: %v", cfg.Chain.NativeRPCURL, err)
	}
	defer client.Close()

	reg := metrics.New(prometheus.NewRegistry())
	sub := submitter.New(client, reg)
	loop := attestor.New(client, sub, reg, key, cfg.Attestor.BlockProcessConcurrency, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blocks, err := client.FinalizedBlocks(ctx)
	if err != nil {
		log.Fatalf("[attestor] subscribe to finalized blocks: %v", err)
	}

	loopErr := make(chan error, 1)
	go func() { loopErr <- loop.Run(ctx, blocks) }()

	var httpServer *http.Server
	if cfg.Monitoring.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Monitoring.MetricsPath, promhttp.Handler())
		httpServer = &http.Server{Addr: cfg.Monitoring.ListenAddr, Handler: mux}
		go func() {
			logger.Printf("metrics listening on %s%s", cfg.Monitoring.ListenAddr, cfg.Monitoring.MetricsPath)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	logger.Printf("attestor running, watching %s", cfg.Chain.NativeRPCURL)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
		logger.Printf("shutdown signal received")
	case err := <-loopErr:
		if err != nil {
			logger.Printf("loop exited: %v", err)
		}
	}

	cancel()

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("metrics server shutdown error: %v", err)
		}
	}
}

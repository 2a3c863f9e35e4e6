// Command sxt-forwarder runs the off-chain event forwarder of spec
// §4.I: watch finalized native-chain blocks, rebuild attestation
// proofs for zero-prefixed unbondings, and call sxtFulfillUnstake on
// the external chain.
package main

import (
	"context"
	"flag"
	"log"
	"math/big"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sxt-network/sxt-node/pkg/bridge/forwarder"
	"github.com/sxt-network/sxt-node/pkg/bridge/rpcclient"
	"github.com/sxt-network/sxt-node/pkg/bridge/status"
	"github.com/sxt-network/sxt-node/pkg/config"
	"github.com/sxt-network/sxt-node/pkg/metrics"
)

const watermarkLoopName = "sxt-forwarder"

func main() {
	configPath := flag.String("config", "config.yaml", "path to forwarder configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("[forwarder] load config %s: %v", *configPath, err)
	}

	logger := log.New(os.Stdout, "[forwarder] ", log.LstdFlags)

	native, err := rpcclient.Dial(cfg.Chain.NativeRPCURL)
	if err != nil {
		log.Fatalf("[forwarder] dial native chain %s: %v", cfg.Chain.NativeRPCURL, err)
	}
	defer native.Close()

	external, err := ethclient.Dial(cfg.Chain.ExternalRPCURL)
	if err != nil {
		log.Fatalf("[forwarder] dial external chain %s: %v", cfg.Chain.ExternalRPCURL, err)
	}
	defer external.Close()

	key, err := crypto.LoadECDSA(cfg.Forwarder.SigningKeyPath)
	if err != nil {
		log.Fatalf("[forwarder] load signing key %s: %v", cfg.Forwarder.SigningKeyPath, err)
	}

	bridge, err := forwarder.NewSxtBridge(
		common.HexToAddress(cfg.Chain.BridgeContractAddr),
		external,
		key,
		big.NewInt(cfg.Chain.ExternalChainID),
	)
	if err != nil {
		log.Fatalf("[forwarder] build bridge contract binding: %v", err)
	}

	reg := metrics.New(prometheus.NewRegistry())
	loop := forwarder.New(native, native, native, bridge, reg, cfg.Forwarder.BlockProcessConcurrency, logger)

	var watermarks *status.WatermarkStore
	if cfg.Database.DSN != "" {
		dbClient, err := status.NewClient(status.Config{
			DSN:             cfg.Database.DSN,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime.Duration(),
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime.Duration(),
		}, status.WithLogger(log.New(os.Stdout, "[forwarder:status] ", log.LstdFlags)))
		if err != nil {
			log.Fatalf("[forwarder] connect status database: %v", err)
		}
		defer dbClient.Close()

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Chain.RequestTimeout.Duration())
		if err := dbClient.EnsureSchema(ctx); err != nil {
			cancel()
			log.Fatalf("[forwarder] ensure status schema: %v", err)
		}
		cancel()

		watermarks = status.NewWatermarkStore(dbClient)
		if last, ok, err := watermarks.Watermark(context.Background(), watermarkLoopName); err != nil {
			logger.Printf("read watermark: %v", err)
		} else if ok {
			logger.Printf("last recorded watermark block %d", last)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	finalized, err := native.FinalizedBlocks(ctx)
	if err != nil {
		log.Fatalf("[forwarder] subscribe to finalized blocks: %v", err)
	}
	blocks := watermarkTee(ctx, finalized, watermarks, logger)

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

	logger.Printf("forwarder running, watching %s", cfg.Chain.NativeRPCURL)

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

// watermarkTee passes finalized block numbers through unchanged while
// best-effort recording each one as the forwarder's resumption point, so
// a restart can tell an operator where the subscription last was.
func watermarkTee(ctx context.Context, in <-chan uint64, watermarks *status.WatermarkStore, logger *log.Logger) <-chan uint64 {
	if watermarks == nil {
		return in
	}
	out := make(chan uint64)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case blockNumber, ok := <-in:
				if !ok {
					return
				}
				if err := watermarks.SetWatermark(ctx, watermarkLoopName, blockNumber); err != nil {
					logger.Printf("record watermark %d: %v", blockNumber, err)
				}
				select {
				case out <- blockNumber:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

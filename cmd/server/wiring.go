package main

import (
	"context"
	"fmt"
	"math"

	"github.com/tekiplanet/safejet-processing-deposit/internal/config"
	"github.com/tekiplanet/safejet-processing-deposit/internal/confirmation"
	"github.com/tekiplanet/safejet-processing-deposit/internal/coordinator"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/repositories"
	"github.com/tekiplanet/safejet-processing-deposit/internal/infrastructure/blockchain"
	"github.com/tekiplanet/safejet-processing-deposit/internal/ingestion"
	"github.com/tekiplanet/safejet-processing-deposit/internal/ledger"
	"github.com/tekiplanet/safejet-processing-deposit/internal/monitor"
	"github.com/tekiplanet/safejet-processing-deposit/internal/observability"
	"github.com/tekiplanet/safejet-processing-deposit/internal/walletfilter"
)

// buildAdapter dials the chain family's client and wraps it in the matching
// ChainAdapter. EVM clients are shared per RPC URL via clientFactory; the
// other families dial once per monitor since they hold no shared state
// worth caching.
func buildAdapter(ctx context.Context, chain entities.ChainKey, netCfg config.NetworkConfig, tronAPIKey string, clientFactory *blockchain.ClientFactory) (blockchain.ChainAdapter, error) {
	switch chain.Family() {
	case entities.FamilyEVM:
		client, err := clientFactory.GetEVMClient(netCfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial EVM client: %w", err)
		}
		return blockchain.NewEVMAdapter(chain, client), nil

	case entities.FamilyBitcoin:
		client := blockchain.NewBTCClient(netCfg.RPCURL, netCfg.RPCUser, netCfg.RPCPassword)
		return blockchain.NewBTCAdapter(client), nil

	case entities.FamilyTron:
		client := blockchain.NewTronClient(netCfg.RPCURL, tronAPIKey)
		return blockchain.NewTronAdapter(client), nil

	case entities.FamilyXRP:
		client, err := blockchain.NewXRPClient(ctx, netCfg.RPCURL)
		if err != nil {
			return nil, fmt.Errorf("dial XRP client: %w", err)
		}
		return blockchain.NewXRPAdapter(client), nil

	default:
		return nil, fmt.Errorf("no adapter for chain family of %s", chain)
	}
}

// requiredConfirmations closes over cfg so internal/confirmation stays
// independent of internal/config's types. A target that was never
// configured can't reach here (buildMonitors only starts monitors for
// configured targets), so MaxInt64 is a defensive floor, not a real path.
func requiredConfirmations(cfg *config.Config) confirmation.RequiredConfirmations {
	return func(target entities.Target) int64 {
		netCfg, ok := cfg.NetworkConfig(target)
		if !ok {
			return math.MaxInt64
		}
		return netCfg.RequiredConfirmations
	}
}

// buildMonitors constructs one Monitor per configured (chain, network) pair
// whose RPC URL is set. A pair with no RPC URL is skipped with an info-level
// log line and is not run in this deployment. A pair whose client fails to dial
// is logged and skipped; per the Coordinator's contract this exclusion is
// for the lifetime of the process, so a construction failure here is
// treated the same way a later Probe failure would be. It also returns a
// target -> adapter map for the /testConnection operational endpoint.
func buildMonitors(ctx context.Context, cfg *config.Config, clientFactory *blockchain.ClientFactory, wallets repositories.WalletRepository, tokens repositories.TokenRepository, deposits repositories.DepositRepository, checkpoints repositories.CheckpointRepository, applier *ledger.Applier, metrics *observability.Metrics) ([]coordinator.Runnable, map[entities.Target]blockchain.ChainAdapter) {
	var monitors []coordinator.Runnable
	adapters := make(map[entities.Target]blockchain.ChainAdapter)

	required := requiredConfirmations(cfg)

	for chain, chainCfg := range cfg.Chains {
		for network, netCfg := range chainCfg.Networks {
			target := entities.Target{Chain: chain, Network: network}

			if netCfg.RPCURL == "" {
				logWiring("skipping unconfigured target", target, nil)
				continue
			}

			adapter, err := buildAdapter(ctx, chain, netCfg, cfg.Tron.APIKey, clientFactory)
			if err != nil {
				logWiring("failed to dial adapter, excluding target for process lifetime", target, err)
				continue
			}

			writer := walletfilter.NewDepositWriter(wallets, tokens, deposits)
			writer.Metrics = metrics

			updater := confirmation.New(deposits, applier, required)
			updater.Metrics = metrics

			pipelineCfg := ingestion.Config{
				BlockDelay:       chainCfg.BlockDelay,
				CheckInterval:    chainCfg.CheckInterval,
				MaxBlocksPerTick: chainCfg.MaxBlocksPerTick,
			}

			m := monitor.New(target, adapter, checkpoints, writer, updater, pipelineCfg)
			m.SetMetrics(metrics)

			monitors = append(monitors, m)
			adapters[target] = adapter
		}
	}

	return monitors, adapters
}

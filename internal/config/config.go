package config

import (
	"os"
	"strconv"
	"time"

	"github.com/tekiplanet/safejet-processing-deposit/internal/domain/entities"
)

// Config holds all configuration values.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Chains    map[entities.ChainKey]ChainConfig
	Tron      TronConfig
	WalletTTL time.Duration
}

// ServerConfig holds the operational HTTP surface configuration.
type ServerConfig struct {
	Port string
	Env  string
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// URL returns the database connection URL.
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode + "&prepare_threshold=0"
}

// RedisConfig holds Redis configuration for the wallet directory cache.
type RedisConfig struct {
	URL      string
	Password string
}

// TronConfig holds the Tron-specific HTTP API key, separate from the
// per-network RPC URLs held in ChainConfig.
type TronConfig struct {
	APIKey string
}

// NetworkConfig holds everything specific to one (chain, network) pair.
type NetworkConfig struct {
	RPCURL                string
	RPCUser               string
	RPCPassword           string
	RequiredConfirmations int64
}

// ChainConfig holds the per-chain settings shared across networks plus the
// per-network overrides.
type ChainConfig struct {
	BlockDelay    time.Duration
	CheckInterval time.Duration

	// MaxBlocksPerTick caps how many blocks one pull-mode tick advances.
	// Zero means unlimited. Unused by EVM chains, which run push-mode.
	MaxBlocksPerTick uint64

	Networks map[entities.Network]NetworkConfig
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "deposits"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
		},
		Tron: TronConfig{
			APIKey: getEnv("TRON_PRO_API_KEY", ""),
		},
		WalletTTL: getEnvAsDuration("WALLET_DIRECTORY_TTL", 5*time.Second),
		Chains: map[entities.ChainKey]ChainConfig{
			entities.ChainETH: {
				BlockDelay:    getEnvAsDuration("ETH_BLOCK_DELAY", 1000*time.Millisecond),
				CheckInterval: getEnvAsDuration("ETH_CHECK_INTERVAL", 30*time.Second),
				Networks: map[entities.Network]NetworkConfig{
					entities.NetworkMainnet: {
						RPCURL:                getEnv("ETH_MAINNET_RPC_URL", ""),
						RequiredConfirmations: getEnvAsInt64("ETH_MAINNET_CONFIRMATIONS", 12),
					},
					entities.NetworkTestnet: {
						RPCURL:                getEnv("ETH_TESTNET_RPC_URL", ""),
						RequiredConfirmations: getEnvAsInt64("ETH_TESTNET_CONFIRMATIONS", 5),
					},
				},
			},
			entities.ChainBSC: {
				BlockDelay:    getEnvAsDuration("BSC_BLOCK_DELAY", 500*time.Millisecond),
				CheckInterval: getEnvAsDuration("BSC_CHECK_INTERVAL", 30*time.Second),
				Networks: map[entities.Network]NetworkConfig{
					entities.NetworkMainnet: {
						RPCURL:                getEnv("BSC_MAINNET_RPC_URL", ""),
						RequiredConfirmations: getEnvAsInt64("BSC_MAINNET_CONFIRMATIONS", 15),
					},
					entities.NetworkTestnet: {
						RPCURL:                getEnv("BSC_TESTNET_RPC_URL", ""),
						RequiredConfirmations: getEnvAsInt64("BSC_TESTNET_CONFIRMATIONS", 6),
					},
				},
			},
			entities.ChainBTC: {
				BlockDelay:       getEnvAsDuration("BTC_BLOCK_DELAY", 2000*time.Millisecond),
				CheckInterval:    getEnvAsDuration("BTC_CHECK_INTERVAL", 120*time.Second),
				MaxBlocksPerTick: uint64(getEnvAsInt64("BTC_MAX_BLOCKS_PER_TICK", 50)),
				Networks: map[entities.Network]NetworkConfig{
					entities.NetworkMainnet: {
						RPCURL:                getEnv("BTC_MAINNET_RPC_URL", ""),
						RPCUser:               getEnv("BTC_MAINNET_RPC_USER", ""),
						RPCPassword:           getEnv("BTC_MAINNET_RPC_PASSWORD", ""),
						RequiredConfirmations: getEnvAsInt64("BTC_MAINNET_CONFIRMATIONS", 3),
					},
					entities.NetworkTestnet: {
						RPCURL:                getEnv("BTC_TESTNET_RPC_URL", ""),
						RPCUser:               getEnv("BTC_TESTNET_RPC_USER", ""),
						RPCPassword:           getEnv("BTC_TESTNET_RPC_PASSWORD", ""),
						RequiredConfirmations: getEnvAsInt64("BTC_TESTNET_CONFIRMATIONS", 2),
					},
				},
			},
			entities.ChainTRX: {
				BlockDelay:       getEnvAsDuration("TRX_BLOCK_DELAY", 5000*time.Millisecond),
				CheckInterval:    getEnvAsDuration("TRX_CHECK_INTERVAL", 10*time.Second),
				MaxBlocksPerTick: uint64(getEnvAsInt64("TRX_MAX_BLOCKS_PER_TICK", 5)),
				Networks: map[entities.Network]NetworkConfig{
					entities.NetworkMainnet: {
						RPCURL:                getEnv("TRX_MAINNET_RPC_URL", "https://api.trongrid.io"),
						RequiredConfirmations: getEnvAsInt64("TRX_MAINNET_CONFIRMATIONS", 20),
					},
					entities.NetworkTestnet: {
						RPCURL:                getEnv("TRX_TESTNET_RPC_URL", "https://api.shasta.trongrid.io"),
						RequiredConfirmations: getEnvAsInt64("TRX_TESTNET_CONFIRMATIONS", 10),
					},
				},
			},
			entities.ChainXRP: {
				BlockDelay:    getEnvAsDuration("XRP_BLOCK_DELAY", 2000*time.Millisecond),
				CheckInterval: getEnvAsDuration("XRP_CHECK_INTERVAL", 30*time.Second),
				Networks: map[entities.Network]NetworkConfig{
					entities.NetworkMainnet: {
						RPCURL:                getEnv("XRP_MAINNET_RPC_URL", "wss://xrplcluster.com"),
						RequiredConfirmations: getEnvAsInt64("XRP_MAINNET_CONFIRMATIONS", 4),
					},
					entities.NetworkTestnet: {
						RPCURL:                getEnv("XRP_TESTNET_RPC_URL", "wss://s.altnet.rippletest.net:51233"),
						RequiredConfirmations: getEnvAsInt64("XRP_TESTNET_CONFIRMATIONS", 2),
					},
				},
			},
		},
	}
}

// NetworkConfig looks up the configuration for a target, reporting false if
// the chain or network was never configured.
func (c *Config) NetworkConfig(target entities.Target) (NetworkConfig, bool) {
	chainCfg, ok := c.Chains[target.Chain]
	if !ok {
		return NetworkConfig{}, false
	}
	netCfg, ok := chainCfg.Networks[target.Network]
	return netCfg, ok
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

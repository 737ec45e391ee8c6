package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/feral-file/ff-minter/internal/domain"
)

// BaseConfig holds base configuration
type BaseConfig struct {
	Debug       bool   `mapstructure:"debug"`
	SentryDSN   string `mapstructure:"sentry_dsn"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// NATSConfig holds NATS JetStream configuration. An empty URL disables notifications.
type NATSConfig struct {
	URL            string        `mapstructure:"url"`
	SubjectPrefix  string        `mapstructure:"subject_prefix"`
	MaxReconnects  int           `mapstructure:"max_reconnects"`
	ReconnectWait  time.Duration `mapstructure:"reconnect_wait"`
	ConnectionName string        `mapstructure:"connection_name"`
}

// NetworkConfig is one network descriptor row
type NetworkConfig struct {
	Name         string `mapstructure:"name"`
	ChainID      uint64 `mapstructure:"chain_id"`
	DisplayName  string `mapstructure:"display_name"`
	Slug         string `mapstructure:"slug"`
	CustodyAsset string `mapstructure:"custody_asset"`
	Client       string `mapstructure:"client"`
	RPCURL       string `mapstructure:"rpc_url"`
	WebSocketURL string `mapstructure:"websocket_url"`
}

// EthereumConfig holds the signing keys of contract owners, hex encoded
type EthereumConfig struct {
	SignerKeys  []string      `mapstructure:"signer_keys"`
	DialTimeout time.Duration `mapstructure:"dial_timeout"`
}

// ImmutableXConfig holds the off-chain mint API configuration
type ImmutableXConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	SignerKey      string        `mapstructure:"signer_key"`
	RoyaltyAddress string        `mapstructure:"royalty_address"`
	RoyaltyPercent float64       `mapstructure:"royalty_percent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// CustodyConfig holds the vault API configuration
type CustodyConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	PrivateKey     string        `mapstructure:"private_key"`
	PrivateKeyPath string        `mapstructure:"private_key_path"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PaymentConfig holds the payment processor configuration
type PaymentConfig struct {
	APIURL         string        `mapstructure:"api_url"`
	APIKey         string        `mapstructure:"api_key"`
	WalletID       string        `mapstructure:"wallet_id"`
	WalletAddress  string        `mapstructure:"wallet_address"`
	FiatCurrency   string        `mapstructure:"fiat_currency"`
	DigitalCode    string        `mapstructure:"digital_currency"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// PollerConfig holds payment poller configuration
type PollerConfig struct {
	Interval          time.Duration `mapstructure:"interval"`
	TickTimeout       time.Duration `mapstructure:"tick_timeout"`
	DeleteConcurrency int           `mapstructure:"delete_concurrency"`
	RecoverInterval   time.Duration `mapstructure:"recover_interval"`
}

// MarketplaceConfig holds marketplace base URLs
type MarketplaceConfig struct {
	OpenSeaURL    string `mapstructure:"opensea_url"`
	ImmutableXURL string `mapstructure:"immutablex_url"`
}

// BlobConfig holds object storage configuration
type BlobConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Region        string `mapstructure:"region"`
	Endpoint      string `mapstructure:"endpoint"`
	Prefix        string `mapstructure:"prefix"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// CorrelatorConfig holds event correlator configuration
type CorrelatorConfig struct {
	ListenerTTL   time.Duration `mapstructure:"listener_ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	// ReconcileInterval is how often expired mints are re-checked on chain
	ReconcileInterval time.Duration `mapstructure:"reconcile_interval"`
	ReplayBuffer      int           `mapstructure:"replay_buffer"`
}

// RateLimitConfig holds the request budget of one outbound provider
type RateLimitConfig struct {
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxQueueTime      time.Duration `mapstructure:"max_queue_time"`
}

// MinterConfig holds configuration for the minter binary
type MinterConfig struct {
	BaseConfig  `mapstructure:",squash"`
	Database    DatabaseConfig    `mapstructure:"database"`
	NATS        NATSConfig        `mapstructure:"nats"`
	Networks    []NetworkConfig   `mapstructure:"networks"`
	Ethereum    EthereumConfig    `mapstructure:"ethereum"`
	ImmutableX  ImmutableXConfig  `mapstructure:"immutablex"`
	Custody     CustodyConfig     `mapstructure:"custody"`
	Payment     PaymentConfig     `mapstructure:"payment"`
	Poller      PollerConfig      `mapstructure:"poller"`
	Marketplace MarketplaceConfig `mapstructure:"marketplace"`
	Blob        BlobConfig        `mapstructure:"blob"`
	Correlator  CorrelatorConfig  `mapstructure:"correlator"`
	// RateLimits is keyed by provider: payment, custody or immutablex
	RateLimits map[string]RateLimitConfig `mapstructure:"rate_limits"`
}

// LoadMinterConfig loads configuration for the minter binary
func LoadMinterConfig(configFile string, envPath string) (*MinterConfig, error) {
	v := configureViper("minter", configFile, envPath)

	v.SetDefault("environment", "development")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "1h")
	v.SetDefault("database.conn_max_idle_time", "10m")
	v.SetDefault("nats.subject_prefix", "minter")
	v.SetDefault("nats.max_reconnects", 10)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.connection_name", "ff-minter")
	v.SetDefault("ethereum.dial_timeout", "15s")
	v.SetDefault("immutablex.request_timeout", "30s")
	v.SetDefault("custody.request_timeout", "30s")
	v.SetDefault("payment.fiat_currency", "USD")
	v.SetDefault("payment.digital_currency", "USD-DEPOSIT")
	v.SetDefault("payment.request_timeout", "30s")
	v.SetDefault("poller.interval", "5s")
	v.SetDefault("poller.tick_timeout", "20s")
	v.SetDefault("poller.delete_concurrency", 4)
	v.SetDefault("poller.recover_interval", "5m")
	v.SetDefault("marketplace.opensea_url", "https://opensea.io")
	v.SetDefault("marketplace.immutablex_url", "https://market.immutable.com/")
	v.SetDefault("correlator.listener_ttl", "30m")
	v.SetDefault("correlator.sweep_interval", "1m")
	v.SetDefault("correlator.reconcile_interval", "10m")
	v.SetDefault("correlator.replay_buffer", 256)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg MinterConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks required fields and network descriptors
func (c *MinterConfig) Validate() error {
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if len(c.Networks) == 0 {
		return errors.New("at least one network is required")
	}

	seen := make(map[string]struct{}, len(c.Networks))
	for i, n := range c.Networks {
		if n.Name == "" {
			return fmt.Errorf("networks[%d].name is required", i)
		}
		if _, ok := seen[n.Name]; ok {
			return fmt.Errorf("networks[%d]: duplicate network %q", i, n.Name)
		}
		seen[n.Name] = struct{}{}

		if err := domain.ClientKind(n.Client).Validate(); err != nil {
			return fmt.Errorf("networks[%d]: %w", i, err)
		}
		if domain.ClientKind(n.Client) == domain.ClientKindDefault && n.RPCURL == "" && n.WebSocketURL == "" {
			return fmt.Errorf("networks[%d]: rpc_url or websocket_url is required", i)
		}
	}

	return nil
}

// Descriptors converts the configured networks into immutable descriptors
func (c *MinterConfig) Descriptors() []domain.Network {
	networks := make([]domain.Network, 0, len(c.Networks))
	for _, n := range c.Networks {
		networks = append(networks, n.Descriptor())
	}
	return networks
}

// Descriptor converts a network row into a domain network
func (n NetworkConfig) Descriptor() domain.Network {
	return domain.Network{
		Name:         n.Name,
		ChainID:      n.ChainID,
		DisplayName:  n.DisplayName,
		Slug:         n.Slug,
		CustodyAsset: n.CustodyAsset,
		ClientKind:   domain.ClientKind(n.Client),
		RPCURL:       n.RPCURL,
		WebSocketURL: n.WebSocketURL,
	}
}

// configureViper returns a viper instance with the config file and environment variables set
func configureViper(service string, configFile string, envPath string) *viper.Viper {
	v := viper.New()

	loadEnv(envPath, service)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath(fmt.Sprintf("cmd/%s/", service))
		v.AddConfigPath("config/")
	}

	v.SetEnvPrefix("FF_MINTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindAllEnvVars(v)
	return v
}

// bindAllEnvVars binds every scalar key so env vars work without a config file.
// Networks are a list and can only come from the config file.
func bindAllEnvVars(v *viper.Viper) {
	keys := []string{
		"debug",
		"sentry_dsn",
		"environment",
		// Database
		"database.host",
		"database.port",
		"database.user",
		"database.password",
		"database.dbname",
		"database.sslmode",
		"database.max_open_conns",
		"database.max_idle_conns",
		"database.conn_max_lifetime",
		"database.conn_max_idle_time",
		// NATS
		"nats.url",
		"nats.subject_prefix",
		"nats.max_reconnects",
		"nats.reconnect_wait",
		"nats.connection_name",
		// Chains
		"ethereum.signer_keys",
		"ethereum.dial_timeout",
		"immutablex.api_url",
		"immutablex.api_key",
		"immutablex.signer_key",
		"immutablex.royalty_address",
		"immutablex.royalty_percent",
		"immutablex.request_timeout",
		// Custody
		"custody.api_url",
		"custody.api_key",
		"custody.private_key",
		"custody.private_key_path",
		"custody.request_timeout",
		// Payment
		"payment.api_url",
		"payment.api_key",
		"payment.wallet_id",
		"payment.wallet_address",
		"payment.fiat_currency",
		"payment.digital_currency",
		"payment.request_timeout",
		"poller.interval",
		"poller.tick_timeout",
		"poller.delete_concurrency",
		"poller.recover_interval",
		// Marketplace and storage
		"marketplace.opensea_url",
		"marketplace.immutablex_url",
		"blob.bucket",
		"blob.region",
		"blob.endpoint",
		"blob.prefix",
		"blob.public_base_url",
		// Correlator
		"correlator.listener_ttl",
		"correlator.sweep_interval",
		"correlator.reconcile_interval",
		"correlator.replay_buffer",
	}

	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// loadEnv loads .env files from the config directory, later files overriding earlier ones
func loadEnv(envPath string, service string) {
	envFiles := []string{".env", ".env.local"}
	if service != "" {
		envFiles = append(envFiles, ".env."+service+".local")
	}

	if envPath == "" {
		envPath = "config/"
	}

	for _, envFile := range envFiles {
		_ = godotenv.Overload(filepath.Join(envPath, envFile))
	}
}

// ChdirRepoRoot changes the current working directory to the repository root
func ChdirRepoRoot() {
	cwd, _ := os.Getwd()
	for range 5 {
		if _, err := os.Stat(filepath.Join(cwd, "config")); err == nil {
			_ = os.Chdir(cwd)
			return
		}
		cwd = filepath.Dir(cwd)
	}
}

// DSN returns the database connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

type Configs struct {
	Env string

	Database  DatabaseConfigs
	ApiServer ServerConfigs
	Auth      AuthConfigs
	Redis     RedisConfigs
	Ledger    LedgerConfigs
}

type DatabaseConfigs struct {
	Host     string
	Port     string
	Database string
	User     string
	Password string
}

func (d *DatabaseConfigs) ConnectionString() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string
	Port string
	Cert string
	Key  string

	AllowedOrigins []string
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Addr string
}

type LedgerConfigs struct {
	Chain   string
	ChainID int64

	// SecretKey seeds the deterministic treasury key used to sign transfer
	// and mint transactions.
	SecretKey string

	RPCEndpoints []string
	IndexerURL   string

	TokenAddress       string
	PassportAddress    string
	AchievementAddress string

	ClaimCooldown      time.Duration
	ConfirmMaxAttempts int
	ConfirmInterval    time.Duration
	IndexerPageSize    int

	ReconcileFrequency time.Duration
}

// Load reads configurations from a TOML file and fills in defaults for
// unset polling and cooldown knobs.
func Load(path string) (Configs, error) {
	var cfg Configs
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return Configs{}, err
	}

	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Configs) {
	if cfg.Ledger.ClaimCooldown == 0 {
		cfg.Ledger.ClaimCooldown = 2 * time.Minute
	}

	if cfg.Ledger.ConfirmMaxAttempts == 0 {
		cfg.Ledger.ConfirmMaxAttempts = 100
	}

	if cfg.Ledger.ConfirmInterval == 0 {
		cfg.Ledger.ConfirmInterval = 2 * time.Second
	}

	if cfg.Ledger.IndexerPageSize == 0 {
		cfg.Ledger.IndexerPageSize = 10
	}

	if cfg.Ledger.ReconcileFrequency == 0 {
		cfg.Ledger.ReconcileFrequency = 30 * time.Second
	}

	if cfg.ApiServer.Port == "" {
		cfg.ApiServer.Port = "8080"
	}
}

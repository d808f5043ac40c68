package connectors

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	CoinbaseBaseURL string        `envconfig:"COINBASE_BASE_URL" default:"https://api.coinbase.com"`
	CoinbaseTimeout time.Duration `envconfig:"COINBASE_TIMEOUT" default:"15s"`

	// ecdsa | jwt | static
	SigningMode string `envconfig:"SIGNING_MODE" default:"ecdsa"`

	// Swap the real exchange for PaperExchange.
	ExchangeSimulated bool `envconfig:"EXCHANGE_SIMULATED" default:"false"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

package security

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Base64 encoded 32 byte key used to unseal "enc:" values.
	ExchangeCRKey string `envconfig:"EXCHANGE_CREDENTIALS_KEY"`

	APIKeyName    string `envconfig:"COINBASE_API_KEY_NAME"`
	APIPrivateKey string `envconfig:"COINBASE_API_PRIVATE_KEY"`
	KeyFile       string `envconfig:"COINBASE_KEY_FILE" default:"attached_assets/cdp_api_key.json"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

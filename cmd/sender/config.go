package sender

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	RelayURL string        `envconfig:"RELAY_URL" default:"http://localhost:5000"`
	Timeout  time.Duration `envconfig:"RELAY_TIMEOUT" default:"20s"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

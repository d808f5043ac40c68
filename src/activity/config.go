package activity

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Extra browser origins allowed to open the log stream, e.g. https://dash.example.com.
	// Same-origin requests and clients that send no Origin are always accepted.
	StreamAllowedOrigins []string `envconfig:"STREAM_ALLOWED_ORIGINS"`
}

func GetConfig() Config {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		panic(fmt.Errorf("error processing env config: %w", err))
	}
	return config
}

package server

import (
	"fmt"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/activity"
	"webhookrelay/src/connectors"
	"webhookrelay/src/database"
	"webhookrelay/src/repository"
	"webhookrelay/src/security"
	"webhookrelay/src/strategy"
)

// Build opens storage and wires stores, exchange client and executor from the environment.
func Build() (Deps, error) {
	db, err := database.Open(database.GetConfig())
	if err != nil {
		return Deps{}, fmt.Errorf("open storage: %w", err)
	}

	exchange, err := connectors.NewExchange(connectors.GetConfig(), security.NewProvider(security.GetConfig()))
	if err != nil {
		return Deps{}, fmt.Errorf("build exchange client: %w", err)
	}

	logs, config := repository.NewStores(db)
	return NewDeps(logs, config, exchange), nil
}

// NewDeps wires the recorder, hub and executor around the given stores and exchange.
func NewDeps(logs repository.ActivityLogStore, config repository.ConfigurationStore, exchange connectors.Exchange) Deps {
	hub := activity.NewHub(activity.GetConfig().StreamAllowedOrigins...)
	recorder := activity.NewRecorder(logs, hub)

	return Deps{
		Logs:     logs,
		Config:   config,
		Exchange: exchange,
		Recorder: recorder,
		Hub:      hub,
		Executor: strategy.NewExecutor(logger.WithField("component", "executor"), config, exchange, recorder),
	}
}

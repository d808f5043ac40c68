package main

import (
	"fmt"
	"os"
	"time"

	logger "github.com/sirupsen/logrus"

	"webhookrelay/src/server"
	"webhookrelay/src/utils"
)

var APP_NAME = os.Getenv("APP_NAME")

func main() {
	utils.LoadEnv()
	utils.SetupLogger(utils.GetLogConfig())
	defer handlePanic()

	deps, err := server.Build()
	if err != nil {
		logger.WithError(err).Fatal("Failed to start relay")
	}

	server.StartServer(server.GetConfig(), deps)
}

func handlePanic() {
	if r := recover(); r != nil {
		logger.WithError(fmt.Errorf("%+v", r)).Error(fmt.Sprintf("Application %s panic", APP_NAME))
		//nolint
		time.Sleep(time.Second * 5)
	}
}

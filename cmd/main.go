package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"webhookrelay/cmd/keys"
	"webhookrelay/cmd/sender"
	"webhookrelay/src/connectors"
	"webhookrelay/src/security"
	"webhookrelay/src/server"
	"webhookrelay/src/utils"
)

var Version string

func main() {
	utils.LoadEnv()
	utils.SetupLogger(utils.GetLogConfig())

	app := cli.NewApp()
	app.Name = "Webhook Relay CMD"
	app.Usage = "The Coinbase webhook relay command line interface"
	app.Version = Version

	app.Commands = []cli.Command{
		serveCMD,
		probeCMD,
		sendCMD,
		sealKeyCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the webhook relay",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP relay until SIGINT or SIGTERM`,
	}
	probeCMD = cli.Command{
		Name:      "probe",
		Usage:     "test the Coinbase API connection",
		Action:    probeAction,
		ArgsUsage: "",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "relay", Usage: "ask a running relay instead of calling Coinbase directly"},
		},
		Description: `Send a signed read-only request to Coinbase and report whether it succeeded`,
	}
	sendCMD = cli.Command{
		Name:      "send",
		Usage:     "post a test signal to a running relay",
		Action:    sendAction,
		ArgsUsage: "<buy|sell>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "relay", Usage: "relay base URL (default RELAY_URL)"},
			cli.StringFlag{Name: "symbol", Usage: "product id, e.g. BTC-USD"},
			cli.StringFlag{Name: "amount", Usage: "base size override"},
			cli.StringFlag{Name: "price", Usage: "reference price"},
			cli.BoolFlag{Name: "live", Usage: "send testMode=false"},
			cli.BoolFlag{Name: "test", Usage: "send testMode=true"},
		},
		Description: `Build a webhook payload, validate it and post it to /api/webhook`,
	}
	sealKeyCMD = cli.Command{
		Name:      "seal-key",
		Usage:     "encrypt a Coinbase private key",
		Action:    sealKeyAction,
		ArgsUsage: "[private key]",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "file", Usage: "seal the privateKey inside this key file (default COINBASE_KEY_FILE)"},
		},
		Description: `Seal a private key with EXCHANGE_CREDENTIALS_KEY. Prints the sealed value, or rewrites the key file with --file`,
	}
)

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting relay CMD")

	deps, err := server.Build()
	if err != nil {
		logrus.WithError(err).Error("Starting cmd")
		return err
	}

	server.StartServer(server.GetConfig(), deps)
	return nil
}

func probeAction(c *cli.Context) error {
	log := logrus.WithField("cmd", "probe")
	ctx := context.Background()

	if relay := c.String("relay"); relay != "" {
		cfg := sender.GetConfig()
		cfg.RelayURL = relay
		res, err := sender.New(cfg).Probe(ctx)
		if err != nil {
			return err
		}
		return printResult(res.StatusCode, res.Body)
	}

	exchange, err := connectors.NewExchange(connectors.GetConfig(), security.NewProvider(security.GetConfig()))
	if err != nil {
		log.WithError(err).Error("Building exchange client")
		return err
	}
	if !exchange.TestConnection(ctx) {
		return errors.New("failed to connect to Coinbase API")
	}
	log.Info("Connected to Coinbase API successfully")
	return nil
}

func sendAction(c *cli.Context) error {
	cfg := sender.GetConfig()
	if relay := c.String("relay"); relay != "" {
		cfg.RelayURL = relay
	}

	sig := sender.Signal{
		Action: c.Args().First(),
		Symbol: c.String("symbol"),
		Amount: c.String("amount"),
		Price:  c.String("price"),
	}
	switch {
	case c.Bool("live") && c.Bool("test"):
		return errors.New("--live and --test are mutually exclusive")
	case c.Bool("live"):
		off := false
		sig.TestMode = &off
	case c.Bool("test"):
		on := true
		sig.TestMode = &on
	}

	res, err := sender.New(cfg).Send(context.Background(), sig)
	if err != nil {
		return err
	}
	return printResult(res.StatusCode, res.Body)
}

func sealKeyAction(c *cli.Context) error {
	s := &keys.Sealer{Log: logrus.WithField("cmd", "seal-key")}

	if value := c.Args().First(); value != "" {
		sealed, err := s.SealValue(value)
		if err != nil {
			return err
		}
		fmt.Println(sealed)
		return nil
	}

	path := c.String("file")
	if path == "" {
		path = keys.GetConfig().KeyFile
	}
	return s.SealFile(path)
}

func printResult(status int, body map[string]any) error {
	out, err := json.MarshalIndent(body, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	if status >= 300 {
		return fmt.Errorf("relay answered HTTP %d", status)
	}
	return nil
}

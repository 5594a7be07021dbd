package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/EvanJRichard/wallet-balance-tool/internal/config"
)

func main() {
	if err := config.InitConfig(); err != nil {
		fatal(err)
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "wbt"
	app.Usage = "watch-only balance viewer for extended public keys"
	app.Commands = append(
		app.Commands,
		&balance,
	)

	if err := app.Run(os.Args); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[wbt] %v\n", err)
	os.Exit(1)
}

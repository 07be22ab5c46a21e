package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"tradejournal/src/database"
	"tradejournal/src/server"
)

var Version string

func main() {
	app := cli.NewApp()
	app.Name = "Trade Journal CMD"
	app.Usage = "The trade journal command line interface"

	app.Commands = []cli.Command{
		serveCMD,
		migrateCMD,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var (
	serveCMD = cli.Command{
		Name:        "serve",
		Usage:       "run the journal API server",
		Action:      serveAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run the HTTP API server`,
	}
	migrateCMD = cli.Command{
		Name:        "migrate",
		Usage:       "run database migrations and exit",
		Action:      migrateAction,
		ArgsUsage:   "",
		Flags:       []cli.Flag{},
		Description: `Run schema migrations against the configured store`,
	}
)

func serveAction(_ *cli.Context) error {
	logrus.Info("Starting journal API server")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Failed to connect to database")
		return err
	}

	server.StartServer(server.GetConfig().Port)

	return nil
}

func migrateAction(_ *cli.Context) error {
	logrus.Info("Running database migrations")

	if err := database.InitMainDB(); err != nil {
		logrus.WithError(err).Error("Migrations failed")
		return err
	}

	logrus.Info("Migrations completed")

	return nil
}

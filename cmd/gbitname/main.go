// Copyright 2014 The go-probeum Authors
// This file is part of the go-bitname library.
//
// The go-bitname library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-bitname library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-bitname library. If not, see <http://www.gnu.org/licenses/>.

// gbitname is the standalone CLI host for the bitname gossip/sync engine,
// grounded on cmd/gprobe/main.go's urfave/cli.v1 app shape.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"gopkg.in/urfave/cli.v1"

	"github.com/bitname/go-bitname/bitname"
	"github.com/bitname/go-bitname/log"
	"github.com/bitname/go-bitname/namedb"
)

const clientIdentifier = "gbitname"

var (
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "Data directory for the name database",
		Value: "./data",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Usage: "Logging verbosity: 0=error,1=warn,2=info,3=debug,4=trace",
		Value: 3,
	}
)

func fatalf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}

func main() {
	app := cli.NewApp()
	app.Name = clientIdentifier
	app.Usage = "the bitname name-registration gossip node"
	app.Flags = []cli.Flag{dataDirFlag, verbosityFlag, configFileFlag}
	app.Commands = []cli.Command{dumpConfigCommand}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		fatalf("%v", err)
	}
}

func run(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	log.SetLevel(log.Level(cfg.Verbosity))

	dbPath := filepath.Join(cfg.DataDir, cfg.Bitname.NameDBDir)
	db, err := namedb.Open(dbPath, true)
	if err != nil {
		fatalf("opening name database: %v", err)
	}
	defer db.Close()

	channel := bitname.NewChannelCore(db)
	channel.Configure(cfg.Bitname)

	runCtx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		log.Info("shutting down")
		cancel()
	}()

	log.Info("gbitname starting", "datadir", cfg.DataDir, "listen", cfg.ListenAddr)
	if err := channel.RunFetchLoop(runCtx); err != nil && err != bitname.ErrCancelled {
		return err
	}
	return nil
}

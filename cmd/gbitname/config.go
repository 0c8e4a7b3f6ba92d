// Copyright 2017 The go-probeum Authors
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

package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"reflect"

	"github.com/naoina/toml"
	"gopkg.in/urfave/cli.v1"

	"github.com/bitname/go-bitname/bitname"
	"github.com/bitname/go-bitname/log"
)

var (
	dumpConfigCommand = cli.Command{
		Action:      dumpConfig,
		Name:        "dumpconfig",
		Usage:       "Show configuration values",
		ArgsUsage:   "",
		Category:    "MISCELLANEOUS COMMANDS",
		Description: `The dumpconfig command shows configuration values.`,
	}

	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
)

// tomlSettings mirrors cmd/gprobe/config.go's field-name convention: TOML
// keys use the same names as the Go struct fields, and a field present in
// the file but absent from the struct is logged and skipped rather than
// treated as a hard failure (deprecated config migration).
var tomlSettings = toml.Config{
	NormFieldName: func(rt reflect.Type, key string) string { return key },
	FieldToKey:    func(rt reflect.Type, field string) string { return field },
	MissingField: func(rt reflect.Type, field string) error {
		id := fmt.Sprintf("%s.%s", rt.String(), field)
		log.Warn("Config field is deprecated and won't have an effect", "name", id)
		return nil
	},
}

// gbitnameConfig is the full on-disk configuration: bitname.Config plus the
// ambient CLI/node settings spec.md §1 scopes outside the core.
type gbitnameConfig struct {
	Bitname   bitname.Config
	DataDir   string
	ListenAddr string
	Verbosity int
}

func defaultConfig() gbitnameConfig {
	return gbitnameConfig{
		Bitname:    bitname.Config{NameDBDir: "namedb"},
		DataDir:    "./data",
		ListenAddr: ":30303",
		Verbosity:  3,
	}
}

func loadConfig(file string, cfg *gbitnameConfig) error {
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	err = tomlSettings.NewDecoder(bufio.NewReader(f)).Decode(cfg)
	if _, ok := err.(*toml.LineError); ok {
		err = errors.New(file + ", " + err.Error())
	}
	return err
}

func makeConfig(ctx *cli.Context) gbitnameConfig {
	cfg := defaultConfig()
	if file := ctx.GlobalString(configFileFlag.Name); file != "" {
		if err := loadConfig(file, &cfg); err != nil {
			fatalf("%v", err)
		}
	}
	if ctx.GlobalIsSet(dataDirFlag.Name) {
		cfg.DataDir = ctx.GlobalString(dataDirFlag.Name)
	}
	if ctx.GlobalIsSet(verbosityFlag.Name) {
		cfg.Verbosity = ctx.GlobalInt(verbosityFlag.Name)
	}
	return cfg
}

func dumpConfig(ctx *cli.Context) error {
	cfg := makeConfig(ctx)
	out, err := tomlSettings.Marshal(&cfg)
	if err != nil {
		return err
	}

	dump := os.Stdout
	if ctx.NArg() > 0 {
		dump, err = os.OpenFile(ctx.Args().Get(0), os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}
		defer dump.Close()
	}
	_, err = dump.Write(out)
	return err
}

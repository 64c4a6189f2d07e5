// This file is part of Dismantle.
//
// Dismantle is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Dismantle is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dismantle.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"fmt"
	"os"
	"strconv"

	cli "github.com/urfave/cli/v2"

	"github.com/jetsetilly/dismantle/analysis"
	"github.com/jetsetilly/dismantle/logger"
	"github.com/jetsetilly/dismantle/relocation"
	"github.com/jetsetilly/dismantle/symbols"
)

func parseAddress(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad address '%s'", s)
	}
	return uint32(v), nil
}

func findFunctions(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one code image argument")
	}

	code, err := os.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	base, err := parseAddress(c.String("base"))
	if err != nil {
		return err
	}

	var opts analysis.FindOptions
	if s := c.String("start"); s != "" {
		if opts.StartAddress, err = parseAddress(s); err != nil {
			return err
		}
	}
	if s := c.String("end"); s != "" {
		if opts.EndAddress, err = parseAddress(s); err != nil {
			return err
		}
	}
	opts.MaxFunctions = c.Int("count")

	symbolMap := symbols.NewMap()
	functions := analysis.FindFunctions(code, base, c.String("prefix"), symbolMap, opts)

	for _, fn := range functions {
		if err := fn.WriteAssembly(os.Stdout, symbolMap); err != nil {
			return err
		}
		fmt.Println()
	}

	fmt.Fprintf(os.Stderr, "%d functions\n", len(functions))
	return nil
}

func normalizeRelocs(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected one relocation file argument")
	}

	table, err := relocation.ReadFile(c.Args().First())
	if err != nil {
		return err
	}

	return table.Write(os.Stdout)
}

func main() {
	app := &cli.App{
		Name:  "dismantle",
		Usage: "static analysis of ARM/Thumb code images",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "log",
				Usage: "echo the analysis log to stderr",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool("log") {
				logger.SetEcho(os.Stderr, true)
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "functions",
				Usage:     "discover the functions in a raw code image and list them",
				ArgsUsage: "<image>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "base",
						Usage: "load address of the image",
						Value: "0x02000000",
					},
					&cli.StringFlag{
						Name:  "start",
						Usage: "address to start discovery from",
					},
					&cli.StringFlag{
						Name:  "end",
						Usage: "address to stop discovery at",
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "maximum number of functions to discover",
					},
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "name prefix for discovered functions",
						Value: "func_",
					},
				},
				Action: findFunctions,
			},
			{
				Name:      "relocs",
				Usage:     "validate a relocation file and write it back normalized",
				ArgsUsage: "<file>",
				Action:    normalizeRelocs,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

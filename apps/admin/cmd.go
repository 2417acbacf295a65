package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/guestcode"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	db       *sql.DB
	guestSvc *guestcode.Service
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS]        - run a goose migration command (up, down, status, ...)")
	fmt.Println("  token -owner ID [-ttl 24h]    - print a signed API token for the owner")
	fmt.Println("  guestcode -owner ID -code CODE - rotate the owner's guest code")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenOwner := tokenCmd.String("owner", "", "The owner id the token authenticates.")
	tokenTTL := tokenCmd.Duration("ttl", 0, "Token lifetime. Defaults to the server's JWT expiration delta.")

	guestCodeCmd := flag.NewFlagSet("guestcode", flag.ContinueOnError)
	guestCodeOwner := guestCodeCmd.String("owner", "", "The owner id the code gives access to.")
	guestCodeCode := guestCodeCmd.String("code", "", "The new guest code.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *tokenOwner == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(core.OwnerID(*tokenOwner), *tokenTTL)
	case "guestcode":
		if err := guestCodeCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *guestCodeOwner == "" || *guestCodeCode == "" {
			guestCodeCmd.Usage()
			return errHelp
		}
		return cli.guestCode(core.OwnerID(*guestCodeOwner), *guestCodeCode)
	default:
		cli.printUsage()
		return errHelp
	}
}

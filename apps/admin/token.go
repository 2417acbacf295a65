package main

import (
	"fmt"
	"time"

	echoapi "github.com/trezcool/daftar/apps/api/echo"
	"github.com/trezcool/daftar/core"
)

// token prints a JWT authenticating `owner` for ttl.
func (cli *commandLine) token(owner core.OwnerID, ttl time.Duration) error {
	if err := owner.Check(); err != nil {
		return err
	}
	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetOwnerClaims(cli.conf, owner, ttl))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}

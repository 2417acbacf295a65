package main

import (
	"context"
	"fmt"

	"github.com/trezcool/daftar/core"
)

// guestCode makes `code` the owner's only active guest code.
func (cli *commandLine) guestCode(owner core.OwnerID, code string) error {
	gc, err := cli.guestSvc.Generate(context.Background(), owner, code)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "guest code %s active for %s\n", gc.Code, gc.OwnerID)
	return nil
}

package main

import (
	"github.com/pressly/goose/v3"

	"github.com/trezcool/daftar/storage/database"
)

var gooseRunFunc = goose.Run // mockable

// migrate runs a goose command against the migrations embedded in the database package.
func (cli *commandLine) migrate(args []string) error {
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return gooseRunFunc(args[0], cli.db, database.MigrationsDir, arguments...)
}

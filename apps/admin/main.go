package main

import (
	"log"
	"os"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/storage/database"
	sqlxrepos "github.com/trezcool/daftar/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer db.Close()

	// start CLI
	cli := commandLine{
		conf:     conf,
		db:       db.DB,
		guestSvc: guestcode.NewService(sqlxrepos.NewGuestCodeRepository(db), database.NewTransactor(db), conf.GuestCode.TTL),
		out:      os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		_ = db.Close()
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}

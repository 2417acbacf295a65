package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"

	"github.com/pkg/errors"

	echoapi "github.com/trezcool/daftar/apps/api/echo"
	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/balance"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/core/report"
	"github.com/trezcool/daftar/core/student"
	logsvc "github.com/trezcool/daftar/services/logger"
	"github.com/trezcool/daftar/storage/database"
	dummydb "github.com/trezcool/daftar/storage/database/dummy"
	sqlxrepos "github.com/trezcool/daftar/storage/database/sqlx"
)

type store struct {
	students   student.Repository
	groups     group.Repository
	payments   payment.Repository
	expenses   expense.Repository
	guestCodes guestcode.Repository
	tx         core.Transactor
	health     core.Pinger
	close      func() error
}

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	dbLogger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	dbLogger.Enable(!conf.Debug)

	// set up store
	st, err := openStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up %s store: %v", conf.Database.Driver, err), err)
	}
	defer func() {
		if err = st.close(); err != nil {
			dbLogger.Fatal("Failed to close", err)
		}
	}()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate, translator := core.NewValidator()

	// set up services
	studentSvc := student.NewService(st.students, st.groups, validate, conf.Search)
	groupSvc := group.NewService(st.groups, st.students, st.tx, validate, conf.Search)
	paymentSvc := payment.NewService(st.payments, st.students, validate)
	expenseSvc := expense.NewService(st.expenses, validate)
	balanceSvc := balance.NewService(groupSvc, paymentSvc, validate)
	guestSvc := guestcode.NewService(st.guestCodes, st.tx, conf.GuestCode.TTL)
	reportSvc := report.NewService(studentSvc, groupSvc, paymentSvc, expenseSvc)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)
	expvar.NewString("store").Set(conf.Database.Driver)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Owners:     core.ContextOwnerResolver{},
			Health:     st.health,
			Validate:   validate,
			Translator: translator,
			StudentSvc: studentSvc,
			GroupSvc:   groupSvc,
			PaymentSvc: paymentSvc,
			ExpenseSvc: expenseSvc,
			BalanceSvc: balanceSvc,
			GuestSvc:   guestSvc,
			ReportSvc:  reportSvc,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

// openStore picks the store backing the repositories from Conf.Database.Driver.
func openStore(conf *core.Config) (*store, error) {
	switch conf.Database.Driver {
	case core.DriverPostgres:
		db, err := database.Setup(conf)
		if err != nil {
			return nil, err
		}
		return &store{
			students:   sqlxrepos.NewStudentRepository(db),
			groups:     sqlxrepos.NewGroupRepository(db),
			payments:   sqlxrepos.NewPaymentRepository(db),
			expenses:   sqlxrepos.NewExpenseRepository(db),
			guestCodes: sqlxrepos.NewGuestCodeRepository(db),
			tx:         database.NewTransactor(db),
			health:     database.NewHealthCheck(db),
			close:      db.Close,
		}, nil
	case core.DriverMemory:
		db := dummydb.Open()
		return &store{
			students:   dummydb.NewStudentRepository(db),
			groups:     dummydb.NewGroupRepository(db),
			payments:   dummydb.NewPaymentRepository(db),
			expenses:   dummydb.NewExpenseRepository(db),
			guestCodes: dummydb.NewGuestCodeRepository(db),
			tx:         db,
			health:     db,
			close:      func() error { return nil },
		}, nil
	}
	return nil, errors.Errorf("unknown store driver %q", conf.Database.Driver)
}

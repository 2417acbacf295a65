package dummydb

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/daftar/core"
	"github.com/trezcool/daftar/core/expense"
	"github.com/trezcool/daftar/core/group"
	"github.com/trezcool/daftar/core/guestcode"
	"github.com/trezcool/daftar/core/payment"
	"github.com/trezcool/daftar/core/student"
)

type (
	// DB is an in-memory store. Every table shares one lock, so a unit of work run by InTx
	// sees and writes a consistent state.
	DB struct {
		sync.RWMutex
		tables

		faultsMu sync.Mutex
		faults   map[string]error
	}

	tables struct {
		students   map[string]student.Student
		groups     map[string]group.Group
		payments   map[string]payment.Payment
		expenses   map[string]expense.Expense
		guestCodes map[string]guestcode.GuestCode
		seq        map[string]int64 // insertion order by id
		pkCount    int64
	}

	txCtxKey struct{}
)

var (
	errGroupReferenced  = errors.New("group is still referenced by students")
	errActiveCodeExists = errors.New("owner already has an active guest code")
)

var (
	_ core.Transactor = (*DB)(nil)
	_ core.Pinger     = (*DB)(nil)
)

func Open() *DB {
	return &DB{
		tables: tables{
			students:   make(map[string]student.Student),
			groups:     make(map[string]group.Group),
			payments:   make(map[string]payment.Payment),
			expenses:   make(map[string]expense.Expense),
			guestCodes: make(map[string]guestcode.GuestCode),
			seq:        make(map[string]int64),
		},
		faults: make(map[string]error),
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.Lock()
	defer db.Unlock()
	db.tables = Open().tables
}

// FailOn makes the operation `op` (a repository method name, or "Ping") fail with err until cleared with a nil err.
func (db *DB) FailOn(op string, err error) {
	db.faultsMu.Lock()
	defer db.faultsMu.Unlock()
	if err == nil {
		delete(db.faults, op)
		return
	}
	db.faults[op] = err
}

func (db *DB) fault(op string) error {
	db.faultsMu.Lock()
	defer db.faultsMu.Unlock()
	if err, ok := db.faults[op]; ok {
		return core.NewStoreError(op, err)
	}
	return nil
}

func (db *DB) Ping(_ context.Context) error {
	return db.fault("Ping")
}

func (db *DB) inTx(ctx context.Context) bool {
	txDB, _ := ctx.Value(txCtxKey{}).(*DB)
	return txDB == db
}

// lock write-locks the tables unless ctx is inside a unit of work, which already holds the lock.
func (db *DB) lock(ctx context.Context) func() {
	if db.inTx(ctx) {
		return func() {}
	}
	db.Lock()
	return db.Unlock
}

func (db *DB) rlock(ctx context.Context) func() {
	if db.inTx(ctx) {
		return func() {}
	}
	db.RLock()
	return db.RUnlock
}

// InTx holds the write lock while fn runs and restores the tables if fn fails.
func (db *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if db.inTx(ctx) {
		return fn(ctx)
	}

	db.Lock()
	defer db.Unlock()

	saved := db.tables.clone()
	if err := fn(context.WithValue(ctx, txCtxKey{}, db)); err != nil {
		db.tables = saved
		return err
	}
	return nil
}

// insert registers a new id. The caller holds the write lock.
func (t *tables) insert() string {
	t.pkCount++
	id := uuid.New().String()
	t.seq[id] = t.pkCount
	return id
}

// ownsGroup and ownsStudent resolve a reference the way the owner-aware foreign keys do.
func (t *tables) ownsGroup(owner core.OwnerID, id string) bool {
	grp, ok := t.groups[id]
	return ok && grp.OwnerID == owner
}

func (t *tables) ownsStudent(owner core.OwnerID, id string) bool {
	stu, ok := t.students[id]
	return ok && stu.OwnerID == owner
}

func (t *tables) clone() tables {
	c := tables{
		students:   make(map[string]student.Student, len(t.students)),
		groups:     make(map[string]group.Group, len(t.groups)),
		payments:   make(map[string]payment.Payment, len(t.payments)),
		expenses:   make(map[string]expense.Expense, len(t.expenses)),
		guestCodes: make(map[string]guestcode.GuestCode, len(t.guestCodes)),
		seq:        make(map[string]int64, len(t.seq)),
		pkCount:    t.pkCount,
	}
	for k, v := range t.students {
		c.students[k] = v
	}
	for k, v := range t.groups {
		c.groups[k] = v
	}
	for k, v := range t.payments {
		c.payments[k] = v
	}
	for k, v := range t.expenses {
		c.expenses[k] = v
	}
	for k, v := range t.guestCodes {
		c.guestCodes[k] = v
	}
	for k, v := range t.seq {
		c.seq[k] = v
	}
	return c
}

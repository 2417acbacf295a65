package core

import "context"

// Transactor runs a unit of work against the store.
type Transactor interface {
	// InTx runs fn so that every write issued through the ctx it receives is committed together or not at all.
	// Nested calls join the outer unit.
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Pinger reports store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

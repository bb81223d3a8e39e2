package queue

import "errors"

var (
	// ErrDrained is the error pending/future receives see once a queue
	// has closed.
	ErrDrained = errors.New("lamina/queue: drained")

	// ErrCancelled is the error a receive sees when CancelReceive wins.
	ErrCancelled = errors.New("lamina/queue: cancelled")

	// ErrTransactionRequired names a transactional queue touched outside
	// a transaction. This package has no transaction boundary, so no
	// TxQueue operation checks for one or returns this error.
	ErrTransactionRequired = errors.New("lamina/queue: transactional queue touched outside a transaction")

	// ErrNonTransactional names a lock-based queue touched inside a
	// transaction. No LockQueue operation checks for this or returns it.
	ErrNonTransactional = errors.New("lamina/queue: non-transactional queue touched inside a transaction")
)

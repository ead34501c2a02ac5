package usecase

import "time"

const (
	// DefaultTransactionTimeout bounds one locked store transaction, including
	// the callback run under the wallet locks.
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultCascadeBatchSize bounds how many transactions a single cascade
	// delete call removes.
	DefaultCascadeBatchSize = 500

	// Transaction listing bounds.
	DefaultTransactionPageSize = 30
	MaxTransactionPageSize     = 100
)

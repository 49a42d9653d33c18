package chain

import "errors"

// Adapter errors. None of these are retried by the core: retrying a
// transfer that may have partially succeeded on-chain risks a double
// spend, so retry policy belongs to the caller.
var (
	// ErrUnsupportedChain is returned by the registry for unknown
	// chain identifiers.
	ErrUnsupportedChain = errors.New("unsupported chain")

	// ErrNotConfigured is returned by remote operations on an adapter
	// that has no valid connection parameters.
	ErrNotConfigured = errors.New("chain adapter not configured")

	// ErrTransferFailed wraps remote rejections and transport failures
	// of balance, approve and transfer calls.
	ErrTransferFailed = errors.New("transfer failed")
)

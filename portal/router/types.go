package router

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidStrategyInput is returned when a strategy selection is not a known integer id
	ErrInvalidStrategyInput = errors.New("invalid strategy input")
	// ErrMalformedSubmission is returned when a submitted form fails validation
	ErrMalformedSubmission = errors.New("malformed submission input")
	// ErrUnsupportedChain is returned when a transfer targets a chain the portal does not serve
	ErrUnsupportedChain = errors.New("unsupported chain")
	// ErrInvalidPosition is returned when position parameters are out of range
	ErrInvalidPosition = errors.New("invalid position parameters")
	// ErrUnknownSession is returned when a session id has no selector
	ErrUnknownSession = errors.New("unknown session")
	// ErrDispatchFailed wraps errors of the transaction-submission capability
	ErrDispatchFailed = errors.New("failed to dispatch transfer")
)

/*
PortalChain is one network the portal serves.
*/
type PortalChain struct {
	// Human-readable name, e.g. "Base Sepolia"
	Name string
	// Short key used in strategy allocations and chart data, e.g. "baseSepolia"
	Key string
	// EVM chain id, e.g. 84532
	Id uint64
	// HookContract is the liquidity hook deployed on this chain
	HookContract common.Address
	// ChartColor is the CSS colour of this chain's slice
	ChartColor  string
	ExplorerURL string
	// Signer account that the dispatcher sends from (optional)
	Sender  *common.Address
	RPCURLs []string
}

// SubmissionError describes which form field failed validation
type SubmissionError struct {
	Field  string
	Reason string
}

func (e *SubmissionError) Error() string {
	return e.Field + ": " + e.Reason
}

// Unwrap lets callers match any field failure with errors.Is(err, ErrMalformedSubmission)
func (e *SubmissionError) Unwrap() error {
	return ErrMalformedSubmission
}

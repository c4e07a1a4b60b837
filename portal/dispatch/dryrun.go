package dispatch

import (
	"context"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/google/uuid"
)

// DryRunDispatcher accepts every transfer without sending it anywhere.
// Used for local development.
type DryRunDispatcher struct{}

// NewDryRunDispatcher creates a dry-run dispatcher
func NewDryRunDispatcher() *DryRunDispatcher {
	return &DryRunDispatcher{}
}

// Name implements router.Dispatcher
func (d *DryRunDispatcher) Name() string {
	return "dry-run"
}

// Dispatch logs the transfer and returns a random handle
func (d *DryRunDispatcher) Dispatch(_ context.Context, req models.TransferRequest) (models.SubmissionHandle, error) {
	handle := "dry-run-" + uuid.NewString()
	dispatchLog.Info().
		Uint64("chain", req.ChainID).
		Str("to", req.To.Hex()).
		Str("value_wei", req.Value.String()).
		Str("handle", handle).
		Msg("Dry run, transfer not sent")
	return models.SubmissionHandle(handle), nil
}

// Close does nothing
func (d *DryRunDispatcher) Close() error {
	return nil
}

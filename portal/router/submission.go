package router

import (
	"context"
	"fmt"
	"math/big"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/Cogwheel-Validator/liquidity-portal/portal/router")

// SubmissionForm is the raw transfer form as the user filled it in
type SubmissionForm struct {
	ChainID *uint64 // connected chain, nil uses the default chain
	Address string
	Value   string // ether
}

// SubmissionReceipt is returned once the dispatcher accepted a transfer
type SubmissionReceipt struct {
	Handle     models.SubmissionHandle
	Dispatcher string
	ChainID    uint64
	To         common.Address
	Value      *big.Int
}

// ValidateSubmission turns the form into a transfer request without dispatching it.
// Field failures are returned as *SubmissionError.
func (p *Portal) ValidateSubmission(form SubmissionForm) (models.TransferRequest, error) {
	chainID := p.addresses.DefaultChainID()
	if form.ChainID != nil {
		if _, ok := p.chainsMap[*form.ChainID]; !ok {
			return models.TransferRequest{}, fmt.Errorf("%w: %d", ErrUnsupportedChain, *form.ChainID)
		}
		chainID = *form.ChainID
	}

	to, err := ParseHexAddress(form.Address)
	if err != nil {
		return models.TransferRequest{}, &SubmissionError{Field: "address", Reason: err.Error()}
	}

	value, err := ParseEther(form.Value)
	if err != nil {
		return models.TransferRequest{}, &SubmissionError{Field: "value", Reason: err.Error()}
	}

	return models.TransferRequest{
		ChainID: chainID,
		To:      to,
		Value:   value,
	}, nil
}

// Submit validates the form and hands the transfer to the dispatcher.
// Nothing is dispatched when validation fails.
func (p *Portal) Submit(ctx context.Context, form SubmissionForm) (*SubmissionReceipt, error) {
	ctx, span := tracer.Start(ctx, "portal.Submit")
	defer span.End()

	req, err := p.ValidateSubmission(form)
	if err != nil {
		span.SetStatus(codes.Error, "validation failed")
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("chain.id", int64(req.ChainID)),
		attribute.String("transfer.to", req.To.Hex()),
		attribute.String("dispatcher", p.dispatcher.Name()),
	)

	handle, err := p.dispatcher.Dispatch(ctx, req)
	if err != nil {
		span.SetStatus(codes.Error, "dispatch failed")
		span.RecordError(err)
		portalLog.Error().
			Err(err).
			Uint64("chain", req.ChainID).
			Str("to", req.To.Hex()).
			Str("dispatcher", p.dispatcher.Name()).
			Msg("Transfer dispatch failed")
		return nil, fmt.Errorf("%w: %w", ErrDispatchFailed, err)
	}

	portalLog.Info().
		Uint64("chain", req.ChainID).
		Str("to", req.To.Hex()).
		Str("value_wei", req.Value.String()).
		Str("handle", string(handle)).
		Msg("Transfer dispatched")

	return &SubmissionReceipt{
		Handle:     handle,
		Dispatcher: p.dispatcher.Name(),
		ChainID:    req.ChainID,
		To:         req.To,
		Value:      req.Value,
	}, nil
}

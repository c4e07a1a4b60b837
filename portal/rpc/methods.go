package rpc

import (
	"context"
	"errors"
	"strconv"

	"connectrpc.com/connect"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
)

// WalletInfo is what the client needs to set up its wallet providers
type WalletInfo struct {
	AppName   string
	ProjectID string
}

// PortalServer implements the PortalService procedures
type PortalServer struct {
	portal *router.Portal
	wallet WalletInfo
}

// NewPortalServer creates a new PortalServer
func NewPortalServer(portal *router.Portal, wallet WalletInfo) *PortalServer {
	return &PortalServer{
		portal: portal,
		wallet: wallet,
	}
}

// GetClientConfig returns the app name, the WalletConnect project and the supported chains
func (s *PortalServer) GetClientConfig(
	ctx context.Context,
	req *connect.Request[models.Empty],
) (*connect.Response[models.ClientConfigResponse], error) {
	chains := s.portal.Chains()
	details := make([]models.ChainDetail, len(chains))
	for i, chain := range chains {
		details[i] = convertToChainDetail(chain)
	}

	return connect.NewResponse(&models.ClientConfigResponse{
		AppName:                s.wallet.AppName,
		WalletConnectProjectID: s.wallet.ProjectID,
		DefaultChainID:         s.portal.DefaultChainID(),
		Chains:                 details,
	}), nil
}

// GetChainInfo returns one served chain
func (s *PortalServer) GetChainInfo(
	ctx context.Context,
	req *connect.Request[models.ChainInfoRequest],
) (*connect.Response[models.ChainDetail], error) {
	chain, err := s.portal.GetChainInfo(req.Msg.ChainID)
	if err != nil {
		return nil, toConnectError(err)
	}
	detail := convertToChainDetail(chain)
	return connect.NewResponse(&detail), nil
}

// ResolveContract returns the hook contract for the connected chain.
// Unknown or missing chains resolve to the default chain with Fallback set.
func (s *PortalServer) ResolveContract(
	ctx context.Context,
	req *connect.Request[models.ResolveContractRequest],
) (*connect.Response[models.ResolveContractResponse], error) {
	res := s.portal.ResolveContract(req.Msg.ChainID)
	contractResolutions.WithLabelValues(strconv.FormatBool(res.Fallback)).Inc()

	chain, err := s.portal.GetChainInfo(res.ChainID)
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&models.ResolveContractResponse{
		ChainID:   res.ChainID,
		ChainName: chain.Name,
		Address:   res.Address.Hex(),
		Fallback:  res.Fallback,
	}), nil
}

// ListStrategies returns every strategy in id order
func (s *PortalServer) ListStrategies(
	ctx context.Context,
	req *connect.Request[models.Empty],
) (*connect.Response[models.ListStrategiesResponse], error) {
	table := s.portal.Strategies()
	strategies := table.List()

	resp := &models.ListStrategiesResponse{
		DefaultID:  int(table.Default()),
		Strategies: make([]models.StrategyInfo, len(strategies)),
	}
	for i, strategy := range strategies {
		allocations := make(map[string]int, len(strategy.Allocations))
		for key, pct := range strategy.Allocations {
			allocations[key] = pct
		}
		resp.Strategies[i] = models.StrategyInfo{
			ID:          int(strategy.ID),
			Name:        strategy.Name,
			Allocations: allocations,
		}
	}
	return connect.NewResponse(resp), nil
}

// SelectStrategy updates the strategy of a session.
// A rejected value leaves the previous selection in place.
func (s *PortalServer) SelectStrategy(
	ctx context.Context,
	req *connect.Request[models.SelectStrategyRequest],
) (*connect.Response[models.SelectStrategyResponse], error) {
	sessionID, id, err := s.portal.SelectStrategy(req.Msg.SessionID, req.Msg.Value)
	activeSessions.Set(float64(s.portal.Sessions().Len()))
	if err != nil {
		strategySelections.WithLabelValues(outcomeRejected).Inc()
		return nil, toConnectError(err)
	}
	strategySelections.WithLabelValues(outcomeAccepted).Inc()

	return connect.NewResponse(&models.SelectStrategyResponse{
		SessionID:  sessionID,
		StrategyID: int(id),
	}), nil
}

// GetChart returns the pie chart of the session's current strategy
func (s *PortalServer) GetChart(
	ctx context.Context,
	req *connect.Request[models.ChartRequest],
) (*connect.Response[models.ChartResponse], error) {
	chart, err := s.portal.Chart(req.Msg.SessionID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&chart), nil
}

// SubmitTransfer validates the form and hands the transfer to the dispatcher
func (s *PortalServer) SubmitTransfer(
	ctx context.Context,
	req *connect.Request[models.SubmitTransferRequest],
) (*connect.Response[models.SubmitTransferResponse], error) {
	resp, err := s.submit(ctx, req.Msg)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(resp), nil
}

// submit is shared by the connect procedure and the form endpoint
func (s *PortalServer) submit(ctx context.Context, msg *models.SubmitTransferRequest) (*models.SubmitTransferResponse, error) {
	receipt, err := s.portal.Submit(ctx, router.SubmissionForm{
		ChainID: msg.ChainID,
		Address: msg.Address,
		Value:   msg.Value,
	})
	if err != nil {
		if errors.Is(err, router.ErrDispatchFailed) {
			submissions.WithLabelValues(outcomeFailed).Inc()
		} else {
			submissions.WithLabelValues(outcomeRejected).Inc()
		}
		return nil, err
	}
	submissions.WithLabelValues(outcomeDispatched).Inc()

	return &models.SubmitTransferResponse{
		Handle:     string(receipt.Handle),
		Dispatcher: receipt.Dispatcher,
		ChainID:    receipt.ChainID,
		To:         receipt.To.Hex(),
		ValueWei:   receipt.Value.String(),
		ValueEther: router.FormatEther(receipt.Value),
	}, nil
}

// PlanPosition splits a liquidity position across the chains of a strategy
func (s *PortalServer) PlanPosition(
	ctx context.Context,
	req *connect.Request[models.PlanPositionRequest],
) (*connect.Response[models.PlanPositionResponse], error) {
	plan, err := s.portal.PlanPosition(req.Msg.SessionID, req.Msg.StrategyID, router.PositionInput{
		TickLower: req.Msg.TickLower,
		TickUpper: req.Msg.TickUpper,
		Liquidity: req.Msg.Liquidity,
	})
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(convertToPlanResponse(plan)), nil
}

// toConnectError maps portal errors onto connect codes
func toConnectError(err error) error {
	switch {
	case errors.Is(err, router.ErrMalformedSubmission),
		errors.Is(err, router.ErrInvalidStrategyInput),
		errors.Is(err, router.ErrInvalidPosition):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, router.ErrUnsupportedChain),
		errors.Is(err, router.ErrUnknownSession):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, router.ErrDispatchFailed):
		return connect.NewError(connect.CodeUnavailable, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

// CONVERT FUNCTIONS

func convertToChainDetail(chain router.PortalChain) models.ChainDetail {
	return models.ChainDetail{
		ID:           chain.Id,
		Key:          chain.Key,
		Name:         chain.Name,
		HookContract: chain.HookContract.Hex(),
		ExplorerURL:  chain.ExplorerURL,
	}
}

func convertToPlanResponse(plan *router.PositionPlan) *models.PlanPositionResponse {
	resp := &models.PlanPositionResponse{
		StrategyID: int(plan.StrategyID),
		TickLower:  plan.TickLower,
		TickUpper:  plan.TickUpper,
		Liquidity:  plan.Liquidity.String(),
		Legs:       make([]models.PositionLegInfo, len(plan.Legs)),
	}
	for i, leg := range plan.Legs {
		resp.Legs[i] = models.PositionLegInfo{
			ChainID:      leg.ChainID,
			Chain:        leg.ChainKey,
			HookContract: leg.HookContract.Hex(),
			Percentage:   leg.Percentage,
			Liquidity:    leg.Liquidity.String(),
		}
	}
	return resp
}

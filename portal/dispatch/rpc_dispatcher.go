package dispatch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/models"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"
)

var (
	// ErrNoEndpoint is returned when a chain has no RPC endpoint configured
	ErrNoEndpoint = errors.New("no rpc endpoint configured")
	// ErrNoSender is returned when the node exposes no account to send from
	ErrNoSender = errors.New("no sender account available")
	// ErrChainMismatch is returned when an endpoint serves a different chain than configured
	ErrChainMismatch = errors.New("endpoint chain id mismatch")
)

var dispatchLog zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	dispatchLog = zerolog.New(out).With().Timestamp().Str("component", "dispatch").Logger()
}

// SetLogger replaces the component logger
func SetLogger(l zerolog.Logger) {
	dispatchLog = l.With().Str("component", "dispatch").Logger()
}

type chainEndpoint struct {
	chainID uint64
	urls    []string
	sender  *common.Address
}

// sendTxArgs is the eth_sendTransaction parameter object
type sendTxArgs struct {
	From  common.Address `json:"from"`
	To    common.Address `json:"to"`
	Value *hexutil.Big   `json:"value"`
}

/*
RPCDispatcher submits transfers to a node that manages the signing account
(e.g. a local dev node or a signer proxy) via eth_sendTransaction.

The portal never holds keys. Approval, signing and confirmation are the node's job,
the dispatcher only returns the transaction hash.
*/
type RPCDispatcher struct {
	endpoints map[uint64]chainEndpoint
	timeout   time.Duration

	mu      sync.Mutex
	clients map[uint64]*rpc.Client
}

// NewRPCDispatcher creates a dispatcher for the chains that have RPC endpoints
func NewRPCDispatcher(chains []router.PortalChain, timeout time.Duration) (*RPCDispatcher, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("dispatch timeout must be positive, got %s", timeout)
	}

	endpoints := make(map[uint64]chainEndpoint, len(chains))
	for _, chain := range chains {
		if len(chain.RPCURLs) == 0 {
			dispatchLog.Warn().Uint64("chain", chain.Id).Msg("Chain has no RPC endpoint, transfers to it will fail")
			continue
		}
		endpoints[chain.Id] = chainEndpoint{
			chainID: chain.Id,
			urls:    chain.RPCURLs,
			sender:  chain.Sender,
		}
	}
	if len(endpoints) == 0 {
		return nil, fmt.Errorf("none of the %d chains has an rpc endpoint", len(chains))
	}

	return &RPCDispatcher{
		endpoints: endpoints,
		timeout:   timeout,
		clients:   make(map[uint64]*rpc.Client),
	}, nil
}

// Name implements router.Dispatcher
func (d *RPCDispatcher) Name() string {
	return "rpc"
}

// Dispatch implements router.Dispatcher
func (d *RPCDispatcher) Dispatch(ctx context.Context, req models.TransferRequest) (models.SubmissionHandle, error) {
	if req.Value == nil || req.Value.Sign() < 0 {
		return "", fmt.Errorf("transfer value must be non-negative")
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	client, err := d.clientFor(ctx, req.ChainID)
	if err != nil {
		return "", err
	}

	from, err := d.senderFor(ctx, client, req.ChainID)
	if err != nil {
		return "", err
	}

	args := sendTxArgs{
		From:  from,
		To:    req.To,
		Value: (*hexutil.Big)(req.Value),
	}

	var hash common.Hash
	if err := client.CallContext(ctx, &hash, "eth_sendTransaction", args); err != nil {
		return "", fmt.Errorf("eth_sendTransaction on chain %d: %w", req.ChainID, err)
	}

	dispatchLog.Debug().
		Uint64("chain", req.ChainID).
		Str("from", from.Hex()).
		Str("tx", hash.Hex()).
		Msg("Transaction sent")

	return models.SubmissionHandle(hash.Hex()), nil
}

func (d *RPCDispatcher) senderFor(ctx context.Context, client *rpc.Client, chainID uint64) (common.Address, error) {
	if sender := d.endpoints[chainID].sender; sender != nil {
		return *sender, nil
	}

	var accounts []common.Address
	if err := client.CallContext(ctx, &accounts, "eth_accounts"); err != nil {
		return common.Address{}, fmt.Errorf("eth_accounts on chain %d: %w", chainID, err)
	}
	if len(accounts) == 0 {
		return common.Address{}, fmt.Errorf("%w on chain %d", ErrNoSender, chainID)
	}
	return accounts[0], nil
}

// clientFor returns (and caches) the client of a chain
func (d *RPCDispatcher) clientFor(ctx context.Context, chainID uint64) (*rpc.Client, error) {
	endpoint, ok := d.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("%w for chain %d", ErrNoEndpoint, chainID)
	}

	d.mu.Lock()
	if existing := d.clients[chainID]; existing != nil {
		d.mu.Unlock()
		return existing, nil
	}
	d.mu.Unlock()

	dialed, err := dialEndpoint(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if existing := d.clients[chainID]; existing != nil {
		dialed.Close()
		return existing, nil
	}
	d.clients[chainID] = dialed
	return dialed, nil
}

// dialEndpoint tries the urls in order and keeps the first that serves the expected chain
func dialEndpoint(ctx context.Context, endpoint chainEndpoint) (*rpc.Client, error) {
	var errs []error
	for _, url := range endpoint.urls {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}

		client, err := rpc.DialContext(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("dial %s: %w", url, err))
			continue
		}

		chainID, err := ethclient.NewClient(client).ChainID(ctx)
		if err != nil {
			client.Close()
			errs = append(errs, fmt.Errorf("eth_chainId %s: %w", url, err))
			continue
		}
		if chainID.Uint64() != endpoint.chainID {
			client.Close()
			errs = append(errs, fmt.Errorf("%w: %s serves %s, want %d", ErrChainMismatch, url, chainID, endpoint.chainID))
			continue
		}

		return client, nil
	}

	if len(errs) == 0 {
		return nil, fmt.Errorf("%w for chain %d", ErrNoEndpoint, endpoint.chainID)
	}
	return nil, fmt.Errorf("no usable endpoint for chain %d: %w", endpoint.chainID, errors.Join(errs...))
}

// Close closes all cached clients (call on shutdown)
func (d *RPCDispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for id, client := range d.clients {
		client.Close()
		delete(d.clients, id)
	}
	return nil
}

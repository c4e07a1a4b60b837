package input

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
)

// ValidationError contains details about a validation failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationResult contains the results of validating one configuration unit
// (a chain, or the strategy set).
type ValidationResult struct {
	Subject  string
	IsValid  bool
	Errors   []error
	Warnings []string
}

func (r *ValidationResult) addError(field, message string) {
	r.Errors = append(r.Errors, &ValidationError{Field: field, Message: message})
}

// Validator validates human-readable chain configurations.
// Network checks are skipped by default.
type Validator struct {
	dialTimeout      time.Duration
	skipNetCheck     bool
	allowedExplorers []AllowedExplorer
}

// ValidatorOption configures the validator.
type ValidatorOption func(*Validator)

// WithDialTimeout sets the timeout of each endpoint check.
func WithDialTimeout(timeout time.Duration) ValidatorOption {
	return func(v *Validator) {
		v.dialTimeout = timeout
	}
}

// WithSkipNetworkCheck disables endpoint chain id checks.
func WithSkipNetworkCheck(skip bool) ValidatorOption {
	return func(v *Validator) {
		v.skipNetCheck = skip
	}
}

// NewValidator creates a new configuration validator.
func NewValidator(allowedExplorers []AllowedExplorer, opts ...ValidatorOption) *Validator {
	v := &Validator{
		dialTimeout:      10 * time.Second,
		skipNetCheck:     true,
		allowedExplorers: allowedExplorers,
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// SupportedChainTypes lists the chain types we currently support.
var SupportedChainTypes = []string{"evm"}

// Validate validates a single chain configuration.
func (v *Validator) Validate(config *ChainInput) *ValidationResult {
	result := &ValidationResult{
		Subject: fmt.Sprintf("chain %d", config.Chain.ID),
		IsValid: true,
	}

	v.validateRequired(config, result)
	v.validateTypes(config, result)

	if !v.skipNetCheck {
		v.validateNetwork(config, result)
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

// ValidateAll validates every chain plus the cross-chain rules (unique keys,
// exactly one default) and the strategies against the chain keys.
// Results are keyed by subject: "chain <id>", "chains" and "strategies".
func (v *Validator) ValidateAll(
	configs map[uint64]*ChainInput,
	strategies *StrategiesInput,
) (map[string]*ValidationResult, error) {
	results := make(map[string]*ValidationResult)
	var hasErrors bool

	for _, config := range configs {
		result := v.Validate(config)
		results[result.Subject] = result
		if !result.IsValid {
			hasErrors = true
		}
	}

	set := v.validateSet(configs)
	results[set.Subject] = set
	if !set.IsValid {
		hasErrors = true
	}

	keys := make(map[string]struct{}, len(configs))
	for _, config := range configs {
		keys[config.Chain.Key] = struct{}{}
	}
	strategyResult := v.ValidateStrategies(strategies, keys)
	results[strategyResult.Subject] = strategyResult
	if !strategyResult.IsValid {
		hasErrors = true
	}

	if hasErrors {
		return results, errors.New("one or more configurations failed validation")
	}
	return results, nil
}

// ValidateStrategies checks that every split is complete and references known chain keys.
func (v *Validator) ValidateStrategies(strategies *StrategiesInput, chainKeys map[string]struct{}) *ValidationResult {
	result := &ValidationResult{Subject: "strategies", IsValid: true}
	if strategies == nil || len(strategies.Strategies) == 0 {
		result.addError("strategy", "at least one strategy is required")
		result.IsValid = false
		return result
	}

	seen := make(map[int]bool)
	for i, strategy := range strategies.Strategies {
		prefix := fmt.Sprintf("strategy[%d]", i)

		if strategy.ID <= 0 {
			result.addError(prefix+".id", "must be positive")
		}
		if seen[strategy.ID] {
			result.addError(prefix+".id", fmt.Sprintf("duplicate strategy id %d", strategy.ID))
		}
		seen[strategy.ID] = true

		if strategy.Name == "" {
			result.Warnings = append(result.Warnings, prefix+": no name, the id will be shown instead")
		}
		if len(strategy.Allocations) == 0 {
			result.addError(prefix+".allocations", "is required")
			continue
		}

		total := 0
		for _, key := range sortedKeys(strategy.Allocations) {
			pct := strategy.Allocations[key]
			if _, ok := chainKeys[key]; !ok {
				result.addError(prefix+".allocations."+key, "references an unknown chain key")
			}
			if pct < 0 || pct > 100 {
				result.addError(prefix+".allocations."+key, "must be between 0 and 100")
			}
			total += pct
		}
		if total != 100 {
			result.addError(prefix+".allocations", fmt.Sprintf("must sum to 100, got %d", total))
		}
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) validateSet(configs map[uint64]*ChainInput) *ValidationResult {
	result := &ValidationResult{Subject: "chains", IsValid: true}

	keys := make(map[string]uint64)
	var defaults []uint64
	for _, id := range sortedIDs(configs) {
		chain := configs[id].Chain
		if other, exists := keys[chain.Key]; exists && chain.Key != "" {
			result.addError("chain.key", fmt.Sprintf("key %q is used by chains %d and %d", chain.Key, other, id))
		}
		keys[chain.Key] = id
		if chain.Default {
			defaults = append(defaults, id)
		}
	}

	switch len(defaults) {
	case 1:
	case 0:
		result.addError("chain.default", "exactly one chain must be the default, none is")
	default:
		result.addError("chain.default", fmt.Sprintf("exactly one chain must be the default, got %v", defaults))
	}

	result.IsValid = len(result.Errors) == 0
	return result
}

func (v *Validator) validateRequired(config *ChainInput, result *ValidationResult) {
	chain := config.Chain

	if chain.Name == "" {
		result.addError("chain.name", "is required")
	}
	if chain.Key == "" {
		result.addError("chain.key", "is required")
	}
	if chain.ID == 0 {
		result.addError("chain.id", "is required and must be positive")
	}
	if chain.Type == "" {
		result.addError("chain.type", "is required")
	}
	if chain.HookContract == "" {
		result.addError("chain.hook_contract", "is required")
	}
	if chain.ExplorerURL == "" {
		result.addError("chain.explorer_url", "is required")
	}
	if chain.NativeCurrency.Symbol == "" {
		result.addError("chain.native_currency.symbol", "is required")
	}
	if len(chain.RPCs) == 0 {
		result.Warnings = append(result.Warnings, "no RPC endpoints, the portal cannot dispatch transfers on this chain")
	}
	for i, rpc := range chain.RPCs {
		if rpc.URL == "" {
			result.addError(fmt.Sprintf("chain.rpcs[%d].url", i), "is required")
		}
	}
	if chain.ChartColor == "" {
		result.Warnings = append(result.Warnings, "no chart_color, the client will pick one")
	}
}

func (v *Validator) validateTypes(config *ChainInput, result *ValidationResult) {
	chain := config.Chain

	if chain.Type != "" && !slices.Contains(SupportedChainTypes, chain.Type) {
		result.addError("chain.type", fmt.Sprintf("unsupported type '%s', must be one of: %v", chain.Type, SupportedChainTypes))
	}

	if chain.HookContract != "" {
		if err := checkHexAddress(chain.HookContract); err != nil {
			result.addError("chain.hook_contract", err.Error())
		}
	}
	if chain.Sender != "" {
		if err := checkHexAddress(chain.Sender); err != nil {
			result.addError("chain.sender", err.Error())
		}
	}

	if chain.NativeCurrency.Decimals < 0 || chain.NativeCurrency.Decimals > 36 {
		result.addError("chain.native_currency.decimals", "must be between 0 and 36")
	}

	if chain.ExplorerURL != "" && !verifyExplorerLink(chain.ExplorerURL, v.allowedExplorers) {
		result.addError("chain.explorer_url", "is not a valid allowed explorer link")
	}
}

// validateNetwork checks that at least one endpoint answers eth_chainId with the configured id.
func (v *Validator) validateNetwork(config *ChainInput, result *ValidationResult) {
	for _, rpc := range config.Chain.RPCs {
		ctx, cancel := context.WithTimeout(context.Background(), v.dialTimeout)
		client, err := ethclient.DialContext(ctx, rpc.URL)
		if err != nil {
			cancel()
			result.Warnings = append(result.Warnings, fmt.Sprintf("rpc %s is not reachable: %v", rpc.URL, err))
			continue
		}
		chainID, err := client.ChainID(ctx)
		client.Close()
		cancel()
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("rpc %s did not answer eth_chainId: %v", rpc.URL, err))
			continue
		}
		if chainID.Uint64() != config.Chain.ID {
			result.addError("chain.rpcs", fmt.Sprintf("%s serves chain %s, not %d", rpc.URL, chainID, config.Chain.ID))
			continue
		}
		return
	}
	if len(config.Chain.RPCs) > 0 {
		result.Warnings = append(result.Warnings, "no RPC endpoints are currently reachable")
	}
}

// checkHexAddress accepts 0x-prefixed addresses, mixed case must match EIP-55.
func checkHexAddress(raw string) error {
	if !strings.HasPrefix(raw, "0x") || !common.IsHexAddress(raw) {
		return fmt.Errorf("'%s' is not a 0x-prefixed 20 byte hex address", raw)
	}
	body := raw[2:]
	if body != strings.ToLower(body) && body != strings.ToUpper(body) && common.HexToAddress(raw).Hex() != raw {
		return fmt.Errorf("'%s' has an invalid EIP-55 checksum", raw)
	}
	if common.HexToAddress(raw) == (common.Address{}) {
		return fmt.Errorf("zero address is not allowed")
	}
	return nil
}

// verifyExplorerLink verifies the explorer link is https and, when an allow list
// is given, that its domain is on it.
func verifyExplorerLink(url string, allowedExplorers []AllowedExplorer) bool {
	if !strings.HasPrefix(url, "https://") {
		return false
	}
	if len(allowedExplorers) == 0 {
		return true
	}

	domain := strings.Split(strings.TrimPrefix(url, "https://"), "/")[0]
	for _, explorer := range allowedExplorers {
		explorerDomain := strings.Split(strings.TrimPrefix(explorer.BaseURL, "https://"), "/")[0]
		if explorerDomain == domain {
			return true
		}
	}
	return false
}

func sortedIDs(configs map[uint64]*ChainInput) []uint64 {
	ids := make([]uint64, 0, len(configs))
	for id := range configs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

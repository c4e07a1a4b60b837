package input_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/input"
	"github.com/zeebo/assert"
)

func validChain() *input.ChainInput {
	return &input.ChainInput{
		Chain: input.ChainMeta{
			Name:         "Base Sepolia",
			Key:          "baseSepolia",
			ID:           84532,
			Type:         "evm",
			HookContract: "0x696907c68D922c289582dA6c35E4c49E3df44800",
			ExplorerURL:  "https://sepolia.basescan.org",
			ChartColor:   "hsl(var(--chart-1))",
			Default:      true,
			NativeCurrency: input.CurrencyMeta{
				Name:     "Sepolia Ether",
				Symbol:   "ETH",
				Decimals: 18,
			},
			RPCs: []input.APIEndpoint{{URL: "https://sepolia.base.org"}},
		},
	}
}

func hasFieldError(result *input.ValidationResult, field string) bool {
	for _, err := range result.Errors {
		var valErr *input.ValidationError
		if errors.As(err, &valErr) && valErr.Field == field {
			return true
		}
	}
	return false
}

func TestLoadAllConfigs(t *testing.T) {
	loader := input.NewLoader()

	configs, err := loader.LoadAllConfigs("testdata")
	assert.NoError(t, err)
	assert.Equal(t, len(configs), 2)
	assert.Equal(t, configs[84532].Chain.Key, "baseSepolia")
	assert.True(t, configs[84532].Chain.Default)
	assert.Equal(t, configs[11155111].Chain.NativeCurrency.Decimals, 18)

	strategies, err := loader.LoadStrategies("testdata")
	assert.NoError(t, err)
	assert.Equal(t, len(strategies.Strategies), 2)
	assert.Equal(t, strategies.Strategies[0].Allocations["sepolia"], 60)
}

func TestLoadAllConfigsEmptyDir(t *testing.T) {
	_, err := input.NewLoader().LoadAllConfigs(t.TempDir())
	assert.Error(t, err)
}

func TestLoadStrategiesMissing(t *testing.T) {
	dir := t.TempDir()
	_, err := input.NewLoader().LoadStrategies(dir)
	assert.Error(t, err)

	err = os.WriteFile(filepath.Join(dir, input.StrategiesFileName), []byte("# nothing yet\n"), 0o600)
	assert.NoError(t, err)
	_, err = input.NewLoader().LoadStrategies(dir)
	assert.Error(t, err)
}

func TestValidateChain(t *testing.T) {
	v := input.NewValidator(nil)

	result := v.Validate(validChain())
	assert.True(t, result.IsValid)
	assert.Equal(t, len(result.Errors), 0)

	tests := []struct {
		name   string
		mutate func(*input.ChainMeta)
		field  string
	}{
		{"missing name", func(c *input.ChainMeta) { c.Name = "" }, "chain.name"},
		{"missing key", func(c *input.ChainMeta) { c.Key = "" }, "chain.key"},
		{"zero id", func(c *input.ChainMeta) { c.ID = 0 }, "chain.id"},
		{"cosmos type", func(c *input.ChainMeta) { c.Type = "cosmos" }, "chain.type"},
		{"missing hook", func(c *input.ChainMeta) { c.HookContract = "" }, "chain.hook_contract"},
		{"short hook", func(c *input.ChainMeta) { c.HookContract = "0x1234" }, "chain.hook_contract"},
		{"unprefixed hook", func(c *input.ChainMeta) { c.HookContract = "696907c68D922c289582dA6c35E4c49E3df44800" }, "chain.hook_contract"},
		{"zero hook", func(c *input.ChainMeta) { c.HookContract = "0x0000000000000000000000000000000000000000" }, "chain.hook_contract"},
		{"bad sender", func(c *input.ChainMeta) { c.Sender = "alice" }, "chain.sender"},
		{"http explorer", func(c *input.ChainMeta) { c.ExplorerURL = "http://sepolia.basescan.org" }, "chain.explorer_url"},
		{"missing symbol", func(c *input.ChainMeta) { c.NativeCurrency.Symbol = "" }, "chain.native_currency.symbol"},
		{"empty rpc url", func(c *input.ChainMeta) { c.RPCs = []input.APIEndpoint{{URL: ""}} }, "chain.rpcs[0].url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := validChain()
			tt.mutate(&config.Chain)
			result := v.Validate(config)
			assert.False(t, result.IsValid)
			assert.True(t, hasFieldError(result, tt.field))
		})
	}
}

func TestValidateChecksumCase(t *testing.T) {
	v := input.NewValidator(nil)

	lower := validChain()
	lower.Chain.HookContract = strings.ToLower(lower.Chain.HookContract)
	assert.True(t, v.Validate(lower).IsValid)

	// flip the case of one letter so the mixed-case checksum no longer matches
	broken := validChain()
	broken.Chain.HookContract = "0x696907C68D922c289582dA6c35E4c49E3df44800"
	result := v.Validate(broken)
	assert.False(t, result.IsValid)
	assert.True(t, hasFieldError(result, "chain.hook_contract"))
}

func TestValidateExplorerAllowList(t *testing.T) {
	v := input.NewValidator([]input.AllowedExplorer{{Name: "Etherscan", BaseURL: "https://sepolia.etherscan.io"}})

	result := v.Validate(validChain())
	assert.False(t, result.IsValid)
	assert.True(t, hasFieldError(result, "chain.explorer_url"))
}

func TestValidateStrategies(t *testing.T) {
	v := input.NewValidator(nil)
	keys := map[string]struct{}{"baseSepolia": {}, "sepolia": {}}

	ok := &input.StrategiesInput{Strategies: []input.StrategyMeta{
		{ID: 1, Name: "Base weighted", Allocations: map[string]int{"baseSepolia": 40, "sepolia": 60}},
	}}
	assert.True(t, v.ValidateStrategies(ok, keys).IsValid)

	tests := []struct {
		name     string
		strategy input.StrategyMeta
		field    string
	}{
		{"sum below 100", input.StrategyMeta{ID: 1, Allocations: map[string]int{"baseSepolia": 40, "sepolia": 50}}, "strategy[0].allocations"},
		{"unknown chain", input.StrategyMeta{ID: 1, Allocations: map[string]int{"mainnet": 100}}, "strategy[0].allocations.mainnet"},
		{"share out of range", input.StrategyMeta{ID: 1, Allocations: map[string]int{"baseSepolia": 120, "sepolia": -20}}, "strategy[0].allocations.baseSepolia"},
		{"zero id", input.StrategyMeta{ID: 0, Allocations: map[string]int{"sepolia": 100}}, "strategy[0].id"},
		{"no split", input.StrategyMeta{ID: 1}, "strategy[0].allocations"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateStrategies(&input.StrategiesInput{Strategies: []input.StrategyMeta{tt.strategy}}, keys)
			assert.False(t, result.IsValid)
			assert.True(t, hasFieldError(result, tt.field))
		})
	}

	duplicate := &input.StrategiesInput{Strategies: []input.StrategyMeta{
		{ID: 1, Allocations: map[string]int{"sepolia": 100}},
		{ID: 1, Allocations: map[string]int{"baseSepolia": 100}},
	}}
	result := v.ValidateStrategies(duplicate, keys)
	assert.False(t, result.IsValid)
	assert.True(t, hasFieldError(result, "strategy[1].id"))

	assert.False(t, v.ValidateStrategies(nil, keys).IsValid)
}

func TestValidateAllCrossChainRules(t *testing.T) {
	v := input.NewValidator(nil)
	strategies := &input.StrategiesInput{Strategies: []input.StrategyMeta{
		{ID: 1, Name: "Base", Allocations: map[string]int{"baseSepolia": 100}},
	}}

	second := validChain()
	second.Chain.ID = 11155111
	second.Chain.HookContract = "0x92A1Fd49D8A7e6ecf3414754257bBF7652750800"

	t.Run("duplicate key and two defaults", func(t *testing.T) {
		configs := map[uint64]*input.ChainInput{84532: validChain(), 11155111: second}

		results, err := v.ValidateAll(configs, strategies)
		assert.Error(t, err)
		assert.True(t, hasFieldError(results["chains"], "chain.key"))
		assert.True(t, hasFieldError(results["chains"], "chain.default"))
	})

	t.Run("no default", func(t *testing.T) {
		only := validChain()
		only.Chain.Default = false

		results, err := v.ValidateAll(map[uint64]*input.ChainInput{84532: only}, strategies)
		assert.Error(t, err)
		assert.True(t, hasFieldError(results["chains"], "chain.default"))
	})

	t.Run("valid set", func(t *testing.T) {
		fixed := *second
		fixed.Chain.Key = "sepolia"
		fixed.Chain.Default = false

		results, err := v.ValidateAll(map[uint64]*input.ChainInput{84532: validChain(), 11155111: &fixed}, strategies)
		assert.NoError(t, err)
		assert.True(t, results["chain 84532"].IsValid)
		assert.True(t, results["strategies"].IsValid)
	})
}

package pipeline_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/output"
	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/pipeline"
	"github.com/pelletier/go-toml/v2"
	"github.com/zeebo/assert"
)

const baseSepoliaInput = `
[chain]
name = "Base Sepolia"
key = "baseSepolia"
id = 84532
type = "evm"
explorer_url = "https://sepolia.basescan.org"
chart_color = "hsl(var(--chart-1))"
default = true

[chain.native_currency]
name = "Sepolia Ether"
symbol = "ETH"
decimals = 18

[[chain.rpcs]]
url = "https://sepolia.base.org"
`

const sepoliaInput = `
[chain]
name = "Sepolia"
key = "sepolia"
id = 11155111
type = "evm"
hook_contract = "0x92A1Fd49D8A7e6ecf3414754257bBF7652750800"
explorer_url = "https://sepolia.etherscan.io"
chart_color = "hsl(var(--chart-2))"

[chain.native_currency]
name = "Sepolia Ether"
symbol = "ETH"
decimals = 18

[[chain.rpcs]]
url = "https://ethereum-sepolia-rpc.publicnode.com"
`

const strategiesInput = `
[[strategy]]
id = 1
name = "Base weighted"
allocations = { baseSepolia = 40, sepolia = 60 }
`

func writeInputs(t *testing.T, strategies string) (string, string) {
	t.Helper()
	inputDir := t.TempDir()
	deploymentsDir := t.TempDir()

	files := map[string]string{
		"base_sepolia.toml": baseSepoliaInput,
		"sepolia.toml":      sepoliaInput,
		"strategies.toml":   strategies,
	}
	for name, content := range files {
		assert.NoError(t, os.WriteFile(filepath.Join(inputDir, name), []byte(content), 0o600))
	}

	deployment := `{"chainId": 84532, "contracts": {"LiquidityHook": "0x696907c68D922c289582dA6c35E4c49E3df44800"}}`
	assert.NoError(t, os.WriteFile(filepath.Join(deploymentsDir, "84532.json"), []byte(deployment), 0o600))

	return inputDir, deploymentsDir
}

func TestGenerate(t *testing.T) {
	inputDir, deploymentsDir := writeInputs(t, strategiesInput)
	outDir := t.TempDir()

	generator, err := pipeline.NewGenerator(pipeline.GeneratorConfig{
		InputDir:              inputDir,
		DeploymentsDir:        deploymentsDir,
		PortalOutputPath:      filepath.Join(outDir, "portal_config.toml"),
		ClientOutputPath:      filepath.Join(outDir, "client_config.json"),
		SkipNetworkValidation: true,
	})
	assert.NoError(t, err)

	result, err := generator.Generate()
	assert.NoError(t, err)
	assert.Equal(t, result.ChainsProcessed, 2)
	assert.Equal(t, result.StrategiesProcessed, 1)

	data, err := os.ReadFile(result.PortalConfigPath)
	assert.NoError(t, err)
	var portal output.PortalConfig
	assert.NoError(t, toml.Unmarshal(data, &portal))
	assert.Equal(t, portal.DefaultChainID, uint64(84532))
	assert.Equal(t, portal.Chains[0].HookContract, "0x696907c68D922c289582dA6c35E4c49E3df44800")
	assert.Equal(t, portal.Strategies[0].Allocations["baseSepolia"], 40)

	data, err = os.ReadFile(result.ClientConfigPath)
	assert.NoError(t, err)
	var client output.ClientConfig
	assert.NoError(t, json.Unmarshal(data, &client))
	assert.Equal(t, len(client.Chains), 2)
	assert.Equal(t, client.Chains[1].Key, "sepolia")
}

func TestGenerateValidationFailure(t *testing.T) {
	badSplit := `
[[strategy]]
id = 1
name = "Broken"
allocations = { baseSepolia = 40, sepolia = 50 }
`
	inputDir, deploymentsDir := writeInputs(t, badSplit)
	outDir := t.TempDir()
	portalPath := filepath.Join(outDir, "portal_config.toml")

	generator, err := pipeline.NewGenerator(pipeline.GeneratorConfig{
		InputDir:              inputDir,
		DeploymentsDir:        deploymentsDir,
		PortalOutputPath:      portalPath,
		SkipNetworkValidation: true,
	})
	assert.NoError(t, err)

	result, err := generator.Generate()
	assert.True(t, errors.Is(err, pipeline.ErrValidationFailed))
	assert.NotNil(t, result)
	assert.False(t, result.ValidationResults["strategies"].IsValid)

	_, statErr := os.Stat(portalPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestGenerateMissingHookWithoutDeployments(t *testing.T) {
	inputDir, _ := writeInputs(t, strategiesInput)

	generator, err := pipeline.NewGenerator(pipeline.GeneratorConfig{
		InputDir:              inputDir,
		SkipNetworkValidation: true,
	})
	assert.NoError(t, err)

	result, err := generator.Generate()
	assert.True(t, errors.Is(err, pipeline.ErrValidationFailed))
	assert.False(t, result.ValidationResults["chain 84532"].IsValid)
}

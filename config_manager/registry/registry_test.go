package registry_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/registry"
	"github.com/zeebo/assert"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	assert.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600))
}

func TestProcessDeployments(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "84532.json", `{"chainId": 84532, "contracts": {"LiquidityHook": "0x696907c68D922c289582dA6c35E4c49E3df44800"}}`)
	writeFile(t, dir, "11155111.json", `{"contracts": {"Other": "0x1111111111111111111111111111111111111111"}}`)
	writeFile(t, dir, "1.json", `{"chainId": 1, "contracts": {"LiquidityHook": "0x2222222222222222222222222222222222222222"}}`)
	writeFile(t, dir, "notes.json", `{}`)
	writeFile(t, dir, "README.md", "deployments")

	deployments, err := registry.ProcessDeployments(dir, []uint64{84532, 11155111})
	assert.NoError(t, err)
	assert.Equal(t, len(deployments), 2)

	hook, ok := deployments[84532].Hook()
	assert.True(t, ok)
	assert.Equal(t, hook, "0x696907c68D922c289582dA6c35E4c49E3df44800")

	_, ok = deployments[11155111].Hook()
	assert.False(t, ok)
	assert.Equal(t, deployments[11155111].ChainID, uint64(11155111))
}

func TestProcessDeploymentsChainMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "84532.json", `{"chainId": 1, "contracts": {}}`)

	_, err := registry.ProcessDeployments(dir, []uint64{84532})
	assert.Error(t, err)
}

func TestFetchDirLocalSource(t *testing.T) {
	src := t.TempDir()
	writeFile(t, src, "base_sepolia.toml", "[chain]\nid = 84532\n")

	dst := filepath.Join(t.TempDir(), "inputs")
	err := registry.FetchDir(src, dst, 10*time.Second)
	assert.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "base_sepolia.toml"))
	assert.NoError(t, err)
	assert.Equal(t, string(data), "[chain]\nid = 84532\n")
}

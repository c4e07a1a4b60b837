package registry

// HookContractName is the contract name looked up in deployment records
const HookContractName = "LiquidityHook"

// Deployment is one deployment record file, as written by the hook deploy scripts:
//
//	{
//	  "chainId": 84532,
//	  "contracts": { "LiquidityHook": "0x6969...4800" }
//	}
type Deployment struct {
	ChainID   uint64            `json:"chainId"`
	Contracts map[string]string `json:"contracts"`
}

// Hook returns the hook contract address of this deployment, if recorded
func (d Deployment) Hook() (string, bool) {
	address, ok := d.Contracts[HookContractName]
	return address, ok && address != ""
}

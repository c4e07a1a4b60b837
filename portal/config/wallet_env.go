package config

import (
	"errors"
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// LoadWalletConnectConfig reads the WalletConnect project id and app name.
func LoadWalletConnectConfig() (*WalletConnectConfig, error) {
	var config WalletConnectConfig
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process wallet config: %w", err)
	}
	// required only checks presence, an empty value is just as unusable
	if config.ProjectID == "" {
		return nil, errors.New("WALLETCONNECT_PROJECT_ID must not be empty")
	}
	return &config, nil
}

package input

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// StrategiesFileName is the strategies file looked up in the input directory.
const StrategiesFileName = "strategies.toml"

// Loader loads and parses human-readable chain configuration files.
type Loader struct{}

// NewLoader creates a new configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// LoadChainConfig loads a single chain configuration from a TOML file.
func (l *Loader) LoadChainConfig(filePath string) (*ChainInput, error) {
	var config ChainInput
	if err := readTOML(filePath, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadAllConfigs loads all chain configurations from a directory.
// Returns a map of chain id to ChainInput. The strategies file is skipped.
func (l *Loader) LoadAllConfigs(dirPath string) (map[uint64]*ChainInput, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config directory %s: %w", dirPath, err)
	}

	configs := make(map[uint64]*ChainInput)
	var errs []error

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".toml") || entry.Name() == StrategiesFileName {
			continue
		}

		filePath := filepath.Join(dirPath, entry.Name())
		config, err := l.LoadChainConfig(filePath)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", entry.Name(), err))
			continue
		}

		if config.Chain.ID == 0 {
			errs = append(errs, fmt.Errorf("%s: missing chain.id", entry.Name()))
			continue
		}

		if _, exists := configs[config.Chain.ID]; exists {
			errs = append(errs, fmt.Errorf("%s: duplicate chain ID %d", entry.Name(), config.Chain.ID))
			continue
		}

		configs[config.Chain.ID] = config
	}

	// partial loading is allowed, the validator reports what is missing
	for _, e := range errs {
		log.Warn().Err(e).Msg("Skipped chain config")
	}

	if len(configs) == 0 {
		return nil, fmt.Errorf("no valid chain configurations found in %s", dirPath)
	}

	return configs, nil
}

// LoadStrategies loads the strategies file from the input directory.
func (l *Loader) LoadStrategies(dirPath string) (*StrategiesInput, error) {
	var strategies StrategiesInput
	if err := readTOML(filepath.Join(dirPath, StrategiesFileName), &strategies); err != nil {
		return nil, err
	}
	if len(strategies.Strategies) == 0 {
		return nil, fmt.Errorf("no strategies defined in %s", StrategiesFileName)
	}
	return &strategies, nil
}

// LoadListOfAllowedExplorers loads the allowed explorers file.
// An empty path means any https explorer is accepted.
func (l *Loader) LoadListOfAllowedExplorers(filePath string) ([]AllowedExplorer, error) {
	if filePath == "" {
		return nil, nil
	}
	var explorers ExplorerMeta
	if err := readTOML(filePath, &explorers); err != nil {
		return nil, err
	}
	return explorers.AllowedExplorers, nil
}

func readTOML(filePath string, out any) error {
	if !strings.HasSuffix(filePath, ".toml") {
		return fmt.Errorf("config file must be a .toml file: %s", filePath)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	if err := toml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filePath, err)
	}
	return nil
}

// Package pipeline provides the main configuration generation pipeline that
// transforms human-readable configs into generated configs for backend and frontend.
package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/input"
	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/output"
	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/registry"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog/log"
)

// ErrValidationFailed is returned when at least one input failed validation
var ErrValidationFailed = errors.New("configuration validation failed")

// OutputFormat specifies the output format for generated configs.
type OutputFormat string

const (
	FormatTOML OutputFormat = "toml"
	FormatJSON OutputFormat = "json"
	FormatAuto OutputFormat = "auto" // Determine from file extension
)

// GeneratorConfig configures the pipeline generator.
type GeneratorConfig struct {
	// Path to the directory containing human-readable chain configs and strategies.toml
	InputDir string

	// Optional go-getter source downloaded into InputDir first
	// (e.g. "github.com/org/hooks//chain_configs")
	RemoteInput string

	// Optional directory of "<chain id>.json" deployment records used for missing hook addresses
	DeploymentsDir string

	// Optional go-getter source downloaded into DeploymentsDir first
	RemoteDeployments string

	// Path to output the generated portal config
	PortalOutputPath string

	// Path to output the generated client config
	ClientOutputPath string

	// Output format for portal config (default: auto from extension)
	PortalOutputFormat OutputFormat

	// Output format for client config (default: auto from extension)
	ClientOutputFormat OutputFormat

	// Skip eth_chainId checks of the RPC endpoints
	SkipNetworkValidation bool

	// Path to the allowed explorers file (optional)
	AllowedExplorersPath string

	// Deadline of each remote download
	FetchTimeout time.Duration
}

// Generator is the main config generation pipeline.
type Generator struct {
	config         GeneratorConfig
	inputLoader    *input.Loader
	inputValidator *input.Validator
	portalConv     *output.PortalConverter
	clientConv     *output.ClientConverter
}

// NewGenerator creates a new pipeline generator with the given configuration.
func NewGenerator(config GeneratorConfig) (*Generator, error) {
	inputLoader := input.NewLoader()

	allowedExplorers, err := inputLoader.LoadListOfAllowedExplorers(config.AllowedExplorersPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed explorers: %w", err)
	}

	return &Generator{
		config:      config,
		inputLoader: inputLoader,
		inputValidator: input.NewValidator(
			allowedExplorers,
			input.WithSkipNetworkCheck(config.SkipNetworkValidation),
		),
		portalConv: output.NewPortalConverter(),
		clientConv: output.NewClientConverter(output.WithAllowedExplorers(allowedExplorers)),
	}, nil
}

// GenerateResult contains the results of the generation process.
type GenerateResult struct {
	// Number of chains processed
	ChainsProcessed int

	// Number of strategies written
	StrategiesProcessed int

	// Validation results per subject ("chain <id>", "chains", "strategies")
	ValidationResults map[string]*input.ValidationResult

	// Path where portal config was written
	PortalConfigPath string

	// Path where client config was written
	ClientConfigPath string

	// Any warnings during generation
	Warnings []string
}

// Generate runs the complete configuration generation pipeline.
// On validation failure the result still carries every validation result.
func (g *Generator) Generate() (*GenerateResult, error) {
	result := &GenerateResult{
		ValidationResults: make(map[string]*input.ValidationResult),
		Warnings:          make([]string, 0),
	}

	// Step 1 (Optional): Fetch remote inputs
	if g.config.RemoteInput != "" {
		if err := registry.FetchDir(g.config.RemoteInput, g.config.InputDir, g.config.FetchTimeout); err != nil {
			return nil, fmt.Errorf("failed to fetch remote input: %w", err)
		}
	}
	if g.config.RemoteDeployments != "" {
		if g.config.DeploymentsDir == "" {
			return nil, fmt.Errorf("remote deployments need a deployments directory")
		}
		if err := registry.FetchDir(g.config.RemoteDeployments, g.config.DeploymentsDir, g.config.FetchTimeout); err != nil {
			return nil, fmt.Errorf("failed to fetch remote deployments: %w", err)
		}
	}

	// Step 2: Load input configs
	log.Info().Str("dir", g.config.InputDir).Msg("Loading chain configs")
	chains, err := g.inputLoader.LoadAllConfigs(g.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load input configs: %w", err)
	}
	strategies, err := g.inputLoader.LoadStrategies(g.config.InputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load strategies: %w", err)
	}
	log.Info().Int("chains", len(chains)).Int("strategies", len(strategies.Strategies)).Msg("Loaded inputs")

	// Step 3 (Optional): Fill hook contracts from deployment records
	if g.config.DeploymentsDir != "" {
		filled, err := g.applyDeployments(chains)
		if err != nil {
			return nil, fmt.Errorf("failed to apply deployments: %w", err)
		}
		result.Warnings = append(result.Warnings, filled...)
	}

	// Step 4: Validate
	log.Info().Msg("Validating configs")
	validationResults, validationErr := g.inputValidator.ValidateAll(chains, strategies)
	result.ValidationResults = validationResults
	for subject, valResult := range validationResults {
		for _, warning := range valResult.Warnings {
			result.Warnings = append(result.Warnings, fmt.Sprintf("%s: %s", subject, warning))
		}
		if valResult.IsValid {
			continue
		}
		for _, err := range valResult.Errors {
			log.Error().Str("subject", subject).Err(err).Msg("Validation failed")
		}
	}
	if validationErr != nil {
		return result, fmt.Errorf("%w: %v", ErrValidationFailed, validationErr)
	}
	result.ChainsProcessed = len(chains)
	result.StrategiesProcessed = len(strategies.Strategies)

	// Step 5: Generate portal config
	portalConfig, err := g.portalConv.Convert(chains, strategies)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to portal config: %w", err)
	}
	if g.config.PortalOutputPath != "" {
		if err := writeConfig(g.config.PortalOutputPath, g.config.PortalOutputFormat, FormatTOML, portalConfig); err != nil {
			return nil, fmt.Errorf("failed to write portal config: %w", err)
		}
		result.PortalConfigPath = g.config.PortalOutputPath
		log.Info().Str("path", g.config.PortalOutputPath).Msg("Portal config written")
	}

	// Step 6: Generate client config
	clientConfig, err := g.clientConv.Convert(chains, strategies)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to client config: %w", err)
	}
	if g.config.ClientOutputPath != "" {
		if err := writeConfig(g.config.ClientOutputPath, g.config.ClientOutputFormat, FormatJSON, clientConfig); err != nil {
			return nil, fmt.Errorf("failed to write client config: %w", err)
		}
		result.ClientConfigPath = g.config.ClientOutputPath
		log.Info().Str("path", g.config.ClientOutputPath).Msg("Client config written")
	}

	log.Info().Msg("Config generation complete")
	return result, nil
}

// applyDeployments sets the hook contract of chains that have none from their deployment record.
// A recorded hook that differs from a configured one is reported as a warning.
func (g *Generator) applyDeployments(chains map[uint64]*input.ChainInput) ([]string, error) {
	ids := make([]uint64, 0, len(chains))
	for id := range chains {
		ids = append(ids, id)
	}

	deployments, err := registry.ProcessDeployments(g.config.DeploymentsDir, ids)
	if err != nil {
		return nil, err
	}

	var warnings []string
	for id, deployment := range deployments {
		hook, ok := deployment.Hook()
		if !ok {
			continue
		}
		chain := &chains[id].Chain
		switch {
		case chain.HookContract == "":
			chain.HookContract = hook
			log.Info().Uint64("chain", id).Str("hook", hook).Msg("Hook contract taken from deployment record")
		case !strings.EqualFold(chain.HookContract, hook):
			warnings = append(warnings, fmt.Sprintf(
				"chain %d: configured hook %s differs from deployed %s, keeping the configured one",
				id, chain.HookContract, hook))
		}
	}
	return warnings, nil
}

func writeConfig(path string, format, fallback OutputFormat, config any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if format == FormatAuto || format == "" {
		format = formatFromExtension(path, fallback)
	}

	var data []byte
	var err error
	switch format {
	case FormatJSON:
		data, err = json.MarshalIndent(config, "", "  ")
	default:
		data, err = toml.Marshal(config)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// formatFromExtension determines output format from file extension.
func formatFromExtension(path string, fallback OutputFormat) OutputFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return fallback
	}
}

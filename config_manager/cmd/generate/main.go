// Command generate runs the config generation pipeline to transform
// human-readable chain configs into generated configs for the portal backend
// and the web client.
//
// Usage:
//
//	go run ./config_manager/cmd/generate \
//	  --input ./chain_configs \
//	  --portal-output ./generated/portal_config.toml \
//	  --client-output ./generated/client_config.json
package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/config_manager/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"
)

func main() {
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	inputDir := flag.StringP("input", "i", "./chain_configs", "Directory containing chain configs and strategies.toml")
	remoteInput := flag.String("remote-input", "", "go-getter source downloaded into --input first (optional)")
	deploymentsDir := flag.String("deployments", "", "Directory of <chain id>.json hook deployment records (optional)")
	remoteDeployments := flag.String("remote-deployments", "", "go-getter source downloaded into --deployments first (optional)")
	portalOutput := flag.String("portal-output", "./generated/portal_config.toml", "Output path for portal config")
	clientOutput := flag.String("client-output", "./generated/client_config.json", "Output path for client config")
	portalFormat := flag.String("portal-format", "auto", "Portal output format: auto, toml, json")
	clientFormat := flag.String("client-format", "auto", "Client output format: auto, toml, json")
	explorers := flag.String("allowed-explorers", "", "Path to the allowed explorers file (optional)")
	skipNetwork := flag.Bool("skip-network", true, "Skip eth_chainId checks of the RPC endpoints")
	fetchTimeout := flag.Duration("fetch-timeout", 2*time.Minute, "Deadline of each remote download")
	validate := flag.Bool("validate-only", false, "Only validate configs, don't generate")

	flag.Parse()

	if *remoteInput == "" {
		if _, err := os.Stat(*inputDir); os.IsNotExist(err) {
			log.Fatal().Str("dir", *inputDir).Msg("Input directory does not exist")
		}
	}

	config := pipeline.GeneratorConfig{
		InputDir:              *inputDir,
		RemoteInput:           *remoteInput,
		DeploymentsDir:        *deploymentsDir,
		RemoteDeployments:     *remoteDeployments,
		PortalOutputPath:      *portalOutput,
		ClientOutputPath:      *clientOutput,
		PortalOutputFormat:    parseFormat(*portalFormat),
		ClientOutputFormat:    parseFormat(*clientFormat),
		SkipNetworkValidation: *skipNetwork,
		AllowedExplorersPath:  *explorers,
		FetchTimeout:          *fetchTimeout,
	}

	if *validate {
		config.PortalOutputPath = ""
		config.ClientOutputPath = ""
	}

	generator, err := pipeline.NewGenerator(config)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create generator")
	}

	log.Info().Msg("Starting config generation pipeline")

	result, err := generator.Generate()
	if result != nil {
		printSummary(result)
	}
	if err != nil {
		if errors.Is(err, pipeline.ErrValidationFailed) {
			fmt.Println("\nSome inputs failed validation. Check the errors above.")
		}
		log.Fatal().Err(err).Msg("Error while generating configs")
	}

	if !*validate {
		fmt.Println("\nOutput files:")
		if result.PortalConfigPath != "" {
			fmt.Printf("\tPortal: %s\n", result.PortalConfigPath)
		}
		if result.ClientConfigPath != "" {
			fmt.Printf("\tClient: %s\n", result.ClientConfigPath)
		}
	}

	fmt.Println("\nFinished the generation pipeline!")
}

func printSummary(result *pipeline.GenerateResult) {
	fmt.Println("\nSummary:")
	fmt.Printf("Chains processed: %d\n", result.ChainsProcessed)
	fmt.Printf("Strategies processed: %d\n", result.StrategiesProcessed)

	if len(result.Warnings) > 0 {
		fmt.Println("\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Printf("\t- %s\n", warning)
		}
	}

	subjects := make([]string, 0, len(result.ValidationResults))
	for subject := range result.ValidationResults {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	for _, subject := range subjects {
		valResult := result.ValidationResults[subject]
		if valResult.IsValid {
			continue
		}
		fmt.Printf("%s: validation failed\n", subject)
		for _, err := range valResult.Errors {
			fmt.Printf("\t- %v\n", err)
		}
	}
}

func parseFormat(s string) pipeline.OutputFormat {
	switch strings.ToLower(s) {
	case "toml":
		return pipeline.FormatTOML
	case "json":
		return pipeline.FormatJSON
	default:
		return pipeline.FormatAuto
	}
}

// Command portal serves the liquidity portal backend: hook contract lookup,
// allocation strategies, chart data and transfer submission.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Cogwheel-Validator/liquidity-portal/portal/config"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/dispatch"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/router"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/rpc"
	"github.com/Cogwheel-Validator/liquidity-portal/portal/telemetry"
	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
)

var log zerolog.Logger

func init() {
	out := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	log = zerolog.New(out).With().Timestamp().Logger()
}

// closingDispatcher is a dispatcher that holds connections
type closingDispatcher interface {
	router.Dispatcher
	Close() error
}

func main() {
	configRpc := flag.StringP("config-rpc", "c", "", "config file for the rpc server, PORTAL_* env vars are used when empty")
	configChains := flag.String("config-chains", "", "generated portal config, overrides chain_config")
	dryRun := flag.Bool("dry-run", false, "log transfers instead of sending them")
	flag.Parse()

	var rpcConfigPath *string
	if *configRpc != "" {
		rpcConfigPath = configRpc
	}
	rpcConfig, err := config.LoadRPCPortalConfig(rpcConfigPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load RPC config")
	}
	if *configChains != "" {
		rpcConfig.ChainConfig = *configChains
	}
	if *dryRun {
		rpcConfig.DryRun = true
	}

	// verifyConfig already checked the level name
	level, _ := zerolog.ParseLevel(rpcConfig.LogLevel)
	log = log.Level(level)
	rpc.SetLogger(log)
	router.SetLogger(log)
	dispatch.SetLogger(log)

	wallet, err := config.LoadWalletConnectConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("WalletConnect project id is missing, set WALLETCONNECT_PROJECT_ID")
	}

	log.Info().
		Str("chains_config", rpcConfig.ChainConfig).
		Bool("dry_run", rpcConfig.DryRun).
		Msg("Starting Liquidity Portal")

	chainSet, err := config.NewChainConfigLoader().LoadFromFile(rpcConfig.ChainConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load chain config")
	}
	log.Info().
		Int("chains", len(chainSet.Chains)).
		Int("strategies", len(chainSet.Strategies)).
		Uint64("default_chain", chainSet.DefaultChainID).
		Msg("Loaded chains")

	var dispatcher closingDispatcher
	if rpcConfig.DryRun {
		dispatcher = dispatch.NewDryRunDispatcher()
	} else {
		dispatcher, err = dispatch.NewRPCDispatcher(chainSet.Chains, rpcConfig.DispatchTimeout)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create dispatcher")
		}
	}

	portal, err := router.NewPortal(chainSet.Chains, chainSet.Strategies, chainSet.DefaultChainID, dispatcher)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create portal")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	otelConfig := buildOTelConfig(rpcConfig)
	otelShutdown := telemetry.ShutdownFunc(func(context.Context) error { return nil })
	if otelConfig.Enabled() {
		shutdown, err := telemetry.Setup(ctx, otelConfig)
		if err != nil {
			// the portal works without telemetry
			log.Error().Err(err).Msg("Failed to initialize OpenTelemetry")
		} else {
			otelShutdown = shutdown
		}
	}

	server, err := rpc.NewServer(buildServerConfig(rpcConfig), portal, rpc.WalletInfo{
		AppName:   wallet.AppName,
		ProjectID: wallet.ProjectID,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create RPC server")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("Server error")
			sigCh <- syscall.SIGTERM
		}
	}()

	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Shutdown error")
	}
	if err := dispatcher.Close(); err != nil {
		log.Error().Err(err).Str("dispatcher", dispatcher.Name()).Msg("Error closing dispatcher")
	}
	if err := otelShutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
	}
}

// buildServerConfig converts the loaded RPCPortalConfig to rpc.ServerConfig
func buildServerConfig(cfg *config.RPCPortalConfig) *rpc.ServerConfig {
	serverConfig := &rpc.ServerConfig{
		Address:        cfg.Host + ":" + strconv.Itoa(cfg.Port),
		AllowedOrigins: cfg.AllowedOrigins,
		EnableMetrics:  cfg.UsePrometheus,
		EnableTracing:  cfg.EnableTracing,
		SessionIdle:    cfg.SessionIdle,
	}

	if cfg.RatePerMinute > 0 {
		serverConfig.RatePerMinute = &cfg.RatePerMinute
	}
	if cfg.MaxConcurrentRequests > 0 {
		serverConfig.MaxConcurrentRequests = &cfg.MaxConcurrentRequests
	}

	return serverConfig
}

// buildOTelConfig converts the loaded RPCPortalConfig to telemetry.Config
func buildOTelConfig(cfg *config.RPCPortalConfig) *telemetry.Config {
	otelConfig := telemetry.DefaultConfig()

	if cfg.ServiceName != "" {
		otelConfig.ServiceName = cfg.ServiceName
	}
	if cfg.ServiceVersion != "" {
		otelConfig.ServiceVersion = cfg.ServiceVersion
	}
	if cfg.Environment != "" {
		otelConfig.Environment = cfg.Environment
	}

	otelConfig.EnableTracing = cfg.EnableTracing
	otelConfig.UseOTLPTraces = cfg.UseOTLPTraces
	if cfg.OTLPTracesURL != "" {
		otelConfig.OTLPTracesURL = cfg.OTLPTracesURL
	}

	otelConfig.EnableMetrics = cfg.EnableMetrics
	otelConfig.UsePrometheus = cfg.UsePrometheus
	otelConfig.UseOTLPMetrics = cfg.UseOTLPMetrics
	if cfg.OTLPMetricsURL != "" {
		otelConfig.OTLPMetricsURL = cfg.OTLPMetricsURL
	}

	otelConfig.EnableLogs = cfg.EnableLogs
	otelConfig.UseOTLPLogs = cfg.UseOTLPLogs
	if cfg.OTLPLogsURL != "" {
		otelConfig.OTLPLogsURL = cfg.OTLPLogsURL
	}

	otelConfig.InsecureOTLP = cfg.InsecureOTLP
	otelConfig.DevelopmentMode = cfg.DevelopmentMode

	return otelConfig
}

package cmd

import (
	"context"
	"fmt"
	"go/types"

	"github.com/spf13/cobra"
	"github.com/stellar/go-stellar-sdk/support/config"
	"github.com/stellar/go-stellar-sdk/support/log"

	cmdUtils "github.com/onramp-labs/onramp-sandbox-backend/cmd/utils"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/chainfeed"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/crashtracker"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/monitor"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/scheduler"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/scheduler/jobs"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/services"
)

type ServeCommand struct {
	enableScheduler bool
}

type ServerServiceInterface interface {
	StartServe(opts serve.ServeOptions, httpServer serve.HTTPServerInterface)
	StartMetricsServe(opts serve.MetricsServeOptions, httpServer serve.HTTPServerInterface)
	GetSchedulerJobRegistrars(ctx context.Context, serveOpts serve.ServeOptions, schedulerOptions scheduler.SchedulerOptions, tokenContract string) ([]scheduler.SchedulerJobRegisterOption, error)
}

type ServerService struct{}

// Making sure that ServerService implements ServerServiceInterface
var _ ServerServiceInterface = (*ServerService)(nil)

func (s *ServerService) StartServe(opts serve.ServeOptions, httpServer serve.HTTPServerInterface) {
	err := serve.Serve(opts, httpServer)
	if err != nil {
		log.Fatalf("Error starting server: %s", err.Error())
	}
}

func (s *ServerService) StartMetricsServe(opts serve.MetricsServeOptions, httpServer serve.HTTPServerInterface) {
	err := serve.MetricsServe(opts, httpServer)
	if err != nil {
		log.Fatalf("Error starting metrics server: %s", err.Error())
	}
}

func (s *ServerService) GetSchedulerJobRegistrars(ctx context.Context, serveOpts serve.ServeOptions, schedulerOptions scheduler.SchedulerOptions, tokenContract string) ([]scheduler.SchedulerJobRegisterOption, error) {
	reconciliationService, err := services.NewDrainReconciliationService(services.DrainReconciliationServiceOptions{
		Models:         serveOpts.Models,
		FeedClient:     serveOpts.FeedClient,
		TokenContract:  tokenContract,
		MonitorService: serveOpts.MonitorService,
	})
	if err != nil {
		return nil, fmt.Errorf("creating drain reconciliation service: %w", err)
	}

	return []scheduler.SchedulerJobRegisterOption{
		scheduler.WithDrainReconciliationJobOption(jobs.DrainReconciliationJobOptions{
			JobIntervalSeconds:    schedulerOptions.ReconcileIntervalSeconds,
			ReconciliationService: reconciliationService,
		}),
	}, nil
}

func (c *ServeCommand) Command(serverService ServerServiceInterface, monitorService monitor.MonitorServiceInterface) *cobra.Command {
	serveOpts := serve.ServeOptions{}
	schedulerOptions := scheduler.SchedulerOptions{}

	configOpts := config.ConfigOptions{
		{
			Name:        "port",
			Usage:       "Port where the server will be listening on",
			OptType:     types.Int,
			ConfigKey:   &serveOpts.Port,
			FlagDefault: 8000,
			Required:    true,
		},
		{
			Name:           "cors-allowed-origins",
			Usage:          `Cors URLs that are allowed to access the endpoints, separated by ","`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetCorsAllowedOrigins,
			ConfigKey:      &serveOpts.CorsAllowedOrigins,
			Required:       true,
		},
		{
			Name:        "reconcile-interval-seconds",
			Usage:       "The interval in seconds between two drain reconciliation passes over the transfer feed",
			OptType:     types.Int,
			ConfigKey:   &schedulerOptions.ReconcileIntervalSeconds,
			FlagDefault: 10,
			Required:    true,
		},
		{
			Name:        "enable-scheduler",
			Usage:       "Enable the background drain reconciliation scheduler",
			OptType:     types.Bool,
			ConfigKey:   &c.enableScheduler,
			FlagDefault: true,
			Required:    false,
		},
	}

	// crash tracker options
	crashTrackerOptions := crashtracker.CrashTrackerOptions{}
	configOpts = append(configOpts,
		&config.ConfigOption{
			Name:           "crash-tracker-type",
			Usage:          `Crash tracker type. Options: "SENTRY", "DRY_RUN"`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionCrashTrackerType,
			ConfigKey:      &crashTrackerOptions.CrashTrackerType,
			FlagDefault:    "DRY_RUN",
			Required:       true,
		})

	// transfer feed options
	feedOptions := chainfeed.ClientOptions{}
	tokenContract := ""
	configOpts = append(configOpts,
		&config.ConfigOption{
			Name:           "feed-type",
			Usage:          `Transfer feed type. Options: "ETHEREUM", "SIMULATED"`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionFeedType,
			ConfigKey:      &feedOptions.FeedType,
			FlagDefault:    "SIMULATED",
			Required:       true,
		},
		&config.ConfigOption{
			Name:           "feed-url",
			Usage:          "The websocket endpoint of the EVM node backing the transfer feed. Required for the ETHEREUM feed type.",
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionURLString,
			ConfigKey:      &feedOptions.FeedURL,
			FlagDefault:    "wss://arb1.arbitrum.io/feed",
			Required:       false,
		},
		&config.ConfigOption{
			Name:           "confirmations",
			Usage:          "The number of blocks behind the head a deposit transaction must be before it counts as finalized",
			OptType:        types.Int,
			CustomSetValue: cmdUtils.SetConfigOptionUint64,
			ConfigKey:      &feedOptions.Confirmations,
			FlagDefault:    12,
			Required:       true,
		},
		&config.ConfigOption{
			Name:           "token-contract",
			Usage:          "The address of the ERC-20 token contract whose transfers are watched for drains",
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionTokenContract,
			ConfigKey:      &tokenContract,
			FlagDefault:    "0xff970a61a04b1ca14834a43f5de4533ebddb5cc8",
			Required:       true,
		})

	// metrics server options
	metricsServeOpts := serve.MetricsServeOptions{}
	configOpts = append(configOpts,
		&config.ConfigOption{
			Name:           "metrics-type",
			Usage:          `Metric monitor type. Options: "PROMETHEUS"`,
			OptType:        types.String,
			CustomSetValue: cmdUtils.SetConfigOptionMetricType,
			ConfigKey:      &metricsServeOpts.MetricType,
			FlagDefault:    "PROMETHEUS",
			Required:       true,
		},
		&config.ConfigOption{
			Name:        "metrics-port",
			Usage:       "Port where the metrics server will be listening on",
			OptType:     types.Int,
			ConfigKey:   &metricsServeOpts.Port,
			FlagDefault: 8002,
			Required:    true,
		})

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the Onramp Sandbox API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.Parent().PersistentPreRun(cmd.Parent(), args)

			// Validate & ingest input parameters
			configOpts.Require()
			err := configOpts.SetValues()
			if err != nil {
				log.Fatalf("Error setting values of config options: %s", err.Error())
			}

			// Initializing monitor service
			metricOptions := monitor.MetricOptions{
				MetricType:  metricsServeOpts.MetricType,
				Environment: globalOptions.Environment,
			}

			err = monitorService.Start(metricOptions)
			if err != nil {
				log.Fatalf("Error creating monitor service: %s", err.Error())
			}

			// Inject crash tracker options dependencies
			globalOptions.PopulateCrashTrackerOptions(&crashTrackerOptions)

			// Inject server dependencies
			serveOpts.Environment = globalOptions.Environment
			serveOpts.GitCommit = globalOptions.GitCommit
			serveOpts.Version = globalOptions.Version
			serveOpts.MonitorService = monitorService
			serveOpts.BaseURL = globalOptions.BaseURL

			// Inject metrics server dependencies
			metricsServeOpts.MonitorService = monitorService
			metricsServeOpts.Environment = globalOptions.Environment
		},
		Run: func(cmd *cobra.Command, _ []string) {
			ctx := cmd.Context()

			// Setup the Crash Tracker client
			crashTrackerClient, err := crashtracker.GetClient(ctx, crashTrackerOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating crash tracker client: %s", err.Error())
			}
			serveOpts.CrashTrackerClient = crashTrackerClient

			// Setup the transfer feed client
			feedClient, err := chainfeed.GetClient(feedOptions)
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating transfer feed client: %s", err.Error())
			}
			serveOpts.FeedClient = feedClient

			// The store is shared between the API server and the reconciler.
			models, err := data.NewModels(data.NewStore())
			if err != nil {
				log.Ctx(ctx).Fatalf("error creating models: %s", err.Error())
			}
			serveOpts.Models = models

			// Starting Scheduler Service (background job) if enabled
			if c.enableScheduler {
				log.Ctx(ctx).Info("Starting Scheduler Service...")
				schedulerJobRegistrars, innerErr := serverService.GetSchedulerJobRegistrars(ctx, serveOpts, schedulerOptions, tokenContract)
				if innerErr != nil {
					log.Ctx(ctx).Fatalf("Error getting scheduler job registrars: %v", innerErr)
				}
				go scheduler.StartScheduler(crashTrackerClient.Clone(), schedulerJobRegistrars...)
			} else {
				log.Ctx(ctx).Warn("Scheduler Service is disabled.")
			}

			// Starting Metrics Server (background job)
			log.Ctx(ctx).Info("Starting Metrics Server...")
			go serverService.StartMetricsServe(metricsServeOpts, &serve.HTTPServer{})

			// Starting Application Server
			log.Ctx(ctx).Info("Starting Application Server...")
			serverService.StartServe(serveOpts, &serve.HTTPServer{})
		},
	}
	err := configOpts.Init(cmd)
	if err != nil {
		log.Fatalf("Error initializing a config option: %s", err.Error())
	}

	return cmd
}

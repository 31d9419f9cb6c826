package cmd

import (
	"bytes"
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cmdUtils "github.com/onramp-labs/onramp-sandbox-backend/cmd/utils"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/chainfeed"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/crashtracker"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/monitor"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/scheduler"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve"
)

type mockServer struct {
	wg sync.WaitGroup
	mock.Mock
}

// Making sure that mockServer implements ServerServiceInterface
var _ ServerServiceInterface = (*mockServer)(nil)

func (m *mockServer) StartServe(opts serve.ServeOptions, httpServer serve.HTTPServerInterface) {
	m.Called(opts, httpServer)
	m.wg.Wait()
}

func (m *mockServer) StartMetricsServe(opts serve.MetricsServeOptions, httpServer serve.HTTPServerInterface) {
	m.Called(opts, httpServer)
	m.wg.Done()
}

func (m *mockServer) GetSchedulerJobRegistrars(ctx context.Context, serveOpts serve.ServeOptions, schedulerOptions scheduler.SchedulerOptions, tokenContract string) ([]scheduler.SchedulerJobRegisterOption, error) {
	args := m.Called(ctx, serveOpts, schedulerOptions, tokenContract)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]scheduler.SchedulerJobRegisterOption), args.Error(1)
}

func Test_serve_wasCalled(t *testing.T) {
	// setup
	rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
	serveCmdFound := false

	for _, cmd := range rootCmd.Commands() {
		if cmd.Use == "serve" {
			serveCmdFound = true
		}
	}
	require.True(t, serveCmdFound, "serve command not found")
	rootCmd.SetArgs([]string{"serve", "--help"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)

	// test
	err := rootCmd.Execute()
	require.NoError(t, err)

	// assert
	assert.Contains(t, out.String(), "onramp-sandbox serve [flags]", "should have printed help message for serve command")
}

func Test_serve(t *testing.T) {
	cmdUtils.ClearTestEnvironment(t)

	// mock metric service
	mMonitorService := monitor.MockMonitorService{}

	metricOptions := monitor.MetricOptions{
		MetricType:  monitor.MetricTypePrometheus,
		Environment: "test",
	}
	mMonitorService.On("Start", metricOptions).Return(nil).Once()
	defer mMonitorService.AssertExpectations(t)

	serveMetricOpts := serve.MetricsServeOptions{
		Port:        8002,
		Environment: "test",

		MetricType:     monitor.MetricTypePrometheus,
		MonitorService: &mMonitorService,
	}

	wantServeOpts := func(opts serve.ServeOptions) bool {
		return opts.Environment == "test" &&
			opts.GitCommit == "1234567890abcdef" &&
			opts.Version == "x.y.z" &&
			opts.Port == 8000 &&
			opts.BaseURL == "https://sandbox.example.com" &&
			assert.ObjectsAreEqual([]string{"*"}, opts.CorsAllowedOrigins) &&
			opts.Models != nil &&
			opts.CrashTrackerClient != nil &&
			opts.MonitorService == &mMonitorService
	}

	// mock server
	mServer := mockServer{}
	mServer.On("StartMetricsServe", serveMetricOpts, mock.AnythingOfType("*serve.HTTPServer")).Once()
	mServer.On("StartServe", mock.MatchedBy(wantServeOpts), mock.AnythingOfType("*serve.HTTPServer")).Once()
	mServer.
		On("GetSchedulerJobRegistrars", mock.Anything, mock.MatchedBy(wantServeOpts), scheduler.SchedulerOptions{ReconcileIntervalSeconds: 10}, "0xff970a61a04b1ca14834a43f5de4533ebddb5cc8").
		Return([]scheduler.SchedulerJobRegisterOption{}, nil).
		Once()
	mServer.wg.Add(1)
	defer mServer.AssertExpectations(t)

	// SetupCLI and replace the serve command with one containing a mocked server
	rootCmd := SetupCLI("x.y.z", "1234567890abcdef")
	originalCommands := rootCmd.Commands()
	rootCmd.ResetCommands()
	serveCmdFound := false
	for _, cmd := range originalCommands {
		if cmd.Use == "serve" {
			serveCmdFound = true
			rootCmd.AddCommand((&ServeCommand{}).Command(&mServer, &mMonitorService))
		} else {
			rootCmd.AddCommand(cmd)
		}
	}
	require.True(t, serveCmdFound, "serve command not found")

	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("BASE_URL", "https://sandbox.example.com")
	t.Setenv("CORS_ALLOWED_ORIGINS", "*")
	t.Setenv("METRICS_TYPE", "PROMETHEUS")
	t.Setenv("FEED_TYPE", "SIMULATED")
	t.Setenv("ENABLE_SCHEDULER", "true")

	// test & assert
	rootCmd.SetArgs([]string{"serve"})
	err := rootCmd.Execute()
	require.NoError(t, err)
}

func Test_ServerService_GetSchedulerJobRegistrars(t *testing.T) {
	ctx := context.Background()
	serverService := ServerService{}

	crashTrackerClient, err := crashtracker.GetClient(ctx, crashtracker.CrashTrackerOptions{CrashTrackerType: crashtracker.CrashTrackerTypeDryRun})
	require.NoError(t, err)

	serveOpts := serve.ServeOptions{
		BaseURL:            "http://localhost:8000",
		CrashTrackerClient: crashTrackerClient,
		FeedClient:         chainfeed.NewSimulatedClient(),
	}
	err = serveOpts.SetupDependencies()
	require.NoError(t, err)

	t.Run("returns the drain reconciliation job registrar", func(t *testing.T) {
		registrars, innerErr := serverService.GetSchedulerJobRegistrars(ctx, serveOpts, scheduler.SchedulerOptions{ReconcileIntervalSeconds: 5}, "0xff970a61a04b1ca14834a43f5de4533ebddb5cc8")
		require.NoError(t, innerErr)
		assert.Len(t, registrars, 1)
	})

	t.Run("returns an error when the token contract is empty", func(t *testing.T) {
		_, innerErr := serverService.GetSchedulerJobRegistrars(ctx, serveOpts, scheduler.SchedulerOptions{ReconcileIntervalSeconds: 5}, "")
		assert.ErrorContains(t, innerErr, "creating drain reconciliation service")
	})
}

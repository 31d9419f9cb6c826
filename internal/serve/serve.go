package serve

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	supporthttp "github.com/stellar/go-stellar-sdk/support/http"
	"github.com/stellar/go-stellar-sdk/support/log"

	"github.com/onramp-labs/onramp-sandbox-backend/internal/chainfeed"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/crashtracker"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/data"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/monitor"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/onboarding"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httperror"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/httphandler"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/serve/middleware"
	"github.com/onramp-labs/onramp-sandbox-backend/internal/services"
)

const ServiceID = "serve"

type HTTPServerInterface interface {
	Run(conf supporthttp.Config)
}

type HTTPServer struct{}

func (h *HTTPServer) Run(conf supporthttp.Config) {
	supporthttp.Run(conf)
}

type ServeOptions struct {
	Environment               string
	GitCommit                 string
	Port                      int
	Version                   string
	MonitorService            monitor.MonitorServiceInterface
	Models                    *data.Models
	CorsAllowedOrigins        []string
	BaseURL                   string
	CrashTrackerClient        crashtracker.CrashTrackerClient
	OnboardingService         onboarding.ServiceInterface
	LiquidationAddressService services.LiquidationAddressServiceInterface
	FeedClient                chainfeed.ClientInterface

	// feedSimulator is the injection surface of the simulated feed. It stays
	// nil with the ethereum feed, which disables the sandbox transfer endpoint.
	feedSimulator chainfeed.Simulator
}

// SetupDependencies uses the serve options to setup the dependencies for the server.
func (opts *ServeOptions) SetupDependencies() error {
	// Set crash tracker LogAndReportErrors as DefaultReportErrorFunc
	httperror.SetDefaultReportErrorFunc(opts.CrashTrackerClient.LogAndReportErrors)

	if opts.Models == nil {
		models, err := data.NewModels(data.NewStore())
		if err != nil {
			return fmt.Errorf("error creating models for Serve: %w", err)
		}
		opts.Models = models
	}

	if opts.OnboardingService == nil {
		onboardingService, err := onboarding.NewService(onboarding.ServiceOptions{
			Models:  opts.Models,
			BaseURL: opts.BaseURL,
		})
		if err != nil {
			return fmt.Errorf("error creating onboarding service: %w", err)
		}
		opts.OnboardingService = onboardingService
	}

	if opts.LiquidationAddressService == nil {
		liquidationAddressService, err := services.NewLiquidationAddressService(opts.Models)
		if err != nil {
			return fmt.Errorf("error creating liquidation address service: %w", err)
		}
		opts.LiquidationAddressService = liquidationAddressService
	}

	if simulator, ok := opts.FeedClient.(chainfeed.Simulator); ok {
		opts.feedSimulator = simulator
	}

	return nil
}

func Serve(opts ServeOptions, httpServer HTTPServerInterface) error {
	err := opts.SetupDependencies()
	if err != nil {
		return fmt.Errorf("error starting dependencies: %w", err)
	}

	// Start the server
	listenAddr := fmt.Sprintf(":%d", opts.Port)
	serverConfig := supporthttp.Config{
		ListenAddr:          listenAddr,
		Handler:             handleHTTP(opts),
		TCPKeepAlive:        time.Minute * 3,
		ShutdownGracePeriod: time.Second * 50,
		ReadTimeout:         time.Second * 5,
		WriteTimeout:        time.Second * 35,
		IdleTimeout:         time.Minute * 2,
		OnStarting: func() {
			log.Info("Starting Onramp Sandbox Server")
			log.Infof("Listening on %s", listenAddr)
		},
		OnStopping: func() {
			log.Info("Stopping Onramp Sandbox Server")
		},
	}
	httpServer.Run(serverConfig)
	return nil
}

func handleHTTP(o ServeOptions) *chi.Mux {
	mux := chi.NewMux()

	// Middleware
	mux.Use(middleware.CorsMiddleware(o.CorsAllowedOrigins))
	mux.Use(chimiddleware.RequestID)
	mux.Use(chimiddleware.RealIP)
	mux.Use(supporthttp.LoggingMiddleware)
	mux.Use(middleware.RecoverHandler)
	mux.Use(middleware.MetricsRequestHandler(o.MonitorService))

	mux.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Onramp Sandbox API"))
	})

	mux.Get("/health", httphandler.HealthHandler{
		Version:   o.Version,
		ServiceID: ServiceID,
		ReleaseID: o.GitCommit,
	}.ServeHTTP)

	personaHandler := httphandler.PersonaHandler{OnboardingService: o.OnboardingService}
	mux.Route("/persona/kyc", func(r chi.Router) {
		r.Get("/", personaHandler.GetKYCForm)
		r.Post("/", personaHandler.PostKYC)
	})

	tosHandler := httphandler.TOSHandler{OnboardingService: o.OnboardingService}
	mux.Get("/accept-terms-of-service", tosHandler.GetTOSForm)

	mux.Route("/v0", func(r chi.Router) {
		r.Post("/terms_of_service", tosHandler.PostAcceptTOS)

		kycLinksHandler := httphandler.KYCLinksHandler{
			OnboardingService: o.OnboardingService,
			MonitorService:    o.MonitorService,
		}
		r.Route("/kyc_links", func(r chi.Router) {
			r.Post("/", kycLinksHandler.PostKYCLinks)
			r.Get("/{kycLinkID}", kycLinksHandler.GetKYCLink)
		})

		customersHandler := httphandler.CustomersHandler{
			Models:            o.Models,
			OnboardingService: o.OnboardingService,
		}
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", customersHandler.PostCustomers)
			r.Get("/{customerID}", customersHandler.GetCustomer)

			externalAccountsHandler := httphandler.ExternalAccountsHandler{Models: o.Models}
			r.Route("/{customerID}/external_accounts", func(r chi.Router) {
				r.Post("/", externalAccountsHandler.PostExternalAccounts)
				r.Get("/", externalAccountsHandler.GetExternalAccounts)
				r.Get("/{externalAccountID}", externalAccountsHandler.GetExternalAccount)
			})

			liquidationAddressesHandler := httphandler.LiquidationAddressesHandler{
				Models:                    o.Models,
				LiquidationAddressService: o.LiquidationAddressService,
				MonitorService:            o.MonitorService,
			}
			r.Route("/{customerID}/liquidation_addresses", func(r chi.Router) {
				r.Post("/", liquidationAddressesHandler.PostLiquidationAddresses)
				r.Get("/{liquidationAddressID}", liquidationAddressesHandler.GetLiquidationAddress)
				r.Get("/{liquidationAddressID}/drains", liquidationAddressesHandler.GetDrains)
			})
		})

		r.Get("/developer/fees", httphandler.FeesHandler{}.GetDeveloperFees)
	})

	pricesHandler := httphandler.PricesHandler{}
	mux.Route("/coingecko/api/v3/simple", func(r chi.Router) {
		r.Get("/price", pricesHandler.GetSimplePrice)
		r.Get("/token_price/{networkName}", pricesHandler.GetTokenPrice)
	})

	mux.Post("/sandbox/transfers", httphandler.SandboxHandler{Simulator: o.feedSimulator}.PostTransfers)

	return mux
}

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/go-chi/cors"
	"github.com/gorilla/mux"

	"github.com/Haazy99/AgencyTest2/lib/myconfig"
	"github.com/Haazy99/AgencyTest2/lib/myhttpclient"
	"github.com/Haazy99/AgencyTest2/lib/mylog"
	"github.com/Haazy99/AgencyTest2/lib/mymetrics"
	"github.com/Haazy99/AgencyTest2/lib/mypublisher"
	"github.com/Haazy99/AgencyTest2/lib/mypubsub"
	"github.com/Haazy99/AgencyTest2/lib/mystore"
	"github.com/Haazy99/AgencyTest2/lib/mytime"
	"github.com/Haazy99/AgencyTest2/lib/myuuid"
	"github.com/Haazy99/AgencyTest2/services/adscan"
	"github.com/Haazy99/AgencyTest2/services/ghlauth"
	"github.com/Haazy99/AgencyTest2/services/ghlclient"
	"github.com/Haazy99/AgencyTest2/services/ghlexport"
	"github.com/Haazy99/AgencyTest2/services/ghlsession"
	"github.com/Haazy99/AgencyTest2/services/leads"
	"github.com/Haazy99/AgencyTest2/services/warmup"
)

const (
	appName         = "lead finder"
	shutdownTimeout = 10 * time.Second
	// synchronous actor runs can take minutes
	apifyTimeout = 5 * time.Minute
)

type endpointRegistrar interface {
	RegisterEndpoints(c context.Context, router *mux.Router) error
}

func main() {
	err := run()
	if err != nil {
		log.Fatalf("Error running server: %s", err)
	}
	log.Printf("Server stopped")
}

func run() error {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config, err := myconfig.Load()
	if err != nil {
		return err
	}
	err = config.Validate()
	if err != nil {
		return err
	}

	mylog.SetLevel(config.LogLevel)
	displayAppname(appName)

	router, cleanup, err := wire(c, config)
	if err != nil {
		return err
	}
	defer cleanup()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           withCORS(config, router),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting webserver on port %d (try http://localhost:%d)", config.Port, config.Port)
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("error starting webserver on port %d: %w", config.Port, err)
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-c.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	if err != nil {
		return fmt.Errorf("error shutting down webserver: %w", err)
	}
	return nil
}

func wire(c context.Context, config *myconfig.Config) (*mux.Router, func(), error) {
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	tokenStore, storeCleanup, err := mystore.New[ghlsession.CachedBundle](c, mystore.Backend(config.TokenCacheBackend), config.GoogleCloudProject, "CachedBundle")
	if err != nil {
		return nil, nil, fmt.Errorf("error creating token store: %w", err)
	}

	pubsub, pubsubCleanup, err := mypubsub.New(c, mypubsub.Backend(config.EventsBackend), config.GoogleCloudProject)
	if err != nil {
		storeCleanup()
		return nil, nil, fmt.Errorf("error creating pubsub: %w", err)
	}
	cleanup := func() {
		pubsubCleanup()
		storeCleanup()
	}

	publisher := mypublisher.New(pubsub, nower, uuider)
	sessions := ghlsession.NewManager(config.Session.SecretCookiePassword, config.IsProduction(),
		ghlsession.NewTokenCache(tokenStore, nower), nower, uuider)

	oauthClient := ghlauth.NewOAuthClient(ghlauth.ClientOptions{
		ClientID:     config.GHL.ClientID,
		ClientSecret: config.GHL.ClientSecret,
		RedirectURI:  config.GHL.RedirectURI,
	})
	ghl := ghlclient.New(myhttpclient.New("ghl", myhttpclient.WithRateLimit(config.GHL.RateLimit, 5)), ghlclient.Options{})
	d7 := leads.NewD7Client(myhttpclient.New("d7", myhttpclient.WithRateLimit(config.D7.RateLimit, 2)), leads.D7Options{
		APIKey: config.D7.APIKey,
	})
	apify := adscan.NewApifyClient(myhttpclient.New("apify", myhttpclient.WithTimeout(apifyTimeout)), adscan.ApifyOptions{
		Token: config.Apify.APIToken,
	})

	router := mux.NewRouter()
	router.Use(mymetrics.Middleware)
	router.Handle("/metrics", mymetrics.Handler()).Methods("GET")

	services := []endpointRegistrar{
		warmup.NewService(),
		ghlauth.NewService(sessions, oauthClient, publisher, nower, config.IsProduction()),
		ghlexport.NewService(sessions, ghl, publisher, nower, config.IsProduction()),
		leads.NewService(d7, uuider, config.D7.MaxPolls),
		adscan.NewService(apify, config.Apify.APIToken, nower, config.Apify.BatchConcurrency),
	}
	for _, s := range services {
		err = s.RegisterEndpoints(c, router)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("error registering endpoints: %w", err)
		}
	}

	return router, cleanup, nil
}

// withCORS leaves the router same-origin only unless origins are configured.
func withCORS(config *myconfig.Config, handler http.Handler) http.Handler {
	if len(config.CORSAllowedOrigins) == 0 {
		return handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Cloud-Trace-Context"},
		AllowCredentials: config.CORSAllowCredentials(),
	})(handler)
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}

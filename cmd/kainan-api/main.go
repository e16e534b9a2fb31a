// README: Entry point; loads config, wires geocoders, pricing and orders, starts the HTTP server.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"kainan/internal/config"
	httptransport "kainan/internal/http"
	"kainan/internal/infra"
	"kainan/internal/maps"
	"kainan/internal/modules/location"
	"kainan/internal/modules/order"
	"kainan/internal/modules/pricing"
	"kainan/internal/types"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		log.Fatal(err)
	}
	if dbPool != nil {
		defer dbPool.Close()
		if cfg.DB.Migrate {
			if err := infra.Migrate(ctx, dbPool); err != nil {
				log.Fatal(err)
			}
		}
	} else {
		log.Printf("KAINAN_DB_DSN not set; quotes are not stored and orders live in memory")
	}

	redisClient, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		log.Printf("redis unavailable, geocode cache disabled: %v", err)
	}

	rules, err := loadRules(cfg.Geocode.RulesFile)
	if err != nil {
		log.Fatal(err)
	}

	chain := location.NewChain(location.RetryPolicy{
		Timeout: cfg.Geocode.Timeout,
		Retries: cfg.Geocode.Retries,
	}, buildGeocoders(ctx, cfg.Geocode, cfg.Pickup.Point)...)
	log.Printf("geocoders: %s", strings.Join(chain.Providers(), " -> "))

	locationSvc := location.NewService(
		location.PickupLocation{Point: cfg.Pickup.Point, Address: cfg.Pickup.Address},
		rules,
		chain,
		location.NewStore(redisClient),
		location.Options{DefaultDistanceKm: cfg.Fees.DefaultDistanceKm},
	)

	var courier pricing.Courier
	if cfg.Courier.Enabled() {
		courier = pricing.NewLalamoveClient(pricing.LalamoveConfig{
			BaseURL:   cfg.Courier.URL,
			APIKey:    cfg.Courier.APIKey,
			APISecret: cfg.Courier.APISecret,
			Market:    cfg.Courier.Market,
		}, nil)
		log.Printf("courier quotations enabled (%s)", cfg.Courier.Market)
	}

	var quoteStore *pricing.Store
	var orderStore order.Repository = order.NewMemoryStore()
	if dbPool != nil {
		quoteStore = pricing.NewStore(dbPool)
		orderStore = order.NewStore(dbPool)
	}

	pricingSvc := pricing.NewService(locationSvc, pricing.FeeSchedule{
		BaseFee:           cfg.Fees.BaseFee,
		FirstTierKm:       cfg.Fees.FirstTierKm,
		FirstTierRate:     cfg.Fees.FirstTierRate,
		SecondTierRate:    cfg.Fees.SecondTierRate,
		DefaultDistanceKm: cfg.Fees.DefaultDistanceKm,
	}, courier, quoteStore)
	orderSvc := order.NewService(orderStore, pricingSvc)

	handler := httptransport.NewServer(httptransport.ServerDeps{
		Pricing: pricingSvc,
		Order:   orderSvc,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: handler.Routes()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	log.Printf("listening on %s", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}

func loadRules(path string) (location.RuleTable, error) {
	if path == "" {
		return location.DefaultRules()
	}
	return location.LoadRules(path)
}

// buildGeocoders instantiates providers in the configured order. A provider
// that cannot be built is skipped with a log line.
func buildGeocoders(ctx context.Context, g config.GeocodeConfig, pickup types.Point) []location.Geocoder {
	httpClient := &http.Client{Timeout: g.Timeout + time.Second}
	var out []location.Geocoder
	for _, name := range g.Providers {
		switch name {
		case "googlemaps":
			if g.GoogleMapsKey == "" {
				log.Printf("geocoder googlemaps skipped: GOOGLE_MAPS_API_KEY not set")
				continue
			}
			svc, err := maps.NewGeocodeService(g.GoogleMapsKey, "PH", httpClient, "")
			if err != nil {
				log.Printf("geocoder googlemaps skipped: %v", err)
				continue
			}
			out = append(out, svc)
		case "googleplaces":
			if g.GoogleMapsKey == "" {
				log.Printf("geocoder googleplaces skipped: GOOGLE_MAPS_API_KEY not set")
				continue
			}
			svc, err := maps.NewPlacesService(g.GoogleMapsKey, "PH", pickup, httpClient, "")
			if err != nil {
				log.Printf("geocoder googleplaces skipped: %v", err)
				continue
			}
			out = append(out, svc)
		case "addressvalidation":
			if g.GoogleMapsKey == "" {
				log.Printf("geocoder addressvalidation skipped: GOOGLE_MAPS_API_KEY not set")
				continue
			}
			svc, err := maps.NewAddressValidationService(ctx, g.GoogleMapsKey, "PH")
			if err != nil {
				log.Printf("geocoder addressvalidation skipped: %v", err)
				continue
			}
			out = append(out, svc)
		case "nominatim":
			out = append(out, location.NewNominatim(g.NominatimURL, g.UserAgent, "ph", httpClient, time.Second))
		case "photon":
			out = append(out, location.NewPhoton(g.PhotonURL, g.UserAgent, httpClient))
		}
	}
	return out
}

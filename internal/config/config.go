// README: Config loader with env defaults for HTTP, DB, Redis, geocoding, fees and courier settings.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"kainan/internal/types"
)

type PickupConfig struct {
	Point   types.Point
	Address string
}

type GeocodeConfig struct {
	Providers         []string
	Timeout           time.Duration
	Retries           int
	NominatimURL      string
	PhotonURL         string
	UserAgent         string
	GoogleMapsKey     string
	AddressValidation bool
	RulesFile         string
}

type FeeConfig struct {
	BaseFee           float64
	FirstTierKm       float64
	FirstTierRate     float64
	SecondTierRate    float64
	DefaultDistanceKm float64
}

type CourierConfig struct {
	APIKey    string
	APISecret string
	URL       string
	Market    string
}

// Enabled reports whether every credential the courier needs is present.
func (c CourierConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != "" && c.URL != ""
}

type Config struct {
	HTTP struct {
		Addr string
	}
	DB struct {
		DSN     string
		Migrate bool
	}
	Redis struct {
		Addr string
	}
	Pickup  PickupConfig
	Geocode GeocodeConfig
	Fees    FeeConfig
	Courier CourierConfig
}

var defaultPickup = PickupConfig{
	Point:   types.Point{Lat: 15.1450, Lng: 120.5887},
	Address: "Angeles City, Pampanga",
}

// Load reads an optional .env file, then the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	cfg.HTTP.Addr = envOrDefault("KAINAN_HTTP_ADDR", ":8080")
	cfg.DB.DSN = os.Getenv("KAINAN_DB_DSN")
	cfg.DB.Migrate = envOrDefaultBool("KAINAN_DB_MIGRATE", true)
	cfg.Redis.Addr = os.Getenv("KAINAN_REDIS_ADDR")

	pickup, err := ParsePickup(os.Getenv("KAINAN_PICKUP"))
	if err != nil {
		return Config{}, err
	}
	cfg.Pickup = pickup

	cfg.Geocode.GoogleMapsKey = os.Getenv("GOOGLE_MAPS_API_KEY")
	cfg.Geocode.AddressValidation = envOrDefaultBool("KAINAN_ADDRESS_VALIDATION", false)
	cfg.Geocode.Providers = parseList(envOrDefault("KAINAN_GEOCODERS", defaultProviders(cfg.Geocode)))
	cfg.Geocode.Timeout = envOrDefaultDuration("KAINAN_GEOCODE_TIMEOUT", 5*time.Second)
	cfg.Geocode.Retries = envOrDefaultInt("KAINAN_GEOCODE_RETRIES", 2)
	cfg.Geocode.NominatimURL = envOrDefault("KAINAN_NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	cfg.Geocode.PhotonURL = envOrDefault("KAINAN_PHOTON_URL", "https://photon.komoot.io")
	cfg.Geocode.UserAgent = envOrDefault("KAINAN_GEOCODER_USER_AGENT", "kainan-delivery/1.0")
	cfg.Geocode.RulesFile = os.Getenv("KAINAN_RULES_FILE")

	cfg.Fees.BaseFee = envOrDefaultFloat("KAINAN_BASE_FEE", 49)
	cfg.Fees.FirstTierKm = envOrDefaultFloat("KAINAN_FIRST_TIER_KM", 5)
	cfg.Fees.FirstTierRate = envOrDefaultFloat("KAINAN_FIRST_TIER_RATE", 10)
	cfg.Fees.SecondTierRate = envOrDefaultFloat("KAINAN_SECOND_TIER_RATE", 8)
	cfg.Fees.DefaultDistanceKm = envOrDefaultFloat("KAINAN_DEFAULT_DISTANCE_KM", 5)

	cfg.Courier.APIKey = os.Getenv("LALAMOVE_API_KEY")
	cfg.Courier.APISecret = os.Getenv("LALAMOVE_API_SECRET")
	cfg.Courier.URL = os.Getenv("LALAMOVE_API_URL")
	cfg.Courier.Market = envOrDefault("LALAMOVE_MARKET", "PH")

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Fees.BaseFee < 0 || c.Fees.FirstTierKm < 0 || c.Fees.FirstTierRate < 0 || c.Fees.SecondTierRate < 0 {
		return fmt.Errorf("config: fee settings must not be negative")
	}
	if c.Fees.DefaultDistanceKm <= 0 {
		return fmt.Errorf("config: KAINAN_DEFAULT_DISTANCE_KM must be positive")
	}
	for _, p := range c.Geocode.Providers {
		switch p {
		case "googlemaps", "googleplaces", "addressvalidation", "nominatim", "photon":
		default:
			return fmt.Errorf("config: unknown geocoder %q", p)
		}
	}
	return nil
}

// ParsePickup parses "lat,lng,address". The address may itself contain
// commas. An empty string yields the default pickup.
func ParsePickup(v string) (PickupConfig, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return defaultPickup, nil
	}
	parts := strings.SplitN(v, ",", 3)
	if len(parts) != 3 {
		return PickupConfig{}, fmt.Errorf("config: KAINAN_PICKUP must be \"lat,lng,address\", got %q", v)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil || lat < -90 || lat > 90 {
		return PickupConfig{}, fmt.Errorf("config: KAINAN_PICKUP latitude %q is invalid", parts[0])
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil || lng < -180 || lng > 180 {
		return PickupConfig{}, fmt.Errorf("config: KAINAN_PICKUP longitude %q is invalid", parts[1])
	}
	addr := strings.TrimSpace(parts[2])
	if addr == "" {
		return PickupConfig{}, fmt.Errorf("config: KAINAN_PICKUP address is empty")
	}
	return PickupConfig{Point: types.Point{Lat: lat, Lng: lng}, Address: addr}, nil
}

func defaultProviders(g GeocodeConfig) string {
	var out []string
	if g.GoogleMapsKey != "" {
		out = append(out, "googlemaps")
		if g.AddressValidation {
			out = append(out, "addressvalidation")
		}
	}
	out = append(out, "nominatim", "photon")
	return strings.Join(out, ",")
}

func parseList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}

func envOrDefaultBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

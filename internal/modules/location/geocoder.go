// README: Geocoder port and the ordered provider chain with per-provider retry.
package location

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"syscall"
	"time"

	"github.com/googleapis/gax-go/v2"

	"kainan/internal/types"
)

// Geocoder turns a free-text address into a coordinate.
type Geocoder interface {
	Name() string
	Geocode(ctx context.Context, address string) (types.Point, error)
}

var (
	ErrNoResult    = errors.New("geocode: no result")
	ErrNoProviders = errors.New("geocode: no providers configured")
)

// StatusError is returned by HTTP providers on a non-2xx response.
type StatusError struct {
	Provider string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status %d", e.Provider, e.Code)
}

// RetryPolicy bounds a single provider's attempts.
type RetryPolicy struct {
	Timeout time.Duration // per attempt
	Retries int           // extra attempts after a transient failure
	Initial time.Duration // first backoff ceiling, doubled per retry
	Max     time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Timeout: 5 * time.Second,
		Retries: 2,
		Initial: 500 * time.Millisecond,
		Max:     2 * time.Second,
	}
}

// Chain tries providers in order. Retries never cross providers.
type Chain struct {
	providers []Geocoder
	policy    RetryPolicy
}

func NewChain(policy RetryPolicy, providers ...Geocoder) *Chain {
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultRetryPolicy().Timeout
	}
	if policy.Retries < 0 {
		policy.Retries = 0
	}
	if policy.Initial <= 0 {
		policy.Initial = DefaultRetryPolicy().Initial
	}
	if policy.Max < policy.Initial {
		policy.Max = policy.Initial
	}
	return &Chain{providers: providers, policy: policy}
}

// Providers returns the provider names in priority order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Geocode returns the first coordinate any provider yields.
func (c *Chain) Geocode(ctx context.Context, address string) (GeocodeResult, error) {
	if len(c.providers) == 0 {
		return GeocodeResult{}, ErrNoProviders
	}
	var errs []error
	for _, p := range c.providers {
		pt, err := c.try(ctx, p, address)
		if err == nil {
			return GeocodeResult{Lat: pt.Lat, Lng: pt.Lng, Success: true, Provider: p.Name()}, nil
		}
		log.Printf("location: geocoder %s failed for %q: %v", p.Name(), address, err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return GeocodeResult{}, errors.Join(errs...)
}

func (c *Chain) try(ctx context.Context, p Geocoder, address string) (types.Point, error) {
	bo := gax.Backoff{Initial: c.policy.Initial, Max: c.policy.Max, Multiplier: 2}
	for attempt := 0; ; attempt++ {
		pt, err := c.attempt(ctx, p, address)
		if err == nil {
			return pt, nil
		}
		if attempt >= c.policy.Retries || !IsTransient(err) || ctx.Err() != nil {
			return types.Point{}, err
		}
		pause := bo.Pause()
		log.Printf("location: geocoder %s transient error (attempt %d), retrying in %s: %v", p.Name(), attempt+1, pause, err)
		if err := gax.Sleep(ctx, pause); err != nil {
			return types.Point{}, err
		}
	}
}

func (c *Chain) attempt(ctx context.Context, p Geocoder, address string) (types.Point, error) {
	actx, cancel := context.WithTimeout(ctx, c.policy.Timeout)
	defer cancel()
	return p.Geocode(actx, address)
}

// IsTransient reports whether err is a network-level failure worth retrying
// on the same provider: timeouts, DNS not-found, refused or reset connections.
// Bad statuses and empty results are not transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) || errors.Is(err, ErrNoResult) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsNotFound || dnsErr.IsTimeout || dnsErr.IsTemporary
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

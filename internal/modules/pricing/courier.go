// README: Courier quotation client (Lalamove v3 style, HMAC signed).
package pricing

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"kainan/internal/modules/location"
	"kainan/internal/types"
)

const quotationsPath = "/v3/quotations"

var ErrCourierUnavailable = errors.New("courier quotation unavailable")

type CourierRequest struct {
	Pickup         location.PickupLocation
	Dropoff        types.Point
	DropoffAddress string
}

type CourierQuote struct {
	QuotationID string
	BaseFee     float64
	TotalFee    float64
	Currency    string
	DistanceKm  float64
}

// Courier issues authoritative delivery quotations.
type Courier interface {
	Quote(ctx context.Context, req CourierRequest) (CourierQuote, error)
}

type LalamoveConfig struct {
	BaseURL     string
	APIKey      string
	APISecret   string
	Market      string
	ServiceType string
	Timeout     time.Duration
}

type LalamoveClient struct {
	cfg    LalamoveConfig
	client *http.Client
	now    func() time.Time
}

func NewLalamoveClient(cfg LalamoveConfig, httpClient *http.Client) *LalamoveClient {
	if cfg.Market == "" {
		cfg.Market = "PH"
	}
	if cfg.ServiceType == "" {
		cfg.ServiceType = "MOTORCYCLE"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &LalamoveClient{cfg: cfg, client: httpClient, now: time.Now}
}

type lalamoveStop struct {
	Coordinates struct {
		Lat string `json:"lat"`
		Lng string `json:"lng"`
	} `json:"coordinates"`
	Address string `json:"address"`
}

type lalamoveQuotationRequest struct {
	Data struct {
		ServiceType string         `json:"serviceType"`
		Language    string         `json:"language"`
		Stops       []lalamoveStop `json:"stops"`
	} `json:"data"`
}

type lalamoveQuotationResponse struct {
	Data struct {
		QuotationID    string `json:"quotationId"`
		PriceBreakdown struct {
			Base     string `json:"base"`
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"priceBreakdown"`
		Distance struct {
			Value string `json:"value"`
			Unit  string `json:"unit"`
		} `json:"distance"`
	} `json:"data"`
}

func newStop(p types.Point, address string) lalamoveStop {
	var s lalamoveStop
	s.Coordinates.Lat = strconv.FormatFloat(p.Lat, 'f', -1, 64)
	s.Coordinates.Lng = strconv.FormatFloat(p.Lng, 'f', -1, 64)
	s.Address = address
	return s
}

func (c *LalamoveClient) Quote(ctx context.Context, req CourierRequest) (CourierQuote, error) {
	var body lalamoveQuotationRequest
	body.Data.ServiceType = c.cfg.ServiceType
	body.Data.Language = "en_" + c.cfg.Market
	body.Data.Stops = []lalamoveStop{
		newStop(req.Pickup.Point, req.Pickup.Address),
		newStop(req.Dropoff, req.DropoffAddress),
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return CourierQuote{}, fmt.Errorf("courier: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+quotationsPath, bytes.NewReader(raw))
	if err != nil {
		return CourierQuote{}, fmt.Errorf("courier: build request: %w", err)
	}
	ts := strconv.FormatInt(c.now().UnixMilli(), 10)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", fmt.Sprintf("hmac %s:%s:%s", c.cfg.APIKey, ts, sign(c.cfg.APISecret, ts, http.MethodPost, quotationsPath, raw)))
	httpReq.Header.Set("Market", c.cfg.Market)
	httpReq.Header.Set("Request-ID", uuid.NewString())

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return CourierQuote{}, fmt.Errorf("courier: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return CourierQuote{}, fmt.Errorf("%w: status %d: %s", ErrCourierUnavailable, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var qr lalamoveQuotationResponse
	if err := json.NewDecoder(resp.Body).Decode(&qr); err != nil {
		return CourierQuote{}, fmt.Errorf("courier: decode response: %w", err)
	}
	return qr.toQuote()
}

func (qr lalamoveQuotationResponse) toQuote() (CourierQuote, error) {
	d := qr.Data
	if d.QuotationID == "" {
		return CourierQuote{}, fmt.Errorf("%w: missing quotation id", ErrCourierUnavailable)
	}
	total, err := strconv.ParseFloat(d.PriceBreakdown.Total, 64)
	if err != nil || total <= 0 {
		return CourierQuote{}, fmt.Errorf("%w: bad total %q", ErrCourierUnavailable, d.PriceBreakdown.Total)
	}
	q := CourierQuote{
		QuotationID: d.QuotationID,
		TotalFee:    total,
		Currency:    d.PriceBreakdown.Currency,
	}
	if base, err := strconv.ParseFloat(d.PriceBreakdown.Base, 64); err == nil && base <= total {
		q.BaseFee = base
	}
	if meters, err := strconv.ParseFloat(d.Distance.Value, 64); err == nil && meters > 0 {
		q.DistanceKm = meters / 1000
	}
	return q, nil
}

// sign computes the hex HMAC-SHA256 over "ts\r\nMETHOD\r\npath\r\n\r\nbody".
func sign(secret, ts, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "\r\n" + method + "\r\n" + path + "\r\n\r\n"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

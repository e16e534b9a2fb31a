// README: Smoke cases: infrastructure checks, known-address quotes, checkout and a short load run.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"kainan/migrations"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Name    string
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

type quoteResp struct {
	DeliveryFee    float64 `json:"deliveryFee"`
	Distance       float64 `json:"distance"`
	QuotationID    string  `json:"quotationId"`
	IsEstimate     bool    `json:"isEstimate"`
	Source         string  `json:"source"`
	PriceBreakdown struct {
		BaseFee     float64 `json:"baseFee"`
		DistanceFee float64 `json:"distanceFee"`
		TotalFee    float64 `json:"totalFee"`
	} `json:"priceBreakdown"`
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 30 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		res.Name = tc.Name
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency.Round(time.Millisecond))
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres tables", Run: checkTables},
		{Name: "Env: Redis connect", Run: checkRedis},
		{
			Name: "API: health",
			Run: func(ctx context.Context, r *Runner) Result {
				status, _, latency, err := r.do(ctx, http.MethodGet, base+"/health", nil)
				if err != nil {
					return Result{Status: "FAIL", Note: err.Error()}
				}
				if status != http.StatusOK {
					return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
				}
				return Result{Status: "PASS", Latency: latency}
			},
		},

		quoteCase("Quote: override Florida Residences", base, "Florida Residences", 2.2),
		quoteCase("Quote: override SM City Pampanga", base, "SM City Pampanga", 13.1),
		quoteCase("Quote: untabulated plus code", base, "ABCD1234+XY", -1),
		quoteCase("Quote: free text", base, "Balibago, Angeles City, Pampanga", -1),
		statusCase("Quote: blank address -> 400", http.MethodPost, base+"/api/delivery/quote", map[string]string{"address": " "}, http.StatusBadRequest),

		statusCase("Order: checkout", http.MethodPost, base+"/api/orders", map[string]any{
			"customerName":    "Bench",
			"deliveryAddress": "Holy Angel University",
			"subtotal":        150,
		}, http.StatusCreated),
		statusCase("Order: missing fields -> 400", http.MethodPost, base+"/api/orders", map[string]any{}, http.StatusBadRequest),

		{
			Name: "Perf: quote load",
			Run: func(ctx context.Context, r *Runner) Result {
				return perfLoad(ctx, r, base+"/api/delivery/quote", map[string]string{"address": "Marquee Mall"})
			},
		},
	}
}

func (r *Runner) do(ctx context.Context, method, rawURL string, body any) (int, []byte, time.Duration, error) {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return 0, nil, 0, err
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return 0, nil, 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return 0, nil, 0, err
	}
	defer resp.Body.Close()
	out, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	return resp.StatusCode, out, time.Since(start), err
}

// quoteCase asks for a quote; wantKm < 0 only checks the response is consistent.
func quoteCase(name, base, address string, wantKm float64) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, body, latency, err := r.do(ctx, http.MethodGet, base+"/api/delivery/quote?address="+url.QueryEscape(address), nil)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status != http.StatusOK {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
			}
			var q quoteResp
			if err := json.Unmarshal(body, &q); err != nil {
				return Result{Status: "FAIL", Latency: latency, Note: err.Error()}
			}
			note := fmt.Sprintf("%.1fkm %s fee=%.2f", q.Distance, q.Source, q.DeliveryFee)
			if q.QuotationID == "" || q.DeliveryFee <= 0 {
				return Result{Status: "FAIL", Latency: latency, Note: "empty quote: " + note}
			}
			if q.IsEstimate && math.Abs(q.PriceBreakdown.TotalFee-q.PriceBreakdown.BaseFee-q.PriceBreakdown.DistanceFee) > 0.005 {
				return Result{Status: "FAIL", Latency: latency, Note: "breakdown does not add up: " + note}
			}
			if wantKm >= 0 && q.Distance != wantKm {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("want %.1fkm, got %s", wantKm, note)}
			}
			return Result{Status: "PASS", Latency: latency, Note: note}
		},
	}
}

func statusCase(name, method, rawURL string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			status, _, latency, err := r.do(ctx, method, rawURL, body)
			if err != nil {
				return Result{Status: "FAIL", Note: err.Error()}
			}
			if status != want {
				return Result{Status: "FAIL", Latency: latency, Note: fmt.Sprintf("status=%d want=%d", status, want)}
			}
			return Result{Status: "PASS", Latency: latency, Note: fmt.Sprintf("status=%d", status)}
		},
	}
}

func checkTables(ctx context.Context, r *Runner) Result {
	if r.db == nil {
		return Result{Status: "SKIP", Note: "db not configured"}
	}
	tables, err := migrationTables()
	if err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	for _, t := range tables {
		var exists bool
		err := r.db.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)",
			t,
		).Scan(&exists)
		if err != nil {
			return Result{Status: "FAIL", Note: err.Error()}
		}
		if !exists {
			return Result{Status: "FAIL", Note: "missing table: " + t}
		}
	}
	return Result{Status: "PASS", Note: fmt.Sprintf("%d tables", len(tables))}
}

func checkRedis(ctx context.Context, r *Runner) Result {
	if r.redis == nil {
		return Result{Status: "SKIP", Note: "redis not configured"}
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := r.redis.Ping(ctx).Err(); err != nil {
		return Result{Status: "FAIL", Note: err.Error()}
	}
	return Result{Status: "PASS"}
}

var createTable = regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)

func migrationTables() ([]string, error) {
	b, err := migrations.FS.ReadFile("0001_init.sql")
	if err != nil {
		return nil, err
	}
	matches := createTable.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func perfLoad(ctx context.Context, r *Runner, rawURL string, payload any) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				status, _, _, err := r.do(ctx, http.MethodPost, rawURL, payload)
				mu.Lock()
				if err != nil || status != http.StatusOK {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: "FAIL", Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: "PASS", Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

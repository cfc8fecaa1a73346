package loadtest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"

	"github.com/aneeb02/footyPredatorr/pkg/logger"
)

// HTTPClient wraps http.Client with timeout.
type HTTPClient struct {
	client *http.Client
}

// newHTTPClient creates a new HTTP client with timeout.
func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

// submitSamples posts every sample concurrently using a worker pool and
// returns the results in sample order.
func submitSamples(ctx context.Context, config *Config, samples []Sample, stats *Stats) []Result {
	logger.Get().Info(ctx, "submitting inputs",
		logger.Int("count", len(samples)),
		logger.Int("workers", config.Workers))

	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/predict"
	results := make([]Result, len(samples))

	var submitted, succeeded, failed int64
	var lastReport atomic.Int64

	indexChan := make(chan int, config.Workers*WorkerChannelMultiplier)
	var wg sync.WaitGroup

	for i := 0; i < config.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range indexChan {
				if ctx.Err() != nil {
					continue
				}
				res := submitSingleSample(ctx, client, url, samples[index])
				results[index] = res

				total := atomic.AddInt64(&submitted, 1)
				if res.Status == StatusOK {
					atomic.AddInt64(&succeeded, 1)
				} else {
					atomic.AddInt64(&failed, 1)
				}

				now := time.Now().UnixNano()
				last := lastReport.Load()
				if now-last >= int64(progressInterval) && lastReport.CompareAndSwap(last, now) {
					if config.Verbose {
						logger.Get().Info(ctx, "progress",
							logger.Int("submitted", int(total)),
							logger.Int("total", len(samples)),
							logger.Int("succeeded", int(atomic.LoadInt64(&succeeded))),
							logger.Int("failed", int(atomic.LoadInt64(&failed))))
					} else {
						fmt.Printf("\rSubmitted: %d/%d (ok: %d, not ok: %d)",
							total, len(samples), atomic.LoadInt64(&succeeded), atomic.LoadInt64(&failed))
					}
				}
			}
		}()
	}

	go func() {
		defer close(indexChan)
		for i := range samples {
			select {
			case <-ctx.Done():
				return
			case indexChan <- i:
			}
		}
	}()

	wg.Wait()
	if !config.Verbose {
		fmt.Println()
	}

	tally(samples, results, stats)

	logger.Get().Info(ctx, "submission completed",
		logger.Int("succeeded", stats.Succeeded),
		logger.Int("inputErrors", stats.InputErrors),
		logger.Int("serverErrors", stats.ServerErrors),
		logger.Int("transportErrors", stats.TransportErrors),
		logger.Int("unexpected", stats.Unexpected))
	return results
}

// submitSingleSample posts one sample and decodes the response.
func submitSingleSample(ctx context.Context, client *HTTPClient, url string, s Sample) Result {
	resp, err := client.Post(ctx, url, s.Input)
	if err != nil {
		return Result{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{Status: resp.StatusCode, Err: err}
	}

	res := Result{Status: resp.StatusCode}
	if resp.StatusCode == StatusOK {
		res.Err = json.Unmarshal(body, &res.Prediction)
	} else {
		_ = json.Unmarshal(body, &res.Error)
	}
	return res
}

// tally folds results into stats.
func tally(samples []Sample, results []Result, stats *Stats) {
	if stats.ByPosition == nil {
		stats.ByPosition = map[string]int{}
	}
	for i, res := range results {
		if res.Status == 0 && res.Err == nil {
			continue // never sent
		}
		stats.Submitted++
		switch {
		case res.Status == 0:
			stats.TransportErrors++
			continue
		case res.Status == StatusOK:
			stats.Succeeded++
			stats.ByPosition[res.Prediction.Position]++
			if checkPrediction(res.Prediction) != nil {
				stats.Invalid++
			}
		case res.Status == StatusBadRequest:
			stats.InputErrors++
		case res.Status >= statusServerMin:
			stats.ServerErrors++
		}
		if res.Status != samples[i].ExpectedStatus() {
			stats.Unexpected++
		}
	}
}

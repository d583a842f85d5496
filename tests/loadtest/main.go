package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
)

const (
	numWorkers   = 20
	testDuration = 10 * time.Second
)

var baseURL = envOr("SWIPETRIAGE_URL", "http://127.0.0.1:8090")

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 100,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

type batchView struct {
	State   string `json:"state"`
	Current *struct {
		ID string `json:"id"`
	} `json:"current"`
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// The target server should run with an unlimited entitlement
// (SWIPETRIAGE_ENTITLEMENT=trial), otherwise the swipe phase stops at the
// daily quota after a handful of requests.
func main() {
	fmt.Println("=== SwipeTriage Load Test ===")
	fmt.Printf("Target: %s | Workers: %d | Duration: %s\n\n", baseURL, numWorkers, testDuration)

	fmt.Print("Waiting for library... ")
	if !waitForLibrary() {
		fmt.Println("FAILED: server not ready")
		return
	}
	fmt.Println("OK")

	fmt.Println("\n--- Phase 1: Reads (GET /batch, /filters, /quota, /progress) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.50:
			return get("/batch")
		case r < 0.70:
			return get("/filters")
		case r < 0.85:
			return get("/quota")
		default:
			return get("/progress")
		}
	})

	// Keep followed by undo leaves progress where it was; conflicts are
	// expected when workers race on the same cursor.
	fmt.Println("\n--- Phase 2: Swipe/undo churn with thumbnail reads ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		switch r := rng.Float64(); {
		case r < 0.40:
			return post("/swipe", `{"action":"keep"}`)
		case r < 0.80:
			return post("/undo", "")
		default:
			return getThumbnail()
		}
	})
}

func waitForLibrary() bool {
	for i := 0; i < 50; i++ {
		resp, err := httpClient.Get(baseURL + "/batch")
		if err == nil {
			var view batchView
			_ = json.NewDecoder(resp.Body).Decode(&view)
			resp.Body.Close()
			if view.State != "" && view.State != "loading" {
				return true
			}
		}
		time.Sleep(200 * time.Millisecond)
	}
	return false
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps, totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(max(totalOps, 1))*100, float64(totalOps)/duration.Seconds())
}

func get(path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	return finish("GET "+path, resp, err, start, http.StatusOK)
}

// post treats 409 as success: it only reports a state conflict between workers.
func post(path, body string) result {
	start := time.Now()
	resp, err := httpClient.Post(baseURL+path, "application/json", bytes.NewReader([]byte(body)))
	return finish("POST "+path, resp, err, start, http.StatusOK, http.StatusConflict)
}

func getThumbnail() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/batch")
	if err != nil {
		return result{"GET /asset", 0, time.Since(start), true}
	}
	var view batchView
	_ = json.NewDecoder(resp.Body).Decode(&view)
	resp.Body.Close()
	if view.Current == nil {
		return result{"GET /asset", http.StatusNoContent, time.Since(start), false}
	}

	start = time.Now()
	resp, err = httpClient.Get(baseURL + "/asset?quality=thumbnail&id=" + url.QueryEscape(view.Current.ID))
	return finish("GET /asset", resp, err, start, http.StatusOK)
}

func finish(endpoint string, resp *http.Response, err error, start time.Time, ok ...int) result {
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	for _, code := range ok {
		if resp.StatusCode == code {
			return result{endpoint, resp.StatusCode, lat, false}
		}
	}
	return result{endpoint, resp.StatusCode, lat, true}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dus", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

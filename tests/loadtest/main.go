package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL      = "http://127.0.0.1:18090"
	numWorkers   = 50
	testDuration = 10 * time.Second
	numProfiles  = 8
	numSongs     = 500
)

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
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

func profileName(i int) string {
	return fmt.Sprintf("LoadProfile %d", i)
}

func main() {
	fmt.Println("=== SPD Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s\n", numWorkers, testDuration)
	fmt.Printf("Profiles: %d | Songs: %d\n\n", numProfiles, numSongs)

	// Wait for server
	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// Seed the profiles once; duplicates after a restart are fine.
	fmt.Println("\nSeeding profiles...")
	for i := 0; i < numProfiles; i++ {
		body, _ := json.Marshal(map[string]string{"name": profileName(i), "description": "load test"})
		resp, err := httpClient.Post(baseURL+"/profiles", "application/json", bytes.NewReader(body))
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	// Phase 1: write-heavy state saves
	fmt.Println("\n--- Phase 1: State saves (POST /state/save) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doSaveState(rng)
	})

	// Phase 2: Mixed read/write load
	fmt.Println("\n--- Phase 2: Mixed load (50% save, 50% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.50:
			return doSaveState(rng)
		case r < 0.70:
			return doGetState(rng)
		case r < 0.85:
			return doListProfiles()
		default:
			return doListBackups(rng)
		}
	})

	// Phase 3: Read-heavy load with occasional manual backups
	fmt.Println("\n--- Phase 3: Read-heavy load (5% backup, 10% save, 85% reads) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.05:
			return doCreateBackup(rng)
		case r < 0.15:
			return doSaveState(rng)
		case r < 0.50:
			return doGetState(rng)
		case r < 0.80:
			return doListProfiles()
		default:
			return doListBackups(rng)
		}
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
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
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
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
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomPage(rng *rand.Rand, pageNumber int) map[string]interface{} {
	buttons := make(map[string]string)
	n := rng.Intn(10) + 1
	for i := 0; i < n; i++ {
		pos := fmt.Sprintf("%d-%d", rng.Intn(4), rng.Intn(8))
		buttons[pos] = fmt.Sprintf("song-%d", rng.Intn(numSongs)+1)
	}
	return map[string]interface{}{
		"pageNumber": pageNumber,
		"tabName":    fmt.Sprintf("Tab %d", pageNumber),
		"buttons":    buttons,
	}
}

func doSaveState(rng *rand.Rand) result {
	pages := make([]map[string]interface{}, rng.Intn(3)+1)
	for i := range pages {
		pages[i] = randomPage(rng, i+1)
	}
	body := map[string]interface{}{
		"profile": profileName(rng.Intn(numProfiles)),
		"snapshot": map[string]interface{}{
			"hotkeys": pages,
			"window":  map[string]int{"x": 0, "y": 0, "width": 1280, "height": 720},
		},
	}

	data, _ := json.Marshal(body)
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/state/save", "application/json", bytes.NewReader(data))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /state/save", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"POST /state/save", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doGetState(rng *rand.Rand) result {
	u := fmt.Sprintf("%s/state?profile=%s", baseURL, url.QueryEscape(profileName(rng.Intn(numProfiles))))
	start := time.Now()
	resp, err := httpClient.Get(u)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /state", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /state", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doListProfiles() result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + "/profiles")
	lat := time.Since(start)
	if err != nil {
		return result{"GET /profiles", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /profiles", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doListBackups(rng *rand.Rand) result {
	u := fmt.Sprintf("%s/backups?profile=%s", baseURL, url.QueryEscape(profileName(rng.Intn(numProfiles))))
	start := time.Now()
	resp, err := httpClient.Get(u)
	lat := time.Since(start)
	if err != nil {
		return result{"GET /backups", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{"GET /backups", resp.StatusCode, lat, resp.StatusCode != 200}
}

func doCreateBackup(rng *rand.Rand) result {
	body, _ := json.Marshal(map[string]string{"profile": profileName(rng.Intn(numProfiles))})
	start := time.Now()
	resp, err := httpClient.Post(baseURL+"/backups", "application/json", bytes.NewReader(body))
	lat := time.Since(start)
	if err != nil {
		return result{"POST /backups", 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	// 409 just means a concurrent backup held the profile lock.
	ok := resp.StatusCode == 200 || resp.StatusCode == 409
	return result{"POST /backups", resp.StatusCode, lat, !ok}
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
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}

func repeat(s string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += s
	}
	return out
}

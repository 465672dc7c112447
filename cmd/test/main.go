// Command test is a smoke-test client for a running brandforge server.
// The flow test drives the real pipeline, so it needs the server to hold
// live provider keys.
package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"strings"
	"time"
)

const (
	colorReset = "\033[0m"
	colorRed   = "\033[31m"
	colorGreen = "\033[32m"
	colorBlue  = "\033[34m"
	colorCyan  = "\033[36m"
)

type TestClient struct {
	baseURL string
	client  *http.Client
}

func NewTestClient(baseURL string) *TestClient {
	jar, _ := cookiejar.New(nil)
	return &TestClient{
		baseURL: baseURL,
		client: &http.Client{
			Jar:     jar,
			Timeout: 5 * time.Minute, // the flow test waits on real generation calls
		},
	}
}

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Base URL of the server")
	testType := flag.String("test", "all", "Test type: all, health, landing, guards, flow")
	site := flag.String("site", "", "Website to analyze (for the flow test)")
	flag.Parse()

	client := NewTestClient(*baseURL)

	printHeader("Brandforge - Smoke Test Suite")
	fmt.Printf("%sBase URL: %s%s\n\n", colorCyan, *baseURL, colorReset)

	switch *testType {
	case "all":
		client.runAllTests()
	case "health":
		client.testHealthCheck()
	case "landing":
		client.testLanding()
	case "guards":
		client.testStageGuards()
	case "flow":
		if *site == "" {
			printError("A website is required for the flow test. Use -site flag")
			os.Exit(1)
		}
		client.testFullFlow(*site)
	default:
		printError(fmt.Sprintf("Unknown test type: %s", *testType))
		fmt.Println("\nAvailable tests: all, health, landing, guards, flow")
		os.Exit(1)
	}
}

func (tc *TestClient) runAllTests() {
	tests := []struct {
		name string
		fn   func() bool
	}{
		{"Health Check", tc.testHealthCheck},
		{"Landing Screen", tc.testLanding},
		{"Stage Guards", tc.testStageGuards},
	}

	passed := 0
	failed := 0

	for _, test := range tests {
		if test.fn() {
			passed++
		} else {
			failed++
		}
		fmt.Println()
	}

	printHeader("Test Summary")
	fmt.Printf("%sPassed: %d%s\n", colorGreen, passed, colorReset)
	fmt.Printf("%sFailed: %d%s\n", colorRed, failed, colorReset)
	fmt.Printf("Total: %d\n", passed+failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func (tc *TestClient) testHealthCheck() bool {
	printTestHeader("Testing Health Check Endpoint")

	endpoint := fmt.Sprintf("%s/health", tc.baseURL)
	fmt.Printf("GET %s\n", endpoint)

	resp, err := tc.client.Get(endpoint)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}

	if string(body) != "OK" {
		printError(fmt.Sprintf("Expected body 'OK', got '%s'", string(body)))
		return false
	}

	printSuccess("Health check passed")
	return true
}

func (tc *TestClient) testLanding() bool {
	printTestHeader("Testing Landing Screen")

	endpoint := tc.baseURL + "/"
	fmt.Printf("GET %s\n", endpoint)

	resp, err := tc.client.Get(endpoint)
	if err != nil {
		printError(fmt.Sprintf("Request failed: %v", err))
		return false
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		printError(fmt.Sprintf("Expected status 200, got %d", resp.StatusCode))
		return false
	}
	if !strings.Contains(string(body), "BRANDFORGE") {
		printError("Landing screen did not render")
		return false
	}

	printSuccess("Landing screen rendered")
	return true
}

// testStageGuards verifies that stage screens are unreachable before
// their prerequisites exist.
func (tc *TestClient) testStageGuards() bool {
	printTestHeader("Testing Stage Guards")

	for _, path := range []string{"/dashboard", "/results"} {
		endpoint := tc.baseURL + path
		fmt.Printf("GET %s\n", endpoint)

		resp, err := tc.client.Get(endpoint)
		if err != nil {
			printError(fmt.Sprintf("Request failed: %v", err))
			return false
		}
		final := resp.Request.URL.Path
		resp.Body.Close()

		if final != "/" {
			printError(fmt.Sprintf("Expected redirect to /, landed on %s", final))
			return false
		}
	}

	printSuccess("Stage guards redirect to the landing screen")
	return true
}

func (tc *TestClient) testFullFlow(site string) bool {
	printTestHeader("Testing Full Pipeline Flow")
	fmt.Printf("%sWebsite:%s %s\n\n", colorCyan, colorReset, site)

	fmt.Printf("POST %s/analyze\n", tc.baseURL)
	resp, err := tc.client.PostForm(tc.baseURL+"/analyze", url.Values{"url": {site}})
	if err != nil {
		printError(fmt.Sprintf("Analyze request failed: %v", err))
		return false
	}
	body, _ := io.ReadAll(resp.Body)
	final := resp.Request.URL.Path
	resp.Body.Close()

	if final != "/dashboard" {
		printError(fmt.Sprintf("Extraction did not reach the dashboard (landed on %s)", final))
		return false
	}
	printSuccess("Brand DNA extracted")

	fmt.Printf("POST %s/campaigns\n", tc.baseURL)
	resp, err = tc.client.PostForm(tc.baseURL+"/campaigns", nil)
	if err != nil {
		printError(fmt.Sprintf("Campaigns request failed: %v", err))
		return false
	}
	body, _ = io.ReadAll(resp.Body)
	final = resp.Request.URL.Path
	resp.Body.Close()

	if final != "/results" {
		printError(fmt.Sprintf("Generation did not reach results (landed on %s)", final))
		return false
	}

	cards := strings.Count(string(body), `class="concept-number"`)
	unavailable := strings.Count(string(body), "Visual unavailable")
	printSuccess(fmt.Sprintf("Results rendered with %d concept card(s), %d unavailable visual(s)", cards, unavailable))

	fmt.Printf("POST %s/reset\n", tc.baseURL)
	resp, err = tc.client.PostForm(tc.baseURL+"/reset", nil)
	if err != nil {
		printError(fmt.Sprintf("Reset request failed: %v", err))
		return false
	}
	final = resp.Request.URL.Path
	resp.Body.Close()

	if final != "/" {
		printError(fmt.Sprintf("Reset did not return to the landing screen (landed on %s)", final))
		return false
	}
	printSuccess("Session reset")
	return true
}

func printHeader(text string) {
	fmt.Printf("\n%s%s%s\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
	fmt.Printf("%s= %s =%s\n", colorBlue, text, colorReset)
	fmt.Printf("%s%s%s\n\n", colorBlue, strings.Repeat("=", len(text)+4), colorReset)
}

func printTestHeader(text string) {
	fmt.Printf("%s[TEST] %s%s\n", colorCyan, text, colorReset)
	fmt.Println(strings.Repeat("-", 80))
}

func printSuccess(text string) {
	fmt.Printf("%s✓ %s%s\n", colorGreen, text, colorReset)
}

func printError(text string) {
	fmt.Printf("%s✗ %s%s\n", colorRed, text, colorReset)
}

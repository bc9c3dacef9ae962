// Package main provides a CLI tool for validating planner server endpoints.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type endpoint struct {
	path     string
	method   string
	body     string
	status   int
	contains []string
}

const sampleAnalysis = `{
  "goals": [
    {"id": "home", "category": "real_estate", "name": "Home", "target_amount": "300000", "current_amount": "15000",
     "target_date": "2029-06-01T00:00:00Z", "priority": 1, "status": "active", "parameters": {"down_payment_percent": "20"}},
    {"id": "trip", "category": "vacation", "name": "Trip", "target_amount": "8000", "current_amount": "0",
     "target_date": "2027-06-01T00:00:00Z", "priority": 4, "status": "active"}
  ],
  "state": {"net_worth": "40000", "monthly_income": "7000", "monthly_expenses": "5000", "monthly_surplus": "2000",
            "liquid_assets": "15000", "investment_assets": "25000", "risk_profile": 5},
  "preferences": {"risk_tolerance": "moderate"}
}`

var endpoints = []endpoint{
	{path: "/api/health", method: "GET", status: http.StatusOK, contains: []string{`"status":"ok"`}},
	{path: "/api/version", method: "GET", status: http.StatusOK, contains: []string{`"version"`}},

	{path: "/api/analyze", method: "POST", body: sampleAnalysis, status: http.StatusOK,
		contains: []string{`"overall_score"`, `"scenarios"`, `"recommendations"`}},
	{path: "/api/analyze", method: "POST", body: `{"goals": [`, status: http.StatusBadRequest,
		contains: []string{`"malformed_json"`}},
	{path: "/api/simulate", method: "POST", status: http.StatusOK, contains: []string{`"success_rate"`, `"percentiles"`},
		body: `{"scenario_id": "balanced", "iterations": 200, "seed": 1, "goals": [], "state": {"monthly_surplus": "1000", "investment_assets": "10000"}}`},
	{path: "/api/loans/payoff", method: "POST", status: http.StatusOK, contains: []string{`"months_to_payoff"`, `"interest_saved"`},
		body: `{"balance": "10000", "rate": "20", "payment": "300", "accelerated_payment": "500"}`},
	{path: "/api/loans/payoff", method: "POST", status: http.StatusUnprocessableEntity, contains: []string{`"insufficient_payment"`},
		body: `{"balance": "12000", "rate": "12", "payment": "120"}`},
	{path: "/api/debts/avalanche", method: "POST", status: http.StatusOK, contains: []string{`"priority":1`},
		body: `{"debts": [{"description": "visa", "balance": "5000", "interest_rate": "22", "minimum_payment": "150"}]}`},
	{path: "/api/retirement/projection", method: "POST", status: http.StatusOK, contains: []string{`"projected_balance"`},
		body: `{"current_age": 35, "retirement_age": 65, "savings": "50000", "monthly_contribution": "1000"}`},

	{path: "/api/profiles", method: "GET", status: http.StatusOK, contains: []string{`"profiles"`}},
}

type result struct {
	endpoint endpoint
	status   int
	duration time.Duration
	err      error
	body     string
}

func main() {
	url := flag.String("url", "http://localhost:8080", "Base URL of the server to validate")
	verbose := flag.Bool("v", false, "Verbose output")
	timeout := flag.Int("timeout", 10, "Request timeout in seconds")
	flag.Parse()

	client := &http.Client{
		Timeout: time.Duration(*timeout) * time.Second,
	}

	fmt.Printf("Validating server at %s\n", *url)
	fmt.Printf("Testing %d endpoints...\n\n", len(endpoints))

	var passed, failed int
	var results []result

	for _, ep := range endpoints {
		r := validateEndpoint(client, *url, ep, *verbose)
		results = append(results, r)

		if r.err != nil {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Error: %v\n", r.err)
		} else if r.status != ep.status {
			failed++
			fmt.Printf("FAIL %s %s\n", ep.method, ep.path)
			fmt.Printf("     Status: %d (expected %d)\n", r.status, ep.status)
		} else {
			passed++
			if *verbose {
				fmt.Printf("PASS %s %s (%v)\n", ep.method, ep.path, r.duration)
			}
		}
	}

	fmt.Printf("\n========================================\n")
	fmt.Printf("Results: %d passed, %d failed\n", passed, failed)

	if failed > 0 {
		os.Exit(1)
	}
}

func validateEndpoint(client *http.Client, baseURL string, ep endpoint, verbose bool) result {
	start := time.Now()

	var reqBody io.Reader
	if ep.body != "" {
		reqBody = strings.NewReader(ep.body)
	}
	req, err := http.NewRequest(ep.method, baseURL+ep.path, reqBody)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to create request: %w", err)}
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return result{endpoint: ep, err: fmt.Errorf("failed to read body: %w", err)}
	}

	duration := time.Since(start)

	r := result{
		endpoint: ep,
		status:   resp.StatusCode,
		duration: duration,
		body:     string(body),
	}

	// Every endpoint answers JSON, errors included
	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		r.err = fmt.Errorf("wrong content type: got %q", ct)
		return r
	}
	var js any
	if err := json.Unmarshal(body, &js); err != nil {
		r.err = fmt.Errorf("invalid JSON: %w", err)
		return r
	}

	// Validate required content
	for _, needle := range ep.contains {
		if !strings.Contains(string(body), needle) {
			r.err = fmt.Errorf("missing expected content: %q", needle)
			return r
		}
	}

	return r
}

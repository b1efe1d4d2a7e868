package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GammonHaroldNg/hk-logistics-eta-demo/internal/config"
)

func TestHealthEndpoint(t *testing.T) {
	s := NewServer(config.Config{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("health check failed: %v", err)
	}
}

func TestTrafficEndpoints(t *testing.T) {
	s := NewServer(config.Config{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/traffic", nil)
	resp, err := s.App.Test(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		t.Fatalf("traffic snapshot failed: %v", err)
	}

	req = httptest.NewRequest(http.MethodGet, "/traffic/778", nil)
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown corridor, got %d", resp.StatusCode)
	}

	s.Traffic.Update("778", "GREEN", 52)
	req = httptest.NewRequest(http.MethodGet, "/traffic/778", nil)
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected traffic sample, got %d", resp.StatusCode)
	}
}

func TestDeliveryRoutesRegistered(t *testing.T) {
	s := NewServer(config.Config{}, nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/delivery/status", nil)
	resp, _ := s.App.Test(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 before a session starts, got %d", resp.StatusCode)
	}

	req = httptest.NewRequest(http.MethodGet, "/delivery/trucks", nil)
	resp, _ = s.App.Test(req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected empty fleet, got %d", resp.StatusCode)
	}
}

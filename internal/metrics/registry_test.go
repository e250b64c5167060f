package metrics

import (
	"context"
	"io"
	"net"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	reg, m := NewRegistry()
	if reg == nil || m == nil {
		t.Fatal("expected registry and metrics")
	}

	m.RecordSwitch()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}
	found := false
	for _, mf := range families {
		if mf.GetName() == "vendaa_organization_switches_total" {
			found = true
		}
	}
	if !found {
		t.Error("metrics not registered with the dedicated registry")
	}
}

func TestMultipleRegistries(t *testing.T) {
	reg1, m1 := NewRegistry()
	reg2, _ := NewRegistry()

	m1.RecordLogout("explicit")

	f1, err := reg1.Gather()
	if err != nil {
		t.Fatalf("gather reg1: %v", err)
	}
	f2, err := reg2.Gather()
	if err != nil {
		t.Fatalf("gather reg2: %v", err)
	}

	// Vectors without observations are not gathered.
	if len(f1) <= len(f2) {
		t.Errorf("reg1 gathered %d families, reg2 %d; registries are not independent", len(f1), len(f2))
	}
}

func TestServe(t *testing.T) {
	// Reserve a free port, then release it for Serve.
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()

	reg, m := NewRegistry()
	m.RecordSwitch()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, addr, reg) }()

	var body string
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		data, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		body = string(data)
		break
	}
	if !strings.Contains(body, "vendaa_organization_switches_total 1") {
		t.Errorf("metrics body missing switch counter:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve returned %v after cancel", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Serve did not stop after cancel")
	}
}

func TestServeInvalidAddress(t *testing.T) {
	reg, _ := NewRegistry()
	if err := Serve(context.Background(), "not-an-address", reg); err == nil {
		t.Error("expected error for invalid address")
	}
}

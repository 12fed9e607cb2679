package main

import "testing"

func TestHubOnlineTracking(t *testing.T) {
	h := NewHub(nil, nil)
	c := &Client{}

	if h.OnlineCount() != 0 {
		t.Fatalf("fresh hub should have 0 online, got %d", h.OnlineCount())
	}
	h.SetOnline(7, c)
	if h.OnlineCount() != 1 {
		t.Errorf("expected 1 online, got %d", h.OnlineCount())
	}
	h.SetOnline(7, c) // same account again
	if h.OnlineCount() != 1 {
		t.Errorf("re-auth should not double count, got %d", h.OnlineCount())
	}
	h.SetOnline(8, &Client{})
	if h.OnlineCount() != 2 {
		t.Errorf("expected 2 online, got %d", h.OnlineCount())
	}
	h.SetOffline(7)
	h.SetOffline(7) // idempotent
	if h.OnlineCount() != 1 {
		t.Errorf("expected 1 online after sign-out, got %d", h.OnlineCount())
	}
}

func TestHubConnectionLimits(t *testing.T) {
	h := NewHub(nil, nil)

	for i := 0; i < maxConnsPerIP; i++ {
		if !h.CanAccept("1.1.1.1") {
			t.Fatalf("connection %d from one IP should be accepted", i+1)
		}
		h.TrackConnect("1.1.1.1")
	}
	if h.CanAccept("1.1.1.1") {
		t.Error("per-IP limit should block further connections")
	}
	if !h.CanAccept("2.2.2.2") {
		t.Error("other IPs should still be accepted")
	}

	h.TrackDisconnect("1.1.1.1")
	if !h.CanAccept("1.1.1.1") {
		t.Error("disconnect should free a per-IP slot")
	}
	if h.TotalConns() != maxConnsPerIP-1 {
		t.Errorf("expected %d tracked conns, got %d", maxConnsPerIP-1, h.TotalConns())
	}
}

package web

import (
	"testing"
)

func TestNewServer_requiresAdminPassword(t *testing.T) {
	if _, err := NewServer(3000, nil, Options{AdminUser: "admin"}); err == nil {
		t.Errorf("expected an error without admin password")
	}

	s, err := NewServer(3000, nil, Options{AdminUser: "admin", AdminPassword: "secret"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.server.Addr != ":3000" {
		t.Errorf("unexpected server address: %s", s.server.Addr)
	}
}

func TestBurst(t *testing.T) {
	tests := []struct {
		limit float64
		want  int
	}{
		{limit: 0.5, want: 1},
		{limit: 1, want: 1},
		{limit: 5, want: 5},
		{limit: 7.9, want: 7},
	}

	for _, tc := range tests {
		got := burst(tc.limit)
		if tc.want != got {
			t.Errorf("burst(%v): expected: '%v', got: '%v'", tc.limit, tc.want, got)
		}
	}
}

package config

import (
	"testing"
	"time"
)

// ── ParseTunnelSpec ──────────────────────────────────────────────────

func TestParseTunnelSpec(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantUser string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"full", "admin@bastion.example.com:2222", "admin", "bastion.example.com", 2222, false},
		{"no port", "root@gateway", "root", "gateway", 22, false},
		{"no user", "jump-host:2200", "", "jump-host", 2200, false},
		{"host only", "gateway.local", "", "gateway.local", 22, false},
		{"bad port", "user@host:999999", "", "", 0, true},
		{"empty", "", "", "", 0, true},
		{"colon only", ":", "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, host, port, err := ParseTunnelSpec(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr = %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if user != tt.wantUser || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("got (%q, %q, %d), want (%q, %q, %d)",
					user, host, port, tt.wantUser, tt.wantHost, tt.wantPort)
			}
		})
	}
}

// ── ApplyTunnelSpec ──────────────────────────────────────────────────

func TestApplyTunnelSpec(t *testing.T) {
	cfg := &Config{TunnelSpec: "ops@bastion:2200"}
	if err := cfg.ApplyTunnelSpec(); err != nil {
		t.Fatal(err)
	}
	if !cfg.TunnelEnabled || cfg.TunnelUser != "ops" || cfg.TunnelHost != "bastion" || cfg.TunnelPort != 2200 {
		t.Errorf("got %+v", cfg)
	}

	empty := &Config{}
	if err := empty.ApplyTunnelSpec(); err != nil || empty.TunnelEnabled {
		t.Errorf("empty spec: err = %v, enabled = %v", err, empty.TunnelEnabled)
	}

	bad := &Config{TunnelSpec: "host:0"}
	if err := bad.ApplyTunnelSpec(); err == nil {
		t.Error("expected error for port 0")
	}
}

// ── Config.Validate ──────────────────────────────────────────────────

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "valid client",
			cfg:     Config{Nickname: "alice", Server: "chat.example.com"},
			wantErr: false,
		},
		{
			// missing values are reported by the session, not here
			name:    "client without server",
			cfg:     Config{Nickname: "alice"},
			wantErr: false,
		},
		{
			name:    "valid relay",
			cfg:     Config{Listen: true, LocalPort: 8080},
			wantErr: false,
		},
		{
			name:    "relay default port",
			cfg:     Config{Listen: true},
			wantErr: false,
		},
		{
			name:    "relay port out of range",
			cfg:     Config{Listen: true, LocalPort: 70000},
			wantErr: true,
		},
		{
			name:    "relay with server",
			cfg:     Config{Listen: true, Server: "x"},
			wantErr: true,
		},
		{
			name:    "relay through tunnel",
			cfg:     Config{Listen: true, TunnelEnabled: true, TunnelHost: "gw"},
			wantErr: true,
		},
		{
			name:    "negative timeout",
			cfg:     Config{Timeout: -time.Second},
			wantErr: true,
		},
		{
			name:    "tunnel without host",
			cfg:     Config{TunnelEnabled: true},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr = %v", err, tt.wantErr)
			}
		})
	}
}

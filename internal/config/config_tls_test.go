package config

import (
	"strings"
	"testing"
)

func tlsTestConfig(tls ClientTLSConfig) *Config {
	return &Config{Backend: BackendConfig{TLS: tls}}
}

func TestValidateTLSMode(t *testing.T) {
	tests := []struct {
		name    string
		tls     ClientTLSConfig
		wantErr string // empty means valid
	}{
		{
			name: "disabled mode",
			tls:  ClientTLSConfig{Mode: "disabled"},
		},
		{
			name: "server mode without ca",
			tls:  ClientTLSConfig{Mode: "server"},
		},
		{
			name: "server mode with ca file",
			tls:  ClientTLSConfig{Mode: "server", CAFile: "/etc/ssl/ca.pem"},
		},
		{
			name:    "server mode with duplicate ca sources",
			tls:     ClientTLSConfig{Mode: "server", CAFile: "/etc/ssl/ca.pem", CAContent: "PEM"},
			wantErr: "both caFile and caContent",
		},
		{
			name: "mutual mode with files",
			tls: ClientTLSConfig{
				Mode:     "mutual",
				CertFile: "/etc/ssl/client.pem",
				KeyFile:  "/etc/ssl/client.key",
			},
		},
		{
			name: "mutual mode with content",
			tls: ClientTLSConfig{
				Mode:        "mutual",
				CertContent: "CERT PEM",
				KeyContent:  "KEY PEM",
			},
		},
		{
			name:    "mutual mode missing key",
			tls:     ClientTLSConfig{Mode: "mutual", CertFile: "/etc/ssl/client.pem"},
			wantErr: "certificate and key are required",
		},
		{
			name: "mutual mode duplicate cert sources",
			tls: ClientTLSConfig{
				Mode:        "mutual",
				CertFile:    "/etc/ssl/client.pem",
				CertContent: "CERT PEM",
				KeyFile:     "/etc/ssl/client.key",
			},
			wantErr: "both certFile and certContent",
		},
		{
			name: "mutual mode duplicate key sources",
			tls: ClientTLSConfig{
				Mode:       "mutual",
				CertFile:   "/etc/ssl/client.pem",
				KeyFile:    "/etc/ssl/client.key",
				KeyContent: "KEY PEM",
			},
			wantErr: "both keyFile and keyContent",
		},
		{
			name:    "unknown mode",
			tls:     ClientTLSConfig{Mode: "sideways"},
			wantErr: "invalid TLS mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tlsTestConfig(tt.tls).ValidateTLSConfig()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTLSVersion(t *testing.T) {
	for _, version := range []string{"", "1.2", "1.3"} {
		cfg := tlsTestConfig(ClientTLSConfig{Mode: "disabled", MinVersion: version})
		if err := cfg.ValidateTLSConfig(); err != nil {
			t.Errorf("version %q: unexpected error %v", version, err)
		}
	}

	cfg := tlsTestConfig(ClientTLSConfig{Mode: "disabled", MinVersion: "1.1"})
	if err := cfg.ValidateTLSConfig(); err == nil {
		t.Error("TLS 1.1 must be rejected")
	}
}

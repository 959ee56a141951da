package config

import (
	"strings"
	"testing"
	"time"

	"latexify/internal/types"
)

func validConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:  "https://api.example.com",
			Timeout:  30 * time.Second,
			Compiler: "pdflatex",
			TLS:      ClientTLSConfig{Mode: "disabled"},
		},
		App: AppConfig{
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string // empty means valid
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing base url",
			mutate:  func(c *Config) { c.Backend.BaseURL = "" },
			wantErr: "base URL is required",
		},
		{
			name:    "base url without scheme",
			mutate:  func(c *Config) { c.Backend.BaseURL = "api.example.com" },
			wantErr: "must start with http://",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.Backend.Timeout = 0 },
			wantErr: "timeout must be positive",
		},
		{
			name:    "unknown compiler",
			mutate:  func(c *Config) { c.Backend.Compiler = "latexmk" },
			wantErr: "invalid compiler",
		},
		{
			name:    "default format not supported",
			mutate:  func(c *Config) { c.App.DefaultFormat = "yaml" },
			wantErr: "invalid default format",
		},
		{
			name:    "bad tls mode surfaces",
			mutate:  func(c *Config) { c.Backend.TLS.Mode = "wat" },
			wantErr: "TLS configuration error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
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

func TestOperationTimeoutDefaults(t *testing.T) {
	cfg := validConfig()

	// Unset operation timeouts inherit the global backend timeout.
	if got := *cfg.GetGenerateConfig().Timeout; got != 30*time.Second {
		t.Errorf("generate timeout = %v, want inherited 30s", got)
	}

	custom := 2 * time.Minute
	cfg.Backend.Compile.Timeout = &custom
	if got := *cfg.GetCompileConfig().Timeout; got != custom {
		t.Errorf("compile timeout = %v, want %v", got, custom)
	}
	// Other operations keep the default.
	if got := *cfg.GetAnalyzeConfig().Timeout; got != 30*time.Second {
		t.Errorf("analyze timeout = %v, want inherited 30s", got)
	}
}

func TestDefaultCompilerOptions(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.Compiler = "xelatex"
	cfg.Backend.StopOnFirstError = true

	opts := cfg.DefaultCompilerOptions()
	if opts.Compiler != types.CompilerXeLaTeX {
		t.Errorf("Compiler = %s", opts.Compiler)
	}
	if !opts.StopOnFirstError {
		t.Error("StopOnFirstError not carried over")
	}
}

func TestUserIdentity(t *testing.T) {
	var u UserConfig
	if u.Identity() != nil {
		t.Error("empty user config must yield a nil identity")
	}

	u = UserConfig{UID: "uid-1", Email: "a@b.com", DisplayName: "A"}
	identity := u.Identity()
	if identity == nil || identity.UID != "uid-1" || identity.Email != "a@b.com" {
		t.Errorf("identity = %+v", identity)
	}
}

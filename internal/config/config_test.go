package config

import (
	"errors"
	"testing"
	"time"
)

func TestParseArgsDefaults(t *testing.T) {
	cfg, err := ParseArgs([]string{"query", "half", "life"})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Args.Command != CommandQuery || len(cfg.Args.Rest) != 2 {
		t.Errorf("args = %+v", cfg.Args)
	}
	if cfg.Catalog.TTL != 5*time.Minute {
		t.Errorf("ttl = %v", cfg.Catalog.TTL)
	}
	if cfg.Steam.Lookahead != 512 || cfg.Steam.ExeSuffix != ".exe" || cfg.Steam.IconMaxDepth != 2 {
		t.Errorf("steam = %+v", cfg.Steam)
	}
	if cfg.Logger.Output != "stderr" {
		t.Errorf("log output = %q", cfg.Logger.Output)
	}
}

func TestParseArgsNamespaces(t *testing.T) {
	cfg, err := ParseArgs([]string{"--steam-path", "/opt/steam", "--catalog-ttl", "30s", "--db-path", "cache.db", "scan"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steam.Path != "/opt/steam" || cfg.Catalog.TTL != 30*time.Second || cfg.Storage.Path != "cache.db" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseArgsEnv(t *testing.T) {
	t.Setenv("STEAMDEX_STEAM_PATH", "/env/steam")
	t.Setenv("STEAMDEX_AUTH_TOKEN", "secret")

	cfg, err := ParseArgs([]string{"serve"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Steam.Path != "/env/steam" || cfg.Server.AuthToken != "secret" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestParseArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		ok   bool
	}{
		{"no command", nil, false},
		{"unknown", []string{"dance"}, false},
		{"launch without id", []string{"launch"}, false},
		{"launch", []string{"launch", "440"}, true},
		{"serve without token", []string{"serve"}, false},
		{"serve", []string{"-t", "x", "serve"}, true},
		{"rpc", []string{`{"method":"query","parameters":[""]}`}, true},
		{"maintenance only", []string{"--db-purge"}, true},
		{"version only", []string{"-v"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if (err == nil) != tt.ok {
				t.Fatalf("err = %v", err)
			}
		})
	}

	if _, err := ParseArgs(nil); !errors.Is(err, ErrNoCommand) {
		t.Errorf("err = %v", err)
	}
}

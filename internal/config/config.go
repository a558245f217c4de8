// Package config parses the steamdex configuration from command-line
// arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/steamdex/internal/logger"
	"github.com/woozymasta/steamdex/internal/vars"
)

// Commands accepted as the first positional argument.
const (
	CommandQuery  = "query"
	CommandLaunch = "launch"
	CommandScan   = "scan"
	CommandServe  = "serve"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Steam       Steam         `group:"Steam Options" namespace:"steam" env-namespace:"STEAMDEX_STEAM"`
	Catalog     Catalog       `group:"Catalog Options" namespace:"catalog" env-namespace:"STEAMDEX_CATALOG"`
	Icons       Icons         `group:"Icon Options" namespace:"icons" env-namespace:"STEAMDEX_ICONS"`
	Storage     Storage       `group:"Storage Options" namespace:"db" env-namespace:"STEAMDEX_DB"`
	Server      Server        `group:"Server Options" env-namespace:"STEAMDEX"`
	RateLimit   RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"STEAMDEX_RATE_LIMIT"`
	Maintenance Maintenance   `group:"Maintenance Options"`
	Logger      logger.Config `group:"Logger Options" namespace:"log" env-namespace:"STEAMDEX_LOG"`

	Args struct {
		Command string   `positional-arg-name:"command" description:"query, launch, scan, serve or a JSON-RPC request"`
		Rest    []string `positional-arg-name:"args"`
	} `positional-args:"yes"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Steam holds installation discovery settings.
type Steam struct {
	// betteralign:ignore

	Path         string `short:"s" long:"path" env:"PATH" description:"Steam installation directory, detected when empty"`
	Lookahead    int    `long:"shortcut-lookahead" env:"SHORTCUT_LOOKAHEAD" description:"Bytes searched for the executable after a shortcut name" default:"512"`
	ExeSuffix    string `long:"exe-suffix" env:"EXE_SUFFIX" description:"Required suffix of non-Steam executables" default:".exe"`
	ScanWorkers  int    `long:"workers" env:"WORKERS" description:"Concurrent manifest parsers" default:"4"`
	IconMaxDepth int    `long:"icon-depth" env:"ICON_DEPTH" description:"Directory depth searched for icons inside an install folder" default:"2"`
}

// Catalog holds snapshot caching settings.
type Catalog struct {
	// betteralign:ignore

	TTL time.Duration `long:"ttl" env:"TTL" description:"Time a scanned catalog is served before rescanning" default:"5m"`
}

// Icons holds icon optimizer settings.
type Icons struct {
	// betteralign:ignore

	Dir     string `long:"dir" env:"DIR" description:"Directory for optimized icons, optimizer disabled when empty" default:"icons"`
	MaxSize uint   `long:"max-size" env:"MAX_SIZE" description:"Longest edge of an optimized icon in pixels" default:"384"`
}

// Storage holds database configuration.
type Storage struct {
	// betteralign:ignore

	Path string `short:"d" long:"path" env:"PATH" description:"Path to SQLite snapshot database, persistence disabled when empty" default:"steamdex.db"`
}

// Server holds HTTP adapter configuration.
type Server struct {
	// betteralign:ignore

	Address    string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"Server listen address" default:"127.0.0.1:8787"`
	AuthToken  string `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Token required by launch and refresh endpoints"`
	TrustProxy bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// RateLimit holds API rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	Count  int           `long:"count" env:"COUNT" description:"Requests allowed per IP within the window" default:"60"`
	Window time.Duration `long:"window" env:"WINDOW" description:"Rate limit window" default:"1m"`
}

// Maintenance holds one-shot maintenance actions; any of them makes the
// process run the action and exit.
type Maintenance struct {
	// betteralign:ignore

	DBPurge     bool   `long:"db-purge" description:"Delete the persisted catalog snapshot"`
	IconsPrune  bool   `long:"icons-prune" description:"Delete optimized icons no game references"`
	IconsWarm   bool   `long:"icons-warm" description:"Scan and optimize every icon ahead of time"`
	FakeLibrary string `long:"gen-fake-library" hidden:"true"`
	FakeGames   int    `long:"gen-fake-count" hidden:"true" default:"40"`
	Workers     int    `long:"maintenance-workers" description:"Concurrent maintenance workers" default:"8"`
}

// Requested reports whether any maintenance action was asked for.
func (m Maintenance) Requested() bool {
	return m.DBPurge || m.IconsPrune || m.IconsWarm || m.FakeLibrary != ""
}

// ErrNoCommand is returned when neither a command nor a maintenance action was given.
var ErrNoCommand = errors.New("no command given")

// ParseArgs parses args without terminating the process.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Parse reads the configuration from os.Args and the environment.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	_, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
		}
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print(os.Stdout)
		os.Exit(0)
	}

	if err := cfg.validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		parser.WriteHelp(os.Stderr)
		os.Exit(1)
	}

	return &cfg
}

// IsRPC reports whether the command argument is a JSON-RPC request.
func (c *Config) IsRPC() bool {
	return strings.HasPrefix(strings.TrimSpace(c.Args.Command), "{")
}

func (c *Config) validate() error {
	if c.Version || c.Maintenance.Requested() {
		return nil
	}

	switch cmd := c.Args.Command; {
	case cmd == "":
		return ErrNoCommand
	case c.IsRPC(), cmd == CommandQuery, cmd == CommandScan:
	case cmd == CommandLaunch:
		if len(c.Args.Rest) != 1 {
			return fmt.Errorf("%s expects exactly one game id", CommandLaunch)
		}
	case cmd == CommandServe:
		if c.Server.AuthToken == "" {
			return errors.New("required flag `-t, --auth-token' or environment variable `STEAMDEX_AUTH_TOKEN` was not specified")
		}
		if c.RateLimit.Count <= 0 || c.RateLimit.Window <= 0 {
			return errors.New("rate limit count and window must be positive")
		}
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}

// Package config loads the mazeforge YAML configuration, layers .env and
// environment overrides on top and validates the result.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/lawnchairsociety/mazeforge/internal/archive"
	"github.com/lawnchairsociety/mazeforge/internal/camera"
	"github.com/lawnchairsociety/mazeforge/internal/content"
	"github.com/lawnchairsociety/mazeforge/internal/level"
	"github.com/lawnchairsociety/mazeforge/internal/logger"
	"github.com/lawnchairsociety/mazeforge/internal/maze"
	"github.com/lawnchairsociety/mazeforge/internal/seed"
)

// MaxDimension caps the number of maze columns and rows.
const MaxDimension = 256

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the whole configuration file.
type Config struct {
	Maze     MazeConfig     `yaml:"maze"`
	Server   ServerConfig   `yaml:"server"`
	Database archive.Config `yaml:"database"`
	Logging  logger.Config  `yaml:"logging"`
}

// MazeConfig describes the level to generate.
type MazeConfig struct {
	Cols      int    `yaml:"cols"`
	Rows      int    `yaml:"rows"`
	Algorithm string `yaml:"algorithm"`

	// Seed is a decimal number or a phrase. Empty means a fresh maze on
	// every start.
	Seed string `yaml:"seed"`

	// Overlays maps content kind names (gem, heart, monster...) to how many
	// to scatter.
	Overlays map[string]int `yaml:"overlays"`
}

// ServerConfig holds the websocket service settings.
type ServerConfig struct {
	Addr        string            `yaml:"addr"`
	WebSocket   WebSocketConfig   `yaml:"websocket"`
	Connections ConnectionsConfig `yaml:"connections"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Viewport    ViewportConfig    `yaml:"viewport"`
}

// WebSocketConfig holds WebSocket-specific settings.
type WebSocketConfig struct {
	// AllowedOrigins lists origins allowed to connect. An empty list
	// enforces same-origin; "*" allows everything.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageSize is the maximum inbound message size in bytes.
	MaxMessageSize int64 `yaml:"max_message_size"`
}

// ConnectionsConfig holds connection limits. 0 means unlimited.
type ConnectionsConfig struct {
	MaxPerIP int `yaml:"max_per_ip"`
	MaxTotal int `yaml:"max_total"`
}

// RateLimitConfig controls lockouts for clients that keep sending bad
// requests. Each lockout doubles, capped at MaxLockoutSeconds.
type RateLimitConfig struct {
	MaxBadRequests    int `yaml:"max_bad_requests"`
	LockoutSeconds    int `yaml:"lockout_seconds"`
	MaxLockoutSeconds int `yaml:"max_lockout_seconds"`
}

// ViewportConfig sizes the windows sent to clients.
type ViewportConfig struct {
	HalfWidth    int `yaml:"half_width"`
	HalfHeight   int `yaml:"half_height"`
	MaxHalfWidth int `yaml:"max_half_width"`
}

// Camera returns the default camera for the configured viewport.
func (v ViewportConfig) Camera() camera.Camera {
	return camera.Camera{HalfWidth: v.HalfWidth, HalfHeight: v.HalfHeight}
}

// DefaultConfig returns a Config with working defaults.
func DefaultConfig() *Config {
	return &Config{
		Maze: MazeConfig{
			Cols:      20,
			Rows:      15,
			Algorithm: maze.Backtracker.String(),
			Overlays: map[string]int{
				content.Heart.String():   3,
				content.Gem.String():     5,
				content.Ring.String():    1,
				content.Sword.String():   1,
				content.Monster.String(): 4,
			},
		},
		Server: ServerConfig{
			Addr: ":8080",
			WebSocket: WebSocketConfig{
				AllowedOrigins: []string{},
				MaxMessageSize: 4096,
			},
			Connections: ConnectionsConfig{
				MaxPerIP: 5,
				MaxTotal: 100,
			},
			RateLimit: RateLimitConfig{
				MaxBadRequests:    10,
				LockoutSeconds:    30,
				MaxLockoutSeconds: 300,
			},
			Viewport: ViewportConfig{
				HalfWidth:    10,
				HalfHeight:   7,
				MaxHalfWidth: 40,
			},
		},
		Database: archive.DefaultConfig("data/mazes.db"),
		Logging:  logger.DefaultConfig(),
	}
}

// LoadConfig reads path over the defaults. A missing file yields the
// defaults; a parse error yields the defaults and the error.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing %s: %w", path, err)
	}
	return config, nil
}

// LoadEnvFile loads KEY=VALUE pairs from the given .env files (".env" if
// none) into the process environment. Missing files are not an error.
func LoadEnvFile(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	var existing []string
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv() {
	envInt("MAZE_COLS", &c.Maze.Cols)
	envInt("MAZE_ROWS", &c.Maze.Rows)
	envString("MAZE_ALGORITHM", &c.Maze.Algorithm)
	envString("MAZE_SEED", &c.Maze.Seed)

	envString("SERVER_ADDR", &c.Server.Addr)
	if origins := os.Getenv("WS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.WebSocket.AllowedOrigins = splitList(origins)
	}
	envInt("WS_MAX_CONNECTIONS", &c.Server.Connections.MaxTotal)

	envString("DB_DRIVER", &c.Database.Driver)
	envString("DB_PATH", &c.Database.SQLitePath)
	envString("PG_HOST", &c.Database.Postgres.Host)
	envInt("PG_PORT", &c.Database.Postgres.Port)
	envString("PG_USER", &c.Database.Postgres.User)
	envString("PG_PASSWORD", &c.Database.Postgres.Password)
	envString("PG_DATABASE", &c.Database.Postgres.Database)
	envString("PG_SSLMODE", &c.Database.Postgres.SSLMode)

	c.Logging.ApplyEnv()
}

func envString(key string, dst *string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		*dst = n
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports the first problem found, wrapped in ErrInvalid.
func (c *Config) Validate() error {
	if c.Maze.Cols < 1 || c.Maze.Cols > MaxDimension || c.Maze.Rows < 1 || c.Maze.Rows > MaxDimension {
		return fmt.Errorf("%w: maze must be between 1x1 and %dx%d, got %dx%d",
			ErrInvalid, MaxDimension, MaxDimension, c.Maze.Cols, c.Maze.Rows)
	}
	if _, err := maze.ParseAlgorithm(c.Maze.Algorithm); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if _, err := c.Maze.overlays(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	v := c.Server.Viewport
	if v.HalfWidth < 1 || v.HalfHeight < 1 {
		return fmt.Errorf("%w: viewport half sizes must be positive", ErrInvalid)
	}
	if v.MaxHalfWidth < v.HalfWidth || v.MaxHalfWidth < v.HalfHeight {
		return fmt.Errorf("%w: max_half_width %d is below the default viewport", ErrInvalid, v.MaxHalfWidth)
	}

	switch archive.DialectType(c.Database.Driver) {
	case archive.DialectSQLite, archive.DialectPostgres:
	default:
		return fmt.Errorf("%w: unknown database driver %q", ErrInvalid, c.Database.Driver)
	}
	return nil
}

func (m MazeConfig) overlays() (map[content.Kind]int, error) {
	out := make(map[content.Kind]int, len(m.Overlays))
	for name, n := range m.Overlays {
		k, err := content.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if k == content.Portal {
			return nil, fmt.Errorf("the portal is always placed once")
		}
		if n < 0 {
			return nil, fmt.Errorf("negative count %d for %s", n, name)
		}
		out[k] = n
	}
	return out, nil
}

// LevelOptions converts the maze section for level.New. Call Validate first.
func (m MazeConfig) LevelOptions() level.Options {
	alg, _ := maze.ParseAlgorithm(m.Algorithm)
	overlays, _ := m.overlays()
	return level.Options{
		Cols:      m.Cols,
		Rows:      m.Rows,
		Algorithm: alg,
		Seed:      seed.Parse(m.Seed),
		Overlays:  overlays,
	}
}

// IsOriginAllowed checks an Origin header against the allow list, falling
// back to same-origin when the list is empty.
func (c *WebSocketConfig) IsOriginAllowed(origin, requestHost string) bool {
	if len(c.AllowedOrigins) == 0 {
		return isSameOrigin(origin, requestHost)
	}
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// isSameOrigin treats a missing Origin header as a non-browser client.
func isSameOrigin(origin, requestHost string) bool {
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return false
	}
	return u.Host == requestHost
}

package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/BioHazard786/roomlink/internal/signaling"
)

// Server defaults.
const (
	DefaultAddr            = ":8080"
	DefaultIDFormat        = signaling.IDFormatUUID
	DefaultSendQueue       = 256
	DefaultMaxMessageBytes = 64 * 1024
	DefaultPongWait        = 60 * time.Second
	DefaultWriteWait       = 10 * time.Second
	DefaultServerLogLevel  = "info"
)

// Server holds the signaling server configuration.
type Server struct {
	Addr            string        `yaml:"addr"`
	IDFormat        string        `yaml:"id_format"`
	SendQueue       int           `yaml:"send_queue"`
	MaxMessageBytes int64         `yaml:"max_message_bytes"`
	PongWait        time.Duration `yaml:"pong_wait"`
	WriteWait       time.Duration `yaml:"write_wait"`
	LogLevel        string        `yaml:"log_level"`
}

// ServerOptions carries command-line overrides. Empty fields are unset.
type ServerOptions struct {
	ConfigFile string
	Addr       string
	IDFormat   string
	LogLevel   string
}

// LoadServer builds the server configuration with the following priority:
// 1. CLI flags (passed via ServerOptions) - highest priority
// 2. Environment variables
// 3. The YAML config file, if one is given
// 4. Hardcoded defaults - lowest priority
func LoadServer(opts ServerOptions) (*Server, error) {
	cfg := &Server{}

	path := firstNonEmpty(opts.ConfigFile, os.Getenv("ROOMLINK_CONFIG"))
	if path != "" {
		fileCfg, err := LoadServerFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}

	envAddr := os.Getenv("LISTEN_ADDR")
	if envAddr == "" {
		if port := os.Getenv("PORT"); port != "" {
			envAddr = ":" + port
		}
	}

	cfg.Addr = firstNonEmpty(opts.Addr, envAddr, cfg.Addr)
	cfg.IDFormat = firstNonEmpty(opts.IDFormat, os.Getenv("ID_FORMAT"), cfg.IDFormat)
	cfg.LogLevel = firstNonEmpty(opts.LogLevel, os.Getenv("LOG_LEVEL"), cfg.LogLevel)

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// LoadServerFile reads a YAML config file, expanding ${VAR} references.
func LoadServerFile(path string) (*Server, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Server
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}
	return &cfg, nil
}

func (c *Server) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.IDFormat == "" {
		c.IDFormat = DefaultIDFormat
	}
	if c.SendQueue == 0 {
		c.SendQueue = DefaultSendQueue
	}
	if c.MaxMessageBytes == 0 {
		c.MaxMessageBytes = DefaultMaxMessageBytes
	}
	if c.PongWait == 0 {
		c.PongWait = DefaultPongWait
	}
	if c.WriteWait == 0 {
		c.WriteWait = DefaultWriteWait
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultServerLogLevel
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Server) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if _, err := signaling.NewIDGenerator(c.IDFormat); err != nil {
		errs = append(errs, err)
	}
	if c.SendQueue <= 0 {
		errs = append(errs, fmt.Errorf("send_queue must be positive, got %d", c.SendQueue))
	}
	if c.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes))
	}
	if c.PongWait <= 0 {
		errs = append(errs, fmt.Errorf("pong_wait must be positive, got %s", c.PongWait))
	}
	if c.WriteWait <= 0 {
		errs = append(errs, fmt.Errorf("write_wait must be positive, got %s", c.WriteWait))
	}

	return errors.Join(errs...)
}

// Limits converts the configuration into per-connection limits.
func (c *Server) Limits() signaling.Limits {
	return signaling.Limits{
		WriteWait:      c.WriteWait,
		PongWait:       c.PongWait,
		MaxMessageSize: c.MaxMessageBytes,
		SendQueue:      c.SendQueue,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

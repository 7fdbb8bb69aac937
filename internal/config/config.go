// Package config loads process configuration from the environment.
package config

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/berniyo/payson-lambda/internal/payson"
)

// Config is the configuration shared by every binary.
type Config struct {
	Env        string `env:"ENV" env-default:"local"`
	Payson     Payson
	Callback   Callback
	HTTPServer HTTPServer
}

// Payson holds the agent credentials and API transport settings.
type Payson struct {
	AgentID string `env:"PAYSON_AGENT_ID" env-required:"true"`
	APIKey  string `env:"PAYSON_API_KEY" env-required:"true"`
	// SandboxAgents lists agent:key pairs that route to the test API. The
	// default is the pair of public test agents Payson publishes.
	SandboxAgents []string      `env:"PAYSON_SANDBOX_AGENTS" env-separator:"," env-default:"1:fddb19ac-7470-42b6-a91d-072cb1495f0a,4:2acab30d-fe50-426f-90d7-8c60a7eb31d4"`
	Timeout       time.Duration `env:"PAYSON_HTTP_TIMEOUT" env-default:"30s"`
}

// Callback is where verified notifications are forwarded. Empty URL
// disables forwarding.
type Callback struct {
	URL    string `env:"CALLBACK_URL"`
	Secret string `env:"CALLBACK_SECRET"`
}

// HTTPServer configures cmd/ipnserver.
type HTTPServer struct {
	Address     string        `env:"HTTP_ADDRESS" env-default:":8080"`
	ReadTimeout time.Duration `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
}

// Load reads the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if _, err := cfg.Payson.SandboxCredentials(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// MustLoad is Load for main packages.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("cannot load config: %s", err)
	}
	return cfg
}

// Credentials returns the agent credentials for the Payson client.
func (p Payson) Credentials() payson.Credentials {
	return payson.Credentials{AgentID: p.AgentID, APIKey: p.APIKey}
}

// SandboxCredentials parses SandboxAgents.
func (p Payson) SandboxCredentials() ([]payson.Credentials, error) {
	creds := make([]payson.Credentials, 0, len(p.SandboxAgents))
	for _, pair := range p.SandboxAgents {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		id, key, ok := strings.Cut(pair, ":")
		if !ok || id == "" || key == "" {
			return nil, fmt.Errorf("PAYSON_SANDBOX_AGENTS: %q is not agent:key", pair)
		}
		creds = append(creds, payson.Credentials{AgentID: id, APIKey: key})
	}
	return creds, nil
}

// HTTPClient returns the transport used for Payson calls.
func (p Payson) HTTPClient() *http.Client {
	return &http.Client{Timeout: p.Timeout}
}

// ClientOptions wires the Payson settings into client options.
func (p Payson) ClientOptions() ([]payson.Option, error) {
	sandbox, err := p.SandboxCredentials()
	if err != nil {
		return nil, err
	}
	return []payson.Option{
		payson.WithHTTPClient(p.HTTPClient()),
		payson.WithSandboxCredentials(sandbox...),
	}, nil
}

// String renders the configuration with secrets masked.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Env: %s\n"+
			"Payson:\n"+
			"  AgentID: %s\n"+
			"  APIKey: %s\n"+
			"  SandboxAgents: %d\n"+
			"  Timeout: %s\n"+
			"Callback:\n"+
			"  URL: %s\n"+
			"  Secret: %s\n"+
			"HTTPServer:\n"+
			"  Address: %s\n"+
			"  ReadTimeout: %s\n",
		c.Env,
		c.Payson.AgentID,
		mask(c.Payson.APIKey),
		len(c.Payson.SandboxAgents),
		c.Payson.Timeout,
		c.Callback.URL,
		mask(c.Callback.Secret),
		c.HTTPServer.Address,
		c.HTTPServer.ReadTimeout,
	)
}

func mask(secret string) string {
	if secret == "" {
		return ""
	}
	return "****"
}

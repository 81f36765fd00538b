package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"
)

const (
	defaultChatWebhookURL   = "https://avishkarofficial.app.n8n.cloud/webhook/8d956423-35a9-4b99-8205-63af1b4e721a"
	defaultSignupWebhookURL = "https://testingperpose05.app.n8n.cloud/webhook/form fill up finalyzer"
)

// Config aggregates the service configuration.
type Config struct {
	Server  ServerConfig
	Webhook WebhookConfig
	Storage StorageConfig
	Chat    ChatConfig
	Log     LogConfig
	AI      AIConfig
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	server, err := loadServerConfig()
	if err != nil {
		return nil, err
	}

	webhook, err := loadWebhookConfig()
	if err != nil {
		return nil, err
	}

	storage, err := loadStorageConfig()
	if err != nil {
		return nil, err
	}

	chat, err := loadChatConfig()
	if err != nil {
		return nil, err
	}

	ai, err := loadAIConfig()
	if err != nil {
		return nil, err
	}

	return &Config{
		Server:  server,
		Webhook: webhook,
		Storage: storage,
		Chat:    chat,
		Log:     loadLogConfig(),
		AI:      ai,
	}, nil
}

// ServerConfig describes the HTTP listener.
type ServerConfig struct {
	Addr         string
	CookieSecure bool
}

// loadServerConfig resolves the listen address.
func loadServerConfig() (ServerConfig, error) {
	secure, err := parseBoolEnv("COOKIE_SECURE", false)
	if err != nil {
		return ServerConfig{}, err
	}

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, ":") {
		// Accept ":8080" or "127.0.0.1:8080" as given.
		return ServerConfig{Addr: port, CookieSecure: secure}, nil
	}

	if strings.Contains(port, " ") {
		return ServerConfig{}, fmt.Errorf("invalid PORT value: %q", port)
	}

	return ServerConfig{Addr: ":" + port, CookieSecure: secure}, nil
}

// DefaultWebhookTimeout applies when WEBHOOK_TIMEOUT is unset.
const DefaultWebhookTimeout = 2 * time.Minute

// WebhookConfig describes the two remote n8n hooks.
type WebhookConfig struct {
	ChatURL       string
	SignupURL     string
	SignupEnabled bool
	// Timeout bounds every webhook request and the wait for a chat reply.
	Timeout time.Duration
}

func loadWebhookConfig() (WebhookConfig, error) {
	timeout, err := parseDurationEnv("WEBHOOK_TIMEOUT", DefaultWebhookTimeout)
	if err != nil {
		return WebhookConfig{}, err
	}

	signup, err := parseBoolEnv("SIGNUP_ENABLED", true)
	if err != nil {
		return WebhookConfig{}, err
	}

	return WebhookConfig{
		ChatURL:       getEnvOrDefault("CHAT_WEBHOOK_URL", defaultChatWebhookURL),
		SignupURL:     getEnvOrDefault("SIGNUP_WEBHOOK_URL", defaultSignupWebhookURL),
		SignupEnabled: signup,
		Timeout:       timeout,
	}, nil
}

// StorageConfig selects the visitor storage backend.
type StorageConfig struct {
	Driver string
	DSN    string
}

func loadStorageConfig() (StorageConfig, error) {
	driver := strings.ToLower(getEnvOrDefault("STORAGE_DRIVER", "sqlite"))
	switch driver {
	case "memory", "sqlite":
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_DRIVER value: %q", driver)
	}

	return StorageConfig{
		Driver: driver,
		DSN:    getEnvOrDefault("STORAGE_DSN", "finalyzer.db"),
	}, nil
}

// ChatConfig describes the chat view.
type ChatConfig struct {
	TypingInterval  time.Duration
	VisitorTTL      time.Duration
	SuggestionsFile string
	ReplyBackend    string
}

func loadChatConfig() (ChatConfig, error) {
	typing, err := parseDurationEnv("TYPING_INTERVAL", 50*time.Millisecond)
	if err != nil {
		return ChatConfig{}, err
	}
	if typing <= 0 {
		return ChatConfig{}, fmt.Errorf("TYPING_INTERVAL must be positive, got %s", typing)
	}

	ttl, err := parseDurationEnv("VISITOR_TTL", 30*time.Minute)
	if err != nil {
		return ChatConfig{}, err
	}

	backend := strings.ToLower(getEnvOrDefault("REPLY_BACKEND", "webhook"))
	if backend != "webhook" && backend != "ark" {
		return ChatConfig{}, fmt.Errorf("invalid REPLY_BACKEND value: %q", backend)
	}

	return ChatConfig{
		TypingInterval:  typing,
		VisitorTTL:      ttl,
		SuggestionsFile: strings.TrimSpace(os.Getenv("SUGGESTIONS_FILE")),
		ReplyBackend:    backend,
	}, nil
}

// LogConfig describes log output.
type LogConfig struct {
	Level  string
	Format string
}

func loadLogConfig() LogConfig {
	return LogConfig{
		Level:  getEnvOrDefault("LOG_LEVEL", "info"),
		Format: getEnvOrDefault("LOG_FORMAT", "text"),
	}
}

// AIConfig describes the optional Ark model backend.
type AIConfig struct {
	APIKey      string
	AccessKey   string
	SecretKey   string
	Model       string
	BaseURL     string
	Region      string
	Temperature *float64
	MaxTokens   *int
}

// Enabled reports whether the required credentials are set.
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel creates an Ark chat model from the configuration.
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, fmt.Errorf("ark credentials or model missing: provide ARK_API_KEY + Model or an AK/SK pair")
	}

	var temperature *float32
	if c.Temperature != nil {
		val := float32(*c.Temperature)
		temperature = &val
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:     c.BaseURL,
		Region:      c.Region,
		APIKey:      c.APIKey,
		AccessKey:   c.AccessKey,
		SecretKey:   c.SecretKey,
		Model:       c.Model,
		MaxTokens:   c.MaxTokens,
		Temperature: temperature,
	}

	return ark.NewChatModel(ctx, cfg)
}

func loadAIConfig() (AIConfig, error) {
	temperature, err := parseOptionalFloatEnv("ARK_TEMPERATURE")
	if err != nil {
		return AIConfig{}, err
	}

	maxTokens, err := parseOptionalIntEnv("ARK_MAX_TOKENS")
	if err != nil {
		return AIConfig{}, err
	}

	return AIConfig{
		APIKey:      strings.TrimSpace(os.Getenv("ARK_API_KEY")),
		AccessKey:   strings.TrimSpace(os.Getenv("ARK_ACCESS_KEY")),
		SecretKey:   strings.TrimSpace(os.Getenv("ARK_SECRET_KEY")),
		Model:       strings.TrimSpace(os.Getenv("Model")),
		BaseURL:     getEnvOrDefault("ARK_BASE_URL", "https://ark.cn-beijing.volces.com/api/v3"),
		Region:      getEnvOrDefault("ARK_REGION", "cn-beijing"),
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseBoolEnv(key string, defaultValue bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return val, nil
}

func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	if val < 0 {
		return 0, fmt.Errorf("invalid %s value %q: must not be negative", key, raw)
	}
	return val, nil
}

func parseOptionalFloatEnv(key string) (*float64, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

func parseOptionalIntEnv(key string) (*int, error) {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return nil, nil
	}

	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	val, err := strconv.Atoi(value)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q: %w", key, value, err)
	}
	return &val, nil
}

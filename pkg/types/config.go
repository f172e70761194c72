package types

import "time"

// AppConfig is the root configuration for the breeze gateway and worker
type AppConfig struct {
	DebugMode  bool `key:"debugMode" json:"debug_mode"`
	PrettyLogs bool `key:"prettyLogs" json:"pretty_logs"`

	Database DatabaseConfig `key:"database" json:"database"`
	Gateway  GatewayConfig  `key:"gateway" json:"gateway"`
	OAuth    OAuthConfig    `key:"oauth" json:"oauth"`
	OpenAI   OpenAIConfig   `key:"openai" json:"openai"`
	Storage  StorageConfig  `key:"storage" json:"storage"`
	Sync     SyncConfig     `key:"sync" json:"sync"`
}

// ----------------------------------------------------------------------------
// Database Configuration
// ----------------------------------------------------------------------------

type DatabaseConfig struct {
	Redis    RedisConfig    `key:"redis" json:"redis"`
	Postgres PostgresConfig `key:"postgres" json:"postgres"`
}

type RedisMode string

const (
	RedisModeSingle  RedisMode = "single"
	RedisModeCluster RedisMode = "cluster"
)

type RedisConfig struct {
	Mode               RedisMode     `key:"mode" json:"mode"`
	Addrs              []string      `key:"addrs" json:"addrs"`
	Username           string        `key:"username" json:"username"`
	Password           string        `key:"password" json:"password"`
	ClientName         string        `key:"clientName" json:"client_name"`
	EnableTLS          bool          `key:"enableTLS" json:"enable_tls"`
	InsecureSkipVerify bool          `key:"insecureSkipVerify" json:"insecure_skip_verify"`
	PoolSize           int           `key:"poolSize" json:"pool_size"`
	DialTimeout        time.Duration `key:"dialTimeout" json:"dial_timeout"`
	ReadTimeout        time.Duration `key:"readTimeout" json:"read_timeout"`
	WriteTimeout       time.Duration `key:"writeTimeout" json:"write_timeout"`
	MaxRetries         int           `key:"maxRetries" json:"max_retries"`
}

type PostgresConfig struct {
	Host            string        `key:"host" json:"host"`
	Port            int           `key:"port" json:"port"`
	User            string        `key:"user" json:"user"`
	Password        string        `key:"password" json:"password"`
	Database        string        `key:"database" json:"database"`
	SSLMode         string        `key:"sslMode" json:"ssl_mode"`
	MaxOpenConns    int           `key:"maxOpenConns" json:"max_open_conns"`
	MaxIdleConns    int           `key:"maxIdleConns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `key:"connMaxLifetime" json:"conn_max_lifetime"`
}

// ----------------------------------------------------------------------------
// Gateway Configuration
// ----------------------------------------------------------------------------

type GatewayConfig struct {
	HTTP            HTTPConfig    `key:"http" json:"http"`
	ShutdownTimeout time.Duration `key:"shutdownTimeout" json:"shutdown_timeout"`
	AdminToken      string        `key:"adminToken" json:"admin_token"`
}

type HTTPConfig struct {
	Host             string     `key:"host" json:"host"`
	Port             int        `key:"port" json:"port"`
	EnablePrettyLogs bool       `key:"enablePrettyLogs" json:"enable_pretty_logs"`
	CORS             CORSConfig `key:"cors" json:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `key:"allowOrigins" json:"allow_origins"`
	AllowedMethods []string `key:"allowMethods" json:"allow_methods"`
	AllowedHeaders []string `key:"allowHeaders" json:"allow_headers"`
}

// ----------------------------------------------------------------------------
// OAuth Configuration
// ----------------------------------------------------------------------------

type OAuthConfig struct {
	Google GoogleOAuthConfig `key:"google" json:"google"`

	// StateSecret signs the OAuth state parameter (HMAC-SHA256)
	StateSecret string        `key:"stateSecret" json:"state_secret"`
	StateTTL    time.Duration `key:"stateTTL" json:"state_ttl"`
}

type GoogleOAuthConfig struct {
	ClientID     string `key:"clientId" json:"client_id"`
	ClientSecret string `key:"clientSecret" json:"client_secret"`
	RedirectURL  string `key:"redirectUrl" json:"redirect_url"` // e.g., http://localhost:1994/api/v1/oauth/gmail/callback
}

func (c GoogleOAuthConfig) IsConfigured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

// ----------------------------------------------------------------------------
// OpenAI Configuration (filter classifier)
// ----------------------------------------------------------------------------

type OpenAIConfig struct {
	APIKey  string `key:"apiKey" json:"api_key"`
	Model   string `key:"model" json:"model"`
	BaseURL string `key:"baseUrl" json:"base_url"`
}

func (c OpenAIConfig) IsConfigured() bool {
	return c.APIKey != ""
}

// ----------------------------------------------------------------------------
// Storage Configuration (attachment blobs)
// ----------------------------------------------------------------------------

type StorageConfig struct {
	S3 S3Config `key:"s3" json:"s3"`
}

type S3Config struct {
	Bucket         string `key:"bucket" json:"bucket"`
	Region         string `key:"region" json:"region"`
	Endpoint       string `key:"endpoint" json:"endpoint"`
	AccessKey      string `key:"accessKey" json:"access_key"`
	SecretKey      string `key:"secretKey" json:"secret_key"`
	ForcePathStyle bool   `key:"forcePathStyle" json:"force_path_style"`
}

func (c S3Config) IsConfigured() bool {
	return c.Bucket != "" && c.Region != ""
}

// ----------------------------------------------------------------------------
// Sync Configuration
// ----------------------------------------------------------------------------

type SyncConfig struct {
	// MessageWindowMonths bounds the initial message import (newer_than)
	MessageWindowMonths int `key:"messageWindowMonths" json:"message_window_months"`
	// MaxMessages caps the number of message IDs listed during directory sync
	MaxMessages int `key:"maxMessages" json:"max_messages"`
	// ChunkSize is the number of messages fetched concurrently per batch
	ChunkSize int `key:"chunkSize" json:"chunk_size"`
	// ChunkDelay is the pause between batches (upstream rate-limit mitigation)
	ChunkDelay time.Duration `key:"chunkDelay" json:"chunk_delay"`
	// MaxContacts caps the People API connection listing
	MaxContacts int `key:"maxContacts" json:"max_contacts"`
}

// WithDefaults fills unset sync knobs with the standard directory sync shape.
func (c SyncConfig) WithDefaults() SyncConfig {
	if c.MessageWindowMonths == 0 {
		c.MessageWindowMonths = 3
	}
	if c.MaxMessages == 0 {
		c.MaxMessages = 500
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = 50
	}
	if c.ChunkDelay == 0 {
		c.ChunkDelay = 100 * time.Millisecond
	}
	if c.MaxContacts == 0 {
		c.MaxContacts = 1000
	}
	return c
}

package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App          AppConfig         `mapstructure:"app"`
	HTTP         HTTPConfig        `mapstructure:"http"`
	Camunda      CamundaConfig     `mapstructure:"camunda"`
	Database     DatabaseConfig    `mapstructure:"database"`
	Integrations IntegrationConfig `mapstructure:"integrations"`
	Messaging    MessagingConfig   `mapstructure:"messaging"`
	Events       EventBusConfig    `mapstructure:"events"`
	Logging      LoggingConfig     `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	SeedFile    string `mapstructure:"seed_file"` // optional fixture file for empty stores
}

type HTTPConfig struct {
	Address     string `mapstructure:"address"`
	MetricsPath string `mapstructure:"metrics_path"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string.
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	LogIndex  string   `mapstructure:"log_index"`
}

// IntegrationConfig holds settings for the channel providers.
type IntegrationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
		SES    struct {
			Enabled   bool   `mapstructure:"enabled"`
			FromEmail string `mapstructure:"from_email"`
		} `mapstructure:"ses"`
		SNS struct {
			Enabled            bool   `mapstructure:"enabled"`
			DefaultSMSSenderID string `mapstructure:"default_sms_sender_id"`
		} `mapstructure:"sns"`
	} `mapstructure:"aws"`

	WhatsApp struct {
		Enabled     bool   `mapstructure:"enabled"`
		APIBaseURL  string `mapstructure:"api_base_url"`
		AccessToken string `mapstructure:"access_token"`
		PhoneID     string `mapstructure:"phone_id"`
		Timeout     int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"whatsapp"`

	Teams struct {
		Enabled    bool   `mapstructure:"enabled"`
		WebhookURL string `mapstructure:"webhook_url"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
	} `mapstructure:"teams"`
}

// MessagingConfig holds the routing/escalation engine settings.
type MessagingConfig struct {
	SupportEmail string `mapstructure:"support_email"`
	SupportPhone string `mapstructure:"support_phone"`
	PortalURL    string `mapstructure:"portal_url"`

	Escalation struct {
		SweepInterval int `mapstructure:"sweep_interval"` // seconds
		LockTTL       int `mapstructure:"lock_ttl"`       // seconds
		BatchSize     int `mapstructure:"batch_size"`
		HorizonDays   int `mapstructure:"horizon_days"` // oldest log still worth escalating
	} `mapstructure:"escalation"`
}

// EventBusConfig holds the RabbitMQ settings for lifecycle event publishing.
type EventBusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Redis     RedisConfig
	Broker    BrokerConfig
	Artifacts ArtifactsConfig
	Relay     RelayConfig
	Admin     AdminConfig
}

type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type LogConfig struct {
	Level string
}

// RedisConfig enables the shared idempotency store. An empty URL keeps
// idempotency keys in process memory.
type RedisConfig struct {
	URL            string
	IdempotencyTTL time.Duration
}

type BrokerConfig struct {
	Kind     string
	RabbitMQ RabbitMQConfig
	Kafka    KafkaConfig
}

type RabbitMQConfig struct {
	Host       string
	Port       int
	User       string
	Password   string
	VHost      string
	Exchange   string
	RoutingKey string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type ArtifactsConfig struct {
	Dir string
}

type RelayConfig struct {
	Interval  time.Duration
	BatchSize int
}

// AdminConfig holds the shift closure credential. TokenHash is a bcrypt hash;
// Token is accepted for local setups and hashed at startup.
type AdminConfig struct {
	Token     string
	TokenHash string
}

const (
	BrokerLog      = "log"
	BrokerRabbitMQ = "rabbitmq"
	BrokerKafka    = "kafka"
)

// Load reads an optional YAML file, then .env, then COMANDA_* environment
// variables. Later sources win.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("COMANDA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.user", "comanda")
	v.SetDefault("database.password", "secret")
	v.SetDefault("database.name", "comanda")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.auto_migrate", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("redis.url", "")
	v.SetDefault("redis.idempotency_ttl", "10m")
	v.SetDefault("broker.kind", BrokerLog)
	v.SetDefault("broker.rabbitmq.host", "localhost")
	v.SetDefault("broker.rabbitmq.port", 5672)
	v.SetDefault("broker.rabbitmq.user", "guest")
	v.SetDefault("broker.rabbitmq.password", "guest")
	v.SetDefault("broker.rabbitmq.vhost", "/")
	v.SetDefault("broker.rabbitmq.exchange", "settlements")
	v.SetDefault("broker.rabbitmq.routing_key", "settlement.closed")
	v.SetDefault("broker.kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("broker.kafka.topic", "SETTLEMENT_CLOSED_TOPIC")
	v.SetDefault("artifacts.dir", "./artifacts")
	v.SetDefault("relay.interval", "2s")
	v.SetDefault("relay.batch_size", 50)
	v.SetDefault("admin.token", "")
	v.SetDefault("admin.token_hash", "")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	durations := map[string]time.Duration{}
	for _, key := range []string{
		"server.read_timeout", "server.write_timeout", "server.shutdown_timeout",
		"database.conn_max_lifetime", "redis.idempotency_ttl", "relay.interval",
	} {
		d, err := time.ParseDuration(v.GetString(key))
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", key, err)
		}
		durations[key] = d
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("server.port"),
			ReadTimeout:     durations["server.read_timeout"],
			WriteTimeout:    durations["server.write_timeout"],
			ShutdownTimeout: durations["server.shutdown_timeout"],
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			Name:            v.GetString("database.name"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: durations["database.conn_max_lifetime"],
			AutoMigrate:     v.GetBool("database.auto_migrate"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
		Redis: RedisConfig{
			URL:            v.GetString("redis.url"),
			IdempotencyTTL: durations["redis.idempotency_ttl"],
		},
		Broker: BrokerConfig{
			Kind: strings.ToLower(v.GetString("broker.kind")),
			RabbitMQ: RabbitMQConfig{
				Host:       v.GetString("broker.rabbitmq.host"),
				Port:       v.GetInt("broker.rabbitmq.port"),
				User:       v.GetString("broker.rabbitmq.user"),
				Password:   v.GetString("broker.rabbitmq.password"),
				VHost:      v.GetString("broker.rabbitmq.vhost"),
				Exchange:   v.GetString("broker.rabbitmq.exchange"),
				RoutingKey: v.GetString("broker.rabbitmq.routing_key"),
			},
			Kafka: KafkaConfig{
				Brokers: v.GetStringSlice("broker.kafka.brokers"),
				Topic:   v.GetString("broker.kafka.topic"),
			},
		},
		Artifacts: ArtifactsConfig{
			Dir: v.GetString("artifacts.dir"),
		},
		Relay: RelayConfig{
			Interval:  durations["relay.interval"],
			BatchSize: v.GetInt("relay.batch_size"),
		},
		Admin: AdminConfig{
			Token:     v.GetString("admin.token"),
			TokenHash: v.GetString("admin.token_hash"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Broker.Kind {
	case BrokerLog, BrokerRabbitMQ, BrokerKafka:
	default:
		return fmt.Errorf("unknown broker kind %q", c.Broker.Kind)
	}
	if c.Relay.BatchSize <= 0 {
		return fmt.Errorf("relay batch size must be positive, got %d", c.Relay.BatchSize)
	}
	if c.Relay.Interval <= 0 {
		return fmt.Errorf("relay interval must be positive, got %s", c.Relay.Interval)
	}
	return nil
}

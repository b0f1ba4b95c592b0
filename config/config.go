package config

import (
	"clearpath-signals/constant"
	"errors"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/spf13/viper"
	"gorm.io/gorm"
	"strings"
	"time"
)

type Config struct {
	MinIOBucket string        `yaml:"minio_bucket"`
	App         App           `yaml:"app"`
	Database    Database      `yaml:"database"`
	DB          *gorm.DB      `yaml:"-"`
	Queue       *RabbitMQ     `yaml:"rabbitmq"`
	Storage     *minio.Client `yaml:"storage"`
	Server      Server        `yaml:"server"`
	CVService   CVService     `yaml:"cv_service"`
	JWT         JWT           `yaml:"jwt"`
	Throttle    Throttle      `yaml:"throttle"`
	Upload      Upload        `yaml:"upload"`
}

type App struct {
	Environment string `yaml:"environment"`
	Host        string `yaml:"host"`
	Protocol    string `yaml:"protocol"`
}

type Server struct {
	HttpPort string `yaml:"http_port"`
	Workers  int    `yaml:"workers"`
}

type Database struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

type RabbitMQ struct {
	Enabled      bool   `json:"enabled"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	User         string `json:"user"`
	Pass         string `json:"pass"`
	ExchangeName string `json:"exchange_name"`
	QueueName    string `json:"queue_name"`
	Kind         string `json:"kind"`
}

type CVService struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type JWT struct {
	Secret    string        `yaml:"secret"`
	ExpiresIn time.Duration `yaml:"expires_in"`
}

type Throttle struct {
	Interval time.Duration `yaml:"interval"`
	TTL      time.Duration `yaml:"ttl"`
	Capacity int           `yaml:"capacity"`
}

type Upload struct {
	MaxFileSize int64         `yaml:"max_file_size"`
	URLExpiry   time.Duration `yaml:"url_expiry"`
}

// DefaultJWTSecret is only acceptable outside production.
const DefaultJWTSecret = "clearpath-ai-secret-key-change-in-production"

var ErrDefaultSecret = errors.New("jwt.secret must be set in production")

func setDefaults() {
	viper.SetDefault("app.environment", "develop")
	viper.SetDefault("server.port", "5000")
	viper.SetDefault("server.workers", 4)
	viper.SetDefault("database.driver", "postgres")
	viper.SetDefault("minio.bucket", "simulations")
	viper.SetDefault("rabbitmq.enabled", false)
	viper.SetDefault("rabbitmq_kind", "direct")
	viper.SetDefault("rabbitmq.exchange", "simulation_exchange")
	viper.SetDefault("rabbitmq.queue", "simulation_ingest_queue")
	viper.SetDefault("cv_service.url", "http://localhost:8000")
	viper.SetDefault("cv_service.timeout", 30*time.Second)
	viper.SetDefault("jwt.secret", DefaultJWTSecret)
	viper.SetDefault("jwt.expires_in", 7*24*time.Hour)
	viper.SetDefault("throttle.interval", 3*time.Second)
	viper.SetDefault("throttle.ttl", 10*time.Minute)
	viper.SetDefault("throttle.capacity", 10000)
	viper.SetDefault("upload.max_file_size", int64(500<<20))
	viper.SetDefault("upload.url_expiry", 24*time.Hour)
}

func Load(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	setDefaults()
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	app := App{
		Environment: viper.GetString("app.environment"),
		Host:        viper.GetString("app.host"),
		Protocol:    viper.GetString("app.protocol"),
	}

	jwt := JWT{
		Secret:    viper.GetString("jwt.secret"),
		ExpiresIn: viper.GetDuration("jwt.expires_in"),
	}
	if err := checkJWT(app, jwt); err != nil {
		return nil, err
	}

	database := Database{
		Driver: viper.GetString("database.driver"),
		DSN:    viper.GetString("database.dsn"),
	}
	if database.DSN == "" {
		database.DSN = viper.GetString("postgresql_host")
	}

	db, err := OpenDatabase(database, app.Environment)
	if err != nil {
		return nil, err
	}

	rabbitmq := &RabbitMQ{
		Enabled:      viper.GetBool("rabbitmq.enabled"),
		Host:         viper.GetString("rabbitmq_host"),
		Port:         viper.GetInt("rabbitmq_port"),
		User:         viper.GetString("rabbitmq_user"),
		Pass:         viper.GetString("rabbitmq_pass"),
		Kind:         viper.GetString("rabbitmq_kind"),
		ExchangeName: viper.GetString("rabbitmq.exchange"),
		QueueName:    viper.GetString("rabbitmq.queue"),
	}

	minioClient, err := minio.New(viper.GetString("minio.url"), &minio.Options{
		Creds:  credentials.NewStaticV4(viper.GetString("minio.access_id"), viper.GetString("minio.secret_access_key"), ""),
		Secure: viper.GetBool("minio.secure"),
	})
	if err != nil {
		return nil, err
	}

	return &Config{
		MinIOBucket: viper.GetString("minio.bucket"),
		App:         app,
		Database:    database,
		Server: Server{
			HttpPort: viper.GetString("server.port"),
			Workers:  viper.GetInt("server.workers"),
		},
		CVService: CVService{
			URL:     viper.GetString("cv_service.url"),
			Timeout: viper.GetDuration("cv_service.timeout"),
		},
		JWT: jwt,
		Throttle: Throttle{
			Interval: viper.GetDuration("throttle.interval"),
			TTL:      viper.GetDuration("throttle.ttl"),
			Capacity: viper.GetInt("throttle.capacity"),
		},
		Upload: Upload{
			MaxFileSize: viper.GetInt64("upload.max_file_size"),
			URLExpiry:   viper.GetDuration("upload.url_expiry"),
		},
		DB:      db,
		Queue:   rabbitmq,
		Storage: minioClient,
	}, nil
}

func checkJWT(app App, jwt JWT) error {
	if app.Environment != constant.EnvironmentProduction.String() {
		return nil
	}
	if jwt.Secret == "" || jwt.Secret == DefaultJWTSecret {
		return ErrDefaultSecret
	}
	return nil
}

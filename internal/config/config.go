package config

import (
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	CORS     CORSConfig
	SMTP     SMTPConfig
	QR       QRConfig
	Sweeper  SweeperConfig
}

type ServerConfig struct {
	Port int
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
	// Enabled false swaps the real mailer for the console mock.
	Enabled bool
}

type QRConfig struct {
	Folder string
}

type SweeperConfig struct {
	IntervalMinutes int
	CutoffHours     int
}

// Load reads config.yaml plus environment overrides. A .env file is
// loaded first if present so local development matches deployment.
func Load() *Config {
	godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "vms")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("jwt.secret", "dev-only-secret-change-in-prod")
	v.SetDefault("jwt.ttl_hours", 12)
	v.SetDefault("cors.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 1025)
	v.SetDefault("smtp.from", "vms@example.com")
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("qr.folder", "qrcodes")
	v.SetDefault("sweeper.interval_minutes", 30)
	v.SetDefault("sweeper.cutoff_hours", 3)

	v.SetEnvPrefix("VMS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		log.Printf("config.yaml not found, using defaults and environment: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port: v.GetInt("server.port"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("database.host"),
			Port:     v.GetInt("database.port"),
			User:     v.GetString("database.user"),
			Password: v.GetString("database.password"),
			Name:     v.GetString("database.name"),
			SSLMode:  v.GetString("database.sslmode"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("jwt.secret"),
			TTL:    time.Duration(v.GetInt("jwt.ttl_hours")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: v.GetStringSlice("cors.allowed_origins"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			From:     v.GetString("smtp.from"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			Enabled:  v.GetBool("smtp.enabled"),
		},
		QR: QRConfig{
			Folder: v.GetString("qr.folder"),
		},
		Sweeper: SweeperConfig{
			IntervalMinutes: v.GetInt("sweeper.interval_minutes"),
			CutoffHours:     v.GetInt("sweeper.cutoff_hours"),
		},
	}
}

package config

import (
	"flag"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	RunAddress    string
	DatabasePath  string
	JWTSecret     string
	AdminLogin    string
	AdminPassword string

	// Form provider.
	FormsAPIAddress string
	FormsToken      string

	// OAuth mail transport (preferred when both token and sender are set).
	MailAPIAddress    string
	OAuthTokenURL     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthToken        string
	OAuthSender       string
	OAuthSenderName   string

	// SMTP fallback transport.
	SMTPHost       string
	SMTPPort       int
	SMTPUsername   string
	SMTPPassword   string
	SMTPSender     string
	SMTPSenderName string
}

func New() *Config {
	// Local deployments keep credentials in a .env next to the binary.
	_ = godotenv.Load()

	cfg := &Config{}

	flag.StringVar(&cfg.RunAddress, "a", "localhost:8080", "server address and port")
	flag.StringVar(&cfg.DatabasePath, "d", "potracker.db", "sqlite database path")
	flag.StringVar(&cfg.JWTSecret, "s", "super-secret-jwt-key", "jwt signing key")
	flag.StringVar(&cfg.FormsAPIAddress, "f", "https://forms.googleapis.com", "form provider address")
	flag.StringVar(&cfg.MailAPIAddress, "m", "https://gmail.googleapis.com", "mail provider address")
	flag.Parse()

	cfg.RunAddress = getEnv("RUN_ADDRESS", cfg.RunAddress)
	cfg.DatabasePath = getEnv("DATABASE_PATH", cfg.DatabasePath)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.AdminLogin = getEnv("ADMIN_LOGIN", "admin")
	cfg.AdminPassword = getEnv("ADMIN_PASSWORD", "admin")

	cfg.FormsAPIAddress = getEnv("FORMS_API_ADDRESS", cfg.FormsAPIAddress)
	cfg.FormsToken = getEnv("FORMS_TOKEN", "")

	cfg.MailAPIAddress = getEnv("MAIL_API_ADDRESS", cfg.MailAPIAddress)
	cfg.OAuthTokenURL = getEnv("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token")
	cfg.OAuthClientID = getEnv("OAUTH_CLIENT_ID", "")
	cfg.OAuthClientSecret = getEnv("OAUTH_CLIENT_SECRET", "")
	cfg.OAuthToken = getEnv("OAUTH_TOKEN", "")
	cfg.OAuthSender = getEnv("OAUTH_SENDER", "")
	cfg.OAuthSenderName = getEnv("OAUTH_SENDER_NAME", "POTracker")

	cfg.SMTPHost = getEnv("SMTP_HOST", "")
	cfg.SMTPPort = getEnvInt("SMTP_PORT", 587)
	cfg.SMTPUsername = getEnv("SMTP_USERNAME", "")
	cfg.SMTPPassword = getEnv("SMTP_PASSWORD", "")
	cfg.SMTPSender = getEnv("SMTP_SENDER", cfg.SMTPUsername)
	cfg.SMTPSenderName = getEnv("SMTP_SENDER_NAME", "POTracker")

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

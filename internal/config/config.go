package config // package config loads application configuration from environment variables

import (
	"log"
	"os"
	"strconv"
)

// Config holds all runtime configuration values. Each field corresponds to
// an environment variable. The signing secret and TTLs feed the token
// codec; they are read once at startup and immutable afterwards.
type Config struct {
	Env  string // application environment (e.g. "dev", "prod")
	Port string // HTTP port to listen on

	DBUser string // database username
	DBPass string // database password (optional)
	DBHost string // database host address
	DBPort string // database port number
	DBName string // database name

	JWTSecret     string // symmetric secret used to sign JWTs
	AccessTTLSec  int    // access token time-to-live in seconds
	RefreshTTLSec int    // refresh token time-to-live in seconds
	CookieSecure  bool   // Secure + SameSite=None cookies when true (HTTPS deployments)
	FrontendURL   string // allowed front-end origin the OAuth callback redirects to

	GoogleClientID     string // OAuth2 client id for Google login
	GoogleClientSecret string // OAuth2 client secret for Google login
	GoogleRedirectURL  string // registered callback URL for Google login

	SMTPHost string // SMTP relay host
	SMTPPort int    // SMTP relay port
	SMTPUser string // SMTP username (empty disables auth)
	SMTPPass string // SMTP password
	MailFrom string // From address on outbound mail
}

// Load reads configuration from environment variables. Required variables
// are enforced by must() and missing values cause the program to exit with
// a fatal log message. SMTP settings are optional: without a host the mail
// consumer logs instead of sending.
func Load() Config {
	return Config{
		Env:  must("APP_ENV"),
		Port: must("APP_PORT"),

		DBUser: must("DB_USER"),
		DBPass: os.Getenv("DB_PASS"),
		DBHost: must("DB_HOST"),
		DBPort: must("DB_PORT"),
		DBName: must("DB_NAME"),

		JWTSecret:     must("JWT_SECRET"),
		AccessTTLSec:  mustInt("ACCESS_TOKEN_TTL_SEC"),
		RefreshTTLSec: mustInt("REFRESH_TOKEN_TTL_SEC"),
		CookieSecure:  envBool("COOKIE_SECURE", false),
		FrontendURL:   must("FRONTEND_URL"),

		GoogleClientID:     must("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: must("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  must("GOOGLE_REDIRECT_URL"),

		SMTPHost: os.Getenv("SMTP_HOST"),
		SMTPPort: atoi(getenv("SMTP_PORT", "587")),
		SMTPUser: os.Getenv("SMTP_USER"),
		SMTPPass: os.Getenv("SMTP_PASS"),
		MailFrom: getenv("MAIL_FROM", "no-reply@benefitmap.example"),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

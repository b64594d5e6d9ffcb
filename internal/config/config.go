package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	StorageDriver           string
	DatabaseURL             string
	DatabaseAutoMigrate     bool
	JWTSecret               string
	JWTTTLMinutes           int
	PasswordResetTTLMinutes int
	PasswordRequireStrong   bool
	DefaultRole             string
	UsersAdminRole          string
	AllowOrigins            []string
	FrontendBaseURL         string

	MailDriver     string
	SMTPHost       string
	SMTPPort       string
	SMTPUsername   string
	SMTPPassword   string
	SMTPFrom       string
	SMTPUseTLS     bool
	ArchiveBackend string
	ArchiveBucket  string

	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool

	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	LogLevel        string
	LogDev          bool
	LogFile         string
	LogstashTCPAddr string
}

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	MailDriverSMTP    = "smtp"
	MailDriverArchive = "archive"
	MailDriverLog     = "log"

	ArchiveBackendMinIO = "minio"
	ArchiveBackendS3    = "s3"
)

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	storage := strings.ToLower(getenv("STORAGE_DRIVER", StorageDriverPostgres))
	databaseURL := getenv("DATABASE_URL", "")
	if storage == StorageDriverPostgres {
		databaseURL = must("DATABASE_URL")
	}

	return Config{
		Port:                    getenv("PORT", "8080"),
		StorageDriver:           storage,
		DatabaseURL:             databaseURL,
		DatabaseAutoMigrate:     getbool("DATABASE_AUTO_MIGRATE", true),
		JWTSecret:               must("JWT_SECRET"),
		JWTTTLMinutes:           getint("JWT_TTL_MINUTES", 60),
		PasswordResetTTLMinutes: getint("PASSWORD_RESET_TTL_MINUTES", 720),
		PasswordRequireStrong:   getbool("PASSWORD_REQUIRE_STRONG", false),
		DefaultRole:             getenv("DEFAULT_ROLE", "member"),
		UsersAdminRole:          getenv("USERS_ADMIN_ROLE", ""),
		AllowOrigins:            splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		FrontendBaseURL:         getenv("FRONTEND_BASE_URL", ""),

		MailDriver:     strings.ToLower(getenv("MAIL_DRIVER", MailDriverLog)),
		SMTPHost:       getenv("SMTP_HOST", ""),
		SMTPPort:       getenv("SMTP_PORT", ""),
		SMTPUsername:   getenv("SMTP_USERNAME", ""),
		SMTPPassword:   getenv("SMTP_PASSWORD", ""),
		SMTPFrom:       getenv("SMTP_FROM", ""),
		SMTPUseTLS:     getbool("SMTP_USE_TLS", false),
		ArchiveBackend: strings.ToLower(getenv("ARCHIVE_BACKEND", ArchiveBackendMinIO)),
		ArchiveBucket:  getenv("ARCHIVE_BUCKET", "mail-archive"),

		MinIOEndpoint:  getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:    getbool("MINIO_USE_SSL", false),

		S3Region:    getenv("S3_REGION", "us-east-1"),
		S3Endpoint:  getenv("S3_ENDPOINT", ""),
		S3AccessKey: getenv("S3_ACCESS_KEY", ""),
		S3SecretKey: getenv("S3_SECRET_KEY", ""),

		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogDev:          getbool("LOG_DEV", false),
		LogFile:         getenv("LOG_FILE", ""),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// getint falls back to d for unparsable or non-positive values.
func getint(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v > 0 {
		return v
	}
	return d
}

func getbool(k string, d bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return d
	}
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

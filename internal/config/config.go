package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	envPort                  = "PORT"
	envServerReadTimeout     = "SERVER_READ_TIMEOUT"
	envServerWriteTimeout    = "SERVER_WRITE_TIMEOUT"
	envServerShutdownTimeout = "SERVER_SHUTDOWN_TIMEOUT"
	envAppEnv                = "APP_ENV"
	envEnablePprof           = "ENABLE_PPROF"
	envDBHost                = "DB_HOST"
	envDBPort                = "DB_PORT"
	envDBName                = "DB_NAME"
	envDBUser                = "DB_USER"
	envDBPassword            = "DB_PASSWORD"
	envDBSSLMode             = "DB_SSL_MODE"
	envDBMaxConns            = "DB_MAX_CONNS"
	envDBMinConns            = "DB_MIN_CONNS"
	envJWTSecret             = "JWT_SECRET"
	envJWTExpiry             = "JWT_EXPIRY_MINUTES"
	envStorageBackend        = "STORAGE_BACKEND"
	envStorageRoot           = "STORAGE_ROOT"
	envS3Bucket              = "S3_BUCKET"
	envS3Prefix              = "S3_PREFIX"
	envAWSRegion             = "REGION"
	envAWSAccessKeyID        = "AWS_ACCESS_KEY_ID"
	envAWSSecretAccessKey    = "AWS_SECRET_ACCESS_KEY"
	envMaxUploadSize         = "MAX_UPLOAD_SIZE"
	envAuditRetentionDays    = "AUDIT_RETENTION_DAYS"
	envPurgeRetentionDays    = "PURGE_RETENTION_DAYS"
	envPurgeSchedule         = "PURGE_SCHEDULE"
	envAuditCleanupSchedule  = "AUDIT_CLEANUP_SCHEDULE"
	envUserCacheSize         = "USER_CACHE_SIZE"
	envUserCacheTTL          = "USER_CACHE_TTL"
	envSeedAdminEmail        = "SEED_ADMIN_EMAIL"
	envSeedAdminPassword     = "SEED_ADMIN_PASSWORD"
)

const (
	StorageBackendDisk = "disk"
	StorageBackendS3   = "s3"

	EnvProduction = "production"
)

const (
	defaultServerPort           = "8080"
	defaultServerReadTimeout    = 30 * time.Second
	defaultServerWriteTimeout   = 60 * time.Second
	defaultServerShutdown       = 10 * time.Second
	defaultAppEnv               = "development"
	defaultDBHost               = "localhost"
	defaultDBPort               = 5432
	defaultDBName               = "filehub"
	defaultDBUser               = "filehub_app"
	defaultDBSSLMode            = "disable"
	defaultDBMaxConns           = 25
	defaultDBMinConns           = 5
	defaultJWTExpiry            = 60 * time.Minute
	defaultStorageBackend       = StorageBackendDisk
	defaultStorageRoot          = "./data"
	defaultMaxUploadSize        = int64(512 * 1024 * 1024)
	defaultAuditRetentionDays   = 90
	defaultPurgeRetentionDays   = 30
	defaultPurgeSchedule        = "30 3 * * *"
	defaultAuditCleanupSchedule = "0 4 * * 0"
	defaultUserCacheSize        = 1024
	defaultUserCacheTTL         = 2 * time.Minute
	defaultSeedAdminEmail       = "admin@outcom.com"
	minJWTSecretLength          = 32
	minUniqueCharsInSecret      = 16
	minRepeatedCharThreshold    = 4
	maxRepeatedChars            = 2

	errPortRequiredFmt         = "PORT must be set"
	errDBPasswordRequiredFmt   = "DB_PASSWORD must be set"
	errJWTSecretRequiredFmt    = "JWT_SECRET must be set"
	errJWTSecretMinLengthFmt   = "JWT_SECRET must be at least %d characters"
	errJWTSecretLowEntropyFmt  = "JWT_SECRET has insufficient entropy (appears non-random). Use a cryptographically secure random string."
	errStorageBackendFmt       = "STORAGE_BACKEND must be one of %q or %q, got %q"
	errStorageRootRequiredFmt  = "STORAGE_ROOT must be set for the disk backend"
	errS3BucketRequiredFmt     = "S3_BUCKET and REGION must be set for the s3 backend"
	errRetentionPositiveFmt    = "%s must be greater than zero"
	errInvalidConfigurationFmt = "invalid configuration: %w"
)

type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Storage     StorageConfig
	AWS         AWSConfig
	Maintenance MaintenanceConfig
	Seed        SeedConfig
	App         AppConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Host     string
	Port     int
	Database string
	User     string
	Password string
	SSLMode  string
	MaxConns int
	MinConns int
}

type JWTConfig struct {
	Secret         string
	ExpiryDuration time.Duration
}

type StorageConfig struct {
	Backend  string
	Root     string
	S3Bucket string
	S3Prefix string
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type MaintenanceConfig struct {
	AuditRetentionDays   int
	PurgeRetentionDays   int
	PurgeSchedule        string
	AuditCleanupSchedule string
}

type SeedConfig struct {
	AdminEmail    string
	AdminPassword string
}

type AppConfig struct {
	Env           string
	EnablePprof   bool
	MaxUploadSize int64
	UserCacheSize int
	UserCacheTTL  time.Duration
}

func (a AppConfig) IsProduction() bool {
	return a.Env == EnvProduction
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv(envPort, defaultServerPort),
			ReadTimeout:     getDurationEnv(envServerReadTimeout, defaultServerReadTimeout),
			WriteTimeout:    getDurationEnv(envServerWriteTimeout, defaultServerWriteTimeout),
			ShutdownTimeout: getDurationEnv(envServerShutdownTimeout, defaultServerShutdown),
		},
		Database: DatabaseConfig{
			Host:     getEnv(envDBHost, defaultDBHost),
			Port:     getIntEnv(envDBPort, defaultDBPort),
			Database: getEnv(envDBName, defaultDBName),
			User:     getEnv(envDBUser, defaultDBUser),
			Password: os.Getenv(envDBPassword),
			SSLMode:  getEnv(envDBSSLMode, defaultDBSSLMode),
			MaxConns: getIntEnv(envDBMaxConns, defaultDBMaxConns),
			MinConns: getIntEnv(envDBMinConns, defaultDBMinConns),
		},
		JWT: JWTConfig{
			Secret:         os.Getenv(envJWTSecret),
			ExpiryDuration: getDurationEnv(envJWTExpiry, defaultJWTExpiry),
		},
		Storage: StorageConfig{
			Backend:  strings.ToLower(getEnv(envStorageBackend, defaultStorageBackend)),
			Root:     getEnv(envStorageRoot, defaultStorageRoot),
			S3Bucket: os.Getenv(envS3Bucket),
			S3Prefix: strings.Trim(os.Getenv(envS3Prefix), "/"),
		},
		AWS: AWSConfig{
			Region:          os.Getenv(envAWSRegion),
			AccessKeyID:     os.Getenv(envAWSAccessKeyID),
			SecretAccessKey: os.Getenv(envAWSSecretAccessKey),
		},
		Maintenance: MaintenanceConfig{
			AuditRetentionDays:   getIntEnv(envAuditRetentionDays, defaultAuditRetentionDays),
			PurgeRetentionDays:   getIntEnv(envPurgeRetentionDays, defaultPurgeRetentionDays),
			PurgeSchedule:        getEnv(envPurgeSchedule, defaultPurgeSchedule),
			AuditCleanupSchedule: getEnv(envAuditCleanupSchedule, defaultAuditCleanupSchedule),
		},
		Seed: SeedConfig{
			AdminEmail:    getEnv(envSeedAdminEmail, defaultSeedAdminEmail),
			AdminPassword: os.Getenv(envSeedAdminPassword),
		},
		App: AppConfig{
			Env:           getEnv(envAppEnv, defaultAppEnv),
			EnablePprof:   getBoolEnv(envEnablePprof, false),
			MaxUploadSize: getInt64Env(envMaxUploadSize, defaultMaxUploadSize),
			UserCacheSize: getIntEnv(envUserCacheSize, defaultUserCacheSize),
			UserCacheTTL:  getDurationEnv(envUserCacheTTL, defaultUserCacheTTL),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf(errInvalidConfigurationFmt, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf(errPortRequiredFmt)
	}

	if c.Database.Password == "" {
		return fmt.Errorf(errDBPasswordRequiredFmt)
	}

	if c.JWT.Secret == "" {
		return fmt.Errorf(errJWTSecretRequiredFmt)
	}

	if len(c.JWT.Secret) < minJWTSecretLength {
		return fmt.Errorf(errJWTSecretMinLengthFmt, minJWTSecretLength)
	}

	if !hasMinimumEntropy(c.JWT.Secret) {
		return fmt.Errorf(errJWTSecretLowEntropyFmt)
	}

	switch c.Storage.Backend {
	case StorageBackendDisk:
		if c.Storage.Root == "" {
			return fmt.Errorf(errStorageRootRequiredFmt)
		}
	case StorageBackendS3:
		if c.Storage.S3Bucket == "" || c.AWS.Region == "" {
			return fmt.Errorf(errS3BucketRequiredFmt)
		}
	default:
		return fmt.Errorf(errStorageBackendFmt, StorageBackendDisk, StorageBackendS3, c.Storage.Backend)
	}

	if c.Maintenance.AuditRetentionDays <= 0 {
		return fmt.Errorf(errRetentionPositiveFmt, envAuditRetentionDays)
	}

	if c.Maintenance.PurgeRetentionDays <= 0 {
		return fmt.Errorf(errRetentionPositiveFmt, envPurgeRetentionDays)
	}

	return nil
}

func hasMinimumEntropy(secret string) bool {
	if len(secret) < minJWTSecretLength {
		return false
	}

	charCounts := make(map[rune]int)
	for _, char := range secret {
		charCounts[char]++
	}

	if len(charCounts) < minUniqueCharsInSecret {
		return false
	}

	repeatedChars := 0
	for _, count := range charCounts {
		if count > len(secret)/minRepeatedCharThreshold {
			repeatedChars++
		}
	}

	return repeatedChars <= maxRepeatedChars
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// MigrationURL is the pgx5:// form golang-migrate expects.
func (c *DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf(
		"pgx5://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
		warnInvalid(key, value)
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
		warnInvalid(key, value)
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		warnInvalid(key, value)
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		if minutes, err := strconv.Atoi(value); err == nil {
			return time.Duration(minutes) * time.Minute
		}
		warnInvalid(key, value)
	}
	return defaultValue
}

// Config is loaded before the logger exists, so malformed values go straight to stderr.
func warnInvalid(key, value string) {
	fmt.Fprintln(os.Stderr, messages.invalidEnvValue(key, value))
}

package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Staff code sequence strategies.
const (
	SequenceModeCounter = "counter"
	SequenceModeCount   = "count"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Staff    StaffConfig
	Workload WorkloadConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// StaffConfig governs staff code generation and record creation retries.
type StaffConfig struct {
	CodePrefix          string
	SequenceMode        string
	CodeAttempts        int
	CodeRetryDelay      time.Duration
	CreateAttempts      int
	CreateBackoffBase   time.Duration
	CreateBackoffJitter time.Duration
}

// WorkloadConfig holds assignment ceilings, analytics caching and the specialization table override.
type WorkloadConfig struct {
	SubjectWarnThreshold int
	SubjectHardLimit     int
	BatchWarnThreshold   int
	CacheTTL             time.Duration
	SpecializationMap    map[string][]string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	mode := strings.ToLower(strings.TrimSpace(v.GetString("STAFF_CODE_SEQUENCE_MODE")))
	if mode != SequenceModeCount {
		mode = SequenceModeCounter
	}
	cfg.Staff = StaffConfig{
		CodePrefix:          strings.ToUpper(strings.TrimSpace(v.GetString("STAFF_CODE_PREFIX"))),
		SequenceMode:        mode,
		CodeAttempts:        v.GetInt("STAFF_CODE_ATTEMPTS"),
		CodeRetryDelay:      parseDuration(v.GetString("STAFF_CODE_RETRY_DELAY"), 10*time.Millisecond),
		CreateAttempts:      v.GetInt("STAFF_CREATE_ATTEMPTS"),
		CreateBackoffBase:   parseDuration(v.GetString("STAFF_CREATE_BACKOFF_BASE"), 20*time.Millisecond),
		CreateBackoffJitter: parseDuration(v.GetString("STAFF_CREATE_BACKOFF_JITTER"), 30*time.Millisecond),
	}

	cfg.Workload = WorkloadConfig{
		SubjectWarnThreshold: v.GetInt("WORKLOAD_SUBJECT_WARN"),
		SubjectHardLimit:     v.GetInt("WORKLOAD_SUBJECT_LIMIT"),
		BatchWarnThreshold:   v.GetInt("WORKLOAD_BATCH_WARN"),
		CacheTTL:             parseDuration(v.GetString("WORKLOAD_CACHE_TTL"), 5*time.Minute),
		SpecializationMap:    parseKeywordMap(v.GetString("STAFF_SPECIALIZATION_MAP")),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "school_staff")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("STAFF_CODE_PREFIX", "SCH")
	v.SetDefault("STAFF_CODE_SEQUENCE_MODE", SequenceModeCounter)
	v.SetDefault("STAFF_CODE_ATTEMPTS", 5)
	v.SetDefault("STAFF_CODE_RETRY_DELAY", "10ms")
	v.SetDefault("STAFF_CREATE_ATTEMPTS", 10)
	v.SetDefault("STAFF_CREATE_BACKOFF_BASE", "20ms")
	v.SetDefault("STAFF_CREATE_BACKOFF_JITTER", "30ms")

	v.SetDefault("WORKLOAD_SUBJECT_WARN", 6)
	v.SetDefault("WORKLOAD_SUBJECT_LIMIT", 8)
	v.SetDefault("WORKLOAD_BATCH_WARN", 6)
	v.SetDefault("WORKLOAD_CACHE_TTL", "5m")
	v.SetDefault("STAFF_SPECIALIZATION_MAP", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// parseKeywordMap reads "subject=kw1|kw2;other=kw3" into a lower-cased keyword table.
func parseKeywordMap(raw string) map[string][]string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	result := make(map[string][]string)
	for _, entry := range strings.Split(raw, ";") {
		key, values, ok := strings.Cut(entry, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		for _, kw := range strings.Split(values, "|") {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw != "" {
				result[key] = append(result[key], kw)
			}
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

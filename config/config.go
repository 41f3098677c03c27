package config

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// UserAccount is one allowed identity. PasswordHash is a bcrypt hash; an empty
// hash disables password sign-in for that user.
type UserAccount struct {
	Name         string
	PasswordHash string
}

// AppConfig holds environment driven configuration values.
// Secrets have no defaults and must come from config.json, .env or the environment.
type AppConfig struct {
	AppPort            string
	APISecret          string
	JWTSecret          string
	JWTTTLHours        int
	RateLimitPerMinute int
	AllowedOrigins     []string
	// Failed logins per IP per hour before a temporary ban
	LoginMaxFailures int
	LoginBanMinutes  int
	// Gin framework configuration
	GinMode string
	GinPath string
	// Database
	DBDriver       string
	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	// Journal rules
	Users         []UserAccount
	PromptCount   int
	NotesPerDay   int
	RevealDateKey string
	TimeZone      string
	// Redis for caching and token blacklist
	RedisEnabled  bool
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Attachment uploads
	UploadDir                  string
	UploadMaxMB                int
	UploadTTLMinutes           int
	UploadCleanIntervalMinutes int
}

// databaseURLKeys lists the environment variables probed for a connection
// string, first match wins.
var databaseURLKeys = []string{
	"DATABASE_URL",
	"POSTGRES_URL",
	"POSTGRES_PRISMA_URL",
	"DATABASE_URL_UNPOOLED",
	"POSTGRES_URL_NON_POOLING",
	"NEON_DATABASE_URL",
	"PG_CONNECTION_STRING",
}

// DatabaseURLHint is returned to clients when no connection string is configured.
const DatabaseURLHint = "Set one of: DATABASE_URL, POSTGRES_URL, POSTGRES_URL_NON_POOLING, POSTGRES_PRISMA_URL, DATABASE_URL_UNPOOLED, NEON_DATABASE_URL, or PG_CONNECTION_STRING (then restart)."

var cfg AppConfig
var loaded bool

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: .env (never overrides the process env) -> config/config.json -> defaults -> env overrides
	if err := LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	if err := loadJSONConfig(filepath.Join("config", "config.json"), &cfg); err != nil {
		log.Printf("invalid config/config.json, using defaults: %v", err)
		cfg = Default()
	}
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = randomSecret()
		log.Println("JWT_SECRET not set; using an ephemeral secret, sessions end on restart")
	}
	if len(cfg.Users) != 2 {
		log.Printf("roster has %d users (%s); prompts are exchanged between consecutive roster entries",
			len(cfg.Users), strings.Join(cfg.UserNames(), ", "))
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Default returns a configuration with every default applied and nothing read
// from disk or the environment.
func Default() AppConfig {
	var c AppConfig
	applyDefaults(&c)
	return c
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

// Location returns the time zone day-keys are computed in.
func (c AppConfig) Location() *time.Location {
	if c.TimeZone == "" || strings.EqualFold(c.TimeZone, "local") {
		return time.Local
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return time.Local
	}
	return loc
}

// UserNames lists the roster in configured order.
func (c AppConfig) UserNames() []string {
	names := make([]string, 0, len(c.Users))
	for _, u := range c.Users {
		names = append(names, u.Name)
	}
	return names
}

// FindUser looks up a roster entry by exact name.
func (c AppConfig) FindUser(name string) (UserAccount, bool) {
	for _, u := range c.Users {
		if u.Name == name {
			return u, true
		}
	}
	return UserAccount{}, false
}

// SanitizeUser trims name and returns it when it is on the roster, "" otherwise.
func (c AppConfig) SanitizeUser(name string) string {
	trimmed := strings.TrimSpace(name)
	if _, ok := c.FindUser(trimmed); !ok {
		return ""
	}
	return trimmed
}

// OtherUser returns the partner whose prompts name answers: the next roster
// entry, wrapping around. A roster without a second entry has no partner.
func (c AppConfig) OtherUser(name string) string {
	for i, u := range c.Users {
		if u.Name == name {
			if other := c.Users[(i+1)%len(c.Users)].Name; other != name {
				return other
			}
			return ""
		}
	}
	return ""
}

// DatabaseConfigured reports whether a connection string was resolved.
func (c AppConfig) DatabaseConfigured() bool {
	return c.DatabaseURL != ""
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}
	applyJSONConfig(raw, out)
	return nil
}

func applyJSONConfig(raw map[string]any, out *AppConfig) {
	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.APISecret = getString(app, "APISecret")
		out.JWTSecret = getString(app, "JWTSecret")
		out.JWTTTLHours = getInt(app, "JWTTTLHours")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.LoginMaxFailures = getInt(app, "LoginMaxFailures")
		out.LoginBanMinutes = getInt(app, "LoginBanMinutes")
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		out.GinMode = getString(g, "Mode")
		out.GinPath = getString(g, "LogPath")
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DBDriver = getString(dbs, "Driver")
		out.DatabaseURL = getString(dbs, "URL")
		out.DBMaxOpenConns = getInt(dbs, "MaxOpenConns")
		out.DBMaxIdleConns = getInt(dbs, "MaxIdleConns")
	}

	if jn, ok := raw["journal"].(map[string]any); ok {
		out.PromptCount = getInt(jn, "PromptCount")
		out.NotesPerDay = getInt(jn, "NotesPerDay")
		out.RevealDateKey = getString(jn, "RevealDateKey")
		out.TimeZone = getString(jn, "TimeZone")
		if users, ok := jn["Users"].([]any); ok {
			out.Users = out.Users[:0]
			for _, it := range users {
				if m, ok := it.(map[string]any); ok {
					if name := strings.TrimSpace(getString(m, "Name")); name != "" {
						out.Users = append(out.Users, UserAccount{Name: name, PasswordHash: getString(m, "PasswordHash")})
					}
				}
			}
		}
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisEnabled = getBool(rds, "Enabled")
		out.RedisHost = getString(rds, "Host")
		out.RedisPort = getInt(rds, "Port")
		out.RedisDB = getInt(rds, "DB")
		out.RedisPassword = getString(rds, "Password")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}

	if up, ok := raw["uploads"].(map[string]any); ok {
		out.UploadDir = getString(up, "Dir")
		out.UploadMaxMB = getInt(up, "MaxMB")
		out.UploadTTLMinutes = getInt(up, "TTLMinutes")
		out.UploadCleanIntervalMinutes = getInt(up, "CleanIntervalMinutes")
	}
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.JWTTTLHours == 0 {
		c.JWTTTLHours = 24 * 30
	}
	if c.LoginMaxFailures == 0 {
		c.LoginMaxFailures = 10
	}
	if c.LoginBanMinutes == 0 {
		c.LoginBanMinutes = 30
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.DBMaxOpenConns == 0 {
		c.DBMaxOpenConns = 10
	}
	if c.DBMaxIdleConns == 0 {
		c.DBMaxIdleConns = 5
	}
	if len(c.Users) == 0 {
		c.Users = []UserAccount{{Name: "Marshall"}, {Name: "Isobel"}}
	}
	if c.PromptCount == 0 {
		c.PromptCount = 11
	}
	if c.NotesPerDay == 0 {
		c.NotesPerDay = 1
	}
	if c.RevealDateKey == "" {
		c.RevealDateKey = "2025-10-13"
	}
	if c.TimeZone == "" {
		c.TimeZone = "Local"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.UploadDir == "" {
		c.UploadDir = filepath.Join("static", "uploads")
	}
	if c.UploadMaxMB == 0 {
		c.UploadMaxMB = 25
	}
	if c.UploadTTLMinutes == 0 {
		c.UploadTTLMinutes = 24 * 60
	}
	if c.UploadCleanIntervalMinutes == 0 {
		c.UploadCleanIntervalMinutes = 10
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("API_SECRET", ""); v != "" {
		c.APISecret = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("JWT_TTL_HOURS", ""); v != "" {
		c.JWTTTLHours = mustParseInt(v)
	}
	if v := getEnv("LOGIN_MAX_FAILURES", ""); v != "" {
		c.LoginMaxFailures = mustParseInt(v)
	}
	if v := getEnv("LOGIN_BAN_MINUTES", ""); v != "" {
		c.LoginBanMinutes = mustParseInt(v)
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = readListEnv("CORS_ALLOWED_ORIGINS", c.AllowedOrigins)
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = strings.ToLower(v)
	}
	for _, key := range databaseURLKeys {
		if v := getEnv(key, ""); v != "" {
			c.DatabaseURL = v
			break
		}
	}
	if v := getEnv("DB_MAX_OPEN_CONNS", ""); v != "" {
		c.DBMaxOpenConns = mustParseInt(v)
	}
	if v := getEnv("DB_MAX_IDLE_CONNS", ""); v != "" {
		c.DBMaxIdleConns = mustParseInt(v)
	}
	if v := getEnv("USERS", ""); v != "" {
		c.Users = parseUsers(v)
	}
	if v := getEnv("PROMPT_COUNT", ""); v != "" {
		c.PromptCount = mustParseInt(v)
	}
	if v := getEnv("NOTES_PER_DAY", ""); v != "" {
		c.NotesPerDay = mustParseInt(v)
	}
	if v := getEnv("REVEAL_DATE_KEY", ""); v != "" {
		c.RevealDateKey = v
	}
	if v := getEnv("TIME_ZONE", ""); v != "" {
		c.TimeZone = v
	}
	if v := getEnv("REDIS_ENABLED", ""); v != "" {
		c.RedisEnabled = v == "true"
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("UPLOAD_DIR", ""); v != "" {
		c.UploadDir = v
	}
	if v := getEnv("UPLOAD_MAX_MB", ""); v != "" {
		c.UploadMaxMB = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_TTL_MINUTES", ""); v != "" {
		c.UploadTTLMinutes = mustParseInt(v)
	}
	if v := getEnv("UPLOAD_CLEAN_INTERVAL_MINUTES", ""); v != "" {
		c.UploadCleanIntervalMinutes = mustParseInt(v)
	}
}

// parseUsers reads "Name:hash,Name2:hash2"; the hash part is optional.
func parseUsers(raw string) []UserAccount {
	users := []UserAccount{}
	for _, item := range splitAndTrim(raw) {
		name, hash, _ := strings.Cut(item, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		users = append(users, UserAccount{Name: name, PasswordHash: strings.TrimSpace(hash)})
	}
	return users
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func readListEnv(key string, defaults []string) []string {
	if raw := os.Getenv(key); raw != "" {
		return splitAndTrim(raw)
	}
	return defaults
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

func randomSecret() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		log.Fatalf("failed to generate JWT secret: %v", err)
	}
	return hex.EncodeToString(buf)
}

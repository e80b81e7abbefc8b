package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS, "*" when unset
	TrustProxy     bool     // use X-Forwarded-For for client IPs
	SentryDSN      string

	// Hidden admin. ADMIN_PASSWORD may be a plain secret or an argon2id hash.
	AdminUsername string
	AdminPassword string

	// Document store: file, mongo, redis, postgres, memory
	StoreDriver   string
	DataDir       string
	MongoURI      string
	MongoDatabase string
	RedisURI      string
	PostgresURI   string

	// Object store: cloudinary or s3
	ObjectStore         string
	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	S3Region            string
	S3Bucket            string
	S3AccessKey         string
	S3SecretKey         string
	S3Endpoint          string

	// Feed relay: local or redis
	FeedRelay string
}

func Load() *Config {
	origins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	return &Config{
		Port:           getEnv("PORT", "4000"),
		Environment:    strings.ToLower(strings.TrimSpace(getEnv("ENV", "development"))),
		AllowedOrigins: origins,
		TrustProxy:     getBool("TRUST_PROXY", false),
		SentryDSN:      getEnv("SENTRY_DSN", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", "file")),
		DataDir:       getEnv("DATA_DIR", "data"),
		MongoURI:      getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017")),
		MongoDatabase: getEnv("MONGODB_DATABASE", "nits_community"),
		RedisURI:      getEnv("REDIS_URI", ""),
		PostgresURI:   getEnv("POSTGRES_URI", "postgres://localhost:5432/nits_community?sslmode=disable"),

		ObjectStore:         strings.ToLower(getEnv("OBJECT_STORE", "cloudinary")),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "nits_community"),
		S3Region:            getEnv("S3_REGION", "us-east-1"),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),

		FeedRelay: strings.ToLower(getEnv("FEED_RELAY", "local")),
	}
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// CloudinaryConfigured reports whether all three Cloudinary credentials are set.
func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

package config

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/joho/godotenv"
	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

const (
	StorageBackendPostgres = "postgres"
	StorageBackendMemory   = "memory"

	LDConnectionTimeout = 5 * time.Second
	LDServerContextKind = "service"
)

// build-time override
var AppName = "rentals-service"

type Config struct {
	AppName     string
	Env         string
	AppPort     string
	AppUrl      string
	CORSOrigins []string
	Location    *time.Location

	// Storage
	StorageBackend  string
	DBUrl           string
	DBEncryptionKey []byte
	UploadsDir      string
	MaxUploadBytes  int64

	// Reminders
	ReminderCron string

	// Auth
	RSAPrivateKey          *rsa.PrivateKey
	RSAPublicKey           *rsa.PublicKey
	TokenTTL               time.Duration
	AuthRateLimitPerMinute float64
	AuthRateLimitBurst     int
	RedisURL               string

	// Twilio / SendGrid
	TwilioAccountSID string
	TwilioAuthToken  string
	SendGridAPIKey   string

	// Feature flags (LaunchDarkly when LD_SDK_KEY is set, FLAG_* env otherwise)
	LDFlag_EnforceSingleActiveLease bool
	LDFlag_SendgridSandboxMode      bool
	LDFlag_SendgridFromEmail        string
	LDFlag_TwilioFromPhone          string
	LDFlag_CORSHighSecurity         bool
	LDFlag_SeedDbWithTestData       bool
}

// IsProduction reports whether dev conveniences must stay off.
func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

// LoadConfig reads .env (if present), the environment, Bitwarden secrets
// and feature flags. Missing required values are fatal.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		utils.Logger.WithError(err).Warn("Could not parse .env file")
	}

	utils.Logger.Info("Loading config for app: ", AppName)

	cfg := &Config{
		AppName:                AppName,
		Env:                    envOr("ENV", "dev"),
		AppPort:                envOr("APP_PORT", "8001"),
		AppUrl:                 envOr("APP_URL", "http://localhost:3000"),
		StorageBackend:         strings.ToLower(envOr("STORAGE_BACKEND", StorageBackendPostgres)),
		DBUrl:                  os.Getenv("DB_URL"),
		UploadsDir:             envOr("UPLOADS_DIR", "uploads"),
		MaxUploadBytes:         envInt64("MAX_UPLOAD_BYTES", 10<<20),
		ReminderCron:           envOr("REMINDER_CRON", "0 9 * * *"),
		TokenTTL:               envDuration("TOKEN_TTL", 24*time.Hour),
		AuthRateLimitPerMinute: float64(envInt64("AUTH_RATE_LIMIT_PER_MINUTE", 20)),
		AuthRateLimitBurst:     int(envInt64("AUTH_RATE_LIMIT_BURST", 10)),
		RedisURL:               os.Getenv("REDIS_URL"),
	}

	loc, err := time.LoadLocation(envOr("APP_TIMEZONE", "Europe/Paris"))
	if err != nil {
		utils.Logger.WithError(err).Fatal("APP_TIMEZONE is not a valid IANA zone")
	}
	cfg.Location = loc

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	secrets := loadSecrets(cfg)

	if cfg.StorageBackend == StorageBackendPostgres {
		if v := secrets["DB_URL"]; v != "" {
			cfg.DBUrl = v
		}
		if cfg.DBUrl == "" {
			utils.Logger.Fatal("DB_URL is missing (set STORAGE_BACKEND=memory to run without Postgres)")
		}
	} else if cfg.StorageBackend != StorageBackendMemory {
		utils.Logger.Fatalf("Unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	cfg.DBEncryptionKey = loadEncryptionKey(cfg, secrets["DB_ENCRYPTION_KEY_BASE64"])
	cfg.RSAPrivateKey, cfg.RSAPublicKey = loadRSAKeys(cfg,
		secrets["RSA_PRIVATE_KEY_BASE64"], secrets["RSA_PUBLIC_KEY_BASE64"])

	cfg.TwilioAccountSID = secrets["TWILIO_ACCOUNT_SID"]
	cfg.TwilioAuthToken = secrets["TWILIO_AUTH_TOKEN"]
	cfg.SendGridAPIKey = secrets["SENDGRID_API_KEY"]

	loadFlags(cfg, secrets["LD_SDK_KEY"])
	return cfg
}

// loadSecrets merges env secrets with the Bitwarden project "<app>-<env>"
// when BWS_ACCESS_TOKEN is set. Bitwarden values win.
func loadSecrets(cfg *Config) map[string]string {
	keys := []string{
		"DB_URL", "DB_ENCRYPTION_KEY_BASE64", "RSA_PRIVATE_KEY_BASE64", "RSA_PUBLIC_KEY_BASE64",
		"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "SENDGRID_API_KEY", "LD_SDK_KEY",
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		out[k] = os.Getenv(k)
	}

	if !utils.BWSEnabled() {
		return out
	}

	client, err := utils.NewBWSSecretsClient()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to initialize BWSSecretsClient")
	}
	defer client.Close()

	projectName := fmt.Sprintf("%s-%s", cfg.AppName, cfg.Env)
	appSecrets, err := client.GetBWSSecrets(projectName)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to fetch app secrets from BWS")
	}
	for k, v := range appSecrets {
		if v != "" {
			out[k] = v
		}
	}
	utils.Logger.Infof("Loaded %d secrets from BWS project %s", len(appSecrets), projectName)
	return out
}

func loadEncryptionKey(cfg *Config, b64 string) []byte {
	if b64 == "" {
		if cfg.IsProduction() {
			utils.Logger.Fatal("DB_ENCRYPTION_KEY_BASE64 is required in production")
		}
		utils.Logger.Warn("DB_ENCRYPTION_KEY_BASE64 missing, generating an ephemeral key")
		key, err := utils.RandomKey(32)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to generate encryption key")
		}
		return key
	}
	key, err := base64.StdEncoding.DecodeString(b64)
	if err != nil || len(key) != 32 {
		utils.Logger.Fatal("DB_ENCRYPTION_KEY_BASE64 invalid, expect 32-byte key")
	}
	return key
}

func loadRSAKeys(cfg *Config, privB64, pubB64 string) (*rsa.PrivateKey, *rsa.PublicKey) {
	if privB64 == "" || pubB64 == "" {
		if cfg.IsProduction() {
			utils.Logger.Fatal("RSA_PRIVATE_KEY_BASE64 and RSA_PUBLIC_KEY_BASE64 are required in production")
		}
		utils.Logger.Warn("RSA key pair missing, generating an ephemeral one (tokens will not survive restarts)")
		priv, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to generate RSA key")
		}
		return priv, &priv.PublicKey
	}

	privPEM, _ := base64.StdEncoding.DecodeString(privB64)
	if block, _ := pem.Decode(privPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for private key")
	}
	privKey, err := jwt.ParseRSAPrivateKeyFromPEM(privPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA private key")
	}

	pubPEM, _ := base64.StdEncoding.DecodeString(pubB64)
	if block, _ := pem.Decode(pubPEM); block == nil {
		utils.Logger.Fatal("Failed to decode PEM block for public key")
	}
	pubKey, err := jwt.ParseRSAPublicKeyFromPEM(pubPEM)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to parse RSA public key")
	}
	return privKey, pubKey
}

// flagSource abstracts LaunchDarkly so flags also work from the environment.
type flagSource interface {
	Bool(key string, def bool) bool
	String(key string, def string) string
}

type envFlags struct{}

func envFlagName(key string) string {
	return "FLAG_" + strings.ToUpper(key)
}

func (envFlags) Bool(key string, def bool) bool {
	v, err := strconv.ParseBool(os.Getenv(envFlagName(key)))
	if err != nil {
		return def
	}
	return v
}

func (envFlags) String(key string, def string) string {
	return envOr(envFlagName(key), def)
}

type ldFlags struct {
	client *ld.LDClient
	ctx    ldcontext.Context
}

func (f ldFlags) Bool(key string, def bool) bool {
	v, err := f.client.BoolVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	return v
}

func (f ldFlags) String(key string, def string) string {
	v, err := f.client.StringVariation(key, f.ctx, def)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", key)
	}
	return v
}

func loadFlags(cfg *Config, ldSDKKey string) {
	var src flagSource = envFlags{}
	if ldSDKKey != "" {
		ldClient, err := ld.MakeClient(ldSDKKey, LDConnectionTimeout)
		if err != nil {
			utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
		}
		if !ldClient.Initialized() {
			ldClient.Close()
			utils.Logger.Fatal("LaunchDarkly client failed to initialize")
		}
		defer ldClient.Close()
		src = ldFlags{
			client: ldClient,
			ctx:    ldcontext.NewWithKind(ldcontext.Kind(LDServerContextKind), cfg.AppName),
		}
	} else {
		utils.Logger.Info("LD_SDK_KEY not set, reading feature flags from FLAG_* env vars")
	}

	cfg.LDFlag_EnforceSingleActiveLease = src.Bool("enforce_single_active_lease", false)
	cfg.LDFlag_SendgridSandboxMode = src.Bool("sendgrid_sandbox_mode", !cfg.IsProduction())
	cfg.LDFlag_SendgridFromEmail = src.String("sendgrid_from_email", "")
	if cfg.LDFlag_SendgridFromEmail == "" {
		utils.Logger.Warn("sendgrid_from_email flag is empty, defaulting to no-reply@gestion-locative.fr")
		cfg.LDFlag_SendgridFromEmail = "no-reply@gestion-locative.fr"
	}
	cfg.LDFlag_TwilioFromPhone = src.String("twilio_from_phone", "")
	cfg.LDFlag_CORSHighSecurity = src.Bool("cors_high_security", cfg.IsProduction())
	cfg.LDFlag_SeedDbWithTestData = src.Bool("seed_db_with_test_data", false)

	utils.Logger.Debugf("enforce_single_active_lease flag: %t", cfg.LDFlag_EnforceSingleActiveLease)
	utils.Logger.Debugf("sendgrid_sandbox_mode flag: %t", cfg.LDFlag_SendgridSandboxMode)
	utils.Logger.Debugf("cors_high_security flag: %t", cfg.LDFlag_CORSHighSecurity)
	utils.Logger.Debugf("seed_db_with_test_data flag: %t", cfg.LDFlag_SeedDbWithTestData)
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func envDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return def
	}
	return v
}

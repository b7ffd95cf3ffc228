package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

var Cfg Config

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"` // development, staging, production
	ServiceName string `env:"SERVICE_NAME" envDefault:"drifty"`

	// Redis, used by the hosted verifier, the profile store and the
	// username index. A mock/memory setup needs none of it.
	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`
	RedisPrefix   string `env:"REDIS_PREFIX" envDefault:"drifty"`

	// Identity token signing, required when VERIFY_PROVIDER=hosted.
	JWTSecret        string `env:"JWT_SECRET"`
	JWTExpireMinutes int    `env:"JWT_EXPIRE_MINUTES" envDefault:"43200"` // phone sessions are long-lived

	// Verification service.
	VerifyProvider       string `env:"VERIFY_PROVIDER" envDefault:"mock"` // hosted, mock
	VerifyCodeTTLSeconds int    `env:"VERIFY_CODE_TTL_SECONDS" envDefault:"120"`
	VerifyMaxDaily       int    `env:"VERIFY_MAX_DAILY" envDefault:"10"`
	VerifyResendCooldown int    `env:"VERIFY_RESEND_COOLDOWN_SECONDS" envDefault:"30"`
	VerifyMockCode       string `env:"VERIFY_MOCK_CODE" envDefault:"123456"`

	// Challenge (bot mitigation) provider.
	ChallengeProvider string `env:"CHALLENGE_PROVIDER" envDefault:"mock"` // aliyun, mock
	ChallengeSceneID  string `env:"CHALLENGE_SCENE_ID"`

	// SMS transport for the hosted verifier.
	SMSProvider     string `env:"SMS_PROVIDER" envDefault:"mock"` // aliyun, mock
	SMSSignName     string `env:"SMS_SIGN_NAME"`
	SMSTemplateCode string `env:"SMS_TEMPLATE_CODE"`

	// Profile store and username index backends.
	ProfileStore string `env:"PROFILE_STORE" envDefault:"memory"` // redis, memory

	// Salt for hashing phone numbers into key material.
	PhoneHashSalt string `env:"PHONEHASH_SALT" envDefault:"drifty-dev-salt"`

	// Onboarding flow tuning.
	UsernameDebounceMillis int `env:"USERNAME_DEBOUNCE_MILLIS" envDefault:"300"`
	SettleDelayMillis      int `env:"SETTLE_DELAY_MILLIS" envDefault:"100"`

	// Logging. Default output is a file: stdout belongs to the TUI.
	LoggerLevel      string `env:"LOGGER_LEVEL" envDefault:"INFO"`
	LoggerFormat     string `env:"LOGGER_FORMAT" envDefault:"text"` // json, text
	LoggerOutputPath string `env:"LOGGER_OUTPUT_PATH" envDefault:"drifty.log"`
}

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("WARN: Cannot load .env file: %v, using environment variables", err)
	}

	Cfg = Config{}
	if err := env.Parse(&Cfg); err != nil {
		log.Fatalf("Failed to parse environment variables: %v", err)
	}

	validateConfig()
}

func validateConfig() {
	if Cfg.VerifyProvider == "hosted" {
		if Cfg.JWTSecret == "" {
			log.Fatal("JWT_SECRET is required when VERIFY_PROVIDER=hosted")
		}
		if Cfg.SMSProvider != "mock" && Cfg.SMSSignName == "" {
			log.Printf("WARN: SMS_SIGN_NAME is not set, SMS sends may be rejected by the provider")
		}
		if Cfg.SMSProvider != "mock" && Cfg.SMSTemplateCode == "" {
			log.Printf("WARN: SMS_TEMPLATE_CODE is not set, SMS sends may be rejected by the provider")
		}
	}

	if Cfg.ChallengeProvider == "aliyun" && Cfg.ChallengeSceneID == "" {
		log.Printf("WARN: CHALLENGE_SCENE_ID is not set, challenge verification will fail")
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

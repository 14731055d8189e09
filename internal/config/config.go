package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server struct {
		Address string `yaml:"address"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		URL    string `yaml:"url"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Mansa struct {
		BaseURL      string `yaml:"base_url"`
		ClientKey    string `yaml:"client_key"`
		ClientSecret string `yaml:"client_secret"`
	} `yaml:"mansa"`
	JWT struct {
		SigningKey string `yaml:"signing_key"`
	} `yaml:"jwt"`
	Storage struct {
		AccessKey string `yaml:"access_key"`
		SecretKey string `yaml:"secret_key"`
		Bucket    string `yaml:"bucket"`
		Region    string `yaml:"region"`
		Endpoint  string `yaml:"endpoint"`
	} `yaml:"storage"`
	Firebase struct {
		CredentialsFile string `yaml:"credentials_file"`
	} `yaml:"firebase"`
}

func LoadConfig() Config {
	var cfg Config

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "./config/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Warning: failed to read config file %s: %v", path, err)
	} else if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("Failed to unmarshal config data: %v", err)
	}

	// secrets come from the environment when set
	overrideFromEnv(&cfg.Database.URL, "DATABASE_URL")
	overrideFromEnv(&cfg.Redis.Addr, "REDIS_ADDR")
	overrideFromEnv(&cfg.Redis.Password, "REDIS_PASSWORD")
	overrideFromEnv(&cfg.Mansa.BaseURL, "MANSA_BASE_URL")
	overrideFromEnv(&cfg.Mansa.ClientKey, "MANSA_CLIENT_KEY")
	overrideFromEnv(&cfg.Mansa.ClientSecret, "MANSA_CLIENT_SECRET")
	overrideFromEnv(&cfg.JWT.SigningKey, "JWT_SIGNING_KEY")
	overrideFromEnv(&cfg.Storage.AccessKey, "STORAGE_ACCESS_KEY")
	overrideFromEnv(&cfg.Storage.SecretKey, "STORAGE_SECRET_KEY")
	overrideFromEnv(&cfg.Storage.Bucket, "STORAGE_BUCKET")
	overrideFromEnv(&cfg.Storage.Region, "STORAGE_REGION")
	overrideFromEnv(&cfg.Storage.Endpoint, "STORAGE_ENDPOINT")
	overrideFromEnv(&cfg.Firebase.CredentialsFile, "FIREBASE_CREDENTIALS_FILE")

	return cfg
}

func overrideFromEnv(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

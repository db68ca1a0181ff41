package config

import (
	"os"
	"path"
	"time"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	Private Private
}

type Public struct {
	Pg           Pg            `yaml:"pg"`
	Port         int           `yaml:"port"`
	JwtTTL       time.Duration `yaml:"jwt_ttl"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"` // "json" or "text"
	StoreBackend string        `yaml:"store_backend"` // "pg" (default) or "http"
	ForumBaseUrl string        `yaml:"forum_base_url"` // used when store_backend is "http"

	Generator Generator `yaml:"generator"`

	SandboxSchoolName string `yaml:"sandbox_school_name"`
}

type Pg struct {
	Host   string `yaml:"host"`
	Port   int    `yaml:"port"`
	User   string `yaml:"user"`
	Dbname string `yaml:"dbname"`
}

type Generator struct {
	BaseUrl        string `yaml:"base_url"`
	Model          string `yaml:"model"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type Private struct {
	JwtKey          string `yaml:"jwt_key"`
	PgPassword      string `yaml:"pg_password"`
	GeneratorApiKey string `yaml:"generator_api_key"`
}

func (s *Config) JwtKey() string {
	return s.Private.JwtKey
}

func (s *Config) JwtTTL() time.Duration {
	return s.Public.JwtTTL
}

func (s *Config) SandboxSchoolName() string {
	if s.Public.SandboxSchoolName == "" {
		return "Sandbox High"
	}
	return s.Public.SandboxSchoolName
}

func mustLoadPath(configPath string, output interface{}) {
	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}
	configFile, err := os.ReadFile(configPath)

	if err != nil {
		panic("can't read config file")
	}

	err = yaml.Unmarshal(configFile, output)
	if err != nil {
		panic("can't unmarshal config file")
	}
}

func MustLoad(configFolder string) *Config {
	var public Public
	mustLoadPath(path.Join(configFolder, "public.yaml"), &public)

	var private Private
	mustLoadPath(path.Join(configFolder, "private.yaml"), &private)

	return &Config{public, private}
}

package config

import (
	"os"
	"path"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/pkg/common"
)

// SysConfig system configuration
type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	Secret      string `yaml:"secret"`       // token signing secret
	TokenExpire int    `yaml:"token_expire"` // token lifetime in hours
	PublicURL   string `yaml:"public_url"`   // used in password reset links
	RateLimit   int    `yaml:"rate_limit"`   // auth requests per minute per client, 0 disables
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type"` // postgres or sqlite
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

// LogConfig logging configuration
type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// MailConfig SMTP delivery configuration
type MailConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	User    string `yaml:"user"`
	Passwd  string `yaml:"passwd"`
	From    string `yaml:"from"`
}

// StorageConfig image storage configuration
type StorageConfig struct {
	Type     string `yaml:"type"` // local or s3
	Dir      string `yaml:"dir"`
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Prefix   string `yaml:"prefix"`
}

// RedisConfig optional redis used by the auth rate limiter
type RedisConfig struct {
	Addr   string `yaml:"addr"`
	Passwd string `yaml:"passwd"`
	DB     int    `yaml:"db"`
}

// SuperuserConfig the administrator account seeded at startup
type SuperuserConfig struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

// NotifyConfig notification delivery settings
type NotifyConfig struct {
	Workers int `yaml:"workers"`
}

type AppConfig struct {
	System    SysConfig       `yaml:"system"`
	Web       WebConfig       `yaml:"web"`
	Database  DBConfig        `yaml:"database"`
	Logger    LogConfig       `yaml:"logger"`
	Mail      MailConfig      `yaml:"mail"`
	Storage   StorageConfig   `yaml:"storage"`
	Redis     RedisConfig     `yaml:"redis"`
	Superuser SuperuserConfig `yaml:"superuser"`
	Notify    NotifyConfig    `yaml:"notify"`
}

func (c *AppConfig) GetLogDir() string {
	return path.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return path.Join(c.System.Workdir, "data")
}

func (c *AppConfig) GetUploadDir() string {
	if c.Storage.Dir != "" {
		return c.Storage.Dir
	}
	return path.Join(c.System.Workdir, "uploads")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(c.GetLogDir(), 0o755)
	_ = os.MkdirAll(c.GetDataDir(), 0o755)
	if c.Storage.Type == "" || c.Storage.Type == "local" {
		_ = os.MkdirAll(c.GetUploadDir(), 0o755)
	}
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "shopd",
		Location: "Asia/Kolkata",
		Workdir:  "/var/shopd",
		Debug:    true,
	},
	Web: WebConfig{
		Host:        "0.0.0.0",
		Port:        8080,
		Secret:      "9b6de5cc-0731-4bfa-8e6f-3b3d2e1a7c11",
		TokenExpire: 24,
		PublicURL:   "http://localhost:8080",
		RateLimit:   30,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "shopd",
		User:     "postgres",
		Passwd:   "myroot",
		MaxConn:  100,
		IdleConn: 10,
		Debug:    false,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/shopd/logs/shopd.log",
	},
	Mail: MailConfig{
		Enabled: false,
		Host:    "localhost",
		Port:    25,
		From:    "shop@localhost",
	},
	Storage: StorageConfig{
		Type: "local",
	},
	Superuser: SuperuserConfig{
		Name:     "administrator",
		Email:    "admin@example-fixed",
		Password: "admin@shopd",
	},
	Notify: NotifyConfig{
		Workers: 8,
	},
}

// LoadConfig reads the yaml file when present and applies SHOPD_* overrides.
func LoadConfig(cfile string) *AppConfig {
	if cfile == "" {
		cfile = "shopd.yml"
	}
	if !common.FileExists(cfile) {
		cfile = "/etc/shopd.yml"
	}
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if common.FileExists(cfile) {
		data, err := os.ReadFile(cfile)
		if err != nil {
			panic(err)
		}
		if err = yaml.Unmarshal(data, cfg); err != nil {
			panic(err)
		}
	}
	applyEnv(cfg)
	cfg.initDirs()
	return cfg
}

func applyEnv(cfg *AppConfig) {
	setEnvValue("SHOPD_SYSTEM_WORKER_DIR", &cfg.System.Workdir)
	setEnvValue("SHOPD_SYSTEM_LOCATION", &cfg.System.Location)
	setEnvBoolValue("SHOPD_SYSTEM_DEBUG", &cfg.System.Debug)

	setEnvValue("SHOPD_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("SHOPD_WEB_PORT", &cfg.Web.Port)
	setEnvValue("SHOPD_WEB_SECRET", &cfg.Web.Secret)
	setEnvIntValue("SHOPD_WEB_TOKEN_EXPIRE", &cfg.Web.TokenExpire)
	setEnvValue("SHOPD_WEB_PUBLIC_URL", &cfg.Web.PublicURL)
	setEnvIntValue("SHOPD_WEB_RATE_LIMIT", &cfg.Web.RateLimit)

	setEnvValue("SHOPD_DB_TYPE", &cfg.Database.Type)
	setEnvValue("SHOPD_DB_HOST", &cfg.Database.Host)
	setEnvIntValue("SHOPD_DB_PORT", &cfg.Database.Port)
	setEnvValue("SHOPD_DB_NAME", &cfg.Database.Name)
	setEnvValue("SHOPD_DB_USER", &cfg.Database.User)
	setEnvValue("SHOPD_DB_PWD", &cfg.Database.Passwd)
	setEnvIntValue("SHOPD_DB_MAX_CONN", &cfg.Database.MaxConn)
	setEnvIntValue("SHOPD_DB_IDLE_CONN", &cfg.Database.IdleConn)
	setEnvBoolValue("SHOPD_DB_DEBUG", &cfg.Database.Debug)

	setEnvValue("SHOPD_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("SHOPD_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("SHOPD_LOGGER_FILENAME", &cfg.Logger.Filename)

	setEnvBoolValue("SHOPD_MAIL_ENABLED", &cfg.Mail.Enabled)
	setEnvValue("SHOPD_MAIL_HOST", &cfg.Mail.Host)
	setEnvIntValue("SHOPD_MAIL_PORT", &cfg.Mail.Port)
	setEnvValue("SHOPD_MAIL_USER", &cfg.Mail.User)
	setEnvValue("SHOPD_MAIL_PWD", &cfg.Mail.Passwd)
	setEnvValue("SHOPD_MAIL_FROM", &cfg.Mail.From)

	setEnvValue("SHOPD_STORAGE_TYPE", &cfg.Storage.Type)
	setEnvValue("SHOPD_STORAGE_DIR", &cfg.Storage.Dir)
	setEnvValue("SHOPD_STORAGE_BUCKET", &cfg.Storage.Bucket)
	setEnvValue("SHOPD_STORAGE_REGION", &cfg.Storage.Region)
	setEnvValue("SHOPD_STORAGE_ENDPOINT", &cfg.Storage.Endpoint)
	setEnvValue("SHOPD_STORAGE_PREFIX", &cfg.Storage.Prefix)

	setEnvValue("SHOPD_REDIS_ADDR", &cfg.Redis.Addr)
	setEnvValue("SHOPD_REDIS_PWD", &cfg.Redis.Passwd)
	setEnvIntValue("SHOPD_REDIS_DB", &cfg.Redis.DB)

	setEnvValue("SHOPD_SUPERUSER_NAME", &cfg.Superuser.Name)
	setEnvValue("SHOPD_SUPERUSER_EMAIL", &cfg.Superuser.Email)
	setEnvValue("SHOPD_SUPERUSER_PASSWORD", &cfg.Superuser.Password)

	setEnvIntValue("SHOPD_NOTIFY_WORKERS", &cfg.Notify.Workers)
}

func setEnvValue(name string, val *string) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue != "" {
		*val = evalue
	}
}

func setEnvBoolValue(name string, val *bool) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue != "" {
		*val = cast.ToBool(evalue)
	}
}

func setEnvIntValue(name string, val *int) {
	var evalue = strings.TrimSpace(os.Getenv(name))
	if evalue == "" {
		return
	}
	if v, err := cast.ToIntE(evalue); err == nil {
		*val = v
	}
}

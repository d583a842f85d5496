package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

type Persistence struct {
	Driver     string        `yaml:"driver" validate:"required|in:bolt,sqlite,file,memory"`
	FilePath   string        `yaml:"filePath" validate:"required|unixPath"`
	Retries    int           `yaml:"retries" validate:"uint|max:10"`
	RetryDelay time.Duration `yaml:"retryDelay"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type BatchConfig struct {
	Size int `yaml:"size" validate:"required|min:1|max:100"`
}

type QuotaConfig struct {
	DailyFreeLimit int           `yaml:"dailyFreeLimit" validate:"required|min:1"`
	AdInterval     int           `yaml:"adInterval" validate:"uint"`
	RolloverCheck  time.Duration `yaml:"rolloverCheck"`
}

type LibraryConfig struct {
	Root           string        `yaml:"root" validate:"required|unixPath"`
	TrashDir       string        `yaml:"trashDir" validate:"required|unixPath"`
	MediaKinds     []string      `yaml:"mediaKinds"`
	RescanInterval time.Duration `yaml:"rescanInterval"`
	ScanWorkers    int           `yaml:"scanWorkers"`
}

type ContentConfig struct {
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	MaxBytes     int64         `yaml:"maxBytes"`
}

type EntitlementConfig struct {
	Initial string `yaml:"initial" validate:"in:unsubscribed,subscribed,trial,expired,cancelled"`
}

type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	Size    int           `yaml:"size"`
	TTL     time.Duration `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName     string
	Debug       bool
	Path        string
	WebServer   Server            `yaml:"webServer"`
	Persistence Persistence       `yaml:"persistence"`
	Logger      LoggerConfig      `yaml:"logger"`
	Batch       BatchConfig       `yaml:"batch"`
	Quota       QuotaConfig       `yaml:"quota"`
	Library     LibraryConfig     `yaml:"library"`
	Content     ContentConfig     `yaml:"content"`
	Entitlement EntitlementConfig `yaml:"entitlement"`
	Cache       CacheConfig       `yaml:"cache"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

package providers

import (
	"fmt"
	"path/filepath"
	"strings"
	"swipetriage/internal/structures"
	"time"

	"github.com/spf13/viper"
)

const AppName = "SwipeTriage"

func setDefaults(v *viper.Viper) {
	v.SetDefault("webServer.host", "127.0.0.1")
	v.SetDefault("webServer.port", 8090)
	v.SetDefault("persistence.driver", "bolt")
	v.SetDefault("persistence.retries", 3)
	v.SetDefault("persistence.retryDelay", 50*time.Millisecond)
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", 0644)
	v.SetDefault("batch.size", 10)
	v.SetDefault("quota.dailyFreeLimit", 10)
	v.SetDefault("quota.adInterval", 5)
	v.SetDefault("quota.rolloverCheck", time.Minute)
	v.SetDefault("library.mediaKinds", []string{"photo", "video"})
	v.SetDefault("library.rescanInterval", 10*time.Minute)
	v.SetDefault("library.scanWorkers", 8)
	v.SetDefault("content.fetchTimeout", 2*time.Second)
	v.SetDefault("content.maxBytes", 64<<20)
	v.SetDefault("entitlement.initial", "unsubscribed")
}

func NewConfigProvider(flags *structures.CliFlags) (*structures.Config, error) {
	var conf structures.Config
	v := viper.New()
	setDefaults(v)

	filename := filepath.Base(flags.ConfigPath)
	v.AddConfigPath(filepath.Dir(flags.ConfigPath))
	v.SetConfigName(strings.TrimSuffix(filename, filepath.Ext(filename)))
	v.SetConfigType("yaml")

	_ = v.BindEnv("logger.level", "SWIPETRIAGE_LOG_LEVEL")
	_ = v.BindEnv("library.root", "SWIPETRIAGE_LIBRARY_ROOT")
	_ = v.BindEnv("persistence.driver", "SWIPETRIAGE_PERSISTENCE_DRIVER")
	_ = v.BindEnv("entitlement.initial", "SWIPETRIAGE_ENTITLEMENT")

	err := v.ReadInConfig()
	if err != nil {
		return nil, err
	}

	err = v.Unmarshal(&conf)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}

	cnfValidator := NewCnfValidator(&conf)
	err = cnfValidator.Validate()
	if err != nil {
		return nil, err
	}

	conf.AppName = AppName
	conf.Path = flags.ConfigPath
	conf.Debug = flags.DebugMode

	return &conf, nil
}

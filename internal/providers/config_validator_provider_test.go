package providers

import (
	"swipetriage/internal/structures"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *structures.Config {
	return &structures.Config{
		WebServer: structures.Server{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Persistence: structures.Persistence{
			Driver:     "bolt",
			FilePath:   "/tmp/swipetriage.db",
			Retries:    3,
			RetryDelay: 10 * time.Millisecond,
		},
		Logger: structures.LoggerConfig{
			Level: "info",
			Mode:  0644,
			Dir:   "/tmp/logs",
		},
		Batch: structures.BatchConfig{Size: 10},
		Quota: structures.QuotaConfig{DailyFreeLimit: 10, AdInterval: 5},
		Library: structures.LibraryConfig{
			Root:       "/tmp/photos",
			TrashDir:   "/tmp/trash",
			MediaKinds: []string{"photo", "video"},
		},
		Entitlement: structures.EntitlementConfig{Initial: "unsubscribed"},
	}
}

func TestConfigValidator_ValidConfig(t *testing.T) {
	v := NewCnfValidator(validConfig())
	assert.NoError(t, v.Validate())
}

func TestConfigValidator_EmptyHost(t *testing.T) {
	c := validConfig()
	c.WebServer.Host = ""
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroPort(t *testing.T) {
	c := validConfig()
	c.WebServer.Port = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_InvalidLogLevel(t *testing.T) {
	c := validConfig()
	c.Logger.Level = "verbose"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownDriver(t *testing.T) {
	c := validConfig()
	c.Persistence.Driver = "redis"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_ZeroBatchSize(t *testing.T) {
	c := validConfig()
	c.Batch.Size = 0
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownMediaKind(t *testing.T) {
	c := validConfig()
	c.Library.MediaKinds = []string{"photo", "audio"}
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_TrashInsideRoot(t *testing.T) {
	c := validConfig()
	c.Library.TrashDir = "/tmp/photos/"
	assert.Error(t, NewCnfValidator(c).Validate())
}

func TestConfigValidator_UnknownEntitlement(t *testing.T) {
	c := validConfig()
	c.Entitlement.Initial = "gold"
	assert.Error(t, NewCnfValidator(c).Validate())
}

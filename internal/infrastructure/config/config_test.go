package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "documentiulia", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, DefaultJWTSecret, cfg.JWT.Secret)
	assert.Equal(t, cfg.JWT.Secret, cfg.JWT.RefreshSecret)
	assert.Equal(t, 15*time.Minute, cfg.JWT.AccessTokenExpiration)
	assert.Equal(t, "https://api.anaf.ro/test/FCTEL/rest", cfg.EFactura.BaseURL)
	assert.Equal(t, 3, cfg.EFactura.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.EFactura.BaseDelay)
	assert.Equal(t, 5.0, cfg.EFactura.RequestsPerSec)
	assert.Equal(t, 5*time.Minute, cfg.EFactura.SyncInterval)
	assert.Equal(t, "https://www.bnr.ro/nbrfxrates.xml", cfg.Exchange.BNRURL)
	assert.Equal(t, int64(10<<20), cfg.HTTP.MaxUploadSize)
	assert.Empty(t, cfg.HTTP.CORSAllowOrigins)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Equal(t, "documentiulia", cfg.Telemetry.ServiceName)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("DI_APP_PORT", "9000")
	t.Setenv("DI_DATABASE_HOST", "db.internal")
	t.Setenv("DI_DATABASE_MAX_OPEN_CONNS", "50")
	t.Setenv("DI_EFACTURA_ENVIRONMENT", "prod")
	t.Setenv("DI_EFACTURA_BASE_DELAY", "500ms")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, "https://api.anaf.ro/prod/FCTEL/rest", cfg.EFactura.BaseURL)
	assert.Equal(t, 500*time.Millisecond, cfg.EFactura.BaseDelay)
}

func TestLoadFrom_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[app]
name = "di-test"

[storage]
bucket = "receipts"
use_path_style = true

[http]
cors_allow_origins = ["https://app.documentiulia.ro"]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "di-test", cfg.App.Name)
	assert.Equal(t, "receipts", cfg.Storage.Bucket)
	assert.True(t, cfg.Storage.UsePathStyle)
	assert.Equal(t, []string{"https://app.documentiulia.ro"}, cfg.HTTP.CORSAllowOrigins)
}

func TestLoadFrom_MissingExplicitFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func productionConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.App.Env = "production"
	cfg.JWT.Secret = "a-very-long-production-secret-value-0123456789"
	cfg.Database.Password = "s3cret"
	cfg.Database.SSLMode = "require"
	cfg.HTTP.CORSAllowOrigins = []string{"https://app.documentiulia.ro"}
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid production", mutate: func(*Config) {}},
		{name: "default secret", mutate: func(c *Config) { c.JWT.Secret = DefaultJWTSecret }, wantErr: "default"},
		{name: "short secret", mutate: func(c *Config) { c.JWT.Secret = "short" }, wantErr: "32 characters"},
		{name: "debug level", mutate: func(c *Config) { c.Log.Level = "DEBUG" }, wantErr: "log.level"},
		{name: "wildcard cors", mutate: func(c *Config) { c.HTTP.CORSAllowOrigins = []string{"*"} }, wantErr: "cors"},
		{name: "ssl disabled", mutate: func(c *Config) { c.Database.SSLMode = "disable" }, wantErr: "sslmode"},
		{name: "no db password", mutate: func(c *Config) { c.Database.Password = "" }, wantErr: "password"},
		{name: "open swagger", mutate: func(c *Config) { c.Swagger.Enabled = true }, wantErr: "swagger"},
		{name: "full sql traces", mutate: func(c *Config) { c.Telemetry.DBLogFullSQL = true }, wantErr: "db_log_full_sql"},
		{name: "idle above open", mutate: func(c *Config) { c.Database.MaxIdleConns = 100 }, wantErr: "max_idle_conns"},
		{name: "bad efactura env", mutate: func(c *Config) { c.EFactura.Environment = "staging" }, wantErr: "efactura.environment"},
		{name: "bad sampling", mutate: func(c *Config) { c.Telemetry.SamplingRatio = 2 }, wantErr: "sampling_ratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := productionConfig()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_DevelopmentAllowsDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.Log.Level = "debug"
	cfg.HTTP.CORSAllowOrigins = []string{"*"}
	assert.NoError(t, cfg.validate())
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{Host: "db", Port: 5432, User: "di", Password: "p@ss/word", DBName: "documentiulia", SSLMode: "require"}
	assert.Equal(t, "postgres://di:p%40ss%2Fword@db:5432/documentiulia?sslmode=require", d.DSN())
}

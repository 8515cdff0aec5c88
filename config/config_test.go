package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("APPENV", "test")
	t.Setenv("JWTSECRET", "test-secret-123")
	t.Setenv("DBDRIVER", "")
	t.Setenv("UPLOAD_DRIVER", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("RATE_WINDOW", "")
}

func TestLoad_MissingJWTSecret(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("JWTSECRET", "")

	cfg, err := Load()
	assert.ErrorIs(t, err, ErrMissingJWTSecret)
	assert.Nil(t, cfg)
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "test-secret-123", cfg.JWTSecret)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, "local", cfg.UploadDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 15*time.Minute, cfg.RateWindow)
	assert.False(t, cfg.AllowAdminSignup)
	assert.True(t, cfg.IsTest())
}

func TestLoad_InvalidDriver(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("DBDRIVER", "oracle")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_S3RequiresBucket(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("UPLOAD_DRIVER", "s3")
	t.Setenv("S3_BUCKET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("TOKEN_TTL", "forever")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_KafkaBrokersList(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
}

func TestDSN(t *testing.T) {
	pg := &Config{DBDriver: "postgres", DBHost: "db", DBPort: 5432, DBUSER: "u", DBPass: "p", DBName: "aba", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=aba sslmode=disable", pg.DSN())

	my := &Config{DBDriver: "mysql", DBHost: "db", DBPort: 3306, DBUSER: "u", DBPass: "p", DBName: "aba"}
	assert.Equal(t, "u:p@tcp(db:3306)/aba?parseTime=true", my.DSN())

	withURL := &Config{DBDriver: "postgres", DatabaseURL: "postgres://x"}
	assert.Equal(t, "postgres://x", withURL.DSN())
}

// ConnectDatabase uses in-memory sqlite when APPENV=test.
func TestConnectDatabase_TestEnv(t *testing.T) {
	db, err := ConnectDatabase(&Config{AppEnv: "test"})
	require.NoError(t, err)
	require.NotNil(t, db)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}

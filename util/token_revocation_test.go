package util

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func withRedisMock(t *testing.T) redismock.ClientMock {
	t.Helper()
	client, mock := redismock.NewClientMock()
	config.SetRedisClientForTesting(client)
	t.Cleanup(func() {
		config.SetRedisClientForTesting(nil)
		_ = client.Close()
	})
	return mock
}

func TestRevokeToken_WithoutRedis(t *testing.T) {
	config.SetRedisClientForTesting(nil)

	assert.NoError(t, RevokeToken(context.Background(), "jti-1", time.Now().Add(time.Hour)))
	revoked, err := IsTokenRevoked(context.Background(), "jti-1")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestRevokeToken_SetsKeyWithTTL(t *testing.T) {
	mock := withRedisMock(t)
	mock.CustomMatch(func(expected, actual []interface{}) error {
		if len(actual) < 5 || fmt.Sprint(actual[0]) != "set" || fmt.Sprint(actual[1]) != "revoked_token:jti-1" {
			return fmt.Errorf("unexpected command %v", actual)
		}
		return nil
	}).ExpectSet("revoked_token:jti-1", "1", time.Hour).SetVal("OK")

	err := RevokeToken(context.Background(), "jti-1", time.Now().Add(time.Hour))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRevokeToken_ExpiredIsNoop(t *testing.T) {
	mock := withRedisMock(t)

	err := RevokeToken(context.Background(), "jti-1", time.Now().Add(-time.Minute))
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsTokenRevoked(t *testing.T) {
	mock := withRedisMock(t)
	mock.ExpectExists("revoked_token:jti-1").SetVal(1)
	mock.ExpectExists("revoked_token:jti-2").SetVal(0)

	revoked, err := IsTokenRevoked(context.Background(), "jti-1")
	assert.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = IsTokenRevoked(context.Background(), "jti-2")
	assert.NoError(t, err)
	assert.False(t, revoked)
}

func TestIsTokenRevoked_RedisError(t *testing.T) {
	mock := withRedisMock(t)
	mock.ExpectExists("revoked_token:jti-1").SetErr(errors.New("redis down"))

	_, err := IsTokenRevoked(context.Background(), "jti-1")
	assert.Error(t, err)
}

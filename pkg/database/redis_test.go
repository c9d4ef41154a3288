package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/quiz-api/internal/config"
)

func TestRedisOptions_SingleUsesAddr(t *testing.T) {
	opts, err := RedisOptions(config.RedisConfig{Addr: "localhost:6379", MinRetryBackoff: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"localhost:6379"}, opts.Addrs)
	assert.Equal(t, 10*time.Millisecond, opts.MinRetryBackoff)
}

func TestRedisOptions_SentinelRequiresMaster(t *testing.T) {
	_, err := RedisOptions(config.RedisConfig{Mode: "sentinel", Addrs: []string{"a:26379"}})
	require.Error(t, err)

	opts, err := RedisOptions(config.RedisConfig{Mode: "sentinel", Addrs: []string{"a:26379", "b:26379"}, MasterName: "mymaster"})
	require.NoError(t, err)
	assert.Equal(t, "mymaster", opts.MasterName)
	assert.Len(t, opts.Addrs, 2)
}

func TestRedisOptions_Errors(t *testing.T) {
	_, err := RedisOptions(config.RedisConfig{})
	assert.Error(t, err)

	_, err = RedisOptions(config.RedisConfig{Mode: "bogus", Addr: "x:1"})
	assert.Error(t, err)
}

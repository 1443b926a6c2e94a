package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnectUnreachableRedisReturnsNil(t *testing.T) {
	// Port 1 is never a Redis server; the ping fails and Connect must
	// hand back nil instead of a service holding a dead client.
	service := Connect(&RedisConfig{Host: "127.0.0.1", Port: "1"}, time.Minute)
	assert.Nil(t, service)
}

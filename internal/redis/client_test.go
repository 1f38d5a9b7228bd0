package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestLockKey(t *testing.T) {
	assert.Equal(t, "lock:order-id:ORD-20250301-", LockKey("order-id:ORD-20250301-"))
}

func TestInitializeRejectsBadURL(t *testing.T) {
	_, err := Initialize("not a url", time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse Redis URL")
}

func TestNewClientDefaultsTTL(t *testing.T) {
	c := NewClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), 0)
	defer c.Close()
	assert.Equal(t, 5*time.Second, c.ttl)
}

func TestLockFailsWhenRedisIsUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 100 * time.Millisecond})
	c := NewClient(rdb, 500*time.Millisecond)
	defer c.Close()

	release, err := c.Lock(context.Background(), "order-id:ORD-20250301-")
	assert.Error(t, err)
	assert.Nil(t, release)
}

// LockTestSuite runs against a live Redis named by ORDERS_TEST_REDIS_URL.
type LockTestSuite struct {
	suite.Suite
	client *Client
	ctx    context.Context
}

func TestLockTestSuite(t *testing.T) {
	if os.Getenv("ORDERS_TEST_REDIS_URL") == "" {
		t.Skip("ORDERS_TEST_REDIS_URL not set")
	}
	suite.Run(t, new(LockTestSuite))
}

func (s *LockTestSuite) SetupSuite() {
	c, err := Initialize(os.Getenv("ORDERS_TEST_REDIS_URL"), 300*time.Millisecond)
	require.NoError(s.T(), err)
	s.client = c
	s.ctx = context.Background()
}

func (s *LockTestSuite) TearDownSuite() {
	s.client.Close()
}

func (s *LockTestSuite) lockName() string {
	return "test:" + uuid.NewString()
}

func (s *LockTestSuite) TestAcquireAndRelease() {
	name := s.lockName()

	release, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)
	s.Require().NotNil(release)

	ttl, err := s.client.rdb.PTTL(s.ctx, LockKey(name)).Result()
	s.Require().NoError(err)
	s.Greater(ttl, time.Duration(0))

	release()
	exists, err := s.client.rdb.Exists(s.ctx, LockKey(name)).Result()
	s.Require().NoError(err)
	s.Zero(exists)

	release2, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)
	release2()
}

func (s *LockTestSuite) TestContendedLockTimesOut() {
	name := s.lockName()

	release, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)
	defer release()

	other := NewClient(s.client.rdb, 100*time.Millisecond)
	start := time.Now()
	_, err = other.Lock(s.ctx, name)
	s.ErrorIs(err, ErrLockTimeout)
	s.GreaterOrEqual(time.Since(start), 100*time.Millisecond)
}

func (s *LockTestSuite) TestWaiterAcquiresAfterRelease() {
	name := s.lockName()

	release, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)

	acquired := make(chan error, 1)
	go func() {
		r, err := s.client.Lock(s.ctx, name)
		if err == nil {
			r()
		}
		acquired <- err
	}()

	time.Sleep(50 * time.Millisecond)
	release()
	s.NoError(<-acquired)
}

func (s *LockTestSuite) TestReleaseLeavesAnotherHoldersLock() {
	name := s.lockName()
	key := LockKey(name)

	release, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)

	// the lock expires and someone else takes it over
	s.Require().NoError(s.client.rdb.Set(s.ctx, key, "other-holder", time.Minute).Err())

	release()
	value, err := s.client.rdb.Get(s.ctx, key).Result()
	s.Require().NoError(err)
	s.Equal("other-holder", value)
	s.client.rdb.Del(s.ctx, key)
}

func (s *LockTestSuite) TestLockExpiresAfterTTL() {
	name := s.lockName()

	_, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)

	s.Eventually(func() bool {
		n, err := s.client.rdb.Exists(s.ctx, LockKey(name)).Result()
		return err == nil && n == 0
	}, 2*time.Second, 50*time.Millisecond)

	release, err := s.client.Lock(s.ctx, name)
	s.Require().NoError(err)
	release()
}

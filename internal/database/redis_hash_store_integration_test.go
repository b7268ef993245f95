package database_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"prompt-server/internal/database"
	"prompt-server/internal/models"
	"prompt-server/internal/repository"

	"github.com/docker/docker/client"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
)

// RedisStoreSuite гоняет хранилище против настоящего Redis в контейнере.
type RedisStoreSuite struct {
	suite.Suite
	ctx       context.Context
	container *tcredis.RedisContainer
	client    *redis.Client
	store     *database.RedisHashStore
	logger    *zap.Logger
}

func (s *RedisStoreSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = zap.NewNop()

	var err error
	s.container, err = tcredis.Run(s.ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(1*time.Minute),
		),
	)
	require.NoError(s.T(), err, "Failed to start redis container")

	host, err := s.container.Host(s.ctx)
	require.NoError(s.T(), err)
	port, err := s.container.MappedPort(s.ctx, "6379/tcp")
	require.NoError(s.T(), err)

	s.client = redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	require.NoError(s.T(), s.client.Ping(s.ctx).Err(), "Failed to connect to test redis")

	s.store = database.NewRedisHashStore(s.client, s.logger)
}

func (s *RedisStoreSuite) TearDownSuite() {
	if s.client != nil {
		_ = s.client.Close()
	}
	if s.container != nil {
		if err := s.container.Terminate(s.ctx); err != nil {
			s.logger.Error("Failed to terminate redis container", zap.Error(err))
		}
	}
}

func (s *RedisStoreSuite) SetupTest() {
	require.NoError(s.T(), s.client.FlushDB(s.ctx).Err())
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		t.Skipf("Docker client init error: %v", err)
	}
	if _, err := cli.Ping(context.Background()); err != nil {
		_ = cli.Close()
		t.Skipf("Docker daemon is not accessible: %v", err)
	}
	_ = cli.Close()

	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) TestHashPrimitives() {
	t := s.T()

	exists, err := s.store.Exists(s.ctx, "1")
	require.NoError(t, err)
	require.False(t, exists)

	ok, err := s.store.HSetNX(s.ctx, "1", "1v0", "first")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = s.store.HSetNX(s.ctx, "1", "1v0", "second")
	require.NoError(t, err)
	require.False(t, ok, "HSETNX must not overwrite an existing field")

	value, found, err := s.store.HGet(s.ctx, "1", "1v0")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "first", value)

	_, found, err = s.store.HGet(s.ctx, "1", "1v9")
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, s.store.HSet(s.ctx, "cache:x", map[string]string{"a": "1", "b": "2"}))
	all, err := s.store.HGetAll(s.ctx, "cache:x")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"a": "1", "b": "2"}, all)
}

func (s *RedisStoreSuite) TestHScanVisitsEveryField() {
	t := s.T()
	const n = 500
	values := make(map[string]string, n)
	for i := 0; i < n; i++ {
		values[models.VersionLabel(7, i)] = fmt.Sprintf("template %d", i)
	}
	require.NoError(t, s.store.HSet(s.ctx, "7", values))

	seen := make(map[string]string, n)
	it := s.store.HScan(s.ctx, "7")
	for it.Next(s.ctx) {
		seen[it.Field()] = it.Value()
	}
	require.NoError(t, it.Err())
	require.Equal(t, values, seen)
}

func (s *RedisStoreSuite) TestConcurrentAppendProducesDenseVersions() {
	t := s.T()
	repo := repository.NewPromptRepository(s.store, s.logger)

	created, err := repo.Create(s.ctx, 11, "t0")
	require.NoError(t, err)
	require.True(t, created)

	const writers = 8
	var wg sync.WaitGroup
	labels := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := repo.AppendVersion(s.ctx, 11, fmt.Sprintf("t-%d", i))
			if err == nil {
				labels <- v.Label
			}
		}(i)
	}
	wg.Wait()
	close(labels)

	var got []string
	for l := range labels {
		got = append(got, l)
	}
	require.Len(t, got, writers)

	latest, found, err := repo.LatestVersion(s.ctx, 11)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, writers, latest.Number)

	var numbers []int
	it := repo.ListVersions(s.ctx, 11)
	for it.Next(s.ctx) {
		numbers = append(numbers, it.Version().Number)
	}
	require.NoError(t, it.Err())
	sort.Ints(numbers)
	for i, n := range numbers {
		require.Equal(t, i, n)
	}
}

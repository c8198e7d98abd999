package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pricedex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

// clientName identifies pricedex connections in CLIENT LIST.
const clientName = "pricedex"

// Readiness polling backs off from minPoll to maxPoll.
const (
	minPoll = 50 * time.Millisecond
	maxPoll = time.Second
)

// Config holds connection parameters for a Redis 8+ server with the query engine.
type Config struct {
	Addrs    []string
	Username string
	Password string
	DB       int

	WriteTimeout time.Duration
}

// Store implements db.Store via rueidis.
type Store struct {
	client rueidis.Client
}

// NewStore connects to Redis. rueidis dials eagerly, so an unreachable
// server fails here; use WaitForReady to tolerate slow starts.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, fmt.Errorf("addrs is required")
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:      cfg.Addrs,
		Username:         cfg.Username,
		Password:         cfg.Password,
		SelectDB:         cfg.DB,
		ClientName:       clientName,
		DisableCache:     true,
		AlwaysRESP2:      true, // FT.SEARCH result parsing expects RESP2 array format
		ConnWriteTimeout: cfg.WriteTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", strings.Join(cfg.Addrs, ","), wrapErr(db.OpPing, err))
	}

	return &Store{client: client}, nil
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	cmd := s.client.B().Ping().Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return wrapErr(db.OpPing, err)
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady pings with growing pauses until the server answers or timeout
// expires. The timeout error carries the last ping failure.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := minPoll
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("search index not ready after %s: %w", timeout, err)
		case <-timer.C:
		}
		wait = min(wait*2, maxPoll)
	}
}

func (s *Store) do(ctx context.Context, cmd rueidis.Completed) rueidis.RedisResult {
	return s.client.Do(ctx, cmd)
}

func (s *Store) b() rueidis.Builder {
	return s.client.B()
}

// wrapErr tags transport failures with db.ErrUnavailable so callers can
// tell an unreachable backend from a rejected command.
func wrapErr(op db.Op, err error) error {
	return wrapKeyErr(op, "", err)
}

func wrapKeyErr(op db.Op, key string, err error) error {
	_, replied := rueidis.IsRedisErr(err)
	if !replied && !errors.Is(err, context.Canceled) {
		err = fmt.Errorf("%w: %w", db.ErrUnavailable, err)
	}
	return &db.Error{Op: op, Key: key, Err: err}
}

// isRedisErr reports whether err is a server reply mentioning substr, ignoring case.
func isRedisErr(err error, substr string) bool {
	re, ok := rueidis.IsRedisErr(err)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(re.Error()), strings.ToLower(substr))
}

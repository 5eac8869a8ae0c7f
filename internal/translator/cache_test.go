package translator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct {
	out   string
	err   error
	calls int
}

func (s *stubTranslator) Translate(_ context.Context, _, _ string) (string, error) {
	s.calls++
	return s.out, s.err
}

func TestCachedHit(t *testing.T) {
	t.Parallel()
	rdb, mock := redismock.NewClientMock()
	inner := &stubTranslator{out: "unused"}
	c := NewCached(inner, rdb, time.Hour, "test")

	mock.ExpectGet(c.Key("Hello", "Korean")).SetVal("안녕")

	out, err := c.Translate(context.Background(), "Hello", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "안녕", out)
	assert.Zero(t, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedMissStores(t *testing.T) {
	t.Parallel()
	rdb, mock := redismock.NewClientMock()
	inner := &stubTranslator{out: "안녕"}
	c := NewCached(inner, rdb, time.Hour, "test")
	key := c.Key("Hello", "Korean")

	mock.ExpectGet(key).RedisNil()
	mock.ExpectSet(key, "안녕", time.Hour).SetVal("OK")

	out, err := c.Translate(context.Background(), "Hello", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "안녕", out)
	assert.Equal(t, 1, inner.calls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedUnchangedNotStored(t *testing.T) {
	t.Parallel()
	rdb, mock := redismock.NewClientMock()
	inner := &stubTranslator{out: "Hello"}
	c := NewCached(inner, rdb, 0, "")
	mock.ExpectGet(c.Key("Hello", "Korean")).RedisNil()

	out, err := c.Translate(context.Background(), "Hello", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCachedReadErrorFallsThrough(t *testing.T) {
	t.Parallel()
	rdb, mock := redismock.NewClientMock()
	inner := &stubTranslator{out: "안녕"}
	c := NewCached(inner, rdb, time.Hour, "test")
	key := c.Key("Hello", "Korean")

	mock.ExpectGet(key).SetErr(errors.New("conn refused"))
	mock.ExpectSet(key, "안녕", time.Hour).SetErr(errors.New("conn refused"))

	out, err := c.Translate(context.Background(), "Hello", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "안녕", out)
}

func TestCachedInnerError(t *testing.T) {
	t.Parallel()
	rdb, mock := redismock.NewClientMock()
	inner := &stubTranslator{err: errors.New("down")}
	c := NewCached(inner, rdb, time.Hour, "test")
	mock.ExpectGet(c.Key("Hello", "Korean")).RedisNil()

	_, err := c.Translate(context.Background(), "Hello", "Korean")
	require.Error(t, err)
}

func TestCachedNilClientBypasses(t *testing.T) {
	t.Parallel()
	inner := &stubTranslator{out: "안녕"}
	c := NewCached(inner, nil, time.Hour, "test")
	out, err := c.Translate(context.Background(), "Hello", "Korean")
	require.NoError(t, err)
	assert.Equal(t, "안녕", out)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedKeyDistinguishesLanguage(t *testing.T) {
	c := NewCached(Passthrough{}, nil, 0, "")
	assert.NotEqual(t, c.Key("Hello", "Korean"), c.Key("Hello", "Japanese"))
	assert.Contains(t, c.Key("Hello", "Korean"), "bubblex:tr:")
}

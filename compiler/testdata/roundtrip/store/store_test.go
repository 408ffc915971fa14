package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile = struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func openAll(t *testing.T) map[string]*StorageService {
	t.Helper()
	ctx := context.Background()
	dir := t.TempDir()
	db, err := OpenSQLStorage(ctx, "sqlite", filepath.Join(dir, "kv.db"))
	require.NoError(t, err)
	file, err := OpenFileStorage(filepath.Join(dir, "kv.bin"))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, db.Close())
		assert.NoError(t, file.Close())
	})
	return map[string]*StorageService{"sql": db, "file": file}
}

func TestStorageService(t *testing.T) {
	ctx := context.Background()
	for name, s := range openAll(t) {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, []StorageKey{
				StorageKeyToken, StorageKeyRetry, StorageKeyLastSync,
				StorageKeyTags, StorageKeyProfile, StorageKeyRefetchInterval,
			}, s.Keys())

			assert.Nil(t, s.GetToken(ctx))
			s.SetToken(ctx, "abc")
			require.NotNil(t, s.GetToken(ctx))
			assert.Equal(t, "abc", *s.GetToken(ctx))
			s.RemoveToken(ctx)
			assert.False(t, s.Has(ctx, StorageKeyToken))

			s.SetProfile(ctx, profile{Name: "bob", Age: 3})
			got := s.GetProfile(ctx)
			require.NotNil(t, got)
			assert.Equal(t, profile{Name: "bob", Age: 3}, *got)

			s.SetRefetchInterval(ctx, struct {
				Interval int `json:"interval"`
			}{Interval: 5000})
			assert.Equal(t, 5000, s.GetRefetchInterval(ctx).Interval)

			synced := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
			retry, tags := 3, []string{"a", "b"}
			s.SetItems(ctx, StorageValues{Retry: &retry, Tags: &tags, LastSync: &synced})
			v := s.GetItems(ctx, StorageKeyRetry, StorageKeyTags, StorageKeyLastSync, StorageKeyToken)
			require.NotNil(t, v.Retry)
			assert.Equal(t, 3, *v.Retry)
			assert.Equal(t, []string{"a", "b"}, *v.Tags)
			assert.True(t, synced.Equal(*v.LastSync))
			assert.Nil(t, v.Token)
			assert.Nil(t, v.Profile, "keys not asked for stay nil")

			s.RemoveItems(ctx, StorageKeyRetry, StorageKeyTags)
			v = s.GetItems(ctx, StorageKeyRetry, StorageKeyTags, StorageKeyLastSync)
			assert.Nil(t, v.Retry)
			assert.Nil(t, v.Tags)
			assert.NotNil(t, v.LastSync)

			s.Clear(ctx)
			assert.Nil(t, s.GetProfile(ctx))
		})
	}
}

func TestFileStoragePersists(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.bin")
	s, err := OpenFileStorage(path)
	require.NoError(t, err)
	s.SetProfile(ctx, profile{Name: "ann", Age: 41})
	require.NoError(t, s.Close())

	s, err = OpenFileStorage(path)
	require.NoError(t, err)
	defer s.Close()
	got := s.GetProfile(ctx)
	require.NotNil(t, got)
	assert.Equal(t, "ann", got.Name)
	assert.Equal(t, 41, got.Age)
}

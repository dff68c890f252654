// SPDX-License-Identifier: MIT
package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectsBackend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	tests := []struct {
		name    string
		cfg     Config
		want    any
		wantErr bool
	}{
		{name: "default is memory", cfg: Config{}, want: &memoryCache{}},
		{name: "memory", cfg: Config{Backend: BackendMemory, CleanupInterval: time.Minute}, want: &memoryCache{}},
		{name: "none", cfg: Config{Backend: BackendNone}, want: noopCache{}},
		{name: "redis", cfg: Config{Backend: BackendRedis, RedisAddr: mr.Addr()}, want: &redisCache{}},
		{name: "badger", cfg: Config{Backend: BackendBadger, BadgerPath: t.TempDir()}, want: &badgerCache{}},
		{name: "redis without addr", cfg: Config{Backend: BackendRedis}, wantErr: true},
		{name: "badger without path", cfg: Config{Backend: BackendBadger}, wantErr: true},
		{name: "unknown backend", cfg: Config{Backend: "memcached"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			t.Cleanup(func() { _ = c.Close() })
			assert.IsType(t, tt.want, c)
		})
	}
}

package index

import (
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock_FreshRoot(t *testing.T) {
	layout := NewLayout(t.TempDir())

	lock, err := AcquireLock(layout, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(layout.LockPath())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))

	require.NoError(t, lock.Release())
	_, err = os.Stat(layout.LockPath())
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireLock_HeldByLiveProcess(t *testing.T) {
	layout := NewLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.LockPath(), []byte("12345"), 0644))

	// Given: a liveness probe that says the recorded holder is alive
	alwaysAlive := func(pid int) bool { return true }

	_, err := AcquireLock(layout, alwaysAlive)
	require.Error(t, err)

	var held *LockHeldError
	require.ErrorAs(t, err, &held)
	assert.Equal(t, 12345, held.PID)

	// And: the stale-looking record was not disturbed
	data, err := os.ReadFile(layout.LockPath())
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))
}

func TestAcquireLock_ReclaimsDeadHolder(t *testing.T) {
	layout := NewLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.LockPath(), []byte("12345"), 0644))

	neverAlive := func(pid int) bool { return false }

	lock, err := AcquireLock(layout, neverAlive)
	require.NoError(t, err)
	defer func() { _ = lock.Release() }()

	data, err := os.ReadFile(layout.LockPath())
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(os.Getpid()), string(data))
}

func TestAcquireLock_UnreadableRecord(t *testing.T) {
	layout := NewLayout(t.TempDir())
	require.NoError(t, os.WriteFile(layout.LockPath(), []byte("not-a-pid"), 0644))

	lock, err := AcquireLock(layout, func(int) bool { return true })
	require.NoError(t, err)
	_ = lock.Release()
}

func TestLockRelease_PreservesNewerHolder(t *testing.T) {
	layout := NewLayout(t.TempDir())

	lock, err := AcquireLock(layout, nil)
	require.NoError(t, err)

	// Given: a newer holder rewrote the record after pre-empting us
	require.NoError(t, os.WriteFile(layout.LockPath(), []byte("99999"), 0644))

	// When: the slow original holder releases
	require.NoError(t, lock.Release())

	// Then: the newer holder's record survives
	data, err := os.ReadFile(layout.LockPath())
	require.NoError(t, err)
	assert.Equal(t, "99999", string(data))
}

func TestProcessAlive_Self(t *testing.T) {
	assert.True(t, ProcessAlive(os.Getpid()))
}

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmit_UnderLimit(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 60)
	now := time.Now()

	for i := 0; i < 60; i++ {
		require.True(t, l.Admit("111111", now.Add(time.Duration(i)*100*time.Millisecond)), "call %d should be admitted", i+1)
	}
}

func TestAdmit_RejectsAtCap(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 60)
	now := time.Now()

	for i := 0; i < 60; i++ {
		require.True(t, l.Admit("111111", now))
	}

	// 61st call within the window is rejected and must not be recorded.
	assert.False(t, l.Admit("111111", now.Add(10*time.Second)))
	assert.False(t, l.Admit("111111", now.Add(11*time.Second)))
}

func TestAdmit_WindowSlides(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 60)
	now := time.Now()

	for i := 0; i < 60; i++ {
		require.True(t, l.Admit("111111", now))
	}
	require.False(t, l.Admit("111111", now.Add(30*time.Second)))

	// Once the original burst ages past the window, admission resumes.
	assert.True(t, l.Admit("111111", now.Add(61*time.Second)))
}

func TestAdmit_RejectionNotRecorded(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 2)
	now := time.Now()

	require.True(t, l.Admit("111111", now))
	require.True(t, l.Admit("111111", now))
	require.False(t, l.Admit("111111", now.Add(time.Second)))

	// The rejected call at +1s left no trace: after the first two events
	// expire, two fresh calls are admitted back to back.
	later := now.Add(61 * time.Second)
	assert.True(t, l.Admit("111111", later))
	assert.True(t, l.Admit("111111", later))
}

func TestAdmit_IdentifiersIndependent(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	now := time.Now()

	require.True(t, l.Admit("111111", now))
	require.False(t, l.Admit("111111", now))

	assert.True(t, l.Admit("222222", now), "another identifier is unaffected")
}

func TestClear(t *testing.T) {
	l := NewSlidingWindow(60*time.Second, 1)
	now := time.Now()

	require.True(t, l.Admit("111111", now))
	require.False(t, l.Admit("111111", now))

	l.Clear("111111")
	assert.True(t, l.Admit("111111", now))
}

package id

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New()
	b := New()

	assert.Len(t, a, 26)
	assert.True(t, IsValid(a))
	assert.NotEqual(t, a, b)
	// 单调熵保证同进程内有序
	assert.Less(t, a, b)
}

func TestNewConcurrent(t *testing.T) {
	const n = 100
	ids := make([]string, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ids[i] = New()
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for _, v := range ids {
		assert.False(t, seen[v], "duplicate id %s", v)
		seen[v] = true
	}
}

func TestIsValid(t *testing.T) {
	assert.False(t, IsValid("not-a-ulid"))
	assert.False(t, IsValid(""))
}

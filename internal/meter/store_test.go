package meter

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreate(t *testing.T) {
	t.Run("should return the same meter for the same id", func(t *testing.T) {
		s := NewStore()

		m1 := s.GetOrCreate("conn-1")
		m2 := s.GetOrCreate("conn-1")

		assert.Same(t, m1, m2)
		assert.Equal(t, 1, s.Len())
	})

	t.Run("should return distinct meters for distinct ids", func(t *testing.T) {
		s := NewStore()

		m1 := s.GetOrCreate("conn-1")
		m2 := s.GetOrCreate("conn-2")

		assert.NotSame(t, m1, m2)
		assert.Equal(t, "conn-1", m1.ID())
		assert.Equal(t, "conn-2", m2.ID())
	})

	t.Run("should never hand two instances to concurrent callers", func(t *testing.T) {
		s := NewStore()

		const goroutines = 100
		results := make([]*Meter, goroutines)

		var wg sync.WaitGroup
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = s.GetOrCreate("conn-1")
			}(i)
		}
		wg.Wait()

		for i := 1; i < goroutines; i++ {
			require.Same(t, results[0], results[i])
		}
	})
}

func TestRemove(t *testing.T) {
	t.Run("should report whether a meter existed", func(t *testing.T) {
		s := NewStore()
		s.GetOrCreate("conn-1")

		assert.True(t, s.Remove("conn-1"))
		assert.Equal(t, 0, s.Len())
	})

	t.Run("should be a no-op for an unknown id", func(t *testing.T) {
		s := NewStore()
		assert.False(t, s.Remove("never-connected"))
	})

	t.Run("should yield a fresh meter on the next GetOrCreate", func(t *testing.T) {
		s := NewStore()

		m := s.GetOrCreate("conn-1")
		_, err := m.AddReading(5.0, 1000)
		require.NoError(t, err)

		s.Remove("conn-1")
		fresh := s.GetOrCreate("conn-1")

		assert.NotSame(t, m, fresh)
		assert.Equal(t, 0, fresh.Count())
	})
}

func TestStoreSnapshot(t *testing.T) {
	t.Run("should order entries by connection id", func(t *testing.T) {
		s := NewStore()
		s.GetOrCreate("b")
		s.GetOrCreate("a")
		s.GetOrCreate("c")

		snap := s.Snapshot()
		require.Len(t, snap, 3)
		assert.Equal(t, "a", snap[0].ConnectionID)
		assert.Equal(t, "b", snap[1].ConnectionID)
		assert.Equal(t, "c", snap[2].ConnectionID)
	})

	t.Run("should survive concurrent mutation", func(t *testing.T) {
		s := NewStore()
		for i := 0; i < 10; i++ {
			s.GetOrCreate(fmt.Sprintf("conn-%d", i))
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			for i := 0; i < 200; i++ {
				s.GetOrCreate(fmt.Sprintf("extra-%d", i))
				s.Remove(fmt.Sprintf("extra-%d", i))
			}
		}()

		for i := 0; i < 200; i++ {
			snap := s.Snapshot()
			assert.GreaterOrEqual(t, len(snap), 10)
		}
		<-done
	})
}

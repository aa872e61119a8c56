package observability

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollector_Outcomes(t *testing.T) {
	c := NewCollector()

	a := c.Start("HandleFollow")
	b := c.Start("SendMessage")
	assert.Equal(t, int64(2), c.Stats().Active)
	assert.Equal(t, "HandleFollow", a.Op())

	a.Commit()
	b.Rollback()
	c.Start("HandleReaction").Fail()

	s := c.Stats()
	assert.Equal(t, int64(0), s.Active)
	assert.Equal(t, int64(3), s.Total)
	assert.Equal(t, int64(1), s.Committed)
	assert.Equal(t, int64(1), s.RolledBack)
	assert.Equal(t, int64(1), s.Failed)
	assert.InDelta(t, 100.0/3, s.SuccessRate, 1e-9)
}

func TestTransaction_FinishesOnce(t *testing.T) {
	c := NewCollector()
	tx := c.Start("op")
	tx.Commit()
	tx.Rollback()

	s := c.Stats()
	assert.Equal(t, int64(1), s.Total)
	assert.Equal(t, int64(1), s.Committed)
	assert.Zero(t, s.RolledBack)
}

func TestCollector_Concurrent(t *testing.T) {
	c := NewCollector()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Start("op").Commit()
		}()
	}
	wg.Wait()
	assert.Equal(t, int64(50), c.Stats().Committed)
	assert.Equal(t, float64(100), c.Stats().SuccessRate)
}

func TestCollector_Empty(t *testing.T) {
	s := NewCollector().Stats()
	assert.Zero(t, s.Total)
	assert.Zero(t, s.SuccessRate)
}

// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package observability

import (
	"sync/atomic"
	"time"
)

// Collector counts store transactions by outcome. It is safe for
// concurrent use.
type Collector struct {
	active     int64
	committed  int64
	rolledBack int64
	failed     int64
	totalNanos int64
}

// Stats is a snapshot of a Collector.
type Stats struct {
	Active          int64         `json:"active_transactions"`
	Total           int64         `json:"total_transactions"`
	Committed       int64         `json:"committed_transactions"`
	RolledBack      int64         `json:"rolled_back_transactions"`
	Failed          int64         `json:"failed_transactions"`
	AverageDuration time.Duration `json:"average_duration"`
	SuccessRate     float64       `json:"success_rate"`
}

// Transaction tracks one transaction from begin to its outcome.
type Transaction struct {
	c     *Collector
	op    string
	start time.Time
	done  int32
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Start records a new active transaction of operation op.
func (c *Collector) Start(op string) *Transaction {
	atomic.AddInt64(&c.active, 1)
	return &Transaction{c: c, op: op, start: time.Now()}
}

// Op returns the operation name the transaction was started with.
func (t *Transaction) Op() string { return t.op }

func (t *Transaction) finish(counter *int64) {
	if !atomic.CompareAndSwapInt32(&t.done, 0, 1) {
		return
	}
	atomic.AddInt64(&t.c.active, -1)
	atomic.AddInt64(counter, 1)
	atomic.AddInt64(&t.c.totalNanos, int64(time.Since(t.start)))
}

// Commit marks the transaction committed.
func (t *Transaction) Commit() { t.finish(&t.c.committed) }

// Rollback marks the transaction rolled back.
func (t *Transaction) Rollback() { t.finish(&t.c.rolledBack) }

// Fail marks a transaction that could not begin, commit or roll back.
func (t *Transaction) Fail() { t.finish(&t.c.failed) }

// Stats returns a snapshot of the counters.
func (c *Collector) Stats() Stats {
	s := Stats{
		Active:     atomic.LoadInt64(&c.active),
		Committed:  atomic.LoadInt64(&c.committed),
		RolledBack: atomic.LoadInt64(&c.rolledBack),
		Failed:     atomic.LoadInt64(&c.failed),
	}
	s.Total = s.Committed + s.RolledBack + s.Failed
	if s.Total > 0 {
		s.AverageDuration = time.Duration(atomic.LoadInt64(&c.totalNanos) / s.Total)
		s.SuccessRate = float64(s.Committed) / float64(s.Total) * 100
	}
	return s
}

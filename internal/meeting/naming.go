package meeting

import (
	"fmt"
	"sync"
	"time"
)

const nameLayout = "meeting_20060102_150405"

// GenerateName formats t as meeting_YYYYMMDD_HHMMSS.
func GenerateName(t time.Time) string {
	return t.Format(nameLayout)
}

// Namer hands out meeting names that are unique for the life of the process.
// Two sessions started within the same second get a numeric suffix.
type Namer struct {
	mu    sync.Mutex
	now   func() time.Time
	last  string
	count int
}

func NewNamer(now func() time.Time) *Namer {
	if now == nil {
		now = time.Now
	}
	return &Namer{now: now}
}

// Next returns a fresh name and the instant it was derived from.
func (n *Namer) Next() (string, time.Time) {
	n.mu.Lock()
	defer n.mu.Unlock()

	t := n.now()
	base := GenerateName(t)
	if base != n.last {
		n.last = base
		n.count = 1
		return base, t
	}

	n.count++
	return fmt.Sprintf("%s_%d", base, n.count), t
}

package tsched

// Priority is the urgency level attached to a task at submit time.
// Lower values are more urgent. It is immutable once the task is enqueued.
type Priority int

const (
	Critical Priority = iota
	High
	Normal
	Low
)

func (p Priority) String() string {
	switch p {
	case Critical:
		return "critical"
	case High:
		return "high"
	case Normal:
		return "normal"
	case Low:
		return "low"
	default:
		return "unknown"
	}
}

// Valid reports whether p is one of the defined levels.
func (p Priority) Valid() bool {
	return p >= Critical && p <= Low
}

package models

type QueryState int

const (
	QueryComposing QueryState = iota
	QuerySent
	QueryAwaiting
	QueryResolved
)

func (s QueryState) String() string {
	switch s {
	case QueryComposing:
		return "composing"
	case QuerySent:
		return "sent"
	case QueryAwaiting:
		return "awaiting"
	case QueryResolved:
		return "resolved"
	}
	return "unknown"
}

// InFlight reports whether a query is outstanding
func (s QueryState) InFlight() bool {
	return s == QuerySent || s == QueryAwaiting
}

// SessionSnapshot is a copy of the query session handed to renderers.
// Version increases with every published change.
type SessionSnapshot struct {
	Messages    []Message
	Draft       string
	State       QueryState
	Suggestions []string
	Version     uint64
}

// PendingCount returns how many pending indicators the transcript holds
func (s SessionSnapshot) PendingCount() int {
	n := 0
	for _, m := range s.Messages {
		if m.Role == Pending {
			n++
		}
	}
	return n
}

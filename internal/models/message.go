package models

import "time"

type Role int

const (
	User Role = iota
	Assistant
	Pending
)

func (r Role) String() string {
	switch r {
	case User:
		return "user"
	case Assistant:
		return "assistant"
	case Pending:
		return "pending"
	}
	return "unknown"
}

// Message is one transcript entry. A Pending message is the transient
// indicator shown while a query is outstanding.
type Message struct {
	ID        string
	Text      string
	Role      Role
	Timestamp time.Time
	// Records returned alongside an assistant answer
	Records []TestRecord
}

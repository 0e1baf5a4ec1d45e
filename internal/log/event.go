package log

// EventType enumerates all observable session events.
type EventType int

const (
	EventGenerationStarted EventType = iota
	EventGenerationFailed
	EventBoardsAdded
	EventBoardsReplaced
	EventBoardDeleted
	EventBoardMoved
	EventVulnerabilityChanged
	EventPolicyChanged
	EventBoardsCleared
	EventConstraintIgnored // a malformed bound was dropped
)

func (e EventType) String() string {
	switch e {
	case EventGenerationStarted:
		return "GenerationStarted"
	case EventGenerationFailed:
		return "GenerationFailed"
	case EventBoardsAdded:
		return "BoardsAdded"
	case EventBoardsReplaced:
		return "BoardsReplaced"
	case EventBoardDeleted:
		return "BoardDeleted"
	case EventBoardMoved:
		return "BoardMoved"
	case EventVulnerabilityChanged:
		return "VulnerabilityChanged"
	case EventPolicyChanged:
		return "PolicyChanged"
	case EventBoardsCleared:
		return "BoardsCleared"
	case EventConstraintIgnored:
		return "ConstraintIgnored"
	default:
		return "Unknown"
	}
}

// SessionEvent represents a single observable change to a board collection.
type SessionEvent struct {
	Seq     int       `json:"seq"`     // monotonic sequence number
	Session string    `json:"session"` // owning session id
	Type    EventType `json:"-"`
	Kind    string    `json:"type"`            // Type.String(), for JSON consumers
	Board   int       `json:"board,omitempty"` // board number (if applicable)
	Count   int       `json:"count,omitempty"` // collection size after the change
	Details string    `json:"details"`         // human-readable detail string
}

package matcher

// EventType describes a structural change to the pool.
type EventType int

const (
	// EventInsert: Item now sits at Index.
	EventInsert EventType = iota
	// EventRemove: Item was removed from Index.
	EventRemove
	// EventUpdate: Item at Index changed kind, score or payload.
	EventUpdate
	// EventReset: the whole pool was replaced or reordered. Index is -1.
	EventReset
)

func (t EventType) String() string {
	switch t {
	case EventInsert:
		return "insert"
	case EventRemove:
		return "remove"
	case EventUpdate:
		return "update"
	case EventReset:
		return "reset"
	}

	return "unknown"
}

type Event[L, R Payload] struct {
	Type  EventType
	Index int
	Item  *Item[L, R]
}

// Listener receives pool changes synchronously, before the mutating call returns.
type Listener[L, R Payload] interface {
	OnChange(ev Event[L, R])
}

type ListenerFunc[L, R Payload] func(ev Event[L, R])

func (f ListenerFunc[L, R]) OnChange(ev Event[L, R]) {
	f(ev)
}

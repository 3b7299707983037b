package ormlite

import "sync"

// ChangeAction is the kind of mutation a ChangeEvent reports.
type ChangeAction int

const (
	ActionInsert ChangeAction = iota
	ActionUpdate
	ActionDelete
	ActionUpsert
)

func (a ChangeAction) String() string {
	switch a {
	case ActionInsert:
		return "insert"
	case ActionUpdate:
		return "update"
	case ActionDelete:
		return "delete"
	case ActionUpsert:
		return "upsert"
	default:
		return "unknown"
	}
}

// ChangeEvent is emitted after a mutation that reported a positive
// affected-row count.
type ChangeEvent struct {
	Table  *TableDescriptor
	Action ChangeAction
}

// ChangeSubscriber receives change events synchronously, on the calling
// goroutine, after the SQL has completed and before the mutating call
// returns. A subscriber that panics or returns an error propagates it to
// the caller of the mutation.
type ChangeSubscriber func(event ChangeEvent) error

type changeNotifier struct {
	mu          sync.RWMutex
	subscribers []ChangeSubscriber
}

func newChangeNotifier() *changeNotifier {
	return &changeNotifier{}
}

func (n *changeNotifier) subscribe(sub ChangeSubscriber) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subscribers = append(n.subscribers, sub)
}

// dispatch fires sub after a mutation, but only when affected rows > 0.
func (n *changeNotifier) dispatch(td *TableDescriptor, action ChangeAction, affected int64) error {
	if affected <= 0 {
		return nil
	}
	n.mu.RLock()
	subs := make([]ChangeSubscriber, len(n.subscribers))
	copy(subs, n.subscribers)
	n.mu.RUnlock()

	event := ChangeEvent{Table: td, Action: action}
	for _, sub := range subs {
		if err := sub(event); err != nil {
			return err
		}
	}
	return nil
}

// Subscribe registers sub to be called after every successful mutation
// (affected_rows > 0) on this connection.
func (c *Connection) Subscribe(sub ChangeSubscriber) {
	c.notifier.subscribe(sub)
}

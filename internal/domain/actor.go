package domain

type ActorKind string

const (
	ActorAccount ActorKind = "account"
	ActorSystem  ActorKind = "system"
)

// Actor identifies who changed an order: a real account or a system process.
type Actor interface {
	Kind() ActorKind
	AccountID() (int64, bool)
	DisplayName() string
}

// AccountActor an action performed by a persisted account.
type AccountActor struct {
	ID   int64
	Name string
}

func (a AccountActor) Kind() ActorKind { return ActorAccount }

func (a AccountActor) AccountID() (int64, bool) { return a.ID, true }

func (a AccountActor) DisplayName() string { return a.Name }

// SystemActor an action performed without an account, e.g. a scheduled job.
type SystemActor struct {
	Label string
}

func (s SystemActor) Kind() ActorKind { return ActorSystem }

func (s SystemActor) AccountID() (int64, bool) { return 0, false }

func (s SystemActor) DisplayName() string { return s.Label }

// ActorOf builds the attribution for an account.
func ActorOf(a *Account) Actor {
	return AccountActor{ID: a.ID, Name: a.Name}
}

// Attribute copies the actor into a history entry.
func (e *OrderStatusEntry) Attribute(actor Actor) {
	e.ActorKind = actor.Kind()
	e.ActorName = actor.DisplayName()
	if id, ok := actor.AccountID(); ok {
		e.ActorID = id
	} else {
		e.ActorID = 0
	}
}

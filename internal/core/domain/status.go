package domain

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	StatusPending       OrderStatus = "PENDENTE"
	StatusInPreparation OrderStatus = "EM_PREPARO"
	StatusFinalized     OrderStatus = "FINALIZADO"
	StatusCanceled      OrderStatus = "CANCELADO"
)

// AllStatuses lists every status in workflow order.
var AllStatuses = []OrderStatus{StatusPending, StatusInPreparation, StatusFinalized, StatusCanceled}

// validTransitions defines the transitions reachable through order operations.
// Nothing moves an order from PENDENTE to EM_PREPARO here; that step belongs to
// a fulfilment actor outside this service.
var validTransitions = map[OrderStatus][]OrderStatus{
	StatusPending:       {StatusCanceled},
	StatusInPreparation: {StatusFinalized, StatusCanceled},
}

// CanTransitionTo reports whether a transition from current status to next is valid.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(validTransitions[s]) == 0
}

// Valid reports whether s is one of the known statuses.
func (s OrderStatus) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s OrderStatus) String() string { return string(s) }

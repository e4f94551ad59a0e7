package pipeline

// Kind distinguishes state-changing commands from read-only queries.
type Kind int

const (
	Command Kind = iota + 1
	Query
)

func (k Kind) String() string {
	switch k {
	case Command:
		return "command"
	case Query:
		return "query"
	default:
		return "unknown"
	}
}

// Request is one typed command or query. Implementations are immutable
// value structs; the payload is the struct itself.
type Request interface {
	// RequestName identifies the request type, e.g. "orders.create".
	// Handler registration and dispatch key on this name.
	RequestName() string

	// RequestKind reports whether the request is a Command or a Query.
	RequestKind() Kind
}

// Validatable is implemented by requests that declare validation rules.
// Validate must be pure: no mutation, no I/O. It returns every failure,
// not just the first one.
type Validatable interface {
	Validate() []Failure
}

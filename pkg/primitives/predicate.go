package primitives

// Predicate enumerates the comparison operations supported by field types.
type Predicate int

const (
	Equals Predicate = iota
	GreaterThan
	LessThan
	LessThanOrEqual
	GreaterThanOrEqual
	NotEqual
	Like
)

func (p Predicate) String() string {
	switch p {
	case Equals:
		return "="
	case GreaterThan:
		return ">"
	case LessThan:
		return "<"
	case LessThanOrEqual:
		return "<="
	case GreaterThanOrEqual:
		return ">="
	case NotEqual:
		return "<>"
	case Like:
		return "LIKE"
	default:
		return "UNKNOWN"
	}
}

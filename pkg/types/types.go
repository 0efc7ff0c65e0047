package types

// Type identifies the data type of a field. Every type serializes to a fixed
// number of bytes, which is what lets a page compute its slot count from the
// schema alone.
type Type int

const (
	IntType Type = iota
	StringType
	BoolType
	FloatType
	DecimalType
)

// Size returns the serialized width of the type in bytes. Returns 0 for an
// unknown type.
func (t Type) Size() uint32 {
	switch t {
	case IntType:
		return 8
	case StringType:
		return 4 + StringMaxSize
	case BoolType:
		return 1
	case FloatType:
		return 8
	case DecimalType:
		return 12
	default:
		return 0
	}
}

func (t Type) String() string {
	switch t {
	case IntType:
		return "INT_TYPE"
	case StringType:
		return "STRING_TYPE"
	case BoolType:
		return "BOOL_TYPE"
	case FloatType:
		return "FLOAT_TYPE"
	case DecimalType:
		return "DECIMAL_TYPE"
	default:
		return "UNKNOWN_TYPE"
	}
}

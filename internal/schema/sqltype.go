// Package schema describes the output columns of an access-log import: their
// semantic SQL types and how each one is derived from the raw log tokens.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the semantic type of a column. The set is closed; generators switch
// on it to pick a DDL fragment and a quoting rule.
type Kind int

const (
	KindInvalid Kind = iota
	KindString
	KindTimestamp
	KindFloat
	KindSmallInt
	KindUnsignedBigInt
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindTimestamp:
		return "timestamp"
	case KindFloat:
		return "float"
	case KindSmallInt:
		return "small-int"
	case KindUnsignedBigInt:
		return "unsigned-big-int"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// SQLType is a Kind plus its size. Length is only meaningful for KindString.
type SQLType struct {
	Kind   Kind
	Length int
}

func String(length int) SQLType { return SQLType{Kind: KindString, Length: length} }
func Timestamp() SQLType        { return SQLType{Kind: KindTimestamp} }
func Float() SQLType            { return SQLType{Kind: KindFloat} }
func SmallInt() SQLType         { return SQLType{Kind: KindSmallInt} }
func UnsignedBigInt() SQLType   { return SQLType{Kind: KindUnsignedBigInt} }

// String renders the canonical (MySQL) DDL fragment, e.g. "VARCHAR(255)".
func (t SQLType) String() string {
	switch t.Kind {
	case KindString:
		return fmt.Sprintf("VARCHAR(%d)", t.Length)
	case KindTimestamp:
		return "TIMESTAMP"
	case KindFloat:
		return "DOUBLE"
	case KindSmallInt:
		return "SMALLINT"
	case KindUnsignedBigInt:
		return "BIGINT UNSIGNED"
	default:
		return "INVALID"
	}
}

// Quoted reports whether values of this type are single-quoted in INSERT
// statements. String and timestamp values are; numeric values are not.
func (t SQLType) Quoted() bool {
	return t.Kind == KindString || t.Kind == KindTimestamp
}

// Numeric reports whether the type is rendered bare in INSERT statements.
func (t SQLType) Numeric() bool {
	switch t.Kind {
	case KindFloat, KindSmallInt, KindUnsignedBigInt:
		return true
	}
	return false
}

func (t SQLType) validate() error {
	switch t.Kind {
	case KindString:
		if t.Length <= 0 {
			return fmt.Errorf("string type needs a positive length, got %d", t.Length)
		}
	case KindTimestamp, KindFloat, KindSmallInt, KindUnsignedBigInt:
		if t.Length != 0 {
			return fmt.Errorf("%s type takes no length", t.Kind)
		}
	default:
		return fmt.Errorf("unsupported sql type %s", t.Kind)
	}
	return nil
}

// ParseSQLType parses a canonical DDL fragment back into a SQLType. Matching
// is case-insensitive and tolerant of extra inner whitespace.
func ParseSQLType(s string) (SQLType, error) {
	norm := strings.ToUpper(strings.Join(strings.Fields(s), " "))

	switch norm {
	case "TIMESTAMP":
		return Timestamp(), nil
	case "DOUBLE":
		return Float(), nil
	case "SMALLINT":
		return SmallInt(), nil
	case "BIGINT UNSIGNED":
		return UnsignedBigInt(), nil
	}

	if rest, ok := strings.CutPrefix(norm, "VARCHAR"); ok {
		rest = strings.TrimSpace(rest)
		if strings.HasPrefix(rest, "(") && strings.HasSuffix(rest, ")") {
			n, err := strconv.Atoi(strings.TrimSpace(rest[1 : len(rest)-1]))
			if err != nil || n <= 0 {
				return SQLType{}, fmt.Errorf("invalid varchar length in %q", s)
			}
			return String(n), nil
		}
	}
	return SQLType{}, fmt.Errorf("unsupported sql type %q", s)
}

func (t SQLType) MarshalText() ([]byte, error) {
	if err := t.validate(); err != nil {
		return nil, err
	}
	return []byte(t.String()), nil
}

func (t *SQLType) UnmarshalText(b []byte) error {
	parsed, err := ParseSQLType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

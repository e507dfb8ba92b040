package matcher

import (
	"fmt"
)

// Kind is the match state of an Item.
type Kind int

const (
	KindLeftOnly Kind = iota
	KindRightOnly
	KindExact
	KindToken
	KindFuzzy
	KindManual
	// KindRemoved marks a right-only item whose payload was absorbed by a left item.
	// It is purged from the pool when the pass ends.
	KindRemoved
)

var kindNames = [...]string{
	KindLeftOnly:  "left_only",
	KindRightOnly: "right_only",
	KindExact:     "exact",
	KindToken:     "token",
	KindFuzzy:     "fuzzy",
	KindManual:    "manual",
	KindRemoved:   "removed",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("unknown match kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}

	*k = parsed

	return nil
}

// IsSingle reports whether the item carries only one payload.
func (k Kind) IsSingle() bool {
	return k == KindLeftOnly || k == KindRightOnly
}

// IsMatch reports whether the item pairs a left and a right payload.
func (k Kind) IsMatch() bool {
	switch k {
	case KindExact, KindToken, KindFuzzy, KindManual:
		return true
	}

	return false
}

// Side identifies one of the two input collections.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}

	return "left"
}

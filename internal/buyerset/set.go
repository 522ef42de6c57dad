// Package buyerset holds the set of active buyers attached to a listing.
//
// The persisted form is the concatenation of every member's lowercase hex
// address (0x-prefixed, 42 characters) with no separator, in insertion
// order. In memory the set keeps an index for constant-time membership.
package buyerset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Width is the encoded length of one member.
const Width = 2 + 2*common.AddressLength

// Set is an insertion-ordered set of addresses. The zero value is empty and
// ready to use. Insert and Remove copy before mutating, so Set values can be
// passed around and stored without sharing state.
type Set struct {
	members []common.Address
	index   map[common.Address]int
}

// Encode returns the fixed-width encoding of a single address.
func Encode(address common.Address) string {
	return strings.ToLower(address.Hex())
}

// Parse decodes a persisted blob by walking it in fixed-width strides.
func Parse(blob string) (Set, error) {
	var s Set
	if blob == "" {
		return s, nil
	}
	if len(blob)%Width != 0 {
		return Set{}, fmt.Errorf("buyer set length %d is not a multiple of %d", len(blob), Width)
	}

	s.members = make([]common.Address, 0, len(blob)/Width)
	s.index = make(map[common.Address]int, len(blob)/Width)
	for i := 0; i < len(blob); i += Width {
		chunk := blob[i : i+Width]
		if !common.IsHexAddress(chunk) {
			return Set{}, fmt.Errorf("invalid buyer address at offset %d: %s", i, chunk)
		}
		address := common.HexToAddress(chunk)
		if _, ok := s.index[address]; ok {
			return Set{}, fmt.Errorf("duplicate buyer address at offset %d: %s", i, chunk)
		}
		s.index[address] = len(s.members)
		s.members = append(s.members, address)
	}
	return s, nil
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.members)
}

// Contains reports whether address is a member.
func (s Set) Contains(address common.Address) bool {
	_, ok := s.index[address]
	return ok
}

// Insert adds address when absent and reports whether the set changed.
func (s *Set) Insert(address common.Address) bool {
	if s.Contains(address) {
		return false
	}

	members := make([]common.Address, len(s.members), len(s.members)+1)
	copy(members, s.members)
	members = append(members, address)
	s.reset(members)
	return true
}

// Remove deletes address when present and reports whether the set changed.
// The relative order of the remaining members is preserved.
func (s *Set) Remove(address common.Address) bool {
	pos, ok := s.index[address]
	if !ok {
		return false
	}

	members := make([]common.Address, 0, len(s.members)-1)
	members = append(members, s.members[:pos]...)
	members = append(members, s.members[pos+1:]...)
	s.reset(members)
	return true
}

// Members returns a copy of the members in insertion order.
func (s Set) Members() []common.Address {
	out := make([]common.Address, len(s.members))
	copy(out, s.members)
	return out
}

// Each visits every member in insertion order over a snapshot, so visit may
// safely mutate the set it was called on.
func (s Set) Each(visit func(common.Address)) {
	for _, member := range s.Members() {
		visit(member)
	}
}

// String returns the persisted blob.
func (s Set) String() string {
	if len(s.members) == 0 {
		return ""
	}
	var b strings.Builder
	b.Grow(len(s.members) * Width)
	for _, member := range s.members {
		b.WriteString(Encode(member))
	}
	return b.String()
}

// MarshalText encodes the set as its persisted blob.
func (s Set) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a persisted blob.
func (s *Set) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Set) reset(members []common.Address) {
	index := make(map[common.Address]int, len(members))
	for i, member := range members {
		index[member] = i
	}
	s.members = members
	s.index = index
}

package buyerset

import (
	"encoding/json"
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

var (
	buyerA = common.HexToAddress("0xaAaAaAaaAaAaAaaAaAAAAAAAAaaaAaAaAaaAaaAa")
	buyerB = common.HexToAddress("0xbBbBBBBbbBBBbbbBbbBbbbbBBbBbbbbBbBbbBBbB")
	buyerC = common.HexToAddress("0xcccccccccccccccccccccccccccccccccccccccc")
)

func TestInsertRemove(t *testing.T) {
	var s Set
	if !s.Insert(buyerA) {
		t.Fatalf("first insert should mutate")
	}
	if s.Insert(buyerA) {
		t.Fatalf("duplicate insert should not mutate")
	}
	s.Insert(buyerB)
	s.Insert(buyerC)

	if s.Len() != 3 || len(s.String()) != 3*Width {
		t.Fatalf("unexpected size %d / %d", s.Len(), len(s.String()))
	}

	if !s.Remove(buyerB) {
		t.Fatalf("remove should mutate")
	}
	if s.Remove(buyerB) {
		t.Fatalf("second remove should not mutate")
	}

	want := Encode(buyerA) + Encode(buyerC)
	if s.String() != want {
		t.Fatalf("blob mismatch: %s != %s", s.String(), want)
	}
	if s.Contains(buyerB) || !s.Contains(buyerA) || !s.Contains(buyerC) {
		t.Fatalf("membership mismatch")
	}
}

func TestEncodeIsLowercaseFixedWidth(t *testing.T) {
	enc := Encode(buyerA)
	if len(enc) != Width {
		t.Fatalf("width %d != %d", len(enc), Width)
	}
	if enc != strings.ToLower(enc) {
		t.Fatalf("encoding not lowercase: %s", enc)
	}
}

func TestParseRoundTrip(t *testing.T) {
	var s Set
	s.Insert(buyerC)
	s.Insert(buyerA)

	parsed, err := Parse(s.String())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(parsed.Members(), []common.Address{buyerC, buyerA}) {
		t.Fatalf("members mismatch: %v", parsed.Members())
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	if _, err := Parse(Encode(buyerA)[:Width-1]); err == nil {
		t.Fatalf("expected width error")
	}
	if _, err := Parse(Encode(buyerA) + Encode(buyerA)); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := Parse(strings.Repeat("z", Width)); err == nil {
		t.Fatalf("expected address error")
	}
}

func TestEmptySetVisitsNothing(t *testing.T) {
	s, err := Parse("")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	calls := 0
	s.Each(func(common.Address) { calls++ })
	if calls != 0 {
		t.Fatalf("expected no visits, got %d", calls)
	}
}

func TestCopiesDoNotShareState(t *testing.T) {
	var original Set
	original.Insert(buyerA)

	copied := original
	copied.Insert(buyerB)
	copied.Remove(buyerA)

	if original.Len() != 1 || !original.Contains(buyerA) || original.Contains(buyerB) {
		t.Fatalf("original mutated through copy: %s", original)
	}
}

func TestEachAllowsMutation(t *testing.T) {
	var s Set
	s.Insert(buyerA)
	s.Insert(buyerB)

	var visited []common.Address
	s.Each(func(addr common.Address) {
		visited = append(visited, addr)
		s.Remove(addr)
	})
	if len(visited) != 2 || s.Len() != 0 {
		t.Fatalf("visited %v, left %d", visited, s.Len())
	}
}

func TestRandomHistoryMatchesModel(t *testing.T) {
	pool := []common.Address{buyerA, buyerB, buyerC}
	expected := map[common.Address]bool{}
	rng := rand.New(rand.NewSource(7))

	var s Set
	for i := 0; i < 500; i++ {
		addr := pool[rng.Intn(len(pool))]
		if rng.Intn(2) == 0 {
			s.Insert(addr)
			expected[addr] = true
		} else {
			s.Remove(addr)
			delete(expected, addr)
		}

		if s.Len()*Width != len(s.String()) {
			t.Fatalf("step %d: len %d blob %d", i, s.Len(), len(s.String()))
		}
		for _, candidate := range pool {
			if s.Contains(candidate) != expected[candidate] {
				t.Fatalf("step %d: contains(%s) mismatch", i, candidate.Hex())
			}
		}
	}
}

func TestJSONUsesBlob(t *testing.T) {
	var s Set
	s.Insert(buyerA)

	data, err := json.Marshal(struct {
		Buyers Set `json:"buyers"`
	}{s})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `{"buyers":"`+Encode(buyerA)+`"}` {
		t.Fatalf("unexpected json %s", data)
	}

	var decoded struct {
		Buyers Set `json:"buyers"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !decoded.Buyers.Contains(buyerA) {
		t.Fatalf("decoded set missing buyer")
	}
}

package dispatch

import (
	"context"
	"errors"
	"math/big"
	"reflect"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"bluechipScope/internal/contract"
	"bluechipScope/internal/contract/contracttest"
	"bluechipScope/internal/model"
	"bluechipScope/internal/reconcile"
	"bluechipScope/internal/registry"
	"bluechipScope/internal/storage/memory"
)

var (
	market     = common.HexToAddress("0x1111111111111111111111111111111111111111")
	dai        = common.HexToAddress("0x6B175474E89094C44Da98b954EedeAC495271d0F")
	collection = common.HexToAddress("0xBC4CA0EdA7647A8aB7C2061c2E118A18a936f13D")
	seller     = common.HexToAddress("0x3333333333333333333333333333333333333333")
	creator    = common.HexToAddress("0x4444444444444444444444444444444444444444")
	buyer      = common.HexToAddress("0xAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaaAAaa")
	other      = common.HexToAddress("0xBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBbBb")
)

func ether(v int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(v), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func setup(t *testing.T) (*Dispatcher, *contracttest.Oracle, *memory.Store) {
	t.Helper()
	oracle := contracttest.New()
	oracle.SetToken(dai, contracttest.Token{Symbol: contracttest.Str("DAI"), Decimals: contracttest.U8(18)})
	oracle.SetToken(collection, contracttest.Token{Name: contracttest.Str("BoredApeYachtClub")})
	oracle.SetListing(7, contract.ListingState{
		Seller:          seller,
		Collection:      collection,
		TokenID:         big.NewInt(1),
		Listed:          true,
		PaymentToken:    dai,
		ReservePrice:    ether(1000),
		PriceMultiplier: big.NewInt(100),
		Amount:          big.NewInt(0),
		FractionsCount:  big.NewInt(0),
		Fee:             big.NewInt(0),
	})

	store := memory.NewStore()
	reg := registry.New(store, oracle, nil)
	rec := reconcile.New(store, oracle, reg, nil)
	return New(store, rec, nil), oracle, store
}

func event(kind model.EventKind, block uint64, account common.Address) model.Event {
	return model.Event{
		Kind:        kind,
		Contract:    market,
		ListingID:   big.NewInt(7),
		Account:     account,
		BlockNumber: block,
		Timestamp:   1_700_000_000 + block,
	}
}

func latestBlock(t *testing.T, store *memory.Store) uint64 {
	t.Helper()
	counter, found, err := store.LoadCounter(context.Background(), model.LatestBlockCounter)
	if err != nil || !found {
		t.Fatalf("latest block counter missing: found=%v err=%v", found, err)
	}
	return counter.Value
}

func TestJoinThenLeave(t *testing.T) {
	d, oracle, store := setup(t)
	ctx := context.Background()
	positionID := model.UserListingID(model.AddressID(buyer), "7")

	oracle.SetBalance(7, buyer, ether(500))
	if err := d.Handle(ctx, event(model.EventJoin, 10, buyer)); err != nil {
		t.Fatalf("join: %v", err)
	}
	position, found, _ := store.LoadUserListing(ctx, positionID)
	if !found || position.Ownership.String() != "0.5" {
		t.Fatalf("unexpected position after join: found=%v %+v", found, position)
	}
	listing, _, _ := store.LoadListing(ctx, "7")
	if listing.BuyersCount != 1 || !listing.Buyers.Contains(buyer) {
		t.Fatalf("buyer not tracked: %+v", listing)
	}
	if latestBlock(t, store) != 10 {
		t.Fatalf("latest block not updated")
	}

	oracle.SetBalance(7, buyer, big.NewInt(0))
	if err := d.Handle(ctx, event(model.EventLeave, 11, buyer)); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if _, found, _ := store.LoadUserListing(ctx, positionID); found {
		t.Fatalf("position should be deleted after leave")
	}
	listing, _, _ = store.LoadListing(ctx, "7")
	if listing.BuyersCount != 0 || listing.Buyers.String() != "" {
		t.Fatalf("buyer still tracked: %+v", listing)
	}
}

func TestListedRegistersCurrencyOnce(t *testing.T) {
	d, oracle, store := setup(t)
	ctx := context.Background()
	oracle.SetListing(8, contract.ListingState{
		Seller:       seller,
		Collection:   collection,
		TokenID:      big.NewInt(2),
		PaymentToken: dai,
		ReservePrice: ether(10),
	})

	first := event(model.EventListed, 5, creator)
	second := event(model.EventListed, 6, creator)
	second.ListingID = big.NewInt(8)
	for _, ev := range []model.Event{first, second} {
		if err := d.Handle(ctx, ev); err != nil {
			t.Fatalf("listed %s: %v", ev.ListingID, err)
		}
	}
	if calls := oracle.MetadataCalls(dai); calls > 3 {
		t.Fatalf("currency metadata read %d times across two listings", calls)
	}
	listing, _, _ := store.LoadListing(ctx, "7")
	if listing.Creator != model.AddressID(creator) {
		t.Fatalf("creator not seeded: %s", listing.Creator)
	}
}

func TestAcquiredFansOut(t *testing.T) {
	d, oracle, store := setup(t)
	ctx := context.Background()

	oracle.SetBalance(7, buyer, ether(600))
	oracle.SetBalance(7, other, ether(400))
	for i, b := range []common.Address{buyer, other} {
		if err := d.Handle(ctx, event(model.EventJoin, uint64(20+i), b)); err != nil {
			t.Fatalf("join: %v", err)
		}
	}

	oracle.UpdateListing(7, func(s *contract.ListingState) {
		s.State = 1
		s.ReservePrice = ether(2000)
	})
	if err := d.Handle(ctx, event(model.EventAcquired, 30, common.Address{})); err != nil {
		t.Fatalf("acquired: %v", err)
	}

	for b, want := range map[common.Address]string{buyer: "0.3", other: "0.2"} {
		position, found, _ := store.LoadUserListing(ctx, model.UserListingID(model.AddressID(b), "7"))
		if !found || position.Ownership.String() != want {
			t.Fatalf("position of %s not refreshed: found=%v ownership=%s", b.Hex(), found, position.Ownership)
		}
	}
	listing, _, _ := store.LoadListing(ctx, "7")
	if listing.Status != model.ListingAcquired || listing.BuyersCount != 2 {
		t.Fatalf("unexpected listing after acquisition: %+v", listing)
	}
}

func TestClaimKeepsZeroPositionAfterAcquisition(t *testing.T) {
	d, oracle, store := setup(t)
	ctx := context.Background()

	oracle.SetBalance(7, buyer, ether(500))
	if err := d.Handle(ctx, event(model.EventJoin, 1, buyer)); err != nil {
		t.Fatalf("join: %v", err)
	}
	oracle.UpdateListing(7, func(s *contract.ListingState) { s.State = 2 })
	oracle.SetBalance(7, buyer, big.NewInt(0))
	if err := d.Handle(ctx, event(model.EventClaim, 2, buyer)); err != nil {
		t.Fatalf("claim: %v", err)
	}

	position, found, _ := store.LoadUserListing(ctx, model.UserListingID(model.AddressID(buyer), "7"))
	if !found || !position.Amount.IsZero() {
		t.Fatalf("claimed position should remain: found=%v %+v", found, position)
	}
	listing, _, _ := store.LoadListing(ctx, "7")
	if listing.BuyersCount != 1 {
		t.Fatalf("claim must not touch membership, got %d buyers", listing.BuyersCount)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	events := []model.Event{
		event(model.EventListed, 1, creator),
		event(model.EventJoin, 2, buyer),
		event(model.EventJoin, 3, other),
		event(model.EventRelisted, 4, common.Address{}),
		event(model.EventPayout, 5, common.Address{}),
		event(model.EventClaim, 6, buyer),
	}

	run := func(times int) *memory.Store {
		d, oracle, store := setup(t)
		oracle.SetBalance(7, buyer, ether(100))
		oracle.SetBalance(7, other, ether(300))
		for _, ev := range events {
			for i := 0; i < times; i++ {
				if err := d.Handle(context.Background(), ev); err != nil {
					t.Fatalf("%s: %v", ev.Kind, err)
				}
			}
		}
		return store
	}

	once, twice := run(1), run(2)
	ctx := context.Background()
	a, _, _ := once.LoadListing(ctx, "7")
	b, _, _ := twice.LoadListing(ctx, "7")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("listing differs after replay:\n%+v\n%+v", a, b)
	}
	if !reflect.DeepEqual(once.UserListings(), twice.UserListings()) {
		t.Fatalf("positions differ after replay")
	}
	if latestBlock(t, once) != 6 || latestBlock(t, twice) != 6 {
		t.Fatalf("unexpected latest block")
	}
}

func TestHandleRejectsBadEvents(t *testing.T) {
	d, _, store := setup(t)
	ctx := context.Background()

	if err := d.Handle(ctx, model.Event{Kind: model.EventListed}); err == nil {
		t.Fatalf("expected error for missing listing id")
	}
	if err := d.Handle(ctx, event("Transfer", 1, common.Address{})); err == nil {
		t.Fatalf("expected error for unknown kind")
	}

	missing := event(model.EventPayout, 2, common.Address{})
	missing.ListingID = big.NewInt(404)
	err := d.Handle(ctx, missing)
	if !errors.Is(err, reconcile.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
	if latestBlock(t, store) != 2 {
		t.Fatalf("counter should be written before reconciliation")
	}
}

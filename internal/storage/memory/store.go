// Package memory is an in-process Store used by tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"

	"bluechipScope/internal/model"
	"bluechipScope/internal/storage"
)

// Store keeps every record kind in its own map.
type Store struct {
	mu           sync.RWMutex
	currencies   map[string]model.Currency
	collections  map[string]model.Collection
	nfts         map[string]model.Nft
	listings     map[string]model.Listing
	userListings map[string]model.UserListing
	counters     map[string]model.Counter
}

var _ storage.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		currencies:   make(map[string]model.Currency),
		collections:  make(map[string]model.Collection),
		nfts:         make(map[string]model.Nft),
		listings:     make(map[string]model.Listing),
		userListings: make(map[string]model.UserListing),
		counters:     make(map[string]model.Counter),
	}
}

func (s *Store) LoadCurrency(_ context.Context, id string) (model.Currency, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.currencies[id]
	return v, ok, nil
}

func (s *Store) SaveCurrency(_ context.Context, currency model.Currency) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currencies[currency.ID] = currency
	return nil
}

func (s *Store) LoadCollection(_ context.Context, id string) (model.Collection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.collections[id]
	return v, ok, nil
}

func (s *Store) SaveCollection(_ context.Context, collection model.Collection) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection.ID] = collection
	return nil
}

func (s *Store) LoadNft(_ context.Context, id string) (model.Nft, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.nfts[id]
	return v, ok, nil
}

func (s *Store) SaveNft(_ context.Context, nft model.Nft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nfts[nft.ID] = nft
	return nil
}

func (s *Store) LoadListing(_ context.Context, id string) (model.Listing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.listings[id]
	return v, ok, nil
}

func (s *Store) SaveListing(_ context.Context, listing model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listings[listing.ID] = listing
	return nil
}

func (s *Store) LoadUserListing(_ context.Context, id string) (model.UserListing, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.userListings[id]
	return v, ok, nil
}

func (s *Store) SaveUserListing(_ context.Context, userListing model.UserListing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userListings[userListing.ID] = userListing
	return nil
}

func (s *Store) DeleteUserListing(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.userListings, id)
	return nil
}

func (s *Store) LoadCounter(_ context.Context, id string) (model.Counter, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.counters[id]
	return v, ok, nil
}

func (s *Store) SaveCounter(_ context.Context, counter model.Counter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.counters[counter.ID] = counter
	return nil
}

// UserListings returns every stored position ordered by id.
func (s *Store) UserListings() []model.UserListing {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.UserListing, 0, len(s.userListings))
	for _, v := range s.userListings {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"bluechipScope/internal/buyerset"
	"bluechipScope/internal/model"
	"bluechipScope/internal/storage"
)

// Store provides Postgres persistence for the marketplace projection.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Store = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate creates any missing tables and indexes.
func (s *Store) Migrate(ctx context.Context) error {
	batch := &pgx.Batch{}
	statements := schemaStatements()
	for _, stmt := range statements {
		batch.Queue(stmt)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for i := range statements {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}

func (s *Store) LoadCurrency(ctx context.Context, id string) (model.Currency, bool, error) {
	currency := model.Currency{ID: id}
	row := s.pool.QueryRow(ctx, `SELECT name, symbol, decimals FROM currencies WHERE id=$1`, id)
	if err := row.Scan(&currency.Name, &currency.Symbol, &currency.Decimals); err != nil {
		return notFound(model.Currency{}, err)
	}
	return currency, true, nil
}

func (s *Store) SaveCurrency(ctx context.Context, currency model.Currency) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO currencies (id, name, symbol, decimals, created_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol,
			decimals = EXCLUDED.decimals
	`, currency.ID, currency.Name, currency.Symbol, currency.Decimals)
	return err
}

func (s *Store) LoadCollection(ctx context.Context, id string) (model.Collection, bool, error) {
	collection := model.Collection{ID: id}
	row := s.pool.QueryRow(ctx, `SELECT name, symbol FROM collections WHERE id=$1`, id)
	if err := row.Scan(&collection.Name, &collection.Symbol); err != nil {
		return notFound(model.Collection{}, err)
	}
	return collection, true, nil
}

func (s *Store) SaveCollection(ctx context.Context, collection model.Collection) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO collections (id, name, symbol, created_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			symbol = EXCLUDED.symbol
	`, collection.ID, collection.Name, collection.Symbol)
	return err
}

func (s *Store) LoadNft(ctx context.Context, id string) (model.Nft, bool, error) {
	nft := model.Nft{ID: id}
	row := s.pool.QueryRow(ctx, `SELECT collection, token_id::text, token_uri FROM nfts WHERE id=$1`, id)
	if err := row.Scan(&nft.Collection, &nft.TokenID, &nft.TokenURI); err != nil {
		return notFound(model.Nft{}, err)
	}
	return nft, true, nil
}

func (s *Store) SaveNft(ctx context.Context, nft model.Nft) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO nfts (id, collection, token_id, token_uri, updated_at)
		VALUES ($1, $2, $3::numeric, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			token_uri = EXCLUDED.token_uri,
			updated_at = now()
	`, nft.ID, nft.Collection, nft.TokenID, nft.TokenURI)
	return err
}

func (s *Store) LoadListing(ctx context.Context, id string) (model.Listing, bool, error) {
	l := model.Listing{ID: id}
	var (
		timestamp                                      int64
		fee, priceMultiplier, reservePrice, creatorFee string
		amount, sellerNet, sellerFee, creatorFeeAmount string
		fractionsCount                                 *string
		status, buyers                                 string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT timestamp, creator, target, listed, payment_token,
			fee::text, price_multiplier::text, extra,
			reserve_price::text, creator_fee::text, amount::text,
			fractions, fractions_count::text, status, seller,
			seller_net_amount::text, seller_fee_amount::text, creator_fee_amount::text,
			buyers_count, buyers
		FROM listings WHERE id=$1
	`, id)
	err := row.Scan(
		&timestamp, &l.Creator, &l.Target, &l.Listed, &l.PaymentToken,
		&fee, &priceMultiplier, &l.Extra,
		&reservePrice, &creatorFee, &amount,
		&l.Fractions, &fractionsCount, &status, &l.Seller,
		&sellerNet, &sellerFee, &creatorFeeAmount,
		&l.BuyersCount, &buyers,
	)
	if err != nil {
		return notFound(model.Listing{}, err)
	}

	l.Timestamp = uint64(timestamp)
	l.Status = model.ListingStatus(status)
	if l.Buyers, err = buyerset.Parse(buyers); err != nil {
		return model.Listing{}, false, fmt.Errorf("listing %s: %w", id, err)
	}
	if l.FractionsCount, err = parseNullDecimal(fractionsCount); err != nil {
		return model.Listing{}, false, fmt.Errorf("listing %s: fractions_count: %w", id, err)
	}

	targets := []struct {
		dst *decimal.Decimal
		src string
	}{
		{&l.Fee, fee},
		{&l.PriceMultiplier, priceMultiplier},
		{&l.ReservePrice, reservePrice},
		{&l.CreatorFee, creatorFee},
		{&l.Amount, amount},
		{&l.SellerNetAmount, sellerNet},
		{&l.SellerFeeAmount, sellerFee},
		{&l.CreatorFeeAmount, creatorFeeAmount},
	}
	for _, target := range targets {
		if *target.dst, err = decimal.NewFromString(target.src); err != nil {
			return model.Listing{}, false, fmt.Errorf("listing %s: parse %q: %w", id, target.src, err)
		}
	}
	return l, true, nil
}

// SaveListing upserts a listing. The creation-only columns are never
// overwritten once the row exists.
func (s *Store) SaveListing(ctx context.Context, l model.Listing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO listings (
			id, timestamp, creator, target, listed, payment_token, fee, price_multiplier, extra,
			reserve_price, creator_fee, amount, fractions, fractions_count, status, seller,
			seller_net_amount, seller_fee_amount, creator_fee_amount, buyers_count, buyers, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7::numeric,$8::numeric,$9,$10::numeric,$11::numeric,$12::numeric,
			$13,$14::numeric,$15,$16,$17::numeric,$18::numeric,$19::numeric,$20,$21,now())
		ON CONFLICT (id) DO UPDATE SET
			reserve_price = EXCLUDED.reserve_price,
			creator_fee = EXCLUDED.creator_fee,
			amount = EXCLUDED.amount,
			fractions = EXCLUDED.fractions,
			fractions_count = EXCLUDED.fractions_count,
			status = EXCLUDED.status,
			seller = EXCLUDED.seller,
			seller_net_amount = EXCLUDED.seller_net_amount,
			seller_fee_amount = EXCLUDED.seller_fee_amount,
			creator_fee_amount = EXCLUDED.creator_fee_amount,
			buyers_count = EXCLUDED.buyers_count,
			buyers = EXCLUDED.buyers,
			updated_at = now()
	`,
		l.ID,
		int64(l.Timestamp),
		l.Creator,
		l.Target,
		l.Listed,
		l.PaymentToken,
		l.Fee.String(),
		l.PriceMultiplier.String(),
		l.Extra,
		l.ReservePrice.String(),
		l.CreatorFee.String(),
		l.Amount.String(),
		l.Fractions,
		nullDecimalText(l.FractionsCount),
		string(l.Status),
		l.Seller,
		l.SellerNetAmount.String(),
		l.SellerFeeAmount.String(),
		l.CreatorFeeAmount.String(),
		l.BuyersCount,
		l.Buyers.String(),
	)
	return err
}

func (s *Store) LoadUserListing(ctx context.Context, id string) (model.UserListing, bool, error) {
	ul := model.UserListing{ID: id}
	var (
		ownership, amount string
		fractionsCount    *string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT buyer, listed, listing, ownership::text, amount::text, fractions_count::text
		FROM user_listings WHERE id=$1
	`, id)
	if err := row.Scan(&ul.Buyer, &ul.Listed, &ul.Listing, &ownership, &amount, &fractionsCount); err != nil {
		return notFound(model.UserListing{}, err)
	}

	var err error
	if ul.Ownership, err = decimal.NewFromString(ownership); err != nil {
		return model.UserListing{}, false, fmt.Errorf("user listing %s: ownership: %w", id, err)
	}
	if ul.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.UserListing{}, false, fmt.Errorf("user listing %s: amount: %w", id, err)
	}
	if ul.FractionsCount, err = parseNullDecimal(fractionsCount); err != nil {
		return model.UserListing{}, false, fmt.Errorf("user listing %s: fractions_count: %w", id, err)
	}
	return ul, true, nil
}

func (s *Store) SaveUserListing(ctx context.Context, ul model.UserListing) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_listings (id, buyer, listed, listing, ownership, amount, fractions_count, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7::numeric, now())
		ON CONFLICT (id) DO UPDATE SET
			ownership = EXCLUDED.ownership,
			amount = EXCLUDED.amount,
			fractions_count = EXCLUDED.fractions_count,
			updated_at = now()
	`,
		ul.ID,
		ul.Buyer,
		ul.Listed,
		ul.Listing,
		ul.Ownership.String(),
		ul.Amount.String(),
		nullDecimalText(ul.FractionsCount),
	)
	return err
}

func (s *Store) DeleteUserListing(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM user_listings WHERE id=$1`, id)
	return err
}

func (s *Store) LoadCounter(ctx context.Context, id string) (model.Counter, bool, error) {
	if id == "" {
		return model.Counter{}, false, fmt.Errorf("counter id required")
	}
	var value int64
	row := s.pool.QueryRow(ctx, `SELECT value FROM counters WHERE id=$1`, id)
	if err := row.Scan(&value); err != nil {
		return notFound(model.Counter{}, err)
	}
	return model.Counter{ID: id, Value: uint64(value)}, true, nil
}

func (s *Store) SaveCounter(ctx context.Context, counter model.Counter) error {
	if counter.ID == "" {
		return fmt.Errorf("counter id required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO counters (id, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET value = EXCLUDED.value, updated_at = now()
	`, counter.ID, int64(counter.Value))
	return err
}

func notFound[T any](zero T, err error) (T, bool, error) {
	if errors.Is(err, pgx.ErrNoRows) {
		return zero, false, nil
	}
	return zero, false, err
}

func parseNullDecimal(text *string) (decimal.NullDecimal, error) {
	if text == nil {
		return decimal.NullDecimal{}, nil
	}
	value, err := decimal.NewFromString(*text)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(value), nil
}

func nullDecimalText(value decimal.NullDecimal) *string {
	if !value.Valid {
		return nil
	}
	text := value.Decimal.String()
	return &text
}

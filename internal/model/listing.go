package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"bluechipScope/internal/buyerset"
)

// ListingStatus mirrors the contract's listing state enum.
type ListingStatus string

const (
	ListingCreated  ListingStatus = "CREATED"
	ListingAcquired ListingStatus = "ACQUIRED"
	ListingEnded    ListingStatus = "ENDED"
)

// ListingStatusFromCode maps the raw state code to a status. Codes outside
// the known range are an error, never a default.
func ListingStatusFromCode(code uint8) (ListingStatus, error) {
	switch code {
	case 0:
		return ListingCreated, nil
	case 1:
		return ListingAcquired, nil
	case 2:
		return ListingEnded, nil
	default:
		return "", fmt.Errorf("unknown listing state %d", code)
	}
}

// Listing is the projection of one marketplace listing.
//
// Timestamp, Creator, Target, Listed, PaymentToken, Fee, PriceMultiplier and
// Extra are written once when the record is created. Everything else is
// refreshed from the contract on every reconciliation.
type Listing struct {
	ID              string          `json:"id"`
	Timestamp       uint64          `json:"timestamp"`
	Creator         string          `json:"creator"`
	Target          string          `json:"target"`
	Listed          bool            `json:"listed"`
	PaymentToken    string          `json:"payment_token"`
	Fee             decimal.Decimal `json:"fee"`
	PriceMultiplier decimal.Decimal `json:"price_multiplier"`
	Extra           string          `json:"extra"`

	ReservePrice     decimal.Decimal     `json:"reserve_price"`
	CreatorFee       decimal.Decimal     `json:"creator_fee"`
	Amount           decimal.Decimal     `json:"amount"`
	Fractions        *string             `json:"fractions,omitempty"`
	FractionsCount   decimal.NullDecimal `json:"fractions_count"`
	Status           ListingStatus       `json:"status"`
	Seller           string              `json:"seller"`
	SellerNetAmount  decimal.Decimal     `json:"seller_net_amount"`
	SellerFeeAmount  decimal.Decimal     `json:"seller_fee_amount"`
	CreatorFeeAmount decimal.Decimal     `json:"creator_fee_amount"`

	BuyersCount int          `json:"buyers_count"`
	Buyers      buyerset.Set `json:"buyers"`
}

// UserListing is a buyer's position in a listing, keyed by "<buyer>#<listingId>".
type UserListing struct {
	ID             string              `json:"id"`
	Buyer          string              `json:"buyer"`
	Listed         bool                `json:"listed"`
	Listing        string              `json:"listing"`
	Ownership      decimal.Decimal     `json:"ownership"`
	Amount         decimal.Decimal     `json:"amount"`
	FractionsCount decimal.NullDecimal `json:"fractions_count"`
}

// UserListingID builds the composite key of a position.
func UserListingID(buyer string, listingID string) string {
	return buyer + "#" + listingID
}

// NftID builds the composite key of an NFT.
func NftID(collection string, tokenID string) string {
	return collection + "#" + tokenID
}

package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"solana-token-info/internal/domain"
)

// NewSnapshot flattens a lookup result into a snapshot row with a fresh ID.
func NewSnapshot(info *domain.TokenInfo) (*domain.TokenSnapshot, error) {
	if info == nil {
		return nil, ErrInvalidInput
	}

	payload, err := json.Marshal(info)
	if err != nil {
		return nil, fmt.Errorf("marshal token info: %w", err)
	}

	s := &domain.TokenSnapshot{
		ID:        uuid.NewString(),
		Mint:      info.Mint.String(),
		Outcome:   info.Outcome,
		Payload:   payload,
		FetchedAt: info.FetchedAt,
	}

	if m := info.MintAccount; m != nil {
		supply := strconv.FormatUint(m.Supply, 10)
		decimals := int(m.Decimals)
		s.Supply = &supply
		s.Decimals = &decimals
	}
	if md := info.Metadata; md != nil {
		name, symbol, uri := md.Name, md.Symbol, md.URI
		s.Name = &name
		s.Symbol = &symbol
		s.URI = &uri
	}

	return s, nil
}

// Validate checks the fields every store requires.
func Validate(s *domain.TokenSnapshot) error {
	if s == nil || s.ID == "" || s.Mint == "" || s.Outcome == "" {
		return ErrInvalidInput
	}
	if _, err := uuid.Parse(s.ID); err != nil {
		return fmt.Errorf("%w: id: %v", ErrInvalidInput, err)
	}
	return nil
}

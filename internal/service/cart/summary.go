package cart

import (
	"context"
	"errors"

	"nexuscart/internal/domain"
)

// SummaryLine is one resolvable cart line with its display attributes and
// derived subtotal.
type SummaryLine struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	ImageURL       string `json:"imageUrl,omitempty"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotalCents"`
}

// Summary is the aggregated cart view. Count covers every stored line;
// Lines and TotalCents cover only lines whose product still resolves; a
// line for a deleted product is absent from both, never priced at zero.
type Summary struct {
	OwnerID    string        `json:"ownerId"`
	Version    int64         `json:"version"`
	Count      int           `json:"count"`
	Lines      []SummaryLine `json:"lines"`
	TotalCents int64         `json:"totalCents"`
}

// Summarize derives totals and per-line subtotals for the owner's current
// cart. Products are resolved once per distinct id per call.
func (s *Service) Summarize(ctx context.Context, ownerID string) (*Summary, error) {
	cart, err := s.repo.Get(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	resolved := make(map[string]*domain.Product, len(cart.Items))
	out := &Summary{
		OwnerID: cart.OwnerID,
		Version: cart.Version,
		Count:   cart.Count(),
		Lines:   []SummaryLine{},
	}
	for _, item := range cart.Items {
		p, ok := resolved[item.ProductID]
		if !ok {
			p, err = s.products.Get(ctx, item.ProductID)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					resolved[item.ProductID] = nil
					continue
				}
				return nil, err
			}
			resolved[item.ProductID] = p
		}
		if p == nil {
			continue
		}
		subtotal := p.PriceCents * int64(item.Quantity)
		out.Lines = append(out.Lines, SummaryLine{
			ProductID:      item.ProductID,
			Name:           p.Name,
			ImageURL:       p.ImageURL,
			UnitPriceCents: p.PriceCents,
			Quantity:       item.Quantity,
			SubtotalCents:  subtotal,
		})
		out.TotalCents += subtotal
	}
	return out, nil
}

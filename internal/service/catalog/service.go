package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"nexuscart/internal/cache"
	"nexuscart/internal/domain"
	"nexuscart/internal/image"
	productrepo "nexuscart/internal/repository/product"
	"github.com/redis/go-redis/v9"
)

// Service exposes the product catalog: public reads with a Redis
// read-through cache, administrative writes with genuine image upload.
type Service struct {
	repo     productrepo.Repository
	uploader image.Uploader
	rdb      *redis.Client
	logger   *log.Logger
}

func New(repo productrepo.Repository, uploader image.Uploader, rdb *redis.Client, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{repo: repo, uploader: uploader, rdb: rdb, logger: logger}
}

// WriteInput carries the admin product form. Image is optional; when set
// the bytes are uploaded and the stored reference replaces any previous
// one.
type WriteInput struct {
	Name        string
	Description string
	PriceCents  int64
	Category    string
	Image       io.Reader
}

func (in WriteInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return errors.New("name required")
	}
	if in.PriceCents < 0 {
		return errors.New("price must not be negative")
	}
	return nil
}

func (s *Service) List(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.List(ctx, category)
}

// Get resolves one product, serving from the cache when possible. Cache
// failures degrade to the repository; they never fail a read.
func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	key := fmt.Sprintf(cache.KeyProduct, id)
	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var p domain.Product
			if json.Unmarshal(raw, &p) == nil {
				return &p, nil
			}
		}
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if raw, err := json.Marshal(p); err == nil {
			if err := s.rdb.Set(ctx, key, raw, cache.TTLProduct).Err(); err != nil {
				s.logger.Printf("catalog: cache set id=%s error=%v", id, err)
			}
		}
	}
	return p, nil
}

func (s *Service) Create(ctx context.Context, in WriteInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := domain.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Category:    strings.TrimSpace(in.Category),
	}
	if in.Image != nil {
		up, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = up.URL
		p.ImagePublicID = up.PublicID
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) Update(ctx context.Context, id string, in WriteInput) (*domain.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	p := domain.Product{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		PriceCents:  in.PriceCents,
		Category:    strings.TrimSpace(in.Category),
	}
	var previous *domain.Product
	if in.Image != nil {
		prev, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		previous = prev
		up, err := s.upload(ctx, in.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL = up.URL
		p.ImagePublicID = up.PublicID
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, id)
	if previous != nil && previous.ImagePublicID != "" && previous.ImagePublicID != updated.ImagePublicID {
		if err := s.uploader.Destroy(ctx, previous.ImagePublicID); err != nil {
			s.logger.Printf("catalog: destroy image public_id=%s error=%v", previous.ImagePublicID, err)
		}
	}
	return updated, nil
}

// Delete removes the product and its hosted image. Carts referencing it
// keep their line; the line simply stops resolving and drops out of
// totals.
func (s *Service) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx, id)
	if deleted.ImagePublicID != "" && s.uploader != nil {
		if err := s.uploader.Destroy(ctx, deleted.ImagePublicID); err != nil {
			s.logger.Printf("catalog: destroy image public_id=%s error=%v", deleted.ImagePublicID, err)
		}
	}
	return nil
}

func (s *Service) upload(ctx context.Context, r io.Reader) (*image.Upload, error) {
	if s.uploader == nil {
		return nil, image.ErrNotConfigured
	}
	return s.uploader.Upload(ctx, r)
}

func (s *Service) invalidate(ctx context.Context, id string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, fmt.Sprintf(cache.KeyProduct, id)).Err(); err != nil {
		s.logger.Printf("catalog: cache del id=%s error=%v", id, err)
	}
}

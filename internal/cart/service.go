package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mkravets/storecart/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Service is the single cart contract. Every caller, UI or admin, goes
// through it; nothing else reads or writes cart storage.
type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // Prevents cache stampede

	// gens counts invalidations per user. A cache fill records the
	// generation before reading the repository and drops its own entry if
	// a write bumped it in the meantime, so a slow fill can never put a
	// superseded aggregate back into the cache.
	mu   sync.Mutex
	gens map[string]uint64
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		gens:  make(map[string]uint64),
	}
}

func (s *Service) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to collapse concurrent cache misses for the same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {
		gen := s.generation(userID)

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.Warn().Err(err).Str("user_id", userID).Msg("cart cache get failed")
		}

		cart, errGet := s.repo.Get(ctx, userID)
		if errGet != nil && errors.Is(errGet, ErrCartNotFound) {
			// no cart yet, hand out an empty one
			now := time.Now().UTC()
			return &domain.Cart{
				UserID:    userID,
				Lines:     nil,
				CreatedAt: now,
				UpdatedAt: now,
			}, nil
		}
		if errGet != nil {
			return nil, errGet
		}

		if errSet := s.cache.Set(ctx, userID, cart); errSet != nil {
			log.Warn().Err(errSet).Str("user_id", userID).Msg("cart cache set failed")
		} else if s.generation(userID) != gen {
			// a write invalidated this user while the fill was in flight;
			// the entry just written may be stale
			s.invalidate(userID)
		}

		return cart, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *Service) AddItem(ctx context.Context, userID string, productID int64, variantKey string, quantity int, unitPrice int64) (*domain.Cart, error) {
	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.AddItem(productID, variantKey, quantity, unitPrice); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, cart); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("cart upsert failed")
		return nil, err
	}

	s.invalidate(userID)
	return cart, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, userID string, productID int64, variantKey string, quantity int) (*domain.Cart, error) {
	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := cart.UpdateQuantity(productID, variantKey, quantity); err != nil {
		return nil, err
	}

	if err := s.repo.Upsert(ctx, cart); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("cart upsert failed")
		return nil, err
	}

	s.invalidate(userID)
	return cart, nil
}

func (s *Service) RemoveItem(ctx context.Context, userID string, productID int64, variantKey string) (*domain.Cart, error) {
	cart, err := s.loadOrEmpty(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.RemoveItem(productID, variantKey)

	if err := s.repo.Upsert(ctx, cart); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("cart upsert failed")
		return nil, err
	}

	s.invalidate(userID)
	return cart, nil
}

// Clear drops the whole cart. Clearing a cart that was never created is
// not an error.
func (s *Service) Clear(ctx context.Context, userID string) error {
	err := s.repo.Delete(ctx, userID)
	if err != nil && !errors.Is(err, ErrCartNotFound) {
		log.Error().Err(err).Str("user_id", userID).Msg("cart delete failed")
		return err
	}

	s.invalidate(userID)
	return nil
}

func (s *Service) loadOrEmpty(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := s.repo.Get(ctx, userID)
	if errors.Is(err, ErrCartNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{UserID: userID, CreatedAt: now, UpdatedAt: now}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// invalidate bumps the user's generation before deleting the key. The
// order matters: an in-flight cache fill checks the generation after its
// own set, so a bump-then-delete cannot leave a stale entry behind.
func (s *Service) invalidate(userID string) {
	s.mu.Lock()
	s.gens[userID]++
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("cart cache invalidate failed")
	}
}

func (s *Service) generation(userID string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gens[userID]
}

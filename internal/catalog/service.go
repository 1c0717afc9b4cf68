// Package catalog resolves product ids against the store menu, with a
// redis read-through cache in front of the mongo source of truth.
package catalog

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/marceleta/cardapio-checkout/internal/domain"
)

type Service struct {
	repo  Repository
	cache Cache
	sfg   singleflight.Group // collapses concurrent misses for the same item
}

func NewService(repo Repository, cache Cache) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
	}
}

func (s *Service) GetItem(ctx context.Context, id string) (*domain.MenuItem, error) {
	v, err, _ := s.sfg.Do(id, func() (interface{}, error) {
		item, err := s.cache.Get(ctx, id)
		if err == nil {
			return item, nil
		}

		if !errors.Is(err, ErrCacheMiss) {
			log.WithError(err).Warn("menu cache get error")
		}

		item, errGet := s.repo.GetItem(ctx, id)
		if errGet != nil {
			return nil, errGet
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), item); errSet != nil {
				log.WithError(errSet).Warn("menu cache set error")
			}
		}()

		return item, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.MenuItem), nil
}

func (s *Service) ListItems(ctx context.Context) ([]domain.MenuItem, error) {
	return s.repo.ListItems(ctx)
}

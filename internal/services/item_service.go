package services

import (
	"context"

	"rentalBack/internal/models"
	"rentalBack/internal/repositories"
)

type ItemService struct {
	ItemRepo *repositories.ItemRepository
	Cache    *repositories.ItemCache
}

func (s *ItemService) CreateItem(ctx context.Context, item models.Item) (models.Item, error) {
	if item.Name == "" || item.Price <= 0 {
		return models.Item{}, models.ErrItemInvalid
	}
	return s.ItemRepo.CreateItem(ctx, item)
}

func (s *ItemService) GetItemByID(ctx context.Context, id int) (models.Item, error) {
	if item, ok := s.Cache.Get(ctx, id); ok {
		return item, nil
	}
	item, err := s.ItemRepo.GetItemByID(ctx, id)
	if err != nil {
		return models.Item{}, err
	}
	s.Cache.Set(ctx, item)
	return item, nil
}

func (s *ItemService) GetFilteredItems(ctx context.Context, filter models.ItemFilterRequest) (models.ItemListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 10
	}
	return s.ItemRepo.GetFilteredItems(ctx, filter)
}

func (s *ItemService) GetItemsByUserID(ctx context.Context, userID int) ([]models.Item, error) {
	return s.ItemRepo.GetItemsByUserID(ctx, userID)
}

func (s *ItemService) UpdateItem(ctx context.Context, callerID int, item models.Item) (models.Item, error) {
	if item.Name == "" || item.Price <= 0 {
		return models.Item{}, models.ErrItemInvalid
	}
	existing, err := s.ItemRepo.GetItemByID(ctx, item.ID)
	if err != nil {
		return models.Item{}, err
	}
	if existing.UserID != callerID {
		return models.Item{}, models.ErrForbidden
	}
	if err := s.ItemRepo.UpdateItem(ctx, item); err != nil {
		return models.Item{}, err
	}
	s.Cache.Invalidate(ctx, item.ID)
	return s.ItemRepo.GetItemByID(ctx, item.ID)
}

// WithdrawItem hides the listing. An item committed to an active rental
// cannot be withdrawn until it is returned.
func (s *ItemService) WithdrawItem(ctx context.Context, callerID, itemID int) error {
	existing, err := s.ItemRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return models.ErrForbidden
	}
	if err := s.ItemRepo.Withdraw(ctx, itemID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, itemID)
	return nil
}

func (s *ItemService) RepublishItem(ctx context.Context, callerID, itemID int) error {
	existing, err := s.ItemRepo.GetItemByID(ctx, itemID)
	if err != nil {
		return err
	}
	if existing.UserID != callerID {
		return models.ErrForbidden
	}
	if err := s.ItemRepo.Republish(ctx, itemID); err != nil {
		return err
	}
	s.Cache.Invalidate(ctx, itemID)
	return nil
}

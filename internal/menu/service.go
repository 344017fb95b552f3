// AngelaMos | 2026
// service.go

package menu

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

const suggestionLimit = 5

// ImageStore persists an uploaded object and returns its public URL.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
}

type Service struct {
	repo   Repository
	images ImageStore
	logger *slog.Logger
}

// NewService builds the catalog service. images may be nil, which disables
// image upload.
func NewService(repo Repository, images ImageStore, logger *slog.Logger) *Service {
	return &Service{repo: repo, images: images, logger: logger}
}

func (s *Service) ImagesEnabled() bool {
	return s.images != nil
}

// Search lists the whole catalog by id, or entries whose name or
// description contains query case-insensitively.
func (s *Service) Search(ctx context.Context, query string) ([]MenuItem, error) {
	return s.repo.Search(ctx, strings.TrimSpace(query))
}

func (s *Service) Get(ctx context.Context, id int64) (*MenuItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListAvailable(ctx context.Context) ([]MenuItem, error) {
	return s.repo.ListAvailable(ctx)
}

// Trending returns the five most ordered entries. With no order history it
// returns a random sample instead, preferring available entries.
func (s *Service) Trending(ctx context.Context) ([]RankedItem, error) {
	ranked, err := s.repo.TopOrdered(ctx, suggestionLimit)
	if err != nil {
		return nil, err
	}
	if len(ranked) > 0 {
		return ranked, nil
	}

	sample, err := s.sample(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RankedItem, len(sample))
	for i := range sample {
		out[i] = RankedItem{MenuItem: sample[i]}
	}
	return out, nil
}

// Recommendations suggests up to five entries from the customer's favourite
// category that they have not ordered yet, falling back to a random sample.
func (s *Service) Recommendations(ctx context.Context, customerID int64) ([]MenuItem, error) {
	category, ok, err := s.repo.FavoriteCategory(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if ok {
		items, err := s.repo.UnorderedInCategory(ctx, customerID, category, suggestionLimit)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			return items, nil
		}
	}

	return s.repo.RandomSample(ctx, suggestionLimit, false)
}

func (s *Service) Reorderable(ctx context.Context, customerID int64) ([]MenuItem, error) {
	return s.repo.OrderedByCustomer(ctx, customerID)
}

func (s *Service) Create(ctx context.Context, req MenuRequest) (*MenuItem, error) {
	item := &MenuItem{
		Category:    DefaultCategory,
		Stock:       DefaultStock,
		IsAvailable: true,
	}
	if err := applyRequest(item, req); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("menu item created", "menu_id", item.ID, "name", item.Name)
	return item, nil
}

func (s *Service) Update(ctx context.Context, id int64, req MenuRequest) (*MenuItem, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := applyRequest(item, req); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}

	return item, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("menu item deleted", "menu_id", id)
	return nil
}

// UploadImage stores the image under a fresh key and points the entry at it.
func (s *Service) UploadImage(
	ctx context.Context,
	id int64,
	filename, contentType string,
	body io.Reader,
	size int64,
) (*MenuItem, error) {
	if s.images == nil {
		return nil, fmt.Errorf("upload image: %w", core.ErrUnavailable)
	}

	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("menus/%d/%s%s", id, uuid.NewString(), strings.ToLower(path.Ext(filename)))
	url, err := s.images.Put(ctx, key, contentType, body, size)
	if err != nil {
		return nil, fmt.Errorf("upload image: %w", err)
	}

	if err := s.repo.SetImage(ctx, id, url); err != nil {
		return nil, err
	}

	item.Image = url
	return item, nil
}

func (s *Service) sample(ctx context.Context) ([]MenuItem, error) {
	items, err := s.repo.RandomSample(ctx, suggestionLimit, true)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 {
		return items, nil
	}
	return s.repo.RandomSample(ctx, suggestionLimit, false)
}

func applyRequest(item *MenuItem, req MenuRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("menu name required: %w", core.ErrInvalidInput)
	}
	if req.Price == nil || *req.Price < 0 {
		return fmt.Errorf("menu price must be a non-negative number: %w", core.ErrInvalidInput)
	}

	item.Name = name
	item.Price = *req.Price

	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Image != nil {
		item.Image = *req.Image
	}
	if req.Category != nil && strings.TrimSpace(*req.Category) != "" {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return fmt.Errorf("menu stock must not be negative: %w", core.ErrInvalidInput)
		}
		item.Stock = *req.Stock
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	return nil
}

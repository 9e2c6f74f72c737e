package catalog

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// ImageStore keeps validated product images and hands back a reference.
type ImageStore interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, ref string) error
}

type Service struct {
	repo   *PostgresRepository
	images ImageStore
	limits ImageLimits
	logger *log.Logger
}

func NewService(repo *PostgresRepository, images ImageStore, limits ImageLimits, logger *log.Logger) *Service {
	return &Service{repo: repo, images: images, limits: limits, logger: logger}
}

// WithExecutor returns a copy whose queries run on q (e.g., a transaction).
func (s *Service) WithExecutor(q Querier) *Service {
	cp := *s
	cp.repo = s.repo.WithExecutor(q)
	return &cp
}

// Resolve returns the product of type tag with the given slug.
func (s *Service) Resolve(ctx context.Context, tag TypeTag, slug string) (Variant, error) {
	return s.repo.GetBySlug(ctx, tag, slug)
}

// ResolveOrCreate returns the product with slug, creating a bare placeholder if needed.
func (s *Service) ResolveOrCreate(ctx context.Context, tag TypeTag, slug string) (Variant, bool, error) {
	v, created, err := s.repo.GetOrCreate(ctx, tag, slug)
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Printf("created placeholder %s slug=%s id=%d", tag, slug, v.Base().ID)
	}
	return v, created, nil
}

func (s *Service) GetByID(ctx context.Context, tag TypeTag, id int64) (Variant, error) {
	return s.repo.GetByID(ctx, tag, id)
}

func (s *Service) SidebarCounts(ctx context.Context) ([]SidebarEntry, error) {
	return s.repo.SidebarCounts(ctx)
}

func (s *Service) ProductDetail(ctx context.Context, tag TypeTag, slug string) (ProductDetail, error) {
	v, err := s.repo.GetBySlug(ctx, tag, slug)
	if err != nil {
		return ProductDetail{}, err
	}
	categories, err := s.repo.SidebarCounts(ctx)
	if err != nil {
		return ProductDetail{}, err
	}
	return ProductDetail{Product: v, Type: tag, Categories: categories}, nil
}

func (s *Service) CategoryDetail(ctx context.Context, slug string) (CategoryDetail, error) {
	cat, err := s.repo.CategoryBySlug(ctx, slug)
	if err != nil {
		return CategoryDetail{}, err
	}

	products := []Variant{}
	for _, tag := range Tags() {
		vs, err := s.repo.ListByCategory(ctx, tag, cat.ID)
		if err != nil {
			return CategoryDetail{}, err
		}
		products = append(products, vs...)
	}
	slices.SortStableFunc(products, func(a, b Variant) int {
		return b.Base().CreatedAt.Compare(a.Base().CreatedAt)
	})

	categories, err := s.repo.SidebarCounts(ctx)
	if err != nil {
		return CategoryDetail{}, err
	}
	return CategoryDetail{Category: cat, Products: products, Categories: categories}, nil
}

// CreateProduct validates v and its image, stores the image and inserts the row.
func (s *Service) CreateProduct(ctx context.Context, v Variant, img *Image) (Variant, error) {
	p := v.Base()
	k, err := lookup(p.Type)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, fmt.Errorf("%w: image is required", ErrInvalidInput)
	}
	if err := s.validate(ctx, k, p, img); err != nil {
		return nil, err
	}

	ref, err := s.storeImage(ctx, k, p.Slug, img)
	if err != nil {
		return nil, err
	}
	p.Image = ref

	if err := s.repo.Insert(ctx, v); err != nil {
		s.discardImage(ctx, ref)
		return nil, err
	}
	s.logger.Printf("created %s slug=%s id=%d", p.Type, p.Slug, p.ID)
	return v, nil
}

// UpdateProduct replaces the product currently stored under slug with v.
// A nil img keeps the existing image.
func (s *Service) UpdateProduct(ctx context.Context, tag TypeTag, slug string, v Variant, img *Image) (Variant, error) {
	k, err := lookup(tag)
	if err != nil {
		return nil, err
	}
	existing, err := s.repo.GetBySlug(ctx, tag, slug)
	if err != nil {
		return nil, err
	}

	p := v.Base()
	p.ID = existing.Base().ID
	p.Type = tag
	if strings.TrimSpace(p.Slug) == "" {
		p.Slug = slug
	}
	p.Image = existing.Base().Image

	if err := s.validate(ctx, k, p, img); err != nil {
		return nil, err
	}

	var ref string
	if img != nil {
		if ref, err = s.storeImage(ctx, k, p.Slug, img); err != nil {
			return nil, err
		}
		p.Image = ref
	}

	if err := s.repo.Update(ctx, v); err != nil {
		if ref != "" {
			s.discardImage(ctx, ref)
		}
		return nil, err
	}
	if ref != "" && existing.Base().Image != "" {
		s.discardImage(ctx, existing.Base().Image)
	}
	s.logger.Printf("updated %s slug=%s id=%d", p.Type, p.Slug, p.ID)
	return v, nil
}

// validate runs every save-time check. Nothing has been written when it fails.
func (s *Service) validate(ctx context.Context, k kind, p *Product, img *Image) error {
	if err := validateFields(p); err != nil {
		return err
	}

	if p.CategoryID == 0 {
		cat, err := s.repo.CategoryBySlug(ctx, k.category)
		if err != nil {
			return fmt.Errorf("default category for %s: %w", k.tag, err)
		}
		p.CategoryID = cat.ID
	}
	cat, err := s.repo.CategoryByID(ctx, p.CategoryID)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: category #%d does not exist", ErrCategoryMismatch, p.CategoryID)
	}
	if err != nil {
		return err
	}
	if k.category != "" && cat.Slug != k.category {
		return fmt.Errorf("%w: %s products belong in %q, got %q", ErrCategoryMismatch, k.tag, k.category, cat.Slug)
	}

	if img != nil {
		if _, err := s.limits.Validate(*img); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) storeImage(ctx context.Context, k kind, slug string, img *Image) (string, error) {
	name := string(k.tag) + "-" + slug + "-" + uuid.NewString()[:8] + strings.ToLower(filepath.Ext(img.Filename))
	ref, err := s.images.Save(ctx, name, img.Data)
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return ref, nil
}

func (s *Service) discardImage(ctx context.Context, ref string) {
	if err := s.images.Delete(ctx, ref); err != nil {
		s.logger.Printf("discard image %s: %v", ref, err)
	}
}

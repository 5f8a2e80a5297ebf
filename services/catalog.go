package services

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"phonestore/apperr"
	"phonestore/models"
	"phonestore/repository"
)

const (
	RelatedLimit = 4
	SearchLimit  = 20
)

// CatalogService answers catalog listings and applies admin mutations
type CatalogService struct {
	phones repository.PhoneRepository
}

func NewCatalogService(phones repository.PhoneRepository) *CatalogService {
	return &CatalogService{phones: phones}
}

// ListParams are the listing inputs. Empty strings and nil bounds do not filter.
type ListParams struct {
	Page      models.Page
	Brand     string
	MinPrice  *int64
	MaxPrice  *int64
	RAM       string
	Storage   string
	Search    string
	SortBy    string
	SortOrder string
}

type PhoneList struct {
	Items      []models.Phone    `json:"phones"`
	Pagination models.Pagination `json:"pagination"`
}

func parseSort(sortBy, sortOrder string) (repository.SortKey, bool, error) {
	key := repository.SortKey(sortBy)
	switch key {
	case "":
		key = repository.SortCreatedAt
	case repository.SortCreatedAt, repository.SortPrice, repository.SortRating, repository.SortName:
	default:
		return "", false, apperr.Validation("sortBy must be one of price, rating, name, createdAt")
	}

	switch strings.ToLower(sortOrder) {
	case "", "desc":
		return key, true, nil
	case "asc":
		return key, false, nil
	}
	return "", false, apperr.Validation("sortOrder must be asc or desc")
}

// List returns one page of active phones matching every supplied filter.
func (s *CatalogService) List(ctx context.Context, p ListParams) (*PhoneList, error) {
	key, desc, err := parseSort(p.SortBy, p.SortOrder)
	if err != nil {
		return nil, err
	}
	page := p.Page.Normalized()

	q := repository.PhoneQuery{
		Status:   models.PhoneActive,
		Brand:    strings.TrimSpace(p.Brand),
		MinPrice: p.MinPrice,
		MaxPrice: p.MaxPrice,
		RAM:      strings.TrimSpace(p.RAM),
		Storage:  strings.TrimSpace(p.Storage),
		Search:   strings.TrimSpace(p.Search),
		Sort:     key,
		Desc:     desc,
		Skip:     page.Offset(),
		Limit:    int64(page.Size),
	}

	items, err := s.phones.Find(ctx, q)
	if err != nil {
		return nil, wrap(err, "list phones")
	}
	total, err := s.phones.Count(ctx, q)
	if err != nil {
		return nil, wrap(err, "count phones")
	}

	return &PhoneList{Items: items, Pagination: models.NewPagination(page, total)}, nil
}

type PhoneDetails struct {
	Phone         *models.Phone  `json:"phone"`
	RelatedPhones []models.Phone `json:"relatedPhones"`
}

// GetByID returns a phone of any status together with up to RelatedLimit
// active phones of the same brand, topped up from the same subcategory.
func (s *CatalogService) GetByID(ctx context.Context, id primitive.ObjectID) (*PhoneDetails, error) {
	phone, err := s.phones.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "phone not found"), "get phone")
	}

	related, err := s.phones.Find(ctx, repository.PhoneQuery{
		Status:     models.PhoneActive,
		Brand:      phone.Brand,
		ExcludeIDs: []primitive.ObjectID{phone.ID},
		Limit:      RelatedLimit,
	})
	if err != nil {
		return nil, wrap(err, "find related phones")
	}

	if len(related) < RelatedLimit && phone.Subcategory != "" {
		exclude := []primitive.ObjectID{phone.ID}
		for _, r := range related {
			exclude = append(exclude, r.ID)
		}
		more, err := s.phones.Find(ctx, repository.PhoneQuery{
			Status:      models.PhoneActive,
			Subcategory: phone.Subcategory,
			ExcludeIDs:  exclude,
			Limit:       int64(RelatedLimit - len(related)),
		})
		if err != nil {
			return nil, wrap(err, "find related phones")
		}
		related = append(related, more...)
	}

	return &PhoneDetails{Phone: phone, RelatedPhones: related}, nil
}

// Compare returns the active phones among ids. Unknown and malformed ids are dropped.
func (s *CatalogService) Compare(ctx context.Context, ids []string) ([]models.Phone, error) {
	var parsed []primitive.ObjectID
	for _, raw := range ids {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if id, err := primitive.ObjectIDFromHex(raw); err == nil {
			parsed = append(parsed, id)
		}
	}
	if len(parsed) == 0 && !hasNonBlank(ids) {
		return nil, apperr.Validation("phone IDs are required")
	}
	if len(parsed) == 0 {
		return []models.Phone{}, nil
	}

	phones, err := s.phones.Find(ctx, repository.PhoneQuery{Status: models.PhoneActive, IDs: parsed})
	if err != nil {
		return nil, wrap(err, "compare phones")
	}
	return phones, nil
}

func hasNonBlank(values []string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

// SearchFilters are the extra constraints accepted by Search
type SearchFilters struct {
	Brand       string `json:"brand"`
	MinPrice    *int64 `json:"minPrice"`
	MaxPrice    *int64 `json:"maxPrice"`
	RAM         string `json:"ram"`
	Storage     string `json:"storage"`
	Subcategory string `json:"subcategory"`
}

// ParseSearchFilters decodes the JSON filters parameter. Unknown keys are rejected.
func ParseSearchFilters(raw string) (SearchFilters, error) {
	var f SearchFilters
	if strings.TrimSpace(raw) == "" {
		return f, nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return f, apperr.Validation("invalid filters: %v", err)
	}
	return f, nil
}

// Search runs a relevance-ordered text search over active phones.
func (s *CatalogService) Search(ctx context.Context, query, category string, f SearchFilters) ([]models.Phone, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperr.Validation("search query is required")
	}

	phones, err := s.phones.Find(ctx, repository.PhoneQuery{
		Status:      models.PhoneActive,
		FullText:    query,
		Category:    strings.TrimSpace(category),
		Brand:       f.Brand,
		MinPrice:    f.MinPrice,
		MaxPrice:    f.MaxPrice,
		RAM:         f.RAM,
		Storage:     f.Storage,
		Subcategory: f.Subcategory,
		Sort:        repository.SortRelevance,
		Limit:       SearchLimit,
	})
	if err != nil {
		return nil, wrap(err, "search phones")
	}
	return phones, nil
}

func (s *CatalogService) Create(ctx context.Context, p *models.Phone) (*models.Phone, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.phones.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("phone with SKU %s already exists", p.SKU)
		}
		return nil, wrap(err, "create phone")
	}
	slog.Info("phone created", "phone_id", p.ID.Hex(), "sku", p.SKU)
	return p, nil
}

// Update merges the JSON patch into the stored phone and replaces it when
// the result is valid. Nothing is written on validation failure.
func (s *CatalogService) Update(ctx context.Context, id primitive.ObjectID, patch []byte) (*models.Phone, error) {
	phone, err := s.phones.FindByID(ctx, id)
	if err != nil {
		return nil, wrap(notFound(err, "phone not found"), "update phone")
	}

	createdAt := phone.CreatedAt
	if err := json.Unmarshal(patch, phone); err != nil {
		return nil, apperr.Validation("invalid input")
	}
	phone.ID = id
	phone.CreatedAt = createdAt

	phone.Normalize()
	if err := phone.Validate(); err != nil {
		return nil, err
	}
	if err := s.phones.Replace(ctx, phone); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("phone with SKU %s already exists", phone.SKU)
		}
		return nil, wrap(notFound(err, "phone not found"), "update phone")
	}
	slog.Info("phone updated", "phone_id", id.Hex())
	return phone, nil
}

func (s *CatalogService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.phones.Delete(ctx, id); err != nil {
		return wrap(notFound(err, "phone not found"), "delete phone")
	}
	slog.Info("phone deleted", "phone_id", id.Hex())
	return nil
}

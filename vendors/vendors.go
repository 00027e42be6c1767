// Package vendors is the back-office vendor directory.
package vendors

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/resource"
)

const ResourceName = "vendors"

type Vendor struct {
	ID          int        `json:"id"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	CompanyName string     `json:"company_name"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`
}

// Registration is the body an admin sends to create a vendor account.
type Registration struct {
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	CompanyName string `json:"company_name" validate:"required"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
}

type Service struct {
	repo *resource.Repository[Vendor]
}

func NewService(client *httpclient.Client, queries *cache.QueryClient, opts ...resource.Option) *Service {
	return &Service{repo: resource.NewRepository[Vendor](ResourceName, client, queries, opts...)}
}

// Key is the cache key invalidated by every vendor mutation.
func (s *Service) Key() cache.Key {
	return s.repo.Key()
}

func (s *Service) List(ctx context.Context, page int) (resource.Page[Vendor], error) {
	return s.repo.List(ctx, page)
}

func (s *Service) Get(ctx context.Context, id int) (Vendor, error) {
	return s.repo.Get(ctx, strconv.Itoa(id))
}

// Register creates a vendor account. On rejection, FieldErrors(err)
// returns one display message per field.
func (s *Service) Register(ctx context.Context, reg Registration) (Vendor, error) {
	v, err := s.repo.Create(ctx, reg)
	if err != nil {
		return Vendor{}, fmt.Errorf("[vendors.Register] %w", err)
	}
	return v, nil
}

func (s *Service) Update(ctx context.Context, id int, payload any) (Vendor, error) {
	return s.repo.Update(ctx, strconv.Itoa(id), payload)
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, strconv.Itoa(id))
}

// FieldErrors flattens a registration failure into field → message.
func FieldErrors(err error) errors.FieldErrors {
	return httpclient.FieldErrorsOf(err)
}

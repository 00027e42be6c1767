// Package orders lists and manages orders. The server scopes the list by
// the caller's role: customers see their own, vendors see orders for their
// products, admins see all.
package orders

import (
	"context"
	"strconv"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/utils"
	"github.com/jrsteele09/pcrs-client/resource"
)

const ResourceName = "orders"

var (
	Endpoints = resource.Endpoints{Collection: "/orders/"}
	Key       = cache.NewKey("orders")
)

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

type VendorRef struct {
	ID          int     `json:"id"`
	CompanyName string  `json:"company_name"`
	Phone       *string `json:"phone,omitempty"`
}

type ProductRef struct {
	ID     int        `json:"id"`
	Name   string     `json:"name"`
	Price  float64    `json:"price"`
	Vendor *VendorRef `json:"vendor,omitempty"`
}

type CustomerRef struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

type Order struct {
	ID        int          `json:"id"`
	Product   *ProductRef  `json:"product,omitempty"`
	Customer  *CustomerRef `json:"customer,omitempty"`
	Quantity  int          `json:"quantity"`
	Total     float64      `json:"total"`
	Status    string       `json:"status"`
	CreatedAt *time.Time   `json:"created_at,omitempty"`
}

// VendorPhone walks product → vendor → phone, returning "" wherever the
// chain is missing.
func (o Order) VendorPhone() string {
	if o.Product == nil || o.Product.Vendor == nil {
		return ""
	}
	return utils.Value(o.Product.Vendor.Phone)
}

func (o Order) ProductName() string {
	if o.Product == nil {
		return ""
	}
	return o.Product.Name
}

func (o Order) Confirmed() bool {
	return o.Status == StatusConfirmed
}

// Input is the body of POST /orders/.
type Input struct {
	Product  int `json:"product" validate:"required"`
	Quantity int `json:"quantity" validate:"gt=0"`
}

type action struct {
	Action string `json:"action"`
}

type Service struct {
	repo *resource.Repository[Order]
}

func NewService(client *httpclient.Client, queries *cache.QueryClient, opts ...resource.Option) *Service {
	opts = append([]resource.Option{
		resource.WithEndpoints(Endpoints),
		resource.WithCacheKey(Key),
	}, opts...)
	return &Service{repo: resource.NewRepository[Order](ResourceName, client, queries, opts...)}
}

func (s *Service) Key() cache.Key {
	return s.repo.Key()
}

func (s *Service) List(ctx context.Context) ([]Order, error) {
	page, err := s.repo.List(ctx, 0)
	if err != nil {
		return nil, err
	}
	return page.Results, nil
}

func (s *Service) Create(ctx context.Context, in Input) (Order, error) {
	return s.repo.Create(ctx, in)
}

// Confirm PATCHes {"action": "confirm"} onto the order.
func (s *Service) Confirm(ctx context.Context, id int) (Order, error) {
	return s.repo.Update(ctx, strconv.Itoa(id), action{Action: "confirm"})
}

func (s *Service) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, strconv.Itoa(id))
}

// Package products covers both catalogue views: a vendor's own products and
// the back-office list of every product.
package products

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/upload"
	"github.com/rs/zerolog/log"
)

const ResourceName = "products"

// VendorEndpoints are the vendor-scoped product paths.
var VendorEndpoints = resource.Endpoints{Collection: "/vendor/products/"}

// VendorKey is the cache key of the signed-in vendor's products.
var VendorKey = cache.NewKey("vendor", "products")

type VendorRef struct {
	ID          int    `json:"id"`
	CompanyName string `json:"company_name"`
}

type Product struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Price       float64    `json:"price"`
	Stock       int        `json:"stock"`
	Image       string     `json:"image,omitempty"`
	Vendor      *VendorRef `json:"vendor,omitempty"`
}

// VendorName is "" for products without a vendor.
func (p Product) VendorName() string {
	if p.Vendor == nil {
		return ""
	}
	return p.Vendor.CompanyName
}

// Input is the create/replace body.
type Input struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description,omitempty"`
	Category    string  `json:"category" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type Service struct {
	vendor  *resource.Repository[Product]
	admin   *resource.Repository[Product]
	queries *cache.QueryClient
}

func NewService(client *httpclient.Client, queries *cache.QueryClient, opts ...resource.Option) *Service {
	vendorOpts := append([]resource.Option{
		resource.WithEndpoints(VendorEndpoints),
		resource.WithCacheKey(VendorKey),
	}, opts...)
	return &Service{
		vendor:  resource.NewRepository[Product](ResourceName, client, queries, vendorOpts...),
		admin:   resource.NewRepository[Product](ResourceName, client, queries, opts...),
		queries: queries,
	}
}

// AdminKey is the cache key of the back-office product list.
func (s *Service) AdminKey() cache.Key {
	return s.admin.Key()
}

func (s *Service) VendorProducts(ctx context.Context, page int) (resource.Page[Product], error) {
	return s.vendor.List(ctx, page)
}

func (s *Service) CreateVendorProduct(ctx context.Context, in Input) (Product, error) {
	return s.vendor.Create(ctx, in)
}

func (s *Service) UpdateVendorProduct(ctx context.Context, id int, in Input) (Product, error) {
	return s.vendor.Replace(ctx, strconv.Itoa(id), in)
}

func (s *Service) DeleteVendorProduct(ctx context.Context, id int) error {
	return s.vendor.Delete(ctx, strconv.Itoa(id))
}

func (s *Service) AdminProducts(ctx context.Context, page int) (resource.Page[Product], error) {
	return s.admin.List(ctx, page)
}

func (s *Service) AdminProduct(ctx context.Context, id int) (Product, error) {
	return s.admin.Get(ctx, strconv.Itoa(id))
}

// UpdateAdminProduct PATCHes the product. Besides invalidating the list it
// stores the record the server returned under the product's detail key, so
// the next detail read needs no request.
func (s *Service) UpdateAdminProduct(ctx context.Context, id int, payload any) (Product, error) {
	p, err := s.admin.Update(ctx, strconv.Itoa(id), payload)
	if err != nil {
		return Product{}, err
	}
	if err := cache.SetQueryData(ctx, s.queries, s.admin.DetailKey(strconv.Itoa(id)), p); err != nil {
		log.Warn().Err(err).Int("product", id).Msg("caching updated product failed")
	}
	return p, nil
}

func (s *Service) DeleteAdminProduct(ctx context.Context, id int) error {
	return s.admin.Delete(ctx, strconv.Itoa(id))
}

// BulkUpload sends a spreadsheet and an optional zip of images, then watches
// the admin list until the imported products appear. Pass a nil images
// reader to omit the zip.
func (s *Service) BulkUpload(ctx context.Context, sheetName string, sheet io.Reader, imagesName string, images io.Reader) (upload.Job, *poller.Handle, error) {
	if sheet == nil {
		return upload.Job{}, nil, fmt.Errorf("[products.BulkUpload] spreadsheet is required")
	}
	return s.admin.UploadAndWatch(ctx, nil,
		upload.Spreadsheet(sheetName, sheet),
		upload.Images(imagesName, images),
	)
}

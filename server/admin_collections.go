package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/pcrs-client/benchmarks"
	"github.com/jrsteele09/pcrs-client/customers"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/jrsteele09/pcrs-client/vendors"
)

// adminCollection is one /admin/{resource}/ collection.
type adminCollection interface {
	list(p page) ([]any, int, error)
	get(id int) (any, error)
	create(r *http.Request) (any, error)
	update(id int, r *http.Request) (any, error)
	delete(id int) error
}

// importer is implemented by collections that accept bulk uploads. images
// holds the file names found in the optional images zip.
type importer interface {
	importRecord(rec map[string]string, images map[string]bool) error
}

func (s *Server) adminCollections() map[string]adminCollection {
	return map[string]adminCollection{
		vendors.ResourceName:    vendorCollection{s},
		customers.ResourceName:  customerCollection{s},
		products.ResourceName:   productCollection{s},
		benchmarks.ResourceName: benchmarkCollection{s},
	}
}

func toAny[T any](items []T) []any {
	out := make([]any, len(items))
	for i, v := range items {
		out[i] = v
	}
	return out
}

// accountCollection is shared by vendors and customers, which are accounts
// of one role.
type accountCollection struct {
	s    *Server
	role users.Role
}

func (c accountCollection) list(p page) ([]*users.Account, int, error) {
	accounts, total, err := c.s.repos.Accounts.List(c.role, p.offset(), p.size)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "[accountCollection.list] %s", c.role)
	}
	return accounts, total, nil
}

func (c accountCollection) get(id int) (*users.Account, error) {
	account, err := c.s.repos.Accounts.GetByID(id)
	if err != nil || account.Role != c.role {
		return nil, errors.ErrNotFound
	}
	return account, nil
}

func (c accountCollection) update(id int, r *http.Request) (*users.Account, error) {
	current, err := c.get(id)
	if err != nil {
		return nil, err
	}
	var update users.ProfileUpdate
	if err := decodeBody(r, &update); err != nil {
		return nil, err
	}
	account := *current
	account.Apply(update)
	if err := c.s.repos.Accounts.Upsert(&account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c accountCollection) delete(id int) error {
	if _, err := c.get(id); err != nil {
		return err
	}
	return c.s.repos.Accounts.Delete(id)
}

type vendorCollection struct{ s *Server }

func vendorOf(a *users.Account) vendors.Vendor {
	return vendors.Vendor{
		ID:          a.ID,
		Username:    a.Username,
		Email:       a.Email,
		CompanyName: a.CompanyName,
		Phone:       a.Phone,
		Address:     a.Address,
		DateJoined:  a.DateJoined,
	}
}

func (c vendorCollection) accounts() accountCollection {
	return accountCollection{s: c.s, role: users.RoleVendor}
}

func (c vendorCollection) list(p page) ([]any, int, error) {
	accounts, total, err := c.accounts().list(p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]vendors.Vendor, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, vendorOf(a))
	}
	return toAny(out), total, nil
}

func (c vendorCollection) get(id int) (any, error) {
	a, err := c.accounts().get(id)
	if err != nil {
		return nil, err
	}
	return vendorOf(a), nil
}

func (c vendorCollection) create(r *http.Request) (any, error) {
	var reg vendors.Registration
	if err := decodeBody(r, &reg); err != nil {
		return nil, err
	}
	return c.register(reg)
}

func (c vendorCollection) register(reg vendors.Registration) (vendors.Vendor, error) {
	a, err := c.s.createAccount(users.Profile{
		Username:    reg.Username,
		Email:       reg.Email,
		CompanyName: reg.CompanyName,
		Phone:       reg.Phone,
		Address:     reg.Address,
		Role:        users.RoleVendor,
	}, reg.Password)
	if err != nil {
		return vendors.Vendor{}, err
	}
	return vendorOf(a), nil
}

func (c vendorCollection) update(id int, r *http.Request) (any, error) {
	a, err := c.accounts().update(id, r)
	if err != nil {
		return nil, err
	}
	return vendorOf(a), nil
}

// delete removes the vendor and its products.
func (c vendorCollection) delete(id int) error {
	if err := c.accounts().delete(id); err != nil {
		return err
	}
	owned, _ := c.s.repos.Products.List(ownedBy(id), 0, 0)
	for _, p := range owned {
		_ = c.s.repos.Products.Delete(p.ID)
	}
	return nil
}

func (c vendorCollection) importRecord(rec map[string]string, _ map[string]bool) error {
	reg := vendors.Registration{
		Username:    rec["username"],
		Email:       rec["email"],
		Password:    rec["password"],
		CompanyName: rec["company_name"],
		Phone:       rec["phone"],
		Address:     rec["address"],
	}
	if err := resource.Validate(reg); err != nil {
		return err
	}
	_, err := c.register(reg)
	return err
}

type customerCollection struct{ s *Server }

func customerOf(a *users.Account) customers.Customer {
	return customers.Customer{
		ID:         a.ID,
		Username:   a.Username,
		Email:      a.Email,
		FirstName:  a.FirstName,
		LastName:   a.LastName,
		Phone:      a.Phone,
		Address:    a.Address,
		DateJoined: a.DateJoined,
	}
}

func (c customerCollection) accounts() accountCollection {
	return accountCollection{s: c.s, role: users.RoleUser}
}

func (c customerCollection) list(p page) ([]any, int, error) {
	accounts, total, err := c.accounts().list(p)
	if err != nil {
		return nil, 0, err
	}
	out := make([]customers.Customer, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, customerOf(a))
	}
	return toAny(out), total, nil
}

func (c customerCollection) get(id int) (any, error) {
	a, err := c.accounts().get(id)
	if err != nil {
		return nil, err
	}
	return customerOf(a), nil
}

func (c customerCollection) create(r *http.Request) (any, error) {
	var reg users.Registration
	if err := decodeBody(r, &reg); err != nil {
		return nil, err
	}
	a, err := c.s.createAccount(users.Profile{
		Username:  reg.Username,
		Email:     reg.Email,
		FirstName: reg.FirstName,
		LastName:  reg.LastName,
		Role:      users.RoleUser,
	}, reg.Password)
	if err != nil {
		return nil, err
	}
	return customerOf(a), nil
}

func (c customerCollection) update(id int, r *http.Request) (any, error) {
	a, err := c.accounts().update(id, r)
	if err != nil {
		return nil, err
	}
	return customerOf(a), nil
}

func (c customerCollection) delete(id int) error {
	return c.accounts().delete(id)
}

type productCollection struct{ s *Server }

type adminProductInput struct {
	products.Input
	Vendor int `json:"vendor,omitempty"`
}

type productPatch struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Image       *string  `json:"image"`
}

func (p productPatch) apply(dst *products.Product) {
	if p.Name != nil {
		dst.Name = *p.Name
	}
	if p.Description != nil {
		dst.Description = *p.Description
	}
	if p.Category != nil {
		dst.Category = *p.Category
	}
	if p.Price != nil {
		dst.Price = *p.Price
	}
	if p.Stock != nil {
		dst.Stock = *p.Stock
	}
	if p.Image != nil {
		dst.Image = *p.Image
	}
}

func ownedBy(vendorID int) func(products.Product) bool {
	return func(p products.Product) bool {
		return p.Vendor != nil && p.Vendor.ID == vendorID
	}
}

func (c productCollection) list(p page) ([]any, int, error) {
	items, total := c.s.repos.Products.List(nil, p.offset(), p.size)
	return toAny(items), total, nil
}

func (c productCollection) get(id int) (any, error) {
	return c.s.repos.Products.Get(id)
}

func (c productCollection) create(r *http.Request) (any, error) {
	var in adminProductInput
	if err := decodeBody(r, &in); err != nil {
		return nil, err
	}
	var ref *products.VendorRef
	if in.Vendor != 0 {
		v, err := c.s.repos.Accounts.GetByID(in.Vendor)
		if err != nil || v.Role != users.RoleVendor {
			return nil, &errors.ValidationError{Fields: errors.FieldErrors{"vendor": "Invalid pk \"" + strconv.Itoa(in.Vendor) + "\" - object does not exist."}}
		}
		ref = &products.VendorRef{ID: v.ID, CompanyName: v.CompanyName}
	}
	return c.s.repos.Products.Insert(productFrom(in.Input, ref))
}

func (c productCollection) update(id int, r *http.Request) (any, error) {
	var patch productPatch
	if err := decodeBody(r, &patch); err != nil {
		return nil, err
	}
	return c.s.repos.Products.Update(id, func(p *products.Product) error {
		patch.apply(p)
		return nil
	})
}

func (c productCollection) delete(id int) error {
	return c.s.repos.Products.Delete(id)
}

// importRecord reads name, category, price, stock, description, vendor
// (a vendor username) and image columns.
func (c productCollection) importRecord(rec map[string]string, images map[string]bool) error {
	in := products.Input{
		Name:        rec["name"],
		Category:    rec["category"],
		Description: rec["description"],
	}
	var err error
	if in.Price, err = strconv.ParseFloat(rec["price"], 64); err != nil {
		return &errors.ValidationError{Fields: errors.FieldErrors{"price": "A valid number is required."}}
	}
	if in.Stock, err = strconv.Atoi(rec["stock"]); err != nil {
		return &errors.ValidationError{Fields: errors.FieldErrors{"stock": "A valid integer is required."}}
	}
	if err := resource.Validate(in); err != nil {
		return err
	}

	var ref *products.VendorRef
	if username := rec["vendor"]; username != "" {
		v, err := c.s.repos.Accounts.GetByUsername(username)
		if err != nil || v.Role != users.RoleVendor {
			return errors.Wrapf(errors.ErrNotFound, "vendor %q", username)
		}
		ref = &products.VendorRef{ID: v.ID, CompanyName: v.CompanyName}
	}
	p := productFrom(in, ref)
	if img := rec["image"]; img != "" && images[img] {
		p.Image = "/media/products/" + img
	}
	_, err = c.s.repos.Products.Insert(p)
	return err
}

func productFrom(in products.Input, vendor *products.VendorRef) products.Product {
	return products.Product{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Category:    in.Category,
		Price:       in.Price,
		Stock:       in.Stock,
		Vendor:      vendor,
	}
}

type benchmarkCollection struct{ s *Server }

type benchmarkPatch struct {
	Component *string  `json:"component"`
	Name      *string  `json:"name"`
	Score     *float64 `json:"score" validate:"omitempty,gte=0"`
	Source    *string  `json:"source"`
}

func (c benchmarkCollection) list(p page) ([]any, int, error) {
	items, total := c.s.repos.Benchmarks.List(nil, p.offset(), p.size)
	return toAny(items), total, nil
}

func (c benchmarkCollection) get(id int) (any, error) {
	return c.s.repos.Benchmarks.Get(id)
}

func (c benchmarkCollection) create(r *http.Request) (any, error) {
	var b benchmarks.Benchmark
	if err := decodeBody(r, &b); err != nil {
		return nil, err
	}
	b.ID = 0
	return c.s.repos.Benchmarks.Insert(b)
}

func (c benchmarkCollection) update(id int, r *http.Request) (any, error) {
	var patch benchmarkPatch
	if err := decodeBody(r, &patch); err != nil {
		return nil, err
	}
	return c.s.repos.Benchmarks.Update(id, func(b *benchmarks.Benchmark) error {
		if patch.Component != nil {
			b.Component = *patch.Component
		}
		if patch.Name != nil {
			b.Name = *patch.Name
		}
		if patch.Score != nil {
			b.Score = *patch.Score
		}
		if patch.Source != nil {
			b.Source = *patch.Source
		}
		return nil
	})
}

func (c benchmarkCollection) delete(id int) error {
	return c.s.repos.Benchmarks.Delete(id)
}

// importRecord reads component, name, score and source columns.
func (c benchmarkCollection) importRecord(rec map[string]string, _ map[string]bool) error {
	b := benchmarks.Benchmark{
		Component: strings.ToLower(rec["component"]),
		Name:      rec["name"],
		Source:    rec["source"],
	}
	score, err := strconv.ParseFloat(rec["score"], 64)
	if err != nil {
		return &errors.ValidationError{Fields: errors.FieldErrors{"score": "A valid number is required."}}
	}
	b.Score = score
	if err := resource.Validate(b); err != nil {
		return err
	}
	_, err = c.s.repos.Benchmarks.Insert(b)
	return err
}

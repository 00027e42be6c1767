package server

import (
	"net/http"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/users"
)

func vendorRefOf(a *users.Account) *products.VendorRef {
	return &products.VendorRef{ID: a.ID, CompanyName: a.CompanyName}
}

// ownedProduct returns the product when the signed-in vendor owns it.
// Other vendors' products are reported as not found.
func (s *Server) ownedProduct(r *http.Request) (products.Product, error) {
	id, err := pathID(r)
	if err != nil {
		return products.Product{}, err
	}
	p, err := s.repos.Products.Get(id)
	if err != nil {
		return products.Product{}, err
	}
	if !ownedBy(accountFromContext(r.Context()).ID)(p) {
		return products.Product{}, errors.ErrNotFound
	}
	return p, nil
}

func (s *Server) VendorProductsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.pageOf(r)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "Invalid page.")
			return
		}
		items, total := s.repos.Products.List(ownedBy(accountFromContext(r.Context()).ID), p.offset(), p.size)
		if items == nil {
			items = []products.Product{}
		}
		writePage(w, r, p, items, total)
	}
}

func (s *Server) VendorProductCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in products.Input
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}
		p, err := s.repos.Products.Insert(productFrom(in, vendorRefOf(accountFromContext(r.Context()))))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, p)
	}
}

func (s *Server) VendorProductGetHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.ownedProduct(r)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

// VendorProductReplaceHandler is a full PUT: every Input field is replaced,
// the image and vendor are kept.
func (s *Server) VendorProductReplaceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		current, err := s.ownedProduct(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var in products.Input
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}
		p, err := s.repos.Products.Update(current.ID, func(p *products.Product) error {
			replaced := productFrom(in, p.Vendor)
			replaced.ID, replaced.Image = p.ID, p.Image
			*p = replaced
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func (s *Server) VendorProductDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := s.ownedProduct(r)
		if err == nil {
			err = s.repos.Products.Delete(p.ID)
		}
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

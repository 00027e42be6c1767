package server

import (
	"net/http"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
)

type orderAction struct {
	Action string `json:"action" validate:"required"`
}

// visibleTo scopes orders by role: admins see all, vendors the orders for
// their products and users their own.
func visibleTo(account *users.Account) func(orders.Order) bool {
	return func(o orders.Order) bool {
		switch account.Role {
		case users.RoleAdmin:
			return true
		case users.RoleVendor:
			return o.Product != nil && o.Product.Vendor != nil && o.Product.Vendor.ID == account.ID
		default:
			return o.Customer != nil && o.Customer.ID == account.ID
		}
	}
}

// OrdersListHandler returns the caller's orders as a bare array.
func (s *Server) OrdersListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, _ := s.repos.Orders.List(visibleTo(accountFromContext(r.Context())), 0, 0)
		if items == nil {
			items = []orders.Order{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) OrderCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		var in orders.Input
		if err := decodeBody(r, &in); err != nil {
			writeError(w, err)
			return
		}

		var ordered products.Product
		_, err := s.repos.Products.Update(in.Product, func(p *products.Product) error {
			if p.Stock < in.Quantity {
				return &errors.ValidationError{Fields: errors.FieldErrors{"quantity": "Not enough stock."}}
			}
			p.Stock -= in.Quantity
			ordered = *p
			return nil
		})
		if errors.Is(err, errors.ErrNotFound) {
			writeFieldErrors(w, errors.FieldErrors{"product": "Invalid pk - object does not exist."})
			return
		}
		if err != nil {
			writeError(w, err)
			return
		}

		now := s.nowFunc()
		order, err := s.repos.Orders.Insert(orders.Order{
			Product:   s.productRef(ordered),
			Customer:  &orders.CustomerRef{ID: account.ID, Username: account.Username},
			Quantity:  in.Quantity,
			Total:     ordered.Price * float64(in.Quantity),
			Status:    orders.StatusPending,
			CreatedAt: &now,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		log.Info().Int("order", order.ID).Str("customer", account.Username).Msg("order placed")
		writeJSON(w, http.StatusCreated, order)
	}
}

// productRef snapshots the product and its vendor's contact details.
func (s *Server) productRef(p products.Product) *orders.ProductRef {
	ref := &orders.ProductRef{ID: p.ID, Name: p.Name, Price: p.Price}
	if p.Vendor == nil {
		return ref
	}
	ref.Vendor = &orders.VendorRef{ID: p.Vendor.ID, CompanyName: p.Vendor.CompanyName}
	if v, err := s.repos.Accounts.GetByID(p.Vendor.ID); err == nil && v.Phone != "" {
		phone := v.Phone
		ref.Vendor.Phone = &phone
	}
	return ref
}

// OrderActionHandler applies {"action": "confirm"} for the owning vendor or
// an admin.
func (s *Server) OrderActionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		var act orderAction
		if err := decodeBody(r, &act); err != nil {
			writeError(w, err)
			return
		}
		if act.Action != "confirm" {
			writeFieldErrors(w, errors.FieldErrors{"action": "\"" + act.Action + "\" is not a valid choice."})
			return
		}

		visible := visibleTo(account)
		order, err := s.repos.Orders.Update(id, func(o *orders.Order) error {
			if !visible(*o) {
				return errors.ErrNotFound
			}
			o.Status = orders.StatusConfirmed
			return nil
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, order)
	}
}

// OrderDeleteHandler lets an admin delete any order and a customer cancel
// their own order while it is pending.
func (s *Server) OrderDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account := accountFromContext(r.Context())
		id, err := pathID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		order, err := s.repos.Orders.Get(id)
		if err != nil || !visibleTo(account)(order) {
			writeError(w, errors.ErrNotFound)
			return
		}
		switch {
		case account.Role == users.RoleAdmin:
		case account.Role == users.RoleUser && !order.Confirmed():
		default:
			writeError(w, errors.ErrForbidden)
			return
		}
		if err := s.repos.Orders.Delete(id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

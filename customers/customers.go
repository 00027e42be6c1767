// Package customers is the back-office view of storefront accounts.
package customers

import (
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/resource"
)

const ResourceName = "customers"

type Customer struct {
	ID         int        `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FirstName  string     `json:"first_name,omitempty"`
	LastName   string     `json:"last_name,omitempty"`
	Phone      string     `json:"phone,omitempty"`
	Address    string     `json:"address,omitempty"`
	DateJoined *time.Time `json:"date_joined,omitempty"`
}

// Service is the generic admin repository for customers.
type Service struct {
	*resource.Repository[Customer]
}

func NewService(client *httpclient.Client, queries *cache.QueryClient, opts ...resource.Option) *Service {
	return &Service{resource.NewRepository[Customer](ResourceName, client, queries, opts...)}
}

package server

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/pcrs-client/benchmarks"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
)

const (
	DemoVendorUsername   = "techparts"
	DemoVendorPassword   = "Vendor123"
	DemoCustomerUsername = "shopper"
	DemoCustomerPassword = "Shopper123"
)

// InitialiseSystem creates the admin account and, with WithDemoData, a demo
// vendor, customer, products and benchmarks.
func (s *Server) InitialiseSystem() error {
	generatedPassword, err := s.createAdmin(s.config.GetAdminUsername())
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}
	if generatedPassword != "" {
		log.Info().
			Str("username", s.config.GetAdminUsername()).
			Str("password", generatedPassword).
			Msg("admin account created with a generated password")
	}

	if s.demoData {
		if err := s.seedDemoData(); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to seed demo data: %w", err)
		}
	}
	return nil
}

// createAdmin creates the admin account if it does not exist. The password
// is returned only when it was generated.
func (s *Server) createAdmin(username string) (generatedPassword string, err error) {
	if existing, err := s.repos.Accounts.GetByUsername(username); err == nil && existing.Role == users.RoleAdmin {
		return "", nil
	}

	password := s.adminPassword
	if password == "" {
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("[server createAdmin] failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	passwordHash, err := users.HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to hash password: %w", err)
	}
	now := s.nowFunc()
	admin := &users.Account{
		Profile: users.Profile{
			Username:   username,
			Email:      username + "@pcrs.local",
			FirstName:  "System",
			LastName:   "Administrator",
			Role:       users.RoleAdmin,
			DateJoined: &now,
		},
		PasswordHash: passwordHash,
	}
	if err := s.repos.Accounts.Upsert(admin); err != nil {
		return "", fmt.Errorf("[server createAdmin] failed to create admin: %w", err)
	}
	return generatedPassword, nil
}

var demoProducts = []products.Input{
	{Name: "Ryzen 7 7800X3D", Category: "cpu", Price: 449, Stock: 12, Description: "8-core gaming processor"},
	{Name: "Core i5-13400", Category: "cpu", Price: 219, Stock: 30, Description: "10-core desktop processor"},
	{Name: "GeForce RTX 4070", Category: "gpu", Price: 599, Stock: 8, Description: "12GB graphics card"},
	{Name: "Radeon RX 7600", Category: "gpu", Price: 269, Stock: 15},
	{Name: "Vengeance 32GB DDR5", Category: "ram", Price: 119, Stock: 40},
	{Name: "Samsung 990 Pro 2TB", Category: "storage", Price: 179, Stock: 25},
}

var demoBenchmarks = []benchmarks.Benchmark{
	{Component: "cpu", Name: "Ryzen 7 7800X3D", Score: 92, Source: "demo"},
	{Component: "cpu", Name: "Core i5-13400", Score: 64, Source: "demo"},
	{Component: "gpu", Name: "GeForce RTX 4070", Score: 88, Source: "demo"},
	{Component: "gpu", Name: "Radeon RX 7600", Score: 61, Source: "demo"},
	{Component: "ram", Name: "Vengeance 32GB DDR5", Score: 75, Source: "demo"},
	{Component: "storage", Name: "Samsung 990 Pro 2TB", Score: 83, Source: "demo"},
}

func (s *Server) seedDemoData() error {
	if _, err := s.repos.Accounts.GetByUsername(DemoVendorUsername); err == nil {
		return nil
	}
	vendor, err := s.createAccount(users.Profile{
		Username:    DemoVendorUsername,
		Email:       "sales@techparts.example",
		CompanyName: "TechParts Ltd",
		Phone:       "+44 20 7946 0000",
		Role:        users.RoleVendor,
	}, DemoVendorPassword)
	if err != nil {
		return err
	}
	if _, err := s.createAccount(users.Profile{
		Username:  DemoCustomerUsername,
		Email:     "shopper@example.com",
		FirstName: "Sam",
		Role:      users.RoleUser,
	}, DemoCustomerPassword); err != nil {
		return err
	}

	for _, in := range demoProducts {
		if _, err := s.repos.Products.Insert(productFrom(in, vendorRefOf(vendor))); err != nil {
			return err
		}
	}
	for _, b := range demoBenchmarks {
		if _, err := s.repos.Benchmarks.Insert(b); err != nil {
			return err
		}
	}
	log.Info().
		Str("vendor", DemoVendorUsername).
		Str("customer", DemoCustomerUsername).
		Int("products", len(demoProducts)).
		Msg("demo data seeded")
	return nil
}

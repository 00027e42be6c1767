package users

import (
	"fmt"
	"time"

	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Role is the account kind the backend puts in the access token.
type Role string

const (
	RoleAdmin  Role = "admin"  // Back office: vendors, customers, all products and orders
	RoleVendor Role = "vendor" // Manages its own products and sees orders for them
	RoleUser   Role = "user"   // Storefront customer
)

// ParseRole maps a stored or decoded role string to a Role.
func ParseRole(s string) (Role, bool) {
	switch r := Role(s); r {
	case RoleAdmin, RoleVendor, RoleUser:
		return r, true
	}
	return "", false
}

// ProfilePath is the endpoint serving this role's own profile.
func (r Role) ProfilePath() string {
	if r == RoleVendor {
		return "/vendor/profile/"
	}
	return "/user/profile/"
}

func (r Role) String() string {
	return string(r)
}

// Profile is the signed-in account as the profile endpoints return it.
type Profile struct {
	ID          int        `json:"id,omitempty"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	FirstName   string     `json:"first_name,omitempty"`
	LastName    string     `json:"last_name,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Address     string     `json:"address,omitempty"`
	CompanyName string     `json:"company_name,omitempty"` // vendors only
	Role        Role       `json:"role,omitempty"`
	DateJoined  *time.Time `json:"date_joined,omitempty"`
}

// DisplayName prefers the full name and falls back to the username.
func (p Profile) DisplayName() string {
	switch {
	case p.FirstName != "" && p.LastName != "":
		return p.FirstName + " " + p.LastName
	case p.FirstName != "":
		return p.FirstName
	}
	return p.Username
}

// ProfileUpdate is the body of PUT /user/profile/ and /vendor/profile/.
// Empty fields are left unchanged.
type ProfileUpdate struct {
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address     string `json:"address,omitempty"`
	CompanyName string `json:"company_name,omitempty"`
}

// Registration is the body of POST /register/.
type Registration struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
}

// Account is a stored user: the profile plus credentials.
type Account struct {
	Profile
	PasswordHash string `json:"-"` // never serialize
	Blocked      bool   `json:"blocked,omitempty"`
}

// Apply copies the non-empty fields of u onto the account.
func (a *Account) Apply(u ProfileUpdate) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&a.Email, u.Email)
	set(&a.FirstName, u.FirstName)
	set(&a.LastName, u.LastName)
	set(&a.Phone, u.Phone)
	set(&a.Address, u.Address)
	set(&a.CompanyName, u.CompanyName)
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the account's hash.
func (a *Account) CheckPassword(password string) bool {
	return CheckPasswordHash(password, a.PasswordHash)
}

package session

import (
	"fmt"
	"slices"
	"strings"
)

// Policy grants a permission on a tagged area of the ERP
type Policy struct {
	Tag        string `json:"tag"`
	Permission string `json:"permission"`
}

// User is the identity returned by the login exchange. It is replaced
// wholesale on every successful login and never mutated in place.
type User struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Policies []Policy `json:"policies"`
}

// HasRole reports whether the user holds the role (case-insensitive)
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

// Can reports whether any policy grants permission on tag
func (u *User) Can(tag, permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Policies {
		if strings.EqualFold(p.Tag, tag) && strings.EqualFold(p.Permission, permission) {
			return true
		}
	}
	return false
}

func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	return &User{
		Username: u.Username,
		Roles:    slices.Clone(u.Roles),
		Policies: slices.Clone(u.Policies),
	}
}

// LoginResponse is the body of a successful POST /api/auth/login
type LoginResponse struct {
	Token    string   `json:"token"`
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Policies []Policy `json:"policies"`
}

// identity validates the response and extracts the user from it
func (r *LoginResponse) identity() (*User, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if r.Token == "" {
		return nil, fmt.Errorf("%w: missing token", ErrMalformedResponse)
	}
	if r.Username == "" {
		return nil, fmt.Errorf("%w: missing username", ErrMalformedResponse)
	}

	roles := r.Roles
	if roles == nil {
		roles = []string{}
	}
	policies := r.Policies
	if policies == nil {
		policies = []Policy{}
	}

	return &User{
		Username: r.Username,
		Roles:    slices.Clone(roles),
		Policies: slices.Clone(policies),
	}, nil
}

// State is a consistent snapshot of the session
type State struct {
	Token           string
	User            *User
	IsAuthenticated bool
	Loading         bool
}

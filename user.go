package minibank

import (
	"fmt"
	"strings"
)

const identifierLen = 11

type User struct {
	Name       string `json:"name" yaml:"name"`
	BirthDate  string `json:"birth_date" yaml:"birth_date"`
	Identifier string `json:"identifier" yaml:"identifier"`
	Address    string `json:"address" yaml:"address"`
}

// UserRegistry holds every registered user in registration order. Users are never updated or
// removed, so pointers handed out by the registry stay valid for its lifetime.
type UserRegistry struct {
	users []*User
}

func NewUserRegistry() *UserRegistry {
	return &UserRegistry{}
}

func (r *UserRegistry) Register(name, birthDate, identifier, address string) (*User, error) {
	id := NormalizeIdentifier(identifier)
	if len(id) != identifierLen {
		return nil, ErrInvalidIdentifier
	}
	if _, ok := r.FindByIdentifier(id); ok {
		return nil, ErrDuplicateIdentifier
	}

	u := &User{
		Name:       strings.TrimSpace(name),
		BirthDate:  strings.TrimSpace(birthDate),
		Identifier: id,
		Address:    strings.TrimSpace(address),
	}
	r.users = append(r.users, u)
	return u, nil
}

func (r *UserRegistry) FindByIdentifier(identifier string) (*User, bool) {
	id := NormalizeIdentifier(identifier)
	for _, u := range r.users {
		if u.Identifier == id {
			return u, true
		}
	}
	return nil, false
}

func (r *UserRegistry) Len() int {
	return len(r.users)
}

// ComposeAddress joins the address parts collected by the console into the single stored line.
func ComposeAddress(street, neighborhood, city, state string) string {
	return fmt.Sprintf("%s - %s - %s/%s", street, neighborhood, city, state)
}

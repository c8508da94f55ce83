package models

import (
	"time"
)

// User represents an account in the system
type User struct {
	ID           string     `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Permission   Permission `json:"-" db:"permission"`
	Expired      bool       `json:"expired" db:"expired"`
	LastLogin    *time.Time `json:"last_login,omitempty" db:"last_login"`
	CreateTime   time.Time  `json:"create_time" db:"create_time"`
}

// Can reports whether the user holds the given permission bits.
// A nil user (anonymous request) holds none.
func (u *User) Can(p Permission) bool {
	if u == nil {
		return false
	}
	return u.Permission&p != 0
}

// Active reports whether the account may log in.
func (u *User) Active() bool {
	return u != nil && !u.Expired
}

// UserView is the API representation of a user. The password hash is
// never serialized; the permission value only on request.
type UserView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Permission []string   `json:"permission,omitempty"`
	Expired    bool       `json:"expired"`
	LastLogin  *time.Time `json:"last_login"`
}

// View builds the API representation of the user.
func (u *User) View(withPermission bool) UserView {
	v := UserView{
		ID:        u.ID,
		Name:      u.Name,
		Expired:   u.Expired,
		LastLogin: u.LastLogin,
	}
	if withPermission {
		v.Permission = FormatPermission(u.Permission)
	}
	return v
}

// UserRef is an embedded owner reference in article and category views.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

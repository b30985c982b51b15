package domain

import (
	"time"
)

// AccountKind discriminates the three identity variants. Every token and
// permission decision branches on this tag, never on the concrete type.
type AccountKind string

const (
	AccountKindStaff  AccountKind = "staff"
	AccountKindPOS    AccountKind = "pos"
	AccountKindClient AccountKind = "client"
)

// StaffStatus covers the lifecycle of a back-office user account.
type StaffStatus string

const (
	StaffActive    StaffStatus = "active"
	StaffSuspended StaffStatus = "suspended"
	StaffBanned    StaffStatus = "banned"
	StaffInactive  StaffStatus = "inactive"
	StaffDeleted   StaffStatus = "deleted"
)

// ClientStatus includes the approval workflow states a client passes
// through before it may authenticate.
type ClientStatus string

const (
	ClientActive    ClientStatus = "active"
	ClientApproved  ClientStatus = "approved"
	ClientSuspended ClientStatus = "suspended"
	ClientBanned    ClientStatus = "banned"
	ClientInactive  ClientStatus = "inactive"
	ClientDeleted   ClientStatus = "deleted"
)

// LoginState carries the security bookkeeping shared by all account kinds:
// failure counter, lockout timestamp, last-login metadata and the optional
// allowed-login window ("15:04" wall-clock strings, empty = unrestricted).
type LoginState struct {
	FailedAttempts     int        `gorm:"default:0" json:"failed_attempts"`
	SuspendedUntil     *time.Time `json:"suspended_until,omitempty"`
	LastLogin          *time.Time `json:"last_login,omitempty"`
	LastLoginIP        string     `gorm:"size:45" json:"last_login_ip,omitempty"`
	LastLoginUserAgent string     `gorm:"size:255" json:"last_login_user_agent,omitempty"`
	AllowedLoginStart  string     `gorm:"size:5" json:"allowed_login_start,omitempty"`
	AllowedLoginEnd    string     `gorm:"size:5" json:"allowed_login_end,omitempty"`
}

// RecordLogin stamps successful-login metadata and clears failure
// bookkeeping.
func (s *LoginState) RecordLogin(ip, userAgent string, at time.Time) {
	t := at
	s.LastLogin = &t
	s.LastLoginIP = ip
	if len(userAgent) > 255 {
		userAgent = userAgent[:255]
	}
	s.LastLoginUserAgent = userAgent
	s.FailedAttempts = 0
	s.SuspendedUntil = nil
}

// Account is the capability surface the auth subsystem needs from any of
// the three identity variants.
type Account interface {
	AccountID() uint
	Kind() AccountKind
	// Identifier is what the account logs in with: email for staff,
	// phone for POS users and clients.
	Identifier() string
	DisplayName() string
	ContactEmail() string
	ContactPhone() string
	PasswordHash() string
	SetPasswordHash(hash string)
	// Login exposes the mutable security bookkeeping for the account.
	Login() *LoginState
	// StatusActive reports whether the account's lifecycle status permits
	// authentication at all. Suspension and login windows are checked
	// separately against Login().
	StatusActive() bool
	RoleNames() []string
}

// PINAuthenticable marks the account kinds that carry a PIN credential.
// Staff users deliberately do not implement it.
type PINAuthenticable interface {
	Account
	PINHash() string
	SetPINHash(hash string)
}

// StaffUser is a back-office user. Login identifier is the email address.
type StaffUser struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	CompanyID    uint        `gorm:"index" json:"company_id"`
	FirstName    string      `gorm:"size:120" json:"first_name"`
	LastName     string      `gorm:"size:120" json:"last_name"`
	Username     string      `gorm:"uniqueIndex;size:120" json:"username"`
	Email        string      `gorm:"uniqueIndex;size:255" json:"email"`
	Phone        string      `gorm:"index;size:40" json:"phone"`
	Password     string      `gorm:"column:password_hash;size:255" json:"-"`
	Status       StaffStatus `gorm:"size:20;default:active" json:"status"`
	LoginState   `gorm:"embedded"`
	RequirePasswordChange bool      `gorm:"default:false" json:"require_password_change"`
	Roles                 []Role    `gorm:"many2many:user_roles;" json:"roles,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (StaffUser) TableName() string { return "users" }

func (u *StaffUser) AccountID() uint          { return u.ID }
func (u *StaffUser) Kind() AccountKind        { return AccountKindStaff }
func (u *StaffUser) Identifier() string       { return u.Email }
func (u *StaffUser) DisplayName() string      { return u.Username }
func (u *StaffUser) ContactEmail() string     { return u.Email }
func (u *StaffUser) ContactPhone() string     { return u.Phone }
func (u *StaffUser) PasswordHash() string     { return u.Password }
func (u *StaffUser) SetPasswordHash(h string) { u.Password = h }
func (u *StaffUser) Login() *LoginState       { return &u.LoginState }
func (u *StaffUser) StatusActive() bool       { return u.Status == StaffActive }

func (u *StaffUser) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// POSUser is a point-of-sale terminal operator. Login identifier is the
// phone number; both a password and a PIN are carried.
type POSUser struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	POSID      uint   `gorm:"index;column:pos_id" json:"pos_id"`
	FirstName  string `gorm:"size:120" json:"first_name"`
	LastName   string `gorm:"size:120" json:"last_name"`
	Username   string `gorm:"uniqueIndex;size:120" json:"username"`
	Phone      string `gorm:"uniqueIndex;size:40" json:"phone"`
	Email      string `gorm:"size:255" json:"email"`
	Password   string `gorm:"column:password_hash;size:255" json:"-"`
	PIN        string `gorm:"column:pin_hash;size:255" json:"-"`
	IsActive   bool   `json:"is_active"`
	LoginState `gorm:"embedded"`
	RequirePasswordChange bool      `gorm:"default:true" json:"require_password_change"`
	Roles                 []Role    `gorm:"many2many:posuser_roles;joinForeignKey:posuser_id" json:"roles,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

func (POSUser) TableName() string { return "pos_users" }

func (u *POSUser) AccountID() uint          { return u.ID }
func (u *POSUser) Kind() AccountKind        { return AccountKindPOS }
func (u *POSUser) Identifier() string       { return u.Phone }
func (u *POSUser) DisplayName() string      { return u.Username }
func (u *POSUser) ContactEmail() string     { return u.Email }
func (u *POSUser) ContactPhone() string     { return u.Phone }
func (u *POSUser) PasswordHash() string     { return u.Password }
func (u *POSUser) SetPasswordHash(h string) { u.Password = h }
func (u *POSUser) PINHash() string          { return u.PIN }
func (u *POSUser) SetPINHash(h string)      { u.PIN = h }
func (u *POSUser) Login() *LoginState       { return &u.LoginState }
func (u *POSUser) StatusActive() bool       { return u.IsActive }

func (u *POSUser) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, r.Name)
	}
	return names
}

// Client is a retail customer account created through the approval
// workflow. Login identifier is the phone number.
type Client struct {
	ID         uint         `gorm:"primaryKey" json:"id"`
	FirstName  string       `gorm:"size:120" json:"first_name"`
	LastName   string       `gorm:"size:120" json:"last_name"`
	Phone      string       `gorm:"uniqueIndex;size:40" json:"phone"`
	Email      string       `gorm:"size:255" json:"email"`
	Status     ClientStatus `gorm:"size:20;default:inactive" json:"status"`
	Password   string       `gorm:"column:password_hash;size:255" json:"-"`
	PIN        string       `gorm:"column:pin_hash;size:255" json:"-"`
	LoginState `gorm:"embedded"`
	Roles      []Role    `gorm:"many2many:client_roles;" json:"roles,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (Client) TableName() string { return "clients" }

func (c *Client) AccountID() uint          { return c.ID }
func (c *Client) Kind() AccountKind        { return AccountKindClient }
func (c *Client) Identifier() string       { return c.Phone }
func (c *Client) DisplayName() string      { return c.FirstName + " " + c.LastName }
func (c *Client) ContactEmail() string     { return c.Email }
func (c *Client) ContactPhone() string     { return c.Phone }
func (c *Client) PasswordHash() string     { return c.Password }
func (c *Client) SetPasswordHash(h string) { c.Password = h }
func (c *Client) PINHash() string          { return c.PIN }
func (c *Client) SetPINHash(h string)      { c.PIN = h }
func (c *Client) Login() *LoginState       { return &c.LoginState }

// StatusActive treats both "approved" and "active" as login-capable, since
// approval flips a client straight into the approved state.
func (c *Client) StatusActive() bool {
	return c.Status == ClientActive || c.Status == ClientApproved
}

func (c *Client) RoleNames() []string {
	names := make([]string, 0, len(c.Roles))
	for _, r := range c.Roles {
		names = append(names, r.Name)
	}
	return names
}

// PrimaryRole returns the first assigned role name, used as the role
// snapshot embedded in issued tokens. Authorization decisions always
// re-read the full role set from the database.
func PrimaryRole(a Account) string {
	if names := a.RoleNames(); len(names) > 0 {
		return names[0]
	}
	return ""
}

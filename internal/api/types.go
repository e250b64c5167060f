package api

// Organization is a tenant account the user belongs to.
type Organization struct {
	UUID      string `json:"uuid" yaml:"uuid"`
	Name      string `json:"name" yaml:"name"`
	CreatedBy string `json:"created_by" yaml:"created_by"`
	Created   string `json:"created" yaml:"created"`
	Role      string `json:"role,omitempty" yaml:"role,omitempty"`
}

// User is the authenticated account with its organization memberships.
type User struct {
	Email         string         `json:"email" yaml:"email"`
	FirstName     string         `json:"first_name" yaml:"first_name"`
	LastName      string         `json:"last_name" yaml:"last_name"`
	PhoneNumber   *string        `json:"phone_number" yaml:"phone_number"`
	Organizations []Organization `json:"organizations" yaml:"organizations"`
}

// FullName joins first and last name.
func (u User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// MemberUser is the user record embedded in a Member.
type MemberUser struct {
	Email       string  `json:"email" yaml:"email"`
	FirstName   string  `json:"first_name" yaml:"first_name"`
	LastName    string  `json:"last_name" yaml:"last_name"`
	PhoneNumber *string `json:"phone_number" yaml:"phone_number"`
}

// Member is a user's membership in an organization.
type Member struct {
	UUID      string     `json:"uuid" yaml:"uuid"`
	User      MemberUser `json:"user" yaml:"user"`
	Role      string     `json:"role" yaml:"role"`
	JoinedAt  string     `json:"joined_at" yaml:"joined_at"`
	InvitedBy string     `json:"invited_by" yaml:"invited_by"`
}

// Invitation statuses.
const (
	InvitePending   = "pending"
	InviteAccepted  = "accepted"
	InviteDeclined  = "declined"
	InviteCancelled = "cancelled"
)

// Invitation is an invite to join an organization.
type Invitation struct {
	Token            string `json:"token" yaml:"token"`
	Email            string `json:"email" yaml:"email"`
	Role             string `json:"role" yaml:"role"`
	OrganizationName string `json:"organization_name" yaml:"organization_name"`
	OrganizationUUID string `json:"organization_uuid" yaml:"organization_uuid"`
	SentByEmail      string `json:"sent_by_email" yaml:"sent_by_email"`
	SentByName       string `json:"sent_by_name" yaml:"sent_by_name"`
	Status           string `json:"status" yaml:"status"`
	Created          string `json:"created" yaml:"created"`
	ExpiresAt        string `json:"expires_at" yaml:"expires_at"`
}

// AuthTokens is the token pair issued at login.
type AuthTokens struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// RegisterResponse echoes the created account.
type RegisterResponse struct {
	Email     string `json:"email" yaml:"email"`
	FirstName string `json:"first_name" yaml:"first_name"`
	LastName  string `json:"last_name" yaml:"last_name"`
}

// Detail is the generic {"detail": "..."} acknowledgement.
type Detail struct {
	Detail string `json:"detail" yaml:"detail"`
}

// MemberRole is returned when a member is added or their role changes.
type MemberRole struct {
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	Role  string `json:"role" yaml:"role"`
}

// Balance is the wallet balance as returned by the backend. The amount is
// kept as a decimal string.
type Balance struct {
	Balance string `json:"balance"`
}

// PaymentOption is one way to fund a wallet. Exactly one of the variant
// field groups is populated: PaymentURL for online checkout, the bank fields
// for bank transfer.
type PaymentOption struct {
	PaymentGateway string `json:"payment_gateway" yaml:"payment_gateway"`
	Slug           string `json:"slug" yaml:"slug"`
	Logo           string `json:"logo" yaml:"logo"`
	Amount         string `json:"amount" yaml:"amount"`
	Fee            string `json:"fee" yaml:"fee"`
	Provider       string `json:"provider" yaml:"provider"`

	// Online checkout
	PaymentURL string `json:"payment_url,omitempty" yaml:"payment_url,omitempty"`

	// Bank transfer
	BankName         string `json:"bank_name,omitempty" yaml:"bank_name,omitempty"`
	Icon             string `json:"icon,omitempty" yaml:"icon,omitempty"`
	AccountNumber    string `json:"account_number,omitempty" yaml:"account_number,omitempty"`
	AccountName      string `json:"account_name,omitempty" yaml:"account_name,omitempty"`
	AccountReference string `json:"account_reference,omitempty" yaml:"account_reference,omitempty"`
}

// IsBankTransfer reports whether the option carries bank account details.
func (p PaymentOption) IsBankTransfer() bool {
	return p.AccountNumber != ""
}

// IsOnlineCheckout reports whether the option redirects to a checkout page.
func (p PaymentOption) IsOnlineCheckout() bool {
	return p.PaymentURL != ""
}

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/vendaa/vendaa/internal/errors"
)

// Member roles.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// OrganizationRequest creates or renames an organization.
type OrganizationRequest struct {
	Name string `json:"name"`
}

// Validate requires a non-empty name.
func (r OrganizationRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.NewValidationError("name", "organization name is required")
	}
	return nil
}

// AddMemberRequest invites a user into an organization.
type AddMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Validate allows only admin and member; ownership is never granted on add.
func (r AddMemberRequest) Validate() error {
	if err := validateEmail(r.Email); err != nil {
		return err
	}
	if r.Role != RoleAdmin && r.Role != RoleMember {
		return errors.NewValidationError("role", "must be admin or member")
	}
	return nil
}

// UpdateMemberRoleRequest changes a member's role.
type UpdateMemberRoleRequest struct {
	Role string `json:"role"`
}

// Validate checks the role.
func (r UpdateMemberRoleRequest) Validate() error {
	switch r.Role {
	case RoleOwner, RoleAdmin, RoleMember:
		return nil
	}
	return errors.NewValidationError("role", "must be owner, admin or member")
}

func orgPath(orgID string, rest ...string) string {
	return "/auth/organizations/" + url.PathEscape(orgID) + "/" + strings.Join(rest, "")
}

// CreateOrganization creates an organization owned by the current user.
func (c *Client) CreateOrganization(ctx context.Context, req OrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var org Organization
	if err := c.do(ctx, http.MethodPost, "/auth/organizations/", "", nil, req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateOrganization renames an organization.
func (c *Client) UpdateOrganization(ctx context.Context, orgID string, req OrganizationRequest) (*Organization, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var org Organization
	if err := c.do(ctx, http.MethodPatch, orgPath(orgID), "/auth/organizations/{id}/", nil, req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

// ListMembers lists an organization's members.
func (c *Client) ListMembers(ctx context.Context, orgID string) ([]Member, error) {
	var members []Member
	if err := c.do(ctx, http.MethodGet, orgPath(orgID, "members/"), "/auth/organizations/{id}/members/", nil, nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

// AddMember adds a user to an organization.
func (c *Client) AddMember(ctx context.Context, orgID string, req AddMemberRequest) (*MemberRole, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out MemberRole
	if err := c.do(ctx, http.MethodPost, orgPath(orgID, "members/"), "/auth/organizations/{id}/members/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMemberRole changes a member's role.
func (c *Client) UpdateMemberRole(ctx context.Context, orgID, memberID string, req UpdateMemberRoleRequest) (*MemberRole, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var out MemberRole
	path := orgPath(orgID, "members/", url.PathEscape(memberID), "/")
	if err := c.do(ctx, http.MethodPatch, path, "/auth/organizations/{id}/members/{member}/", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a member. The backend answers 204.
func (c *Client) RemoveMember(ctx context.Context, orgID, memberID string) error {
	path := orgPath(orgID, "members/", url.PathEscape(memberID), "/")
	return c.do(ctx, http.MethodDelete, path, "/auth/organizations/{id}/members/{member}/", nil, nil, nil)
}

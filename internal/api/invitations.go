package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/vendaa/vendaa/internal/errors"
)

// Invitation list directions.
const (
	InvitationsSent     = "sent"
	InvitationsReceived = "received"
)

// ListInvitations lists invitations sent by or addressed to the current user.
// An empty kind means received.
func (c *Client) ListInvitations(ctx context.Context, kind string) ([]Invitation, error) {
	if kind == "" {
		kind = InvitationsReceived
	}
	if kind != InvitationsSent && kind != InvitationsReceived {
		return nil, errors.NewValidationError("type", "must be sent or received")
	}
	var out []Invitation
	q := url.Values{"type": {kind}}
	if err := c.do(ctx, http.MethodGet, "/auth/invitations/", "", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// VerifyInvitation looks up an invitation by its token.
func (c *Client) VerifyInvitation(ctx context.Context, token string) (*Invitation, error) {
	if token == "" {
		return nil, errors.NewValidationError("token", "invitation token is required")
	}
	var inv Invitation
	q := url.Values{"token": {token}}
	if err := c.do(ctx, http.MethodGet, "/auth/invites/verify/", "", q, nil, &inv); err != nil {
		return nil, err
	}
	return &inv, nil
}

// AcceptInvitation joins the organization behind token.
func (c *Client) AcceptInvitation(ctx context.Context, token string) (*Detail, error) {
	if token == "" {
		return nil, errors.NewValidationError("token", "invitation token is required")
	}
	var out Detail
	body := map[string]string{"token": token}
	if err := c.do(ctx, http.MethodPost, "/auth/invites/accept/", "", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeclineInvitation declines a received invitation.
func (c *Client) DeclineInvitation(ctx context.Context, id string) (*Detail, error) {
	return c.inviteAction(ctx, id, "decline")
}

// CancelInvitation withdraws a sent invitation.
func (c *Client) CancelInvitation(ctx context.Context, id string) (*Detail, error) {
	return c.inviteAction(ctx, id, "cancel")
}

func (c *Client) inviteAction(ctx context.Context, id, action string) (*Detail, error) {
	if id == "" {
		return nil, errors.NewValidationError("id", "invitation id is required")
	}
	var out Detail
	path := "/auth/invites/" + url.PathEscape(id) + "/" + action + "/"
	route := "/auth/invites/{id}/" + action + "/"
	if err := c.do(ctx, http.MethodPost, path, route, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

package organization

import "github.com/vendaa/vendaa/internal/api"

// Snapshot is an immutable copy of the coordinator state.
type Snapshot struct {
	State         State
	User          *api.User
	Organizations []api.Organization
	Selected      *api.Organization
	// Balance is nil when unknown, which is distinct from "0".
	Balance        *string
	BalanceLoading bool
	// Err is the failure of the last Init, if any.
	Err error
}

// Loading reports whether the organization list is still being fetched.
func (s Snapshot) Loading() bool {
	return s.State == Uninitialized || s.State == Loading
}

// HasOrganizations reports whether the user belongs to any organization.
func (s Snapshot) HasOrganizations() bool {
	return len(s.Organizations) > 0
}

// SelectedID returns the selected organization id or "".
func (s Snapshot) SelectedID() string {
	if s.Selected == nil {
		return ""
	}
	return s.Selected.UUID
}

// Snapshot returns a copy of the current state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		State:          c.state,
		BalanceLoading: c.balanceLoading,
		Err:            c.err,
	}
	if c.user != nil {
		u := *c.user
		u.Organizations = append([]api.Organization(nil), c.user.Organizations...)
		snap.User = &u
	}
	if len(c.orgs) > 0 {
		snap.Organizations = append([]api.Organization(nil), c.orgs...)
	}
	if c.selected != nil {
		sel := *c.selected
		snap.Selected = &sel
	}
	if c.balance != nil {
		b := *c.balance
		snap.Balance = &b
	}
	return snap
}

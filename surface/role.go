package surface

// Role is the protocol role a surface has been assigned (xdg_toplevel,
// a cursor, a sub-surface, ...). A surface carries at most one role
// for its lifetime; SetRole enforces that and reports a protocol
// violation otherwise. The interpretation of role data is entirely up
// to the role implementation — the core only needs a name for error
// messages and the optional hooks below.
type Role interface {
	Name() string
}

// RolePrecommitter is an optional Role capability: called immediately
// before next becomes current, while s.Current() still refers to the
// outgoing generation. A role without protocol-level commit
// invariants to enforce can leave this unimplemented.
type RolePrecommitter interface {
	Precommit(s *Surface, next *State)
}

// RoleCommitter is an optional Role capability: called once the new
// state has fully landed as current, mirroring RolePrecommitter but on
// the other side of the commit.
type RoleCommitter interface {
	Commit(s *Surface)
}

// SetRole assigns role and its opaque roleData to s. Reassigning the
// same role object with the same role data is a no-op success (a
// client is allowed to bind the same role twice); assigning a
// different role, or a different role-data object under the same
// role, is a protocol violation.
func (s *Surface) SetRole(role Role, roleData interface{}, errCode ProtocolErrorCode) error {
	if s.role != nil && s.role != role {
		return protoErr(errCode, "surface already has role %q, cannot assign %q", s.role.Name(), role.Name())
	}
	if s.roleData != nil && s.roleData != roleData {
		return protoErr(errCode, "role %q object already exists for this surface", role.Name())
	}
	s.role = role
	s.roleData = roleData
	return nil
}

// Role returns the surface's assigned role, or nil if none.
func (s *Surface) Role() Role { return s.role }

// RoleData returns the opaque role data passed to SetRole.
func (s *Surface) RoleData() interface{} { return s.roleData }

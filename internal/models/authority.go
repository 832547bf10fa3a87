package models

// Authority is the administrative role class governing who may create, edit or
// delete a PRN range. It is a strict hierarchy: SUPER_ADMIN outranks
// PLACEMENT_OFFICER. All precedence decisions go through Outranks/CanManage so
// the ordering lives in exactly one place.
type Authority string

const (
	AuthoritySuperAdmin       Authority = "SUPER_ADMIN"
	AuthorityPlacementOfficer Authority = "PLACEMENT_OFFICER"
)

var authorityRank = map[Authority]int{
	AuthorityPlacementOfficer: 1,
	AuthoritySuperAdmin:       2,
}

// Valid reports whether the authority is a known class.
func (a Authority) Valid() bool {
	_, ok := authorityRank[a]
	return ok
}

// Outranks reports whether a sits strictly above other in the hierarchy.
func (a Authority) Outranks(other Authority) bool {
	return authorityRank[a] > authorityRank[other]
}

// CanManage reports whether a may mutate a range owned by owner: the
// creator-authority class itself, or any higher authority.
func (a Authority) CanManage(owner Authority) bool {
	if !a.Valid() || !owner.Valid() {
		return false
	}
	return a == owner || a.Outranks(owner)
}

// AuthorityForRole maps an account role onto its authority class. Students
// hold no authority over the registry.
func AuthorityForRole(role UserRole) (Authority, bool) {
	switch role {
	case RoleSuperAdmin:
		return AuthoritySuperAdmin, true
	case RolePlacementOfficer:
		return AuthorityPlacementOfficer, true
	default:
		return "", false
	}
}

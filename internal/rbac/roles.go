package rbac

// Role names. Keep these stable; they are part of auth/RBAC contracts.
const (
	RoleRequester       = "requester"
	RoleManager         = "manager"
	RoleCommitteeMember = "committee_member"
	RoleTechLead        = "tech_lead"
	RoleAdmin           = "admin"
	RoleSuperAdmin      = "super_admin"
	RoleAuditor         = "auditor" // hidden role, read-only compliance access
)

func IsSuperAdmin(role string) bool { return role == RoleSuperAdmin }

func IsHiddenRole(role string) bool { return role == RoleAuditor }

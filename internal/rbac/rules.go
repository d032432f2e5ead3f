package rbac

// Platform roles.
const (
	RoleManager    = "manager"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleSeller     = "seller"
	RoleAffiliate  = "affiliate"
)

// Permissions checked by the progression API.
const (
	PermProgressView    = "progress:view"
	PermQuizAnswer      = "quiz:answer"
	PermExamAnswer      = "exam:answer"
	PermCertificateView = "certificate:view"

	PermChangePassword = "user:change_password"
)

// RolePermissions is the default policy. A trailing "*" matches a prefix.
var RolePermissions = map[string][]string{
	RoleStudent: {
		PermProgressView,
		PermQuizAnswer,
		PermExamAnswer,
		PermCertificateView,
		PermChangePassword,
	},
	// instructors walk their own courses as a student would, minus certificates
	RoleInstructor: {
		"progress:*",
		"quiz:*",
		"exam:*",
		PermChangePassword,
	},
	RoleSeller:    {PermChangePassword},
	RoleAffiliate: {PermChangePassword},
	RoleManager: {
		"*",
	},
}

// KnownRole reports whether role appears in the default policy.
func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

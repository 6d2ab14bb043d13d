package rbac

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

const (
	PermAssessmentCreate  = "assessment:create"
	PermAssessmentViewOwn = "assessment:view-own"
	PermAssessmentViewAll = "assessment:view-all"
	PermCatalogView       = "catalog:view"
	PermCatalogSeed       = "catalog:seed"
	PermProfileManage     = "profile:manage"
	PermReportGenerate    = "report:generate"
	PermUsersList         = "users:list"
	PermUsersManage       = "users:manage"
)

var RolePermissions = map[string][]string{
	RoleUser: {
		PermAssessmentCreate,
		PermAssessmentViewOwn,
		PermCatalogView,
		PermProfileManage,
		PermReportGenerate,
	},
	RoleAdmin: {
		"*", // everything
	},
}

// KnownRole reports whether role has a permission set.
func KnownRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

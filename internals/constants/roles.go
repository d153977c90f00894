package constants

import "fmt"

const (
	RoleAdmin = "admin"
	RoleOwner = "owner"
)

// ReviewerRoles may use the admin review console.
var ReviewerRoles = []string{RoleAdmin, RoleOwner}

const errOnlyReviewersCanAccess = "Only admins can access %s."

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(errOnlyReviewersCanAccess, feature)
}

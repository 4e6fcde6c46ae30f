package permission

import "github.com/avrohommoshebaum/school-crm-sub001/internal/models"

// Resource names a protected area of the application. The set is fixed;
// role grants referencing anything outside it are ignored as stale data.
type Resource string

const (
	ResourceStudents            Resource = "students"
	ResourceStaff               Resource = "staff"
	ResourceFamilies            Resource = "families"
	ResourceClasses             Resource = "classes"
	ResourceGrades              Resource = "grades"
	ResourceAttendance          Resource = "attendance"
	ResourceReportCards         Resource = "report_cards"
	ResourceFinancial           Resource = "financial"
	ResourceCommunicationsEmail Resource = "communications_email"
	ResourceCommunicationsSMS   Resource = "communications_sms"
	ResourceSettings            Resource = "settings"
)

var allResources = []Resource{
	ResourceStudents,
	ResourceStaff,
	ResourceFamilies,
	ResourceClasses,
	ResourceGrades,
	ResourceAttendance,
	ResourceReportCards,
	ResourceFinancial,
	ResourceCommunicationsEmail,
	ResourceCommunicationsSMS,
	ResourceSettings,
}

// Action selects one flag of a capability record.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Set maps every resource to the capabilities the user holds on it. It is
// derived from the user's roles on each session load and never persisted.
type Set map[Resource]models.Capability

// Can reports whether the set grants the action on the resource.
func (s Set) Can(resource Resource, action Action) bool {
	cap, ok := s[resource]
	if !ok {
		return false
	}
	switch action {
	case ActionView:
		return cap.View
	case ActionCreate:
		return cap.Create
	case ActionEdit:
		return cap.Edit
	case ActionDelete:
		return cap.Delete
	}
	return false
}

// Empty returns a set with every resource present and all flags false.
func Empty() Set {
	set := make(Set, len(allResources))
	for _, r := range allResources {
		set[r] = models.Capability{}
	}
	return set
}

// Resolve expands the user's roles into a capability set. Roles only ever add
// capabilities; a flag granted by any role stays granted. Pure: neither the
// user nor its roles are mutated.
func Resolve(user models.User) Set {
	set := Empty()
	for _, role := range user.Roles {
		for key, grant := range role.Grants {
			current, ok := set[Resource(key)]
			if !ok {
				continue // stale resource key in role data
			}
			current.View = current.View || grant.View
			current.Create = current.Create || grant.Create
			current.Edit = current.Edit || grant.Edit
			current.Delete = current.Delete || grant.Delete
			set[Resource(key)] = current
		}
	}
	return set
}

package permission

import (
	"testing"

	"github.com/avrohommoshebaum/school-crm-sub001/internal/models"
)

func TestResolveNoRolesAllFalse(t *testing.T) {
	set := Resolve(models.User{ID: "u-1"})

	if len(set) != len(allResources) {
		t.Fatalf("expected %d resources, got %d", len(allResources), len(set))
	}
	for resource, cap := range set {
		if cap.View || cap.Create || cap.Edit || cap.Delete {
			t.Fatalf("expected all-false capability for %s, got %+v", resource, cap)
		}
	}
}

func TestResolveUnionAcrossRoles(t *testing.T) {
	user := models.User{
		ID: "u-1",
		Roles: []models.Role{
			{
				ID:   "r-view",
				Name: "Teacher",
				Grants: map[string]models.Capability{
					"students": {View: true},
				},
			},
			{
				ID:   "r-edit",
				Name: "Registrar",
				Grants: map[string]models.Capability{
					"students": {Edit: true},
				},
			},
		},
	}

	set := Resolve(user)

	got := set[ResourceStudents]
	want := models.Capability{View: true, Edit: true}
	if got != want {
		t.Fatalf("students capability = %+v, want %+v", got, want)
	}

	// Union never removes: a third role with no students grant changes nothing.
	user.Roles = append(user.Roles, models.Role{ID: "r-none", Name: "Aide"})
	if got := Resolve(user)[ResourceStudents]; got != want {
		t.Fatalf("students capability after extra role = %+v, want %+v", got, want)
	}
}

func TestResolveIgnoresUnknownResourceKeys(t *testing.T) {
	user := models.User{
		ID: "u-1",
		Roles: []models.Role{
			{
				ID:   "r-1",
				Name: "Old Role",
				Grants: map[string]models.Capability{
					"retired_module": {View: true, Create: true, Edit: true, Delete: true},
					"financial":      {View: true},
				},
			},
		},
	}

	set := Resolve(user)

	if _, ok := set[Resource("retired_module")]; ok {
		t.Fatal("unknown resource key leaked into the resolved set")
	}
	if !set.Can(ResourceFinancial, ActionView) {
		t.Fatal("known grant alongside a stale key was dropped")
	}
}

func TestResolveDoesNotMutateInput(t *testing.T) {
	grants := map[string]models.Capability{"students": {View: true}}
	user := models.User{
		ID:    "u-1",
		Roles: []models.Role{{ID: "r-1", Name: "Teacher", Grants: grants}},
	}

	_ = Resolve(user)

	if got := grants["students"]; got != (models.Capability{View: true}) {
		t.Fatalf("role grants mutated: %+v", got)
	}
}

package monday

import "testing"

func TestResolveRoles(t *testing.T) {
	columns := []Column{
		{ID: "c1", Title: "Name", Type: "name"},
		{ID: "c2", Title: "Deal Value (INR)", Type: "numbers"},
		{ID: "c3", Title: "Sector", Type: "text"},
		{ID: "c4", Title: "Stage", Type: "status"},
		{ID: "c5", Title: "Expected Close Date", Type: "date"},
		{ID: "c6", Title: "Client Name", Type: "text"},
	}

	binding := ResolveRoles(columns)

	want := map[Role]string{
		RoleAmount:   "Deal Value (INR)",
		RoleCategory: "Sector",
		RoleStatus:   "Stage",
		RoleDate:     "Expected Close Date",
		RoleClient:   "Client Name",
	}
	for role, label := range want {
		if got := binding.Label(role); got != label {
			t.Errorf("Label(%s) = %q, want %q", role, got, label)
		}
	}
}

// The first matching column in board order wins; later columns never steal a role.
func TestResolveRoles_FirstColumnWins(t *testing.T) {
	columns := []Column{
		{ID: "c1", Title: "Order Value", Type: "numbers"},
		{ID: "c2", Title: "Estimated Value", Type: "numbers"},
	}
	if got := ResolveRoles(columns).Label(RoleAmount); got != "Order Value" {
		t.Errorf("Label(amount) = %q, want Order Value", got)
	}
}

func TestResolveRoles_CaseInsensitive(t *testing.T) {
	columns := []Column{{ID: "c1", Title: "DEAL STATUS", Type: "status"}}
	if got := ResolveRoles(columns).Label(RoleStatus); got != "DEAL STATUS" {
		t.Errorf("Label(status) = %q, want DEAL STATUS", got)
	}
}

// A board with renamed columns yields unmapped roles rather than guesses.
func TestResolveRoles_Unmapped(t *testing.T) {
	columns := []Column{{ID: "c1", Title: "Misc Notes", Type: "text"}}
	binding := ResolveRoles(columns)
	for _, role := range []Role{RoleAmount, RoleCategory, RoleStatus, RoleDate, RoleClient} {
		if got := binding.Label(role); got != Unmapped {
			t.Errorf("Label(%s) = %q, want unmapped", role, got)
		}
	}
}

package monday

import "strings"

// Role is a semantic role a board column can play, independent of the
// platform's opaque column identifiers.
type Role string

const (
	RoleAmount   Role = "amount"
	RoleCategory Role = "category"
	RoleStatus   Role = "status"
	RoleDate     Role = "date"
	RoleClient   Role = "client"
)

// Unmapped is the sentinel label for a role no column label matched.
// It never collides with a real board column.
const Unmapped = ""

// roleKeywords is the ordered list of (role, candidate keywords) pairs
// resolved against actual column labels at fetch time. A column renamed away
// from all keywords simply becomes unmapped; it is never guessed.
var roleKeywords = []struct {
	role     Role
	keywords []string
}{
	{RoleAmount, []string{"value", "amount", "revenue", "deal size", "price", "cost", "budget"}},
	{RoleCategory, []string{"sector", "industry", "vertical", "segment", "domain"}},
	{RoleStatus, []string{"stage", "status", "phase", "state", "progress"}},
	{RoleDate, []string{"date", "created", "updated", "deadline", "due", "start", "end", "close"}},
	{RoleClient, []string{"client", "customer", "account", "company"}},
}

// RoleBinding maps semantic roles to resolved column labels. A missing key
// or the Unmapped value means the role could not be resolved.
type RoleBinding map[Role]string

// Label returns the column label bound to a role, or Unmapped.
func (b RoleBinding) Label(role Role) string {
	return b[role]
}

// ResolveRoles matches column display labels against the keyword table.
// Matching is case-insensitive substring; the first column (in board order)
// matching any keyword of a role wins that role.
func ResolveRoles(columns []Column) RoleBinding {
	binding := make(RoleBinding, len(roleKeywords))
	for _, rk := range roleKeywords {
		binding[rk.role] = firstMatch(columns, rk.keywords)
	}
	return binding
}

func firstMatch(columns []Column, keywords []string) string {
	for _, col := range columns {
		title := strings.ToLower(col.Title)
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				return col.Title
			}
		}
	}
	return Unmapped
}

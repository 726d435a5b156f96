package normalize

// DefaultSynonyms returns the built-in synonym table mapping user-entered
// sector and status variants to canonical labels. Keys are matched
// case-insensitively after whitespace collapsing.
func DefaultSynonyms() map[string]string {
	return map[string]string{
		// Sectors
		"energy":             "Energy",
		"oil":                "Energy",
		"oil & gas":          "Energy",
		"oil and gas":        "Energy",
		"power":              "Energy",
		"solar":              "Energy",
		"wind energy":        "Energy",
		"renewable":          "Energy",
		"renewables":         "Energy",
		"mining":             "Mining",
		"mines":              "Mining",
		"infrastructure":     "Infrastructure",
		"infra":              "Infrastructure",
		"construction":       "Infrastructure",
		"real estate":        "Real Estate",
		"realty":             "Real Estate",
		"agriculture":        "Agriculture",
		"agri":               "Agriculture",
		"telecom":            "Telecom",
		"telecommunications": "Telecom",
		"government":         "Government",
		"govt":               "Government",
		"defence":            "Defence",
		"defense":            "Defence",
		"survey":             "Survey",
		"surveying":          "Survey",
		"mapping":            "Survey",
		"logistics":          "Logistics",
		"transport":          "Logistics",
		"transportation":     "Logistics",

		// Statuses
		"in progress":   "In Progress",
		"in-progress":   "In Progress",
		"inprogress":    "In Progress",
		"wip":           "In Progress",
		"ongoing":       "In Progress",
		"working on it": "In Progress",
		"done":          "Done",
		"complete":      "Done",
		"completed":     "Done",
		"finished":      "Done",
		"stuck":         "Stuck",
		"blocked":       "Stuck",
		"on hold":       "On Hold",
		"hold":          "On Hold",
		"paused":        "On Hold",
		"not started":   "Not Started",
		"todo":          "Not Started",
		"to do":         "Not Started",
	}
}

package roster

// Profile describes the header layout of a roster export.
// Adding a new layout is just adding a new Profile to the profiles slice.
type Profile struct {
	Name         string
	CommunityCol string
	GroupCol     string // optional
	AgentCol     string // optional
	IDCol        string // optional
}

// requiredCols returns the column names that must be present for this profile to match.
func (p Profile) requiredCols() []string {
	cols := []string{p.CommunityCol}

	if p.GroupCol != "" {
		cols = append(cols, p.GroupCol)
	}

	if p.AgentCol != "" {
		cols = append(cols, p.AgentCol)
	}

	return cols
}

// profiles is tried in order; more specific layouts come first.
var profiles = []Profile{
	{
		Name:         "program",
		CommunityCol: "communityname",
		GroupCol:     "groupname",
		AgentCol:     "agent",
		IDCol:        "recipientid",
	},
	{
		Name:         "display",
		CommunityCol: "community",
		GroupCol:     "group",
		AgentCol:     "agent",
		IDCol:        "id",
	},
	{
		Name:         "communities",
		CommunityCol: "community",
	},
}

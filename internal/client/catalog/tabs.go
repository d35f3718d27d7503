package catalog

// Tab describes a bottom tab and its header
type Tab struct {
	Name       string
	Title      string
	Icon       string
	ShowSearch bool
}

var tabs = []Tab{
	{Name: "home", Title: "Home", Icon: "home", ShowSearch: true},
	{Name: "promotions", Title: "Promotions", Icon: "briefcase", ShowSearch: true},
	{Name: "events", Title: "Events", Icon: "newspaper", ShowSearch: true},
	{Name: "groups", Title: "Groups", Icon: "people", ShowSearch: false},
	{Name: "profile", Title: "Profile", Icon: "person", ShowSearch: true},
}

// Tabs returns the tab configuration in display order
func Tabs() []Tab {
	out := make([]Tab, len(tabs))
	copy(out, tabs)
	return out
}

// TabByName looks up a tab by its route name
func TabByName(name string) (Tab, bool) {
	for _, t := range tabs {
		if t.Name == name {
			return t, true
		}
	}
	return Tab{}, false
}

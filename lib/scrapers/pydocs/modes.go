package pydocs

import "context"

type Mode struct {
	Name string
	// HasHeader is true when the first row names the columns.
	HasHeader bool
	Run       func(p *Parser, ctx context.Context) ([]Row, error)
}

var Modes = []Mode{
	{Name: "whats-new", HasHeader: true, Run: (*Parser).WhatsNew},
	{Name: "latest-versions", HasHeader: true, Run: (*Parser).LatestVersions},
	{Name: "download", Run: (*Parser).Download},
	{Name: "pep", Run: (*Parser).PEP},
}

func LookupMode(name string) (Mode, bool) {
	for _, m := range Modes {
		if m.Name == name {
			return m, true
		}
	}
	return Mode{}, false
}

func ModeNames() []string {
	names := make([]string, len(Modes))
	for i, m := range Modes {
		names[i] = m.Name
	}
	return names
}

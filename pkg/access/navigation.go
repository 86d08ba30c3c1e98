package access

// NavItem is one entry in the application's main navigation.
type NavItem struct {
	Section Section `json:"section"`
	Label   string  `json:"label"`
	Path    string  `json:"path"`
}

var navigation = []NavItem{
	{Section: Dashboard, Label: "Dashboard", Path: "/"},
	{Section: Clientes, Label: "Clientes", Path: "/clientes"},
	{Section: Projetos, Label: "Projetos", Path: "/projetos"},
	{Section: Kanban, Label: "Kanban", Path: "/kanban"},
	{Section: Agenda, Label: "Agenda", Path: "/agenda"},
	{Section: Atendimento, Label: "Atendimento", Path: "/atendimento"},
	{Section: Arquivos, Label: "Arquivos", Path: "/arquivos"},
	{Section: Email, Label: "E-mail", Path: "/email"},
	{Section: Configuracoes, Label: "Configurações", Path: "/configuracoes"},
}

// Navigation returns every navigation item in display order.
func Navigation() []NavItem {
	out := make([]NavItem, len(navigation))
	copy(out, navigation)
	return out
}

// VisibleNavigation filters the navigation down to sections the map can view.
func VisibleNavigation(m Map) []NavItem {
	out := make([]NavItem, 0, len(navigation))
	for _, item := range navigation {
		if m.Has(item.Section, ActionView) {
			out = append(out, item)
		}
	}
	return out
}

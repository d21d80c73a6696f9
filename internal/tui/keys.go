package tui

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	PrevTab  key.Binding
	NextTab  key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Search   key.Binding
	Reload   key.Binding
	New      key.Binding
	Edit     key.Binding
	Delete   key.Binding
	Send     key.Binding
	Export   key.Binding
	Quit     key.Binding
	Back     key.Binding
	Confirm  key.Binding

	NextField       key.Binding
	PrevField       key.Binding
	Submit          key.Binding
	AddItem         key.Binding
	RemoveItem      key.Binding
	ItemUp          key.Binding
	ItemDown        key.Binding
	ToggleGST       key.Binding
	TogglePO        key.Binding
	ToggleQuotation key.Binding

	CyclePaidStatus       key.Binding
	CyclePaymentType      key.Binding
	ToggleOnlineUser      key.Binding
	ToggleAquakartInvoice key.Binding
}

var DefaultKeyMap = KeyMap{
	Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("j/k", "navigate")),
	Down:     key.NewBinding(key.WithKeys("j", "down")),
	PrevTab:  key.NewBinding(key.WithKeys("h", "left", "shift+tab"), key.WithHelp("h/l", "tabs")),
	NextTab:  key.NewBinding(key.WithKeys("l", "right", "tab")),
	PrevPage: key.NewBinding(key.WithKeys("p", "pgup"), key.WithHelp("p/n", "page")),
	NextPage: key.NewBinding(key.WithKeys("n", "pgdown")),
	Bigger:   key.NewBinding(key.WithKeys("+"), key.WithHelp("+/-", "page size")),
	Smaller:  key.NewBinding(key.WithKeys("-")),
	Search:   key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
	Reload:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
	New:      key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "new")),
	Edit:     key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "edit")),
	Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
	Send:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "send pdf")),
	Export:   key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export xlsx")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Back:     key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
	Confirm:  key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),

	NextField:       key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
	PrevField:       key.NewBinding(key.WithKeys("shift+tab", "up")),
	Submit:          key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
	AddItem:         key.NewBinding(key.WithKeys("ctrl+a"), key.WithHelp("ctrl+a", "add product")),
	RemoveItem:      key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove product")),
	ItemUp:          key.NewBinding(key.WithKeys("ctrl+k")),
	ItemDown:        key.NewBinding(key.WithKeys("ctrl+j")),
	ToggleGST:       key.NewBinding(key.WithKeys("ctrl+g"), key.WithHelp("ctrl+g", "gst")),
	TogglePO:        key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "po")),
	ToggleQuotation: key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("ctrl+t", "quotation")),

	CyclePaidStatus:       key.NewBinding(key.WithKeys("ctrl+p"), key.WithHelp("ctrl+p", "paid status")),
	CyclePaymentType:      key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("ctrl+y", "payment type")),
	ToggleOnlineUser:      key.NewBinding(key.WithKeys("ctrl+u"), key.WithHelp("ctrl+u", "online user")),
	ToggleAquakartInvoice: key.NewBinding(key.WithKeys("ctrl+n"), key.WithHelp("ctrl+n", "aquakart invoice")),
}

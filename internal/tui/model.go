// Package tui is the terminal invoice console: tabbed, searchable, paged
// invoice list with an editor dialog.
package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"invoice-console/internal/document"
	"invoice-console/internal/editor"
	"invoice-console/internal/invoice"
	"invoice-console/internal/listing"
	"invoice-console/internal/store"
)

type viewMode int

const (
	viewList viewMode = iota
	viewSearch
	viewEditor
	viewConfirmDelete
)

// Deleter is the delete side of the invoice gateway.
type Deleter interface {
	Delete(ctx context.Context, token, id string) error
}

type Options struct {
	Collection    *store.Collection
	Saver         editor.Saver
	Deleter       Deleter
	Token         string
	PageSize      int
	ResetOnFilter bool
	OutputDir     string
	Timeout       time.Duration
}

// form input indices
const (
	fieldInvoiceNo = iota
	fieldDate
	fieldCustomer
	fieldPhone
	fieldEmail
	fieldAddress
	fieldGstName
	fieldGstNo
	fieldGstPhone
	fieldGstEmail
	fieldGstAddress
	fieldDeliveredBy
	fieldDeliveryDate
	fieldProduct
	fieldQty
	fieldPrice
	fieldSerial
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Invoice No", "Date", "Customer", "Phone", "Email", "Address",
	"GST Name", "GSTIN", "GST Phone", "GST Email", "GST Address",
	"Delivered By", "Delivery Date",
	"Product", "Qty", "Price", "Serial No",
}

type Model struct {
	opts Options
	keys KeyMap

	mode      viewMode
	view      *listing.ViewState
	page      listing.Page
	cursor    int
	loading   bool
	err       error
	statusMsg string
	advisory  string

	searchInput textinput.Model

	editor     *editor.Editor
	inputs     []textinput.Model
	focusIndex int
	itemCursor int
	submitting bool
}

type loadedMsg struct {
	err error
}

type savedMsg struct {
	mode editor.Mode
	inv  invoice.Invoice
	err  error
}

type deletedMsg struct {
	id  string
	err error
}

type fileWrittenMsg struct {
	path string
	err  error
}

func New(opts Options) *Model {
	if opts.PageSize <= 0 {
		opts.PageSize = listing.DefaultItemsPerPage
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}

	search := textinput.New()
	search.Placeholder = "invoice no or customer"
	search.CharLimit = 64
	search.Width = 40

	return &Model{
		opts:        opts,
		keys:        DefaultKeyMap,
		mode:        viewList,
		view:        listing.NewViewState(opts.PageSize, opts.ResetOnFilter),
		editor:      editor.New(),
		searchInput: search,
		loading:     true,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.load()
}

func (m *Model) load() tea.Cmd {
	collection := m.opts.Collection
	timeout := m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return loadedMsg{err: collection.Load(ctx)}
	}
}

// refresh recomputes the visible page from the held collection.
func (m *Model) refresh() {
	m.page = m.view.Apply(m.opts.Collection.Snapshot())
	if m.cursor >= len(m.page.Items) {
		m.cursor = len(m.page.Items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) selected() (invoice.Invoice, bool) {
	if m.cursor < 0 || m.cursor >= len(m.page.Items) {
		return invoice.Invoice{}, false
	}
	return m.page.Items[m.cursor], true
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		if errors.Is(msg.err, store.ErrSuperseded) {
			return m, nil
		}
		m.loading = false
		m.advisory = m.opts.Collection.Advisory()
		if msg.err != nil && m.advisory == "" {
			m.err = msg.err
		}
		m.refresh()
		return m, nil

	case savedMsg:
		m.submitting = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.opts.Collection.Upsert(msg.inv)
		if msg.mode == editor.ModeEdit {
			m.statusMsg = "Invoice " + msg.inv.InvoiceNo + " updated"
		} else {
			m.statusMsg = "Invoice " + msg.inv.InvoiceNo + " created"
		}
		m.err = nil
		m.mode = viewList
		m.refresh()
		return m, nil

	case deletedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.opts.Collection.Remove(msg.id)
		m.statusMsg = "Invoice deleted"
		m.refresh()
		return m, nil

	case fileWrittenMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.statusMsg = "Wrote " + msg.path
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}

		switch m.mode {
		case viewSearch:
			return m.updateSearch(msg)
		case viewEditor:
			return m.updateEditor(msg)
		case viewConfirmDelete:
			return m.updateConfirmDelete(msg)
		default:
			return m.updateList(msg)
		}
	}

	switch m.mode {
	case viewSearch:
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	case viewEditor:
		if m.focusIndex < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.err = nil

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.page.Items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.NextTab):
		m.switchTab(1)
	case key.Matches(msg, m.keys.PrevTab):
		m.switchTab(-1)
	case key.Matches(msg, m.keys.NextPage):
		m.view.NextPage(m.page.Pagination.TotalPages)
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, m.keys.PrevPage):
		m.view.PrevPage()
		m.cursor = 0
		m.refresh()
	case key.Matches(msg, m.keys.Bigger):
		m.view.SetItemsPerPage(m.view.ItemsPerPage() + 5)
		m.refresh()
	case key.Matches(msg, m.keys.Smaller):
		if m.view.ItemsPerPage() > 5 {
			m.view.SetItemsPerPage(m.view.ItemsPerPage() - 5)
			m.refresh()
		}
	case key.Matches(msg, m.keys.Search):
		m.mode = viewSearch
		m.searchInput.SetValue(m.view.Search())
		return m, m.searchInput.Focus()
	case key.Matches(msg, m.keys.Reload):
		m.loading = true
		m.statusMsg = ""
		return m, m.load()
	case key.Matches(msg, m.keys.New):
		m.editor.OpenNew(time.Now())
		return m, m.openForm()
	case key.Matches(msg, m.keys.Edit):
		if inv, ok := m.selected(); ok {
			m.editor.OpenEdit(inv)
			return m, m.openForm()
		}
	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.mode = viewConfirmDelete
		}
	case key.Matches(msg, m.keys.Send):
		if inv, ok := m.selected(); ok {
			return m, m.writePDF(inv)
		}
	case key.Matches(msg, m.keys.Export):
		return m, m.writeXLSX()
	}
	return m, nil
}

func (m *Model) switchTab(step int) {
	idx := 0
	for i, c := range listing.Categories {
		if c == m.view.Category() {
			idx = i
		}
	}
	n := len(listing.Categories)
	m.view.SetCategory(listing.Categories[(idx+step+n)%n])
	m.cursor = 0
	m.refresh()
}

func (m *Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = viewList
		m.searchInput.Blur()
		return m, nil
	case "esc":
		m.mode = viewList
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		m.view.SetSearch("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.view.SetSearch(m.searchInput.Value())
	m.cursor = 0
	m.refresh()
	return m, cmd
}

func (m *Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = viewList
	if !key.Matches(msg, m.keys.Confirm) {
		return m, nil
	}
	inv, ok := m.selected()
	if !ok {
		return m, nil
	}
	m.loading = true
	deleter := m.opts.Deleter
	token := m.opts.Token
	timeout := m.opts.Timeout
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return deletedMsg{id: inv.ID, err: deleter.Delete(ctx, token, inv.ID)}
	}
}

// --- Editor dialog ---

func (m *Model) openForm() tea.Cmd {
	form := m.editor.Form()
	m.inputs = make([]textinput.Model, fieldCount)
	for i := range m.inputs {
		in := textinput.New()
		in.Prompt = ""
		in.CharLimit = 128
		in.Width = 40
		m.inputs[i] = in
	}
	m.inputs[fieldDate].Placeholder = invoice.DateLayout
	m.inputs[fieldDeliveryDate].Placeholder = invoice.DateLayout
	m.inputs[fieldPrice].Placeholder = "0.00"

	m.inputs[fieldInvoiceNo].SetValue(form.InvoiceNo)
	m.inputs[fieldDate].SetValue(invoice.DisplayDate(form.Date))
	m.inputs[fieldCustomer].SetValue(form.CustomerDetails.Name)
	if form.CustomerDetails.Phone != 0 {
		m.inputs[fieldPhone].SetValue(strconv.FormatInt(form.CustomerDetails.Phone, 10))
	}
	m.inputs[fieldEmail].SetValue(form.CustomerDetails.Email)
	m.inputs[fieldAddress].SetValue(form.CustomerDetails.Address)
	m.inputs[fieldGstName].SetValue(form.GstDetails.GstName)
	m.inputs[fieldGstNo].SetValue(form.GstDetails.GstNo)
	if form.GstDetails.GstPhone != nil {
		m.inputs[fieldGstPhone].SetValue(strconv.FormatInt(*form.GstDetails.GstPhone, 10))
	}
	m.inputs[fieldGstEmail].SetValue(form.GstDetails.GstEmail)
	m.inputs[fieldGstAddress].SetValue(form.GstDetails.GstAddress)
	m.inputs[fieldDeliveredBy].SetValue(form.Transport.DeliveredBy)
	m.inputs[fieldDeliveryDate].SetValue(form.Transport.DeliveryDate)
	m.resetDraftInputs()

	m.mode = viewEditor
	m.err = nil
	m.statusMsg = ""
	m.itemCursor = 0
	m.focusIndex = fieldInvoiceNo
	return m.inputs[m.focusIndex].Focus()
}

func (m *Model) resetDraftInputs() {
	m.inputs[fieldProduct].SetValue("")
	m.inputs[fieldQty].SetValue("1")
	m.inputs[fieldPrice].SetValue("")
	m.inputs[fieldSerial].SetValue("")
}

// fieldVisible hides the GST inputs while the GST flag is off.
func (m *Model) fieldVisible(i int) bool {
	if i >= fieldGstName && i <= fieldGstAddress {
		return m.editor.GSTVisible()
	}
	return true
}

func (m *Model) moveFocus(step int) tea.Cmd {
	m.inputs[m.focusIndex].Blur()
	next := m.focusIndex
	for {
		next = (next + step + fieldCount) % fieldCount
		if m.fieldVisible(next) {
			break
		}
	}
	m.focusIndex = next
	return m.inputs[m.focusIndex].Focus()
}

// applyInputs copies the text inputs into the editor's form and draft.
func (m *Model) applyInputs() {
	val := func(i int) string { return strings.TrimSpace(m.inputs[i].Value()) }

	m.editor.Edit(func(f *invoice.Invoice) {
		f.InvoiceNo = val(fieldInvoiceNo)
		f.Date = val(fieldDate)
		f.CustomerDetails.Name = val(fieldCustomer)
		phone, _ := strconv.ParseInt(val(fieldPhone), 10, 64)
		f.CustomerDetails.Phone = phone
		f.CustomerDetails.Email = val(fieldEmail)
		f.CustomerDetails.Address = val(fieldAddress)
		f.GstDetails.GstName = val(fieldGstName)
		f.GstDetails.GstNo = val(fieldGstNo)
		f.GstDetails.GstPhone = nil
		if gstPhone, err := strconv.ParseInt(val(fieldGstPhone), 10, 64); err == nil {
			f.GstDetails.GstPhone = &gstPhone
		}
		f.GstDetails.GstEmail = val(fieldGstEmail)
		f.GstDetails.GstAddress = val(fieldGstAddress)
		f.Transport.DeliveredBy = val(fieldDeliveredBy)
		f.Transport.DeliveryDate = val(fieldDeliveryDate)
	})

	qty, _ := strconv.Atoi(val(fieldQty))
	price, err := decimal.NewFromString(val(fieldPrice))
	if err != nil {
		price = decimal.Zero
	}
	m.editor.SetDraft(invoice.LineItem{
		ProductName:     val(fieldProduct),
		ProductQuantity: qty,
		ProductPrice:    price,
		ProductSerialNo: val(fieldSerial),
	})
}

func (m *Model) updateEditor(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.submitting {
			return m, nil
		}
		m.editor.Cancel()
		m.mode = viewList
		m.err = nil
		return m, nil
	case key.Matches(msg, m.keys.NextField):
		return m, m.moveFocus(1)
	case key.Matches(msg, m.keys.PrevField):
		return m, m.moveFocus(-1)
	case key.Matches(msg, m.keys.ToggleGST):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.Gst = !f.Gst })
		if !m.fieldVisible(m.focusIndex) {
			return m, m.moveFocus(1)
		}
		return m, nil
	case key.Matches(msg, m.keys.TogglePO):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.Po = !f.Po })
		return m, nil
	case key.Matches(msg, m.keys.ToggleQuotation):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.Quotation = !f.Quotation })
		return m, nil
	case key.Matches(msg, m.keys.CyclePaidStatus):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.PaidStatus = nextPaidStatus(f.PaidStatus) })
		return m, nil
	case key.Matches(msg, m.keys.CyclePaymentType):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.PaymentType = nextPaymentType(f.PaymentType) })
		return m, nil
	case key.Matches(msg, m.keys.ToggleOnlineUser):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.AquakartOnlineUser = !f.AquakartOnlineUser })
		return m, nil
	case key.Matches(msg, m.keys.ToggleAquakartInvoice):
		m.applyInputs()
		m.editor.Edit(func(f *invoice.Invoice) { f.AquakartInvoice = !f.AquakartInvoice })
		return m, nil
	case key.Matches(msg, m.keys.AddItem):
		m.applyInputs()
		if err := m.editor.AddDraft(); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.resetDraftInputs()
		m.itemCursor = len(m.editor.Form().Products) - 1
		return m, nil
	case key.Matches(msg, m.keys.RemoveItem):
		if err := m.editor.RemoveLineItem(m.itemCursor); err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		if n := len(m.editor.Form().Products); m.itemCursor >= n && n > 0 {
			m.itemCursor = n - 1
		}
		return m, nil
	case key.Matches(msg, m.keys.ItemUp):
		if m.itemCursor > 0 {
			m.itemCursor--
		}
		return m, nil
	case key.Matches(msg, m.keys.ItemDown):
		if m.itemCursor < len(m.editor.Form().Products)-1 {
			m.itemCursor++
		}
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		return m, m.submit()
	}

	var cmd tea.Cmd
	m.inputs[m.focusIndex], cmd = m.inputs[m.focusIndex].Update(msg)
	return m, cmd
}

// nextPaidStatus steps through the accepted statuses. An unknown stored
// value restarts the cycle.
func nextPaidStatus(s invoice.PaidStatus) invoice.PaidStatus {
	for i, v := range invoice.PaidStatuses {
		if v == s {
			return invoice.PaidStatuses[(i+1)%len(invoice.PaidStatuses)]
		}
	}
	return invoice.PaidStatuses[0]
}

func nextPaymentType(p invoice.PaymentType) invoice.PaymentType {
	for i, v := range invoice.PaymentTypes {
		if v == p {
			return invoice.PaymentTypes[(i+1)%len(invoice.PaymentTypes)]
		}
	}
	return invoice.PaymentTypes[0]
}

func (m *Model) submit() tea.Cmd {
	if m.submitting {
		return nil
	}
	m.applyInputs()
	m.submitting = true
	m.err = nil

	ed := m.editor
	mode := ed.Mode()
	saver := m.opts.Saver
	token := m.opts.Token
	timeout := m.opts.Timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		inv, err := ed.Submit(ctx, saver, token)
		return savedMsg{mode: mode, inv: inv, err: err}
	}
}

// --- Files ---

func (m *Model) writePDF(inv invoice.Invoice) tea.Cmd {
	path := filepath.Join(m.opts.OutputDir, document.PDFFilename(inv))
	return func() tea.Msg {
		return fileWrittenMsg{path: path, err: writeFile(path, func(f *os.File) error {
			return document.WritePDF(f, inv)
		})}
	}
}

func (m *Model) writeXLSX() tea.Cmd {
	filtered := listing.Filter(m.opts.Collection.Snapshot(), m.view.Category(), m.view.Search())
	path := filepath.Join(m.opts.OutputDir, document.XLSXFilename(time.Now()))
	return func() tea.Msg {
		return fileWrittenMsg{path: path, err: writeFile(path, func(f *os.File) error {
			return document.WriteXLSX(f, filtered)
		})}
	}
}

func writeFile(path string, write func(f *os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// submitErrorText renders a submit failure with its field messages.
func submitErrorText(err error) string {
	var verr *invoice.ValidationError
	if errors.As(err, &verr) {
		parts := make([]string, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			parts = append(parts, f.Error())
		}
		return strings.Join(parts, "\n  ")
	}
	return err.Error()
}

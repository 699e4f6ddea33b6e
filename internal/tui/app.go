package tui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"flooring-cli/internal/model"
	"flooring-cli/internal/mutate"
	"flooring-cli/internal/query"
	"flooring-cli/internal/render"
	"flooring-cli/internal/store"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// toastTTL is how long a toast stays up before it is cleared.
const toastTTL = 3 * time.Second

type resyncDueMsg struct{}

type resyncDoneMsg struct {
	snap model.Snapshot
	err  error
}

type effectDoneMsg struct {
	out mutate.Outcome
}

type toastExpiredMsg struct{ seq int }

// tabs are the views reachable with the number keys, in order.
var tabs = []struct {
	view  mutate.View
	label string
}{
	{mutate.ViewDashboard, "Dashboard"},
	{mutate.ViewReports, "Reports"},
	{mutate.ViewDeletedReports, "Report trash"},
	{mutate.ViewPTPs, "Safety plans"},
	{mutate.ViewDeletedPTPs, "Plan trash"},
	{mutate.ViewAuditLog, "Audit log"},
	{mutate.ViewManagement, "Foremen"},
}

type appModel struct {
	ctx    context.Context
	ctrl   *mutate.Controller
	queue  *mutate.QueueScheduler
	mirror *store.Cache
	logger *slog.Logger

	// after delivers msg once d has elapsed; tests replace it.
	after func(d time.Duration, msg tea.Msg) tea.Cmd

	state     mutate.State
	toastSeen int

	width  int
	height int

	lists  map[mutate.View]*list.Model
	detail viewport.Model
	// detailID is the record the viewport was last scrolled for.
	detailID string
	dash   query.Dashboard

	modal modal
}

// Options wires the TUI to a controller. Queue must be the controller's scheduler.
type Options struct {
	Controller *mutate.Controller
	Queue      *mutate.QueueScheduler
	State      mutate.State
	Mirror     *store.Cache
	Logger     *slog.Logger
}

func newAppModel(ctx context.Context, opts Options) appModel {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	m := appModel{
		ctx:    ctx,
		ctrl:   opts.Controller,
		queue:  opts.Queue,
		mirror: opts.Mirror,
		logger: logger,
		after: func(d time.Duration, msg tea.Msg) tea.Cmd {
			return tea.Tick(d, func(time.Time) tea.Msg { return msg })
		},
		state:  mutate.BeginResync(opts.State),
		lists:  map[mutate.View]*list.Model{},
		detail: viewport.New(0, 0),
	}
	if m.state.View == "" {
		m.state.View = mutate.ViewDashboard
	}
	for _, v := range []struct {
		view  mutate.View
		title string
		trash bool
	}{
		{mutate.ViewReports, "Weekly reports", false},
		{mutate.ViewDeletedReports, "Deleted reports", true},
		{mutate.ViewPTPs, "Pre-task plans", false},
		{mutate.ViewDeletedPTPs, "Deleted plans", true},
		{mutate.ViewAuditLog, "Audit log", false},
		{mutate.ViewManagement, "Foremen", false},
	} {
		l := newList(v.title, v.trash)
		m.lists[v.view] = &l
	}
	m.refresh()
	return m
}

func (m appModel) Init() tea.Cmd {
	return m.fetch()
}

// fetch loads a snapshot off the owning goroutine.
func (m appModel) fetch() tea.Cmd {
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		snap, err := ctrl.Fetch(ctx)
		return resyncDoneMsg{snap: snap, err: err}
	}
}

// run performs an effect's backend call off the owning goroutine.
func (m appModel) run(eff *mutate.Effect) tea.Cmd {
	if eff == nil {
		return nil
	}
	ctx, ctrl := m.ctx, m.ctrl
	return func() tea.Msg {
		return effectDoneMsg{out: ctrl.Run(ctx, eff)}
	}
}

func (m appModel) saveMirror() tea.Cmd {
	if m.mirror == nil {
		return nil
	}
	ctx, cache, snap, logger := m.ctx, *m.mirror, m.state.Snapshot(), m.logger
	return func() tea.Msg {
		if err := cache.Save(ctx, snap); err != nil {
			logger.Warn("write local mirror failed", "path", cache.Path, "err", err)
		}
		return nil
	}
}

// settle runs after every state transition: it turns queued resyncs into
// timers, arms the toast expiry, and rebuilds the visible lists.
func (m *appModel) settle() tea.Cmd {
	var cmds []tea.Cmd
	if m.queue != nil {
		for _, d := range m.queue.Take() {
			cmds = append(cmds, m.after(d, resyncDueMsg{}))
		}
	}
	if t := m.state.Toast; t.Message != "" && t.Seq != m.toastSeen {
		m.toastSeen = t.Seq
		cmds = append(cmds, m.after(toastTTL, toastExpiredMsg{seq: t.Seq}))
	}
	if m.state.ShowLogin && m.modal.kind == modalNone {
		cmds = append(cmds, m.openLogin())
	}
	m.refresh()
	return tea.Batch(cmds...)
}

// begin applies the local half of an operation and starts its remote half.
func (m appModel) begin(next mutate.State, eff *mutate.Effect, err error) (appModel, tea.Cmd) {
	m.state = next
	if err != nil {
		m.logger.Debug("operation rejected", "err", err)
		if errors.Is(err, mutate.ErrUnauthenticated) {
			m.state.ShowLogin = true
		}
	}
	cmd := m.settle()
	return m, tea.Batch(cmd, m.run(eff))
}

func (m appModel) navigate(v mutate.View, id string) (appModel, tea.Cmd) {
	m.state = mutate.Navigate(m.state, v, id)
	cmd := m.settle()
	m.renderDetail()
	return m, cmd
}

// refresh rebuilds list items from state, keeping each cursor on the same record.
func (m *appModel) refresh() {
	set := func(v mutate.View, items []list.Item) {
		l := m.lists[v]
		cur := ""
		if it := l.SelectedItem(); it != nil {
			cur = itemID(it)
		}
		l.SetItems(items)
		selectListItem(l, cur)
	}

	var reports, deletedReports, plans, deletedPlans, logs, foremen []list.Item
	for _, r := range query.Reports(m.state.Reports, "") {
		reports = append(reports, reportItem{report: r})
	}
	for _, r := range query.Reports(m.state.DeletedReports, "") {
		deletedReports = append(deletedReports, reportItem{report: r})
	}
	for _, p := range query.PTPs(m.state.PTPs, "", query.SortByDate, true) {
		plans = append(plans, ptpItem{plan: p})
	}
	for _, p := range query.PTPs(m.state.DeletedPTPs, "", query.SortByDate, true) {
		deletedPlans = append(deletedPlans, ptpItem{plan: p})
	}
	for _, e := range query.AuditLogs(m.state.AuditLogs, "") {
		logs = append(logs, auditItem{entry: e})
	}
	for _, f := range m.state.Foremen {
		foremen = append(foremen, foremanItem{foreman: f})
	}
	set(mutate.ViewReports, reports)
	set(mutate.ViewDeletedReports, deletedReports)
	set(mutate.ViewPTPs, plans)
	set(mutate.ViewDeletedPTPs, deletedPlans)
	set(mutate.ViewAuditLog, logs)
	set(mutate.ViewManagement, foremen)

	m.dash = query.Summarize(m.state.Reports)
}

// renderDetail fills the detail viewport for the selected record.
func (m *appModel) renderDetail() {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	var md string
	switch m.state.View {
	case mutate.ViewReportDetail:
		r, ok := m.state.FindReport(m.state.SelectedID)
		if !ok {
			r, ok = m.state.FindDeletedReport(m.state.SelectedID)
		}
		if !ok {
			md = "_Report not found._"
		} else {
			md = render.ReportMarkdown(r)
		}
	case mutate.ViewPTPDetail:
		p, ok := m.state.FindPTP(m.state.SelectedID)
		if !ok {
			p, ok = m.state.FindDeletedPTP(m.state.SelectedID)
		}
		if !ok {
			md = "_Safety plan not found._"
		} else {
			md = render.PTPMarkdown(p)
		}
	default:
		return
	}
	m.detail.SetContent(render.Markdown(md, w, ""))
	if m.detailID != m.state.SelectedID {
		m.detailID = m.state.SelectedID
		m.detail.GotoTop()
	}
}

func (m *appModel) resize() {
	h := m.height - 5
	if h < 5 {
		h = 5
	}
	w := m.width
	if w < 40 {
		w = 40
	}
	for _, l := range m.lists {
		l.SetSize(w, h)
	}
	m.detail.Width = w
	m.detail.Height = h
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.renderDetail()
		return m, nil

	case resyncDueMsg:
		m.state = mutate.BeginResync(m.state)
		return m, m.fetch()

	case resyncDoneMsg:
		m.state, _ = m.ctrl.FinishResync(m.state, msg.snap, msg.err)
		cmd := m.settle()
		m.renderDetail()
		if msg.err != nil {
			return m, cmd
		}
		return m, tea.Batch(cmd, m.saveMirror())

	case effectDoneMsg:
		var err error
		m.state, err = m.ctrl.Finish(m.state, msg.out)
		if err != nil {
			m.logger.Warn("remote write failed", "err", err)
		}
		return m, m.settle()

	case toastExpiredMsg:
		m.state = m.state.ClearToast(msg.seq)
		return m, nil

	case tea.KeyMsg:
		if m.modal.kind != modalNone {
			return m.updateModal(msg)
		}
		return m.updateKey(msg)
	}

	if m.modal.kind != modalNone {
		return m.updateModal(msg)
	}
	return m, nil
}

func (m appModel) currentList() *list.Model {
	return m.lists[m.state.View]
}

func (m appModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	l := m.currentList()
	filtering := l != nil && l.FilterState() == list.Filtering

	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}
	if !filtering {
		switch msg.String() {
		case "q":
			return m, tea.Quit
		case "1", "2", "3", "4", "5", "6", "7":
			t := tabs[int(msg.String()[0]-'1')]
			return m.navigate(t.view, "")
		case "r":
			m.state = mutate.BeginResync(m.state)
			return m, m.fetch()
		case "l":
			if !m.state.Authorized() {
				cmd := m.openLogin()
				return m, cmd
			}
		case "L":
			return m.begin(m.ctrl.BeginLogout(m.state))
		case "esc", "backspace":
			switch m.state.View {
			case mutate.ViewReportDetail:
				return m.navigate(m.backFromDetail(mutate.ViewReports, mutate.ViewDeletedReports), "")
			case mutate.ViewPTPDetail:
				return m.navigate(m.backFromDetail(mutate.ViewPTPs, mutate.ViewDeletedPTPs), "")
			}
		}
	}

	switch m.state.View {
	case mutate.ViewReportDetail, mutate.ViewPTPDetail:
		var cmd tea.Cmd
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	case mutate.ViewDashboard:
		return m, nil
	}
	if l == nil {
		return m, nil
	}

	if !filtering {
		sel := l.SelectedItem()
		switch msg.String() {
		case "enter":
			switch it := sel.(type) {
			case reportItem:
				return m.navigate(mutate.ViewReportDetail, it.report.ID)
			case ptpItem:
				return m.navigate(mutate.ViewPTPDetail, it.plan.ID)
			}
		case "d", "delete":
			switch m.state.View {
			case mutate.ViewReports:
				if it, ok := sel.(reportItem); ok {
					id := it.report.ID
					cmd := m.openConfirm("Move report "+it.report.PrimaryVessel()+" "+weekLabel(it.report)+" to the trash?", func(m appModel) (appModel, tea.Cmd) {
						return m.begin(m.ctrl.BeginArchiveReport(m.state, id))
					})
					return m, cmd
				}
			case mutate.ViewPTPs:
				if it, ok := sel.(ptpItem); ok {
					id := it.plan.ID
					cmd := m.openConfirm("Move the safety plan for "+emptyAsDash(it.plan.Location)+" to the trash?", func(m appModel) (appModel, tea.Cmd) {
						return m.begin(m.ctrl.BeginArchivePTP(m.state, id))
					})
					return m, cmd
				}
			}
		case "u":
			switch it := sel.(type) {
			case reportItem:
				if m.state.View == mutate.ViewDeletedReports {
					return m.begin(m.ctrl.BeginRestoreReport(m.state, it.report.ID))
				}
			case ptpItem:
				if m.state.View == mutate.ViewDeletedPTPs {
					return m.begin(m.ctrl.BeginRestorePTP(m.state, it.plan.ID))
				}
			}
		case "a":
			if m.state.View == mutate.ViewManagement {
				cmd := m.openForeman("")
				return m, cmd
			}
		case "p":
			if it, ok := sel.(foremanItem); ok && m.state.View == mutate.ViewManagement {
				cmd := m.openForeman(it.foreman.Name)
				return m, cmd
			}
		case "x":
			if it, ok := sel.(foremanItem); ok && m.state.View == mutate.ViewManagement {
				name := it.foreman.Name
				cmd := m.openConfirm("Remove foreman "+name+"?", func(m appModel) (appModel, tea.Cmd) {
					return m.begin(m.ctrl.BeginDeleteForeman(m.state, name))
				})
				return m, cmd
			}
		}
	}

	updated, cmd := l.Update(msg)
	*l = updated
	return m, cmd
}

// backFromDetail returns to the trash list when the open record is trashed.
func (m appModel) backFromDetail(active, trash mutate.View) mutate.View {
	id := m.state.SelectedID
	if _, ok := m.state.FindDeletedReport(id); ok && trash == mutate.ViewDeletedReports {
		return trash
	}
	if _, ok := m.state.FindDeletedPTP(id); ok && trash == mutate.ViewDeletedPTPs {
		return trash
	}
	return active
}

package main

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Styling
var (
	docStyle = lipgloss.NewStyle().Margin(1, 2)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#0a84ff")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#30d158")).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#ff453a")).
			Padding(0, 1)
)

// urgencyStyles colors the urgency column of the detail view
var urgencyStyles = map[string]lipgloss.Style{
	"HIGH":   errorStyle,
	"MEDIUM": infoStyle,
	"LOW":    successStyle,
}

// Model defines the application state
type Model struct {
	mainMenu      list.Model
	recTable      table.Model
	categoryInput textinput.Model
	spinner       spinner.Model
	client        *ApiClient
	response      *RecommendationResponse
	status        map[string]any
	filters       Filters
	loading       bool
	currentView   string
	error         string
}

// item represents a list item
type item struct {
	title, desc string
}

// FilterValue implements list.Item interface
func (i item) FilterValue() string { return i.title }

// Title implements list.Item interface
func (i item) Title() string { return i.title }

// Description implements list.Item interface
func (i item) Description() string { return i.desc }

// Initialize the model
func initialModel(client *ApiClient) Model {
	// Initialize spinner
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	// Initialize main menu items
	items := []list.Item{
		item{title: "Recommendations", desc: "Analyze the hospital's inventory"},
		item{title: "Urgent Only", desc: "Only recommendations that need action now"},
		item{title: "By Category", desc: "Limit the analysis to one category"},
		item{title: "Service Status", desc: "Model availability and the last analysis run"},
		item{title: "Exit", desc: "Exit the application"},
	}

	mainMenu := list.New(items, list.NewDefaultDelegate(), 0, 0)
	mainMenu.Title = "HospitalHub CLI"

	ti := textinput.New()
	ti.Placeholder = "Category, e.g. Antibiotics"
	ti.CharLimit = 64
	ti.Width = 30

	return Model{
		mainMenu:      mainMenu,
		recTable:      newRecommendationTable(nil),
		categoryInput: ti,
		spinner:       s,
		client:        client,
		currentView:   "main",
	}
}

func newRecommendationTable(recs []Recommendation) table.Model {
	columns := []table.Column{
		{Title: "Urgency", Width: 8},
		{Title: "Type", Width: 8},
		{Title: "Medicine", Width: 24},
		{Title: "Action", Width: 48},
		{Title: "Confidence", Width: 10},
	}
	return table.New(
		table.WithColumns(columns),
		table.WithRows(recommendationRows(recs)),
		table.WithFocused(true),
		table.WithHeight(12),
	)
}

// recommendationRows orders recommendations by urgency, keeping the API
// order within each level
func recommendationRows(recs []Recommendation) []table.Row {
	rank := map[string]int{"HIGH": 0, "MEDIUM": 1, "LOW": 2}
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return rank[sorted[i].Urgency] < rank[sorted[j].Urgency]
	})

	rows := make([]table.Row, 0, len(sorted))
	for _, r := range sorted {
		rows = append(rows, table.Row{
			r.Urgency,
			r.Type,
			r.Medicine.Name,
			r.Action,
			fmt.Sprintf("%.0f%%", r.Confidence*100),
		})
	}
	return rows
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, tea.EnterAltScreen)
}

// Update handles UI updates
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.currentView != "category" {
				return m, tea.Quit
			}
		case "enter":
			switch m.currentView {
			case "main":
				selected, ok := m.mainMenu.SelectedItem().(item)
				if !ok {
					break
				}
				switch selected.title {
				case "Exit":
					return m, tea.Quit
				case "Recommendations":
					return m.load(Filters{})
				case "Urgent Only":
					return m.load(Filters{UrgencyOnly: true})
				case "By Category":
					m.currentView = "category"
					m.categoryInput.SetValue("")
					m.categoryInput.Focus()
					return m, nil
				case "Service Status":
					m.currentView = "status"
					m.loading = true
					return m, fetchStatus(m.client)
				}
			case "category":
				category := strings.TrimSpace(m.categoryInput.Value())
				if category == "" {
					m.error = "Please enter a category"
					return m, nil
				}
				m.categoryInput.Blur()
				return m.load(Filters{Category: category})
			case "recommendations":
				if m.response != nil && len(m.response.Recommendations) > 0 {
					m.currentView = "detail"
				}
				return m, nil
			case "detail":
				m.currentView = "recommendations"
				return m, nil
			}
		case "r":
			if m.currentView == "recommendations" {
				return m.load(m.filters)
			}
		case "esc":
			m.error = ""
			if m.currentView == "detail" {
				m.currentView = "recommendations"
			} else if m.currentView != "main" {
				m.currentView = "main"
			}
			return m, nil
		}
	case tea.WindowSizeMsg:
		h, v := docStyle.GetFrameSize()
		m.mainMenu.SetSize(msg.Width-h, msg.Height-v)
	case recommendationsMsg:
		m.loading = false
		m.error = ""
		m.response = msg.response
		m.recTable = newRecommendationTable(msg.response.Recommendations)
		return m, nil
	case statusMsg:
		m.loading = false
		m.status = msg.status
		return m, nil
	case errorMsg:
		m.loading = false
		m.error = msg.err
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	switch m.currentView {
	case "main":
		m.mainMenu, cmd = m.mainMenu.Update(msg)
	case "recommendations":
		m.recTable, cmd = m.recTable.Update(msg)
	case "category":
		m.categoryInput, cmd = m.categoryInput.Update(msg)
	}

	return m, cmd
}

func (m Model) load(filters Filters) (Model, tea.Cmd) {
	m.currentView = "recommendations"
	m.filters = filters
	m.loading = true
	m.error = ""
	return m, fetchRecommendations(m.client, filters)
}

// View renders the UI
func (m Model) View() string {
	switch m.currentView {
	case "main":
		return docStyle.Render(m.mainMenu.View())
	case "recommendations":
		return docStyle.Render(m.recommendationsView())
	case "detail":
		return docStyle.Render(m.detailView())
	case "category":
		help := "\nPress 'enter' to analyze, 'esc' to go back\n"
		if m.error != "" {
			help += errorStyle.Render(m.error) + "\n"
		}
		return docStyle.Render(titleStyle.Render("Analyze Category") + "\n\n" + m.categoryInput.View() + help)
	case "status":
		return docStyle.Render(m.statusView())
	default:
		return "Loading..."
	}
}

func (m Model) recommendationsView() string {
	view := titleStyle.Render("Recommendations") + "\n\n"
	if m.loading {
		return view + m.spinner.View() + " Analyzing inventory...\n"
	}
	if m.error != "" {
		return view + errorStyle.Render(m.error) + "\n\nPress 'r' to retry, 'esc' to go back"
	}
	if m.response == nil {
		return view + "No analysis yet\n"
	}

	s := m.response.Summary
	view += fmt.Sprintf("%d recommendations, %d high priority\n", s.TotalRecommendations, s.HighPriority)
	view += infoStyle.Render(s.EstimatedImpact) + "\n\n"
	if len(m.response.Recommendations) == 0 {
		view += successStyle.Render("Nothing needs attention") + "\n"
	} else {
		view += m.recTable.View() + "\n"
	}
	return view + "\nPress 'enter' for details, 'r' to refresh, 'esc' to go back"
}

// selected returns the recommendation under the table cursor. Rows are
// sorted, so it is looked up by position in the sorted order.
func (m Model) selected() (Recommendation, bool) {
	if m.response == nil {
		return Recommendation{}, false
	}
	row := m.recTable.SelectedRow()
	if row == nil {
		return Recommendation{}, false
	}
	for _, r := range m.response.Recommendations {
		if r.Urgency == row[0] && r.Type == row[1] && r.Medicine.Name == row[2] && r.Action == row[3] {
			return r, true
		}
	}
	return Recommendation{}, false
}

func (m Model) detailView() string {
	rec, ok := m.selected()
	if !ok {
		return "No recommendation selected"
	}
	return recommendationDetail(rec) + "\nPress 'enter' or 'esc' to go back to the list"
}

// recommendationDetail renders one recommendation with its metadata
func recommendationDetail(rec Recommendation) string {
	urgency, ok := urgencyStyles[rec.Urgency]
	if !ok {
		urgency = infoStyle
	}

	view := titleStyle.Render(fmt.Sprintf("%s %s", rec.Type, rec.Medicine.Name)) + " " + urgency.Render(rec.Urgency) + "\n\n"
	view += fmt.Sprintf("Action: %s\n", rec.Action)
	view += fmt.Sprintf("Reasoning: %s\n", rec.Reasoning)
	view += fmt.Sprintf("Confidence: %.0f%%\n", rec.Confidence*100)
	if rec.Medicine.ID != nil {
		view += fmt.Sprintf("Medicine ID: %s\n", *rec.Medicine.ID)
	}

	if len(rec.Metadata) > 0 {
		keys := make([]string, 0, len(rec.Metadata))
		for k := range rec.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		view += "\nDetails:\n"
		for _, k := range keys {
			view += fmt.Sprintf("• %s: %v\n", k, rec.Metadata[k])
		}
	}
	return view
}

func (m Model) statusView() string {
	view := titleStyle.Render("Service Status") + "\n\n"
	switch {
	case m.loading:
		return view + m.spinner.View() + " Checking...\n"
	case m.error != "":
		return view + errorStyle.Render(m.error) + "\n\nPress 'esc' to go back"
	case m.status == nil:
		return view + "No status\n"
	}

	if enabled, _ := m.status["model_enabled"].(bool); enabled {
		view += successStyle.Render("AI analysis enabled") + "\n"
	} else {
		view += errorStyle.Render("AI analysis disabled, rule-based fallback only") + "\n"
	}
	if uptime, ok := m.status["uptime_seconds"].(float64); ok {
		view += fmt.Sprintf("Uptime: %.0fs\n", uptime)
	}

	if run, ok := m.status["last_run"].(map[string]any); ok {
		view += "\nLast analysis:\n"
		view += fmt.Sprintf("• At: %v\n", run["at"])
		view += fmt.Sprintf("• Recommendations: %v (%v high priority)\n", run["recommendations"], run["high_priority"])
		view += fmt.Sprintf("• Served from cache: %v\n", run["cached"])
		view += fmt.Sprintf("• Duration: %vms\n", run["duration_ms"])
	} else {
		view += "\nNo analysis has run yet\n"
	}
	return view + "\nPress 'esc' to go back"
}

// Custom message types for the tea.Model
type recommendationsMsg struct {
	response *RecommendationResponse
}

type statusMsg struct {
	status map[string]any
}

type errorMsg struct {
	err string
}

// fetchRecommendations requests an analysis from the API
func fetchRecommendations(client *ApiClient, filters Filters) tea.Cmd {
	return func() tea.Msg {
		resp, err := client.GetRecommendations(filters)
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching recommendations: %v", err)}
		}
		return recommendationsMsg{response: resp}
	}
}

// fetchStatus retrieves the service status
func fetchStatus(client *ApiClient) tea.Cmd {
	return func() tea.Msg {
		status, err := client.GetStatus()
		if err != nil {
			return errorMsg{err: fmt.Sprintf("Error fetching status: %v", err)}
		}
		return statusMsg{status: status}
	}
}

func main() {
	client := NewApiClient()
	if ok, err := client.CheckHealth(); !ok {
		fmt.Printf("Error: API server at %s is not available: %v\n", client.BaseURL, err)
		os.Exit(1)
	}

	p := tea.NewProgram(initialModel(client))
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error running program: %v", err)
		os.Exit(1)
	}
}

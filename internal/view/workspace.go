package view

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/agalitsyn/secret"
)

type Page string

const (
	PageDashboard Page = "dashboard"
	PageTasks     Page = "tasks"
	PageUsers     Page = "users"
)

func ParsePage(s string) (Page, error) {
	switch Page(s) {
	case PageDashboard, PageTasks, PageUsers:
		return Page(s), nil
	default:
		return "", fmt.Errorf("view: unknown page %q", s)
	}
}

type Tab string

const (
	TabTasks Tab = "tasks"
	TabUsers Tab = "users"
)

// Workspace holds the boards of one browser session.
type Workspace struct {
	Dashboard      *TaskBoard
	Tasks          *TaskBoard
	DashboardUsers *UserBoard
	Users          *UserBoard

	mu  sync.Mutex
	tab Tab
}

func NewWorkspace(logger *slog.Logger, gw Gateway, cache Invalidator, token secret.String) *Workspace {
	logger = logger.With("module", "view")

	return &Workspace{
		Dashboard:      NewTaskBoard(logger.With("page", PageDashboard), gw, cache, token),
		Tasks:          NewTaskBoard(logger.With("page", PageTasks), gw, cache, token),
		DashboardUsers: NewUserBoard(logger.With("page", PageDashboard), gw, cache, token),
		Users:          NewUserBoard(logger.With("page", PageUsers), gw, cache, token),
		tab:            TabTasks,
	}
}

// Mount marks page as freshly rendered. Mutations started before it no longer
// update that page's boards.
func (ws *Workspace) Mount(page Page) {
	switch page {
	case PageDashboard:
		ws.Dashboard.mount()
		ws.DashboardUsers.mount()
	case PageTasks:
		ws.Tasks.mount()
	case PageUsers:
		ws.Users.mount()
	}
}

func (ws *Workspace) TaskBoard(page Page) (*TaskBoard, bool) {
	switch page {
	case PageDashboard:
		return ws.Dashboard, true
	case PageTasks:
		return ws.Tasks, true
	default:
		return nil, false
	}
}

func (ws *Workspace) UserBoard(page Page) (*UserBoard, bool) {
	switch page {
	case PageDashboard:
		return ws.DashboardUsers, true
	case PageUsers:
		return ws.Users, true
	default:
		return nil, false
	}
}

func (ws *Workspace) SetTab(tab Tab) error {
	if tab != TabTasks && tab != TabUsers {
		return fmt.Errorf("view: unknown tab %q", tab)
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.tab = tab
	return nil
}

// Tab is the dashboard tab to show. Only admins ever leave the tasks tab.
func (ws *Workspace) Tab(admin bool) Tab {
	if !admin {
		return TabTasks
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.tab
}

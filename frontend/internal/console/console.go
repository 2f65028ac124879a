// Package console is the operator's moderation desk: stage one action, confirm it, apply it
// optimistically and roll it back if the backend refuses.
package console

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/a2z-dev/a2z/shared/api"
	"github.com/a2z-dev/a2z/shared/domain"
	"github.com/a2z-dev/a2z/shared/errors"
	"github.com/a2z-dev/a2z/shared/logger"
	"github.com/a2z-dev/a2z/shared/middleware/metrics"
)

const (
	TabUsers  = "users"
	TabStores = "stores"
	TabLogs   = "logs"
	TabBans   = "bans"

	maxAuditLines = 200
)

var ErrBusy = &errors.ErrorWithStatusCode{
	Message:    "Another action is still executing. Please wait.",
	StatusCode: http.StatusConflict,
	Kind:       errors.ValidationError,
}

// Backend is everything the console reads and mutates.
type Backend interface {
	ListUsers(ctx context.Context) ([]api.AdminUser, error)
	SetUserDisabled(ctx context.Context, uid domain.IdentityId, disabled bool) error
	ListBusinesses(ctx context.Context) ([]domain.Business, error)
	SetBusinessStatus(ctx context.Context, id domain.BusinessId, status domain.BusinessStatus) error
	RecentLogs(ctx context.Context, limit int) ([]domain.LogEntry, error)
	ListBans(ctx context.Context) ([]domain.BanRecord, error)
}

type Result struct {
	Action  domain.PendingAction
	Applied bool
	Err     error
}

type Console struct {
	mu sync.Mutex

	operator   domain.Session
	logLimit   int
	tab        string
	users      []api.AdminUser
	businesses []domain.Business
	logs       []domain.LogEntry
	bans       []domain.BanRecord
	staged     *domain.PendingAction
	executing  bool
	// confirms counts started Confirm calls; a Load that spans one is stale
	confirms uint64
	audit      []string
	now        func() time.Time
}

func New(operator domain.Session, logLimit int) *Console {
	return &Console{operator: operator, logLimit: logLimit, tab: TabUsers, now: time.Now}
}

func (c *Console) addLog(format string, args ...any) {
	line := fmt.Sprintf("[%s] %s", c.now().Format("15:04:05"), fmt.Sprintf(format, args...))
	c.audit = append([]string{line}, c.audit...)
	if len(c.audit) > maxAuditLines {
		c.audit = c.audit[:maxAuditLines]
	}
}

// Load fetches the list behind tab and makes it the current tab.
func (c *Console) Load(ctx context.Context, b Backend, tab string) error {
	if tab == "" {
		tab = TabUsers
	}
	if tab != TabUsers && tab != TabStores && tab != TabLogs && tab != TabBans {
		return errors.New(errors.ValidationError, "Unknown tab: "+tab)
	}

	c.mu.Lock()
	if c.executing {
		c.mu.Unlock()
		return ErrBusy
	}
	c.tab = tab
	c.addLog("Fetching %s list...", tab)
	started := c.confirms
	c.mu.Unlock()

	var (
		users      []api.AdminUser
		businesses []domain.Business
		logs       []domain.LogEntry
		bans       []domain.BanRecord
		err        error
	)
	switch tab {
	case TabUsers:
		users, err = b.ListUsers(ctx)
	case TabStores:
		businesses, err = b.ListBusinesses(ctx)
	case TabLogs:
		logs, err = b.RecentLogs(ctx, c.logLimit)
	case TabBans:
		bans, err = b.ListBans(ctx)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.addLog("Error fetching %s: %s", tab, err.Error())
		return err
	}
	// the list was read before the action landed and would overwrite its optimistic state
	if c.executing || c.confirms != started {
		c.addLog("Discarded %s list: an action ran while fetching.", tab)
		return ErrBusy
	}
	switch tab {
	case TabUsers:
		c.users = users
		c.addLog("Fetched %d users.", len(users))
	case TabStores:
		c.businesses = businesses
		c.addLog("Fetched %d businesses.", len(businesses))
	case TabLogs:
		c.logs = logs
		c.addLog("Fetched %d error logs.", len(logs))
	case TabBans:
		c.bans = bans
		c.addLog("Fetched %d bans.", len(bans))
	}
	return nil
}

// Stage records the action for one row without touching the backend. Staging again replaces
// the previous staged action.
func (c *Console) Stage(targetType domain.TargetType, id string) (domain.PendingAction, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.executing {
		return domain.PendingAction{}, ErrBusy
	}

	var (
		action domain.PendingAction
		label  string
	)
	switch targetType {
	case domain.TargetUser:
		i := c.userIndex(id)
		if i < 0 {
			return domain.PendingAction{}, errors.New(errors.NotFound, "User is not in the loaded list.")
		}
		u := c.users[i]
		action = domain.PendingAction{TargetId: id, TargetType: targetType, Kind: userAction(u)}
		label = u.Email
	case domain.TargetBusiness:
		i := c.businessIndex(id)
		if i < 0 {
			return domain.PendingAction{}, errors.New(errors.NotFound, "Store is not in the loaded list.")
		}
		biz := c.businesses[i]
		kind, ok := businessAction(biz)
		if !ok {
			return domain.PendingAction{}, errors.New(errors.ValidationError, "Pending stores have no moderation action.")
		}
		action = domain.PendingAction{TargetId: id, TargetType: targetType, Kind: kind}
		label = biz.Name
	default:
		return domain.PendingAction{}, errors.New(errors.ValidationError, "Unknown target type: "+string(targetType))
	}

	c.staged = &action
	c.addLog("REQUEST: %s for %s. Waiting for confirmation...", action.Kind, label)
	return action, nil
}

// Cancel drops the staged action, if any.
func (c *Console) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.staged = nil
}

// Confirm executes the staged action. The new state is visible before the backend call
// and reverted to the snapshot if the call fails.
func (c *Console) Confirm(ctx context.Context, b Backend) (Result, error) {
	c.mu.Lock()
	if c.executing {
		c.mu.Unlock()
		return Result{}, ErrBusy
	}
	if c.staged == nil {
		c.mu.Unlock()
		return Result{}, errors.New(errors.ValidationError, "Nothing to confirm.")
	}
	action := *c.staged
	c.staged = nil
	c.executing = true
	c.confirms++

	usersSnapshot := slices.Clone(c.users)
	businessesSnapshot := slices.Clone(c.businesses)

	var call func(context.Context) error
	switch action.TargetType {
	case domain.TargetUser:
		disabled := action.Kind == domain.ActionBan
		c.addLog("CONFIRMED: Executing %s for User...", action.Kind)
		if i := c.userIndex(action.TargetId); i >= 0 {
			c.users[i].Disabled = disabled
		}
		call = func(ctx context.Context) error { return b.SetUserDisabled(ctx, action.TargetId, disabled) }
	default:
		status := domain.BusinessActive
		if action.Kind == domain.ActionSuspend {
			status = domain.BusinessSuspended
		}
		c.addLog("CONFIRMED: Executing %s for Business...", action.Kind)
		if i := c.businessIndex(action.TargetId); i >= 0 {
			c.businesses[i].Status = status
		}
		call = func(ctx context.Context) error { return b.SetBusinessStatus(ctx, action.TargetId, status) }
	}
	c.mu.Unlock()

	err := call(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.executing = false
	metrics.ModerationAction(string(action.Kind), err == nil)

	if err != nil {
		c.users = usersSnapshot
		c.businesses = businessesSnapshot
		c.addLog("ERROR: %s", err.Error())
		logger.Log.Warn("moderation action rolled back",
			"operator", c.operator.Email, "action", action.Kind, "target", action.TargetId, "error", err)
		return Result{Action: action, Err: err}, err
	}

	switch action.Kind {
	case domain.ActionBan:
		c.addLog("SUCCESS: User is now BANNED")
	case domain.ActionUnban:
		c.addLog("SUCCESS: User is now ACTIVE")
	case domain.ActionSuspend:
		c.addLog("SUCCESS: Business is now SUSPENDED")
	case domain.ActionRestore:
		c.addLog("SUCCESS: Business is now ACTIVE")
	}
	logger.Log.Info("moderation action applied",
		"operator", c.operator.Email, "action", action.Kind, "target", action.TargetId)
	return Result{Action: action, Applied: true}, nil
}

// View renders the current tab with per-row actions.
func (c *Console) View() api.ConsoleView {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := api.ConsoleView{
		Tab:       c.tab,
		Executing: c.executing,
		Audit:     slices.Clone(c.audit),
		ErrorLogs: slices.Clone(c.logs),
		Bans:      slices.Clone(c.bans),
	}
	if c.staged != nil {
		staged := *c.staged
		v.Staged = &staged
	}
	for _, u := range c.users {
		v.Users = append(v.Users, api.UserRow{
			AdminUser: u,
			Action:    string(userAction(u)),
			Staged:    c.isStaged(domain.TargetUser, u.Uid),
		})
	}
	for _, biz := range c.businesses {
		kind, _ := businessAction(biz)
		v.Businesses = append(v.Businesses, api.BusinessRow{
			Business: biz,
			Badge:    strings.ToUpper(string(biz.Status)),
			Action:   string(kind),
			Staged:   c.isStaged(domain.TargetBusiness, biz.Id),
		})
	}
	return v
}

func (c *Console) isStaged(t domain.TargetType, id string) bool {
	return c.staged != nil && c.staged.TargetType == t && c.staged.TargetId == id
}

func (c *Console) userIndex(id string) int {
	return slices.IndexFunc(c.users, func(u api.AdminUser) bool { return u.Uid == id })
}

func (c *Console) businessIndex(id string) int {
	return slices.IndexFunc(c.businesses, func(b domain.Business) bool { return b.Id == id })
}

func userAction(u api.AdminUser) domain.ActionKind {
	if u.Disabled {
		return domain.ActionUnban
	}
	return domain.ActionBan
}

// businessAction is empty for pending stores: they are neither suspended nor live yet.
func businessAction(b domain.Business) (domain.ActionKind, bool) {
	switch b.Status {
	case domain.BusinessSuspended:
		return domain.ActionRestore, true
	case domain.BusinessActive:
		return domain.ActionSuspend, true
	}
	return "", false
}

package ui

import (
	"context"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/forms"
	"github.com/danhigham/telegrame/internal/navigation"
	"github.com/danhigham/telegrame/internal/search"
	"github.com/danhigham/telegrame/internal/state"
)

const splashDuration = 1500 * time.Millisecond

// tabBarHeight is the row above main flow scenes.
const tabBarHeight = 1

var sceneTitles = map[domain.Scene]string{
	domain.SceneOnboarding:     "Welcome",
	domain.SceneAuthStart:      "Sign in",
	domain.SceneSignIn:         "Sign in with email",
	domain.SceneSignUp:         "Create account",
	domain.SceneForgotPassword: "Forgot password",
	domain.SceneProfileSetup:   "Set up profile",
	domain.SceneChats:          "Chats",
	domain.SceneUserProfile:    "Profile",
	domain.SceneSettings:       "Settings",
}

// Accounts runs the account use cases for the UI.
type Accounts interface {
	CurrentUser() (domain.Account, bool)
	SignUp(ctx context.Context, displayName, username, email, password string) (domain.User, error)
	SignIn(ctx context.Context, email, password string) (domain.Account, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ProviderSignIn(ctx context.Context, provider, token string) (account.Destination, error)
	CompleteProfile(ctx context.Context, displayName, username string) (domain.User, error)
	CancelProfileSetup(ctx context.Context) error
	DeleteAccount(ctx context.Context) error
	SignOut() error
	LoadUser(ctx context.Context, user domain.User) (account.Profile, error)
}

// Deps are the collaborators of the root model.
type Deps struct {
	Accounts  Accounts
	Paginator *search.Paginator
	Debouncer *search.Debouncer
	Store     *state.Store
	Prefs     state.Prefs
	PrefsPath string
	Logger    *zap.Logger
}

// Model is the root Bubble Tea model.
type Model struct {
	onboarding OnboardingModel
	authStart  AuthStartModel
	signIn     FormModel
	signUp     FormModel
	forgot     FormModel
	setup      FormModel
	chats      ChatsModel
	profile    ProfileModel
	settings   SettingsModel
	status     statusModel
	splash     SplashModel
	help       HelpModel
	popup      string

	ctx       context.Context
	nav       *navigation.Coordinator
	accounts  Accounts
	store     *state.Store
	prefs     state.Prefs
	prefsPath string
	logger    *zap.Logger

	width  int
	height int
}

// NewModel creates the root model and enters the starting flow.
func NewModel(ctx context.Context, deps Deps) Model {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	_, signedIn := deps.Accounts.CurrentUser()

	m := Model{
		onboarding: NewOnboardingModel(),
		authStart:  NewAuthStartModel(),
		signIn:     NewFormModel(forms.SignIn, "Sign in", "Sign In", "ctrl+f forgot password · esc back"),
		signUp:     NewFormModel(forms.SignUp, "Create account", "Sign Up", "esc back"),
		forgot:     NewFormModel(forms.ForgotPassword, "Forgot password", "Send", "esc back"),
		setup:      NewFormModel(forms.ProfileSetup, "Set up your profile", "Continue", "esc cancel"),
		chats:      NewChatsModel(ctx, deps.Debouncer, deps.Paginator, deps.Store),
		profile:    NewProfileModel(),
		settings:   NewSettingsModel(),
		status:     newStatusModel(),
		splash:     NewSplashModel(),
		help:       NewHelpModel(),
		ctx:        ctx,
		nav:        navigation.NewCoordinator(deps.Prefs.PassedOnboarding, signedIn, logger),
		accounts:   deps.Accounts,
		store:      deps.Store,
		prefs:      deps.Prefs,
		prefsPath:  deps.PrefsPath,
		logger:     logger.Named("ui"),
	}
	m, _ = m.enterFlow(m.nav.Flow())
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.Tick(splashDuration, func(time.Time) tea.Msg { return SplashDoneMsg{} }),
		func() tea.Msg { return ReadyMsg{} },
		clockTick(),
	)
}

func clockTick() tea.Cmd {
	return tea.Tick(time.Minute, func(time.Time) tea.Msg { return clockTickMsg{} })
}

// Flow and Scene expose the navigation position.
func (m Model) Flow() domain.Flow   { return m.nav.Flow() }
func (m Model) Scene() domain.Scene { return m.nav.Scene() }

// Popup returns the message currently shown, if any.
func (m Model) Popup() string { return m.popup }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m.distributeSize(), nil

	case StoreUpdatedMsg:
		m.chats = m.chats.Refresh()
		if acct, ok := m.store.Account(); ok {
			m.status = m.status.SetEmail(acct.Email)
		} else {
			m.status = m.status.SetEmail("")
		}
		return m, nil

	case SplashDoneMsg:
		m.splash = m.splash.TimerDone()
		return m, nil

	case ReadyMsg:
		m.splash = m.splash.Ready()
		m.status = m.status.SetReady(true)
		return m, nil

	case clockTickMsg:
		return m, clockTick()

	case popupMsg:
		if msg.text != "" {
			m.popup = msg.text
		}
		return m, nil

	case finishFlowMsg:
		return m.finishFlow()

	case pushSceneMsg:
		return m.push(msg.scene, msg.user)

	case searchTickMsg, pageLoadedMsg:
		var cmd tea.Cmd
		m.chats, cmd = m.chats.Update(msg)
		return m, cmd

	case formDoneMsg:
		return m.formDone(msg)

	case providerDoneMsg:
		m.authStart = m.authStart.SetLoading(false)
		if msg.err != nil {
			return m.showError(msg.err), nil
		}
		if msg.dest == account.ToProfileSetup {
			return m.push(domain.SceneProfileSetup, domain.User{})
		}
		return m.finishFlow()

	case profileLoadedMsg:
		var text string
		m.profile, text = m.profile.Loaded(msg)
		if text != "" {
			m.popup = text
		}
		return m, nil

	case settingsDoneMsg:
		m.settings = m.settings.SetLoading(false)
		if msg.err != nil {
			return m.showError(msg.err), nil
		}
		return m.finishFlow()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return m, tea.Quit
	}
	if m.splash.IsVisible() {
		return m, nil
	}
	if m.popup != "" {
		switch key {
		case "enter", "esc", "space":
			m.popup = ""
		}
		return m, nil
	}
	if key == "f1" || (key == "esc" && m.help.IsVisible()) {
		m.help = m.help.Toggle()
		return m, nil
	}
	if m.help.IsVisible() {
		return m, nil
	}

	scene := m.nav.Scene()
	switch key {
	case "ctrl+n":
		if m.nav.Flow() == domain.FlowMain {
			tab := domain.SceneSettings
			if scene == domain.SceneSettings {
				tab = domain.SceneChats
			}
			return m.selectTab(tab)
		}
	case "esc":
		if scene != domain.SceneAuthStart {
			return m.back()
		}
	case "ctrl+f":
		if scene == domain.SceneSignIn {
			return m.push(domain.SceneForgotPassword, domain.User{})
		}
	}

	var cmd tea.Cmd
	switch scene {
	case domain.SceneOnboarding:
		m.onboarding, cmd = m.onboarding.Update(msg)

	case domain.SceneAuthStart:
		var req *providerRequest
		m.authStart, cmd, req = m.authStart.Update(msg)
		if req != nil {
			cmd = m.providerSignIn(*req)
		}

	case domain.SceneSignIn, domain.SceneSignUp, domain.SceneForgotPassword, domain.SceneProfileSetup:
		f := m.form(scene)
		var submitted bool
		f, cmd, submitted = f.Update(msg)
		if submitted {
			f = f.SetLoading(true)
			cmd = m.submit(scene, f)
		}
		m = m.setForm(scene, f)

	case domain.SceneChats:
		m.chats, cmd = m.chats.Update(msg)

	case domain.SceneSettings:
		var action settingsAction
		m.settings, action = m.settings.Update(msg)
		if action != actionNone {
			m.settings = m.settings.SetLoading(true)
			cmd = m.settingsAction(action)
		}
	}
	return m, cmd
}

// push opens scene in the current flow.
func (m Model) push(scene domain.Scene, user domain.User) (Model, tea.Cmd) {
	m.nav.Push(scene)
	m.status = m.status.SetScene(m.nav.Flow().String(), sceneTitles[scene])

	switch scene {
	case domain.SceneSignIn, domain.SceneSignUp, domain.SceneForgotPassword, domain.SceneProfileSetup:
		f, cmd := m.form(scene).Reset()
		if scene == domain.SceneForgotPassword {
			if email := m.signIn.Value(forms.Email); email != "" {
				f = f.Set(forms.Email, email)
			}
		}
		return m.setForm(scene, f), cmd

	case domain.SceneUserProfile:
		var load func() profileLoadedMsg
		m.profile, load = m.profile.Open(m.ctx, m.accounts, user)
		return m, func() tea.Msg { return load() }
	}
	return m, nil
}

// back closes the current scene. Leaving profile setup discards the
// half-created account.
func (m Model) back() (Model, tea.Cmd) {
	scene := m.nav.Scene()
	if !m.nav.Back() {
		return m, nil
	}
	m.status = m.status.SetScene(m.nav.Flow().String(), sceneTitles[m.nav.Scene()])

	switch scene {
	case domain.SceneUserProfile:
		m.profile = m.profile.Close()
	case domain.SceneProfileSetup:
		ctx, accounts := m.ctx, m.accounts
		return m, func() tea.Msg {
			return popupMsg{text: account.Message(accounts.CancelProfileSetup(ctx))}
		}
	case domain.SceneSignIn, domain.SceneSignUp, domain.SceneForgotPassword:
		f := m.form(scene).SetLoading(false)
		m = m.setForm(scene, f)
	}
	return m, nil
}

func (m Model) selectTab(tab domain.Scene) (Model, tea.Cmd) {
	if m.nav.Scene() == domain.SceneUserProfile {
		m.profile = m.profile.Close()
	}
	if !m.nav.SelectTab(tab) {
		return m, nil
	}
	m.status = m.status.SetScene(m.nav.Flow().String(), sceneTitles[tab])
	if tab == domain.SceneChats {
		var cmd tea.Cmd
		m.chats, cmd = m.chats.Focus()
		return m, cmd
	}
	return m, nil
}

// finishFlow ends the current flow and enters the next one.
func (m Model) finishFlow() (Model, tea.Cmd) {
	from := m.nav.Flow()
	if from == domain.FlowOnboarding {
		m.prefs.PassedOnboarding = true
		if err := state.SavePrefs(m.prefsPath, m.prefs); err != nil {
			m.logger.Error("failed to save preferences", zap.Error(err))
		}
	}
	to := m.nav.Finish()
	if _, signedIn := m.accounts.CurrentUser(); from == domain.FlowOnboarding && signedIn {
		to = m.nav.Finish()
	}
	return m.enterFlow(to)
}

// enterFlow prepares the scenes of flow f.
func (m Model) enterFlow(f domain.Flow) (Model, tea.Cmd) {
	m.status = m.status.SetScene(f.String(), sceneTitles[m.nav.Scene()])
	m.profile = m.profile.Close()

	switch f {
	case domain.FlowAuthentication:
		m.store.SetAccount(nil)
		m.status = m.status.SetEmail("")
		m.chats = m.chats.SetExcluding("").Reset()
		m.authStart = m.authStart.SetLoading(false)
		m.settings = m.settings.SetEmail("")
		for _, scene := range []domain.Scene{domain.SceneSignIn, domain.SceneSignUp, domain.SceneForgotPassword, domain.SceneProfileSetup} {
			form, _ := m.form(scene).Reset()
			m = m.setForm(scene, form)
		}
		return m, nil

	case domain.FlowMain:
		acct, ok := m.accounts.CurrentUser()
		if !ok {
			m.logger.Warn("entered main flow without a signed-in user")
		}
		m.store.SetAccount(&acct)
		m.status = m.status.SetEmail(acct.Email)
		m.settings = m.settings.SetEmail(acct.Email)
		m.chats = m.chats.SetExcluding(acct.ID).Reset()
		var cmd tea.Cmd
		m.chats, cmd = m.chats.Focus()
		return m, cmd
	}
	return m, nil
}

func (m Model) form(scene domain.Scene) FormModel {
	switch scene {
	case domain.SceneSignIn:
		return m.signIn
	case domain.SceneSignUp:
		return m.signUp
	case domain.SceneForgotPassword:
		return m.forgot
	default:
		return m.setup
	}
}

func (m Model) setForm(scene domain.Scene, f FormModel) Model {
	switch scene {
	case domain.SceneSignIn:
		m.signIn = f
	case domain.SceneSignUp:
		m.signUp = f
	case domain.SceneForgotPassword:
		m.forgot = f
	case domain.SceneProfileSetup:
		m.setup = f
	}
	return m
}

// submit runs the use case behind a ready form.
func (m Model) submit(scene domain.Scene, f FormModel) tea.Cmd {
	ctx, accounts := m.ctx, m.accounts
	var (
		name     = f.Value(forms.DisplayName)
		username = f.Value(forms.Username)
		email    = f.Value(forms.Email)
		password = f.Value(forms.Password)
	)
	return func() tea.Msg {
		var (
			notice string
			err    error
		)
		switch scene {
		case domain.SceneSignIn:
			_, err = accounts.SignIn(ctx, email, password)
		case domain.SceneSignUp:
			_, err = accounts.SignUp(ctx, name, username, email, password)
		case domain.SceneForgotPassword:
			notice, err = accounts.ForgotPassword(ctx, email)
		case domain.SceneProfileSetup:
			_, err = accounts.CompleteProfile(ctx, name, username)
		}
		return formDoneMsg{scene: scene, notice: notice, err: err}
	}
}

func (m Model) formDone(msg formDoneMsg) (Model, tea.Cmd) {
	m = m.setForm(msg.scene, m.form(msg.scene).SetLoading(false))
	if msg.err != nil {
		return m.showError(msg.err), nil
	}
	if msg.scene == domain.SceneForgotPassword {
		m.popup = msg.notice
		if m.nav.Scene() == domain.SceneForgotPassword {
			return m.back()
		}
		return m, nil
	}
	return m.finishFlow()
}

func (m Model) providerSignIn(req providerRequest) tea.Cmd {
	ctx, accounts := m.ctx, m.accounts
	return func() tea.Msg {
		dest, err := accounts.ProviderSignIn(ctx, req.provider, req.token)
		return providerDoneMsg{dest: dest, err: err}
	}
}

func (m Model) settingsAction(action settingsAction) tea.Cmd {
	ctx, accounts := m.ctx, m.accounts
	return func() tea.Msg {
		var err error
		switch action {
		case actionSignOut:
			err = accounts.SignOut()
		case actionDeleteAccount:
			err = accounts.DeleteAccount(ctx)
		}
		return settingsDoneMsg{err: err}
	}
}

// showError pops up the message for err. Cancellations show nothing.
func (m Model) showError(err error) Model {
	if text := account.Message(err); text != "" {
		m.popup = text
	}
	return m
}

func (m Model) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	var body string
	switch scene := m.nav.Scene(); scene {
	case domain.SceneOnboarding:
		body = m.onboarding.View()
	case domain.SceneAuthStart:
		body = m.authStart.View()
	case domain.SceneSignIn, domain.SceneSignUp, domain.SceneForgotPassword, domain.SceneProfileSetup:
		w, h := m.contentSize()
		body = lipgloss.Place(w, h, lipgloss.Center, lipgloss.Center, m.form(scene).View())
	case domain.SceneChats:
		body = m.chats.View()
	case domain.SceneUserProfile:
		body = m.profile.View()
	case domain.SceneSettings:
		body = m.settings.View()
	}
	if m.nav.Flow() == domain.FlowMain {
		body = lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), body)
	}

	full := lipgloss.JoinVertical(lipgloss.Left, body, m.status.View())
	content := lipgloss.NewStyle().
		MaxWidth(m.width).
		MaxHeight(m.height).
		Render(full)

	switch {
	case m.splash.IsVisible():
		content = overlay(content, m.splash.View(), m.width, m.height)
	case m.help.IsVisible():
		content = overlay(content, m.help.View(), m.width, m.height)
	case m.popup != "":
		box := lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(highlightColor).
			Padding(1, 3).
			Width(min(60, m.width)).
			Render(m.popup + "\n\n" + subtleStyle.Render("enter to dismiss"))
		content = overlay(content, box, m.width, m.height)
	}
	v.SetContent(content)
	return v
}

func (m Model) tabBar() string {
	current := m.nav.Scene()
	if current == domain.SceneUserProfile {
		current = domain.SceneChats
	}
	var tabs []string
	for _, tab := range navigation.Tabs {
		label := " " + sceneTitles[tab] + " "
		if tab == current {
			tabs = append(tabs, selectedStyle.Underline(true).Render(label))
		} else {
			tabs = append(tabs, subtleStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + subtleStyle.Render("  ctrl+n switch · f1 help")
}

// contentSize is the area left for a scene.
func (m Model) contentSize() (int, int) {
	h := m.height - 1
	if m.nav.Flow() == domain.FlowMain {
		h -= tabBarHeight
	}
	return m.width, max(1, h)
}

func (m Model) distributeSize() Model {
	w, h := m.width, max(1, m.height-1)
	mainH := max(1, h-tabBarHeight)

	m.onboarding = m.onboarding.SetSize(w, h)
	m.authStart = m.authStart.SetSize(w, h)
	formW := min(w, 60)
	m.signIn = m.signIn.SetSize(formW, h)
	m.signUp = m.signUp.SetSize(formW, h)
	m.forgot = m.forgot.SetSize(formW, h)
	m.setup = m.setup.SetSize(formW, h)
	m.chats = m.chats.SetSize(w, mainH)
	m.profile = m.profile.SetSize(w, mainH)
	m.settings = m.settings.SetSize(w, mainH)

	m.status = m.status.SetWidth(w)
	m.splash = m.splash.SetSize(m.width, m.height)
	m.help = m.help.SetSize(m.width, m.height)
	return m
}

// App wraps the Bubble Tea program for external use.
type App struct {
	program *tea.Program
}

// NewApp creates a new App ready to Run.
func NewApp(ctx context.Context, deps Deps) *App {
	model := NewModel(ctx, deps)
	p := tea.NewProgram(model, tea.WithContext(ctx))
	return &App{program: p}
}

// Run starts the Bubble Tea event loop (blocks until quit).
func (a *App) Run() error {
	_, err := a.program.Run()
	return err
}

// Send sends a message into the Bubble Tea event loop from external goroutines.
func (a *App) Send(msg tea.Msg) {
	go a.program.Send(msg)
}

// DrawFunc returns a function suitable for state.Store that triggers a re-render.
func (a *App) DrawFunc() func() {
	return func() {
		a.Send(StoreUpdatedMsg{})
	}
}

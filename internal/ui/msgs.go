package ui

import (
	"github.com/danhigham/telegrame/internal/account"
	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/search"
)

// StoreUpdatedMsg signals that the store state has changed.
type StoreUpdatedMsg struct{}

// SplashDoneMsg signals that the splash screen timeout has elapsed.
type SplashDoneMsg struct{}

// ReadyMsg signals that the backends are open.
type ReadyMsg struct{}

// pushSceneMsg opens a scene on top of the current flow.
type pushSceneMsg struct {
	scene domain.Scene
	user  domain.User // for SceneUserProfile
}

// finishFlowMsg ends the current flow.
type finishFlowMsg struct{}

// popupMsg shows a dismissable message. Empty text shows nothing.
type popupMsg struct {
	text string
}

// searchTickMsg delivers a debounce token after its interval.
type searchTickMsg struct {
	token search.Token
}

// pageLoadedMsg delivers a page of search results.
type pageLoadedMsg struct {
	page search.Page
	err  error
}

// formDoneMsg reports the outcome of a submitted form.
type formDoneMsg struct {
	scene  domain.Scene
	notice string
	err    error
}

// providerDoneMsg reports a provider sign-in.
type providerDoneMsg struct {
	dest account.Destination
	err  error
}

// profileLoadedMsg delivers a user's profile.
type profileLoadedMsg struct {
	userID  string
	profile account.Profile
	err     error
}

// settingsDoneMsg reports sign-out or account deletion.
type settingsDoneMsg struct {
	err error
}

// clockTickMsg triggers a status bar time refresh.
type clockTickMsg struct{}

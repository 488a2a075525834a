package domain

import "time"

// User is a directory record: the public profile of an account.
type User struct {
	ID          string
	PhotoURL    string
	DisplayName string
	Username    string
	Email       string
	Keywords    []string // all prefixes of DisplayName and Username
	CreatedAt   time.Time
}

// Account is an authenticated identity as seen by the auth backend.
type Account struct {
	ID       string
	Email    string
	PhotoURL string
	Provider string // "" for e-mail/password accounts
}

// Flow identifies a top-level navigation flow.
type Flow int

const (
	FlowNone Flow = iota
	FlowOnboarding
	FlowAuthentication
	FlowMain
)

func (f Flow) String() string {
	switch f {
	case FlowOnboarding:
		return "onboarding"
	case FlowAuthentication:
		return "authentication"
	case FlowMain:
		return "main"
	default:
		return "none"
	}
}

// Scene identifies a single screen inside a flow.
type Scene int

const (
	SceneNone Scene = iota
	SceneOnboarding
	SceneAuthStart
	SceneSignIn
	SceneSignUp
	SceneForgotPassword
	SceneProfileSetup
	SceneChats
	SceneUserProfile
	SceneSettings
)

func (s Scene) String() string {
	switch s {
	case SceneOnboarding:
		return "onboarding"
	case SceneAuthStart:
		return "auth-start"
	case SceneSignIn:
		return "sign-in"
	case SceneSignUp:
		return "sign-up"
	case SceneForgotPassword:
		return "forgot-password"
	case SceneProfileSetup:
		return "profile-setup"
	case SceneChats:
		return "chats"
	case SceneUserProfile:
		return "user-profile"
	case SceneSettings:
		return "settings"
	default:
		return "none"
	}
}

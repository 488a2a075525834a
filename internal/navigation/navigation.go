// Package navigation decides which flow and scene the app shows.
//
// The app runs one flow at a time. Each flow owns a stack of scenes; finishing
// a flow yields the next flow, which starts with a fresh stack.
package navigation

import (
	"go.uber.org/zap"

	"github.com/danhigham/telegrame/internal/domain"
)

// Tabs are the root scenes of the main flow.
var Tabs = []domain.Scene{domain.SceneChats, domain.SceneSettings}

// StartFlow returns the first flow to show.
func StartFlow(passedOnboarding, signedIn bool) domain.Flow {
	switch {
	case !passedOnboarding:
		return domain.FlowOnboarding
	case !signedIn:
		return domain.FlowAuthentication
	default:
		return domain.FlowMain
	}
}

// NextFlow returns the flow that follows a finished one. Finishing the main
// flow means the user signed out or deleted the account.
func NextFlow(f domain.Flow) domain.Flow {
	switch f {
	case domain.FlowOnboarding:
		return domain.FlowAuthentication
	case domain.FlowAuthentication:
		return domain.FlowMain
	case domain.FlowMain:
		return domain.FlowAuthentication
	default:
		return domain.FlowNone
	}
}

// RootScene returns the scene a flow starts on.
func RootScene(f domain.Flow) domain.Scene {
	switch f {
	case domain.FlowOnboarding:
		return domain.SceneOnboarding
	case domain.FlowAuthentication:
		return domain.SceneAuthStart
	case domain.FlowMain:
		return domain.SceneChats
	default:
		return domain.SceneNone
	}
}

// Stack is a scene stack with a fixed root.
type Stack struct {
	scenes []domain.Scene
}

func NewStack(root domain.Scene) Stack {
	return Stack{scenes: []domain.Scene{root}}
}

func (s *Stack) Push(scene domain.Scene) {
	s.scenes = append(s.scenes, scene)
}

// Pop removes the top scene. The root is never popped.
func (s *Stack) Pop() (domain.Scene, bool) {
	if len(s.scenes) <= 1 {
		return domain.SceneNone, false
	}
	top := s.scenes[len(s.scenes)-1]
	s.scenes = s.scenes[:len(s.scenes)-1]
	return top, true
}

// Replace swaps the top scene.
func (s *Stack) Replace(scene domain.Scene) {
	if len(s.scenes) == 0 {
		s.scenes = []domain.Scene{scene}
		return
	}
	s.scenes[len(s.scenes)-1] = scene
}

func (s *Stack) Top() domain.Scene {
	if len(s.scenes) == 0 {
		return domain.SceneNone
	}
	return s.scenes[len(s.scenes)-1]
}

func (s *Stack) Len() int { return len(s.scenes) }

// Coordinator tracks the current flow and its scene stack.
type Coordinator struct {
	flow   domain.Flow
	stack  Stack
	logger *zap.Logger
}

func NewCoordinator(passedOnboarding, signedIn bool, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{logger: logger.Named("nav")}
	c.enter(StartFlow(passedOnboarding, signedIn))
	return c
}

func (c *Coordinator) Flow() domain.Flow   { return c.flow }
func (c *Coordinator) Scene() domain.Scene { return c.stack.Top() }
func (c *Coordinator) Depth() int          { return c.stack.Len() }

func (c *Coordinator) Push(scene domain.Scene) {
	c.stack.Push(scene)
	c.logger.Debug("push", zap.Stringer("scene", scene))
}

// Back pops the current scene, reporting whether there was one to pop.
func (c *Coordinator) Back() bool {
	scene, ok := c.stack.Pop()
	if ok {
		c.logger.Debug("pop", zap.Stringer("scene", scene))
	}
	return ok
}

func (c *Coordinator) Replace(scene domain.Scene) {
	c.stack.Replace(scene)
}

// SelectTab resets the main flow to a tab root. It is a no-op elsewhere.
func (c *Coordinator) SelectTab(tab domain.Scene) bool {
	if c.flow != domain.FlowMain {
		return false
	}
	for _, t := range Tabs {
		if t == tab {
			c.stack = NewStack(tab)
			return true
		}
	}
	return false
}

// Finish ends the current flow and enters the next one.
func (c *Coordinator) Finish() domain.Flow {
	c.enter(NextFlow(c.flow))
	return c.flow
}

func (c *Coordinator) enter(f domain.Flow) {
	c.logger.Info("enter flow", zap.Stringer("from", c.flow), zap.Stringer("to", f))
	c.flow = f
	c.stack = NewStack(RootScene(f))
}

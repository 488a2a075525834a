package navigation_test

import (
	"testing"

	"github.com/danhigham/telegrame/internal/domain"
	"github.com/danhigham/telegrame/internal/navigation"
)

func TestStartFlow(t *testing.T) {
	tests := []struct {
		passed, signedIn bool
		want             domain.Flow
	}{
		{false, false, domain.FlowOnboarding},
		{false, true, domain.FlowOnboarding},
		{true, false, domain.FlowAuthentication},
		{true, true, domain.FlowMain},
	}
	for _, tt := range tests {
		if got := navigation.StartFlow(tt.passed, tt.signedIn); got != tt.want {
			t.Errorf("StartFlow(%v, %v) = %s, want %s", tt.passed, tt.signedIn, got, tt.want)
		}
	}
}

func TestCoordinatorLifecycle(t *testing.T) {
	c := navigation.NewCoordinator(false, false, nil)
	if c.Scene() != domain.SceneOnboarding {
		t.Fatalf("scene = %s, want onboarding", c.Scene())
	}

	if got := c.Finish(); got != domain.FlowAuthentication {
		t.Fatalf("after onboarding = %s", got)
	}
	if c.Scene() != domain.SceneAuthStart {
		t.Fatalf("scene = %s, want auth-start", c.Scene())
	}

	c.Push(domain.SceneSignIn)
	c.Push(domain.SceneForgotPassword)
	if c.Depth() != 3 {
		t.Fatalf("depth = %d, want 3", c.Depth())
	}
	c.Back()
	if c.Scene() != domain.SceneSignIn {
		t.Fatalf("scene = %s, want sign-in", c.Scene())
	}

	if got := c.Finish(); got != domain.FlowMain {
		t.Fatalf("after auth = %s", got)
	}
	if c.Scene() != domain.SceneChats || c.Depth() != 1 {
		t.Fatalf("main should start on a fresh chats stack, got %s depth %d", c.Scene(), c.Depth())
	}

	if !c.SelectTab(domain.SceneSettings) {
		t.Fatal("SelectTab(settings) = false")
	}
	if c.SelectTab(domain.SceneSignIn) {
		t.Error("SelectTab accepted a non-tab scene")
	}

	if got := c.Finish(); got != domain.FlowAuthentication {
		t.Fatalf("after sign-out = %s", got)
	}
}

func TestStackRootIsNeverPopped(t *testing.T) {
	s := navigation.NewStack(domain.SceneChats)
	if _, ok := s.Pop(); ok {
		t.Fatal("popped the root")
	}
	s.Push(domain.SceneUserProfile)
	s.Replace(domain.SceneSettings)
	if s.Top() != domain.SceneSettings {
		t.Errorf("top = %s, want settings", s.Top())
	}
	if scene, ok := s.Pop(); !ok || scene != domain.SceneSettings {
		t.Errorf("Pop() = %s, %v", scene, ok)
	}
	if s.Top() != domain.SceneChats {
		t.Errorf("top = %s, want chats", s.Top())
	}
}

func TestSelectTabOutsideMain(t *testing.T) {
	c := navigation.NewCoordinator(true, false, nil)
	if c.SelectTab(domain.SceneChats) {
		t.Error("SelectTab should only work in the main flow")
	}
}

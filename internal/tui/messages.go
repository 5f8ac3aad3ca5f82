package tui

// Scene represents different screens in the TUI
type Scene int

const (
	SceneHome Scene = iota
	SceneProperties
	SceneParameters
	SceneResults
	SceneSchedule
	SceneHelp
)

// String returns a human-readable name for a scene
func (s Scene) String() string {
	switch s {
	case SceneHome:
		return "Home"
	case SceneProperties:
		return "Properties"
	case SceneParameters:
		return "Parameters"
	case SceneResults:
		return "Results"
	case SceneSchedule:
		return "Schedule"
	case SceneHelp:
		return "Help"
	default:
		return "Unknown"
	}
}

// parent is the scene esc returns to.
func (s Scene) parent() Scene {
	switch s {
	case SceneParameters:
		return SceneProperties
	case SceneResults, SceneSchedule:
		return SceneParameters
	default:
		return SceneHome
	}
}

// NavigateMsg switches to a different scene
type NavigateMsg struct {
	Scene Scene
}

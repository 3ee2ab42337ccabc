package entity

import "strings"

type ActionType string

const (
	ActionClick       ActionType = "click"
	ActionLeftDouble  ActionType = "left_double"
	ActionRightSingle ActionType = "right_single"
	ActionHover       ActionType = "hover"
	ActionDrag        ActionType = "drag"
	ActionHotkey      ActionType = "hotkey"
	ActionPress       ActionType = "press"
	ActionTypeText    ActionType = "type"
	ActionScroll      ActionType = "scroll"
	ActionWait        ActionType = "wait"
	ActionFinished    ActionType = "finished"
	ActionCallUser    ActionType = "call_user"
	ActionLongPress   ActionType = "long_press"
	ActionOpenApp     ActionType = "open_app"
	ActionPressHome   ActionType = "press_home"
	ActionPressBack   ActionType = "press_back"
)

var knownActions = map[string]ActionType{
	"click":        ActionClick,
	"left_single":  ActionClick,
	"left_double":  ActionLeftDouble,
	"double_click": ActionLeftDouble,
	"right_single": ActionRightSingle,
	"right_click":  ActionRightSingle,
	"hover":        ActionHover,
	"drag":         ActionDrag,
	"select":       ActionDrag,
	"swipe":        ActionDrag,
	"hotkey":       ActionHotkey,
	"press":        ActionPress,
	"type":         ActionTypeText,
	"scroll":       ActionScroll,
	"wait":         ActionWait,
	"finished":     ActionFinished,
	"call_user":    ActionCallUser,
	"long_press":   ActionLongPress,
	"open_app":     ActionOpenApp,
	"press_home":   ActionPressHome,
	"press_back":   ActionPressBack,
}

// LookupActionType resolves a call name, including aliases, to a known action type.
func LookupActionType(name string) (ActionType, bool) {
	t, ok := knownActions[strings.ToLower(strings.TrimSpace(name))]
	return t, ok
}

func (t ActionType) String() string {
	return string(t)
}

// Terminal reports whether the loop stops after executing this action.
func (t ActionType) Terminal() bool {
	return t == ActionFinished || t == ActionCallUser
}

// NeedsTarget reports whether the action cannot run without a start coordinate.
func (t ActionType) NeedsTarget() bool {
	switch t {
	case ActionClick, ActionLeftDouble, ActionRightSingle, ActionHover, ActionDrag, ActionLongPress:
		return true
	}
	return false
}

// Action input keys produced by the model.
const (
	InputStartBox   = "start_box"
	InputEndBox     = "end_box"
	InputStartPoint = "start_point"
	InputEndPoint   = "end_point"
	InputPoint      = "point"
	InputContent    = "content"
	InputKey        = "key"
	InputDirection  = "direction"
	InputAppName    = "app_name"
)

// Action is one discrete action extracted from a prediction.
// Inputs hold raw strings; StartCoords and EndCoords are set by coordinate mapping.
type Action struct {
	Type        ActionType
	Inputs      map[string]string
	Thought     string
	Reflection  *string
	StartCoords *Point
	EndCoords   *Point
}

func (a Action) Input(key string) string {
	if a.Inputs == nil {
		return ""
	}
	return a.Inputs[key]
}

// Clone returns a copy that shares no mutable state with a.
func (a Action) Clone() Action {
	out := a
	if a.Inputs != nil {
		out.Inputs = make(map[string]string, len(a.Inputs))
		for k, v := range a.Inputs {
			out.Inputs[k] = v
		}
	}
	if a.Reflection != nil {
		r := *a.Reflection
		out.Reflection = &r
	}
	if a.StartCoords != nil {
		p := *a.StartCoords
		out.StartCoords = &p
	}
	if a.EndCoords != nil {
		p := *a.EndCoords
		out.EndCoords = &p
	}
	return out
}

type ExecutionResult struct {
	Success bool
	Message string
}

func Succeeded() *ExecutionResult {
	return &ExecutionResult{Success: true}
}

func Failed(message string) *ExecutionResult {
	return &ExecutionResult{Success: false, Message: message}
}

package svcbot

import "strings"

// ActionKind identifies what a pressed button asks the bot to do.
type ActionKind int

// Button actions, in routing order
const (
	// ActionManage opens the single-process control panel
	ActionManage ActionKind = iota
	// ActionStart starts one process group
	ActionStart
	// ActionStop stops one process group
	ActionStop
	// ActionStartAll starts every process
	ActionStartAll
	// ActionStopAll stops every process
	ActionStopAll
	// ActionReload reloads the supervisor daemon
	ActionReload
	// ActionBack returns to the summary view
	ActionBack
)

// String returns the action verb used in operator-facing messages.
func (k ActionKind) String() string {
	switch k {
	case ActionManage:
		return "manage"
	case ActionStart:
		return "start"
	case ActionStop:
		return "stop"
	case ActionStartAll:
		return "start all"
	case ActionStopAll:
		return "stop all"
	case ActionReload:
		return "reload"
	case ActionBack:
		return "back"
	default:
		return "unknown"
	}
}

// Action is the decoded form of a button's callback data.
type Action struct {
	// Kind is the requested operation
	Kind ActionKind
	// Group is the target process group, set only for per-process actions
	Group string
}

const (
	callbackPrefix = "supervisor_"
	startSuffix    = "_start"
	stopSuffix     = "_stop"
)

// ParseAction decodes callback data into a tagged Action. The grammar is
//
//	"supervisor_" GROUP ["_start" | "_stop"]
//	"start_supervisors" | "stop_supervisors" | "reload_supervisors" | "back_to_home"
//
// Suffixes are tested longest-first, so a group name must not itself end in
// "_start" or "_stop" or routing is ambiguous. The empty group produced by
// bare "supervisor_" data is rejected. Anything else is unrecognized and
// reported via ok=false.
func ParseAction(data string) (Action, bool) {
	switch data {
	case "start_supervisors":
		return Action{Kind: ActionStartAll}, true
	case "stop_supervisors":
		return Action{Kind: ActionStopAll}, true
	case "reload_supervisors":
		return Action{Kind: ActionReload}, true
	case "back_to_home":
		return Action{Kind: ActionBack}, true
	}

	rest, ok := strings.CutPrefix(data, callbackPrefix)
	if !ok || rest == "" {
		return Action{}, false
	}

	if group, ok := strings.CutSuffix(rest, startSuffix); ok {
		if group == "" {
			return Action{}, false
		}
		return Action{Kind: ActionStart, Group: group}, true
	}
	if group, ok := strings.CutSuffix(rest, stopSuffix); ok {
		if group == "" {
			return Action{}, false
		}
		return Action{Kind: ActionStop, Group: group}, true
	}
	return Action{Kind: ActionManage, Group: rest}, true
}

// ManageData builds the callback data that opens the control panel for a group.
func ManageData(group string) string {
	return callbackPrefix + group
}

// StartData builds the callback data that starts a group.
func StartData(group string) string {
	return callbackPrefix + group + startSuffix
}

// StopData builds the callback data that stops a group.
func StopData(group string) string {
	return callbackPrefix + group + stopSuffix
}

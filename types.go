package apstatus

import (
	"strconv"
)

// ScreenKind identifies which screen is being shown.
type ScreenKind uint8

const (
	ScreenMain ScreenKind = iota
	ScreenInfo
	ScreenSystem
	ScreenVPNList
	// ScreenFinalReboot and ScreenFinalShutdown are terminal: the process exits shortly after entering either.
	ScreenFinalReboot
	ScreenFinalShutdown
)

func (k ScreenKind) String() string {
	switch k {
	case ScreenMain:
		return "main"
	case ScreenInfo:
		return "info"
	case ScreenSystem:
		return "system"
	case ScreenVPNList:
		return "vpn-list"
	case ScreenFinalReboot:
		return "final-reboot"
	case ScreenFinalShutdown:
		return "final-shutdown"
	default:
		return "INVALID"
	}
}

// infoPages is the number of pages on the info screen.
const infoPages = 2

// Screen is the complete state of the active screen. Screens are values; two equal Screens render identically given
// identical facts.
type Screen struct {
	Kind ScreenKind
	// Page is the 1-based info page. Only meaningful for ScreenInfo.
	Page int
	// Scroll is the index of the first VPN shown. Only meaningful for ScreenVPNList.
	Scroll int
	// Selected is the index of the VPN last selected, or -1. Only meaningful for ScreenVPNList.
	Selected int
}

// MainScreen is the initial screen.
func MainScreen() Screen { return Screen{Kind: ScreenMain, Selected: -1} }

// Final reports whether s is one of the terminal screens.
func (s Screen) Final() bool {
	return s.Kind == ScreenFinalReboot || s.Kind == ScreenFinalShutdown
}

func (s Screen) String() string {
	switch s.Kind {
	case ScreenInfo:
		return "info(" + strconv.Itoa(s.Page) + ")"
	case ScreenVPNList:
		return "vpn-list(" + strconv.Itoa(s.Scroll) + "," + strconv.Itoa(s.Selected) + ")"
	default:
		return s.Kind.String()
	}
}

// ActionKind is the kind of a logical user intent.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionToggleHostLink
	ActionGoTo
	ActionPageNext
	ActionPagePrev
	ActionSelectVPN
	ActionDisconnectVPN
	ActionReboot
	ActionShutdown
	ActionBack
)

func (k ActionKind) String() string {
	switch k {
	case ActionNone:
		return "none"
	case ActionToggleHostLink:
		return "toggle-host-link"
	case ActionGoTo:
		return "goto"
	case ActionPageNext:
		return "page-next"
	case ActionPagePrev:
		return "page-prev"
	case ActionSelectVPN:
		return "select-vpn"
	case ActionDisconnectVPN:
		return "disconnect-vpn"
	case ActionReboot:
		return "reboot"
	case ActionShutdown:
		return "shutdown"
	case ActionBack:
		return "back"
	default:
		return "INVALID"
	}
}

// Action is a screen-independent user intent produced by hit-testing a touch.
type Action struct {
	Kind ActionKind
	// Target is the destination of ActionGoTo.
	Target ScreenKind
	// Index is the VPN index of ActionSelectVPN.
	Index int
}

func GoTo(k ScreenKind) Action { return Action{Kind: ActionGoTo, Target: k} }

func SelectVPN(i int) Action { return Action{Kind: ActionSelectVPN, Index: i} }

func (a Action) String() string {
	switch a.Kind {
	case ActionGoTo:
		return "goto(" + a.Target.String() + ")"
	case ActionSelectVPN:
		return "select-vpn(" + strconv.Itoa(a.Index) + ")"
	default:
		return a.Kind.String()
	}
}

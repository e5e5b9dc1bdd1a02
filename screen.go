package apstatus

// transitionEnv is the part of the world the transition table depends on.
type transitionEnv struct {
	// vpnEnabled is false when no VPN collaborator is configured, which makes the VPN list unreachable.
	vpnEnabled bool
	vpnCount   int
	perScreen  int
	// activeVPN is the index of the active VPN profile, or -1.
	activeVPN int
}

// transition returns the screen that results from applying a to s. Any pair not in the transition table leaves the
// screen unchanged; in particular nothing leaves a final screen. Side effects are not performed here.
func transition(s Screen, a Action, env transitionEnv) Screen {
	switch s.Kind {
	case ScreenMain:
		switch a.Kind {
		case ActionGoTo:
			switch a.Target {
			case ScreenInfo:
				return Screen{Kind: ScreenInfo, Page: 1, Selected: -1}
			case ScreenSystem:
				return Screen{Kind: ScreenSystem, Selected: -1}
			case ScreenVPNList:
				if env.vpnEnabled {
					return Screen{Kind: ScreenVPNList, Selected: env.activeVPN}
				}
			}
		}
	case ScreenInfo:
		switch a.Kind {
		case ActionPageNext:
			if s.Page < infoPages {
				s.Page++
			}
			return s
		case ActionPagePrev:
			if s.Page > 1 {
				s.Page--
			}
			return s
		case ActionBack:
			return MainScreen()
		}
	case ScreenSystem:
		switch a.Kind {
		case ActionReboot:
			return Screen{Kind: ScreenFinalReboot, Selected: -1}
		case ActionShutdown:
			return Screen{Kind: ScreenFinalShutdown, Selected: -1}
		case ActionBack:
			return MainScreen()
		}
	case ScreenVPNList:
		switch a.Kind {
		case ActionPageNext:
			s.Scroll = clampScroll(s.Scroll+env.perScreen, env.vpnCount, env.perScreen)
			return s
		case ActionPagePrev:
			s.Scroll = clampScroll(s.Scroll-env.perScreen, env.vpnCount, env.perScreen)
			return s
		case ActionSelectVPN:
			if a.Index >= 0 && a.Index < env.vpnCount {
				s.Selected = a.Index
			}
			return s
		case ActionBack:
			return MainScreen()
		}
	}
	return s
}

func clampScroll(scroll, n, perScreen int) int {
	return max(0, min(scroll, maxScroll(n, perScreen)))
}

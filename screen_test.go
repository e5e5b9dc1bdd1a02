package apstatus

import (
	"testing"
)

func allScreens() []Screen {
	return []Screen{
		MainScreen(),
		{Kind: ScreenInfo, Page: 1, Selected: -1},
		{Kind: ScreenInfo, Page: 2, Selected: -1},
		{Kind: ScreenSystem, Selected: -1},
		{Kind: ScreenVPNList, Selected: -1},
		{Kind: ScreenVPNList, Scroll: 2, Selected: 3},
		{Kind: ScreenFinalReboot, Selected: -1},
		{Kind: ScreenFinalShutdown, Selected: -1},
	}
}

func allActions() []Action {
	out := []Action{
		{Kind: ActionNone},
		{Kind: ActionToggleHostLink},
		{Kind: ActionPageNext},
		{Kind: ActionPagePrev},
		{Kind: ActionDisconnectVPN},
		{Kind: ActionReboot},
		{Kind: ActionShutdown},
		{Kind: ActionBack},
		SelectVPN(-1),
		SelectVPN(0),
		SelectVPN(5),
		SelectVPN(6),
	}
	for k := ScreenMain; k <= ScreenFinalShutdown; k++ {
		out = append(out, GoTo(k))
	}
	return out
}

func TestTransitionIsTotal(t *testing.T) {
	env := transitionEnv{vpnEnabled: true, vpnCount: 6, perScreen: 4, activeVPN: -1}
	for _, s := range allScreens() {
		for _, a := range allActions() {
			got := transition(s, a, env)
			if got.Kind.String() == "INVALID" {
				t.Fatalf("%s + %s: invalid screen %+v", s, a, got)
			}
			if s.Final() && got != s {
				t.Fatalf("%s + %s: left final screen for %s", s, a, got)
			}
			if got.Kind == ScreenInfo && (got.Page < 1 || got.Page > infoPages) {
				t.Fatalf("%s + %s: info page %d out of range", s, a, got.Page)
			}
			if got.Kind == ScreenVPNList && (got.Scroll < 0 || got.Scroll > 2) {
				t.Fatalf("%s + %s: scroll %d out of range", s, a, got.Scroll)
			}
			if got.Kind == ScreenVPNList && (got.Selected < -1 || got.Selected >= env.vpnCount) {
				t.Fatalf("%s + %s: selected %d out of range", s, a, got.Selected)
			}
		}
	}
}

func TestTransitionTable(t *testing.T) {
	env := transitionEnv{vpnEnabled: true, vpnCount: 6, perScreen: 4, activeVPN: 3}
	tests := []struct {
		name string
		from Screen
		act  Action
		want Screen
	}{
		{"main to info", MainScreen(), GoTo(ScreenInfo), Screen{Kind: ScreenInfo, Page: 1, Selected: -1}},
		{"main to system", MainScreen(), GoTo(ScreenSystem), Screen{Kind: ScreenSystem, Selected: -1}},
		{"main to vpn selects active", MainScreen(), GoTo(ScreenVPNList), Screen{Kind: ScreenVPNList, Selected: 3}},
		{"main toggle stays", MainScreen(), Action{Kind: ActionToggleHostLink}, MainScreen()},
		{"info next", Screen{Kind: ScreenInfo, Page: 1}, Action{Kind: ActionPageNext}, Screen{Kind: ScreenInfo, Page: 2}},
		{"info next at end", Screen{Kind: ScreenInfo, Page: 2}, Action{Kind: ActionPageNext}, Screen{Kind: ScreenInfo, Page: 2}},
		{"info prev", Screen{Kind: ScreenInfo, Page: 2}, Action{Kind: ActionPagePrev}, Screen{Kind: ScreenInfo, Page: 1}},
		{"info prev at start", Screen{Kind: ScreenInfo, Page: 1}, Action{Kind: ActionPagePrev}, Screen{Kind: ScreenInfo, Page: 1}},
		{"info back", Screen{Kind: ScreenInfo, Page: 2}, Action{Kind: ActionBack}, MainScreen()},
		{"system reboot", Screen{Kind: ScreenSystem}, Action{Kind: ActionReboot}, Screen{Kind: ScreenFinalReboot, Selected: -1}},
		{"system shutdown", Screen{Kind: ScreenSystem}, Action{Kind: ActionShutdown}, Screen{Kind: ScreenFinalShutdown, Selected: -1}},
		{"system back", Screen{Kind: ScreenSystem}, Action{Kind: ActionBack}, MainScreen()},
		{"vpn down", Screen{Kind: ScreenVPNList, Selected: -1}, Action{Kind: ActionPageNext}, Screen{Kind: ScreenVPNList, Scroll: 2, Selected: -1}},
		{"vpn up clamps", Screen{Kind: ScreenVPNList, Scroll: 2, Selected: -1}, Action{Kind: ActionPagePrev}, Screen{Kind: ScreenVPNList, Selected: -1}},
		{"vpn select", Screen{Kind: ScreenVPNList, Selected: -1}, SelectVPN(4), Screen{Kind: ScreenVPNList, Selected: 4}},
		{"vpn select out of range", Screen{Kind: ScreenVPNList, Selected: -1}, SelectVPN(9), Screen{Kind: ScreenVPNList, Selected: -1}},
		{"vpn disconnect stays", Screen{Kind: ScreenVPNList, Selected: 1}, Action{Kind: ActionDisconnectVPN}, Screen{Kind: ScreenVPNList, Selected: 1}},
		{"vpn back", Screen{Kind: ScreenVPNList, Scroll: 2}, Action{Kind: ActionBack}, MainScreen()},
		{"final ignores back", Screen{Kind: ScreenFinalReboot}, Action{Kind: ActionBack}, Screen{Kind: ScreenFinalReboot}},
		{"system ignores page", Screen{Kind: ScreenSystem}, Action{Kind: ActionPageNext}, Screen{Kind: ScreenSystem}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := transition(tt.from, tt.act, env); got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestVPNListUnreachableWhenDisabled(t *testing.T) {
	env := transitionEnv{perScreen: 4, activeVPN: -1}
	if got := transition(MainScreen(), GoTo(ScreenVPNList), env); got != MainScreen() {
		t.Fatalf("expected main, got %s", got)
	}
}

func TestScrollWithFewerItemsThanPage(t *testing.T) {
	env := transitionEnv{vpnEnabled: true, vpnCount: 3, perScreen: 4, activeVPN: -1}
	s := Screen{Kind: ScreenVPNList, Selected: -1}
	if got := transition(s, Action{Kind: ActionPageNext}, env); got.Scroll != 0 {
		t.Fatalf("expected scroll 0, got %d", got.Scroll)
	}
}

package apstatus

import (
	"context"
	"errors"
	"fmt"
)

// apply performs the side effect of act, if any, and moves to the screen the transition table yields. A failed side
// effect leaves the screen where it was and shows a status message instead.
func (a *App) apply(ctx context.Context, act Action) {
	a.log.Debugf("action %s on %s", act, a.screen)
	next := transition(a.screen, act, a.transitionEnv())

	var err error
	switch {
	case a.screen.Kind == ScreenMain && act.Kind == ActionToggleHostLink:
		err = a.toggleHostLink(ctx)
	case a.screen.Kind == ScreenVPNList && act.Kind == ActionSelectVPN && next.Selected == act.Index:
		err = a.connectVPN(ctx, act.Index)
	case a.screen.Kind == ScreenVPNList && act.Kind == ActionDisconnectVPN:
		err = a.disconnectVPN(ctx)
	case next.Final():
		a.events.ActionApplied(act, a.halt(ctx, next))
		return
	}
	a.events.ActionApplied(act, err)

	if err != nil {
		a.log.Warnf("%s failed: %v", act, err)
		a.setStatus(fmt.Sprintf("%s failed", actionLabel(act)))
		return
	}
	if next != a.screen {
		a.enter(next)
		return
	}
	a.needsRedraw = true
}

func (a *App) toggleHostLink(ctx context.Context) error {
	// read around the cache so the decision is made on the current link state
	a.src.hostLink.Invalidate()
	link := a.src.hostLink.Get(ctx)
	enable := link.Value.State != LinkConnected
	if enable {
		a.message("Connecting " + a.opts.HostInterface)
	} else {
		a.message("Disconnecting " + a.opts.HostInterface)
	}
	err := a.c.Network.SetHostLinkEnabled(ctx, enable)
	a.src.hostLink.Invalidate()
	if err != nil {
		return fmt.Errorf("set %s enabled=%t: %w", a.opts.HostInterface, enable, err)
	}
	return nil
}

func (a *App) connectVPN(ctx context.Context, idx int) error {
	p := a.viewer.profiles[idx]
	a.message("Connecting " + p.Name)
	err := a.c.VPN.Connect(ctx, p.Name)
	a.src.vpn.Invalidate()
	if err != nil {
		return fmt.Errorf("connect VPN %s: %w", p.Name, err)
	}
	return nil
}

func (a *App) disconnectVPN(ctx context.Context) error {
	a.message("Disconnecting VPN")
	err := a.c.VPN.Disconnect(ctx)
	a.src.vpn.Invalidate()
	if err != nil {
		return fmt.Errorf("disconnect VPN: %w", err)
	}
	return nil
}

// halt enters a final screen, draws it, and then issues the matching power call exactly once. After a successful
// call the app accepts no further input. If the call fails the system menu comes back with a status message, and the
// error is returned.
func (a *App) halt(ctx context.Context, final Screen) error {
	prev := a.screen
	a.screen = final
	a.status = ""
	a.draw(a.snapshot)

	var err error
	switch final.Kind {
	case ScreenFinalReboot:
		a.log.Info("rebooting")
		err = a.c.Power.Reboot(ctx)
	case ScreenFinalShutdown:
		a.log.Info("shutting down")
		err = a.c.Power.Shutdown(ctx)
	default:
		err = errors.New("not a final screen")
	}
	if err == nil {
		a.halted = true
		return nil
	}

	a.log.Errorf("%s: %v", final.Kind, err)
	a.enter(prev)
	if final.Kind == ScreenFinalReboot {
		a.setStatus("Reboot failed")
	} else {
		a.setStatus("Shutdown failed")
	}
	return err
}

func actionLabel(act Action) string {
	switch act.Kind {
	case ActionToggleHostLink:
		return "Network toggle"
	case ActionSelectVPN:
		return "VPN connect"
	case ActionDisconnectVPN:
		return "VPN disconnect"
	default:
		return act.Kind.String()
	}
}

// Package vpn controls VPN profiles run as systemd template units: wg-quick@<name> for WireGuard and
// openvpn-client@<name> for OpenVPN.
package vpn

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajanata/apstatus"
	"github.com/ajanata/apstatus/internal/system"
)

// Manager implements the display's VPN collaborator. At most one profile is meant to be up at a time.
type Manager struct {
	run        system.Runner
	log        *zap.Logger
	profiles   []apstatus.VPNProfile
	profileErr error
}

// New returns a manager for profiles. profileErr is what loading the profile list failed with, if it did; it is
// reported by Profiles and disables everything else.
func New(r system.Runner, profiles []apstatus.VPNProfile, profileErr error, log *zap.Logger) *Manager {
	return &Manager{run: r, log: log, profiles: profiles, profileErr: profileErr}
}

func (m *Manager) Profiles() ([]apstatus.VPNProfile, error) {
	return m.profiles, m.profileErr
}

// Unit returns the systemd unit that runs p.
func Unit(p apstatus.VPNProfile) string {
	if p.Protocol == apstatus.ProtocolOpenVPN {
		return "openvpn-client@" + p.Name
	}
	return "wg-quick@" + p.Name
}

// unitState precedence when several units are in different states: a running tunnel wins over one coming up, which
// wins over one going down, which wins over a failed one.
var unitState = map[string]struct {
	state apstatus.VPNState
	rank  int
}{
	"active":       {apstatus.VPNActive, 4},
	"reloading":    {apstatus.VPNActive, 4},
	"activating":   {apstatus.VPNConnecting, 3},
	"deactivating": {apstatus.VPNEnding, 2},
	"failed":       {apstatus.VPNError, 1},
}

// Status reports the state of the highest ranked profile unit, or VPNOff if none is active.
func (m *Manager) Status(ctx context.Context) (apstatus.VPNStatus, error) {
	if len(m.profiles) == 0 {
		return apstatus.VPNStatus{State: apstatus.VPNOff}, nil
	}
	states, err := m.states(ctx)
	if err != nil {
		return apstatus.VPNStatus{}, err
	}

	best, rank := apstatus.VPNStatus{State: apstatus.VPNOff}, 0
	for i, s := range states {
		us, ok := unitState[s]
		if ok && us.rank > rank {
			best, rank = apstatus.VPNStatus{State: us.state, Name: m.profiles[i].Name}, us.rank
		}
	}
	return best, nil
}

// states returns the systemd state of every profile's unit, in profile order.
func (m *Manager) states(ctx context.Context) ([]string, error) {
	args := []string{"is-active"}
	for _, p := range m.profiles {
		args = append(args, Unit(p))
	}
	// is-active exits non-zero unless every unit is active, so only the output is trusted
	out, err := m.run.Run(ctx, "systemctl", args...)
	lines := strings.Split(out, "\n")
	if out == "" || len(lines) != len(m.profiles) {
		if err == nil {
			err = fmt.Errorf("unexpected systemctl output %q", out)
		}
		return nil, err
	}
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return lines, nil
}

// Connect stops whichever profile is up and starts name.
func (m *Manager) Connect(ctx context.Context, name string) error {
	idx := -1
	for i, p := range m.profiles {
		if p.Name == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("unknown VPN profile %q", name)
	}

	if err := m.stopRunning(ctx, name); err != nil {
		return err
	}
	unit := Unit(m.profiles[idx])
	m.log.Info("starting VPN", zap.String("unit", unit))
	// a previous failure would otherwise keep reporting after the new start
	_, _ = m.run.Run(ctx, "systemctl", "reset-failed", unit)
	if _, err := m.run.Run(ctx, "systemctl", "start", unit); err != nil {
		return fmt.Errorf("start %s: %w", unit, err)
	}
	return nil
}

// Disconnect stops every running profile.
func (m *Manager) Disconnect(ctx context.Context) error {
	return m.stopRunning(ctx, "")
}

func (m *Manager) stopRunning(ctx context.Context, except string) error {
	if len(m.profiles) == 0 {
		return nil
	}
	states, err := m.states(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for i, s := range states {
		p := m.profiles[i]
		if p.Name == except {
			continue
		}
		if s == "active" || s == "activating" || s == "reloading" {
			m.log.Info("stopping VPN", zap.String("unit", Unit(p)))
			if _, err := m.run.Run(ctx, "systemctl", "stop", Unit(p)); err != nil {
				errs = append(errs, fmt.Errorf("stop %s: %w", Unit(p), err))
			}
		}
	}
	return errors.Join(errs...)
}

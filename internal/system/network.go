package system

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net/netip"
	"os"
	"regexp"
	"strings"

	psnet "github.com/shirou/gopsutil/v4/net"
	"go.uber.org/zap"

	"github.com/ajanata/apstatus"
)

// DefaultHostapdConfigs are searched in order for the broadcast SSID.
var DefaultHostapdConfigs = []string{"/etc/raspap/hostapd.ini", "/etc/hostapd/hostapd.conf"}

var (
	inetRE    = regexp.MustCompile(`inet\s+([\d.]+)/\d+`)
	stationRE = regexp.MustCompile(`(?m)^Station ([0-9A-Fa-f]{2}[:-]){5}[0-9A-Fa-f]{2}`)
)

// Network reads and controls the host link and access point through local tools.
type Network struct {
	run            Runner
	log            *zap.Logger
	host, ap       string
	hostapdConfigs []string

	// interfaces is swapped out in tests
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
}

func NewNetwork(r Runner, hostIface, apIface string, log *zap.Logger) *Network {
	return &Network{
		run:            r,
		log:            log,
		host:           hostIface,
		ap:             apIface,
		hostapdConfigs: DefaultHostapdConfigs,
		interfaces:     psnet.InterfacesWithContext,
	}
}

// HostLinkStatus reports Connected when the host interface has a usable IPv4 address, NoIP when it is associated
// with a network but has no address, and Disconnected otherwise.
func (n *Network) HostLinkStatus(ctx context.Context) (apstatus.HostLink, error) {
	ip := n.interfaceIP(ctx, n.host)
	ssid, err := n.run.Run(ctx, "iwgetid", "-r", n.host)
	if err != nil {
		// iwgetid exits non-zero when not associated
		ssid = ""
	}

	switch {
	case ip != "":
		return apstatus.HostLink{State: apstatus.LinkConnected, SSID: ssid, IP: ip}, nil
	case ssid != "":
		return apstatus.HostLink{State: apstatus.LinkNoIP, SSID: ssid}, nil
	default:
		return apstatus.HostLink{State: apstatus.LinkDisconnected}, nil
	}
}

// interfaceIP returns the first IPv4 address of iface that is neither loopback nor link-local, or "".
func (n *Network) interfaceIP(ctx context.Context, iface string) string {
	ifs, err := n.interfaces(ctx)
	if err == nil {
		for _, i := range ifs {
			if i.Name != iface {
				continue
			}
			for _, a := range i.Addrs {
				if ip, ok := usableIPv4(a.Addr); ok {
					return ip
				}
			}
			return ""
		}
		return ""
	}

	n.log.Debug("interface listing failed, falling back to ip", zap.String("iface", iface), zap.Error(err))
	out, err := n.run.Run(ctx, "ip", "-4", "addr", "show", iface)
	if err != nil {
		return ""
	}
	for _, m := range inetRE.FindAllStringSubmatch(out, -1) {
		if ip, ok := usableIPv4(m[1]); ok {
			return ip
		}
	}
	return ""
}

func usableIPv4(s string) (string, bool) {
	if p, err := netip.ParsePrefix(s); err == nil {
		s = p.Addr().String()
	}
	a, err := netip.ParseAddr(s)
	if err != nil || !a.Is4() || a.IsLoopback() || a.IsLinkLocalUnicast() {
		return "", false
	}
	return a.String(), true
}

// SetHostLinkEnabled takes the host interface down, or brings it up and restarts wpa_supplicant so it reassociates.
func (n *Network) SetHostLinkEnabled(ctx context.Context, enabled bool) error {
	if !enabled {
		n.log.Info("bringing host link down", zap.String("iface", n.host))
		if _, err := n.run.Run(ctx, "ip", "link", "set", n.host, "down"); err != nil {
			return err
		}
		return nil
	}

	n.log.Info("bringing host link up", zap.String("iface", n.host))
	if _, err := n.run.Run(ctx, "ip", "link", "set", n.host, "up"); err != nil {
		return err
	}
	if _, err := n.run.Run(ctx, "systemctl", "try-restart", "wpa_supplicant@"+n.host+".service"); err != nil {
		n.log.Debug("per-interface wpa_supplicant restart failed", zap.Error(err))
		if _, err := n.run.Run(ctx, "systemctl", "try-restart", "wpa_supplicant.service"); err != nil {
			return err
		}
	}
	return nil
}

// APActive reports whether hostapd is running.
func (n *Network) APActive(ctx context.Context) (bool, error) {
	out, err := n.run.Run(ctx, "systemctl", "is-active", "hostapd")
	switch out {
	case "active":
		return true, nil
	case "inactive", "failed", "activating", "deactivating":
		return false, nil
	}
	if err == nil {
		err = fmt.Errorf("unexpected hostapd state %q", out)
	}
	return false, err
}

// APSSID reads the broadcast SSID from the first hostapd configuration file that exists.
func (n *Network) APSSID(context.Context) (string, error) {
	for _, path := range n.hostapdConfigs {
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return "", err
		}
		ssid, err := scanSSID(f)
		_ = f.Close()
		if err != nil {
			return "", fmt.Errorf("%s: %w", path, err)
		}
		return ssid, nil
	}
	return "", fmt.Errorf("no hostapd config found in %s", strings.Join(n.hostapdConfigs, ", "))
}

func scanSSID(f *os.File) (string, error) {
	s := bufio.NewScanner(f)
	for s.Scan() {
		if v, ok := strings.CutPrefix(strings.TrimSpace(s.Text()), "ssid="); ok && v != "" {
			return v, nil
		}
	}
	if err := s.Err(); err != nil {
		return "", err
	}
	return "", errors.New("no ssid line")
}

// APClientCount counts the stations associated with the AP interface. A down interface has no clients.
func (n *Network) APClientCount(ctx context.Context) (int, error) {
	up, err := n.run.Run(ctx, "ip", "link", "show", n.ap, "up")
	if err != nil {
		return 0, err
	}
	if up == "" {
		return 0, nil
	}
	out, err := n.run.Run(ctx, "iw", "dev", n.ap, "station", "dump")
	if err != nil {
		return 0, err
	}
	return len(stationRE.FindAllString(out, -1)), nil
}

package vpn

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/ajanata/apstatus"
)

var _ apstatus.VPN = (*Manager)(nil)

type fakeRunner struct {
	isActive string
	failOn   string
	calls    []string
}

func (r *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	r.calls = append(r.calls, line)
	if r.failOn != "" && strings.HasPrefix(line, r.failOn) {
		return "", errors.New("exit status 1")
	}
	if len(args) > 0 && args[0] == "is-active" {
		var err error
		if strings.Contains(r.isActive, "inactive") || strings.Contains(r.isActive, "failed") {
			err = errors.New("exit status 3")
		}
		return r.isActive, err
	}
	return "", nil
}

var testProfiles = []apstatus.VPNProfile{
	{Name: "home", Protocol: apstatus.ProtocolWireGuard},
	{Name: "office", Protocol: apstatus.ProtocolOpenVPN},
	{Name: "nl-ams"},
}

func TestUnit(t *testing.T) {
	if got := Unit(testProfiles[0]); got != "wg-quick@home" {
		t.Fatalf("expected wg-quick@home, got %s", got)
	}
	if got := Unit(testProfiles[1]); got != "openvpn-client@office" {
		t.Fatalf("expected openvpn-client@office, got %s", got)
	}
	if got := Unit(testProfiles[2]); got != "wg-quick@nl-ams" {
		t.Fatalf("expected wg-quick@nl-ams, got %s", got)
	}
}

func TestStatus(t *testing.T) {
	tests := []struct {
		out  string
		want apstatus.VPNStatus
	}{
		{"inactive\ninactive\ninactive", apstatus.VPNStatus{State: apstatus.VPNOff}},
		{"inactive\nactive\ninactive", apstatus.VPNStatus{State: apstatus.VPNActive, Name: "office"}},
		{"activating\ninactive\ninactive", apstatus.VPNStatus{State: apstatus.VPNConnecting, Name: "home"}},
		{"deactivating\ninactive\ninactive", apstatus.VPNStatus{State: apstatus.VPNEnding, Name: "home"}},
		{"failed\ninactive\ninactive", apstatus.VPNStatus{State: apstatus.VPNError, Name: "home"}},
		{"failed\ndeactivating\nactive", apstatus.VPNStatus{State: apstatus.VPNActive, Name: "nl-ams"}},
	}
	for _, tt := range tests {
		m := New(&fakeRunner{isActive: tt.out}, testProfiles, nil, zap.NewNop())
		got, err := m.Status(context.Background())
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", tt.out, err)
		}
		if got != tt.want {
			t.Fatalf("%q: expected %+v, got %+v", tt.out, tt.want, got)
		}
	}
}

func TestStatusUnexpectedOutput(t *testing.T) {
	m := New(&fakeRunner{isActive: "active"}, testProfiles, nil, zap.NewNop())
	if _, err := m.Status(context.Background()); err == nil {
		t.Fatal("expected error for short output")
	}
}

func TestStatusWithoutProfiles(t *testing.T) {
	r := &fakeRunner{}
	got, err := New(r, nil, nil, zap.NewNop()).Status(context.Background())
	if err != nil || got.State != apstatus.VPNOff {
		t.Fatalf("expected off, got %+v/%v", got, err)
	}
	if len(r.calls) != 0 {
		t.Fatalf("expected no commands, got %q", r.calls)
	}
}

func TestConnectStopsRunningProfile(t *testing.T) {
	r := &fakeRunner{isActive: "active\ninactive\ninactive"}
	m := New(r, testProfiles, nil, zap.NewNop())
	if err := m.Connect(context.Background(), "office"); err != nil {
		t.Fatalf("connect: %v", err)
	}
	want := []string{
		"systemctl is-active wg-quick@home openvpn-client@office wg-quick@nl-ams",
		"systemctl stop wg-quick@home",
		"systemctl reset-failed openvpn-client@office",
		"systemctl start openvpn-client@office",
	}
	if !slices.Equal(r.calls, want) {
		t.Fatalf("expected %q, got %q", want, r.calls)
	}
}

func TestConnectFailures(t *testing.T) {
	m := New(&fakeRunner{isActive: "inactive\ninactive\ninactive"}, testProfiles, nil, zap.NewNop())
	if err := m.Connect(context.Background(), "nowhere"); err == nil {
		t.Fatal("expected error for unknown profile")
	}

	r := &fakeRunner{isActive: "inactive\ninactive\ninactive", failOn: "systemctl start"}
	m = New(r, testProfiles, nil, zap.NewNop())
	if err := m.Connect(context.Background(), "home"); err == nil {
		t.Fatal("expected error when start fails")
	}
}

func TestDisconnect(t *testing.T) {
	r := &fakeRunner{isActive: "inactive\nactivating\nactive"}
	m := New(r, testProfiles, nil, zap.NewNop())
	if err := m.Disconnect(context.Background()); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	want := []string{
		"systemctl is-active wg-quick@home openvpn-client@office wg-quick@nl-ams",
		"systemctl stop openvpn-client@office",
		"systemctl stop wg-quick@nl-ams",
	}
	if !slices.Equal(r.calls, want) {
		t.Fatalf("expected %q, got %q", want, r.calls)
	}
}

func TestProfilesError(t *testing.T) {
	m := New(&fakeRunner{}, nil, errors.New("bad yaml"), zap.NewNop())
	if _, err := m.Profiles(); err == nil {
		t.Fatal("expected profile error")
	}
}

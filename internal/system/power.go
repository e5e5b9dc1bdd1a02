package system

import (
	"context"

	"go.uber.org/zap"
)

// Power reboots or powers off the host. Both calls return as soon as the command has been issued.
type Power struct {
	run Runner
	log *zap.Logger
}

func NewPower(r Runner, log *zap.Logger) *Power {
	return &Power{run: r, log: log}
}

func (p *Power) Reboot(ctx context.Context) error {
	p.log.Warn("rebooting host")
	_, err := p.run.Run(ctx, "reboot")
	return err
}

func (p *Power) Shutdown(ctx context.Context) error {
	p.log.Warn("shutting down host")
	_, err := p.run.Run(ctx, "shutdown", "now")
	return err
}

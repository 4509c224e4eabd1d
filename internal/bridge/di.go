package bridge

import (
	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/internal/repository"
	"github.com/foxseedlab/meetingbridge/internal/transport"
	"github.com/foxseedlab/meetingbridge/pkg/logger"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Bridge, error) {
		cfg := do.MustInvoke[*config.Config](i)
		sender := do.MustInvoke[transport.Sender](i)
		journal := do.MustInvoke[repository.Journal](i)
		log := do.MustInvoke[*logger.Logger](i)
		return New(sender, journal, log, Options{SendTimeout: cfg.SendTimeout}), nil
	})
}

package transport

import (
	"github.com/foxseedlab/meetingbridge/internal/config"
	"github.com/foxseedlab/meetingbridge/internal/transport"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (transport.Sender, error) {
		c := do.MustInvoke[*config.Config](i)
		return NewSchemeRouter(NewWebSocketSender(c.DialTimeout), NewHTTPSender(nil)), nil
	})
}

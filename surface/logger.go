package surface

import "go.uber.org/zap"

// log is the package-wide structured logger, used only for
// client-bug warnings (e.g. a buffer size not divisible by scale) and
// provider upload failures — conditions the protocol tolerates but a
// compositor operator wants visibility into. SetLogger lets the host
// application route these into its own zap pipeline; the default
// discards everything.
var log = zap.NewNop().Sugar()

// SetLogger installs l as the destination for client-bug and
// provider-failure warnings. Passing nil restores the no-op logger.
func SetLogger(l *zap.SugaredLogger) {
	if l == nil {
		l = zap.NewNop().Sugar()
	}
	log = l
}

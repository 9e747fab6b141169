package checkout

import (
	"github.com/rs/zerolog/log"

	"github.com/hxuan190/nft-checkout/internal/domain"
)

// LogReporter writes stage transitions to the process log. Used where no
// interactive surface exists, e.g. the HTTP API.
type LogReporter struct {
	Mint string
}

func (r LogReporter) StageChanged(stage domain.Stage, detail string) {
	log.Info().
		Str("mint", r.Mint).
		Str("stage", string(stage)).
		Str("detail", detail).
		Msg("[checkoutOrchestrator] stage changed")
}

package hanime

import (
	"hsource/lib/restyutil"

	"go.opentelemetry.io/otel"
)

var tracer = otel.Tracer("hsource.lib.scrapers.hanime")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}

package report

// Exported for testing.
var (
	CalcColumnWidths = calcColumnWidths
	PadToWidth       = padToWidth
)

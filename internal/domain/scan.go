package domain

// Phase is the scan session's current state. Transitions are owned by the
// session controller; Closed from any phase returns to Idle with teardown.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseScanning   Phase = "scanning"
	PhaseDetected   Phase = "detected"
	PhaseResolving  Phase = "resolving"
	PhaseReviewing  Phase = "reviewing"
	PhaseCommitting Phase = "committing"
)

// Active reports whether a dialog is open for this phase.
func (p Phase) Active() bool {
	return p != PhaseIdle
}

// Detection is a normalized barcode detection event from either strategy.
type Detection struct {
	RawValue string `json:"raw_value"`
	Format   string `json:"format"`
}

// CameraDevice describes an enumerable video input device.
type CameraDevice struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// BarcodeFormats lists the formats the detection contract covers: retail EAN
// and UPC codes plus the alphanumeric logistics codes.
var BarcodeFormats = []string{
	"ean_13",
	"ean_8",
	"upc_a",
	"upc_e",
	"code_128",
	"code_39",
}

// Banner is a dismissible user-facing message surfaced by the session
// controller. Key is a translation key; Vars feed interpolation.
type Banner struct {
	Level string            `json:"level"`
	Key   string            `json:"key"`
	Vars  map[string]string `json:"vars,omitempty"`
}

// ErrorBanner builds an error-level banner.
func ErrorBanner(key string, vars map[string]string) *Banner {
	return &Banner{Level: "error", Key: key, Vars: vars}
}

// SuccessBanner builds a success-level banner.
func SuccessBanner(key string, vars map[string]string) *Banner {
	return &Banner{Level: "success", Key: key, Vars: vars}
}

package viewport

// Kind classifies a diagnostic event.
type Kind string

const (
	// KindCoordinateTrace is the per-field debug trace {input, parsed, valid}.
	KindCoordinateTrace     Kind = "coordinate_trace"
	KindNullCoordinate      Kind = "null_coordinate"
	KindParseFallback       Kind = "parse_fallback"
	KindPointExcluded       Kind = "point_excluded"
	KindSelectionUnresolved Kind = "selection_unresolved"
)

// Diagnostic is a structured, non-fatal event emitted while resolving a
// viewport. Field is "latitude" or "longitude" when the event concerns one
// coordinate.
type Diagnostic struct {
	Kind    Kind
	PointID string
	Field   string
	Input   string
	Parsed  float64
	Valid   bool
	Reason  string
}

// Reporter receives diagnostics. Implementations must not block or panic;
// resolution carries on regardless of what they do.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(d Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Reporter = ReporterFunc(func(Diagnostic) {})

// Recorder keeps diagnostics in memory. Not safe for concurrent use.
type Recorder struct {
	Events []Diagnostic
}

func (r *Recorder) Report(d Diagnostic) { r.Events = append(r.Events, d) }

// OfKind returns the recorded events of kind k.
func (r *Recorder) OfKind(k Kind) []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Events {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/couchcryptid/delivery-point-map/internal/domain"
	"github.com/couchcryptid/delivery-point-map/internal/viewport"
	"github.com/spf13/cobra"
)

// errInvalidPoints makes the command exit non-zero after the report is printed.
var errInvalidPoints = errors.New("point file has records that cannot be drawn")

// phase tracks pass/fail for a validation phase. Warning phases are reported
// but never fail the run.
type phase struct {
	name    string
	warning bool
	errors  []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func runValidate(cmd *cobra.Command, _ []string) error {
	pts, err := loadPoints(pointsFile)
	if err != nil {
		return err
	}
	if !report(cmd.OutOrStdout(), pts) {
		return errInvalidPoints
	}
	return nil
}

// report prints a per-phase summary followed by every problem found, and
// returns whether all failing phases passed.
func report(w io.Writer, pts []domain.DeliveryPoint) bool {
	rec := &viewport.Recorder{}
	renderable, _ := viewport.Classify(pts, rec)

	phases := []*phase{
		checkUniqueIDs(pts),
		checkRenderable(rec),
		checkCleanInput(rec),
	}

	fmt.Fprintln(w, "=== Delivery Point Validation ===")
	fmt.Fprintln(w)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		switch {
		case p.passed():
		case p.warning:
			status = fmt.Sprintf("\033[33mWARN (%d)\033[0m", len(p.errors))
		default:
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Records: %d total, %d renderable\n", len(pts), len(renderable))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return true
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return false
}

func checkUniqueIDs(pts []domain.DeliveryPoint) *phase {
	p := &phase{name: "Unique point ids"}
	seen := make(map[string]int, len(pts))
	for i := range pts {
		id := pts[i].ID
		if id == "" {
			p.errorf("record %d: empty id", i)
			continue
		}
		if first, ok := seen[id]; ok {
			p.errorf("record %d: id %q already used by record %d", i, id, first)
			continue
		}
		seen[id] = i
	}
	return p
}

func checkRenderable(rec *viewport.Recorder) *phase {
	p := &phase{name: "Renderable coordinates"}
	for _, d := range rec.OfKind(viewport.KindPointExcluded) {
		p.errorf("%s: %s %s (input %s)", d.PointID, d.Field, d.Reason, d.Input)
	}
	return p
}

// checkCleanInput flags values that only render because unparsable input fell
// back to 0.
func checkCleanInput(rec *viewport.Recorder) *phase {
	p := &phase{name: "Coordinate input parses cleanly", warning: true}
	for _, d := range rec.OfKind(viewport.KindParseFallback) {
		p.errorf("%s: %s %s fell back to 0 (%s)", d.PointID, d.Field, d.Input, d.Reason)
	}
	return p
}

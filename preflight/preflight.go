// Package preflight checks the external collaborators the suite
// depends on before any scenario runs.
package preflight

import (
	"fmt"
	"os"
	"os/exec"

	"codeberg.org/hfmrz/blurbench/imagegen"
	"codeberg.org/hfmrz/blurbench/inspect"
	"codeberg.org/hfmrz/blurbench/memquery"
)

type Status int

const (
	// Ready means every collaborator answered.
	Ready Status = iota
	// Skip means a required collaborator is unavailable; the suite
	// should exit 77, not fail.
	Skip
	// Fatal means the target binary itself is missing, which is
	// unrecoverable.
	Fatal
)

type Check struct {
	Name   string
	OK     bool
	Detail string
}

// Run probes the target binary, the memory backend, the image
// generator and the UI automation collaborator. ui may be nil; UI
// checks are optional and never gate the suite. Checks are returned
// in a fixed order for reporting.
func Run(app string, ui inspect.Tree) ([]Check, Status) {
	status := Ready
	var checks []Check

	if info, err := os.Stat(app); err != nil {
		checks = append(checks, Check{Name: "target binary", Detail: err.Error()})
		status = Fatal
	} else if info.Mode()&0o111 == 0 {
		checks = append(checks, Check{Name: "target binary", Detail: fmt.Sprintf("%s is not executable", app)})
		status = Fatal
	} else {
		checks = append(checks, Check{Name: "target binary", OK: true, Detail: app})
	}

	if backend, err := memquery.Detect(); err != nil {
		checks = append(checks, Check{Name: "memory backend", Detail: err.Error()})
		if status == Ready {
			status = Skip
		}
	} else {
		checks = append(checks, Check{Name: "memory backend", OK: true, Detail: backend.Name()})
	}

	gen := imagegen.Detect()
	detail := gen.Name()
	if _, err := exec.LookPath("convert"); err != nil {
		detail += " (ImageMagick not found, using built-in writer)"
	}
	checks = append(checks, Check{Name: "image generator", OK: true, Detail: detail})

	if ui != nil {
		checks = append(checks, Check{Name: "ui automation", OK: true, Detail: "accessibility tree available"})
	} else {
		checks = append(checks, Check{Name: "ui automation", Detail: "not configured; UI checks skipped"})
	}

	return checks, status
}

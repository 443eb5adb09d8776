// Package deps reports availability of the external binaries the conversion
// pipeline relies on.
package deps

import (
	"strings"

	"dwfx2pdf/internal/convert"
)

// Requirement defines an external dependency dwfx2pdf relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Path        string
	Detail      string
}

// ConverterRequirements returns the binaries needed for conversion, using the
// configured converter command.
func ConverterRequirements(binary string) []Requirement {
	return []Requirement{
		{
			Name:        "xpstopdf",
			Command:     binary,
			Description: "XPS/DWFX to PDF converter from libgxps",
		},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Resolution follows the converter's own lookup: PATH first, then the
// Homebrew keg-only locations.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		path, err := convert.LookupConverter(cmd)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Available = true
		status.Path = path
		results = append(results, status)
	}
	return results
}

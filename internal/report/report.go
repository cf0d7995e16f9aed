// Package report renders the final human-readable summary of a pipeline run.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/groundworkhq/provision/internal/secrets"
)

var (
	green = color.New(color.FgGreen)
	red   = color.New(color.FgRed)
	gray  = color.New(color.FgHiBlack)
	bold  = color.New(color.Bold)
)

// Write prints the per-step outcomes, the generated credentials and the
// access URL. Credentials that came from fixed defaults are flagged so the
// operator rotates them immediately.
func Write(w io.Writer, run *pipeline.Run, creds []secrets.Credential, accessURL string) {
	bold.Fprintf(w, "\nProvisioning summary (run %s)\n\n", run.ID)

	for _, result := range run.Results {
		switch result.Outcome {
		case pipeline.OutcomeSkipped:
			gray.Fprintf(w, "  - %-28s already satisfied\n", result.Name)
		case pipeline.OutcomeSucceeded:
			green.Fprintf(w, "  ✔ %-28s done (%s)\n", result.Name, result.Duration.Round(10*time.Millisecond))
		case pipeline.OutcomeFailed:
			if result.Optional {
				red.Fprintf(w, "  ✘ %-28s failed (optional): %v\n", result.Name, result.Err)
			} else {
				red.Fprintf(w, "  ✘ %-28s failed: %v\n", result.Name, result.Err)
			}
		}
	}

	if failed := run.Failed(); failed != nil {
		red.Fprintf(w, "\nProvisioning aborted at step %q.\n", failed.Name)
		fmt.Fprintln(w, "Fix the cause and re-run: completed steps will be skipped.")
		return
	}

	if len(creds) > 0 {
		bold.Fprintf(w, "\nCredentials (store these securely, they are not persisted):\n")
		for _, cred := range creds {
			switch {
			case cred.Insecure:
				red.Fprintf(w, "  %-18s %s  (INSECURE DEFAULT, rotate immediately)\n", cred.Name+":", cred.Value)
			case cred.Generated:
				fmt.Fprintf(w, "  %-18s %s  (generated)\n", cred.Name+":", cred.Value)
			default:
				fmt.Fprintf(w, "  %-18s %s\n", cred.Name+":", cred.Value)
			}
		}
	}

	bold.Fprintf(w, "\nAccess URL: %s\n", accessURL)
	fmt.Fprintln(w, "Log in with the admin credentials above and rotate the initial administrator password.")
}

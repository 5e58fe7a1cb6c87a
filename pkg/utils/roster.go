package utils

import (
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
)

// RosterEntry is one tank of a headless battle
type RosterEntry struct {
	Name     string `survey:"name"`
	Strategy string `survey:"strategy"`
}

// ParseRoster parses "name=strategy" specs. A bare "strategy" leaves the
// name for the arena to pick.
func ParseRoster(specs []string) ([]RosterEntry, error) {
	entries := make([]RosterEntry, 0, len(specs))
	for _, spec := range specs {
		spec = strings.TrimSpace(spec)
		if spec == "" {
			continue
		}

		name, strategy, found := strings.Cut(spec, "=")
		if !found {
			name, strategy = "", spec
		}
		name = strings.TrimSpace(name)
		strategy = strings.TrimSpace(strategy)
		if strategy == "" {
			return nil, fmt.Errorf("tank %q has no strategy", spec)
		}
		entries = append(entries, RosterEntry{Name: name, Strategy: strategy})
	}
	return entries, nil
}

// PromptForRoster asks for tanks until the user stops adding them. At least
// minTanks are required.
func PromptForRoster(strategies []string, minTanks int) ([]RosterEntry, error) {
	if len(strategies) == 0 {
		return nil, fmt.Errorf("no strategies available")
	}

	var entries []RosterEntry
	for {
		var entry RosterEntry
		questions := []*survey.Question{
			{
				Name:   "name",
				Prompt: &survey.Input{Message: fmt.Sprintf("Tank %d name (blank for automatic)", len(entries)+1)},
			},
			{
				Name: "strategy",
				Prompt: &survey.Select{
					Message: "Strategy",
					Options: strategies,
					Default: strategies[len(entries)%len(strategies)],
				},
			},
		}
		if err := survey.Ask(questions, &entry); err != nil {
			return nil, err
		}
		entry.Name = strings.TrimSpace(entry.Name)
		entries = append(entries, entry)

		if len(entries) < minTanks {
			continue
		}
		more := false
		if err := survey.AskOne(&survey.Confirm{Message: "Add another tank?", Default: false}, &more); err != nil {
			return nil, err
		}
		if !more {
			return entries, nil
		}
	}
}

package arena

import (
	"fmt"
	"strings"
)

var phonetic = []string{
	"Alpha", "Bravo", "Charlie", "Delta", "Echo", "Foxtrot", "Golf", "Hotel",
	"India", "Juliet", "Kilo", "Lima", "Mike", "November", "Oscar", "Papa",
	"Quebec", "Romeo", "Sierra", "Tango", "Uniform", "Victor", "Whiskey",
	"Xray", "Yankee", "Zulu",
}

// uniqueName resolves the display name for a new tank. An empty request
// takes the first unused phonetic name, then walks the alphabet again with
// _2, _3 and so on. A requested name that is taken gets the smallest free
// suffix.
func (m *Match) uniqueName(requested string) string {
	requested = strings.TrimSpace(requested)
	if requested != "" {
		return m.suffixed(requested)
	}

	for _, name := range phonetic {
		if _, taken := m.byName[name]; !taken {
			return name
		}
	}
	for n := 2; ; n++ {
		for _, base := range phonetic {
			candidate := fmt.Sprintf("%s_%d", base, n)
			if _, taken := m.byName[candidate]; !taken {
				return candidate
			}
		}
	}
}

func (m *Match) suffixed(base string) string {
	if _, taken := m.byName[base]; !taken {
		return base
	}
	for n := 2; ; n++ {
		candidate := fmt.Sprintf("%s_%d", base, n)
		if _, taken := m.byName[candidate]; !taken {
			return candidate
		}
	}
}

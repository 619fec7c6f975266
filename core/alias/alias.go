// Package alias implements name-to-text command aliases with positional
// parameter interpolation and optional file persistence.
package alias

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/afero"
)

// maxDepth bounds re-expansion so mutually referencing aliases terminate.
const maxDepth = 10

// Manager holds the alias table. The zero value is not usable; create
// managers with NewManager or NewPersistentManager.
type Manager struct {
	mu      sync.RWMutex
	aliases map[string]string
	order   []string

	fs   afero.Fs
	path string
}

// NewManager returns an in-memory manager with no persistence.
func NewManager() *Manager {
	return &Manager{aliases: make(map[string]string)}
}

// NewPersistentManager returns a manager that loads from and saves to a flat
// name=expansion file on the given filesystem. The file is not read until
// Load is called.
func NewPersistentManager(fs afero.Fs, path string) *Manager {
	m := NewManager()
	m.fs = fs
	m.path = path
	return m
}

// SetAlias defines or replaces an alias.
func (m *Manager) SetAlias(name, expansion string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.aliases[name]; !ok {
		m.order = append(m.order, name)
	}
	m.aliases[name] = expansion
}

// RemoveAlias deletes an alias, reporting whether it existed.
func (m *Manager) RemoveAlias(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.aliases[name]; !ok {
		return false
	}
	delete(m.aliases, name)
	for i, n := range m.order {
		if n == name {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return true
}

// Alias returns the expansion text for name, if defined.
func (m *Manager) Alias(name string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	expansion, ok := m.aliases[name]
	return expansion, ok
}

// Aliases returns all defined aliases in definition order.
func (m *Manager) Aliases() []Entry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.order))
	for _, name := range m.order {
		out = append(out, Entry{Name: name, Expansion: m.aliases[name]})
	}
	return out
}

// Entry is one alias definition.
type Entry struct {
	Name      string
	Expansion string
}

// Expand substitutes the first word of line if it names an alias. Within
// the expansion text, $1..$9 interpolate the trailing words positionally
// ($N past the last word becomes empty) and $@ interpolates all trailing
// words joined by single spaces. The substituted first word is re-checked
// for further aliases up to a fixed depth; at the bound the last computed
// expansion is returned as-is.
func (m *Manager) Expand(line string) string {
	if strings.TrimSpace(line) == "" {
		return line
	}
	return m.expand(line, make(map[string]bool), 0)
}

func (m *Manager) expand(line string, visited map[string]bool, depth int) string {
	if depth >= maxDepth {
		return line
	}

	trimmed := strings.TrimSpace(line)
	first := trimmed
	rest := ""
	if idx := strings.IndexFunc(trimmed, isSpace); idx >= 0 {
		first = trimmed[:idx]
		rest = strings.TrimSpace(trimmed[idx+1:])
	}

	expansion, ok := m.Alias(first)
	if !ok || visited[first] {
		return line
	}
	visited[first] = true

	var expanded string
	if strings.ContainsRune(expansion, '$') {
		expanded = interpolate(expansion, strings.Fields(rest))
	} else if rest == "" {
		expanded = expansion
	} else {
		expanded = expansion + " " + rest
	}

	return m.expand(expanded, visited, depth+1)
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}

// interpolate replaces $1..$9 and $@ markers with the alias arguments.
func interpolate(expansion string, args []string) string {
	var out strings.Builder
	for i := 0; i < len(expansion); i++ {
		c := expansion[i]
		if c != '$' || i+1 >= len(expansion) {
			out.WriteByte(c)
			continue
		}
		next := expansion[i+1]
		switch {
		case next == '@':
			out.WriteString(strings.Join(args, " "))
			i++
		case next >= '1' && next <= '9':
			if idx := int(next - '1'); idx < len(args) {
				out.WriteString(args[idx])
			}
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// Load reads the persistence file. A missing file leaves the table empty
// and is not an error. Blank lines and lines starting with # are skipped.
func (m *Manager) Load() error {
	if m.fs == nil {
		return nil
	}
	fd, err := m.fs.Open(m.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}
	defer fd.Close()

	scanner := bufio.NewScanner(fd)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		eq := strings.Index(line, "=")
		if eq <= 0 {
			continue
		}
		name := strings.TrimSpace(line[:eq])
		expansion := strings.TrimSpace(line[eq+1:])
		m.SetAlias(name, expansion)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("loading aliases: %w", err)
	}
	return nil
}

// Save writes the alias table to the persistence file in definition order.
func (m *Manager) Save() error {
	if m.fs == nil {
		return nil
	}
	var buf strings.Builder
	for _, entry := range m.Aliases() {
		buf.WriteString(entry.Name + "=" + entry.Expansion + "\n")
	}
	if err := afero.WriteFile(m.fs, m.path, []byte(buf.String()), 0644); err != nil {
		return fmt.Errorf("saving aliases: %w", err)
	}
	return nil
}

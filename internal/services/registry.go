package services

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/logger"
	"luckydraw/internal/models"
)

// DefaultDelimiter separates the code from the name in a roster line.
const DefaultDelimiter = ","

// ParseRoster parses raw roster text, one "code<delimiter>name" record per line.
// Everything after the first delimiter is the name, so names may contain the
// delimiter. Empty lines are skipped silently. Lines without a delimiter or
// with a blank code are skipped and reported as ErrMalformedRecord; the
// returned roster is still usable.
func ParseRoster(name string, r io.Reader, delimiter string) (*models.Roster, []error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	roster := &models.Roster{Name: name, Participants: make([]models.Participant, 0)}
	var skipped []error

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		code, rest, found := strings.Cut(line, delimiter)
		code = strings.TrimSpace(code)
		if !found || code == "" {
			skipped = append(skipped, fmt.Errorf("%w: roster %s line %d: %q", models.ErrMalformedRecord, name, lineNo, line))
			continue
		}

		roster.Participants = append(roster.Participants, models.Participant{
			Code: code,
			Name: strings.TrimSpace(rest),
		})
	}
	if err := scanner.Err(); err != nil {
		skipped = append(skipped, fmt.Errorf("read roster %s: %w", name, err))
	}

	return roster, skipped
}

// Registry holds the immutable universe of loaded rosters.
type Registry struct {
	delimiter string
	order     []string
	rosters   map[string]*models.Roster
}

// NewRegistry creates an empty registry that splits records on delimiter.
func NewRegistry(delimiter string) *Registry {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return &Registry{
		delimiter: delimiter,
		rosters:   make(map[string]*models.Roster),
	}
}

// Load parses raw roster text and registers it under name. Malformed lines
// are logged and skipped. Loading the same name twice replaces the earlier
// roster without touching the slice previously handed out.
func (r *Registry) Load(name string, raw io.Reader) *models.Roster {
	roster, skipped := ParseRoster(name, raw, r.delimiter)
	for _, err := range skipped {
		logger.Warningf("Skipping roster line: %v", err)
	}

	if _, exists := r.rosters[name]; !exists {
		r.order = append(r.order, name)
	}
	r.rosters[name] = roster
	logger.Infof("Loaded roster %s with %d participants", name, roster.Size())
	return roster
}

// LoadString is a convenience wrapper around Load for in-memory roster text.
func (r *Registry) LoadString(name, raw string) *models.Roster {
	return r.Load(name, strings.NewReader(raw))
}

// LoadFile loads a roster from a text file on disk.
func (r *Registry) LoadFile(name, path string) (*models.Roster, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open roster %s: %w", name, err)
	}
	defer f.Close()

	return r.Load(name, f), nil
}

// Roster returns the named roster.
func (r *Registry) Roster(name string) (*models.Roster, bool) {
	roster, ok := r.rosters[name]
	return roster, ok
}

// Names returns roster names in load order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Rosters returns all rosters in load order.
func (r *Registry) Rosters() []*models.Roster {
	rosters := make([]*models.Roster, 0, len(r.order))
	for _, name := range r.order {
		rosters = append(rosters, r.rosters[name])
	}
	return rosters
}

// Size returns the total number of records across all rosters.
func (r *Registry) Size() int {
	total := 0
	for _, roster := range r.rosters {
		total += roster.Size()
	}
	return total
}

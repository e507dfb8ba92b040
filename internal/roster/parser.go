package roster

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	enc "github.com/MrJamesThe3rd/pairup/internal/encoding"
)

var ErrNoHeader = errors.New("no roster header found")

// Load opens and parses the roster at path.
func Load(path string) ([]Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening roster: %w", err)
	}
	defer f.Close()

	recipients, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return recipients, nil
}

// Parse reads a roster CSV in any supported charset. The delimiter (';' or
// ',') is taken from the first line that contains one, and the header row is
// found by matching its column names against the known profiles, so leading
// title lines are skipped. Rows without a community are ignored.
func Parse(r io.Reader) ([]Recipient, error) {
	utf8r, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	data, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = detectDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, fmt.Errorf("%w: expected a community column", ErrNoHeader)
	}

	return parseRows(profile, cols, rows[headerIdx+1:]), nil
}

// detectDelimiter picks ';' when the first delimited line has more
// semicolons than commas.
func detectDelimiter(data []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(data))

	for sc.Scan() {
		line := sc.Text()

		semi, comma := strings.Count(line, ";"), strings.Count(line, ",")
		if semi == 0 && comma == 0 {
			continue
		}

		if semi > comma {
			return ';'
		}

		return ','
	}

	return ','
}

// colIndex maps normalized column names to their index in the row.
type colIndex map[string]int

func detectProfile(rows [][]string) (*Profile, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			name := normalizeHeader(cell)
			if _, seen := cols[name]; name != "" && !seen {
				cols[name] = i
			}
		}

		for i := range profiles {
			if matchesProfile(&profiles[i], cols) {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

func matchesProfile(p *Profile, cols colIndex) bool {
	for _, name := range p.requiredCols() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

func parseRows(p *Profile, cols colIndex, rows [][]string) []Recipient {
	var recipients []Recipient

	for _, row := range rows {
		r := Recipient{
			ID:        cellValue(row, lookup(cols, p.IDCol)),
			Community: cellValue(row, lookup(cols, p.CommunityCol)),
			Group:     cellValue(row, lookup(cols, p.GroupCol)),
			Agent:     cellValue(row, lookup(cols, p.AgentCol)),
		}

		if r.Community == "" {
			continue
		}

		recipients = append(recipients, r)
	}

	return recipients
}

func lookup(cols colIndex, name string) int {
	if name == "" {
		return -1
	}

	idx, ok := cols[name]
	if !ok {
		return -1
	}

	return idx
}

// normalizeHeader lowercases a header cell and drops spaces and underscores,
// so "Community Name" and "community_name" both read as "communityname".
func normalizeHeader(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))

	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

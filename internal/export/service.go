package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/pairup/internal/association"
	"github.com/MrJamesThe3rd/pairup/internal/matcher"
)

// Item represents a single exported association with its local file path.
type Item struct {
	Association *association.Association
	FilePath    string
}

// Service writes committed associations out as a report, optionally copying
// each matched recording next to it.
type Service struct {
	associations   *association.Service
	copyRecordings bool
}

// NewService creates a new export Service.
func NewService(assocService *association.Service, copyRecordings bool) *Service {
	return &Service{
		associations:   assocService,
		copyRecordings: copyRecordings,
	}
}

// ReportName is the file Export writes the report to inside its output directory.
func ReportName(sessionID uuid.UUID) string {
	return "associations-" + sessionID.String() + ".csv"
}

// Export lists the associations committed for sessionID and writes them to
// outputDir. When recordings are copied, each one is named after its
// recipient and Item.FilePath points at the copy.
func (s *Service) Export(ctx context.Context, sessionID uuid.UUID, outputDir string) ([]Item, error) {
	associations, err := s.associations.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("listing associations: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	items := make([]Item, 0, len(associations))

	for _, a := range associations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := Item{Association: a}

		if s.copyRecordings && a.RightPath != "" {
			path, err := copyRecording(a, outputDir)
			if err != nil {
				return nil, fmt.Errorf("copying recording for %q: %w", a.LeftKey, err)
			}

			item.FilePath = path
		}

		items = append(items, item)
	}

	if err := writeReport(filepath.Join(outputDir, ReportName(sessionID)), items); err != nil {
		return nil, err
	}

	return items, nil
}

func writeReport(path string, items []Item) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write([]string{"recipient", "recording", "path", "kind", "score", "file"}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	for _, item := range items {
		a := item.Association
		record := []string{a.LeftKey, a.RightKey, a.RightPath, a.Kind.String(), strconv.Itoa(a.Score), item.FilePath}

		if err := w.Write(record); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	return nil
}

func copyRecording(a *association.Association, dir string) (string, error) {
	src, err := os.Open(a.RightPath)
	if err != nil {
		return "", fmt.Errorf("opening recording: %w", err)
	}
	defer src.Close()

	path := filepath.Join(dir, determineFilename(a))

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("writing file: %w", err)
	}

	return path, nil
}

// determineFilename names the copy after the recipient, keeping the
// recording's extension.
func determineFilename(a *association.Association) string {
	safe := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			return r
		}

		return '_'
	}, a.LeftKey)

	return safe + strings.ToLower(filepath.Ext(a.RightPath))
}

// GenerateSummary creates a plain text summary of the exported items: one
// line per association, then a count per match kind.
func (s *Service) GenerateSummary(items []Item) string {
	var sb strings.Builder

	counts := make(map[matcher.Kind]int)

	for _, item := range items {
		a := item.Association
		counts[a.Kind]++

		score := "-"
		if a.Kind == matcher.KindToken || a.Kind == matcher.KindFuzzy {
			score = strconv.Itoa(a.Score)
		}

		fileStatus := "not copied"
		if item.FilePath != "" {
			fileStatus = filepath.Base(item.FilePath)
		}

		sb.WriteString(fmt.Sprintf("* %s | %s | %s %s | %s\n", a.LeftKey, a.RightKey, a.Kind, score, fileStatus))
	}

	sb.WriteString(fmt.Sprintf("\n%s associations", humanize.Comma(int64(len(items)))))

	for _, k := range []matcher.Kind{matcher.KindExact, matcher.KindToken, matcher.KindFuzzy, matcher.KindManual} {
		if counts[k] > 0 {
			sb.WriteString(fmt.Sprintf(", %s %s", humanize.Comma(int64(counts[k])), k))
		}
	}

	sb.WriteString("\n")

	return sb.String()
}

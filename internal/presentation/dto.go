package presentation

import (
	"slices"

	"github.com/zjrosen/caseview/internal/evidence"
	"github.com/zjrosen/caseview/internal/infrastructure/sqlite"
)

// ViewerDTO describes one viewer for listing.
type ViewerDTO struct {
	Name     string `json:"name"`
	Position int    `json:"position"` // 1-based tab position, 0 when not configured
	Enabled  bool   `json:"enabled"`
}

// ImportDTO summarizes an import for presentation
type ImportDTO struct {
	DataSource string `json:"data_source"`
	GUID       string `json:"guid"`
	Case       string `json:"case"`
	Dirs       int    `json:"dirs"`
	Files      int    `json:"files"`
	Bytes      int64  `json:"bytes"`
	Truncated  int    `json:"truncated"`
	Skipped    int    `json:"skipped"`
}

// FromViewers lists every available viewer. Configured viewers come first in
// tab order, the rest follow alphabetically.
func FromViewers(available, configured []string) []ViewerDTO {
	out := make([]ViewerDTO, 0, len(available))
	for i, name := range configured {
		if slices.Contains(available, name) {
			out = append(out, ViewerDTO{Name: name, Position: i + 1, Enabled: true})
		}
	}
	for _, name := range available {
		if !slices.Contains(configured, name) {
			out = append(out, ViewerDTO{Name: name})
		}
	}
	return out
}

// FromImport converts an import result to a DTO.
func FromImport(ds *evidence.DataSource, stats sqlite.ImportStats, c evidence.Case) ImportDTO {
	dto := ImportDTO{
		Case:      c.Name,
		Dirs:      stats.Dirs,
		Files:     stats.Files,
		Bytes:     stats.Bytes,
		Truncated: stats.Truncated,
		Skipped:   stats.Skipped,
	}
	if ds != nil {
		dto.DataSource = ds.Name()
		dto.GUID = ds.GUID()
	}
	return dto
}

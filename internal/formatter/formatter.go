// package formatter provides functions to export playlist data to various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/spotlist/internal/models"
	"github.com/desertthunder/spotlist/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON     Format = "json"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
)

// Formats lists the accepted export formats.
var Formats = []Format{FormatText, FormatJSON, FormatCSV, FormatMarkdown}

// ParseFormat resolves a format name, accepting the md and txt shorthands.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, name)
	}
}

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatCSV:
		return "csv"
	case FormatMarkdown:
		return "md"
	default:
		return "txt"
	}
}

// Count renders an optional count, or [models.Unknown] when absent.
func Count(n *int) string {
	if n == nil {
		return models.Unknown
	}
	return strconv.Itoa(*n)
}

// Export encodes the playlist in the given format.
func Export(export *models.PlaylistExport, format Format, pretty bool) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ExportToJSON(export, pretty)
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}

// ExportToJSON encodes the playlist metadata and tracks as a single JSON document
func ExportToJSON(export *models.PlaylistExport, pretty bool) ([]byte, error) {
	data, err := shared.MarshalJSON(export, pretty)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export: %w", err)
	}
	return append(data, '\n'), nil
}

// ExportToCSV converts tracks to CSV format with columns: Name, Artists, Album, Release Date, Popularity
func ExportToCSV(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Name", "Artists", "Album", "Release Date", "Popularity"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			track.Name,
			track.Artists,
			track.Album,
			track.ReleaseDate,
			track.Popularity.String(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts the playlist to a Markdown document with a numbered track list
func ExportToMarkdown(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	info := export.Info

	buf.WriteString(fmt.Sprintf("# %s\n\n", info.Name))

	if info.Description != "" {
		buf.WriteString(fmt.Sprintf("**Description**: %s\n\n", info.Description))
	}

	buf.WriteString(fmt.Sprintf("**Owner**: %s\n", info.Owner))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(export.Tracks)))
	buf.WriteString(fmt.Sprintf("**Followers**: %s\n\n", Count(info.Followers)))

	buf.WriteString("## Tracks\n\n")
	for i, track := range export.Tracks {
		albumPart := ""
		if track.Album != "" && track.Album != models.Unknown {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artists, track.Name, albumPart, track.ReleaseDate))
	}

	return buf.Bytes(), nil
}

// ExportToText converts the playlist to plain text format
func ExportToText(export *models.PlaylistExport) ([]byte, error) {
	var buf bytes.Buffer
	info := export.Info

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", info.Name))
	if info.Description != "" {
		buf.WriteString(fmt.Sprintf("Description: %s\n", info.Description))
	}
	buf.WriteString(fmt.Sprintf("Owner: %s\n", info.Owner))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (popularity: %s)\n", i+1, track.Artists, track.Name, track.Popularity))
	}

	return buf.Bytes(), nil
}

// WriteExport encodes the playlist and writes it to filepath.
//
// Defaults to {playlistID}_tracks.{ext} as the filename.
func WriteExport(export *models.PlaylistExport, format Format, pretty bool, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.%s", export.PlaylistID, format.Extension())
	}

	data, err := Export(export, format, pretty)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return filepath, nil
}

// package formatter provides functions to export chart data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/mstride/chartx/internal/models"
	"github.com/mstride/chartx/internal/shared"
)

// ExportToCSV converts a chart week to CSV format with columns:
// Position, Movement, Peak, WeeksOn, Title, Artist, Album, Genre, Duration.
//
// The songs map carries enrichment metadata keyed by chart position; a nil
// map leaves the enrichment columns blank.
func ExportToCSV(chart *models.Chart, songs map[int]models.SongInfo) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Position", "Movement", "Peak", "WeeksOn", "Title", "Artist", "Album", "Genre", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, entry := range chart.Entries {
		album, genre, duration := "", "", ""
		if info, ok := songs[entry.Position]; ok {
			album = info.Album
			genre = info.Genre
			duration = shared.FormatDuration(info.DurationMS / 1000)
		}

		record := []string{
			strconv.Itoa(entry.Position),
			shared.FormatMovement(entry.Position, entry.LastWeek),
			strconv.Itoa(entry.Peak),
			strconv.Itoa(entry.WeeksOn),
			entry.Title,
			entry.Artist,
			album,
			genre,
			duration,
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

// ExportToMarkdown converts a chart week to Markdown format with optional cover image
func ExportToMarkdown(chart *models.Chart, songs map[int]models.SongInfo, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", chart.Name))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	buf.WriteString(fmt.Sprintf("**Week**: %s\n", chart.Week))
	buf.WriteString(fmt.Sprintf("**Entries**: %d\n\n", len(chart.Entries)))

	buf.WriteString("## Entries\n\n")
	for _, entry := range chart.Entries {
		movement := shared.FormatMovement(entry.Position, entry.LastWeek)

		albumPart := ""
		if info, ok := songs[entry.Position]; ok && info.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", info.Album)
		}

		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", entry.Position, entry.Artist, entry.Title, albumPart, movement))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a chart week to plain text format
func ExportToText(chart *models.Chart) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Chart: %s\n", chart.Name))
	buf.WriteString(fmt.Sprintf("Week: %s\n", chart.Week))
	buf.WriteString(fmt.Sprintf("Entries: %d\n\n", len(chart.Entries)))

	for _, entry := range chart.Entries {
		buf.WriteString(fmt.Sprintf("%d. %s - %s (%s)\n", entry.Position, entry.Artist, entry.Title,
			shared.FormatMovement(entry.Position, entry.LastWeek)))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// chartMetadata is the summary written alongside CSV exports.
type chartMetadata struct {
	Name    string `json:"name"`
	Week    string `json:"week"`
	Entries int    `json:"entries"`
}

// ToMetadataJSON generates a JSON representation of chart metadata (without entries)
func ToMetadataJSON(chart *models.Chart) ([]byte, error) {
	return shared.MarshalJSON(chartMetadata{
		Name:    chart.Name,
		Week:    chart.Week,
		Entries: len(chart.Entries),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	EntriesFile  string
	MetadataFile string
}

// WriteCSVExport exports a chart week to CSV format with accompanying metadata JSON file.
//
// Defaults to {chart}_{week} as the base filename & creates {base}_entries.csv and {base}_metadata.json
func WriteCSVExport(chart *models.Chart, songs map[int]models.SongInfo, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = fmt.Sprintf("%s_%s", chart.Name, chart.Week)
	}

	csvData, err := ExportToCSV(chart, songs)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	entriesFile := baseFilepath + "_entries.csv"
	if err := os.WriteFile(entriesFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(chart)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		EntriesFile:  entriesFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a chart week to Markdown format in a dedicated directory.
//
// Directory name defaults to {chart}_{week}.
// The imageURL parameter is optional - if provided, attempts to download the cover image.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(chart *models.Chart, songs map[int]models.SongInfo, outputDir string, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = fmt.Sprintf("%s_%s", chart.Name, chart.Week)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(chart, songs, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a chart week to plain text format.
//
// Defaults to {chart}_{week}.txt as the filename.
func WriteTextExport(chart *models.Chart, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_%s.txt", chart.Name, chart.Week)
	}

	textData, err := ExportToText(chart)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

package gtfsfeed

import (
	"archive/zip"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/gocarina/gocsv"
	"github.com/rs/zerolog/log"
)

// ParseZip reads a GTFS static zip archive into a Feed, tolerating rows
// with a ragged column count (gtfs.go's FieldsPerRecord = -1 trick).
func ParseZip(path string) (*Feed, error) {
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		r := csv.NewReader(in)
		r.FieldsPerRecord = -1
		return r
	})

	feed := &Feed{}
	fileMap := map[string]interface{}{
		"agency.txt":         &feed.Agencies,
		"stops.txt":          &feed.Stops,
		"routes.txt":         &feed.Routes,
		"trips.txt":          &feed.Trips,
		"stop_times.txt":     &feed.StopTimes,
		"calendar.txt":       &feed.Calendars,
		"calendar_dates.txt": &feed.CalendarDates,
	}

	archive, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("opening gtfs archive: %w", err)
	}
	defer archive.Close()

	for _, zipFile := range archive.File {
		destination, ok := fileMap[zipFile.Name]
		if !ok {
			continue
		}

		log.Debug().Str("file", zipFile.Name).Msg("loading gtfs file")

		file, err := zipFile.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", zipFile.Name, err)
		}
		err = gocsv.Unmarshal(file, destination)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", zipFile.Name, err)
		}
	}

	return feed, nil
}

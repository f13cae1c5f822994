package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"bustiming/internal/domain"
	"bustiming/internal/domain/models"
	"bustiming/internal/repositories"
	"bustiming/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// TimetableService renders the printable timetable handed out at the stand.
type TimetableService struct {
	Repo     repositories.ScheduleRepository
	Location *time.Location
	Now      func() time.Time
}

// Render returns the PDF bytes and a download filename. An empty route
// renders every active entry.
func (s TimetableService) Render(ctx context.Context, route string) ([]byte, string, error) {
	route = strings.TrimSpace(route)
	entries, err := s.Repo.ListActive(ctx, route)
	if err != nil {
		return nil, "", domain.UpstreamError{Op: "list timetable", Err: err}
	}
	if route != "" && len(entries) == 0 {
		return nil, "", domain.NotFoundError{Resource: "route"}
	}
	return buildTimetablePDF(entries, route, s.now())
}

func (s TimetableService) now() time.Time {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	if s.Location != nil {
		now = now.In(s.Location)
	}
	return now
}

var timetableColumns = []struct {
	title string
	width float64
}{
	{"Bus", 48},
	{"Number", 28},
	{"Departs", 22},
	{"Arrives", 22},
	{"Every", 18},
	{"Days", 32},
	{"Fare", 20},
}

func buildTimetablePDF(entries []models.ScheduleEntry, route string, now time.Time) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Perdoor Bus Timetable", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PERDOOR BUS TIMETABLE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 6, "Route     : "+utils.FirstNonEmpty(route, "All routes"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Generated : "+now.Format("2006-01-02 15:04"))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range timetableColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	lastRoute := ""
	for _, e := range entries {
		if route == "" && e.Route != lastRoute {
			pdf.SetFont("Helvetica", "B", 10)
			pdf.CellFormat(190, 7, e.Route, "1", 1, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			lastRoute = e.Route
		}
		for i, v := range timetableRow(e) {
			pdf.CellFormat(timetableColumns[i].width, 6, v, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(entries) == 0 {
		pdf.CellFormat(190, 7, "No active buses.", "1", 1, "C", false, 0, "")
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Times are local. Repeating services run at the listed interval from the first departure until midnight.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("TIMETABLE_%s_%s.pdf", utils.SafeFilenamePart(route), now.Format("20060102"))
	return buf.Bytes(), filename, nil
}

func timetableRow(e models.ScheduleEntry) []string {
	every := "-"
	if e.FrequencyMinutes != nil {
		every = strconv.Itoa(*e.FrequencyMinutes) + "m"
	}
	arrives := e.ArrivalTime
	if e.ArrivesNextDay() {
		arrives += " +1"
	}
	return []string{
		e.BusName,
		e.BusNumber,
		e.DepartureTime,
		arrives,
		every,
		strings.Join(e.OperatingDays, ","),
		utils.FormatFare(e.Fare),
	}
}

package services

import "bustiming/internal/domain/models"

type sampleBus struct {
	name, number, route, dep, arr string
}

var sampleBuses = []sampleBus{
	{"KG Road Express", "KA-20-1001", "KG Road", "06:00", "06:45"},
	{"KG Road Fast", "KA-20-1002", "KG Road", "08:30", "09:15"},
	{"KG Road Service", "KA-20-1003", "KG Road", "16:00", "16:45"},
	{"Bramavara Express", "KA-20-2001", "Bramavara", "07:00", "08:00"},
	{"Bramavara Local", "KA-20-2002", "Bramavara", "14:30", "15:30"},
	{"Bramavara Evening", "KA-20-2003", "Bramavara", "18:00", "19:00"},
	{"Hebri Express", "KA-20-3001", "Hebri", "06:30", "07:45"},
	{"Hebri Fast", "KA-20-3002", "Hebri", "12:00", "13:15"},
	{"Hebri Night", "KA-20-3003", "Hebri", "20:30", "21:45"},
	{"Manipal Express", "KA-20-4001", "Manipal", "05:45", "07:30"},
	{"Manipal Student Special", "KA-20-4002", "Manipal", "08:00", "09:45"},
	{"Manipal Evening", "KA-20-4003", "Manipal", "15:30", "17:15"},
	{"Manipal Late Night", "KA-20-4004", "Manipal", "22:00", "23:45"},
	{"Ajekar Express", "KA-20-5001", "Ajekar", "07:15", "08:30"},
	{"Ajekar Local", "KA-20-5002", "Ajekar", "13:45", "15:00"},
	{"Ajekar Evening", "KA-20-5003", "Ajekar", "17:30", "18:45"},
}

// SampleSchedules returns a fresh copy of the bundled Perdoor timetable.
func SampleSchedules() []models.ScheduleEntry {
	out := make([]models.ScheduleEntry, 0, len(sampleBuses))
	for _, b := range sampleBuses {
		out = append(out, models.ScheduleEntry{
			BusName:       b.name,
			BusNumber:     b.number,
			Route:         b.route,
			DepartureTime: b.dep,
			ArrivalTime:   b.arr,
			OperatingDays: []string{models.Daily},
			IsActive:      true,
			BusType:       "Ordinary",
		})
	}
	return out
}

package aircraft

import (
	"context"
	"time"
)

// SeedRecords são os registros de demonstração que a API serve sem ETL.
func SeedRecords() []Record {
	return []Record{
		{
			Aircraft:      Aircraft{Tail: "N123AB", Make: "Cessna", Model: "172S Skyhawk", Year: 2004, Serial: "172S9621", Category: "Airplane"},
			RegStatus:     "Valid",
			Airworthiness: "Standard / Normal",
			History: History{
				Owners: []Owner{
					{Name: "Blue Sky Flight School LLC", State: "CA", From: "2004-06-12", To: "2015-03-01"},
					{Name: "John A. Smith", State: "AZ", From: "2015-03-01"},
				},
				Accidents: []Accident{
					{ID: "WPR16LA042", Date: "2016-01-09", Location: "Phoenix, AZ", Severity: "Minor", Summary: "Hard landing, nose gear damage"},
				},
				ADDirectives: []ADDirective{
					{Number: "2011-10-09", Subject: "Seat rails", Effective: "2011-06-13", Status: ADComplied},
					{Number: "2020-03-16", Subject: "Wing spar carry-through inspection", Effective: "2020-03-09", Status: ADOpen},
				},
			},
		},
		{
			Aircraft:      Aircraft{Tail: "N456CD", Make: "Piper", Model: "PA-28-181 Archer", Year: 1998, Serial: "2843184", Category: "Airplane"},
			RegStatus:     "Valid",
			Airworthiness: "Standard / Normal",
			History: History{
				Owners: []Owner{
					{Name: "Coastal Aviation Inc", State: "FL", From: "1998-09-30"},
				},
				Accidents: []Accident{},
				ADDirectives: []ADDirective{
					{Number: "2018-04-13", Subject: "Wing lower spar cap inspection", Effective: "2018-05-16", Status: ADOpen},
					{Number: "2015-26-03", Subject: "Fuel selector valve", Effective: "2016-02-01", Status: ADOpen},
				},
			},
		},
		{
			Aircraft:      Aircraft{Tail: "N789EF", Make: "Beechcraft", Model: "A36 Bonanza", Year: 2010, Serial: "E-3912", Category: "Airplane"},
			RegStatus:     "Valid",
			Airworthiness: "Standard / Utility",
			History: History{
				Owners: []Owner{
					{Name: "Mesa Holdings LLC", State: "TX", From: "2010-02-18", To: "2019-11-04"},
					{Name: "Laura M. Chen", State: "TX", From: "2019-11-04"},
				},
				Accidents:    []Accident{},
				ADDirectives: []ADDirective{},
			},
		},
		{
			Aircraft:      Aircraft{Tail: "N321GH", Make: "Cessna", Model: "182T Skylane", Year: 2008, Serial: "18282011", Category: "Airplane"},
			RegStatus:     "Expired",
			Airworthiness: "Standard / Normal",
			History: History{
				Owners: []Owner{
					{Name: "High Desert Aero Club", State: "NV", From: "2008-04-22"},
				},
				Accidents: []Accident{
					{ID: "WPR12FA101", Date: "2012-02-27", Location: "Reno, NV", Severity: "Substantial", Summary: "Loss of engine power on climb-out"},
					{ID: "WPR19LA210", Date: "2019-07-15", Location: "Elko, NV", Severity: "Minor", Summary: "Runway excursion on landing"},
				},
				ADDirectives: []ADDirective{
					{Number: "2011-10-09", Subject: "Seat rails", Effective: "2011-06-13", Status: ADOpen},
				},
			},
		},
	}
}

// SeedPositions são posições ADS-B de demonstração com carimbo em now.
func SeedPositions(now time.Time) []LivePosition {
	ts := now.UnixMilli()
	return []LivePosition{
		{Tail: "N123AB", Lat: 33.4342, Lon: -112.0116, Alt: 4500, Speed: 112, Heading: 270, TS: ts, Src: "adsb"},
		{Tail: "N456CD", Lat: 27.9755, Lon: -82.5332, Alt: 3000, Speed: 118, Heading: 45, TS: ts, Src: "adsb"},
		{Tail: "N789EF", Lat: 32.8471, Lon: -96.8518, Alt: 8500, Speed: 165, Heading: 180, TS: ts, Src: "mlat"},
	}
}

// Seed grava os registros e posições de demonstração em sink.
func Seed(ctx context.Context, sink Sink, now time.Time) error {
	for _, rec := range SeedRecords() {
		if err := sink.Upsert(ctx, rec); err != nil {
			return err
		}
	}
	for _, pos := range SeedPositions(now) {
		if err := sink.UpdatePosition(ctx, pos); err != nil {
			return err
		}
	}
	return nil
}

package telemetry

import (
	"errors"
	"testing"
)

func TestDecode_full_message(t *testing.T) {
	rec, err := Decode("LAT:19.4326,LON:-99.1332,ALT:1200m,SAT:7,FECHA:2026-03-14,HORA:12:30:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Latitude != 19.4326 {
		t.Errorf("latitude = %v, want 19.4326", rec.Latitude)
	}
	if rec.Longitude != -99.1332 {
		t.Errorf("longitude = %v, want -99.1332", rec.Longitude)
	}
	if rec.Altitude == nil || *rec.Altitude != 1200 {
		t.Errorf("altitude = %v, want 1200", rec.Altitude)
	}
	if rec.Satellites == nil || *rec.Satellites != 7 {
		t.Errorf("satellites = %v, want 7", rec.Satellites)
	}
	if rec.Date != "2026-03-14" {
		t.Errorf("date = %q, want 2026-03-14", rec.Date)
	}
	if rec.Time != "12:30:00" {
		t.Errorf("time = %q, want 12:30:00 (colons preserved)", rec.Time)
	}
}

func TestDecode_minimal_message(t *testing.T) {
	rec, err := Decode("LAT:1.5,LON:2.5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Latitude != 1.5 || rec.Longitude != 2.5 {
		t.Errorf("got (%v, %v), want (1.5, 2.5)", rec.Latitude, rec.Longitude)
	}
	if rec.Altitude != nil || rec.Satellites != nil {
		t.Errorf("optional fields should be absent, got alt=%v sat=%v", rec.Altitude, rec.Satellites)
	}
}

func TestDecode_zero_coordinates_are_valid(t *testing.T) {
	rec, err := Decode("LAT:0,LON:0")
	if err != nil {
		t.Fatalf("zero coordinates must decode, got error: %v", err)
	}
	if rec.Latitude != 0 || rec.Longitude != 0 {
		t.Errorf("got (%v, %v), want (0, 0)", rec.Latitude, rec.Longitude)
	}
}

func TestDecode_missing_required_field(t *testing.T) {
	for _, msg := range []string{
		"LAT:19.4",
		"LON:-99.1",
		"ALT:1200,SAT:7",
		"LAT:abc,LON:-99.1",
		"",
	} {
		if _, err := Decode(msg); !errors.Is(err, ErrIncompleteFix) {
			t.Errorf("Decode(%q) error = %v, want ErrIncompleteFix", msg, err)
		}
	}
}

func TestDecode_bad_optional_fields_are_dropped(t *testing.T) {
	rec, err := Decode("LAT:1,LON:2,ALT:n/a,SAT:many")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Altitude != nil {
		t.Errorf("altitude = %v, want absent", rec.Altitude)
	}
	if rec.Satellites != nil {
		t.Errorf("satellites = %v, want absent", rec.Satellites)
	}
}

func TestDecode_unknown_keys_ignored(t *testing.T) {
	rec, err := Decode("LAT:1,LON:2,BATT:88,MODE:auto")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Latitude != 1 || rec.Longitude != 2 {
		t.Errorf("got (%v, %v), want (1, 2)", rec.Latitude, rec.Longitude)
	}
}

func TestDecode_time_keeps_everything_after_first_colon(t *testing.T) {
	rec, err := Decode("LAT:1,LON:2,HORA:23:59:59")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Time != "23:59:59" {
		t.Errorf("time = %q, want 23:59:59", rec.Time)
	}
}

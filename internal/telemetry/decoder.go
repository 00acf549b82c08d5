package telemetry

import (
	"errors"
	"strconv"
	"strings"
	"unicode"
)

// ErrIncompleteFix is returned by Decode when a message lacks a parseable
// latitude or longitude. The caller must not modify any device slot.
var ErrIncompleteFix = errors.New("telemetry: message missing latitude or longitude")

// Decode parses a raw transmitter message into a PositionRecord.
//
// A message is a comma-separated list of KEY:VALUE fields, e.g.
//
//	LAT:19.4326,LON:-99.1332,ALT:1200m,SAT:7,FECHA:2026-03-14,HORA:12:30:00
//
// The value of HORA may itself contain colons; only the first colon in a
// field separates key from value. LAT and LON are required; a coordinate of
// exactly zero is valid. ALT tolerates a trailing unit suffix and, like SAT,
// is simply absent when unparseable. Unrecognized keys are ignored.
func Decode(msg string) (*PositionRecord, error) {
	rec := &PositionRecord{}
	var haveLat, haveLon bool

	for _, field := range strings.Split(msg, ",") {
		key, value, ok := strings.Cut(field, ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "LAT":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				rec.Latitude = f
				haveLat = true
			}
		case "LON":
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				rec.Longitude = f
				haveLon = true
			}
		case "ALT":
			if f, err := strconv.ParseFloat(stripUnitSuffix(value), 64); err == nil {
				rec.Altitude = &f
			}
		case "SAT":
			if n, err := strconv.Atoi(value); err == nil {
				rec.Satellites = &n
			}
		case "FECHA":
			rec.Date = value
		case "HORA":
			rec.Time = value
		}
	}

	if !haveLat || !haveLon {
		return nil, ErrIncompleteFix
	}
	return rec, nil
}

// stripUnitSuffix drops a trailing alphabetic unit from a numeric value,
// e.g. "1200m" -> "1200", "350ft" -> "350".
func stripUnitSuffix(s string) string {
	return strings.TrimRightFunc(s, unicode.IsLetter)
}

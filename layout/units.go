package layout

import (
	"strconv"
	"strings"
)

// This file defines unit-safe types and helpers for lengths. The layout
// engine itself works in device pixels at 96dpi; conversions to mm/pt happen
// only at the renderer boundary.

// Unit represents the original unit of a length value as written in config.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers
	UnitPX               // device pixels (96dpi)
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
)

// Conversion constants between px, pt and mm at 96dpi.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
	PxToMm = 25.4 / 96.0
	MmToPx = 96.0 / 25.4
	PxToPt = 72.0 / 96.0
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitPX:
		return "px"
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// mm converts the length to millimeters, the common intermediate.
func (l Length) mm() float64 {
	switch l.Unit {
	case UnitMM:
		return l.Value
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	case UnitPX:
		return l.Value * PxToMm
	default:
		// Unit-less values are taken as px, the engine's native unit.
		return l.Value * PxToMm
	}
}

// To converts this length to the target unit. Supported targets: px, mm, pt.
func (l Length) To(target Unit) float64 {
	switch target {
	case UnitPT:
		return l.mm() * MmToPt
	case UnitMM:
		return l.mm()
	default:
		return l.mm() * MmToPx
	}
}

func (l Length) ToPX() float64 { return l.To(UnitPX) }
func (l Length) ToMM() float64 { return l.To(UnitMM) }

// ParseLength parses a config length string preserving its unit, e.g.
// "794px", "210mm", "12pt". Unit-less numbers are pixels.
func ParseLength(value string) Length {
	v := strings.TrimSpace(strings.ToLower(value))
	if v == "" {
		return Length{}
	}
	unit := UnitNone
	num := v
	for _, suf := range []struct {
		s string
		u Unit
	}{{"px", UnitPX}, {"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			num = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return Length{}
	}
	return Length{Value: f, Unit: unit}
}

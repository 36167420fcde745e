package layout

import (
	"fmt"

	"github.com/1broseidon/viewwall/internal/geom"
)

// RegionType selects a preset slice of the display.
type RegionType string

const (
	RegionFull       RegionType = "full"
	RegionLeftHalf   RegionType = "left-half"
	RegionRightHalf  RegionType = "right-half"
	RegionTopHalf    RegionType = "top-half"
	RegionBottomHalf RegionType = "bottom-half"
	RegionCustom     RegionType = "custom"
)

// Region describes where a layer sits on the display, either as a preset or
// as percentages of the display for RegionCustom.
type Region struct {
	Type          RegionType `yaml:"type" json:"type"`
	XPercent      float64    `yaml:"x_percent,omitempty" json:"x_percent,omitempty"`
	YPercent      float64    `yaml:"y_percent,omitempty" json:"y_percent,omitempty"`
	WidthPercent  float64    `yaml:"width_percent,omitempty" json:"width_percent,omitempty"`
	HeightPercent float64    `yaml:"height_percent,omitempty" json:"height_percent,omitempty"`
}

// Validate checks percentages for custom regions.
func (r Region) Validate() error {
	switch r.Type {
	case "", RegionFull, RegionLeftHalf, RegionRightHalf, RegionTopHalf, RegionBottomHalf:
		return nil
	case RegionCustom:
		if r.XPercent < 0 || r.XPercent > 100 {
			return fmt.Errorf("x_percent must be between 0 and 100")
		}
		if r.YPercent < 0 || r.YPercent > 100 {
			return fmt.Errorf("y_percent must be between 0 and 100")
		}
		if r.WidthPercent <= 0 || r.WidthPercent > 100 {
			return fmt.Errorf("width_percent must be between 1 and 100")
		}
		if r.HeightPercent <= 0 || r.HeightPercent > 100 {
			return fmt.Errorf("height_percent must be between 1 and 100")
		}
		if r.XPercent+r.WidthPercent > 100 {
			return fmt.Errorf("x_percent + width_percent must not exceed 100")
		}
		if r.YPercent+r.HeightPercent > 100 {
			return fmt.Errorf("y_percent + height_percent must not exceed 100")
		}
		return nil
	default:
		return fmt.Errorf("invalid region type %q", r.Type)
	}
}

// ApplyRegion returns the part of display that region selects.
func ApplyRegion(display geom.Rect, region Region) geom.Rect {
	adjusted := display

	switch region.Type {
	case RegionLeftHalf:
		adjusted.Width = display.Width / 2

	case RegionRightHalf:
		adjusted.X = display.X + display.Width/2
		adjusted.Width = display.Width / 2

	case RegionTopHalf:
		adjusted.Height = display.Height / 2

	case RegionBottomHalf:
		adjusted.Y = display.Y + display.Height/2
		adjusted.Height = display.Height / 2

	case RegionCustom:
		adjusted.X = display.X + display.Width*region.XPercent/100
		adjusted.Y = display.Y + display.Height*region.YPercent/100
		adjusted.Width = display.Width * region.WidthPercent / 100
		adjusted.Height = display.Height * region.HeightPercent / 100
	}

	if adjusted.Width < 1 {
		adjusted.Width = 1
	}
	if adjusted.Height < 1 {
		adjusted.Height = 1
	}

	return adjusted
}

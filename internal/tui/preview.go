package tui

import (
	"fmt"
	"strings"

	"github.com/1broseidon/viewwall/internal/geom"
	"github.com/1broseidon/viewwall/internal/viewer"
)

// summarizeWall describes the wall size and viewer spread in one line.
func summarizeWall(display geom.Size, viewers []viewer.Info) string {
	if display.Width <= 0 || display.Height <= 0 {
		return "no display"
	}
	if len(viewers) == 0 {
		return fmt.Sprintf("%.0f×%.0f px • empty", display.Width, display.Height)
	}

	minW, maxW := viewers[0].Frame.Width, viewers[0].Frame.Width
	for _, v := range viewers[1:] {
		if v.Frame.Width < minW {
			minW = v.Frame.Width
		}
		if v.Frame.Width > maxW {
			maxW = v.Frame.Width
		}
	}
	if minW == maxW {
		return fmt.Sprintf("%.0f×%.0f px • %d viewers • %.0f px wide", display.Width, display.Height, len(viewers), minW)
	}
	return fmt.Sprintf("%.0f×%.0f px • %d viewers • %.0f-%.0f px wide", display.Width, display.Height, len(viewers), minW, maxW)
}

// renderWallPreview draws viewer frames scaled onto a width×height character
// canvas. Viewers are drawn in activation order so later ones overdraw.
// Frames are numbered from 1 in list order.
func renderWallPreview(display geom.Size, viewers []viewer.Info, width, height int) []string {
	if display.Width <= 0 || display.Height <= 0 || width < 5 || height < 3 {
		return emptyCanvas(width, height)
	}

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
		for j := range canvas[i] {
			canvas[i][j] = ' '
		}
	}

	for i, v := range viewers {
		if v.Removing {
			continue
		}
		drawFrame(canvas, v.Frame, i+1, v.Fullscreen, display, width, height)
	}

	drawBorder(canvas, width, height)

	lines := make([]string, height)
	for i, row := range canvas {
		lines[i] = string(row)
	}
	return lines
}

func drawFrame(canvas [][]rune, rect geom.Rect, num int, fullscreen bool, display geom.Size, canvasW, canvasH int) {
	x1 := int(rect.X * float64(canvasW) / display.Width)
	y1 := int(rect.Y * float64(canvasH) / display.Height)
	x2 := int(rect.Right() * float64(canvasW) / display.Width)
	y2 := int(rect.Bottom() * float64(canvasH) / display.Height)

	// Clamp to canvas bounds
	if x1 < 1 {
		x1 = 1
	}
	if y1 < 1 {
		y1 = 1
	}
	if x2 >= canvasW-1 {
		x2 = canvasW - 2
	}
	if y2 >= canvasH-1 {
		y2 = canvasH - 2
	}

	// Need at least 2x2 for a frame
	if x2 <= x1 || y2 <= y1 {
		return
	}

	horiz, vert := '─', '│'
	if fullscreen {
		horiz, vert = '━', '┃'
	}

	// Clear the interior so overlapping frames read front to back.
	for y := y1 + 1; y < y2; y++ {
		for x := x1 + 1; x < x2; x++ {
			canvas[y][x] = ' '
		}
	}

	for x := x1; x <= x2; x++ {
		canvas[y1][x] = horiz
		canvas[y2][x] = horiz
	}
	for y := y1; y <= y2; y++ {
		canvas[y][x1] = vert
		canvas[y][x2] = vert
	}

	canvas[y1][x1] = '┌'
	canvas[y1][x2] = '┐'
	canvas[y2][x1] = '└'
	canvas[y2][x2] = '┘'

	// Draw the number in the center
	centerY := (y1 + y2) / 2
	centerX := (x1 + x2) / 2
	if centerY > y1 && centerY < y2 && centerX > x1 && centerX < x2 {
		label := fmt.Sprintf("%d", num)
		startX := centerX - len(label)/2
		for i, r := range label {
			if startX+i > x1 && startX+i < x2 {
				canvas[centerY][startX+i] = r
			}
		}
	}
}

func drawBorder(canvas [][]rune, width, height int) {
	for x := 0; x < width; x++ {
		canvas[0][x] = '═'
		canvas[height-1][x] = '═'
	}

	for y := 0; y < height; y++ {
		canvas[y][0] = '║'
		canvas[y][width-1] = '║'
	}

	canvas[0][0] = '╔'
	canvas[0][width-1] = '╗'
	canvas[height-1][0] = '╚'
	canvas[height-1][width-1] = '╝'
}

func emptyCanvas(width, height int) []string {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	lines := make([]string, height)
	empty := strings.Repeat(" ", width)
	for i := range lines {
		lines[i] = empty
	}
	return lines
}

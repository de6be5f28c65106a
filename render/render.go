package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/TFMV/techgraph/models"
)

// OutputOptions defines rendering configuration options
type OutputOptions struct {
	Format     string  // Output format (svg, ascii, json)
	Background string  // Background color
	Timestamp  bool    // Include timestamp in visualization
	NodeSize   float64 // Node radius
	EdgeWidth  float64 // Rope stroke width
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Show node labels
	ShowCosts  bool    // Show node costs under labels
	Palette    *Palette
}

// Palette maps unlock states to colors
type Palette struct {
	Locked    string
	Available string
	Unlocked  string
}

// DefaultPalette returns the default state colors
func DefaultPalette() *Palette {
	return &Palette{
		Locked:    "#9E9E9E",
		Available: "#FBBC05",
		Unlocked:  "#34A853",
	}
}

// Color returns the color of a state
func (p *Palette) Color(s models.UnlockState) string {
	switch s {
	case models.Unlocked:
		return p.Unlocked
	case models.Available:
		return p.Available
	default:
		return p.Locked
	}
}

// Renderer interface defines methods that all rendering backends must implement
type Renderer interface {
	// Render draws one snapshot using the provided options
	Render(snap *models.Snapshot, options *OutputOptions) ([]byte, error)

	// Name returns the name of the renderer
	Name() string
}

// NewDefaultOptions creates a default set of output options
func NewDefaultOptions(format string) *OutputOptions {
	return &OutputOptions{
		Format:     format,
		Background: "#f8f8f8",
		Timestamp:  false,
		NodeSize:   14.0,
		EdgeWidth:  2.0,
		FontSize:   11.0,
		ShowLabels: true,
		ShowCosts:  true,
		Palette:    DefaultPalette(),
	}
}

// GetRenderer returns the appropriate renderer based on format
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "ascii", "txt":
		return &ASCIIRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Extension returns the file extension for a format
func Extension(format string) string {
	switch strings.ToLower(format) {
	case "ascii", "txt":
		return ".txt"
	default:
		return "." + strings.ToLower(format)
	}
}

func withDefaults(options *OutputOptions) *OutputOptions {
	if options == nil {
		return NewDefaultOptions("")
	}
	if options.Palette == nil {
		o := *options
		o.Palette = DefaultPalette()
		return &o
	}
	return options
}

// SVGRenderer outputs SVG format
type SVGRenderer struct{}

// Name returns the name of the renderer
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Render creates an SVG with one polyline per rope and one circle per node
func (r *SVGRenderer) Render(snap *models.Snapshot, options *OutputOptions) ([]byte, error) {
	options = withDefaults(options)
	var buf bytes.Buffer

	fmt.Fprintf(&buf, `<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, snap.Width, snap.Height, snap.Width, snap.Height, options.Background)

	// Ropes below nodes
	for _, rope := range snap.Ropes {
		if len(rope.Points) < 2 {
			continue
		}
		points := make([]string, len(rope.Points))
		for i, p := range rope.Points {
			points[i] = fmt.Sprintf("%.2f,%.2f", p.X, p.Y)
		}
		fmt.Fprintf(&buf, `<polyline points="%s" fill="none" stroke="%s" stroke-width="%g" stroke-linecap="round" data-source="%s" data-target="%s"/>
`, strings.Join(points, " "), options.Palette.Color(rope.State), options.EdgeWidth,
			html.EscapeString(rope.Source), html.EscapeString(rope.Target))
	}

	for _, node := range snap.Nodes {
		stroke := "rgba(0,0,0,0.3)"
		if node.Affordable {
			stroke = "#202020"
		}
		fmt.Fprintf(&buf, `<circle cx="%.2f" cy="%.2f" r="%g" fill="%s" stroke="%s" stroke-width="1.5" data-id="%s"/>
`, node.X, node.Y, options.NodeSize, options.Palette.Color(node.State), stroke, html.EscapeString(node.ID))

		if options.ShowLabels {
			label := node.Name
			if label == "" {
				label = node.ID
			}
			labelY := node.Y + options.NodeSize + options.FontSize + 2
			fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="#333333" text-anchor="middle">%s</text>
`, node.X, labelY, options.FontSize, html.EscapeString(label))
			if options.ShowCosts {
				fmt.Fprintf(&buf, `<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="#808080" text-anchor="middle">%s</text>
`, node.X, labelY+options.FontSize+1, options.FontSize*0.85, formatCost(node.Cost))
			}
		}
	}

	if options.Timestamp {
		fmt.Fprintf(&buf, `<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="#808080">%s</text>
`, snap.Height-5, time.Now().Format("2006-01-02 15:04:05"))
	}

	buf.WriteString(`</svg>`)
	return buf.Bytes(), nil
}

// ASCIIRenderer outputs ASCII art format
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// Render creates an ASCII representation of the snapshot
func (r *ASCIIRenderer) Render(snap *models.Snapshot, options *OutputOptions) ([]byte, error) {
	options = withDefaults(options)
	if snap.Width <= 0 || snap.Height <= 0 {
		return nil, fmt.Errorf("snapshot area must be positive, got %gx%g", snap.Width, snap.Height)
	}

	width := max(int(snap.Width/15), 40)
	height := max(int(snap.Height/30), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for i := 0; i < width; i++ {
		grid[0][i] = '-'
		grid[height-1][i] = '-'
	}
	for i := 0; i < height; i++ {
		grid[i][0] = '|'
		grid[i][width-1] = '|'
	}
	grid[0][0], grid[0][width-1] = '+', '+'
	grid[height-1][0], grid[height-1][width-1] = '+', '+'

	toGrid := func(p models.Point) (int, int) {
		x := int(p.X*float64(width-2)/snap.Width) + 1
		y := int(p.Y*float64(height-2)/snap.Height) + 1
		return clamp(x, 1, width-2), clamp(y, 1, height-2)
	}

	for _, rope := range snap.Ropes {
		for i := 1; i < len(rope.Points); i++ {
			x1, y1 := toGrid(rope.Points[i-1])
			x2, y2 := toGrid(rope.Points[i])
			drawLine(grid, x1, y1, x2, y2)
		}
	}

	for _, node := range snap.Nodes {
		x, y := toGrid(models.Point{X: node.X, Y: node.Y})
		grid[y][x] = stateSymbol(node.State)

		if options.ShowLabels && x+1 < width-1 {
			label := []rune(node.ID)
			room := width - 2 - (x + 1)
			if len(label) > room {
				label = label[:room]
			}
			copy(grid[y][x+1:], label)
		}
	}

	var buf bytes.Buffer
	for _, row := range grid {
		buf.WriteString(string(row))
		buf.WriteByte('\n')
	}
	fmt.Fprintf(&buf, "# unlocked  O available  x locked   balance %s\n", formatCost(snap.Balance))
	return buf.Bytes(), nil
}

// JSONRenderer outputs the snapshot as JSON
type JSONRenderer struct{}

// Name returns the name of the renderer
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Render encodes the snapshot
func (r *JSONRenderer) Render(snap *models.Snapshot, options *OutputOptions) ([]byte, error) {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

func stateSymbol(s models.UnlockState) rune {
	switch s {
	case models.Unlocked:
		return '#'
	case models.Available:
		return 'O'
	default:
		return 'x'
	}
}

func formatCost(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}

// clamp ensures a value is within a range
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// drawLine draws a line on the grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx, sy := 1, 1
	if x1 > x2 {
		sx = -1
	}
	if y1 > y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) && grid[y1][x1] == ' ' {
			grid[y1][x1] = '.'
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

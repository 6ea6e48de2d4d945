package visuals

// Colour is a named display colour for a transition-count bucket.
type Colour struct {
	Name string
	Hex  string
}

var (
	ColourBlue   = Colour{Name: "Blue", Hex: "#3B82F6"}
	ColourOrange = Colour{Name: "Orange", Hex: "#F97316"}
	ColourRed    = Colour{Name: "Red", Hex: "#EF4444"}
	ColourBlack  = Colour{Name: "Black", Hex: "#000000"}
)

// ColourFor buckets a transition count: 1 is normal, 2-4 medium, 5-8 high, 9+ critical.
func ColourFor(transitions int) Colour {
	switch {
	case transitions >= 9:
		return ColourBlack
	case transitions >= 5:
		return ColourRed
	case transitions >= 2:
		return ColourOrange
	default:
		return ColourBlue
	}
}

// LegendEntry labels one transition-count bucket.
type LegendEntry struct {
	Label  string
	Colour Colour
}

// Legend lists the buckets in ascending order.
func Legend() []LegendEntry {
	return []LegendEntry{
		{"1 transition", ColourBlue},
		{"2-4 transitions", ColourOrange},
		{"5-8 transitions", ColourRed},
		{"9+ transitions", ColourBlack},
	}
}

// itemPalette colours the stacks of the comparison chart, one per work item.
var itemPalette = []string{
	"#1f77b4", "#aec7e8", "#ff7f0e", "#ffbb78", "#2ca02c",
	"#98df8a", "#d62728", "#ff9896", "#9467bd", "#c5b0d5",
	"#8c564b", "#c49c94", "#e377c2", "#f7b6d2", "#7f7f7f",
	"#c7c7c7", "#bcbd22", "#dbdb8d", "#17becf", "#9edae5",
}

func itemColour(i int) string {
	return itemPalette[i%len(itemPalette)]
}

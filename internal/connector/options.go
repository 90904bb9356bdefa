package connector

// Options holds the routing constants.
type Options struct {
	SourcePadding        float64 `koanf:"source_padding"`        // clearance at the source end
	TargetPadding        float64 `koanf:"target_padding"`        // clearance for the arrowhead
	ParallelSpacing      float64 `koanf:"parallel_spacing"`      // gap between links on the same ordered pair
	BidirectionalSpacing float64 `koanf:"bidirectional_spacing"` // shift applied when both directions exist
	LabelLift            float64 `koanf:"label_lift"`
	CharWidth            float64 `koanf:"char_width"`
	PlatePadding         float64 `koanf:"plate_padding"`
	PlateHeight          float64 `koanf:"plate_height"`
	LoopSize             float64 `koanf:"loop_size"` // reach of a self-link loop
}

// DefaultOptions returns the routing constants used by the editor.
func DefaultOptions() Options {
	return Options{
		SourcePadding:        2,
		TargetPadding:        10,
		ParallelSpacing:      16,
		BidirectionalSpacing: 12,
		LabelLift:            8,
		CharWidth:            7,
		PlatePadding:         4,
		PlateHeight:          16,
		LoopSize:             40,
	}
}

package layout

// Config holds the layout constants. The zero value is not useful; start from
// DefaultConfig.
type Config struct {
	FacePad float64 `yaml:"face_pad"`
	BodyPad float64 `yaml:"body_pad"`

	LabelWidth      int `yaml:"label_width"`
	LabelHeight     int `yaml:"label_height"`
	LabelGap        int `yaml:"label_gap"`
	TopOffset       int `yaml:"top_offset"`
	StackGap        int `yaml:"stack_gap"`
	MinLabelWidth   int `yaml:"min_label_width"`
	EdgeMargin      int `yaml:"edge_margin"`
	FaceClearance   int `yaml:"face_clearance"`
	CardGap         int `yaml:"card_gap"`
	ConnectorOffset int `yaml:"connector_offset"`

	CardWidth  int `yaml:"card_width"`
	CardHeight int `yaml:"card_height"`
}

// DefaultConfig returns the standard HUD layout constants.
func DefaultConfig() Config {
	return Config{
		FacePad:         0.15,
		BodyPad:         0.10,
		LabelWidth:      260,
		LabelHeight:     35,
		LabelGap:        25,
		TopOffset:       40,
		StackGap:        15,
		MinLabelWidth:   200,
		EdgeMargin:      10,
		FaceClearance:   20,
		CardGap:         20,
		ConnectorOffset: 20,
		CardWidth:       360,
		CardHeight:      480,
	}
}

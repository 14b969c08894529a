package domain

// Label is the normalised confidence tier of a model interpretation.
type Label string

const (
	LabelAlto  Label = "ALTO"
	LabelMedio Label = "MEDIO"
	LabelBajo  Label = "BAJO"
)

const (
	AngleBajo  = 20
	AngleMedio = 90
	AngleAlto  = 160

	DefaultConfidence = 50

	MinServoAngle = 0
	MaxServoAngle = 180
)

// Verdict is the confidence assessment derived from a model response blob.
type Verdict struct {
	Label      Label  `json:"label"`
	Confidence int    `json:"confidence"`
	Reason     string `json:"reason,omitempty"`
	Angle      int    `json:"angle"`
	Extracted  bool   `json:"extracted"`
}

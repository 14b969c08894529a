package domain

import "time"

type ReadingKind string

const (
	ReadingReflection     ReadingKind = "reflection"
	ReadingInterpretation ReadingKind = "interpretation"
	ReadingManual         ReadingKind = "manual"
)

// Reading is one immutable entry in a session's history.
type Reading struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"session_id"`
	Kind       ReadingKind `json:"kind"`
	Color      string      `json:"color,omitempty"`
	Category   Category    `json:"category,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Text       string      `json:"text,omitempty"`
	Label      Label       `json:"label,omitempty"`
	Confidence int         `json:"confidence"`
	Reason     string      `json:"reason,omitempty"`
	Angle      *int        `json:"angle,omitempty"`
	Published  bool        `json:"published"`
	DrawingKey string      `json:"drawing_key,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
}

type Reflection struct {
	ReadingID  string     `json:"reading_id"`
	SessionID  string     `json:"session_id"`
	Color      string     `json:"color"`
	Category   Category   `json:"category"`
	HSV        HSV        `json:"hsv"`
	Meditation Meditation `json:"meditation"`
	Blessing   string     `json:"blessing"`
	CreatedAt  time.Time  `json:"created_at"`
}

type InterpretMode string

const (
	ModeMystic    InterpretMode = "mystic"
	ModeRecognize InterpretMode = "recognize"
)

func (m InterpretMode) Valid() bool {
	return m == ModeMystic || m == ModeRecognize
}

type SideEffectStatus string

const (
	SideEffectOK      SideEffectStatus = "ok"
	SideEffectSkipped SideEffectStatus = "skipped"
	SideEffectFailed  SideEffectStatus = "failed"
)

// SideEffect reports the outcome of an optional collaborator call.
type SideEffect struct {
	Status    SideEffectStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
	Temporary bool             `json:"temporary,omitempty"`
}

type Speech struct {
	MimeType string `json:"mime_type"`
	Lang     string `json:"lang"`
	Audio    []byte `json:"audio"`
}

type Interpretation struct {
	ReadingID  string           `json:"reading_id"`
	SessionID  string           `json:"session_id"`
	Mode       InterpretMode    `json:"mode"`
	Text       string           `json:"text"`
	Verdict    Verdict          `json:"verdict"`
	Command    *ActuatorCommand `json:"command,omitempty"`
	Speech     *Speech          `json:"speech,omitempty"`
	DrawingKey string           `json:"drawing_key"`
	Assessment SideEffect       `json:"assessment"`
	SpeechStep SideEffect       `json:"speech_step"`
	Publish    SideEffect       `json:"publish"`
	CreatedAt  time.Time        `json:"created_at"`
}

type CommandSource string

const (
	SourceVerdict CommandSource = "verdict"
	SourceManual  CommandSource = "manual"
)

// ActuatorCommand is the payload published to the servo subject.
type ActuatorCommand struct {
	CommandID string        `json:"command_id"`
	SessionID string        `json:"session_id"`
	Angle     int           `json:"angle"`
	Label     Label         `json:"label,omitempty"`
	Source    CommandSource `json:"source"`
	IssuedAt  time.Time     `json:"issued_at"`
}

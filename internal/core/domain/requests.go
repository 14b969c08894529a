package domain

type ReflectRequest struct {
	SessionID string `json:"session_id"`
	Color     string `json:"color"`
}

type Image struct {
	MimeType string
	Data     []byte
}

type InterpretRequest struct {
	SessionID string
	Mode      InterpretMode
	Image     Image
	Note      string
	Speak     bool
	Lang      string
	Publish   bool
}

type MoveRequest struct {
	SessionID string `json:"session_id"`
	Angle     int    `json:"angle"`
}

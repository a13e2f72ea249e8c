package gemini

// Client → server messages for the bidirectional live session. Outbound audio
// bytes travel base64-encoded inside JSON text frames, so the byte↔symbol
// mapping is lossless in both directions.

type setupMessage struct {
	Setup setupPayload `json:"setup"`
}

type setupPayload struct {
	Model                   string           `json:"model"`
	GenerationConfig        generationConfig `json:"generationConfig"`
	InputAudioTranscription struct{}         `json:"inputAudioTranscription"`
}

type generationConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type realtimeInputMessage struct {
	RealtimeInput realtimeInput `json:"realtimeInput"`
}

type realtimeInput struct {
	MediaChunks    []mediaChunk `json:"mediaChunks,omitempty"`
	AudioStreamEnd bool         `json:"audioStreamEnd,omitempty"`
}

type mediaChunk struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

// Server → client messages.

type serverMessage struct {
	SetupComplete *struct{}      `json:"setupComplete,omitempty"`
	ServerContent *serverContent `json:"serverContent,omitempty"`
}

type serverContent struct {
	InputTranscription *transcriptionEvent `json:"inputTranscription,omitempty"`
	TurnComplete       bool                `json:"turnComplete,omitempty"`
	GenerationComplete bool                `json:"generationComplete,omitempty"`
}

type transcriptionEvent struct {
	Text string `json:"text"`
}

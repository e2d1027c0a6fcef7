package studio

import (
	"time"

	"github.com/google/uuid"

	"shotcraft/internal/domain"
	"shotcraft/internal/i18n"
	"shotcraft/internal/upload"
	"shotcraft/pkg/datauri"
)

// State is the generation lifecycle of a session.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// DownloadBaseName is the file name, without extension, of a downloaded result.
const DownloadBaseName = "ai-generated-shot"

// GenerationResult is the image produced by the last successful attempt.
type GenerationResult struct {
	ImageDataURI string    `json:"imageDataUri"`
	MIMEType     string    `json:"mimeType"`
	Data         []byte    `json:"-"`
	PromptUsed   string    `json:"promptUsed"`
	CreatedAt    time.Time `json:"createdAt"`
}

// FileName is the download name for the result.
func (r *GenerationResult) FileName() string {
	return datauri.Filename(DownloadBaseName, r.MIMEType)
}

// Notice is a user-facing message kept as a catalog key so it can be rendered
// per request locale.
type Notice struct {
	Key    i18n.Key
	Detail string
}

func (n *Notice) Text(locale string) string {
	if n == nil {
		return ""
	}
	switch n.Key {
	case i18n.MsgGenerationFailed, i18n.MsgVerbatim:
		return i18n.Text(locale, n.Key, n.Detail)
	default:
		return i18n.Text(locale, n.Key)
	}
}

// View is an immutable snapshot of a session, safe to hand to renderers.
type View struct {
	SessionID        uuid.UUID                    `json:"sessionId"`
	Images           []upload.SourceImage         `json:"images"`
	Angles           []Option[domain.CameraAngle] `json:"angles"`
	Shots            []Option[domain.CameraShot]  `json:"shots"`
	Levels           []Option[domain.CameraLevel] `json:"levels"`
	Selection        domain.Selection             `json:"selection"`
	AdditionalPrompt string                       `json:"additionalPrompt"`
	State            State                        `json:"state"`
	Loading          bool                         `json:"loading"`
	CanGenerate      bool                         `json:"canGenerate"`
	Result           *GenerationResult            `json:"result,omitempty"`
	DownloadName     string                       `json:"downloadName,omitempty"`
	Error            string                       `json:"error,omitempty"`
	UpdatedAt        time.Time                    `json:"updatedAt"`

	notice *Notice
}

// Localize returns a copy of the view with its message rendered for locale.
func (v View) Localize(locale string) View {
	v.Error = v.notice.Text(locale)
	return v
}

// Notice returns the pending message, if any.
func (v View) Notice() *Notice {
	return v.notice
}

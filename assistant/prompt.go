package assistant

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/opd-ai/shadowlink/messaging"
)

// BuildHistory converts the stored conversation with the assistant into
// turns. Messages authored by selfID become user turns and everything else
// assistant turns.
func BuildHistory(conversation []messaging.Message, selfID string) []Turn {
	turns := make([]Turn, 0, len(conversation))
	for _, m := range conversation {
		role := RoleAssistant
		if m.SenderID == selfID {
			role = RoleUser
		}
		turns = append(turns, Turn{Role: role, Text: m.Content})
	}
	return turns
}

// BuildPrompt combines message text with its attachment. Images and videos
// are passed as inline media; other files are described by name only.
func BuildPrompt(content string, att *messaging.Attachment) (string, []Media) {
	if att == nil {
		return content, nil
	}

	if isVisualMedia(att.MimeType) && len(att.Data) > 0 {
		media := []Media{{
			MimeType:   att.MimeType,
			Base64Data: base64.StdEncoding.EncodeToString(att.Data),
		}}
		return content + fmt.Sprintf("\n[Use the attached %s for analysis]", att.MimeType), media
	}

	return content + fmt.Sprintf("\n[File %s attached, analyze based on filename only]", att.Name), nil
}

func isVisualMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/") || strings.HasPrefix(mimeType, "video/")
}

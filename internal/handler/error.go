package handler

import (
	"errors"
	"log/slog"

	"github.com/glizzus/sound-panel/internal/music"
)

// Replies owned by the Discord layer.
const (
	msgGuildOnly            = "⚠️ داخل سيرفر فقط."
	msgEmojisUpdated        = "✅ الإيموجيات تم تحديثها."
	msgEmojisUpdatedSlash   = "✅ تم تحديث الإيموجيات."
	msgPanelSent            = "✅ أرسلت اللوحة."
	msgJoinFailed           = "⚠️ تعذر الاتصال بالقناة."
	msgVoiceChannelNotFound = "⚠️ لم أجد القناة الصوتية."
	msgUnexpected           = "⚠️ حدث خطأ غير متوقع."
)

// userMessage returns the text to show for err. Errors that are not
// *music.UserError are logged and replaced with fallback, which may be
// empty to reply nothing.
func userMessage(err error, fallback string, attrs ...any) string {
	var userErr *music.UserError
	if errors.As(err, &userErr) {
		return userErr.Message
	}
	slog.Error("Command failed", append(attrs, "error", err)...)
	return fallback
}

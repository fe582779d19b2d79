package config

import (
	"time"

	"github.com/spf13/viper"
)

// Default values for optional configuration parameters. The message strings
// reproduce the bot's original Uzbek responses verbatim.
const (
	DefaultLogLevel = "info"
	DefaultLogJSON  = false

	DefaultDBPath = "storage.db"

	DefaultAlbumWindow    = 1500 * time.Millisecond
	DefaultAttemptTimeout = 30 * time.Second

	DefaultMsgWelcome        = "Botga xush kelibsiz!"
	DefaultMsgNotAuthorized  = "Sizda botni boshqarish huquqi yo'q."
	DefaultMsgButtonList     = "Guruhlar ro'yxati"
	DefaultMsgButtonRetract  = "Oxirgi xabarni o'chirish"
	DefaultMsgNoDestinations = "Bot hech qanday guruhga qo'shilmagan."
	DefaultMsgListHeader     = "📋 Guruhlar:"
	DefaultMsgBroadcasted    = "✅ %d ta guruhga yuborildi."
	DefaultMsgNoneDelivered  = "⚠️ Hech bir guruhga yuborilmadi"
	DefaultMsgRetracted      = "%d ta xabar o‘chirildi."
	DefaultMsgAdminWarning   = "⚠️ Bot admin emas:\n📛 %s"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", DefaultLogLevel)
	v.SetDefault("logger.json", DefaultLogJSON)

	v.SetDefault("database.path", DefaultDBPath)

	v.SetDefault("broadcast.album_window", DefaultAlbumWindow)
	v.SetDefault("broadcast.attempt_timeout", DefaultAttemptTimeout)

	v.SetDefault("messages.welcome", DefaultMsgWelcome)
	v.SetDefault("messages.not_authorized", DefaultMsgNotAuthorized)
	v.SetDefault("messages.button_list", DefaultMsgButtonList)
	v.SetDefault("messages.button_retract", DefaultMsgButtonRetract)
	v.SetDefault("messages.no_destinations", DefaultMsgNoDestinations)
	v.SetDefault("messages.list_header", DefaultMsgListHeader)
	v.SetDefault("messages.broadcasted", DefaultMsgBroadcasted)
	v.SetDefault("messages.none_delivered", DefaultMsgNoneDelivered)
	v.SetDefault("messages.retracted", DefaultMsgRetracted)
	v.SetDefault("messages.admin_warning", DefaultMsgAdminWarning)
}

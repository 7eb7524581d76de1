package music

// Replies shown to users.
const (
	msgNoGuild        = "⚠️ لا يوجد سيرفر."
	msgNothingPlaying = "⚠️ لا يوجد تشغيل."
	msgNotConnected   = "⚠️ غير متصل."
	msgNoPrevious     = "⚠️ لا يوجد مسار سابق."
	msgJoinFirst      = "⚠️ ادخل قناة صوتية أولاً."
	msgJoinFailed     = "⚠️ تعذر الاتصال بالقناة."
	msgFetchFailed    = "⚠️ لم أستطع جلب الصوت."
	msgTooLarge       = "⚠️ الملف أكبر من الحد المسموح."
	msgNotYours       = "هذا البانل مخصص لك فقط."

	msgSkipped    = "⏭️ تم التخطي."
	msgStopped    = "⏹️ تم الإيقاف."
	msgRestarted  = "🔁 تم إعادة التشغيل."
	msgResumed    = "▶️ تم الاستئناف."
	msgPaused     = "⏸️ تم الإيقاف المؤقت."
	msgNowPlaying = "▶️ يتم الآن التشغيل."
	msgLeft       = "👋 تم قطع الاتصال."

	msgJoinedFormat  = "✅ انضممت إلى: %s"
	msgPlayingFormat = "▶️ يتم الآن تشغيل **%s**."
	msgQueuedFormat  = "✅ أضيف **%s** إلى قائمة الانتظار."
	msgVolumeFormat  = "🔊 مستوى الصوت الآن %d%%."
)

package utils

import (
	"golang.org/x/text/language"
)

// MessageKey identifies a user-facing message in the string tables.
type MessageKey string

const (
	MsgInternal         MessageKey = "internal"
	MsgLoginRequired    MessageKey = "login_required"
	MsgInvalidRequest   MessageKey = "invalid_request"
	MsgNetwork          MessageKey = "network"
	MsgNotFound         MessageKey = "not_found"
	MsgInsufficientPts  MessageKey = "insufficient_points"
	MsgPaymentPending   MessageKey = "payment_pending"
	MsgRateLimited      MessageKey = "rate_limited"
	MsgChatUnavailable  MessageKey = "chat_unavailable"
	MsgScheduleUnlocked MessageKey = "schedule_unlocked"
)

// SupportedLanguages lists the app languages in matcher order; the first one is the default.
var SupportedLanguages = []language.Tag{
	language.Korean,
	language.English,
	language.Japanese,
	language.Chinese,
}

var languageMatcher = language.NewMatcher(SupportedLanguages)

var messages = map[string]map[MessageKey]string{
	"ko": {
		MsgInternal:         "일시적인 오류가 발생했습니다. 잠시 후 다시 시도해주세요.",
		MsgLoginRequired:    "로그인이 필요합니다.",
		MsgInvalidRequest:   "잘못된 요청입니다.",
		MsgNetwork:          "네트워크 오류가 발생했습니다.",
		MsgNotFound:         "요청한 정보를 찾을 수 없습니다.",
		MsgInsufficientPts:  "포인트가 부족합니다.",
		MsgPaymentPending:   "결제가 아직 완료되지 않았습니다.",
		MsgRateLimited:      "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
		MsgChatUnavailable:  "채팅 서버에 연결할 수 없습니다.",
		MsgScheduleUnlocked: "일정이 공개되었습니다.",
	},
	"en": {
		MsgInternal:         "Something went wrong. Please try again later.",
		MsgLoginRequired:    "Login required.",
		MsgInvalidRequest:   "Invalid request.",
		MsgNetwork:          "A network error occurred.",
		MsgNotFound:         "The requested item could not be found.",
		MsgInsufficientPts:  "Not enough points.",
		MsgPaymentPending:   "Payment has not completed yet.",
		MsgRateLimited:      "Too many requests. Please try again later.",
		MsgChatUnavailable:  "Unable to reach the chat server.",
		MsgScheduleUnlocked: "The schedule is now unlocked.",
	},
	"ja": {
		MsgInternal:         "エラーが発生しました。しばらくしてから再度お試しください。",
		MsgLoginRequired:    "ログインが必要です。",
		MsgInvalidRequest:   "無効なリクエストです。",
		MsgNetwork:          "ネットワークエラーが発生しました。",
		MsgNotFound:         "情報が見つかりません。",
		MsgInsufficientPts:  "ポイントが不足しています。",
		MsgPaymentPending:   "お支払いがまだ完了していません。",
		MsgRateLimited:      "リクエストが多すぎます。しばらくしてから再度お試しください。",
		MsgChatUnavailable:  "チャットサーバーに接続できません。",
		MsgScheduleUnlocked: "スケジュールが公開されました。",
	},
	"zh": {
		MsgInternal:         "发生错误，请稍后再试。",
		MsgLoginRequired:    "需要登录。",
		MsgInvalidRequest:   "无效的请求。",
		MsgNetwork:          "发生网络错误。",
		MsgNotFound:         "找不到请求的信息。",
		MsgInsufficientPts:  "积分不足。",
		MsgPaymentPending:   "付款尚未完成。",
		MsgRateLimited:      "请求过多，请稍后再试。",
		MsgChatUnavailable:  "无法连接到聊天服务器。",
		MsgScheduleUnlocked: "行程已解锁。",
	},
}

// MatchLanguage maps an Accept-Language header (or a stored selectedLanguage
// value) onto one of the supported base languages.
func MatchLanguage(accept string) string {
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(tags) == 0 {
		base, _ := SupportedLanguages[0].Base()
		return base.String()
	}
	_, idx, _ := languageMatcher.Match(tags...)
	base, _ := SupportedLanguages[idx].Base()
	return base.String()
}

// Localize returns the message for key in the best matching language.
func Localize(accept string, key MessageKey) string {
	table := messages[MatchLanguage(accept)]
	if msg, ok := table[key]; ok {
		return msg
	}
	return messages["en"][key]
}

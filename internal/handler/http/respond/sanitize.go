package respond

import "regexp"

var (
	// DSN 内のパスワード
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)

	// Slack / Discord の Webhook URL はそれ自体がクレデンシャル
	slackWebhookPattern   = regexp.MustCompile(`https://hooks\.slack\.com/services/[A-Za-z0-9/_-]+`)
	discordWebhookPattern = regexp.MustCompile(`https://(?:discord|discordapp)\.com/api/webhooks/[A-Za-z0-9/_-]+`)

	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._~+/=-]+`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = slackWebhookPattern.ReplaceAllString(msg, "https://hooks.slack.com/services/****")
	msg = discordWebhookPattern.ReplaceAllString(msg, "https://discord.com/api/webhooks/****")
	msg = bearerPattern.ReplaceAllString(msg, "Bearer ****")
	return msg
}

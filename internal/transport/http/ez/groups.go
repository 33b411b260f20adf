package ez

// Groups 同一前缀下按鉴权方式划分的三个分组
type Groups struct {
	Public   EZ // 无需登录
	Authed   EZ // 必须登录
	Optional EZ // 可带可不带 token
}

package dto

// SubscribeRequest 新增 Web Push 订阅请求（浏览器 PushSubscription 对象）
type SubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	Keys     struct {
		P256dh string `json:"p256dh" binding:"required"`
		Auth   string `json:"auth" binding:"required"`
	} `json:"keys" binding:"required"`
}

// UnsubscribeRequest 取消订阅请求
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
}

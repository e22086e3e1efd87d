package channel

// SyncMessageは、同期側からドライバーへ送るチャネル制御メッセージです。
type SyncMessage interface {
	isSyncMessage()
}

// OpenRequestは、チャネルの作成要求です。
//
// Outboundは同期側が書き込む送信キューで、ドライバーのチャネルタスクが読み出します。
type OpenRequest struct {
	ID       ID
	Type     Type
	Outbound <-chan []byte
}

// CloseRequestは、チャネルのクローズ要求です。
//
// ドライバーはキュー済みのメッセージを送信し終えてからチャネルを閉じます。
type CloseRequest struct {
	ID ID
}

func (OpenRequest) isSyncMessage()  {}
func (CloseRequest) isSyncMessage() {}

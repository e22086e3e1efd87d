/*
Package quicnet は、複数のQUICコネクションを管理するクライアントのランタイムです。

Clientはコネクションのレジストリです。各コネクションはRuntime上で動作するドライバーが非同期に駆動し、
ドライバーからのエンベロープはキューを介してClientへ届きます。
ホストはティックごとにUpdateを呼び出し、キューを読み出した結果のイベントをEventSinkで受け取ります。

	client := quicnet.NewClient()
	defer client.Close()
	id, err := client.OpenConnection(
		transport.NewConnectionConfig("127.0.0.1:6000"),
		certificate.TrustOnFirstUse(certificate.TrustOnFirstUseConfig{}),
		channel.DefaultConfiguration(),
	)

	var events quicnet.EventQueue
	for range ticker.C {
		client.Update(&events)
		for _, ev := range events.Drain() {
			// ...
		}
	}
*/
package quicnet

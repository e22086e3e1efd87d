/*
Package quicnetgoは、複数のQUICコネクションを管理するクライアントランタイムのパッケージです。

ここではサーバーへ接続し、メッセージを送受信するまでの一連の流れについて説明します。

# Tick Loop

quicnetのClientはゴルーチンセーフではありません。
コネクションの登録やメッセージの送信、イベントの受け取りは全て同じゴルーチンから行います。
ホストのティックごとに一度Updateを呼び出すと、ドライバーから届いた通知がイベントとして発行されます。

	package main

	import (
		"context"
		"log"
		"time"

		"github.com/aptpod/quicnet-go/certificate"
		"github.com/aptpod/quicnet-go/channel"
		"github.com/aptpod/quicnet-go/host"
		"github.com/aptpod/quicnet-go/quicnet"
		"github.com/aptpod/quicnet-go/transport"
	)

	func main() {
		client := quicnet.NewClient()
		defer client.Close()

		// サーバー証明書は初回接続時に信頼し、以降は同じ証明書のみを受け入れます。
		_, err := client.OpenConnection(
			transport.NewConnectionConfig("localhost:4433"),
			certificate.TrustOnFirstUse(certificate.TrustOnFirstUseConfig{}),
			channel.DefaultConfiguration(),
		)
		if err != nil {
			log.Fatal(err)
		}

		handlers := quicnet.NewEventHandlers()
		handlers.ConnectionEstablished = quicnet.ConnectionEstablishedEventHandlerFunc(func(ev *quicnet.ConnectionEstablishedEvent) {
			log.Printf("connected to %v", ev.RemoteAddr)
		})

		loop := host.NewLoop(client, handlers, host.LoopConfig{
			OnTick: func(c *quicnet.Client, w *quicnet.ConnectionWatcher) {
				conn, ok := c.Connection()
				if !ok {
					return
				}
				// デフォルトチャネルへ送信します。最初に開いたチャネルがデフォルトチャネルです。
				if w.JustConnected() {
					if err := conn.Send([]byte("hello")); err != nil {
						log.Print(err)
					}
				}
				for _, p := range conn.ReceiveAll() {
					log.Printf("channel %d: %s", p.Channel, p.Bytes)
				}
			},
		})

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		loop.Run(ctx)
	}

# Certificate Interaction

証明書の判定を利用者へ問い合わせる場合は、TrustOnFirstUseConfig.Behavioursに
RequestClientActionを指定します。判定はCertInteractionEventとして発行されるため、
イベントに含まれるResponderへ一度だけアクションを応答します。
Responderはゴルーチンセーフであるため、ティックを止めずに別のゴルーチンから応答できます。

	handlers.CertInteraction = quicnet.CertInteractionEventHandlerFunc(func(ev *quicnet.CertInteractionEvent) {
		go func() {
			_ = ev.Responder.Respond(certificate.TrustAndStore)
		}()
	})

# Fx

go.uber.org/fxを使用するアプリケーションはhost.Moduleを組み込みます。
ClientとLoopはアプリケーションのライフサイクルに合わせて開始、停止します。

	app := fx.New(
		host.Module,
		host.ClientOption(quicnet.WithClientMessageQueueSize(1024)),
		fx.Supply(host.LoopConfig{OnTick: onTick}),
	)
*/
package quicnetgo

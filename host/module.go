package host

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/aptpod/quicnet-go/log"
	"github.com/aptpod/quicnet-go/quicnet"
)

const clientOptionsGroup = `group:"quicnet_client_options"`

// Moduleは、ClientとLoopを提供し、アプリケーションのライフサイクルに登録するfxモジュールです。
//
// 起動時にティックループを開始し、停止時にティックループを止めてから全てのコネクションを閉じます。
var Module = fx.Module("quicnet",
	fx.Provide(ProvideClient, ProvideLoop),
	fx.Invoke(registerLifecycle),
)

// ClientOptionは、Moduleが生成するClientへオプションを追加します。
func ClientOption(opt quicnet.ClientOption) fx.Option {
	return fx.Provide(fx.Annotate(
		func() quicnet.ClientOption { return opt },
		fx.ResultTags(clientOptionsGroup),
	))
}

// ClientParamsは、ProvideClientの入力です。
type ClientParams struct {
	fx.In
	Options []quicnet.ClientOption `group:"quicnet_client_options"`
	Zap     *zap.Logger            `optional:"true"`
}

// ProvideClientは、Clientを返却します。
//
// *zap.Loggerが提供されている場合は、Clientのロガーとして使用します。オプションで指定したロガーが優先されます。
func ProvideClient(p ClientParams) *quicnet.Client {
	var opts []quicnet.ClientOption
	if p.Zap != nil {
		opts = append(opts, quicnet.WithClientLogger(log.NewZap(p.Zap)))
	}
	return quicnet.NewClient(append(opts, p.Options...)...)
}

// LoopParamsは、ProvideLoopの入力です。
type LoopParams struct {
	fx.In
	Client *quicnet.Client
	Sink   quicnet.EventSink `optional:"true"`
	Config LoopConfig        `optional:"true"`
	Zap    *zap.Logger       `optional:"true"`
}

// ProvideLoopは、Loopを返却します。
func ProvideLoop(p LoopParams) *Loop {
	c := p.Config
	if c.Logger == nil && p.Zap != nil {
		c.Logger = log.NewZap(p.Zap)
	}
	return NewLoop(p.Client, p.Sink, c)
}

type lifecycleParams struct {
	fx.In
	LC     fx.Lifecycle
	Client *quicnet.Client
	Loop   *Loop
}

func registerLifecycle(p lifecycleParams) {
	p.LC.Append(fx.Hook{
		OnStart: func(context.Context) error {
			p.Loop.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := p.Loop.Stop(ctx); err != nil {
				// ティックが実行中のため、ループの終了後にコネクションを閉じる
				go func() {
					<-p.Loop.Done()
					if err := p.Client.Close(); err != nil {
						p.Loop.config.Logger.Warnf(context.Background(), "Failed to close client after stop timeout: %v", err)
					}
				}()
				return err
			}
			return p.Client.CloseContext(ctx)
		},
	})
}

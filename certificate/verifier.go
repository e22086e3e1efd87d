package certificate

import (
	"context"

	"github.com/aptpod/quicnet-go/errors"
)

// Notifierは、Verifierの判定結果を通知する先です。
//
// 各メソッドはブロックしないか、ブロックしてもctxの完了で戻る必要があります。
type Notifier interface {
	// RequestInteractionは、利用者にアクションを問い合わせます。応答はresponderに書き込まれます。
	RequestInteraction(status VerificationStatus, info VerificationInfo, responder *Responder)
	// TrustUpdatedは、known hostsを更新したことを通知します。
	TrustUpdated(info VerificationInfo)
	// ConnectionAbortedは、証明書を拒否しコネクションを中断することを通知します。
	ConnectionAborted(status VerificationStatus, info VerificationInfo)
}

// Verifierは、TOFUで証明書を判定します。
type Verifier struct {
	conf     TrustOnFirstUseConfig
	notifier Notifier
}

// NewVerifierは、Verifierを返却します。
//
// confはTrustOnFirstUseでデフォルト値を補完したものを指定してください。
func NewVerifier(conf TrustOnFirstUseConfig, notifier Notifier) *Verifier {
	return &Verifier{conf: TrustOnFirstUse(conf).TOFU, notifier: notifier}
}

// Statusは、サーバー名とフィンガープリントから判定結果を返却します。
func (v *Verifier) Status(serverName string, fp Fingerprint) (VerificationStatus, VerificationInfo) {
	info := VerificationInfo{ServerName: serverName, Fingerprint: fp}
	known, ok := v.conf.KnownHosts.Lookup(serverName)
	switch {
	case !ok:
		return UnknownCertificate, info
	case known == fp:
		info.KnownFingerprint = &known
		return TrustedCertificate, info
	default:
		info.KnownFingerprint = &known
		return UntrustedCertificate, info
	}
}

// Verifyは、提示された証明書(DER)を検証します。
//
// 中断した場合はErrCertificateRejectedを返却します。
func (v *Verifier) Verify(ctx context.Context, serverName string, leaf []byte) error {
	status, info := v.Status(serverName, FingerprintOf(leaf))
	behaviour := v.conf.Behaviours[status]
	action := behaviour.Action()
	if behaviour.Interactive() {
		r := NewResponder()
		v.notifier.RequestInteraction(status, info, r)
		a, err := v.wait(ctx, r)
		if err != nil {
			v.notifier.ConnectionAborted(status, info)
			return err
		}
		action = a
	}
	return v.apply(status, info, action)
}

func (v *Verifier) wait(ctx context.Context, r *Responder) (VerifierAction, error) {
	timer := v.conf.Clock.Timer(v.conf.InteractionTimeout)
	defer timer.Stop()
	select {
	case a := <-r.ch:
		return a, nil
	case <-timer.C:
		return AbortConnection, errors.ErrInteractionTimeout
	case <-ctx.Done():
		return AbortConnection, errors.Errorf("%v: %w", ctx.Err(), errors.ErrCertificateRejected)
	}
}

func (v *Verifier) apply(status VerificationStatus, info VerificationInfo, action VerifierAction) error {
	switch action {
	case TrustOnce:
		return nil
	case TrustAndStore:
		if err := v.conf.KnownHosts.Store(info.ServerName, info.Fingerprint); err != nil {
			return errors.Errorf("failed to store known host %q: %w", info.ServerName, err)
		}
		v.notifier.TrustUpdated(info)
		return nil
	default:
		v.notifier.ConnectionAborted(status, info)
		return errors.Errorf("%s certificate for %q: %w", status, info.ServerName, errors.ErrCertificateRejected)
	}
}

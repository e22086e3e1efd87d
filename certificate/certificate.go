/*
Package certificate は、サーバー証明書の検証方式と、Trust On First Use(TOFU)による対話的な信頼判定をまとめたパッケージです。
*/
package certificate

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultInteractionTimeoutは、証明書の確認要求に対する応答の待機時間のデフォルト値です。
	DefaultInteractionTimeout = 60 * time.Second
	// DefaultKnownHostsSizeは、インメモリのknown hostsが保持するホスト数のデフォルト値です。
	DefaultKnownHostsSize = 1024
)

// VerificationStatusは、TOFUによる証明書の判定結果です。
type VerificationStatus uint8

const (
	// UnknownCertificateは、サーバー名に対応する証明書がまだ保存されていない状態です。
	UnknownCertificate VerificationStatus = iota
	// UntrustedCertificateは、保存済みの証明書と異なる証明書が提示された状態です。
	UntrustedCertificate
	// TrustedCertificateは、保存済みの証明書と一致する証明書が提示された状態です。
	TrustedCertificate
)

func (s VerificationStatus) String() string {
	switch s {
	case UnknownCertificate:
		return "unknown"
	case UntrustedCertificate:
		return "untrusted"
	case TrustedCertificate:
		return "trusted"
	default:
		return fmt.Sprintf("VerificationStatus(%d)", uint8(s))
	}
}

// VerificationInfoは、検証した証明書の情報です。
type VerificationInfo struct {
	// 接続先のサーバー名
	ServerName string
	// 提示された証明書のフィンガープリント
	Fingerprint Fingerprint
	// 保存済みのフィンガープリント。未保存の場合はnilです。
	KnownFingerprint *Fingerprint
}

// VerifierActionは、証明書に対して取るアクションです。
type VerifierAction uint8

const (
	// AbortConnectionは、コネクションを中断します。
	AbortConnection VerifierAction = iota
	// TrustOnceは、今回の接続に限り証明書を信頼します。
	TrustOnce
	// TrustAndStoreは、証明書を信頼しknown hostsへ保存します。
	TrustAndStore
)

func (a VerifierAction) String() string {
	switch a {
	case AbortConnection:
		return "abort_connection"
	case TrustOnce:
		return "trust_once"
	case TrustAndStore:
		return "trust_and_store"
	default:
		return fmt.Sprintf("VerifierAction(%d)", uint8(a))
	}
}

// VerifierBehaviourは、判定結果ごとの振る舞いです。
type VerifierBehaviour struct {
	interactive bool
	action      VerifierAction
}

// ImmediateActionは、利用者に確認せずactionを実行する振る舞いを返却します。
func ImmediateAction(action VerifierAction) VerifierBehaviour {
	return VerifierBehaviour{action: action}
}

// RequestClientActionは、CertInteractionEventで利用者にアクションを問い合わせる振る舞いを返却します。
func RequestClientAction() VerifierBehaviour {
	return VerifierBehaviour{interactive: true}
}

// Interactiveは、利用者への問い合わせが必要かどうかを返却します。
func (b VerifierBehaviour) Interactive() bool {
	return b.interactive
}

// Actionは、即時実行するアクションを返却します。
func (b VerifierBehaviour) Action() VerifierAction {
	return b.action
}

// DefaultBehavioursは、判定結果ごとのデフォルトの振る舞いを返却します。
func DefaultBehaviours() map[VerificationStatus]VerifierBehaviour {
	return map[VerificationStatus]VerifierBehaviour{
		UnknownCertificate:   ImmediateAction(TrustAndStore),
		UntrustedCertificate: ImmediateAction(AbortConnection),
		TrustedCertificate:   ImmediateAction(TrustOnce),
	}
}

// TrustOnFirstUseConfigは、TOFUの設定です。
type TrustOnFirstUseConfig struct {
	// 信頼済みの証明書を保存するストア。nilの場合はインメモリのストアを使用します。
	KnownHosts KnownHosts

	// 判定結果ごとの振る舞い。設定されていない判定結果はDefaultBehavioursの値を使用します。
	Behaviours map[VerificationStatus]VerifierBehaviour

	// 確認要求に対する応答の待機時間。0の場合はDefaultInteractionTimeoutを使用します。
	InteractionTimeout time.Duration

	// 待機に使用する時計。nilの場合は実時間を使用します。
	Clock clock.Clock
}

// Modeは、証明書の検証方式です。
type Mode uint8

const (
	// ModeSkipVerificationは、証明書を検証しません。
	ModeSkipVerification Mode = iota
	// ModeSignedByCertificateAuthorityは、認証局による署名を検証します。
	ModeSignedByCertificateAuthority
	// ModeTrustOnFirstUseは、初回接続時の証明書を信頼し以降は一致を検証します。
	ModeTrustOnFirstUse
)

// VerificationModeは、コネクションごとの証明書の検証設定です。
type VerificationMode struct {
	Mode Mode

	// ModeSignedByCertificateAuthorityで使用するルート証明書。nilの場合はシステムの証明書を使用します。
	RootCAs *x509.CertPool

	// ModeTrustOnFirstUseの設定
	TOFU TrustOnFirstUseConfig
}

// SkipVerificationは、証明書を検証しないVerificationModeを返却します。
//
// テストやローカル環境での使用を想定しています。
func SkipVerification() VerificationMode {
	return VerificationMode{Mode: ModeSkipVerification}
}

// SignedByCertificateAuthorityは、認証局による署名を検証するVerificationModeを返却します。
func SignedByCertificateAuthority(roots *x509.CertPool) VerificationMode {
	return VerificationMode{Mode: ModeSignedByCertificateAuthority, RootCAs: roots}
}

// TrustOnFirstUseは、TOFUで検証するVerificationModeを返却します。
func TrustOnFirstUse(c TrustOnFirstUseConfig) VerificationMode {
	behaviours := DefaultBehaviours()
	for k, v := range c.Behaviours {
		behaviours[k] = v
	}
	c.Behaviours = behaviours
	if c.KnownHosts == nil {
		c.KnownHosts = MustNewMemoryKnownHosts(DefaultKnownHostsSize)
	}
	if c.InteractionTimeout <= 0 {
		c.InteractionTimeout = DefaultInteractionTimeout
	}
	if c.Clock == nil {
		c.Clock = clock.New()
	}
	return VerificationMode{Mode: ModeTrustOnFirstUse, TOFU: c}
}

// ClientTLSConfigは、baseを複製し検証方式を反映したTLS設定を返却します。
//
// ModeTrustOnFirstUseの場合、TLSハンドシェイクでの検証は行わず、ハンドシェイク完了後にVerifierで検証します。
func (m VerificationMode) ClientTLSConfig(base *tls.Config, serverName string) *tls.Config {
	var c *tls.Config
	if base == nil {
		c = &tls.Config{}
	} else {
		c = base.Clone()
	}
	if c.ServerName == "" {
		c.ServerName = serverName
	}
	switch m.Mode {
	case ModeSignedByCertificateAuthority:
		c.InsecureSkipVerify = false
		if m.RootCAs != nil {
			c.RootCAs = m.RootCAs
		}
	default:
		c.InsecureSkipVerify = true
	}
	return c
}

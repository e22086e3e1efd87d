/*
Package channel は、1つのコネクション上に多重化される論理チャネルの定義をまとめたパッケージです。
*/
package channel

import (
	"fmt"
	"math"

	"github.com/aptpod/quicnet-go/errors"
)

// MaxChannelsCountは、1コネクションで開けるチャネル数の上限です。
const MaxChannelsCount = math.MaxUint8 + 1

// IDは、コネクション内で一意なチャネルIDです。
type ID uint8

// Typeは、チャネルの信頼性と順序の種別です。
type Type uint8

const (
	// OrderedReliableは、順序と到達を保証するチャネルです。チャネルごとに1本のストリームを使用します。
	OrderedReliable Type = iota
	// UnorderedReliableは、到達のみを保証するチャネルです。メッセージごとにストリームを使用します。
	UnorderedReliable
	// Unreliableは、到達も順序も保証しないチャネルです。QUICデータグラムを使用します。
	Unreliable
)

func (t Type) String() string {
	switch t {
	case OrderedReliable:
		return "ordered_reliable"
	case UnorderedReliable:
		return "unordered_reliable"
	case Unreliable:
		return "unreliable"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Validは、定義済みのチャネルタイプかどうかを返却します。
func (t Type) Valid() bool {
	return t <= Unreliable
}

// Payloadは、サーバーから受信したアプリケーションデータです。
type Payload struct {
	Channel ID
	Bytes   []byte
}

// Configurationは、コネクションを開く際に事前に作成するチャネルの設定です。
type Configuration struct {
	types []Type
}

// NewConfigurationは、指定したチャネルタイプを順に開くConfigurationを返却します。
func NewConfiguration(types ...Type) Configuration {
	return Configuration{types: append([]Type(nil), types...)}
}

// DefaultConfigurationは、各チャネルタイプを1つずつ開くConfigurationを返却します。
//
// 最初のOrderedReliableチャネルがデフォルトチャネルになります。
func DefaultConfiguration() Configuration {
	return NewConfiguration(OrderedReliable, UnorderedReliable, Unreliable)
}

// Addは、チャネルタイプを追加したConfigurationを返却します。
func (c Configuration) Add(t Type) Configuration {
	return NewConfiguration(append(c.Types(), t)...)
}

// Typesは、設定されたチャネルタイプを返却します。
func (c Configuration) Types() []Type {
	return append([]Type(nil), c.types...)
}

// Validateは、全てのチャネルが開けることを検証します。
func (c Configuration) Validate() error {
	if len(c.types) > MaxChannelsCount {
		return errors.ConfigurationError{Index: MaxChannelsCount, Cause: errors.ErrMaxChannelsCountReached}
	}
	for i, t := range c.types {
		if !t.Valid() {
			return errors.ConfigurationError{Index: i, Cause: errors.ErrInvalidChannelType}
		}
	}
	return nil
}

// IDGeneratorは、チャネルIDを払い出します。
type IDGenerator struct {
	next  int
	freed []ID
}

// Nextは、未使用のチャネルIDを返却します。上限に達した場合はErrMaxChannelsCountReachedを返却します。
func (g *IDGenerator) Next() (ID, error) {
	if n := len(g.freed); n > 0 {
		id := g.freed[n-1]
		g.freed = g.freed[:n-1]
		return id, nil
	}
	if g.next >= MaxChannelsCount {
		return 0, errors.ErrMaxChannelsCountReached
	}
	id := ID(g.next)
	g.next++
	return id, nil
}

// Releaseは、閉じたチャネルのIDを再利用可能にします。
func (g *IDGenerator) Release(id ID) {
	g.freed = append(g.freed, id)
}

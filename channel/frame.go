package channel

import (
	"encoding/binary"
	"io"

	"github.com/aptpod/quicnet-go/errors"
)

// DefaultMaxFrameSizeは、受信するフレームの最大サイズです。
const DefaultMaxFrameSize = 16 << 20

const frameHeaderSize = 4

// WriteHeaderは、ストリームの先頭にチャネルIDを書き込みます。
func WriteHeader(wr io.Writer, id ID) error {
	_, err := wr.Write([]byte{byte(id)})
	return err
}

// ReadHeaderは、ストリームの先頭からチャネルIDを読み出します。
func ReadHeader(rd io.Reader) (ID, error) {
	var b [1]byte
	if _, err := io.ReadFull(rd, b[:]); err != nil {
		return 0, err
	}
	return ID(b[0]), nil
}

// WriteFrameは、4byte(BigEndian)の長さの後にペイロードを書き込み、書き込んだバイト数を返却します。
func WriteFrame(wr io.Writer, payload []byte) (int, error) {
	bs := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(bs, uint32(len(payload)))
	copy(bs[frameHeaderSize:], payload)
	if _, err := wr.Write(bs); err != nil {
		return 0, err
	}
	return len(bs), nil
}

// ReadFrameは、WriteFrameで書き込まれたフレームを1つ読み出します。
//
// ストリームがフレームの境界で終端した場合はio.EOFを返却します。
func ReadFrame(rd io.Reader, maxSize int) ([]byte, error) {
	lenBuf := make([]byte, frameHeaderSize)
	if _, err := io.ReadFull(rd, lenBuf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, errors.Errorf("truncated frame length: %w", errors.ErrMalformedMessage)
		}
		return nil, err
	}
	size := binary.BigEndian.Uint32(lenBuf)
	if maxSize > 0 && int64(size) > int64(maxSize) {
		return nil, errors.Errorf("frame size %d exceeds %d: %w", size, maxSize, errors.ErrMessageTooLarge)
	}
	bs := make([]byte, size)
	if _, err := io.ReadFull(rd, bs); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, errors.Errorf("truncated frame payload: %w", errors.ErrMalformedMessage)
		}
		return nil, err
	}
	return bs, nil
}

// EncodeDatagramは、チャネルIDを先頭に付与したデータグラムを返却します。
func EncodeDatagram(id ID, payload []byte) []byte {
	bs := make([]byte, 1+len(payload))
	bs[0] = byte(id)
	copy(bs[1:], payload)
	return bs
}

// DecodeDatagramは、EncodeDatagramで生成されたデータグラムを分解します。
func DecodeDatagram(bs []byte) (ID, []byte, error) {
	if len(bs) == 0 {
		return 0, nil, errors.Errorf("empty datagram: %w", errors.ErrMalformedMessage)
	}
	return ID(bs[0]), bs[1:], nil
}

package channel_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/aptpod/quicnet-go/channel"
	"github.com/aptpod/quicnet-go/errors"
)

func TestFrame_stream(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteHeader(&buf, 4))
	n, err := WriteFrame(&buf, []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 9, n)
	_, err = WriteFrame(&buf, []byte{})
	require.NoError(t, err)

	id, err := ReadHeader(&buf)
	require.NoError(t, err)
	assert.Equal(t, ID(4), id)

	got, err := ReadFrame(&buf, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	got, err = ReadFrame(&buf, DefaultMaxFrameSize)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = ReadFrame(&buf, DefaultMaxFrameSize)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadFrame_malformed(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		max     int
		wantErr error
	}{
		{name: "truncated length", input: []byte{0, 0}, wantErr: errors.ErrMalformedMessage},
		{name: "truncated payload", input: []byte{0, 0, 0, 3, 'a'}, wantErr: errors.ErrMalformedMessage},
		{name: "too large", input: []byte{0, 0, 1, 0}, max: 16, wantErr: errors.ErrMessageTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.input), tt.max)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDatagram(t *testing.T) {
	bs := EncodeDatagram(2, []byte("ping"))
	id, payload, err := DecodeDatagram(bs)
	require.NoError(t, err)
	assert.Equal(t, ID(2), id)
	assert.Equal(t, []byte("ping"), payload)

	_, _, err = DecodeDatagram(nil)
	assert.ErrorIs(t, err, errors.ErrMalformedMessage)
}

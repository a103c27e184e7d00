package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wegjgwioj/miniresp/object"
)

func TestEncode_CanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		o    object.Object
		want string
	}{
		{"simple string", object.NewSimpleString([]byte("OK")), "+OK\r\n"},
		{"error", object.NewError("unknown command"), "-unknown command\r\n"},
		{"integer", object.NewInteger(1000), ":1000\r\n"},
		{"negative integer", object.NewInteger(-7), ":-7\r\n"},
		{"bulk", object.NewBulkString([]byte("foobar")), "$6\r\nfoobar\r\n"},
		{"empty bulk", object.NewBulkString(nil), "$0\r\n\r\n"},
		{"null bulk", object.NewNullBulkString(), "$-1\r\n"},
		{"empty array", object.NewArray(nil), "*0\r\n"},
		{
			"array of bulk",
			object.NewArray([]object.Object{object.NewBulkString([]byte("a")), object.NewBulkString([]byte("b")), object.NewBulkString([]byte("c"))}),
			"*3\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, tc.o))
			require.Equal(t, tc.want, buf.String())
		})
	}
}

func TestEncode_EndToEndScenario_Ping(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, object.NewSimpleString([]byte("PONG"))))
	require.Equal(t, "+PONG\r\n", buf.String())
}

type erroringWriter struct{}

func (erroringWriter) Write([]byte) (int, error) { return 0, bytes.ErrTooLarge }

func TestEncode_SurfacesSinkIOErrorVerbatim(t *testing.T) {
	err := Encode(erroringWriter{}, object.NewSimpleString([]byte("OK")))
	require.ErrorIs(t, err, bytes.ErrTooLarge)
}

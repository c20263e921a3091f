package aggregation

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize_Timestamp(t *testing.T) {
	out := Normalize("request at 2024-01-02T15:04:05Z failed")
	require.Equal(t, "request at "+TokenTimestamp+" failed", out)
}

func TestNormalize_UUID(t *testing.T) {
	out := Normalize("user 123e4567-e89b-12d3-a456-426614174000 logged in")
	require.Equal(t, "user "+TokenUUID+" logged in", out)
}

func TestNormalize_IPv4(t *testing.T) {
	out := Normalize("connection from 10.0.0.1 refused")
	require.Equal(t, "connection from "+TokenIP+" refused", out)
}

func TestNormalize_URLAndEmail(t *testing.T) {
	out := Normalize("sent to admin@example.com via https://example.com/path")
	require.Equal(t, "sent to "+TokenEmail+" via "+TokenURL, out)
}

func TestNormalize_HexVsDecimal(t *testing.T) {
	require.Equal(t, "addr "+TokenHex, Normalize("addr 0xdeadbeef"))
	require.Equal(t, "addr "+TokenHex, Normalize("addr deadbe"))
	require.Equal(t, "count "+TokenNum, Normalize("count 123456"))
}

func TestNormalize_Path(t *testing.T) {
	out := Normalize("serving /var/log/app.log now")
	require.Equal(t, "serving "+TokenPath+" now", out)
}

func TestNormalize_FloatsAndInts(t *testing.T) {
	out := Normalize("latency 12.5 retries 3")
	require.Equal(t, "latency "+TokenNum+" retries "+TokenNum, out)
}

func TestNormalize_IdempotentOnAlreadyNormalized(t *testing.T) {
	first := Normalize("retry 42 at 10.0.0.5")
	second := Normalize(first)
	require.Equal(t, first, second)
}

package multipart

import (
	"bytes"
	"encoding/base64"
	"io"
	"mime"
	stdmultipart "mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoundary(t *testing.T) {
	a, b := NewBoundary(), NewBoundary()
	assert.True(t, strings.HasPrefix(a, boundaryPrefix))
	assert.Len(t, a, len(boundaryPrefix)+32)
	assert.NotEqual(t, a, b)
	assert.Equal(t, "multipart/form-data; boundary="+a, ContentType(a))
}

func TestEncodeWithBoundary_Framing(t *testing.T) {
	parts := []Part{
		Field{Name: "dob", Value: "1992-04-18"},
		Attachment{Name: "photo", Filename: "me.png", ContentType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}},
	}

	body, err := EncodeWithBoundary(parts, "XYZ")
	require.NoError(t, err)

	want := "--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"dob\"\r\n" +
		"\r\n" +
		"1992-04-18\r\n" +
		"--XYZ\r\n" +
		"Content-Disposition: form-data; name=\"photo\"; filename=\"me.png\"\r\n" +
		"Content-Type: image/png\r\n" +
		"Content-Transfer-Encoding: base64\r\n" +
		"\r\n" +
		base64.StdEncoding.EncodeToString([]byte{0x89, 'P', 'N', 'G'}) + "\r\n" +
		"--XYZ--\r\n"
	assert.Equal(t, want, string(body))
}

func TestEncodeWithBoundary_EmptyParts(t *testing.T) {
	body, err := EncodeWithBoundary(nil, "B")
	require.NoError(t, err)
	assert.Equal(t, "--B--\r\n", string(body))
}

func TestEncode_SkipsRemoteAttachment(t *testing.T) {
	parts := []Part{
		Field{Name: "shop_name", Value: "Corner Store"},
		Attachment{Name: "shop_photo", Filename: "shop.jpg", Source: "https://cdn.example.com/shop.jpg"},
	}

	body, boundary, err := Encode(parts)
	require.NoError(t, err)

	assert.Equal(t, 1, strings.Count(string(body), "Content-Disposition"))
	assert.NotContains(t, string(body), "shop_photo")

	names := readPartNames(t, body, boundary)
	assert.Equal(t, []string{"shop_name"}, names)
}

func TestEncode_SkipsServerFlaggedAttachment(t *testing.T) {
	parts := []Part{
		Attachment{Name: "pan_card", Filename: "pan.pdf", Data: []byte("%PDF"), FromServer: true},
		Field{Name: "gender", Value: "male"},
	}

	body, boundary, err := Encode(parts)
	require.NoError(t, err)
	assert.Equal(t, []string{"gender"}, readPartNames(t, body, boundary))
}

func TestEncode_DeterministicModuloBoundary(t *testing.T) {
	parts := []Part{
		Field{Name: "a", Value: "1"},
		Field{Name: "b", Value: "naïve ✓"},
		Attachment{Name: "doc", Filename: "d.bin", ContentType: "application/octet-stream", Data: []byte{0, 1, 2, 255}},
	}

	first, b1, err := Encode(parts)
	require.NoError(t, err)
	second, b2, err := Encode(parts)
	require.NoError(t, err)

	require.NotEqual(t, b1, b2)
	assert.Equal(t,
		string(bytes.ReplaceAll(first, []byte(b1), []byte("BOUNDARY"))),
		string(bytes.ReplaceAll(second, []byte(b2), []byte("BOUNDARY"))),
	)
}

func TestEncode_PreservesOrder(t *testing.T) {
	parts := []Part{
		Field{Name: "z", Value: "1"},
		Field{Name: "a", Value: "2"},
		Attachment{Name: "m", Filename: "m.txt", Data: []byte("x")},
		Field{Name: "b", Value: "3"},
	}
	body, boundary, err := Encode(parts)
	require.NoError(t, err)
	assert.Equal(t, []string{"z", "a", "m", "b"}, readPartNames(t, body, boundary))
}

func TestEncode_RoundTripsThroughStandardReader(t *testing.T) {
	payload := []byte("binary\x00payload")
	parts := []Part{
		Field{Name: "name", Value: `Ravi "R" Kumar`},
		Attachment{Name: "photo", Filename: "a.png", ContentType: "image/png", Data: payload},
	}
	body, boundary, err := Encode(parts)
	require.NoError(t, err)

	r := stdmultipart.NewReader(bytes.NewReader(body), boundary)

	p, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "name", p.FormName())
	v, err := io.ReadAll(p)
	require.NoError(t, err)
	assert.Equal(t, `Ravi "R" Kumar`, string(v))

	p, err = r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "photo", p.FormName())
	assert.Equal(t, "a.png", p.FileName())
	assert.Equal(t, "base64", p.Header.Get("Content-Transfer-Encoding"))
	encoded, err := io.ReadAll(p)
	require.NoError(t, err)
	decoded, err := base64.StdEncoding.DecodeString(string(encoded))
	require.NoError(t, err)
	assert.Equal(t, payload, decoded)

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)
}

func TestEncode_Errors(t *testing.T) {
	_, err := EncodeWithBoundary([]Part{Field{Value: "x"}}, "B")
	require.Error(t, err)

	_, err = EncodeWithBoundary([]Part{Field{Name: "x"}}, "")
	require.Error(t, err)

	_, err = EncodeWithBoundary([]Part{Attachment{Name: "photo", Source: "/tmp/photo.png"}}, "B")
	require.Error(t, err)
}

func TestEncode_HeaderInjectionStripped(t *testing.T) {
	body, err := EncodeWithBoundary([]Part{Field{Name: "a\r\nX-Evil: 1", Value: "v"}}, "B")
	require.NoError(t, err)
	assert.NotContains(t, string(body), "\r\nX-Evil")
}

func TestCollides(t *testing.T) {
	assert.True(t, collides([]Part{Field{Name: "a", Value: "x--B--y"}}, "--B"))
	assert.False(t, collides([]Part{Field{Name: "a", Value: "plain"}}, "--B"))
}

func TestPending(t *testing.T) {
	parts := []Part{
		Field{Name: "a"},
		Attachment{Name: "remote", Source: "http://example.com/x.png"},
		Attachment{Name: "upper", Source: "HTTPS://example.com/x.png"},
		Attachment{Name: "local", Source: "/sdcard/x.png"},
		Attachment{Name: "fileurl", Source: "file:///sdcard/y.png"},
		Attachment{Name: "server", FromServer: true},
	}
	var names []string
	for _, p := range Pending(parts) {
		names = append(names, p.partName())
	}
	assert.Equal(t, []string{"a", "local", "fileurl"}, names)
}

func readPartNames(t *testing.T, body []byte, boundary string) []string {
	t.Helper()
	_, params, err := mime.ParseMediaType(ContentType(boundary))
	require.NoError(t, err)

	r := stdmultipart.NewReader(bytes.NewReader(body), params["boundary"])
	var names []string
	for {
		p, err := r.NextPart()
		if err == io.EOF {
			return names
		}
		require.NoError(t, err)
		names = append(names, p.FormName())
	}
}
